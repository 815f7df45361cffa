package domain

import "time"

// ReleaseStatus records the terminal outcome of a release run.
type ReleaseStatus string

const (
	ReleaseStatusSkipped   ReleaseStatus = "skipped"
	ReleaseStatusPublished ReleaseStatus = "published"
	ReleaseStatusFailed    ReleaseStatus = "failed"
)

// Release holds all metadata produced by a single release run.
type Release struct {
	RunID           string
	PreviousVersion *Version
	Version         *Version
	Level           BumpLevel
	TagName         string
	Changes         ChangeSet
	Status          ReleaseStatus
	CreatedAt       time.Time
}
