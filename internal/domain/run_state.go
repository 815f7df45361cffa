package domain

import (
	"time"
)

// RunStatus represents the overall status of a release run.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
	RunStatusRolledBack RunStatus = "rolled_back"
)

// StepStatus represents the status of an individual step.
type StepStatus string

const (
	StepStatusPending    StepStatus = "pending"
	StepStatusRunning    StepStatus = "running"
	StepStatusCompleted  StepStatus = "completed"
	StepStatusFailed     StepStatus = "failed"
	StepStatusRolledBack StepStatus = "rolled_back"
)

// StepType identifies a step of the release run.
type StepType string

const (
	StepTypeScanChanges     StepType = "scan_changes"
	StepTypeDecideBump      StepType = "decide_bump"
	StepTypeApplyVersion    StepType = "apply_version"
	StepTypeCommitVersion   StepType = "commit_version"
	StepTypeCreateTag       StepType = "create_tag"
	StepTypePushCommit      StepType = "push_commit"
	StepTypePushTag         StepType = "push_tag"
	StepTypeAnnounceRelease StepType = "announce_release"
	StepTypeRecordHistory   StepType = "record_history"
)

// RunState is the persisted record of a release run, kept so a failed run can
// be compensated afterwards. Once any push step completes the run is past its
// commit point and compensation refuses to touch the pushed refs.
type RunState struct {
	RunID           string       `json:"run_id"`
	StartedAt       time.Time    `json:"started_at"`
	UpdatedAt       time.Time    `json:"updated_at"`
	PreviousVersion string       `json:"previous_version,omitempty"`
	Version         string       `json:"version,omitempty"`
	TagName         string       `json:"tag_name,omitempty"`
	Steps           []StepRecord `json:"steps"`
	Status          RunStatus    `json:"status"`
	Error           string       `json:"error,omitempty"`
}

// StepRecord represents a single step in the run.
type StepRecord struct {
	ID           string         `json:"id"`
	Type         StepType       `json:"type"`
	Status       StepStatus     `json:"status"`
	StartedAt    time.Time      `json:"started_at"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	RollbackData map[string]any `json:"rollback_data,omitempty"`
	Error        string         `json:"error,omitempty"`
}

// NewRunState creates a new run state.
func NewRunState(runID string) *RunState {
	now := time.Now()
	return &RunState{
		RunID:     runID,
		StartedAt: now,
		UpdatedAt: now,
		Steps:     []StepRecord{},
		Status:    RunStatusPending,
	}
}

// AddStep appends a pending step record.
func (rs *RunState) AddStep(stepType StepType) *StepRecord {
	step := StepRecord{
		ID:        generateStepID(stepType),
		Type:      stepType,
		Status:    StepStatusPending,
		StartedAt: time.Now(),
	}
	rs.Steps = append(rs.Steps, step)
	rs.UpdatedAt = time.Now()
	return &rs.Steps[len(rs.Steps)-1]
}

// CompletedSteps returns all successfully completed steps in reverse order,
// which is the order compensation must run in.
func (rs *RunState) CompletedSteps() []StepRecord {
	var completed []StepRecord
	for i := len(rs.Steps) - 1; i >= 0; i-- {
		if rs.Steps[i].Status == StepStatusCompleted {
			completed = append(completed, rs.Steps[i])
		}
	}
	return completed
}

// Pushed reports whether any push step has completed. Past this point the run
// has published state that cannot be rolled back.
func (rs *RunState) Pushed() bool {
	for i := range rs.Steps {
		if (rs.Steps[i].Type == StepTypePushCommit || rs.Steps[i].Type == StepTypePushTag) &&
			rs.Steps[i].Status == StepStatusCompleted {
			return true
		}
	}
	return false
}

// MarkStepStarted marks a pending step of the given type as running.
func (rs *RunState) MarkStepStarted(stepType StepType) {
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusPending {
			rs.Steps[i].Status = StepStatusRunning
			rs.Steps[i].StartedAt = time.Now()
			rs.UpdatedAt = time.Now()
			break
		}
	}
}

// MarkStepCompleted marks a running step as completed with rollback data.
func (rs *RunState) MarkStepCompleted(stepType StepType, rollbackData map[string]any) {
	now := time.Now()
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusRunning {
			rs.Steps[i].Status = StepStatusCompleted
			rs.Steps[i].CompletedAt = &now
			rs.Steps[i].RollbackData = rollbackData
			rs.UpdatedAt = now
			break
		}
	}
}

// MarkStepFailed marks a running step as failed and fails the run.
func (rs *RunState) MarkStepFailed(stepType StepType, err error) {
	now := time.Now()
	for i := range rs.Steps {
		if rs.Steps[i].Type == stepType && rs.Steps[i].Status == StepStatusRunning {
			rs.Steps[i].Status = StepStatusFailed
			rs.Steps[i].CompletedAt = &now
			rs.Steps[i].Error = err.Error()
			rs.UpdatedAt = now
			break
		}
	}
	rs.Status = RunStatusFailed
	rs.Error = err.Error()
}

// generateStepID creates a unique ID for a step.
func generateStepID(stepType StepType) string {
	return string(stepType) + "_" + time.Now().Format("20060102150405")
}
