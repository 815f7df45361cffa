package repository

import "context"

// GitExtendedRepository extends GitRepository with the write operations the
// release run needs to commit the version file and undo local steps.
type GitExtendedRepository interface {
	GitRepository
	// Git configuration
	ConfigureUser(ctx context.Context, name, email string) error
	// Staging and commit operations
	AddFiles(ctx context.Context, pattern string) error
	Commit(ctx context.Context, message string) error
	GetHeadCommit(ctx context.Context) (string, error)
	GetCurrentBranch(ctx context.Context) (string, error)
	// Push operations
	PushBranch(ctx context.Context, branch string) error
	// Local compensation operations
	DeleteTag(ctx context.Context, tag string) error
	RestoreFile(ctx context.Context, path string) error
	ResetHard(ctx context.Context, ref string) error
	GetFileStatus(ctx context.Context, path string) (string, error)
}
