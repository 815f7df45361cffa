package orchestrator

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/relkit/relkit/internal/repository"
)

// CompensatingActions provides idempotent rollback operations for release run
// steps. All actions are local except DeleteAnnouncement: pushed refs are
// never touched here.
type CompensatingActions struct {
	gitRepo    repository.GitExtendedRepository
	githubRepo repository.GithubExtendedRepository
}

// NewCompensatingActions creates a new compensating actions handler
func NewCompensatingActions(
	gitRepo repository.GitExtendedRepository,
	githubRepo repository.GithubExtendedRepository,
) *CompensatingActions {
	return &CompensatingActions{
		gitRepo:    gitRepo,
		githubRepo: githubRepo,
	}
}

// RestoreVersionFile idempotently restores the version file to its committed
// state. A clean file means a later compensation already covered it.
func (ca *CompensatingActions) RestoreVersionFile(ctx context.Context, rollbackData map[string]any) error {
	path, ok := rollbackData["version_file"].(string)
	if !ok || path == "" {
		return fmt.Errorf("version_file not found in rollback data")
	}
	if !ca.fileHasChanges(ctx, path) {
		return nil
	}
	if err := ca.gitRepo.RestoreFile(ctx, path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to restore %s: %w", path, err)
	}
	return nil
}

// ResetCommit idempotently undoes the version commit
func (ca *CompensatingActions) ResetCommit(ctx context.Context, rollbackData map[string]any) error {
	commitSHA, ok := rollbackData["commit_sha"].(string)
	if !ok || commitSHA == "" {
		return nil
	}
	currentHead, err := ca.gitRepo.GetHeadCommit(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current HEAD: %w", err)
	}
	// If HEAD already moved, the commit was reset by an earlier attempt
	if !strings.HasPrefix(currentHead, commitSHA) {
		fmt.Printf("Commit %s already reset, skipping\n", commitSHA)
		return nil
	}
	if err := ca.gitRepo.ResetHard(ctx, commitSHA+"~1"); err != nil {
		if strings.Contains(err.Error(), "unknown revision") ||
			strings.Contains(err.Error(), "does not have a parent") {
			fmt.Printf("Cannot reset commit %s: %v\n", commitSHA, err)
			return nil
		}
		return fmt.Errorf("failed to reset commit %s: %w", commitSHA, err)
	}
	return nil
}

// DeleteLocalTag idempotently removes the local tag created by the run
func (ca *CompensatingActions) DeleteLocalTag(ctx context.Context, rollbackData map[string]any) error {
	tag, ok := rollbackData["tag"].(string)
	if !ok || tag == "" {
		return fmt.Errorf("tag not found in rollback data")
	}
	if err := ca.gitRepo.DeleteTag(ctx, tag); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil
		}
		return fmt.Errorf("failed to delete local tag %s: %w", tag, err)
	}
	return nil
}

// DeleteAnnouncement idempotently removes the GitHub release created for the
// tag. Deleting a release does not delete the pushed tag.
func (ca *CompensatingActions) DeleteAnnouncement(ctx context.Context, rollbackData map[string]any) error {
	releaseID := ca.extractReleaseID(rollbackData)
	if releaseID == 0 {
		return nil
	}
	if err := ca.githubRepo.DeleteRelease(ctx, releaseID); err != nil {
		if strings.Contains(err.Error(), "not found") {
			return nil
		}
		return fmt.Errorf("failed to delete release %d: %w", releaseID, err)
	}
	return nil
}

// NoOp is a no-operation compensating action for steps that don't need rollback
func (ca *CompensatingActions) NoOp(_ context.Context, _ map[string]any) error {
	return nil
}

// Helper methods for idempotency checks

func (ca *CompensatingActions) fileHasChanges(ctx context.Context, file string) bool {
	status, err := ca.gitRepo.GetFileStatus(ctx, file)
	if err != nil {
		return false
	}
	return status != "clean"
}

func (ca *CompensatingActions) extractReleaseID(rollbackData map[string]any) int64 {
	if id, ok := rollbackData["release_id"].(int64); ok {
		return id
	}
	// float64 after a JSON round-trip
	if id, ok := rollbackData["release_id"].(float64); ok {
		return int64(id)
	}
	return 0
}
