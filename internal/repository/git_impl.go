package repository

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/relkit/relkit/internal/domain"
)

// gitRepository is the implementation of the GitRepository interface.

type gitRepository struct {
	repo       *git.Repository
	remoteName string
}

// NewGitRepository creates a new GitRepository for the repository in the
// working directory.
func NewGitRepository(remoteName string) (GitRepository, error) {
	return newGitRepository(remoteName)
}

// NewGitExtendedRepository creates a new GitExtendedRepository with all extended operations.
func NewGitExtendedRepository(remoteName string) (GitExtendedRepository, error) {
	return newGitRepository(remoteName)
}

func newGitRepository(remoteName string) (*gitRepository, error) {
	repo, err := git.PlainOpen(".")
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}
	if remoteName == "" {
		remoteName = "origin"
	}
	return &gitRepository{repo: repo, remoteName: remoteName}, nil
}

// LatestTag returns the latest git tag.
func (r *gitRepository) LatestTag(_ context.Context) (string, error) {
	// First, try to fetch tags from remote to ensure we have the latest
	remote, err := r.repo.Remote(r.remoteName)
	if err == nil {
		// Fetch tags from remote (ignore error if already up to date)
		//nolint:errcheck // We intentionally ignore the error as local tags are sufficient
		_ = remote.Fetch(&git.FetchOptions{
			RefSpecs: []config.RefSpec{
				config.RefSpec("+refs/tags/*:refs/tags/*"),
			},
			Auth: r.getAuth(),
		})
	}
	tagRefs, err := r.repo.Tags()
	if err != nil {
		return "", fmt.Errorf("failed to get tags: %w", err)
	}
	var latestTag string
	var latestCommitTime time.Time
	if err := tagRefs.ForEach(func(ref *plumbing.Reference) error {
		// Try to get the commit directly first (lightweight tag)
		commit, err := r.repo.CommitObject(ref.Hash())
		if err != nil {
			// If that fails, try to get it as an annotated tag
			tag, err := r.repo.TagObject(ref.Hash())
			if err != nil {
				return nil // Skip this tag if we can't resolve it
			}
			commit, err = r.repo.CommitObject(tag.Target)
			if err != nil {
				return nil // Skip if we can't get the commit
			}
		}
		if commit.Committer.When.After(latestCommitTime) {
			latestCommitTime = commit.Committer.When
			latestTag = ref.Name().Short()
		}
		return nil
	}); err != nil {
		return "", fmt.Errorf("failed to iterate tags: %w", err)
	}
	return latestTag, nil
}

// fetchTagIfNeeded fetches a tag from remote if it doesn't exist locally.
func (r *gitRepository) fetchTagIfNeeded(tag string) (*plumbing.Reference, error) {
	tagRef, err := r.repo.Tag(tag)
	if err == nil {
		return tagRef, nil
	}
	// Tag doesn't exist locally, try to fetch it from remote
	remote, err := r.repo.Remote(r.remoteName)
	if err != nil {
		return nil, fmt.Errorf("failed to get remote: %w", err)
	}
	if err := remote.Fetch(&git.FetchOptions{
		RefSpecs: []config.RefSpec{
			config.RefSpec("+refs/tags/*:refs/tags/*"),
		},
		Auth: r.getAuth(),
	}); err != nil && err != git.NoErrAlreadyUpToDate {
		return nil, fmt.Errorf("failed to fetch tags from remote: %w", err)
	}
	tagRef, err = r.repo.Tag(tag)
	if err != nil {
		return nil, fmt.Errorf("failed to get tag %s after fetching: %w", tag, err)
	}
	return tagRef, nil
}

// resolveTagCommit resolves a tag reference to its commit hash.
func (r *gitRepository) resolveTagCommit(tagRef *plumbing.Reference) (plumbing.Hash, error) {
	// Try as lightweight tag first
	if commit, err := r.repo.CommitObject(tagRef.Hash()); err == nil {
		return commit.Hash, nil
	}
	// Try as annotated tag
	if tagObj, err := r.repo.TagObject(tagRef.Hash()); err == nil {
		if commit, err := r.repo.CommitObject(tagObj.Target); err == nil {
			return commit.Hash, nil
		}
	}
	return plumbing.Hash{}, fmt.Errorf("failed to resolve commit for tag")
}

// scanCommitsSince walks from HEAD to the given commit hash, counting commits
// and marker occurrences per commit message.
func (r *gitRepository) scanCommitsSince(tagCommitHash plumbing.Hash) (*domain.ChangeSet, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD: %w", err)
	}
	headCommit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	commits, err := r.repo.Log(&git.LogOptions{From: headCommit.Hash})
	if err != nil {
		return nil, fmt.Errorf("failed to get commits: %w", err)
	}
	cs := &domain.ChangeSet{}
	err = commits.ForEach(func(c *object.Commit) error {
		if c.Hash == tagCommitHash {
			return storer.ErrStop
		}
		cs.Total++
		if strings.Contains(c.Message, domain.PatchMarker) {
			cs.PatchMarked++
		}
		if strings.Contains(c.Message, domain.MinorMarker) {
			cs.MinorMarked++
		}
		if strings.Contains(c.Message, domain.MajorMarker) {
			cs.MajorMarked++
		}
		return nil
	})
	if err != nil && err != storer.ErrStop {
		return nil, fmt.Errorf("failed to iterate commits: %w", err)
	}
	return cs, nil
}

// ChangesSinceTag summarizes the commits between the given tag and HEAD. An
// empty tag scans the whole history, which only happens on the initial
// release.
func (r *gitRepository) ChangesSinceTag(_ context.Context, tag string) (*domain.ChangeSet, error) {
	var base plumbing.Hash
	if tag != "" {
		tagRef, err := r.fetchTagIfNeeded(tag)
		if err != nil {
			return nil, err
		}
		base, err = r.resolveTagCommit(tagRef)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve tag %s: %w", tag, err)
		}
	}
	cs, err := r.scanCommitsSince(base)
	if err != nil {
		return nil, err
	}
	cs.BaseTag = tag
	return cs, nil
}

// TagExists checks if a tag exists.
func (r *gitRepository) TagExists(_ context.Context, tag string) (bool, error) {
	_, err := r.repo.Tag(tag)
	if err == git.ErrTagNotFound {
		return false, nil
	}
	if err != nil && err != git.ErrTagNotFound {
		return false, fmt.Errorf("failed to check tag %s: %w", tag, err)
	}
	return err == nil, nil
}

// CreateTag creates an annotated tag at HEAD. The tagger identity comes from
// the repository config, falling back to the release bot identity.
func (r *gitRepository) CreateTag(_ context.Context, tag, msg string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	name, email := r.taggerIdentity()
	_, err = r.repo.CreateTag(tag, head.Hash(), &git.CreateTagOptions{
		Message: msg,
		Tagger: &object.Signature{
			Name:  name,
			Email: email,
			When:  time.Now(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create tag %s: %w", tag, err)
	}
	return nil
}

func (r *gitRepository) taggerIdentity() (string, string) {
	cfg, err := r.repo.Config()
	if err == nil && cfg.User.Name != "" && cfg.User.Email != "" {
		return cfg.User.Name, cfg.User.Email
	}
	return "github-actions[bot]", "github-actions[bot]@users.noreply.github.com"
}

// DeleteTag removes a local tag. Used only to compensate a failed run before
// the tag was pushed.
func (r *gitRepository) DeleteTag(_ context.Context, tag string) error {
	if err := r.repo.DeleteTag(tag); err != nil && err != git.ErrTagNotFound {
		return fmt.Errorf("failed to delete tag %s: %w", tag, err)
	}
	return nil
}

// getAuth returns authentication configuration for GitHub Actions
func (r *gitRepository) getAuth() *http.BasicAuth {
	// Check for GITHUB_TOKEN environment variable (used in GitHub Actions)
	token := os.Getenv("GITHUB_TOKEN")
	if token == "" {
		token = os.Getenv("RELKIT_GITHUB_TOKEN")
	}
	if token == "" {
		return nil
	}
	// Use x-access-token as username for GitHub token authentication
	return &http.BasicAuth{
		Username: "x-access-token",
		Password: token,
	}
}

// PushTag pushes a tag to the remote.
func (r *gitRepository) PushTag(ctx context.Context, tag string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag))},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push tag %s: %w", tag, err)
	}
	return nil
}

// PushBranch pushes a branch to the remote.
func (r *gitRepository) PushBranch(ctx context.Context, name string) error {
	err := r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: r.remoteName,
		RefSpecs:   []config.RefSpec{config.RefSpec(fmt.Sprintf("refs/heads/%s:refs/heads/%s", name, name))},
		Auth:       r.getAuth(),
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		return fmt.Errorf("failed to push branch %s: %w", name, err)
	}
	return nil
}

// ConfigureUser sets the git user configuration.
func (r *gitRepository) ConfigureUser(_ context.Context, name, email string) error {
	cfg, err := r.repo.Config()
	if err != nil {
		return fmt.Errorf("failed to get config: %w", err)
	}
	cfg.User.Name = name
	cfg.User.Email = email
	return r.repo.Storer.SetConfig(cfg)
}

// AddFiles stages files matching the pattern.
func (r *gitRepository) AddFiles(_ context.Context, pattern string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	// AddGlob can return an error if no files match the pattern
	// or if there are no changes to stage. We should not fail in these cases.
	err = w.AddGlob(pattern)
	if err != nil && err.Error() != "glob pattern did not match any files" {
		return fmt.Errorf("failed to add files with pattern %s: %w", pattern, err)
	}
	return nil
}

// Commit creates a commit with the given message.
func (r *gitRepository) Commit(_ context.Context, message string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	_, err = w.Commit(message, &git.CommitOptions{})
	if err != nil {
		return fmt.Errorf("failed to create commit: %w", err)
	}
	return nil
}

// GetCurrentBranch returns the name of the current branch.
func (r *gitRepository) GetCurrentBranch(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Name().Short(), nil
}

// GetHeadCommit returns the SHA of the current HEAD commit.
func (r *gitRepository) GetHeadCommit(_ context.Context) (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// RestoreFile restores a file to its state in HEAD.
func (r *gitRepository) RestoreFile(_ context.Context, path string) error {
	head, err := r.repo.Head()
	if err != nil {
		return fmt.Errorf("failed to get HEAD: %w", err)
	}
	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return fmt.Errorf("failed to get HEAD commit: %w", err)
	}
	file, err := commit.File(path)
	if err != nil {
		return fmt.Errorf("failed to get file %s from HEAD: %w", path, err)
	}
	contents, err := file.Contents()
	if err != nil {
		return fmt.Errorf("failed to get file contents: %w", err)
	}
	err = os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		return fmt.Errorf("failed to restore file %s: %w", path, err)
	}
	return nil
}

// ResetHard performs a hard reset to the specified reference.
func (r *gitRepository) ResetHard(_ context.Context, ref string) error {
	w, err := r.repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to get worktree: %w", err)
	}
	hash, err := r.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return fmt.Errorf("failed to resolve revision %s: %w", ref, err)
	}
	err = w.Reset(&git.ResetOptions{
		Commit: *hash,
		Mode:   git.HardReset,
	})
	if err != nil {
		return fmt.Errorf("failed to reset to %s: %w", ref, err)
	}
	return nil
}

// GetFileStatus returns the git status of a specific file.
// Returns "clean" if the file has no changes, "modified" if it has uncommitted changes.
func (r *gitRepository) GetFileStatus(_ context.Context, path string) (string, error) {
	w, err := r.repo.Worktree()
	if err != nil {
		return "", fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := w.Status()
	if err != nil {
		return "", fmt.Errorf("failed to get status: %w", err)
	}
	fileStatus := status.File(path)
	if fileStatus.Worktree == git.Unmodified && fileStatus.Staging == git.Unmodified {
		return "clean", nil
	}
	return "modified", nil
}
