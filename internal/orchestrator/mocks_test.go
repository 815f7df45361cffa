package orchestrator

import (
	"context"

	"github.com/relkit/relkit/internal/domain"
	"github.com/relkit/relkit/internal/repository"
	"github.com/stretchr/testify/mock"
)

// MockGitRepo is a mock implementation of repository.GitExtendedRepository
type MockGitRepo struct {
	mock.Mock
}

func (m *MockGitRepo) LatestTag(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGitRepo) ChangesSinceTag(ctx context.Context, tag string) (*domain.ChangeSet, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChangeSet), args.Error(1)
}

func (m *MockGitRepo) TagExists(ctx context.Context, tag string) (bool, error) {
	args := m.Called(ctx, tag)
	return args.Bool(0), args.Error(1)
}

func (m *MockGitRepo) CreateTag(ctx context.Context, tag, msg string) error {
	args := m.Called(ctx, tag, msg)
	return args.Error(0)
}

func (m *MockGitRepo) PushTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockGitRepo) ConfigureUser(ctx context.Context, name, email string) error {
	args := m.Called(ctx, name, email)
	return args.Error(0)
}

func (m *MockGitRepo) AddFiles(ctx context.Context, pattern string) error {
	args := m.Called(ctx, pattern)
	return args.Error(0)
}

func (m *MockGitRepo) Commit(ctx context.Context, message string) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockGitRepo) GetHeadCommit(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGitRepo) GetCurrentBranch(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockGitRepo) PushBranch(ctx context.Context, branch string) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockGitRepo) DeleteTag(ctx context.Context, tag string) error {
	args := m.Called(ctx, tag)
	return args.Error(0)
}

func (m *MockGitRepo) RestoreFile(ctx context.Context, path string) error {
	args := m.Called(ctx, path)
	return args.Error(0)
}

func (m *MockGitRepo) ResetHard(ctx context.Context, ref string) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *MockGitRepo) GetFileStatus(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockGithubRepo is a mock implementation of repository.GithubExtendedRepository
type MockGithubRepo struct {
	mock.Mock
}

func (m *MockGithubRepo) CreateRelease(ctx context.Context, tag, name, notes string) (int64, error) {
	args := m.Called(ctx, tag, name, notes)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGithubRepo) GetReleaseByTag(ctx context.Context, tag string) (int64, error) {
	args := m.Called(ctx, tag)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockGithubRepo) DeleteRelease(ctx context.Context, releaseID int64) error {
	args := m.Called(ctx, releaseID)
	return args.Error(0)
}

// MockVersionFileService is a mock implementation of service.VersionFileService
type MockVersionFileService struct {
	mock.Mock
}

func (m *MockVersionFileService) Read(ctx context.Context, path string) (*domain.Version, error) {
	args := m.Called(ctx, path)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Version), args.Error(1)
}

func (m *MockVersionFileService) Write(ctx context.Context, path string, version *domain.Version) error {
	args := m.Called(ctx, path, version)
	return args.Error(0)
}

// MockNotesService is a mock implementation of service.NotesService
type MockNotesService struct {
	mock.Mock
}

func (m *MockNotesService) CommitMessage(ctx context.Context, release *domain.Release) (string, error) {
	args := m.Called(ctx, release)
	return args.String(0), args.Error(1)
}

func (m *MockNotesService) TagMessage(ctx context.Context, release *domain.Release) (string, error) {
	args := m.Called(ctx, release)
	return args.String(0), args.Error(1)
}

// MockStateRepository is a mock implementation of repository.StateRepository
type MockStateRepository struct {
	mock.Mock
}

func (m *MockStateRepository) Save(ctx context.Context, state *domain.RunState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *MockStateRepository) Load(ctx context.Context, runID string) (*domain.RunState, error) {
	args := m.Called(ctx, runID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunState), args.Error(1)
}

func (m *MockStateRepository) LoadLatest(ctx context.Context) (*domain.RunState, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RunState), args.Error(1)
}

func (m *MockStateRepository) Delete(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

func (m *MockStateRepository) Exists(ctx context.Context, runID string) (bool, error) {
	args := m.Called(ctx, runID)
	return args.Bool(0), args.Error(1)
}

// MockHistoryRepository is a mock implementation of repository.HistoryRepository
type MockHistoryRepository struct {
	mock.Mock
}

func (m *MockHistoryRepository) Record(ctx context.Context, release *domain.Release) error {
	args := m.Called(ctx, release)
	return args.Error(0)
}

func (m *MockHistoryRepository) List(ctx context.Context, limit int) ([]repository.HistoryEntry, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.HistoryEntry), args.Error(1)
}

func (m *MockHistoryRepository) Close() error {
	args := m.Called()
	return args.Error(0)
}
