package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/relkit/relkit/internal/domain"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/afero"
)

const (
	// StateSchemaVersion defines the current schema version for run-state files
	StateSchemaVersion = "1.0.0"
	// StateFilePermissions defines the permissions for run-state files
	StateFilePermissions = 0600
	// StateDirPermissions defines the permissions for the state directory
	StateDirPermissions = 0700
	// LockTimeout defines the maximum time to wait for a lock
	LockTimeout = 30 * time.Second
	// LockRetryInterval defines the interval between lock retry attempts
	LockRetryInterval = 100 * time.Millisecond
)

// StateRepository defines the interface for persisting release run state
type StateRepository interface {
	Save(ctx context.Context, state *domain.RunState) error
	Load(ctx context.Context, runID string) (*domain.RunState, error)
	LoadLatest(ctx context.Context) (*domain.RunState, error)
	Delete(ctx context.Context, runID string) error
	Exists(ctx context.Context, runID string) (bool, error)
}

// StateMetadata contains metadata about the run-state file
type StateMetadata struct {
	SchemaVersion string    `json:"schema_version"`
	Checksum      string    `json:"checksum"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StateWrapper wraps the run state with metadata
type StateWrapper struct {
	Metadata StateMetadata    `json:"metadata"`
	State    *domain.RunState `json:"state"`
}

// JSONStateRepository implements StateRepository using JSON file storage
type JSONStateRepository struct {
	fs       afero.Fs
	stateDir string
	mu       sync.RWMutex
}

// NewJSONStateRepository creates a new JSON-based run-state repository
func NewJSONStateRepository(fs afero.Fs, stateDir string) StateRepository {
	if stateDir == "" {
		stateDir = ".relkit-state"
	}
	return &JSONStateRepository{
		fs:       fs,
		stateDir: stateDir,
	}
}

// Save persists the run state to a JSON file with proper locking
func (r *JSONStateRepository) Save(ctx context.Context, state *domain.RunState) error {
	if err := r.ensureStateDir(); err != nil {
		return fmt.Errorf("failed to ensure state directory: %w", err)
	}
	filename := r.getStateFilename(state.RunID)
	lock := flock.New(r.getLockFilename(state.RunID))
	if err := r.acquireLock(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	defer r.unlock(lock)
	// Create state wrapper with metadata
	wrapper := StateWrapper{
		Metadata: StateMetadata{
			SchemaVersion: StateSchemaVersion,
			CreatedAt:     state.StartedAt,
			UpdatedAt:     time.Now(),
		},
		State: state,
	}
	// Calculate checksum before saving
	stateData, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state for checksum: %w", err)
	}
	wrapper.Metadata.Checksum = r.calculateChecksum(stateData)
	data, err := json.MarshalIndent(wrapper, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state wrapper: %w", err)
	}
	// Write atomically using temp file
	tempFile := filename + ".tmp"
	if err := afero.WriteFile(r.fs, tempFile, data, StateFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := r.fs.Rename(tempFile, filename); err != nil {
		if removeErr := r.fs.Remove(tempFile); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp file: %v\n", removeErr)
		}
		return fmt.Errorf("failed to rename state file: %w", err)
	}
	// Update latest link
	if err := r.updateLatestLink(filename); err != nil {
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// Load retrieves a specific run state by run ID with validation
func (r *JSONStateRepository) Load(ctx context.Context, runID string) (*domain.RunState, error) {
	filename := r.getStateFilename(runID)
	lock := flock.New(r.getLockFilename(runID))
	if err := r.acquireLock(ctx, lock.TryRLock); err != nil {
		return nil, fmt.Errorf("failed to acquire shared lock: %w", err)
	}
	defer r.unlock(lock)
	data, err := afero.ReadFile(r.fs, filename)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("state not found for run %s", runID)
		}
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var wrapper StateWrapper
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state wrapper: %w", err)
	}
	if wrapper.Metadata.SchemaVersion != StateSchemaVersion {
		return nil, fmt.Errorf("incompatible schema version: expected %s, got %s",
			StateSchemaVersion, wrapper.Metadata.SchemaVersion)
	}
	// Validate checksum
	stateData, err := json.Marshal(wrapper.State)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal state for checksum validation: %w", err)
	}
	expectedChecksum := r.calculateChecksum(stateData)
	if wrapper.Metadata.Checksum != expectedChecksum {
		return nil, fmt.Errorf("state checksum mismatch: data may be corrupted")
	}
	return wrapper.State, nil
}

// LoadLatest retrieves the most recent run state with validation
func (r *JSONStateRepository) LoadLatest(ctx context.Context) (*domain.RunState, error) {
	latestLink := r.getLatestLink()
	r.mu.RLock()
	data, err := afero.ReadFile(r.fs, latestLink)
	r.mu.RUnlock()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no latest state found")
		}
		return nil, fmt.Errorf("failed to read latest link: %w", err)
	}
	// Extract run ID from filename
	targetFile := string(data)
	runID := r.extractRunID(targetFile)
	if runID == "" {
		return nil, fmt.Errorf("invalid latest link target: %s", targetFile)
	}
	return r.Load(ctx, runID)
}

// Delete removes a run state
func (r *JSONStateRepository) Delete(ctx context.Context, runID string) error {
	filename := r.getStateFilename(runID)
	lockFile := r.getLockFilename(runID)
	lock := flock.New(lockFile)
	if err := r.acquireLock(ctx, lock.TryLock); err != nil {
		return fmt.Errorf("failed to acquire lock for deletion: %w", err)
	}
	defer r.unlock(lock)
	if err := r.fs.Remove(filename); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete state file: %w", err)
	}
	// Clean up lock file, best effort
	if removeErr := r.fs.Remove(lockFile); removeErr != nil && !os.IsNotExist(removeErr) {
		fmt.Fprintf(os.Stderr, "warning: failed to remove lock file: %v\n", removeErr)
	}
	return nil
}

// Exists checks if a run state exists
func (r *JSONStateRepository) Exists(_ context.Context, runID string) (bool, error) {
	filename := r.getStateFilename(runID)
	_, err := r.fs.Stat(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check state file: %w", err)
	}
	return true, nil
}

// acquireLock polls the given flock acquire function with constant backoff
// until it succeeds or the lock timeout elapses.
func (r *JSONStateRepository) acquireLock(ctx context.Context, try func() (bool, error)) error {
	lockCtx, cancel := context.WithTimeout(ctx, LockTimeout)
	defer cancel()
	return retry.Do(lockCtx, retry.NewConstant(LockRetryInterval), func(_ context.Context) error {
		locked, err := try()
		if err != nil {
			return err
		}
		if !locked {
			return retry.RetryableError(fmt.Errorf("lock is held by another process"))
		}
		return nil
	})
}

func (r *JSONStateRepository) unlock(lock *flock.Flock) {
	if err := lock.Unlock(); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to unlock file: %v\n", err)
	}
}

// calculateChecksum calculates SHA-256 checksum of data
func (r *JSONStateRepository) calculateChecksum(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ensureStateDir creates the state directory if it doesn't exist
func (r *JSONStateRepository) ensureStateDir() error {
	return r.fs.MkdirAll(r.stateDir, StateDirPermissions)
}

// getStateFilename returns the filename for a given run ID
func (r *JSONStateRepository) getStateFilename(runID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf("run-%s.json", runID))
}

// getLockFilename returns the lock filename for a given run ID
func (r *JSONStateRepository) getLockFilename(runID string) string {
	return filepath.Join(r.stateDir, fmt.Sprintf(".run-%s.lock", runID))
}

// getLatestLink returns the path to the latest state link
func (r *JSONStateRepository) getLatestLink() string {
	return filepath.Join(r.stateDir, "latest.txt")
}

// updateLatestLink updates the link pointing to the latest run state
func (r *JSONStateRepository) updateLatestLink(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	link := r.getLatestLink()
	tempLink := link + ".tmp"
	if err := afero.WriteFile(r.fs, tempLink, []byte(target), StateFilePermissions); err != nil {
		return fmt.Errorf("failed to write temp latest link: %w", err)
	}
	if err := r.fs.Rename(tempLink, link); err != nil {
		if removeErr := r.fs.Remove(tempLink); removeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to remove temp link: %v\n", removeErr)
		}
		return fmt.Errorf("failed to update latest link: %w", err)
	}
	return nil
}

// extractRunID extracts the run ID from a state filename
func (r *JSONStateRepository) extractRunID(filename string) string {
	base := filepath.Base(filename)
	if len(base) > 9 && base[:4] == "run-" && base[len(base)-5:] == ".json" {
		return base[4 : len(base)-5]
	}
	return ""
}
