package service

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/relkit/relkit/internal/domain"
	"github.com/spf13/afero"
	"gopkg.in/ini.v1"
)

const (
	// VersionKey is the single key the version file must carry.
	VersionKey = "current_version"
	// VersionSection is the preferred section for the key.
	VersionSection = "bumpversion"
	// VersionFilePermissions is the mode for a freshly created version file.
	VersionFilePermissions = 0644
)

// versionFileService is the implementation of the VersionFileService interface.
type versionFileService struct {
	fs afero.Fs
}

// NewVersionFileService creates a new VersionFileService over the given filesystem.
func NewVersionFileService(fs afero.Fs) VersionFileService {
	return &versionFileService{fs: fs}
}

// Read parses the version file and returns the current version.
func (s *versionFileService) Read(_ context.Context, path string) (*domain.Version, error) {
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("version file %s not found: %w", path, err)
		}
		return nil, fmt.Errorf("failed to read version file %s: %w", path, err)
	}
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse version file %s: %w", path, err)
	}
	section, err := s.findSection(cfg)
	if err != nil {
		return nil, fmt.Errorf("version file %s: %w", path, err)
	}
	raw := section.Key(VersionKey).String()
	version, err := domain.NewVersion(raw)
	if err != nil {
		return nil, fmt.Errorf("version file %s holds invalid version %q: %w", path, raw, err)
	}
	return version, nil
}

// Write updates current_version in place, preserving any other keys. A
// missing file is created with a [bumpversion] section.
func (s *versionFileService) Write(_ context.Context, path string, version *domain.Version) error {
	if version == nil {
		return fmt.Errorf("version cannot be nil")
	}
	exists, err := afero.Exists(s.fs, path)
	if err != nil {
		return fmt.Errorf("failed to check version file %s: %w", path, err)
	}
	var cfg *ini.File
	if exists {
		data, err := afero.ReadFile(s.fs, path)
		if err != nil {
			return fmt.Errorf("failed to read version file %s: %w", path, err)
		}
		cfg, err = ini.Load(data)
		if err != nil {
			return fmt.Errorf("failed to parse version file %s: %w", path, err)
		}
	} else {
		cfg = ini.Empty()
	}
	section, err := s.findSection(cfg)
	if err != nil {
		// New or key-less file: create the conventional section
		section, err = cfg.NewSection(VersionSection)
		if err != nil {
			return fmt.Errorf("failed to create section: %w", err)
		}
	}
	section.Key(VersionKey).SetValue(version.Plain())
	var buf bytes.Buffer
	if _, err := cfg.WriteTo(&buf); err != nil {
		return fmt.Errorf("failed to serialize version file: %w", err)
	}
	if err := afero.WriteFile(s.fs, path, buf.Bytes(), VersionFilePermissions); err != nil {
		return fmt.Errorf("failed to write version file %s: %w", path, err)
	}
	return nil
}

// findSection returns the section holding current_version, preferring
// [bumpversion] over the unnamed default section.
func (s *versionFileService) findSection(cfg *ini.File) (*ini.Section, error) {
	if section, err := cfg.GetSection(VersionSection); err == nil && section.HasKey(VersionKey) {
		return section, nil
	}
	if section := cfg.Section(ini.DefaultSection); section.HasKey(VersionKey) {
		return section, nil
	}
	return nil, fmt.Errorf("no %s key found", VersionKey)
}
