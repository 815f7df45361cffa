package service

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"text/template"

	"github.com/relkit/relkit/internal/domain"
)

// notesService is the implementation of the NotesService interface.
type notesService struct{}

// NewNotesService creates a new NotesService.
func NewNotesService() NotesService {
	return &notesService{}
}

const commitMessageTemplate = "ci(release): bump version to {{.Version}}"

const tagMessageTemplate = `Release {{.Version}}

{{.Total}} commit{{if ne .Total 1}}s{{end}} since {{.Base}} ({{.Level}} bump; markers: {{.PatchMarked}} patch, {{.MinorMarked}} minor, {{.MajorMarked}} major)
`

// sanitizeVersion validates a version string before it is interpolated into
// git metadata.
func (s *notesService) sanitizeVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	validVersion := regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.-]+)?(\+[a-zA-Z0-9.-]+)?$`)
	if !validVersion.MatchString(version) {
		return fmt.Errorf("invalid version format: %s", version)
	}
	if len(version) > 100 {
		return fmt.Errorf("version too long: maximum 100 characters")
	}
	return nil
}

// CommitMessage renders the version-bump commit message. It always contains
// the new version string.
func (s *notesService) CommitMessage(_ context.Context, release *domain.Release) (string, error) {
	if release == nil || release.Version == nil {
		return "", fmt.Errorf("release version cannot be nil")
	}
	version := release.Version.String()
	if err := s.sanitizeVersion(version); err != nil {
		return "", err
	}
	return s.render(commitMessageTemplate, map[string]any{"Version": version})
}

// TagMessage renders the annotated tag message summarizing the commit range.
func (s *notesService) TagMessage(_ context.Context, release *domain.Release) (string, error) {
	if release == nil || release.Version == nil {
		return "", fmt.Errorf("release version cannot be nil")
	}
	version := release.Version.String()
	if err := s.sanitizeVersion(version); err != nil {
		return "", err
	}
	base := release.Changes.BaseTag
	if base == "" {
		base = "the beginning of history"
	}
	return s.render(tagMessageTemplate, map[string]any{
		"Version":     version,
		"Base":        base,
		"Level":       string(release.Level),
		"Total":       release.Changes.Total,
		"PatchMarked": release.Changes.PatchMarked,
		"MinorMarked": release.Changes.MinorMarked,
		"MajorMarked": release.Changes.MajorMarked,
	})
}

func (s *notesService) render(tmpl string, data map[string]any) (string, error) {
	parsed, err := template.New("notes").Option("missingkey=error").Parse(tmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse notes template: %w", err)
	}
	var buf bytes.Buffer
	if err := parsed.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render notes template: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
