package orchestrator

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	// versionRegex matches semantic versions with optional 'v' prefix
	versionRegex = regexp.MustCompile(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9.]+)?(\+[a-zA-Z0-9.]+)?$`)
	// tagNameRegex matches valid git tag names
	tagNameRegex = regexp.MustCompile(`^[a-zA-Z0-9._/-]+$`)
)

// ValidateVersion validates a semantic version string.
func ValidateVersion(version string) error {
	if version == "" {
		return fmt.Errorf("version cannot be empty")
	}
	if !versionRegex.MatchString(version) {
		return fmt.Errorf("invalid version format: %s (expected: v1.2.3 or 1.2.3)", version)
	}
	return nil
}

// ValidateTagName validates a git tag name.
func ValidateTagName(tag string) error {
	if tag == "" {
		return fmt.Errorf("tag name cannot be empty")
	}
	if len(tag) > 255 {
		return fmt.Errorf("tag name too long: %d characters (max: 255)", len(tag))
	}
	if strings.HasPrefix(tag, "/") || strings.HasSuffix(tag, "/") {
		return fmt.Errorf("tag name cannot start or end with slash: %s", tag)
	}
	if strings.Contains(tag, "..") {
		return fmt.Errorf("tag name cannot contain consecutive dots: %s", tag)
	}
	if strings.HasSuffix(tag, ".lock") {
		return fmt.Errorf("tag name cannot end with .lock: %s", tag)
	}
	if !tagNameRegex.MatchString(tag) {
		return fmt.Errorf("invalid tag name format: %s", tag)
	}
	return nil
}

// ValidateEnvironmentVariables checks for required environment variables.
func ValidateEnvironmentVariables(requiredVars []string) error {
	var missing []string
	for _, v := range requiredVars {
		if value := os.Getenv(v); value == "" {
			missing = append(missing, v)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	return nil
}
