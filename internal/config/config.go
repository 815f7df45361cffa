package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/spf13/viper"
)

type Config struct {
	GithubToken    string `mapstructure:"github_token"`
	GithubOwner    string `mapstructure:"github_owner"`
	GithubRepo     string `mapstructure:"github_repo"`
	RemoteName     string `mapstructure:"remote_name"`
	MainBranch     string `mapstructure:"main_branch"`
	VersionFile    string `mapstructure:"version_file"`
	InitialVersion string `mapstructure:"initial_version"`
	StateDir       string `mapstructure:"state_dir"`
	HistoryDB      string `mapstructure:"history_db"`
	GitUserName    string `mapstructure:"git_user_name"`
	GitUserEmail   string `mapstructure:"git_user_email"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		RemoteName:   "origin",
		MainBranch:   "main",
		VersionFile:  ".bumpversion.cfg",
		StateDir:     ".relkit-state",
		HistoryDB:    filepath.Join(".relkit", "history.db"),
		GitUserName:  "github-actions[bot]",
		GitUserEmail: "github-actions[bot]@users.noreply.github.com",
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	// GitHub token is optional - the announce step is skipped without it
	if c.GithubToken != "" {
		if err := ValidateGitHubToken(c.GithubToken); err != nil {
			return fmt.Errorf("invalid github_token: %w", err)
		}
		if err := ValidateGitHubOwnerRepo(c.GithubOwner, c.GithubRepo); err != nil {
			return fmt.Errorf("invalid github configuration: %w", err)
		}
	}
	if c.RemoteName == "" {
		return fmt.Errorf("remote_name cannot be empty")
	}
	if c.MainBranch == "" {
		return fmt.Errorf("main_branch cannot be empty")
	}
	if c.VersionFile == "" {
		return fmt.Errorf("version_file cannot be empty")
	}
	if strings.Contains(c.VersionFile, "..") {
		return fmt.Errorf("version_file contains invalid path traversal")
	}
	if strings.Contains(c.StateDir, "..") {
		return fmt.Errorf("state_dir contains invalid path traversal")
	}
	if strings.Contains(c.HistoryDB, "..") {
		return fmt.Errorf("history_db contains invalid path traversal")
	}
	return nil
}

// ValidateForAnnounce validates that GitHub credentials are present for the
// release announcement step.
func (c *Config) ValidateForAnnounce() error {
	if c.GithubToken == "" {
		return fmt.Errorf("github_token is required to announce releases")
	}
	return c.Validate()
}

// ValidateGitHubToken validates GitHub token format (exported for reuse)
func ValidateGitHubToken(token string) error {
	token = strings.TrimSpace(token)
	if len(token) < 40 {
		return fmt.Errorf("token too short: expected at least 40 characters")
	}
	// Validate token format patterns
	classicPAT := regexp.MustCompile(`^[a-fA-F0-9]{40}$`)
	fineGrainedPAT := regexp.MustCompile(`^github_pat_[a-zA-Z0-9_]{82}$`)
	appToken := regexp.MustCompile(`^ghs_[a-zA-Z0-9]{36}$`)
	oauthToken := regexp.MustCompile(`^gho_[a-zA-Z0-9]{36}$`)
	if !classicPAT.MatchString(token) &&
		!fineGrainedPAT.MatchString(token) &&
		!appToken.MatchString(token) &&
		!oauthToken.MatchString(token) {
		return fmt.Errorf("invalid token format")
	}
	return nil
}

// ValidateGitHubOwnerRepo validates GitHub owner and repository names (exported for reuse)
func ValidateGitHubOwnerRepo(owner, repo string) error {
	if owner == "" {
		return fmt.Errorf("owner cannot be empty")
	}
	if repo == "" {
		return fmt.Errorf("repository cannot be empty")
	}
	validName := regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9\-_.]*[a-zA-Z0-9]$|^[a-zA-Z0-9]$`)
	if !validName.MatchString(owner) {
		return fmt.Errorf("invalid owner format: %s", owner)
	}
	if len(owner) > 39 {
		return fmt.Errorf("owner too long: maximum 39 characters")
	}
	if !validName.MatchString(repo) {
		return fmt.Errorf("invalid repository format: %s", repo)
	}
	if len(repo) > 100 {
		return fmt.Errorf("repository too long: maximum 100 characters")
	}
	return nil
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName(".relkit")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	// Configure environment variables
	viper.SetEnvPrefix("RELKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// Explicitly bind environment variables
	// BindEnv allows multiple env vars - it will check them in order
	bindings := map[string][]string{
		"github_token":    {"GITHUB_TOKEN", "RELKIT_GITHUB_TOKEN"},
		"github_owner":    {"GITHUB_REPOSITORY_OWNER", "RELKIT_GITHUB_OWNER"},
		"github_repo":     {"GITHUB_REPOSITORY_NAME", "RELKIT_GITHUB_REPO"},
		"remote_name":     {"RELKIT_REMOTE_NAME"},
		"main_branch":     {"RELKIT_MAIN_BRANCH"},
		"version_file":    {"RELKIT_VERSION_FILE"},
		"initial_version": {"INITIAL_VERSION", "RELKIT_INITIAL_VERSION"},
		"state_dir":       {"RELKIT_STATE_DIR"},
		"history_db":      {"RELKIT_HISTORY_DB"},
		"git_user_name":   {"RELKIT_GIT_USER_NAME"},
		"git_user_email":  {"RELKIT_GIT_USER_EMAIL"},
	}
	for key, envs := range bindings {
		args := append([]string{key}, envs...)
		if err := viper.BindEnv(args...); err != nil {
			return nil, fmt.Errorf("failed to bind %s env: %w", key, err)
		}
	}
	// Set defaults
	defaults := DefaultConfig()
	viper.SetDefault("remote_name", defaults.RemoteName)
	viper.SetDefault("main_branch", defaults.MainBranch)
	viper.SetDefault("version_file", defaults.VersionFile)
	viper.SetDefault("state_dir", defaults.StateDir)
	viper.SetDefault("history_db", defaults.HistoryDB)
	viper.SetDefault("git_user_name", defaults.GitUserName)
	viper.SetDefault("git_user_email", defaults.GitUserEmail)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	// Owner/repo may come from the CI slug or the git remote when not set
	if err := populateRepositoryDefaults(&config); err != nil {
		return nil, err
	}
	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &config, nil
}

// populateRepositoryDefaults fills GithubOwner/GithubRepo from the
// GITHUB_REPOSITORY slug, falling back to the origin remote URL of the
// repository in the working directory. Leaves the fields empty when neither
// source is available; that only matters for the announce step.
func populateRepositoryDefaults(cfg *Config) error {
	if cfg.GithubOwner != "" && cfg.GithubRepo != "" {
		return nil
	}
	if slug := os.Getenv("GITHUB_REPOSITORY"); slug != "" {
		if idx := strings.Index(slug, "/"); idx > 0 && idx < len(slug)-1 {
			if cfg.GithubOwner == "" {
				cfg.GithubOwner = slug[:idx]
			}
			if cfg.GithubRepo == "" {
				cfg.GithubRepo = slug[idx+1:]
			}
			return nil
		}
	}
	repo, err := git.PlainOpen(".")
	if err != nil {
		return nil // not in a repository; leave fields empty
	}
	remoteName := cfg.RemoteName
	if remoteName == "" {
		remoteName = "origin"
	}
	remote, err := repo.Remote(remoteName)
	if err != nil || len(remote.Config().URLs) == 0 {
		return nil
	}
	owner, name, err := parseGitRemoteURL(remote.Config().URLs[0])
	if err != nil {
		return nil
	}
	if cfg.GithubOwner == "" {
		cfg.GithubOwner = owner
	}
	if cfg.GithubRepo == "" {
		cfg.GithubRepo = name
	}
	return nil
}

// parseGitRemoteURL extracts owner and repository name from an https, ssh or
// plain path remote URL.
func parseGitRemoteURL(url string) (string, string, error) {
	trimmed := strings.TrimSuffix(url, ".git")
	trimmed = strings.TrimSuffix(trimmed, "/")
	// ssh form: git@host:owner/repo
	if idx := strings.Index(trimmed, ":"); idx >= 0 && !strings.Contains(trimmed[:idx], "/") {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.ReplaceAll(trimmed, "\\", "/")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("cannot determine owner/repo from remote url: %s", url)
	}
	owner := parts[len(parts)-2]
	name := parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("cannot determine owner/repo from remote url: %s", url)
	}
	return owner, name, nil
}
