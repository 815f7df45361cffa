package cmd

import (
	"fmt"

	"github.com/relkit/relkit/internal/config"
	"github.com/relkit/relkit/internal/orchestrator"
	"github.com/relkit/relkit/internal/repository"
	"github.com/relkit/relkit/internal/service"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// container holds all the dependencies for the application.

type container struct {
	cfg    *config.Config
	logger *zap.Logger

	fsRepo         repository.FileSystemRepository
	gitRepo        repository.GitExtendedRepository
	ghRepo         repository.GithubExtendedRepository
	versionFileSvc service.VersionFileService
	notesSvc       service.NotesService
	historyRepo    repository.HistoryRepository
}

// newContainer creates a new container with all the dependencies.
func newContainer() (*container, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := newLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	fsRepo := repository.FileSystemRepository(afero.NewOsFs())
	gitRepo, err := repository.NewGitExtendedRepository(cfg.RemoteName)
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	// The GitHub client is only built when a token is configured; the noop
	// implementation keeps the announce path inert otherwise.
	var ghRepo repository.GithubExtendedRepository
	if cfg.GithubToken != "" {
		ghRepo, err = repository.NewGithubExtendedRepository(cfg.GithubToken, cfg.GithubOwner, cfg.GithubRepo)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize GitHub client: %w", err)
		}
	} else {
		ghRepo = repository.NewGithubNoopExtendedRepository(cfg.GithubOwner, cfg.GithubRepo)
	}

	historyRepo, err := repository.NewHistoryRepository(cfg.HistoryDB)
	if err != nil {
		return nil, fmt.Errorf("failed to open history ledger: %w", err)
	}

	return &container{
		cfg:            cfg,
		logger:         logger,
		fsRepo:         fsRepo,
		gitRepo:        gitRepo,
		ghRepo:         ghRepo,
		versionFileSvc: service.NewVersionFileService(fsRepo),
		notesSvc:       service.NewNotesService(),
		historyRepo:    historyRepo,
	}, nil
}

// InitCommands initializes all commands with their dependencies
func InitCommands() error {
	c, err := newContainer()
	if err != nil {
		return err
	}

	releaseOrch := orchestrator.NewReleaseOrchestrator(
		c.gitRepo,
		c.ghRepo,
		c.fsRepo,
		c.versionFileSvc,
		c.notesSvc,
		c.historyRepo,
		c.cfg,
	)
	rootCmd.AddCommand(NewBumpCmd(c, releaseOrch))

	planOrch := orchestrator.NewPlanOrchestrator(c.gitRepo, c.versionFileSvc, c.cfg)
	rootCmd.AddCommand(NewPlanCmd(c, planOrch))

	rootCmd.AddCommand(NewHistoryCmd(c))
	rootCmd.AddCommand(newVersionCmd())

	return nil
}
