package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"

	"pastify/internal/repositories"
	"pastify/internal/services"
	"pastify/internal/session"
	"pastify/internal/shared"
	"pastify/internal/tasks"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config      *shared.Config
	configPath  string
	catalog     services.Catalog
	tokens      services.TokenStore
	submissions *repositories.SubmissionRepository
	engine      tasks.Reconciler
	session     *session.Session
	logger      *log.Logger
	output      io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config      *shared.Config
	ConfigPath  string
	Catalog     services.Catalog
	Tokens      services.TokenStore
	Submissions *repositories.SubmissionRepository
	Engine      tasks.Reconciler
	Session     *session.Session
	Logger      *log.Logger
	Output      io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	if opts.Engine == nil && opts.Catalog != nil {
		var recorder tasks.SubmissionRecorder
		if opts.Submissions != nil {
			recorder = opts.Submissions
		}
		opts.Engine = tasks.NewReconcileEngine(opts.Catalog, recorder)
	}

	if opts.Session == nil && opts.Tokens != nil && opts.Catalog != nil {
		opts.Session = session.NewSession(opts.Tokens, opts.Catalog, opts.Engine, opts.Logger)
	}

	return &Runner{
		config:      opts.Config,
		configPath:  opts.ConfigPath,
		catalog:     opts.Catalog,
		tokens:      opts.Tokens,
		submissions: opts.Submissions,
		engine:      opts.Engine,
		session:     opts.Session,
		logger:      opts.Logger,
		output:      opts.Output,
	}
}

// SetLogger swaps the runner's logger, used when the TUI owns the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, playlistsCommand, artistsCommand, submitCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// startSession restores the session from the stored credential and verifies
// the caller can issue catalog calls.
func (r *Runner) startSession(ctx context.Context) error {
	if r.session == nil {
		return fmt.Errorf("%w: catalog client not initialized, run 'pastify setup'", shared.ErrServiceUnavailable)
	}

	if err := r.session.Startup(ctx); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}

	if r.session.Status() != session.StatusReady {
		return fmt.Errorf("%w: run 'pastify auth login' first", shared.ErrNotAuthenticated)
	}

	return nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
