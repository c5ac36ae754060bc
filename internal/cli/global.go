package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/contentkit/studio/internal/client"
	"github.com/contentkit/studio/internal/config"
	"github.com/contentkit/studio/internal/logging"
	"github.com/contentkit/studio/internal/model"
	"github.com/contentkit/studio/internal/session"
)

type GlobalOptions struct {
	BackendURL  string
	SessionPath string
	Verbose     bool

	cfg     *config.Config
	logger  *zap.Logger
	session *session.Session
	out     io.Writer
}

func DefaultGlobalOptions() GlobalOptions {
	return GlobalOptions{}
}

func (o *GlobalOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVar(&o.BackendURL, "backend-url", o.BackendURL, "Base URL of the content backend (overrides BACKEND_BASE_URL)")
	fs.StringVar(&o.SessionPath, "session", o.SessionPath, "Path of the session file (overrides SESSION_PATH)")
	fs.BoolVarP(&o.Verbose, "verbose", "v", o.Verbose, "Log every backend request")
}

// Complete loads configuration and opens the session file.
func (o *GlobalOptions) Complete(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if o.BackendURL != "" {
		cfg.Backend.BaseURL = o.BackendURL
	}
	if o.SessionPath != "" {
		cfg.Session.Path = o.SessionPath
	}
	cfg.Server.LogLevel = "warn"
	if o.Verbose {
		cfg.Server.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.Server)
	if err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = logger
	var store session.Store = session.NewFileStore(cfg.Session.Path)
	if cfg.Session.Store == "memory" {
		store = session.NewMemoryStore()
	}
	o.session = session.New(store)
	o.out = cmd.OutOrStdout()
	return nil
}

func (o *GlobalOptions) Validate(_ []string) error {
	return nil
}

func (o *GlobalOptions) Clients() (*client.Clients, error) {
	return client.New(o.cfg.Backend, client.Options{
		Session: o.session,
		Logger:  o.logger,
	})
}

func (o *GlobalOptions) validator() *validator.Validate {
	return validator.New()
}

// printNotifier shows job notices on the terminal.
type printNotifier struct {
	out io.Writer
}

func (n printNotifier) Notify(_ context.Context, note model.Notification) error {
	_, err := fmt.Fprintf(n.out, "[%s] %s\n", note.Level, note.Message)
	return err
}

// run completes and validates o, then calls fn.
func run(cmd *cobra.Command, args []string, o *GlobalOptions, fn func(ctx context.Context) error) error {
	if err := o.Complete(cmd, args); err != nil {
		return err
	}
	if err := o.Validate(args); err != nil {
		return err
	}
	defer func() { _ = o.logger.Sync() }()
	return fn(cmd.Context())
}
