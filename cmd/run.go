package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/docfiler/internal/drive"
	"github.com/teemow/docfiler/internal/filing"
	"github.com/teemow/docfiler/internal/gmail"
	"github.com/teemow/docfiler/internal/instrumentation"
	"github.com/teemow/docfiler/internal/logging"
	"github.com/teemow/docfiler/internal/notify"
	"github.com/teemow/docfiler/internal/state"
)

// filingOptions are the settings shared by the run and serve commands.
type filingOptions struct {
	account      string
	rootFolderID string
	query        string
	lockTimeout  time.Duration
	timezone     string
	stateDir     string
	webhookURL   string
	dryRun       bool
	logLevel     string
}

func (o *filingOptions) registerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.account, "account", "default", "Google account name to use (default: 'default')")
	cmd.Flags().StringVar(&o.rootFolderID, "root-folder-id", "", "Drive folder ID of the canonical document folder. Can also use DOCFILER_ROOT_FOLDER_ID env var.")
	cmd.Flags().StringVar(&o.query, "query", filing.DefaultQuery, "Gmail search query selecting eligible messages")
	cmd.Flags().DurationVar(&o.lockTimeout, "lock-timeout", filing.DefaultLockTimeout, "How long to wait for the run lock before skipping")
	cmd.Flags().StringVar(&o.timezone, "timezone", "", "IANA time zone for day-rollover decisions (default: local)")
	cmd.Flags().StringVar(&o.stateDir, "state-dir", "", "Directory for the run state database (default: ~/.docfiler/data)")
	cmd.Flags().StringVar(&o.webhookURL, "webhook-url", "", "Webhook URL notified when a new call sheet is filed. Can also use DOCFILER_WEBHOOK_URL env var.")
	cmd.Flags().BoolVar(&o.dryRun, "dry-run", false, "Classify and log without mutating Gmail, Drive or state")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// resolveEnv fills unset options from the environment.
func (o *filingOptions) resolveEnv() error {
	if o.rootFolderID == "" {
		o.rootFolderID = os.Getenv("DOCFILER_ROOT_FOLDER_ID")
	}
	if o.rootFolderID == "" {
		return fmt.Errorf("root folder ID is required; set --root-folder-id or DOCFILER_ROOT_FOLDER_ID")
	}
	if o.webhookURL == "" {
		o.webhookURL = os.Getenv("DOCFILER_WEBHOOK_URL")
	}
	return nil
}

func (o *filingOptions) location() (*time.Location, error) {
	if o.timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(o.timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", o.timezone, err)
	}
	return loc, nil
}

// filingRuntime bundles the wired collaborators of the filing engine.
type filingRuntime struct {
	coord  *filing.Coordinator
	files  *drive.Store
	state  *state.Store
	logger *slog.Logger
	cfg    filing.Config
}

// newFilingRuntime builds Gmail and Drive clients, the state store, the
// notifier and the coordinator from the given options. A non-nil metrics
// recorder is attached to both API clients.
func newFilingRuntime(ctx context.Context, opts *filingOptions, logger *slog.Logger, metrics *instrumentation.Metrics) (*filingRuntime, error) {
	if err := opts.resolveEnv(); err != nil {
		return nil, err
	}
	loc, err := opts.location()
	if err != nil {
		return nil, err
	}

	gmailClient, err := gmail.NewClientForAccount(ctx, opts.account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail client for account %s: %w", opts.account, err)
	}
	driveClient, err := drive.NewClientForAccount(ctx, opts.account)
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive client for account %s: %w", opts.account, err)
	}
	if metrics != nil {
		gmailClient.SetMetrics(metrics)
		driveClient.SetMetrics(metrics)
	}

	stateStore, err := state.NewStore(opts.stateDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}

	var notifier filing.Notifier
	if opts.webhookURL != "" {
		notifier = notify.NewWebhook(opts.webhookURL)
	}

	rules, err := filing.NewRuleTable(filing.DefaultRules(), filing.DefaultExclusions())
	if err != nil {
		_ = stateStore.Close()
		return nil, err
	}

	files := drive.NewStore(driveClient)
	cfg := filing.Config{
		Query:        opts.query,
		RootFolderID: opts.rootFolderID,
		LockTimeout:  opts.lockTimeout,
		Location:     loc,
		DryRun:       opts.dryRun,
	}

	coord, err := filing.NewCoordinator(cfg, filing.Deps{
		Mail:     gmail.NewStore(gmailClient),
		Files:    files,
		State:    stateStore,
		Lock:     filing.NewRunLock(),
		Notifier: notifier,
		Rules:    rules,
		Logger:   logger,
	})
	if err != nil {
		_ = stateStore.Close()
		return nil, err
	}

	return &filingRuntime{
		coord:  coord,
		files:  files,
		state:  stateStore,
		logger: logger,
		cfg:    cfg,
	}, nil
}

// Close releases the runtime's resources.
func (rt *filingRuntime) Close() error {
	return rt.state.Close()
}

func newRunCmd() *cobra.Command {
	opts := &filingOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute one filing pass over the inbox",
		Long: `Scan the Gmail inbox for unread messages with PDF attachments, file each
matching attachment into the Drive folder, and mark processed threads read.

A pass that finds another pass already running exits silently.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logging.New(opts.logLevel)
			ctx := cmd.Context()

			rt, err := newFilingRuntime(ctx, opts, logger, nil)
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					logger.Warn("failed to close state store", logging.Err(err))
				}
			}()

			report, err := rt.coord.Run(ctx)
			if err != nil {
				return fmt.Errorf("filing run failed: %w", err)
			}
			if report.Status == filing.RunSkipped {
				logger.Info("run skipped, another run active", logging.Operation("run"))
			}
			return nil
		},
	}

	opts.registerFlags(cmd)
	return cmd
}
