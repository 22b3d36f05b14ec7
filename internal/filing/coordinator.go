package filing

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"
)

// DefaultQuery is the mail search selecting messages eligible for filing.
const DefaultQuery = "is:unread has:attachment filename:pdf"

// DefaultLockTimeout bounds the wait for the run lock. An expired wait
// means another run is active and the invocation is skipped silently.
const DefaultLockTimeout = 5 * time.Second

// RunStatus is the terminal state of one run.
type RunStatus string

const (
	// RunCompleted means the run finished; placements may be zero.
	RunCompleted RunStatus = "completed"
	// RunSkipped means another run held the lock. Not an error.
	RunSkipped RunStatus = "skipped"
)

// RunReport summarizes one run for logging and metrics.
type RunReport struct {
	Status    RunStatus
	Threads   int
	Messages  int
	Documents map[string]int
	SweepRan  bool
	Duration  time.Duration
}

// Config holds the per-deployment settings of the Coordinator.
type Config struct {
	// Query is the mail search; defaults to DefaultQuery.
	Query string
	// RootFolderID identifies the canonical folder in the file store.
	RootFolderID string
	// LockTimeout bounds the run-lock wait; defaults to DefaultLockTimeout.
	LockTimeout time.Duration
	// Location is the time zone for calendar-day decisions; nil means local.
	Location *time.Location
	// DryRun classifies and logs without mutating mail, files, or state.
	DryRun bool
}

// Deps are the injected collaborators of the Coordinator. Notifier may be
// nil; everything else is required.
type Deps struct {
	Mail     MailStore
	Files    FileStore
	State    StateStore
	Lock     Locker
	Notifier Notifier
	Rules    *RuleTable
	Logger   *slog.Logger
	// Now overrides the clock in tests; nil means time.Now.
	Now func() time.Time
}

// Coordinator orchestrates one filing run end to end.
type Coordinator struct {
	cfg   Config
	deps  Deps
	rec   *Reconciler
	sweep *Sweeper
	class *Classifier
	log   *slog.Logger
}

// NewCoordinator validates dependencies and returns a Coordinator.
func NewCoordinator(cfg Config, deps Deps) (*Coordinator, error) {
	if deps.Mail == nil || deps.Files == nil || deps.State == nil || deps.Lock == nil {
		return nil, fmt.Errorf("filing: mail, files, state and lock are required")
	}
	if deps.Rules == nil {
		return nil, fmt.Errorf("filing: rule table is required")
	}
	if cfg.RootFolderID == "" {
		return nil, fmt.Errorf("filing: root folder id is required")
	}
	if cfg.Query == "" {
		cfg.Query = DefaultQuery
	}
	if cfg.LockTimeout == 0 {
		cfg.LockTimeout = DefaultLockTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	rec := NewReconciler(deps.Now)
	return &Coordinator{
		cfg:   cfg,
		deps:  deps,
		rec:   rec,
		sweep: NewSweeper(deps.Rules, rec, deps.Logger),
		class: NewClassifier(deps.Rules, rec, deps.Logger, cfg.DryRun),
		log:   deps.Logger,
	}, nil
}

// Run executes one filing pass. A lock timeout yields a skipped report and
// a nil error. Any upstream fault aborts the run with the error; placements
// already committed stay committed, and threads whose processing did not
// reach mark-read remain unread and eligible for the next invocation.
func (c *Coordinator) Run(ctx context.Context) (*RunReport, error) {
	started := c.deps.Now()
	report := &RunReport{Status: RunCompleted, Documents: make(map[string]int)}

	if !c.deps.Lock.TryAcquire(c.cfg.LockTimeout) {
		c.log.Debug("another run is active, skipping", "operation", "run")
		report.Status = RunSkipped
		report.Duration = c.deps.Now().Sub(started)
		return report, nil
	}
	defer c.deps.Lock.Release()

	err := c.run(ctx, report)
	report.Duration = c.deps.Now().Sub(started)
	if err != nil {
		return report, err
	}

	c.log.Info("run complete",
		"operation", "run",
		"threads", report.Threads,
		"messages", report.Messages,
		"documents", report.Documents,
		"sweep", report.SweepRan,
		"duration", report.Duration)
	return report, nil
}

func (c *Coordinator) run(ctx context.Context, report *RunReport) error {
	st, err := LoadRunState(ctx, c.deps.State)
	if err != nil {
		return err
	}

	root, err := c.deps.Files.Folder(ctx, c.cfg.RootFolderID)
	if err != nil {
		return fmt.Errorf("resolving canonical root: %w", err)
	}
	folders := newFolderCache(root)

	today := c.deps.Now().In(c.cfg.Location).Format(dateLayout)
	rolloverPending := today != st.LastRunDate
	if !rolloverPending {
		if err := c.sanityCheck(ctx, root, &st); err != nil {
			return err
		}
	}

	// allocate hands out the next driver sequence number. The archive sweep
	// and the lastRunDate write happen here, on the first driver document of
	// a new day, so a day without arrivals never disturbs current files.
	allocate := func(ctx context.Context) (int, error) {
		if rolloverPending {
			if !report.SweepRan && !c.cfg.DryRun {
				if err := c.sweep.Sweep(ctx, root, folders); err != nil {
					return 0, err
				}
			}
			report.SweepRan = true
			st.Sequence = 0
			if !c.cfg.DryRun {
				if err := saveLastRunDate(ctx, c.deps.State, today); err != nil {
					return 0, err
				}
			}
			rolloverPending = false
		}
		st.Sequence++
		if !c.cfg.DryRun {
			if err := saveSequence(ctx, c.deps.State, st.Sequence); err != nil {
				return 0, err
			}
		}
		return st.Sequence, nil
	}

	threads, err := c.deps.Mail.Search(ctx, c.cfg.Query)
	if err != nil {
		return fmt.Errorf("searching mail: %w", err)
	}
	report.Threads = len(threads)

	for _, thread := range threads {
		if err := c.processThread(ctx, thread, root, folders, allocate, report); err != nil {
			return err
		}
	}
	return nil
}

// processThread classifies a thread's unread messages oldest-first and
// marks the thread read iff at least one message contributed a placement.
// Mark-read happens strictly after all placements are durable; a crash
// before that point leaves the thread unread and eligible for the next run.
func (c *Coordinator) processThread(ctx context.Context, thread Thread, root Folder, folders *folderCache, allocate func(context.Context) (int, error), report *RunReport) error {
	msgs, err := thread.Messages(ctx)
	if err != nil {
		return fmt.Errorf("loading thread %s: %w", thread.ID(), err)
	}

	unread := msgs[:0:0]
	for _, m := range msgs {
		if m.Unread() {
			unread = append(unread, m)
		}
	}
	// Oldest first, so sequence numbers reflect chronological arrival.
	sort.SliceStable(unread, func(i, j int) bool {
		return unread[i].Received().Before(unread[j].Received())
	})

	processed := false
	for _, msg := range unread {
		res, err := c.class.ClassifyMessage(ctx, msg, root, folders, allocate)
		if err != nil {
			return fmt.Errorf("classifying message %s: %w", msg.ID(), err)
		}
		if len(res.Placements) == 0 {
			continue
		}
		processed = true
		report.Messages++
		for _, p := range res.Placements {
			report.Documents[p.TypeID]++
			c.log.Info("document filed",
				"operation", "classify",
				"doc_type", p.TypeID,
				"filename", p.Name,
				"thread", thread.ID())
			if p.Driver {
				c.notifyPlacement(ctx, p)
			}
		}
	}

	if processed && !c.cfg.DryRun {
		if err := c.deps.Mail.MarkThreadRead(ctx, thread.ID()); err != nil {
			return fmt.Errorf("marking thread %s read: %w", thread.ID(), err)
		}
	}
	return nil
}

// sanityCheck self-heals the sequence counter on same-day runs: if the
// first numbered driver slot has gone missing (deleted by hand), the
// counter resets to zero immediately instead of waiting for day rollover.
func (c *Coordinator) sanityCheck(ctx context.Context, root Folder, st *RunState) error {
	if st.Sequence == 0 {
		return nil
	}
	first := c.deps.Rules.Driver().NumberedSlot(1)
	files, err := root.FilesNamed(ctx, first)
	if err != nil {
		return fmt.Errorf("probing %s: %w", first, err)
	}
	if len(files) > 0 {
		return nil
	}
	c.log.Warn("first driver slot missing, resetting sequence counter",
		"operation", "sanity_check",
		"filename", first,
		"sequence", st.Sequence)
	st.Sequence = 0
	if c.cfg.DryRun {
		return nil
	}
	return saveSequence(ctx, c.deps.State, 0)
}

// notifyPlacement delivers the webhook notification for a driver document.
// Failures are logged and never affect the run outcome.
func (c *Coordinator) notifyPlacement(ctx context.Context, p Placement) {
	if c.deps.Notifier == nil || p.File == nil {
		return
	}
	n := Notification{
		Title:    "New call sheet",
		Text:     p.Name,
		FileLink: p.File.WebViewLink(),
	}
	if err := c.deps.Notifier.Notify(ctx, n); err != nil {
		c.log.Warn("notification failed", "operation", "notify", "error", err.Error())
	}
}
