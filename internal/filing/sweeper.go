package filing

import (
	"context"
	"fmt"
	"log/slog"
)

// Sweeper performs the day-rollover archive sweep: every file directly
// under the canonical root whose name contains a known rule stem is moved
// into that rule's archive folder with a timestamp suffix.
//
// The sweep is triggered lazily by the first driver document of a new day,
// never unconditionally at run start, so a day with zero arrivals leaves
// the previous day's canonical files in place.
type Sweeper struct {
	rules *RuleTable
	rec   *Reconciler
	log   *slog.Logger
}

// NewSweeper returns a Sweeper using rec for archive naming and moves.
func NewSweeper(rules *RuleTable, rec *Reconciler, log *slog.Logger) *Sweeper {
	if log == nil {
		log = slog.Default()
	}
	return &Sweeper{rules: rules, rec: rec, log: log}
}

// Sweep archives all current canonical files under root. Archive folder
// handles are resolved through folders so lookups are cached per run.
func (s *Sweeper) Sweep(ctx context.Context, root Folder, folders *folderCache) error {
	files, err := root.Files(ctx)
	if err != nil {
		return fmt.Errorf("listing canonical root: %w", err)
	}

	swept := 0
	for _, f := range files {
		rule := s.rules.RuleForFileStem(f.Name())
		if rule == nil {
			continue
		}
		archive, err := folders.ensure(ctx, rule.ArchiveFolder)
		if err != nil {
			return err
		}
		if err := s.rec.Archive(ctx, f, archive); err != nil {
			return err
		}
		swept++
	}

	s.log.Info("archive sweep complete", "operation", "sweep", "files", swept)
	return nil
}

// folderCache resolves archive folders under the canonical root at most
// once per run.
type folderCache struct {
	root    Folder
	byName  map[string]Folder
}

func newFolderCache(root Folder) *folderCache {
	return &folderCache{root: root, byName: make(map[string]Folder)}
}

func (c *folderCache) ensure(ctx context.Context, name string) (Folder, error) {
	if f, ok := c.byName[name]; ok {
		return f, nil
	}
	f, err := c.root.EnsureFolder(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving folder %s: %w", name, err)
	}
	c.byName[name] = f
	return f, nil
}
