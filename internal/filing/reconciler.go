package filing

import (
	"context"
	"fmt"
	"path"
	"time"
)

// archiveTimeLayout is the timestamp suffix for archived files: ISO 8601 to
// second resolution with colons replaced by hyphens, so the result is a
// legal filename everywhere. Two archival events for the same type within
// the same second produce the same name and the later one wins; this is a
// known boundary condition carried over from the source system.
const archiveTimeLayout = "2006-01-02T15-04-05"

// Reconciler implements the promote-and-archive primitive: before new
// content takes a canonical slot, whatever currently occupies the slot is
// renamed with a timestamp suffix and moved into the archive folder.
//
// The ordering guarantees the slot never holds two versions at once, and a
// crash between the two steps leaves at most the old version archived and
// the slot empty. The incoming content is held in memory until the write
// succeeds, so the arriving document is never lost.
type Reconciler struct {
	now func() time.Time
}

// NewReconciler returns a Reconciler stamping archive names with now.
// A nil now defaults to time.Now.
func NewReconciler(now func() time.Time) *Reconciler {
	if now == nil {
		now = time.Now
	}
	return &Reconciler{now: now}
}

// ArchiveName returns the timestamped archive filename for a canonical
// name, e.g. "unitlist_2026-03-14T08-12-07.pdf".
func (r *Reconciler) ArchiveName(name string) string {
	ext := path.Ext(name)
	stem := name[:len(name)-len(ext)]
	return fmt.Sprintf("%s_%s%s", stem, r.now().Format(archiveTimeLayout), ext)
}

// Place writes content into the canonical slot (canonical, name), archiving
// any prior occupant into archive first.
func (r *Reconciler) Place(ctx context.Context, canonical, archive Folder, name string, content []byte) (File, error) {
	existing, err := canonical.FilesNamed(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("checking canonical slot %s: %w", name, err)
	}
	for _, f := range existing {
		if err := r.Archive(ctx, f, archive); err != nil {
			return nil, err
		}
	}

	f, err := canonical.CreateFile(ctx, name, content)
	if err != nil {
		return nil, fmt.Errorf("placing %s: %w", name, err)
	}
	return f, nil
}

// Archive renames f with the timestamp suffix and moves it into archive.
func (r *Reconciler) Archive(ctx context.Context, f File, archive Folder) error {
	archived := r.ArchiveName(f.Name())
	if err := f.Rename(ctx, archived); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", f.Name(), archived, err)
	}
	if err := f.MoveTo(ctx, archive); err != nil {
		return fmt.Errorf("moving %s to archive: %w", archived, err)
	}
	return nil
}
