package filing

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

// State store keys. Values are stored as strings and parsed defensively:
// a missing or unparseable value means "no prior run" / counter zero.
const (
	propLastRunDate   = "lastRunDate"
	propDailySequence = "dailySequenceCounter"
)

// dateLayout is the calendar-date format used for LastRunDate, in the
// coordinator's local time zone.
const dateLayout = "2006-01-02"

// RunState is the persisted scalar state of the filing job: the last day a
// driver document was placed and the daily sequence counter.
type RunState struct {
	LastRunDate string
	Sequence    int
}

// LoadRunState reads the persisted run state. Missing or invalid values
// degrade to the zero value rather than failing the run; only a store
// fault is an error.
func LoadRunState(ctx context.Context, store StateStore) (RunState, error) {
	var st RunState

	date, err := store.Get(ctx, propLastRunDate)
	if err != nil {
		return st, fmt.Errorf("reading %s: %w", propLastRunDate, err)
	}
	if _, perr := time.Parse(dateLayout, date); perr == nil {
		st.LastRunDate = date
	}

	seq, err := store.Get(ctx, propDailySequence)
	if err != nil {
		return st, fmt.Errorf("reading %s: %w", propDailySequence, err)
	}
	if n, perr := strconv.Atoi(seq); perr == nil && n >= 0 {
		st.Sequence = n
	}

	return st, nil
}

func saveSequence(ctx context.Context, store StateStore, n int) error {
	if err := store.Set(ctx, propDailySequence, strconv.Itoa(n)); err != nil {
		return fmt.Errorf("persisting %s: %w", propDailySequence, err)
	}
	return nil
}

func saveLastRunDate(ctx context.Context, store StateStore, date string) error {
	if err := store.Set(ctx, propLastRunDate, date); err != nil {
		return fmt.Errorf("persisting %s: %w", propLastRunDate, err)
	}
	return nil
}
