// Package snapshot publishes immutable index snapshots to concurrent
// readers. A rescan builds a brand-new index and swaps it in with a
// single atomic pointer store; queries already running against the
// previous snapshot finish against that frozen, self-consistent dataset.
package snapshot

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/harrison/pscan/internal/index"
	"github.com/harrison/pscan/internal/scan"
)

// Snapshot is one published scan result: the index plus its provenance.
type Snapshot struct {
	ID      uuid.UUID
	BuiltAt time.Time
	Index   *index.Index
	Report  scan.Report
}

// Holder owns the current snapshot and the scanner that rebuilds it.
// Current is wait-free; Refresh serializes rebuilds but never blocks
// readers.
type Holder struct {
	scanner *scan.Scanner

	mu  sync.Mutex // serializes Refresh
	cur atomic.Pointer[Snapshot]
}

// NewHolder runs an initial scan and publishes the first snapshot.
func NewHolder(ctx context.Context, scanner *scan.Scanner) (*Holder, error) {
	h := &Holder{scanner: scanner}
	if _, err := h.Refresh(ctx); err != nil {
		return nil, err
	}
	return h, nil
}

// Current returns the latest published snapshot. The returned snapshot
// never changes; callers may query it for as long as they hold it.
func (h *Holder) Current() *Snapshot {
	return h.cur.Load()
}

// Refresh rescans, builds a new index, and publishes it. On error the
// previous snapshot stays current, so a failed rescan never tears down a
// working dataset. Concurrent Refresh calls run one at a time.
func (h *Holder) Refresh(ctx context.Context) (*Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	records, report, err := h.scanner.Scan(ctx)
	if err != nil {
		return nil, err
	}
	ix, err := index.New(records)
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{
		ID:      uuid.New(),
		BuiltAt: time.Now(),
		Index:   ix,
		Report:  report,
	}
	h.cur.Store(snap)
	return snap, nil
}
