package workers

import (
	"context"
	"sync"
	"time"

	"github.com/cbodonnell/scoreboard/pkg/log"
	"github.com/cbodonnell/scoreboard/pkg/registry"
)

// Saver persists a match. *registry.Manager implements it.
type Saver interface {
	SaveMatch(ctx context.Context, m *registry.Match) error
}

type AutosaveWorker struct {
	match       *registry.Match
	saver       Saver
	quietPeriod time.Duration
	changes     chan struct{}
	unsubscribe func()

	lock    sync.Mutex
	pending bool
	// saveLock serializes saves from the loop and from Flush.
	saveLock sync.Mutex
}

type NewAutosaveWorkerOptions struct {
	Match       *registry.Match
	Saver       Saver
	QuietPeriod time.Duration
}

// NewAutosaveWorker creates a new AutosaveWorker.
// The worker subscribes to every change of the match's board immediately and
// saves the match once the board has been quiet for QuietPeriod, so a burst
// of changes is written once.
func NewAutosaveWorker(opts NewAutosaveWorkerOptions) *AutosaveWorker {
	w := &AutosaveWorker{
		match:       opts.Match,
		saver:       opts.Saver,
		quietPeriod: opts.QuietPeriod,
		changes:     make(chan struct{}, 1),
	}
	w.unsubscribe = opts.Match.Board.Events().OnChange(w.markChanged)
	return w
}

// Start runs the debounce loop until ctx is done. Changes still waiting for
// their quiet period when ctx is cancelled are not saved; call Flush first
// to keep them. Start releases the board subscription on return.
func (w *AutosaveWorker) Start(ctx context.Context) {
	defer w.unsubscribe()

	var timer *time.Timer
	var deadline <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if w.Pending() {
				log.Warn("Dropping unsaved changes to match %s", w.match.ID)
			}
			return
		case <-w.changes:
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(w.quietPeriod)
			deadline = timer.C
		case <-deadline:
			timer = nil
			deadline = nil
			if err := w.save(ctx); err != nil {
				log.Error("Failed to autosave match %s: %v", w.match.ID, err)
			}
		}
	}
}

// Flush saves the match now if it has unsaved changes.
func (w *AutosaveWorker) Flush(ctx context.Context) error {
	return w.save(ctx)
}

// Pending reports whether there are changes that have not been saved.
func (w *AutosaveWorker) Pending() bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.pending
}

func (w *AutosaveWorker) markChanged() {
	w.lock.Lock()
	w.pending = true
	w.lock.Unlock()

	select {
	case w.changes <- struct{}{}:
	default:
	}
}

func (w *AutosaveWorker) save(ctx context.Context) error {
	w.saveLock.Lock()
	defer w.saveLock.Unlock()

	w.lock.Lock()
	if !w.pending {
		w.lock.Unlock()
		return nil
	}
	w.pending = false
	w.lock.Unlock()

	if err := w.saver.SaveMatch(ctx, w.match); err != nil {
		w.lock.Lock()
		w.pending = true
		w.lock.Unlock()
		return err
	}
	log.Debug("Saved match %s", w.match.ID)
	return nil
}
