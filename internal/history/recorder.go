package history

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ziadkadry99/promptsuite/internal/expert"
	"github.com/ziadkadry99/promptsuite/internal/logger"
	"github.com/ziadkadry99/promptsuite/internal/types"
)

// ErrClosed is returned when submitting to a closed Recorder.
var ErrClosed = errors.New("history recorder is closed")

// PatternSaver persists a pattern snapshot.
type PatternSaver interface {
	Save(ctx context.Context, p types.ExpertPattern) error
}

// RunRecord is everything written for one generation run.
type RunRecord struct {
	Run     Run
	Quality []types.QualityMetrics
	// Pattern is the selected pattern after its usage count was bumped.
	Pattern *types.ExpertPattern
}

// Recorder writes history in the background. Writes are best-effort:
// failures are logged and never reach the caller.
type Recorder struct {
	store    *Store
	patterns PatternSaver
	repo     *expert.Repository
	updater  expert.ScoreUpdater
	log      *logger.Logger
	timeout  time.Duration

	jobs chan func(ctx context.Context) error
	mu   sync.RWMutex
	done chan struct{}
	shut bool
}

// RecorderOptions configures a Recorder.
type RecorderOptions struct {
	Patterns PatternSaver
	Repo     *expert.Repository
	Updater  expert.ScoreUpdater
	Log      *logger.Logger
	// Buffer is the job queue size. Jobs submitted to a full queue are dropped.
	Buffer int
}

// NewRecorder starts the background writer.
func NewRecorder(store *Store, opts RecorderOptions) *Recorder {
	if opts.Buffer <= 0 {
		opts.Buffer = 64
	}
	if opts.Updater == nil {
		opts.Updater = expert.NoopUpdater{}
	}
	r := &Recorder{
		store:    store,
		patterns: opts.Patterns,
		repo:     opts.Repo,
		updater:  opts.Updater,
		log:      logger.OrNop(opts.Log),
		timeout:  10 * time.Second,
		jobs:     make(chan func(context.Context) error, opts.Buffer),
		done:     make(chan struct{}),
	}
	go r.loop()
	return r
}

func (r *Recorder) loop() {
	defer close(r.done)
	for job := range r.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		if err := job(ctx); err != nil {
			r.log.Error("history write failed", "error", err)
		}
		cancel()
	}
}

func (r *Recorder) enqueue(job func(context.Context) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.shut {
		return ErrClosed
	}
	select {
	case r.jobs <- job:
		return nil
	default:
		r.log.Warn("history queue full, dropping write")
		return errors.New("history queue full")
	}
}

// RecordRun queues the run, its quality passes and the pattern snapshot.
func (r *Recorder) RecordRun(rec RunRecord) {
	err := r.enqueue(func(ctx context.Context) error {
		if err := r.store.SaveRun(ctx, rec.Run); err != nil {
			return err
		}
		for i, m := range rec.Quality {
			if err := r.store.AppendQuality(ctx, rec.Run.ID, i+1, m); err != nil {
				return err
			}
		}
		if rec.Pattern != nil && r.patterns != nil {
			return r.patterns.Save(ctx, r.currentPattern(*rec.Pattern))
		}
		return nil
	})
	if err != nil {
		r.log.Error("history run dropped", "run_id", rec.Run.ID, "error", err)
	}
}

// currentPattern returns the repository's state for snapshot's pattern at
// write time, so a later write never replaces ratings or usage recorded
// after the snapshot was taken.
func (r *Recorder) currentPattern(snapshot types.ExpertPattern) types.ExpertPattern {
	if r.repo == nil {
		return snapshot
	}
	if p, ok := r.repo.Get(snapshot.ID); ok {
		return p
	}
	return snapshot
}

// SubmitFeedback validates fb synchronously and queues its persistence.
// When the target is a known run, the rating is also applied to the run's
// expert pattern. The returned record carries its assigned id.
func (r *Recorder) SubmitFeedback(fb types.UserFeedback) (types.UserFeedback, error) {
	if err := ValidateFeedback(fb); err != nil {
		return fb, err
	}
	if fb.ID == "" {
		fb.ID = newID()
	}
	if fb.CreatedAt.IsZero() {
		fb.CreatedAt = time.Now().UTC()
	}
	err := r.enqueue(func(ctx context.Context) error {
		if _, err := r.store.AddFeedback(ctx, fb); err != nil {
			return err
		}
		return r.applyToPattern(ctx, fb)
	})
	return fb, err
}

func (r *Recorder) applyToPattern(ctx context.Context, fb types.UserFeedback) error {
	if r.repo == nil {
		return nil
	}
	run, err := r.store.GetRun(ctx, fb.TargetID)
	if errors.Is(err, ErrNotFound) || (err == nil && run.PatternID == "") {
		return nil
	}
	if err != nil {
		return err
	}
	p, err := expert.ApplyFeedback(ctx, r.repo, r.updater, run.PatternID, fb)
	if err != nil {
		return err
	}
	if r.patterns != nil {
		return r.patterns.Save(ctx, r.currentPattern(p))
	}
	return nil
}

// Close stops accepting work and waits for queued writes to finish or ctx
// to end.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.shut {
		r.shut = true
		close(r.jobs)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
