package sweep

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/google/uuid"

	"github.com/cwbudde/algo-rcwa/rcwa"
)

const defaultQueueSize = 16

var (
	// ErrAlreadyRunning is returned by Start while a sweep runs.
	ErrAlreadyRunning = errors.New("sweep: already running")
	// ErrSweepRunning is returned by TransferToArchive while a sweep runs.
	ErrSweepRunning = errors.New("sweep: can't transfer data, simulation is running")
	// ErrSweepIncomplete is returned by TransferToArchive before the sweep
	// reached 100 %.
	ErrSweepIncomplete = errors.New("sweep: can't transfer data, simulation is not completed")
	// ErrNoResult is returned by TransferToArchive when there is no result.
	ErrNoResult = errors.New("sweep: can't transfer data, no simulation available")
	// ErrNoArchive is returned by TransferToArchive without an archive.
	ErrNoArchive = errors.New("sweep: no archive configured")
	// ErrEmptySweep is returned by Start when the evaluator has no values.
	ErrEmptySweep = errors.New("sweep: no sweep values")
	// ErrNonFiniteValue is returned by Start for NaN or infinite values.
	ErrNonFiniteValue = errors.New("sweep: sweep value is not finite")
)

// DefaultArchiveColor is used by TransferToArchive when no color is given.
const DefaultArchiveColor = "red"

// State is the lifecycle state of an Orchestrator.
type State int

const (
	StateIdle State = iota
	StatePreparing
	StateRunning
	StateCompleted
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Archive receives completed results and contributes its selected entries
// to snapshots.
type Archive interface {
	Add(name string, r *Result) error
	Series(sel Selection) []Series
	// NewData reports and clears the changed flag.
	NewData() bool
}

// StepEvent describes one evaluated sweep value.
type StepEvent struct {
	RunID    uuid.UUID
	Index    int
	Value    float64
	Progress int
	Err      error
}

// Snapshot is a consistent view of the orchestrator.
type Snapshot struct {
	RunID     uuid.UUID
	State     State
	Running   bool
	Progress  int
	LastError error
	// NewData reports whether Series was refreshed.
	NewData bool
	Series  []Series
}

// Option configures an Orchestrator.
type Option func(*config) error

type config struct {
	logger    *slog.Logger
	archive   Archive
	factory   EvaluatorFactory
	onStep    func(StepEvent)
	queueSize int
}

// WithLogger sets the logger. The default discards all records.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		if l == nil {
			return errors.New("sweep: nil logger")
		}
		c.logger = l
		return nil
	}
}

// WithArchive sets the archive used by TransferToArchive and Snapshot.
func WithArchive(a Archive) Option {
	return func(c *config) error {
		c.archive = a
		return nil
	}
}

// WithEvaluatorFactory replaces NewHologramEvaluator.
func WithEvaluatorFactory(f EvaluatorFactory) Option {
	return func(c *config) error {
		if f == nil {
			return errors.New("sweep: nil evaluator factory")
		}
		c.factory = f
		return nil
	}
}

// WithOnStep registers a callback run by the worker after each sweep value
// has been published.
func WithOnStep(fn func(StepEvent)) Option {
	return func(c *config) error {
		c.onStep = fn
		return nil
	}
}

// WithQueueSize sets the capacity of the staging queue.
func WithQueueSize(n int) Option {
	return func(c *config) error {
		if n < 1 {
			return fmt.Errorf("sweep: queue size must be >= 1: %d", n)
		}
		c.queueSize = n
		return nil
	}
}

// record is one staged update from the worker.
type record struct {
	// index is the sweep value of eff, or -1.
	index int
	eff   *rcwa.Efficiencies
	// progress is the new percentage, or -1.
	progress int
	// final ends the run with state.
	final bool
	state State
}

// Orchestrator runs one sweep at a time in a background goroutine.
type Orchestrator struct {
	src ParameterSource
	cfg config

	// ctrl serializes Start, Cancel and Wait.
	ctrl   sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// mu guards the fields below. The worker holds it only to drain queue.
	mu       sync.Mutex
	runID    uuid.UUID
	state    State
	running  bool
	progress int
	result   *Result
	lastErr  error
	newData  bool
	queue    chan record
}

// New returns an idle orchestrator reading its parameters from src.
func New(src ParameterSource, opts ...Option) (*Orchestrator, error) {
	if src == nil {
		return nil, errors.New("sweep: nil parameter source")
	}
	cfg := config{
		logger:    slog.New(slog.DiscardHandler),
		factory:   NewHologramEvaluator,
		queueSize: defaultQueueSize,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	return &Orchestrator{src: src, cfg: cfg}, nil
}

// active reports whether a worker is running. ctrl must be held.
func (o *Orchestrator) active() bool {
	if o.done == nil {
		return false
	}
	select {
	case <-o.done:
		return false
	default:
		return true
	}
}

// Toggle starts a sweep when idle and requests cancellation when running.
// It reports whether a sweep was started.
func (o *Orchestrator) Toggle(ctx context.Context) (bool, error) {
	if o.Cancel() {
		return false, nil
	}
	if err := o.Start(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// Start prepares a sweep and runs it in a new goroutine. Cancelling ctx
// cancels the sweep. Preparation errors are returned and recorded in the
// snapshot.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.ctrl.Lock()
	defer o.ctrl.Unlock()
	if o.active() {
		return ErrAlreadyRunning
	}

	runID := uuid.New()
	log := o.cfg.logger.With("run", runID.String())
	log.Info("prepare simulation", "variable", o.src.Variable())

	o.mu.Lock()
	o.runID = runID
	o.state = StatePreparing
	o.running = true
	o.progress = 0
	o.lastErr = nil
	o.mu.Unlock()

	ev, res, err := o.prepare()
	if err != nil {
		o.mu.Lock()
		o.state = StateFailed
		o.running = false
		o.result = nil
		o.lastErr = err
		o.newData = true
		o.mu.Unlock()
		log.Warn("simulation preparation failed", "error", err, "hint", rcwa.Hint(err))
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	queue := make(chan record, o.cfg.queueSize)
	done := make(chan struct{})

	o.mu.Lock()
	o.result = res
	o.queue = queue
	o.state = StateRunning
	o.newData = true
	o.mu.Unlock()

	o.cancel, o.done = cancel, done
	go o.run(runCtx, log, runID, ev, queue, done)
	return nil
}

func (o *Orchestrator) prepare() (Evaluator, *Result, error) {
	ev, err := o.cfg.factory(o.src)
	if err != nil {
		return nil, nil, err
	}
	text, err := ParameterText(o.src)
	if err != nil {
		return nil, nil, err
	}
	values := ev.Values()
	if err := checkValues(values); err != nil {
		return nil, nil, err
	}
	rows, cols := ev.Orders()
	return ev, NewResult(rows, cols, values, text, o.src.Variable()), nil
}

func checkValues(values []float64) error {
	if len(values) == 0 {
		return &rcwa.Error{Kind: rcwa.KindConfig, Message: "the sweep has no values",
			Hint: rcwa.HintCheckParameter, Err: ErrEmptySweep}
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &rcwa.Error{Kind: rcwa.KindConfig, Message: fmt.Sprintf("value %d is %v", i, v),
				Hint: rcwa.HintCheckParameter, Err: ErrNonFiniteValue}
		}
	}
	return nil
}

// Cancel requests cancellation of the running sweep. The worker stops
// before the next sweep value. It reports whether a sweep was running.
func (o *Orchestrator) Cancel() bool {
	o.ctrl.Lock()
	defer o.ctrl.Unlock()
	if !o.active() {
		return false
	}
	o.cancel()
	o.cfg.logger.Info("simulation will be stopped")
	return true
}

// Wait blocks until the current worker, if any, has exited.
func (o *Orchestrator) Wait() {
	o.ctrl.Lock()
	done := o.done
	o.ctrl.Unlock()
	if done != nil {
		<-done
	}
}

func (o *Orchestrator) run(ctx context.Context, log *slog.Logger, runID uuid.UUID, ev Evaluator, queue chan record, done chan struct{}) {
	defer close(done)
	defer o.cancelRun()

	values := ev.Values()
	n := len(values)
	log.Info("start simulation", "values", n)

	for i, v := range values {
		if ctx.Err() != nil {
			o.publish(queue, record{index: -1, progress: -1, final: true, state: StateCancelled})
			log.Info("simulation stopped", "completed", i)
			return
		}

		progress := 100 * (i + 1) / n
		eff, err := ev.Eval(i, v)
		if err != nil {
			log.Warn("simulation value can not be calculated", "index", i, "value", v, "error", err, "hint", rcwa.Hint(err))
			o.publish(queue, record{index: -1, progress: progress})
		} else {
			o.publish(queue, record{index: i, eff: eff, progress: progress})
		}

		if o.cfg.onStep != nil {
			o.cfg.onStep(StepEvent{RunID: runID, Index: i, Value: v, Progress: progress, Err: err})
		}
	}

	o.publish(queue, record{index: -1, progress: 100, final: true, state: StateCompleted})
	log.Info("simulation finished")
}

// cancelRun releases the context of a finished run.
func (o *Orchestrator) cancelRun() {
	o.ctrl.Lock()
	cancel := o.cancel
	o.ctrl.Unlock()
	if cancel != nil {
		cancel()
	}
}

// publish stages rec. Intermediate records are drained opportunistically so
// that a polling consumer never stalls the worker; final records and a full
// queue wait for the lock.
func (o *Orchestrator) publish(queue chan record, rec record) {
	if len(queue) == cap(queue) {
		o.mu.Lock()
		o.drainLocked()
		o.mu.Unlock()
	}
	queue <- rec

	if rec.final {
		o.mu.Lock()
		o.drainLocked()
		o.mu.Unlock()
		return
	}
	if o.mu.TryLock() {
		o.drainLocked()
		o.mu.Unlock()
	}
}

// drainLocked applies all staged records. mu must be held.
func (o *Orchestrator) drainLocked() {
	for {
		select {
		case rec := <-o.queue:
			o.apply(rec)
		default:
			return
		}
	}
}

func (o *Orchestrator) apply(rec record) {
	if rec.index >= 0 && o.result != nil {
		if err := o.result.Insert(rec.index, rec.eff); err != nil {
			o.cfg.logger.Warn("dropping sweep value", "index", rec.index, "error", err)
		}
	}
	if rec.progress >= 0 {
		o.progress = rec.progress
	}
	if rec.final {
		o.state = rec.state
		o.running = false
	}
	o.newData = true
}

// Snapshot returns the current state and the selected series. It does not
// block: ok is false when the data is locked and the caller should retry.
// Series are only filled when something changed since the previous
// snapshot or sel.Force is set.
func (o *Orchestrator) Snapshot(sel Selection) (snap Snapshot, ok bool) {
	if !o.mu.TryLock() {
		o.cfg.logger.Debug("data are locked")
		return Snapshot{}, false
	}
	defer o.mu.Unlock()
	o.drainLocked()

	snap = Snapshot{
		RunID:     o.runID,
		State:     o.state,
		Running:   o.running,
		Progress:  o.progress,
		LastError: o.lastErr,
	}

	archiveNew := o.cfg.archive != nil && o.cfg.archive.NewData()
	if sel.Force || o.newData || archiveNew {
		snap.NewData = true
		if o.result != nil {
			snap.Series = o.result.Series(sel)
		}
		if o.cfg.archive != nil {
			snap.Series = append(snap.Series, o.cfg.archive.Series(sel)...)
		}
	}
	o.newData = false
	return snap, true
}

// Result returns a copy of the in-progress or completed result, or nil.
func (o *Orchestrator) Result() *Result {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drainLocked()
	if o.result == nil {
		return nil
	}
	return o.result.Clone()
}

// TransferToArchive moves the completed result into the archive under name
// and resets the orchestrator to idle. color defaults to
// DefaultArchiveColor.
func (o *Orchestrator) TransferToArchive(name, color string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.drainLocked()

	var err error
	switch {
	case o.running:
		err = ErrSweepRunning
	case o.progress != 100:
		err = ErrSweepIncomplete
	case o.result == nil:
		err = ErrNoResult
	case o.cfg.archive == nil:
		err = ErrNoArchive
	}
	if err != nil {
		o.cfg.logger.Info("transfer to archive rejected", "reason", err)
		return err
	}

	if color == "" {
		color = DefaultArchiveColor
	}
	res := o.result.Clone()
	res.Name, res.Color = name, color
	if err := o.cfg.archive.Add(name, res); err != nil {
		return err
	}

	o.result = nil
	o.progress = 0
	o.state = StateIdle
	o.newData = true
	o.cfg.logger.Info("simulation archived", "name", name)
	return nil
}
