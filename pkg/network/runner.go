package network

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridcase/csv2mgc/pkg/logging"
	"github.com/gridcase/csv2mgc/pkg/model"
)

// Build states published while a rebuild runs.
const (
	StateLoading  = "loading"
	StateBuilding = "building"
	StateReady    = "ready"
	StateError    = "error"
)

// StatusPublisher receives build progress events.
type StatusPublisher interface {
	PublishBuildStatus(state, message string, step, total int) error
}

// Loader returns the sources of a build. It is called on every run so that
// added or removed input files are picked up.
type Loader func(ctx context.Context) ([]Source, error)

// Runner orchestrates repeated builds for watch and web mode.
type Runner struct {
	builder   *Builder
	overrides model.Attrs
	load      Loader

	mu        sync.Mutex // serializes runs
	latest    *Result
	publisher StatusPublisher
	listeners []func(*Result)
}

// NewRunner creates a runner that builds with overrides from the sources
// returned by load.
func NewRunner(builder *Builder, overrides model.Attrs, load Loader) *Runner {
	return &Runner{builder: builder, overrides: overrides, load: load}
}

// SetPublisher sets where build status events are sent.
func (r *Runner) SetPublisher(p StatusPublisher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.publisher = p
}

// SetOverrides replaces the case attribute overrides used by later runs.
func (r *Runner) SetOverrides(overrides model.Attrs) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overrides = overrides
}

// OnResult registers fn to be called after every successful run.
func (r *Runner) OnResult(fn func(*Result)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Latest returns the result of the last successful run, or nil.
func (r *Runner) Latest() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.latest
}

// Run loads the sources and builds the case. reason is logged, e.g.
// "initial build" or "pipes.csv changed".
func (r *Runner) Run(ctx context.Context, reason string) (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	logging.InfoContext(ctx, "starting build", "reason", reason)

	r.publish(StateLoading, "Loading sources...", 1, 3)
	sources, err := r.load(ctx)
	if err != nil {
		r.publish(StateError, fmt.Sprintf("Error loading sources: %v", err), 1, 3)
		return nil, fmt.Errorf("loading sources: %w", err)
	}

	r.publish(StateBuilding, fmt.Sprintf("Decoding %d source(s)...", len(sources)), 2, 3)
	res, err := r.builder.Build(ctx, r.overrides, sources)
	if err != nil {
		r.publish(StateError, fmt.Sprintf("Error building case: %v", err), 2, 3)
		return nil, err
	}
	r.latest = res

	for _, fn := range r.listeners {
		fn(res)
	}

	r.publish(StateReady, fmt.Sprintf("Case built with %d finding(s)", len(res.Report.Findings)), 3, 3)
	logging.InfoContext(ctx, "build complete", "reason", reason, "runID", res.RunID.String())
	return res, nil
}

func (r *Runner) publish(state, message string, step, total int) {
	if r.publisher == nil {
		return
	}
	if err := r.publisher.PublishBuildStatus(state, message, step, total); err != nil {
		logging.Warn("failed to publish build status", "state", state, "error", err)
	}
}
