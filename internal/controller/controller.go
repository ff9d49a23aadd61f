// Package controller implements the view data controller shared by every
// console screen: it owns one remote record collection, fetches it wholesale,
// issues mutations that reconcile by re-fetching, and serves derived
// filter/sort/page projections. There is no optimistic patching — after any
// observed event local state is re-read from the server, trading a little
// latency for never diverging from it.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/hms/console/internal/live"
	"github.com/hms/console/internal/rest"
	"github.com/hms/console/internal/view"
	"github.com/hms/console/pkg/paging"
)

// State tracks a collection through its lifecycle.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateReady
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// ErrMutationInFlight is returned when a create/update/delete is requested
// while another one is still pending. The caller treats it as a no-op; the
// contract is exactly-once submission per user action.
var ErrMutationInFlight = errors.New("another mutation is already in flight")

// ErrClosed is returned by mutations on a controller whose view has been
// torn down.
var ErrClosed = errors.New("controller is closed")

// Source is the remote collection a controller manages. rest.Resource
// satisfies it.
type Source[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, draft T) error
	Update(ctx context.Context, id string, patch any) error
	Delete(ctx context.Context, id string) error
}

// Notifier surfaces transient user-visible messages, e.g. mutation failures.
type Notifier interface {
	Notify(message string)
}

type logNotifier struct {
	logger zerolog.Logger
}

func (n logNotifier) Notify(message string) {
	n.logger.Warn().Msg(message)
}

// Collection is a point-in-time snapshot of controller state.
type Collection[T any] struct {
	Items         []T
	State         State
	Loading       bool
	ActionLoading bool
	Err           error
}

// Option configures a Controller.
type Option[T any] func(*Controller[T])

// WithFields sets the filter/sort field descriptors used by View.
func WithFields[T any](f view.Fields[T]) Option[T] {
	return func(c *Controller[T]) { c.fields = f }
}

// WithReloadOn names the live event types that trigger a reconciling reload.
func WithReloadOn[T any](events ...string) Option[T] {
	return func(c *Controller[T]) {
		for _, ev := range events {
			c.reloadOn[ev] = struct{}{}
		}
	}
}

// WithDefaultSort sets the sort applied when a query names no key.
func WithDefaultSort[T any](s view.SortState) Option[T] {
	return func(c *Controller[T]) { c.defaultSort = s }
}

// WithPageSize sets the page size applied when a query has none.
func WithPageSize[T any](n int) Option[T] {
	return func(c *Controller[T]) { c.pageSize = n }
}

// WithLogger attaches a logger.
func WithLogger[T any](logger zerolog.Logger) Option[T] {
	return func(c *Controller[T]) {
		c.logger = logger
		if _, ok := c.notifier.(logNotifier); ok {
			c.notifier = logNotifier{logger: logger}
		}
	}
}

// WithNotifier overrides where mutation failures are surfaced.
func WithNotifier[T any](n Notifier) Option[T] {
	return func(c *Controller[T]) { c.notifier = n }
}

// Controller bridges one remote record collection and its derived
// presentation.
type Controller[T any] struct {
	src         Source[T]
	fields      view.Fields[T]
	reloadOn    map[string]struct{}
	defaultSort view.SortState
	pageSize    int
	logger      zerolog.Logger
	notifier    Notifier

	mu         sync.Mutex
	items      []T
	state      State
	err        error
	inflight   int
	actionBusy bool
	closed     bool
}

// New creates a controller over the given source. The collection starts
// empty and idle; call Load to populate it.
func New[T any](src Source[T], opts ...Option[T]) *Controller[T] {
	c := &Controller[T]{
		src:      src,
		reloadOn: make(map[string]struct{}),
		pageSize: paging.DefaultPageSize,
		logger:   zerolog.Nop(),
	}
	c.notifier = logNotifier{logger: c.logger}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load fetches the collection and replaces it wholesale. On failure the
// previous items stay visible (stale-but-present beats a blanked view) and
// the error is recorded. Overlapping loads are safe: the last one to
// complete wins, and a response arriving after Close is discarded.
func (c *Controller[T]) Load(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.inflight++
	c.state = StateLoading
	c.mu.Unlock()

	items, err := c.src.List(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inflight > 0 {
		c.inflight--
	}
	if c.closed {
		return nil
	}
	if err != nil {
		c.err = err
		c.state = StateErrored
		c.logger.Warn().Err(err).Msg("collection load failed")
		return err
	}
	c.items = items
	c.err = nil
	c.state = StateReady
	return nil
}

// Create submits a draft record and, on success, reloads the collection
// exactly once. A second mutation while one is pending is rejected with
// ErrMutationInFlight.
func (c *Controller[T]) Create(ctx context.Context, draft T) error {
	return c.mutate(ctx, "create", func(ctx context.Context) error {
		return c.src.Create(ctx, draft)
	})
}

// Update submits a partial or full record for the given id, then reloads.
func (c *Controller[T]) Update(ctx context.Context, id string, patch any) error {
	return c.mutate(ctx, "update", func(ctx context.Context) error {
		return c.src.Update(ctx, id, patch)
	})
}

// Delete removes the record with the given id, then reloads.
func (c *Controller[T]) Delete(ctx context.Context, id string) error {
	return c.mutate(ctx, "delete", func(ctx context.Context) error {
		return c.src.Delete(ctx, id)
	})
}

func (c *Controller[T]) mutate(ctx context.Context, op string, fn func(context.Context) error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.actionBusy {
		c.mu.Unlock()
		return ErrMutationInFlight
	}
	c.actionBusy = true
	c.mu.Unlock()

	err := fn(ctx)

	// The guard clears unconditionally before control returns, success or not.
	c.mu.Lock()
	c.actionBusy = false
	c.mu.Unlock()

	if err != nil {
		c.logger.Warn().Err(err).Str("op", op).Msg("mutation failed")
		c.notifier.Notify(mutationMessage(err))
		return err
	}
	return c.Load(ctx)
}

// mutationMessage prefers the server's own reason over a generic fallback.
func mutationMessage(err error) string {
	var restErr *rest.Error
	if errors.As(err, &restErr) && restErr.Message != "" {
		return restErr.Message
	}
	return "the operation failed, please try again"
}

// HandleLiveUpdate reconciles after a pushed change hint. Update-shaped
// events trigger a full reload; the event payload is never merged into local
// state. Other event types are ignored.
func (c *Controller[T]) HandleLiveUpdate(ctx context.Context, ev live.Event) error {
	if _, ok := c.reloadOn[ev.Type]; !ok {
		return nil
	}
	return c.Load(ctx)
}

// Watch consumes a live event stream until it closes or ctx is done,
// reloading on each matching event.
func (c *Controller[T]) Watch(ctx context.Context, events <-chan live.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			_ = c.HandleLiveUpdate(ctx, ev)
		}
	}
}

// Snapshot returns a copy of the current collection state.
func (c *Controller[T]) Snapshot() Collection[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	items := make([]T, len(c.items))
	copy(items, c.items)
	return Collection[T]{
		Items:         items,
		State:         c.state,
		Loading:       c.inflight > 0,
		ActionLoading: c.actionBusy,
		Err:           c.err,
	}
}

// View derives the filtered/sorted/paginated projection from the current
// items. Queries without a sort key or page size pick up the controller
// defaults.
func (c *Controller[T]) View(q view.Query) view.Result[T] {
	if q.Sort.Key == "" {
		q.Sort = c.defaultSort
	}
	if q.Page.PageSize == 0 {
		q.Page.PageSize = c.pageSize
	}
	snap := c.Snapshot()
	return view.Derive(snap.Items, c.fields, q)
}

// Close marks the view as torn down. Responses still in flight become
// no-ops; further mutations fail with ErrClosed.
func (c *Controller[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}
