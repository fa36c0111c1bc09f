// Package dispatch turns filter state changes into catalog queries: a
// trailing-edge debounce per group, one meaningful in-flight query per group,
// and last-write-wins by issue order via per-group sequence numbers.
package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/bilhallen/filter-engine/pkg/catalog"
	"github.com/bilhallen/filter-engine/pkg/engine"
	"github.com/bilhallen/filter-engine/pkg/tracking"
	"github.com/bilhallen/filter-engine/pkg/types"
	"github.com/bilhallen/filter-engine/pkg/urlstate"
)

const (
	DefaultDebounce     = 300 * time.Millisecond
	DefaultQueryTimeout = 10 * time.Second
	DefaultPageSize     = 20
)

// Navigator receives the encoded URL for a full page transition when a group
// runs in navigate mode.
type Navigator interface {
	Navigate(url string)
}

// URLSink receives the canonical URL after a successful live refresh, without
// a page reload.
type URLSink interface {
	UpdateURL(groupId, url string)
}

// ResultSink swaps a rendered fragment into the group's result container.
type ResultSink interface {
	ApplyResult(target string, result *types.Result)
}

// History records facet snapshots for back/forward navigation.
type History interface {
	Push(groupId, url string, state *types.FilterState)
}

type groupDispatch struct {
	timer *clock.Timer
	seq   uint64
}

type Dispatcher struct {
	Engine       *engine.Engine
	Store        catalog.Store
	Tracker      tracking.Tracker
	Navigator    Navigator
	Urls         URLSink
	Results      ResultSink
	History      History
	Debounce     time.Duration
	QueryTimeout time.Duration
	PageSize     int

	clock  clock.Clock
	mu     sync.Mutex
	groups map[string]*groupDispatch
}

// New wires a dispatcher with the default intervals. Pass clock.NewMock() in
// tests to drive the debounce window without wall-clock sleeps.
func New(e *engine.Engine, store catalog.Store, trk tracking.Tracker, clk clock.Clock) *Dispatcher {
	if trk == nil {
		trk = tracking.NoopTracker{}
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Dispatcher{
		Engine:       e,
		Store:        store,
		Tracker:      trk,
		Debounce:     DefaultDebounce,
		QueryTimeout: DefaultQueryTimeout,
		PageSize:     DefaultPageSize,
		clock:        clk,
		groups:       map[string]*groupDispatch{},
	}
}

func (d *Dispatcher) group(groupId string) *groupDispatch {
	g, ok := d.groups[groupId]
	if !ok {
		g = &groupDispatch{}
		d.groups[groupId] = g
	}
	return g
}

// RequestRefresh schedules a refresh after the quiet period. A new call
// within the window resets the group's timer; other groups are unaffected.
func (d *Dispatcher) RequestRefresh(groupId string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	g := d.group(groupId)
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = d.clock.AfterFunc(d.Debounce, func() {
		d.fire(groupId)
	})
}

func (d *Dispatcher) fire(groupId string) {
	// The snapshot and its sequence number are paired under one lock, so
	// overlapping fires cannot attach an older snapshot to the winning
	// sequence.
	d.mu.Lock()
	state := d.Engine.Snapshot(groupId)
	if state.Mode == types.ModeNavigate {
		d.mu.Unlock()
		if d.Navigator != nil {
			d.Navigator.Navigate(urlstate.Encode(state))
		}
		return
	}
	g := d.group(groupId)
	g.seq++
	seq := g.seq
	d.mu.Unlock()

	predicate := state.ToPredicate(d.PageSize)
	d.Tracker.QueryDispatched(groupId, seq)

	go d.execute(groupId, seq, state.Target, predicate)
}

func (d *Dispatcher) execute(groupId string, seq uint64, target string, predicate *types.Predicate) {
	ctx, cancel := context.WithTimeout(context.Background(), d.QueryTimeout)
	defer cancel()

	started := time.Now()
	result, err := d.Store.Query(ctx, predicate)
	d.Tracker.QueryDuration(groupId, time.Since(started).Seconds())

	if !d.isLatest(groupId, seq) {
		// Superseded by a newer request; the response is dropped no matter
		// whether it succeeded.
		d.Tracker.StaleResponseDiscarded(groupId, seq)
		return
	}
	if err != nil {
		// The previously rendered result stays in place.
		d.Tracker.TransportFailure(groupId, err)
		return
	}

	if d.Results != nil {
		d.Results.ApplyResult(target, result)
	}

	// The canonical URL reflects the current state, which may have moved on
	// since this query was issued.
	current := d.Engine.Snapshot(groupId)
	url := urlstate.Encode(current)
	if d.Urls != nil {
		d.Urls.UpdateURL(groupId, url)
	}
	if d.History != nil {
		d.History.Push(groupId, url, current)
	}
}

func (d *Dispatcher) isLatest(groupId string, seq uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.group(groupId).seq == seq
}

// BindGroup subscribes the dispatcher to a group so every accepted mutation
// schedules a debounced refresh. Returns the unsubscribe handle.
func (d *Dispatcher) BindGroup(groupId string) func() {
	return d.Engine.Subscribe(groupId, func(types.FacetKey, string, *types.FilterState) {
		d.RequestRefresh(groupId)
	})
}
