// Package coordinator runs the periodic refresh lanes for arrivals and
// alerts. Each lane suspends on its own ticker, fires immediately when the
// selection changes, and keeps the previous snapshot on failure so the panel
// degrades to stale-but-available data instead of blanking out.
package coordinator

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/00b1b1/tmb-pantalles/internal/tmb"
)

// Default poll intervals.
const (
	DefaultArrivalsInterval = 30 * time.Second
	DefaultAlertsInterval   = 60 * time.Second
)

// Selection is the slice of panel configuration the poll lanes depend on.
type Selection struct {
	LineCode    int
	LineName    string
	StationCode int
	ShowAlert   bool
}

// Snapshot is the latest fetched state. Loaded flags distinguish "never
// fetched" (render a loading state) from "fetched but empty".
type Snapshot struct {
	Arrivals       *tmb.ArrivalsResponse
	ArrivalsAt     time.Time
	ArrivalsLoaded bool

	Alerts       []tmb.Alert
	AlertsAt     time.Time
	AlertsLoaded bool
}

// Client is the slice of the TMB API the coordinator needs.
type Client interface {
	StationArrivals(ctx context.Context, stationCode, lineCode int) (*tmb.ArrivalsResponse, error)
	LineAlerts(ctx context.Context, lineName string) ([]tmb.Alert, error)
}

// Coordinator owns the poll lanes and the snapshot they feed. Polls never
// mutate the selection; only SetSelection (driven by user actions) does.
type Coordinator struct {
	client Client

	arrivalsEvery time.Duration
	alertsEvery   time.Duration

	mu   sync.RWMutex
	sel  Selection
	gen  uint64 // bumped on every selection change
	snap Snapshot

	arrivalsKick chan struct{}
	alertsKick   chan struct{}
}

// New creates a coordinator with the given poll intervals; zero values select
// the defaults.
func New(client Client, arrivalsEvery, alertsEvery time.Duration) *Coordinator {
	if arrivalsEvery <= 0 {
		arrivalsEvery = DefaultArrivalsInterval
	}
	if alertsEvery <= 0 {
		alertsEvery = DefaultAlertsInterval
	}
	return &Coordinator{
		client:        client,
		arrivalsEvery: arrivalsEvery,
		alertsEvery:   alertsEvery,
		arrivalsKick:  make(chan struct{}, 1),
		alertsKick:    make(chan struct{}, 1),
	}
}

// Run starts both poll lanes. They stop when ctx is cancelled; cancelling is
// the mandatory teardown, otherwise the tickers leak.
func (c *Coordinator) Run(ctx context.Context) {
	go c.loop(ctx, c.arrivalsEvery, c.arrivalsKick, c.pollArrivals)
	go c.loop(ctx, c.alertsEvery, c.alertsKick, c.pollAlerts)
}

func (c *Coordinator) loop(ctx context.Context, every time.Duration, kick <-chan struct{}, poll func(context.Context)) {
	poll(ctx)

	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			poll(ctx)
		case <-kick:
			poll(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// SetSelection applies a new selection and wakes both lanes for an immediate
// refresh. Any poll that was in flight for the previous selection gets its
// result discarded when it resolves.
func (c *Coordinator) SetSelection(sel Selection) {
	c.mu.Lock()
	if sel == c.sel {
		c.mu.Unlock()
		return
	}
	stationChanged := sel.StationCode != c.sel.StationCode || sel.LineCode != c.sel.LineCode
	lineChanged := sel.LineName != c.sel.LineName
	c.sel = sel
	c.gen++
	if stationChanged {
		// Old arrivals belong to another platform; show the loading state
		// instead of a wrong countdown.
		c.snap.Arrivals = nil
		c.snap.ArrivalsLoaded = false
	}
	if lineChanged || !sel.ShowAlert {
		c.snap.Alerts = nil
		c.snap.AlertsLoaded = false
	}
	c.mu.Unlock()

	wake(c.arrivalsKick)
	wake(c.alertsKick)
}

// Selection returns the current selection.
func (c *Coordinator) Selection() Selection {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sel
}

// Snapshot returns the latest fetched state.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap
}

func (c *Coordinator) pollArrivals(ctx context.Context) {
	c.mu.RLock()
	sel, gen := c.sel, c.gen
	c.mu.RUnlock()

	if sel.StationCode == 0 || sel.LineCode == 0 {
		return
	}

	arrivals, err := c.client.StationArrivals(ctx, sel.StationCode, sel.LineCode)
	if err != nil {
		log.Printf("Arrivals: poll for %s/%d failed: %v", sel.LineName, sel.StationCode, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		log.Printf("Arrivals: dropping response for superseded selection %s/%d", sel.LineName, sel.StationCode)
		return
	}
	c.snap.Arrivals = arrivals
	c.snap.ArrivalsAt = time.Now()
	c.snap.ArrivalsLoaded = true
}

func (c *Coordinator) pollAlerts(ctx context.Context) {
	c.mu.RLock()
	sel, gen := c.sel, c.gen
	c.mu.RUnlock()

	if !sel.ShowAlert || sel.LineName == "" {
		return
	}

	alerts, err := c.client.LineAlerts(ctx, sel.LineName)
	if err != nil {
		log.Printf("Alerts: poll for %s failed: %v", sel.LineName, err)
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		log.Printf("Alerts: dropping response for superseded selection %s", sel.LineName)
		return
	}
	c.snap.Alerts = alerts
	c.snap.AlertsAt = time.Now()
	c.snap.AlertsLoaded = true
}

func wake(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
