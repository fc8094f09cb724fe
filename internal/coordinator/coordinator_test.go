package coordinator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/00b1b1/tmb-pantalles/internal/tmb"
)

// fakeClient serves canned arrivals/alerts and records what was asked for.
type fakeClient struct {
	mu sync.Mutex

	arrivalCalls []int // station codes, in call order
	alertCalls   []string

	arrivalErr    error
	arrivalDelays map[int]time.Duration // per station code
	alerts        []tmb.Alert
	alertErr      error
}

func arrivalsFor(station int) *tmb.ArrivalsResponse {
	return &tmb.ArrivalsResponse{
		Linies: []tmb.ArrivalLine{{
			Estacions: []tmb.ArrivalStation{{IDSentit: 1, CodiEstacio: station}},
		}},
	}
}

func (f *fakeClient) StationArrivals(ctx context.Context, stationCode, lineCode int) (*tmb.ArrivalsResponse, error) {
	f.mu.Lock()
	f.arrivalCalls = append(f.arrivalCalls, stationCode)
	delay := f.arrivalDelays[stationCode]
	err := f.arrivalErr
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return arrivalsFor(stationCode), nil
}

func (f *fakeClient) LineAlerts(ctx context.Context, lineName string) ([]tmb.Alert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.alertCalls = append(f.alertCalls, lineName)
	if f.alertErr != nil {
		return nil, f.alertErr
	}
	return f.alerts, nil
}

func (f *fakeClient) callCounts() (arrivals, alerts int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.arrivalCalls), len(f.alertCalls)
}

// waitFor polls a condition with a deadline, the usual dance for
// ticker-driven code.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func newRunning(t *testing.T, client Client) *Coordinator {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	c := New(client, 20*time.Millisecond, 20*time.Millisecond)
	c.Run(ctx)
	return c
}

func TestUnconfiguredSelectionSkipsPolling(t *testing.T) {
	client := &fakeClient{}
	newRunning(t, client)

	time.Sleep(100 * time.Millisecond)
	arrivals, alerts := client.callCounts()
	if arrivals != 0 || alerts != 0 {
		t.Errorf("unconfigured coordinator polled: arrivals=%d alerts=%d", arrivals, alerts)
	}
}

func TestSelectionChangeTriggersImmediatePoll(t *testing.T) {
	client := &fakeClient{alerts: []tmb.Alert{{ID: 1}}}
	c := newRunning(t, client)

	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 428, ShowAlert: true})

	waitFor(t, "arrivals snapshot", func() bool { return c.Snapshot().ArrivalsLoaded })
	waitFor(t, "alerts snapshot", func() bool { return c.Snapshot().AlertsLoaded })

	snap := c.Snapshot()
	if snap.Arrivals.Linies[0].Estacions[0].CodiEstacio != 428 {
		t.Errorf("snapshot holds arrivals for station %d, want 428",
			snap.Arrivals.Linies[0].Estacions[0].CodiEstacio)
	}
	if len(snap.Alerts) != 1 {
		t.Errorf("alerts = %v", snap.Alerts)
	}
}

func TestAlertsSkippedWhenDisabled(t *testing.T) {
	client := &fakeClient{alerts: []tmb.Alert{{ID: 1}}}
	c := newRunning(t, client)

	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 428, ShowAlert: false})

	waitFor(t, "arrivals snapshot", func() bool { return c.Snapshot().ArrivalsLoaded })
	time.Sleep(60 * time.Millisecond)

	if _, alerts := client.callCounts(); alerts != 0 {
		t.Errorf("alerts lane polled %d times with alerts disabled", alerts)
	}
}

func TestFailureKeepsPreviousSnapshot(t *testing.T) {
	client := &fakeClient{}
	c := newRunning(t, client)

	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 428})
	waitFor(t, "first snapshot", func() bool { return c.Snapshot().ArrivalsLoaded })
	firstAt := c.Snapshot().ArrivalsAt

	client.mu.Lock()
	client.arrivalErr = errors.New("boom")
	client.mu.Unlock()

	time.Sleep(80 * time.Millisecond)
	snap := c.Snapshot()
	if !snap.ArrivalsLoaded || snap.Arrivals == nil {
		t.Fatal("failed polls must keep the stale snapshot")
	}
	if !snap.ArrivalsAt.Equal(firstAt) {
		t.Error("failed polls must not refresh the snapshot timestamp")
	}
}

func TestSupersededResponseIsDiscarded(t *testing.T) {
	client := &fakeClient{
		arrivalDelays: map[int]time.Duration{111: 150 * time.Millisecond},
	}
	c := newRunning(t, client)

	// Select the slow station, then switch away before its response lands.
	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 111})
	time.Sleep(20 * time.Millisecond)
	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 428})

	waitFor(t, "snapshot for new station", func() bool { return c.Snapshot().ArrivalsLoaded })

	// Give the slow response time to resolve, then check it never won.
	time.Sleep(250 * time.Millisecond)
	got := c.Snapshot().Arrivals.Linies[0].Estacions[0].CodiEstacio
	if got != 428 {
		t.Errorf("snapshot holds station %d, want 428 (superseded response must be dropped)", got)
	}
}

func TestSelectionChangeClearsOldArrivals(t *testing.T) {
	client := &fakeClient{}
	c := newRunning(t, client)

	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 428})
	waitFor(t, "first snapshot", func() bool { return c.Snapshot().ArrivalsLoaded })

	// Block the new station's fetch long enough to observe the cleared state.
	client.mu.Lock()
	client.arrivalDelays = map[int]time.Duration{111: 500 * time.Millisecond}
	client.mu.Unlock()

	c.SetSelection(Selection{LineCode: 4, LineName: "L4", StationCode: 111})
	snap := c.Snapshot()
	if snap.ArrivalsLoaded || snap.Arrivals != nil {
		t.Error("changing station must clear the old station's arrivals")
	}
}
