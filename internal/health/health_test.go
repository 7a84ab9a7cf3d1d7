package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

type reportBody struct {
	State   string `json:"state"`
	Version string `json:"version"`
	Probes  map[string]struct {
		State string `json:"state"`
		Error string `json:"error"`
	} `json:"probes"`
}

func serveHealthz(t *testing.T, reg *Registry) (int, reportBody) {
	t.Helper()

	rec := httptest.NewRecorder()
	reg.Healthz(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body reportBody
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode healthz body: %v", err)
	}
	return rec.Code, body
}

func TestHealthz_AllProbesOK(t *testing.T) {
	reg := NewRegistry("1.2.3")
	reg.Add(StoreProbe(func(context.Context) error { return nil }))
	reg.Add(Probe{Name: "outbox", Run: func(context.Context) error { return nil }})

	code, body := serveHealthz(t, reg)

	if code != http.StatusOK {
		t.Fatalf("healthz code = %d, want %d", code, http.StatusOK)
	}
	if body.State != string(StateOK) {
		t.Errorf("state = %q, want %q", body.State, StateOK)
	}
	if body.Version != "1.2.3" {
		t.Errorf("version = %q, want %q", body.Version, "1.2.3")
	}
	if len(body.Probes) != 2 {
		t.Errorf("probes = %d, want 2", len(body.Probes))
	}
}

func TestHealthz_CriticalFailureIs503(t *testing.T) {
	reg := NewRegistry("test")
	reg.Add(StoreProbe(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}))

	code, body := serveHealthz(t, reg)

	if code != http.StatusServiceUnavailable {
		t.Fatalf("healthz code = %d, want %d", code, http.StatusServiceUnavailable)
	}
	if body.State != string(StateDown) {
		t.Errorf("state = %q, want %q", body.State, StateDown)
	}
	if body.Probes["postgres"].Error == "" {
		t.Error("postgres probe error should be reported")
	}
}

func TestHealthz_DegradedStays200(t *testing.T) {
	reg := NewRegistry("test")
	reg.Add(StoreProbe(func(context.Context) error { return nil }))
	reg.Add(Probe{Name: "outbox", Run: func(context.Context) error {
		return errors.New("outbox backlog 120 exceeds 100")
	}})

	code, body := serveHealthz(t, reg)

	if code != http.StatusOK {
		t.Fatalf("degraded healthz code = %d, want %d", code, http.StatusOK)
	}
	if body.State != string(StateDegraded) {
		t.Errorf("state = %q, want %q", body.State, StateDegraded)
	}
}

func TestReadyz_IgnoresNonCriticalProbes(t *testing.T) {
	reg := NewRegistry("test")
	reg.Add(StoreProbe(func(context.Context) error { return nil }))
	reg.Add(Probe{Name: "outbox", Run: func(context.Context) error {
		return errors.New("backlog too big")
	}})

	rec := httptest.NewRecorder()
	reg.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("readyz code = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestReadyz_CriticalFailureIsNotReady(t *testing.T) {
	reg := NewRegistry("test")
	reg.Add(StoreProbe(func(context.Context) error {
		return errors.New("connection refused")
	}))

	rec := httptest.NewRecorder()
	reg.Readyz(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readyz code = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
	if got := rec.Body.String(); got != "not ready: postgres" {
		t.Errorf("readyz body = %q, want %q", got, "not ready: postgres")
	}
}

func TestLivez(t *testing.T) {
	rec := httptest.NewRecorder()
	Livez(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("livez code = %d, want %d", rec.Code, http.StatusOK)
	}
}

// stubOutboxStats реализует только Stats; остальные методы порта
// в пробе не участвуют.
type stubOutboxStats struct {
	stats domain.OutboxStats
	err   error
}

func (s *stubOutboxStats) Stats() (domain.OutboxStats, error) { return s.stats, s.err }

func (s *stubOutboxStats) Enqueue(msg domain.OutboxMessage) (domain.OutboxMessage, error) {
	return msg, nil
}
func (s *stubOutboxStats) PullPending(int) ([]domain.OutboxMessage, error) { return nil, nil }
func (s *stubOutboxStats) MarkSent(string) error                           { return nil }
func (s *stubOutboxStats) MarkFailed(string) error                         { return nil }
func (s *stubOutboxStats) DeleteSentBefore(time.Time, int) (int, error)    { return 0, nil }

func TestOutboxBacklogProbe(t *testing.T) {
	tests := []struct {
		name    string
		stats   domain.OutboxStats
		err     error
		wantErr bool
	}{
		{
			name:  "empty backlog is healthy",
			stats: domain.OutboxStats{},
		},
		{
			name:  "small fresh backlog is healthy",
			stats: domain.OutboxStats{PendingCount: 3, OldestPendingAt: time.Now().Add(-time.Second)},
		},
		{
			name:    "backlog over limit degrades",
			stats:   domain.OutboxStats{PendingCount: 101, OldestPendingAt: time.Now()},
			wantErr: true,
		},
		{
			name:    "stale oldest event degrades",
			stats:   domain.OutboxStats{PendingCount: 1, OldestPendingAt: time.Now().Add(-time.Hour)},
			wantErr: true,
		},
		{
			name:    "stats failure degrades",
			err:     errors.New("repository offline"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			probe := OutboxBacklogProbe(&stubOutboxStats{stats: tt.stats, err: tt.err}, 100, 5*time.Minute)

			err := probe.Run(context.Background())
			if tt.wantErr && err == nil {
				t.Fatal("probe should report an error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("probe reported unexpected error: %v", err)
			}
			if probe.Critical {
				t.Error("outbox probe must not be critical")
			}
		})
	}
}
