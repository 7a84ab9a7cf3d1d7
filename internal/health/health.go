// Пакет health отдаёт состояние зависимостей сервиса: хранилища и
// backlog transactional outbox. Пробы объявляются при старте приложения,
// обработчики только прогоняют их по запросу.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
)

// probeTimeout ограничивает одну пробу, чтобы зависший ping хранилища
// не завесил весь health-ответ.
const probeTimeout = 2 * time.Second

// State — агрегированное состояние сервиса.
type State string

const (
	StateOK       State = "ok"
	StateDegraded State = "degraded"
	StateDown     State = "down"
)

// Probe — одна именованная проверка зависимости. Critical-пробы
// валят readiness; остальные только понижают состояние до degraded.
type Probe struct {
	Name     string
	Critical bool
	Run      func(ctx context.Context) error
}

type probeResult struct {
	State     State  `json:"state"`
	Error     string `json:"error,omitempty"`
	ElapsedMs int64  `json:"elapsed_ms"`
}

type report struct {
	State         State                  `json:"state"`
	Version       string                 `json:"version"`
	UptimeSeconds int64                  `json:"uptime_seconds"`
	Probes        map[string]probeResult `json:"probes,omitempty"`
}

// Registry хранит пробы и обслуживает /healthz и /readyz.
type Registry struct {
	version string
	started time.Time

	mu     sync.RWMutex
	probes []Probe
}

// NewRegistry создаёт реестр проб. version попадает в каждый ответ,
// чтобы по health-ручке было видно, какая сборка развёрнута.
func NewRegistry(version string) *Registry {
	return &Registry{version: version, started: time.Now()}
}

// Add регистрирует пробу. Порядок регистрации сохраняется в ответе.
func (r *Registry) Add(p Probe) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.probes = append(r.probes, p)
}

func (r *Registry) snapshot() []Probe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Probe(nil), r.probes...)
}

func runProbe(ctx context.Context, p Probe) probeResult {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	start := time.Now()
	err := p.Run(probeCtx)
	elapsed := time.Since(start)

	if err != nil {
		state := StateDegraded
		if p.Critical {
			state = StateDown
		}
		return probeResult{State: state, Error: err.Error(), ElapsedMs: elapsed.Milliseconds()}
	}
	return probeResult{State: StateOK, ElapsedMs: elapsed.Milliseconds()}
}

// Healthz отдаёт полный отчёт по всем пробам. 503 — только когда
// отказала critical-проба; degraded остаётся 200, чтобы оркестратор
// не перезапускал сервис из-за подросшего backlog.
func (r *Registry) Healthz(w http.ResponseWriter, req *http.Request) {
	overall := StateOK
	results := make(map[string]probeResult)

	for _, p := range r.snapshot() {
		res := runProbe(req.Context(), p)
		results[p.Name] = res

		switch res.State {
		case StateDown:
			overall = StateDown
		case StateDegraded:
			if overall == StateOK {
				overall = StateDegraded
			}
		}
	}

	code := http.StatusOK
	if overall == StateDown {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(report{
		State:         overall,
		Version:       r.version,
		UptimeSeconds: int64(time.Since(r.started).Seconds()),
		Probes:        results,
	})
}

// Readyz прогоняет только critical-пробы: деградация outbox не повод
// выводить инстанс из балансировки.
func (r *Registry) Readyz(w http.ResponseWriter, req *http.Request) {
	for _, p := range r.snapshot() {
		if !p.Critical {
			continue
		}
		if res := runProbe(req.Context(), p); res.State == StateDown {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("not ready: " + p.Name))
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Livez отвечает 200, пока процесс жив.
func Livez(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}

// StoreProbe проверяет доступность хранилища. Critical: без него
// ни одна операция API не выполнима.
func StoreProbe(ping func(ctx context.Context) error) Probe {
	return Probe{
		Name:     "postgres",
		Critical: true,
		Run:      ping,
	}
}

// OutboxBacklogProbe деградирует, когда необработанных событий больше
// maxPending или самое старое висит дольше maxAge: обычно это значит,
// что Kafka недоступна и publisher копит отставание.
func OutboxBacklogProbe(outboxRepo domain.OutboxRepository, maxPending int, maxAge time.Duration) Probe {
	return Probe{
		Name: "outbox",
		Run: func(context.Context) error {
			stats, err := outboxRepo.Stats()
			if err != nil {
				return fmt.Errorf("outbox stats: %w", err)
			}
			if stats.PendingCount > maxPending {
				return fmt.Errorf("outbox backlog %d exceeds %d", stats.PendingCount, maxPending)
			}
			if stats.PendingCount > 0 && time.Since(stats.OldestPendingAt) > maxAge {
				return fmt.Errorf("oldest outbox event pending for %s", time.Since(stats.OldestPendingAt).Truncate(time.Second))
			}
			return nil
		},
	}
}
