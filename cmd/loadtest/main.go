// Генератор нагрузки на REST API магазина: размещает заказы и гоняет их
// по статусам, собирая перцентили задержек по каждому вызову.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultPriceMinor = int64(1000)
	defaultQty        = 1

	outcomeTransport = "transport_error"
)

type loadMode string

const (
	modePlace              loadMode = "place"
	modePlaceConfirm       loadMode = "place-confirm"
	modePlaceConfirmCancel loadMode = "place-confirm-cancel"
)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	cancelRate  int
	productID   string
	qty         int
	priceMinor  int64
	customerTag string
	outputPath  string
}

type latencySummary struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
	P50 float64 `json:"p50"`
	P95 float64 `json:"p95"`
	P99 float64 `json:"p99"`
}

type methodReport struct {
	Calls     int64            `json:"calls"`
	Success   int64            `json:"success"`
	Failed    int64            `json:"failed"`
	ErrorRate float64          `json:"error_rate"`
	Outcomes  map[string]int64 `json:"outcomes"`
	LatencyMs latencySummary   `json:"latency_ms"`
}

type report struct {
	StartedAt         time.Time               `json:"started_at"`
	DurationSeconds   float64                 `json:"duration_seconds"`
	TotalScenarios    int64                   `json:"total_scenarios"`
	SuccessScenarios  int64                   `json:"success_scenarios"`
	FailedScenarios   int64                   `json:"failed_scenarios"`
	ErrorRate         float64                 `json:"error_rate"`
	RPS               float64                 `json:"rps"`
	ScenarioLatencyMs latencySummary          `json:"scenario_latency_ms"`
	Methods           map[string]methodReport `json:"methods"`
}

type methodStats struct {
	calls     int64
	success   int64
	failed    int64
	outcomes  map[string]int64
	latencies []float64
}

type collector struct {
	mu      sync.Mutex
	methods map[string]*methodStats
}

func newCollector() *collector {
	return &collector{
		methods: make(map[string]*methodStats),
	}
}

func (c *collector) record(method string, latency time.Duration, outcome string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, exists := c.methods[method]
	if !exists {
		stats = &methodStats{
			outcomes: make(map[string]int64),
		}
		c.methods[method] = stats
	}

	stats.calls++
	if ok {
		stats.success++
	} else {
		stats.failed++
	}
	stats.outcomes[outcome]++
	stats.latencies = append(stats.latencies, float64(latency.Microseconds())/1000.0)
}

func (c *collector) snapshot(name string) (methodReport, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stats, ok := c.methods[name]
	if !ok {
		return methodReport{}, false
	}

	outcomesCopy := make(map[string]int64, len(stats.outcomes))
	for outcome, count := range stats.outcomes {
		outcomesCopy[outcome] = count
	}

	return methodReport{
		Calls:     stats.calls,
		Success:   stats.success,
		Failed:    stats.failed,
		ErrorRate: ratio(stats.failed, stats.calls),
		Outcomes:  outcomesCopy,
		LatencyMs: buildLatencySummary(stats.latencies),
	}, true
}

func (c *collector) buildReport(startedAt time.Time, duration time.Duration) report {
	c.mu.Lock()
	defer c.mu.Unlock()

	result := report{
		StartedAt:       startedAt.UTC(),
		DurationSeconds: duration.Seconds(),
		Methods:         make(map[string]methodReport, len(c.methods)),
	}

	scenarioStats := c.methods["scenario"]
	if scenarioStats != nil {
		result.TotalScenarios = scenarioStats.calls
		result.SuccessScenarios = scenarioStats.success
		result.FailedScenarios = scenarioStats.failed
		result.ErrorRate = ratio(scenarioStats.failed, scenarioStats.calls)
		result.ScenarioLatencyMs = buildLatencySummary(scenarioStats.latencies)
	}
	if duration > 0 {
		result.RPS = float64(result.TotalScenarios) / duration.Seconds()
	}

	for name, stats := range c.methods {
		outcomesCopy := make(map[string]int64, len(stats.outcomes))
		for outcome, count := range stats.outcomes {
			outcomesCopy[outcome] = count
		}
		result.Methods[name] = methodReport{
			Calls:     stats.calls,
			Success:   stats.success,
			Failed:    stats.failed,
			ErrorRate: ratio(stats.failed, stats.calls),
			Outcomes:  outcomesCopy,
			LatencyMs: buildLatencySummary(stats.latencies),
		}
	}

	return result
}

func parseConfig() (config, error) {
	var cfg config
	var modeValue string
	var timeoutValue string
	var durationValue string

	flag.StringVar(&cfg.addr, "addr", "http://localhost:8080", "base URL of the HTTP API")
	flag.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flag.StringVar(&durationValue, "duration", "0s", "optional time-based run duration (e.g. 10m, 15m)")
	flag.IntVar(&cfg.concurrency, "concurrency", 40, "number of concurrent workers")
	flag.IntVar(&cfg.connections, "connections", 20, "number of HTTP clients")
	flag.StringVar(&timeoutValue, "timeout", "5s", "per-request timeout")
	flag.StringVar(&modeValue, "mode", string(modePlace), "load mode: place | place-confirm | place-confirm-cancel")
	flag.IntVar(&cfg.cancelRate, "cancel-rate", 0, "cancel probability in percent for place-confirm mode (0..100)")
	flag.StringVar(&cfg.productID, "product", "PROD-1001", "product id used in order items")
	flag.IntVar(&cfg.qty, "qty", defaultQty, "quantity per order item")
	flag.Int64Var(&cfg.priceMinor, "price-minor", defaultPriceMinor, "item price in minor units")
	flag.StringVar(&cfg.customerTag, "customer-tag", "load", "customer name prefix")
	flag.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	flag.Parse()

	timeout, err := time.ParseDuration(strings.TrimSpace(timeoutValue))
	if err != nil {
		return cfg, fmt.Errorf("parse timeout: %w", err)
	}
	cfg.timeout = timeout

	duration, err := time.ParseDuration(strings.TrimSpace(durationValue))
	if err != nil {
		return cfg, fmt.Errorf("parse duration: %w", err)
	}
	cfg.duration = duration

	flag.CommandLine.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	if cfg.duration < 0 {
		return cfg, errors.New("duration must be >= 0")
	}
	if cfg.duration == 0 && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when duration is not set")
	}
	if cfg.duration > 0 && cfg.totalSet && cfg.total <= 0 {
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	}
	if cfg.concurrency <= 0 {
		return cfg, errors.New("concurrency must be > 0")
	}
	if cfg.connections <= 0 {
		return cfg, errors.New("connections must be > 0")
	}
	if cfg.timeout <= 0 {
		return cfg, errors.New("timeout must be > 0")
	}
	if cfg.qty <= 0 {
		return cfg, errors.New("qty must be > 0")
	}
	if cfg.priceMinor <= 0 {
		return cfg, errors.New("price-minor must be > 0")
	}
	if cfg.cancelRate < 0 || cfg.cancelRate > 100 {
		return cfg, errors.New("cancel-rate must be between 0 and 100")
	}
	if strings.TrimSpace(cfg.addr) == "" {
		return cfg, errors.New("addr is required")
	}
	if strings.TrimSpace(cfg.productID) == "" {
		return cfg, errors.New("product is required")
	}
	if strings.TrimSpace(cfg.customerTag) == "" {
		return cfg, errors.New("customer-tag is required")
	}
	cfg.addr = strings.TrimRight(strings.TrimSpace(cfg.addr), "/")

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modePlace:
		return modePlace, nil
	case modePlaceConfirm:
		return modePlaceConfirm, nil
	case modePlaceConfirmCancel:
		return modePlaceConfirmCancel, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	clients := make([]*http.Client, 0, cfg.connections)
	for i := 0; i < cfg.connections; i++ {
		clients = append(clients, &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        cfg.concurrency,
				MaxIdleConnsPerHost: cfg.concurrency,
			},
		})
	}
	defer func() {
		for _, client := range clients {
			client.CloseIdleConnections()
		}
	}()

	startedAt := time.Now()
	runID := fmt.Sprintf("%d-%d", startedAt.UnixNano(), os.Getpid())
	col := newCollector()

	jobs := make(chan int, cfg.concurrency*2)
	var failures int64
	var wg sync.WaitGroup

	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		client := clients[workerID%len(clients)]
		go func(cli *http.Client) {
			defer wg.Done()
			for id := range jobs {
				if runErr := runScenario(cli, cfg, id, runID, col); runErr != nil {
					atomic.AddInt64(&failures, 1)
				}
			}
		}(client)
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	duration := time.Since(startedAt)
	result := col.buildReport(startedAt, duration)
	if result.FailedScenarios == 0 && failures > 0 {
		result.FailedScenarios = failures
		result.ErrorRate = ratio(result.FailedScenarios, result.TotalScenarios)
	}

	printReport(result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedScenarios > 0 {
		os.Exit(1)
	}
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

type placeOrderBody struct {
	Customer struct {
		Name  string `json:"name"`
		Email string `json:"email"`
	} `json:"customer"`
	Items []struct {
		ProductID  string `json:"product_id"`
		Qty        int    `json:"qty"`
		PriceMinor int64  `json:"price_minor"`
	} `json:"items"`
	Notes string `json:"notes"`
}

type placedOrder struct {
	ID     string `json:"id"`
	Number string `json:"number"`
	Status string `json:"status"`
}

func runScenario(
	client *http.Client,
	cfg config,
	index int,
	runID string,
	col *collector,
) error {
	scenarioStart := time.Now()
	scenarioOutcome := "ok"
	scenarioOK := true
	defer func() {
		col.record("scenario", time.Since(scenarioStart), scenarioOutcome, scenarioOK)
	}()

	customer := fmt.Sprintf("%s-%s-%d", cfg.customerTag, runID, index)
	orderID, outcome, err := callPlaceOrder(client, cfg, customer, col)
	if err != nil {
		scenarioOutcome = outcome
		scenarioOK = false
		return err
	}
	if orderID == "" {
		scenarioOutcome = "empty_order_id"
		scenarioOK = false
		return errors.New("place response returned empty order id")
	}

	if cfg.mode == modePlace {
		return nil
	}

	if outcome, err := callSetStatus(client, cfg, orderID, "confirmed", col); err != nil {
		scenarioOutcome = outcome
		scenarioOK = false
		return err
	}

	if cfg.mode == modePlaceConfirmCancel || (cfg.mode == modePlaceConfirm && shouldCancelScenario(index, cfg.cancelRate)) {
		if outcome, err := callSetStatus(client, cfg, orderID, "cancelled", col); err != nil {
			scenarioOutcome = outcome
			scenarioOK = false
			return err
		}
	}

	return nil
}

func callPlaceOrder(client *http.Client, cfg config, customerName string, col *collector) (string, string, error) {
	var body placeOrderBody
	body.Customer.Name = customerName
	body.Customer.Email = customerName + "@load.test"
	body.Items = append(body.Items, struct {
		ProductID  string `json:"product_id"`
		Qty        int    `json:"qty"`
		PriceMinor int64  `json:"price_minor"`
	}{ProductID: cfg.productID, Qty: cfg.qty, PriceMinor: cfg.priceMinor})
	body.Notes = "load test order"

	var placed placedOrder
	outcome, err := doJSON(client, cfg.timeout, http.MethodPost, cfg.addr+"/api/v1/orders", body, http.StatusCreated, &placed, col, "PlaceOrder")
	if err != nil {
		return "", outcome, err
	}
	return placed.ID, outcome, nil
}

func callSetStatus(client *http.Client, cfg config, orderID, status string, col *collector) (string, error) {
	url := fmt.Sprintf("%s/api/v1/orders/%s/status", cfg.addr, orderID)
	body := map[string]string{"status": status}

	outcome, err := doJSON(client, cfg.timeout, http.MethodPut, url, body, http.StatusOK, nil, col, "SetStatus:"+status)
	return outcome, err
}

// doJSON выполняет один JSON-запрос, фиксирует его в коллекторе и
// декодирует ответ при совпадении ожидаемого статуса.
func doJSON(
	client *http.Client,
	timeout time.Duration,
	method, url string,
	payload any,
	wantStatus int,
	out any,
	col *collector,
	metric string,
) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return outcomeTransport, fmt.Errorf("encode %s payload: %w", metric, err)
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(encoded))
	if err != nil {
		col.record(metric, time.Since(start), outcomeTransport, false)
		return outcomeTransport, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", "admin")

	resp, err := client.Do(req)
	if err != nil {
		col.record(metric, time.Since(start), outcomeTransport, false)
		return outcomeTransport, err
	}
	defer resp.Body.Close()

	outcome := strconv.Itoa(resp.StatusCode)
	ok := resp.StatusCode == wantStatus
	if ok && out != nil {
		if decodeErr := json.NewDecoder(resp.Body).Decode(out); decodeErr != nil {
			col.record(metric, time.Since(start), "decode_error", false)
			return "decode_error", fmt.Errorf("decode %s response: %w", metric, decodeErr)
		}
	}

	col.record(metric, time.Since(start), outcome, ok)
	if !ok {
		return outcome, fmt.Errorf("%s: unexpected status %d (want %d)", metric, resp.StatusCode, wantStatus)
	}
	return outcome, nil
}

func shouldCancelScenario(index, cancelRate int) bool {
	if cancelRate <= 0 {
		return false
	}
	if cancelRate >= 100 {
		return true
	}
	return index%100 < cancelRate
}

func writeJSONReport(path string, result report) error {
	cleanPath := filepath.Clean(path)
	if cleanPath == "." || cleanPath == string(filepath.Separator) {
		return errors.New("output path must point to a file")
	}
	if cleanPath == ".." || strings.HasPrefix(cleanPath, ".."+string(filepath.Separator)) {
		return fmt.Errorf("output path must be inside current directory: %s", path)
	}

	// #nosec G304 -- path is an explicit CLI output parameter for local load-test reports.
	file, err := os.Create(cleanPath)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func printReport(result report, cfg config) {
	fmt.Println("Load test summary")
	fmt.Printf("mode=%s run=%s total=%d success=%d failed=%d error_rate=%.4f\n",
		cfg.mode,
		runTarget(cfg),
		result.TotalScenarios,
		result.SuccessScenarios,
		result.FailedScenarios,
		result.ErrorRate,
	)
	fmt.Printf("duration=%.2fs rps=%.2f\n", result.DurationSeconds, result.RPS)
	fmt.Printf("scenario latency ms: min=%.2f avg=%.2f p50=%.2f p95=%.2f p99=%.2f max=%.2f\n",
		result.ScenarioLatencyMs.Min,
		result.ScenarioLatencyMs.Avg,
		result.ScenarioLatencyMs.P50,
		result.ScenarioLatencyMs.P95,
		result.ScenarioLatencyMs.P99,
		result.ScenarioLatencyMs.Max,
	)

	methodNames := make([]string, 0, len(result.Methods))
	for name := range result.Methods {
		if name == "scenario" {
			continue
		}
		methodNames = append(methodNames, name)
	}
	sort.Strings(methodNames)
	for _, name := range methodNames {
		stats := result.Methods[name]
		fmt.Printf(
			"%s: calls=%d success=%d failed=%d error_rate=%.4f p95=%.2fms\n",
			name,
			stats.Calls,
			stats.Success,
			stats.Failed,
			stats.ErrorRate,
			stats.LatencyMs.P95,
		)
	}
}

func runTarget(cfg config) string {
	if cfg.duration <= 0 {
		return fmt.Sprintf("count:%d", cfg.total)
	}
	if cfg.totalSet {
		return fmt.Sprintf("duration:%s,max-total:%d", cfg.duration, cfg.total)
	}
	return fmt.Sprintf("duration:%s", cfg.duration)
}

func buildLatencySummary(values []float64) latencySummary {
	if len(values) == 0 {
		return latencySummary{}
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var sum float64
	for _, value := range sorted {
		sum += value
	}

	return latencySummary{
		Min: sorted[0],
		Max: sorted[len(sorted)-1],
		Avg: sum / float64(len(sorted)),
		P50: percentile(sorted, 50),
		P95: percentile(sorted, 95),
		P99: percentile(sorted, 99),
	}
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if len(sorted) == 1 {
		return sorted[0]
	}

	rank := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower == upper {
		return sorted[lower]
	}

	weight := rank - float64(lower)
	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

func ratio(failed, total int64) float64 {
	if total <= 0 {
		return 0
	}
	return float64(failed) / float64(total)
}
