package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/vladislavdragonenkov/leathershop/internal/domain"
	"github.com/vladislavdragonenkov/leathershop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/leathershop/internal/order"
	"github.com/vladislavdragonenkov/leathershop/internal/pricing"
	"github.com/vladislavdragonenkov/leathershop/internal/sequence"
	"github.com/vladislavdragonenkov/leathershop/internal/stock"
	"github.com/vladislavdragonenkov/leathershop/internal/storage/memory"
	"github.com/vladislavdragonenkov/leathershop/internal/transport/httpapi"
)

// OrderFlowTestSuite прогоняет полный жизненный цикл заказа через
// реальный HTTP-стек: роутер, сервисы и in-memory хранилище.
type OrderFlowTestSuite struct {
	suite.Suite
	server *httptest.Server
	outbox domain.OutboxRepository
}

func (s *OrderFlowTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel) // Уменьшаем шум в тестах
	logger := baseLogger.WithField("component", "integration-test")

	products := memory.NewProductRepository()
	products.Put(domain.Product{ID: "PROD-1001", Name: "leather wallet", Lifecycle: domain.ActiveLifecycle()})
	products.Put(domain.Product{ID: "PROD-1002", Name: "leather belt", Lifecycle: domain.ActiveLifecycle()})

	outbox := memory.NewOutboxRepository()
	s.outbox = outbox

	seq := sequence.NewGenerator(memory.NewSequenceRepository(), logger)
	stockSvc := stock.NewService(memory.NewStockRepository(), products, memory.NewMovementRepository(), seq, logger)
	pricingSvc := pricing.NewService(memory.NewPriceRepository(), products, seq, logger)
	orderSvc := order.NewService(memory.NewOrderRepository(), stockSvc, seq, outbox, nil, logger)

	router := httpapi.NewRouter(httpapi.Services{
		Orders:    orderSvc,
		Stock:     stockSvc,
		Pricing:   pricingSvc,
		Sequences: seq,
	}, logger)

	s.server = httptest.NewServer(router)
}

func (s *OrderFlowTestSuite) TearDownTest() {
	s.server.Close()
}

// doJSON отправляет запрос от имени администратора и декодирует ответ.
func (s *OrderFlowTestSuite) doJSON(method, path string, body any, wantStatus int, out any) {
	s.T().Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.T(), err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-Role", string(domain.RoleAdmin))
	req.Header.Set("X-User-Id", "USER-100")

	resp, err := s.server.Client().Do(req)
	require.NoError(s.T(), err)
	defer resp.Body.Close()

	require.Equal(s.T(), wantStatus, resp.StatusCode, "%s %s", method, path)

	if out != nil {
		require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(out))
	}
}

func (s *OrderFlowTestSuite) createStock(productID string, quantity, minimum int) stockPayload {
	s.T().Helper()

	var created stockPayload
	s.doJSON(http.MethodPost, "/api/v1/stocks", map[string]any{
		"product_id": productID,
		"quantity":   quantity,
		"minimum":    minimum,
		"location":   "almacen-central",
	}, http.StatusCreated, &created)
	return created
}

func (s *OrderFlowTestSuite) placeOrder(productID string, qty int, priceMinor int64, wantStatus int) (orderPayload, errorPayload) {
	s.T().Helper()

	body := map[string]any{
		"customer": map[string]any{
			"name":    "Lucía Fernández",
			"email":   "lucia@example.com",
			"address": "Calle Mayor 12, Madrid",
		},
		"items": []map[string]any{
			{"product_id": productID, "qty": qty, "price_minor": priceMinor},
		},
		"vendor_id": "USER-100",
		"notes":     "entrega en tienda",
	}

	if wantStatus == http.StatusCreated {
		var placed orderPayload
		s.doJSON(http.MethodPost, "/api/v1/orders", body, wantStatus, &placed)
		return placed, errorPayload{}
	}

	var failure errorPayload
	s.doJSON(http.MethodPost, "/api/v1/orders", body, wantStatus, &failure)
	return orderPayload{}, failure
}

func (s *OrderFlowTestSuite) setStatus(orderID string, status domain.OrderStatus) {
	s.T().Helper()
	s.doJSON(http.MethodPut, "/api/v1/orders/"+orderID+"/status", map[string]any{
		"status": string(status),
	}, http.StatusOK, nil)
}

func (s *OrderFlowTestSuite) pullEvents() []kafka.OrderEvent {
	s.T().Helper()

	messages, err := s.outbox.PullPending(100)
	require.NoError(s.T(), err)

	events := make([]kafka.OrderEvent, 0, len(messages))
	for _, msg := range messages {
		require.Equal(s.T(), "order", msg.AggregateType)
		var event kafka.OrderEvent
		require.NoError(s.T(), json.Unmarshal(msg.Payload, &event))
		events = append(events, event)
	}
	return events
}

// TestFullLifecycle проводит заказ от оформления до доставки и проверяет
// побочные эффекты: списание остатка, журнал движений и события outbox.
func (s *OrderFlowTestSuite) TestFullLifecycle() {
	created := s.createStock("PROD-1001", 10, 2)
	s.Require().Equal("STOCK-3000", created.ID)
	s.Require().Equal(10, created.Quantity)

	var price pricePayload
	s.doJSON(http.MethodPut, "/api/v1/products/PROD-1001/price", map[string]any{
		"amount_minor": int64(499000),
		"currency":     "EUR",
	}, http.StatusCreated, &price)
	s.Require().Equal("PRICE-2000", price.ID)
	s.Require().True(price.Current)

	placed, _ := s.placeOrder("PROD-1001", 3, 499000, http.StatusCreated)
	s.Require().Equal("PED-05000", placed.ID)
	s.Require().Equal(fmt.Sprintf("PED-%s-0001", time.Now().UTC().Format("200601")), placed.Number)
	s.Require().Equal(string(domain.OrderStatusPending), placed.Status)
	s.Require().Equal(int64(3*499000), placed.TotalMinor)
	s.Require().Len(placed.Items, 1)

	// Остаток списан сразу при оформлении.
	var remaining stockPayload
	s.doJSON(http.MethodGet, "/api/v1/stocks/PROD-1001", nil, http.StatusOK, &remaining)
	s.Require().Equal(7, remaining.Quantity)

	// Журнал движений: первичное оприходование и продажа под заказ.
	var ledger movementsResponse
	s.doJSON(http.MethodGet, "/api/v1/stocks/PROD-1001/movements", nil, http.StatusOK, &ledger)
	s.Require().Len(ledger.Movements, 2)
	s.Require().Equal(domain.MovementTypeInitial, ledger.Movements[0].Type)
	s.Require().Equal(domain.MovementTypeSale, ledger.Movements[1].Type)
	s.Require().Equal(placed.ID, ledger.Movements[1].ReferenceID)
	s.Require().Equal(7, ledger.Movements[1].QuantityAfter)

	for _, status := range []domain.OrderStatus{
		domain.OrderStatusConfirmed,
		domain.OrderStatusInProcess,
		domain.OrderStatusShipped,
		domain.OrderStatusDelivered,
	} {
		s.setStatus(placed.ID, status)
	}

	var delivered orderPayload
	s.doJSON(http.MethodGet, "/api/v1/orders/"+placed.ID, nil, http.StatusOK, &delivered)
	s.Require().Equal(string(domain.OrderStatusDelivered), delivered.Status)

	// Outbox: одно событие оформления и по одному на каждую смену статуса.
	events := s.pullEvents()
	s.Require().Len(events, 5)
	s.Require().Equal(kafka.EventTypeOrderCreated, events[0].EventType)
	s.Require().Equal(placed.ID, events[0].OrderID)
	s.Require().Equal(placed.Number, events[0].Number)
	for _, event := range events[1:] {
		s.Require().Equal(kafka.EventTypeOrderStatusChanged, event.EventType)
	}
	s.Require().Equal(string(domain.OrderStatusDelivered), events[4].Status)
}

// TestCancellation проверяет отмену: статус меняется, но остаток назад
// не возвращается — возврат оформляется отдельной ручной корректировкой.
func (s *OrderFlowTestSuite) TestCancellation() {
	s.createStock("PROD-1002", 5, 1)

	placed, _ := s.placeOrder("PROD-1002", 2, 120000, http.StatusCreated)
	s.setStatus(placed.ID, domain.OrderStatusCancelled)

	var cancelled orderPayload
	s.doJSON(http.MethodGet, "/api/v1/orders/"+placed.ID, nil, http.StatusOK, &cancelled)
	s.Require().Equal(string(domain.OrderStatusCancelled), cancelled.Status)

	var remaining stockPayload
	s.doJSON(http.MethodGet, "/api/v1/stocks/PROD-1002", nil, http.StatusOK, &remaining)
	s.Require().Equal(3, remaining.Quantity)

	events := s.pullEvents()
	s.Require().Len(events, 2)
	s.Require().Equal(kafka.EventTypeOrderCreated, events[0].EventType)
	s.Require().Equal(kafka.EventTypeOrderStatusChanged, events[1].EventType)
	s.Require().Equal(string(domain.OrderStatusCancelled), events[1].Status)
}

// TestInsufficientStock проверяет, что заказ сверх остатка отклоняется
// целиком: без записи заказа, без списания, без событий.
func (s *OrderFlowTestSuite) TestInsufficientStock() {
	s.createStock("PROD-1001", 2, 1)

	_, failure := s.placeOrder("PROD-1001", 5, 499000, http.StatusUnprocessableEntity)
	s.Require().Equal("insufficient_stock", failure.Reason)

	var remaining stockPayload
	s.doJSON(http.MethodGet, "/api/v1/stocks/PROD-1001", nil, http.StatusOK, &remaining)
	s.Require().Equal(2, remaining.Quantity)

	var orders ordersResponse
	s.doJSON(http.MethodGet, "/api/v1/orders", nil, http.StatusOK, &orders)
	s.Require().Empty(orders.Orders)

	s.Require().Empty(s.pullEvents())
}

// TestUnknownProduct: товар без складской записи неотличим от нехватки
// остатка — клиент получает тот же отказ.
func (s *OrderFlowTestSuite) TestUnknownProduct() {
	_, failure := s.placeOrder("PROD-9999", 1, 100000, http.StatusUnprocessableEntity)
	s.Require().Equal("insufficient_stock", failure.Reason)
}

// TestUnknownStatus проверяет отказ на незнакомом статусе.
func (s *OrderFlowTestSuite) TestUnknownStatus() {
	s.createStock("PROD-1001", 4, 1)
	placed, _ := s.placeOrder("PROD-1001", 1, 499000, http.StatusCreated)

	var failure errorPayload
	s.doJSON(http.MethodPut, "/api/v1/orders/"+placed.ID+"/status", map[string]any{
		"status": "teleported",
	}, http.StatusBadRequest, &failure)
	s.Require().Equal("invalid_argument", failure.Reason)

	var unchanged orderPayload
	s.doJSON(http.MethodGet, "/api/v1/orders/"+placed.ID, nil, http.StatusOK, &unchanged)
	s.Require().Equal(string(domain.OrderStatusPending), unchanged.Status)
}

// TestVendorVisibility: empleado видит только свои заказы.
func (s *OrderFlowTestSuite) TestVendorVisibility() {
	s.createStock("PROD-1001", 10, 1)
	placed, _ := s.placeOrder("PROD-1001", 1, 499000, http.StatusCreated)

	req, err := http.NewRequest(http.MethodGet, s.server.URL+"/api/v1/orders", nil)
	s.Require().NoError(err)
	req.Header.Set("X-User-Role", string(domain.RoleEmpleado))
	req.Header.Set("X-User-Id", "USER-200")

	resp, err := s.server.Client().Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Require().Equal(http.StatusOK, resp.StatusCode)

	var foreign ordersResponse
	s.Require().NoError(json.NewDecoder(resp.Body).Decode(&foreign))
	s.Require().Empty(foreign.Orders)

	var own ordersResponse
	s.doJSON(http.MethodGet, "/api/v1/orders", nil, http.StatusOK, &own)
	s.Require().Len(own.Orders, 1)
	s.Require().Equal(placed.ID, own.Orders[0].ID)
}

func TestOrderFlowTestSuite(t *testing.T) {
	suite.Run(t, new(OrderFlowTestSuite))
}

// Ответы API в том виде, в котором их видит клиент.

type orderItemPayload struct {
	ID         string `json:"id"`
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceMinor int64  `json:"price_minor"`
}

type orderPayload struct {
	ID         string             `json:"id"`
	Number     string             `json:"number"`
	VendorID   string             `json:"vendor_id"`
	Items      []orderItemPayload `json:"items"`
	TotalMinor int64              `json:"total_minor"`
	Status     string             `json:"status"`
}

type ordersResponse struct {
	Orders []orderPayload `json:"orders"`
}

type stockPayload struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Minimum   int    `json:"minimum"`
	Location  string `json:"location"`
}

type movementPayload struct {
	Type           string `json:"type"`
	Delta          int    `json:"delta"`
	QuantityBefore int    `json:"quantity_before"`
	QuantityAfter  int    `json:"quantity_after"`
	ReferenceID    string `json:"reference_id"`
}

type movementsResponse struct {
	Movements []movementPayload `json:"movements"`
}

type pricePayload struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
	Current     bool   `json:"current"`
}

type errorPayload struct {
	Reason string `json:"reason"`
	Error  string `json:"error"`
}
