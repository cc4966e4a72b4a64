package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpin "storefront/internal/adapters/in/http"
	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/core/domain/services"
	"storefront/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

type MockCreateOrder struct{ mock.Mock }

func (m *MockCreateOrder) Handle(ctx context.Context, cmd commands.CreateOrderCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

type MockChangeOrderStatus struct{ mock.Mock }

func (m *MockChangeOrderStatus) Handle(
	ctx context.Context,
	cmd commands.ChangeOrderStatusCommand,
) (commands.LifecycleResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.LifecycleResult), args.Error(1)
}

type MockValidatePayment struct{ mock.Mock }

func (m *MockValidatePayment) Handle(
	ctx context.Context,
	cmd commands.ValidatePaymentCommand,
) (commands.LifecycleResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.LifecycleResult), args.Error(1)
}

type MockAttachPaymentProof struct{ mock.Mock }

func (m *MockAttachPaymentProof) Handle(
	ctx context.Context,
	cmd commands.AttachPaymentProofCommand,
) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockDrain struct{ mock.Mock }

func (m *MockDrain) Handle(
	ctx context.Context,
	cmd commands.DrainNotificationQueueCommand,
) (commands.DrainResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.DrainResult), args.Error(1)
}

type MockGetOrder struct{ mock.Mock }

func (m *MockGetOrder) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.GetOrderQueryResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.GetOrderQueryResponse), args.Error(1)
}

type MockListActiveOrders struct{ mock.Mock }

func (m *MockListActiveOrders) Handle(
	ctx context.Context,
	query queries.ListActiveOrdersQuery,
) ([]queries.ListActiveOrdersQueryResponse, error) {
	args := m.Called(ctx, query)
	orders, _ := args.Get(0).([]queries.ListActiveOrdersQueryResponse)
	return orders, args.Error(1)
}

type MockListOrderHistory struct{ mock.Mock }

func (m *MockListOrderHistory) Handle(
	ctx context.Context,
	query queries.ListOrderHistoryQuery,
) ([]queries.ListOrderHistoryQueryResponse, error) {
	args := m.Called(ctx, query)
	entries, _ := args.Get(0).([]queries.ListOrderHistoryQueryResponse)
	return entries, args.Error(1)
}

type fixture struct {
	e *echo.Echo

	createOrder  *MockCreateOrder
	changeStatus *MockChangeOrderStatus
	validate     *MockValidatePayment
	attachProof  *MockAttachPaymentProof
	drain        *MockDrain
	getOrder     *MockGetOrder
	listActive   *MockListActiveOrders
	listHistory  *MockListOrderHistory
}

func newFixture() *fixture {
	f := &fixture{
		e:            echo.New(),
		createOrder:  &MockCreateOrder{},
		changeStatus: &MockChangeOrderStatus{},
		validate:     &MockValidatePayment{},
		attachProof:  &MockAttachPaymentProof{},
		drain:        &MockDrain{},
		getOrder:     &MockGetOrder{},
		listActive:   &MockListActiveOrders{},
		listHistory:  &MockListOrderHistory{},
	}

	server := httpin.NewServer(httpin.Handlers{
		CreateOrder:        f.createOrder,
		ChangeOrderStatus:  f.changeStatus,
		ValidatePayment:    f.validate,
		AttachPaymentProof: f.attachProof,
		DrainNotifications: f.drain,
		GetOrder:           f.getOrder,
		ListActiveOrders:   f.listActive,
		ListOrderHistory:   f.listHistory,
	}, slog.New(slog.DiscardHandler))
	server.Register(f.e)

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	f.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(kernel.NewUUID(), "PED-001", "+51 987 654 321", now)
	require.NoError(t, err)
	return o
}

func TestServer_Health(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())
}

func TestServer_Metrics(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_CreateOrder(t *testing.T) {
	f := newFixture()
	f.createOrder.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
		return cmd.Number() == "PED-001" && cmd.CustomerContact() == "987654321"
	})).Return(nil)

	rec := f.do(http.MethodPost, "/api/v1/orders", `{"numero_pedido":"PED-001","customer_contact":"987654321"}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[httpin.CreatedOrder](t, rec)
	_, err := kernel.UUIDFromString(created.ID)
	require.NoError(t, err)
	f.createOrder.AssertExpectations(t)
}

func TestServer_CreateOrder_MissingNumber(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders", `{"customer_contact":"987654321"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.createOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_CreateOrder_MalformedBody(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders", `{"numero_pedido":`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", decode[httpin.Error](t, rec).Message)
}

func TestServer_CreateOrder_DuplicateNumber(t *testing.T) {
	f := newFixture()
	f.createOrder.On("Handle", mock.Anything, mock.Anything).
		Return(errs.NewConflictError("order", "PED-001"))

	rec := f.do(http.MethodPost, "/api/v1/orders", `{"numero_pedido":"PED-001","customer_contact":"987654321"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_GetActiveOrders(t *testing.T) {
	f := newFixture()
	id := kernel.NewUUID()
	f.listActive.On("Handle", mock.Anything, mock.Anything).Return([]queries.ListActiveOrdersQueryResponse{
		{ID: id, Number: "PED-002", Status: order.Confirmed, PaymentStatus: order.PaymentPending, AwaitingReview: true},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders", "")

	require.Equal(t, http.StatusOK, rec.Code)
	orders := decode[[]httpin.ActiveOrder](t, rec)
	require.Len(t, orders, 1)
	assert.Equal(t, id.String(), orders[0].ID)
	assert.Equal(t, "confirmed", orders[0].Status)
	assert.Equal(t, "pending", orders[0].PaymentStatus)
	assert.True(t, orders[0].AwaitingReview)
}

func TestServer_GetOrder(t *testing.T) {
	f := newFixture()
	id := kernel.NewUUID()
	f.getOrder.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.GetOrderQuery) bool {
		return q.OrderID().IsEqual(id)
	})).Return(queries.GetOrderQueryResponse{
		ID:            id,
		Number:        "PED-003",
		Status:        order.Placed,
		PaymentStatus: order.PaymentPending,
		Editable:      true,
		Version:       1,
		ReachedAt:     map[order.Status]time.Time{order.Placed: now},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+id.String(), "")

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[httpin.Order](t, rec)
	assert.Equal(t, "PED-003", got.Number)
	assert.Equal(t, "placed", got.Status)
	assert.True(t, got.Editable)
	assert.True(t, now.Equal(got.ReachedAt["placed"]))
}

func TestServer_GetOrder_InvalidID(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/v1/orders/not-a-uuid", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.getOrder.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_GetOrder_NotFound(t *testing.T) {
	f := newFixture()
	id := kernel.NewUUID()
	f.getOrder.On("Handle", mock.Anything, mock.Anything).
		Return(queries.GetOrderQueryResponse{}, errs.NewObjectNotFoundError("order", id))

	rec := f.do(http.MethodGet, "/api/v1/orders/"+id.String(), "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_GetOrderHistory(t *testing.T) {
	f := newFixture()
	id := kernel.NewUUID()
	f.listHistory.On("Handle", mock.Anything, mock.Anything).Return([]queries.ListOrderHistoryQueryResponse{
		{
			ID:           kernel.NewUUID(),
			StatusBefore: order.Placed,
			StatusAfter:  order.Confirmed,
			Actor:        order.NewSellerActor("Lucia"),
			Note:         "stock reserved",
			Metadata:     map[string]any{"manual_change": true},
			CreatedAt:    now,
		},
	}, nil)

	rec := f.do(http.MethodGet, "/api/v1/orders/"+id.String()+"/history", "")

	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]httpin.HistoryEntry](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "placed", entries[0].StatusBefore)
	assert.Equal(t, "confirmed", entries[0].StatusAfter)
	assert.Equal(t, "seller", entries[0].ActorRole)
	assert.Equal(t, "Lucia", entries[0].ActorName)
	assert.Equal(t, true, entries[0].Metadata["manual_change"])
}

func TestServer_ChangeOrderStatus(t *testing.T) {
	f := newFixture()
	o := newOrder(t)
	require.NoError(t, o.ChangeStatus(order.Confirmed, "", now))
	f.changeStatus.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
		return cmd.Status() == order.Confirmed && cmd.Actor().Name == "Lucia"
	})).Return(commands.LifecycleResult{Order: o, NotificationQueued: true}, nil)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/status", `{"status":"confirmed","actor":"Lucia"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[httpin.LifecycleResponse](t, rec)
	assert.True(t, got.NotificationQueued)
	assert.Equal(t, "confirmed", got.Order.Status)
	assert.Contains(t, got.Order.ReachedAt, "confirmed")
}

func TestServer_ChangeOrderStatus_UnknownStatus(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status":"lost"}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	f.changeStatus.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
}

func TestServer_ChangeOrderStatus_RejectedTransition(t *testing.T) {
	f := newFixture()
	rejected := errs.NewValueIsInvalidErrorWithCause("status", services.ErrInvalidTransition)
	f.changeStatus.On("Handle", mock.Anything, mock.Anything).Return(commands.LifecycleResult{}, rejected)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status":"shipped"}`)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[httpin.Error](t, rec).Message, services.ErrInvalidTransition.Error())
}

func TestServer_ChangeOrderStatus_Conflict(t *testing.T) {
	f := newFixture()
	f.changeStatus.On("Handle", mock.Anything, mock.Anything).
		Return(commands.LifecycleResult{}, errs.NewConflictError("order", "PED-001"))

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status":"confirmed"}`)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestServer_ChangeOrderStatus_InternalErrorIsMasked(t *testing.T) {
	f := newFixture()
	f.changeStatus.On("Handle", mock.Anything, mock.Anything).
		Return(commands.LifecycleResult{}, errors.New("connection reset by peer"))

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/status", `{"status":"confirmed"}`)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, http.StatusText(http.StatusInternalServerError), decode[httpin.Error](t, rec).Message)
}

func TestServer_AttachPaymentProof(t *testing.T) {
	f := newFixture()
	o := newOrder(t)
	require.NoError(t, o.ChangeStatus(order.Confirmed, "", now))
	require.NoError(t, o.AttachPaymentProof("voucher-123.jpg"))
	f.attachProof.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.AttachPaymentProofCommand) bool {
		return cmd.Reference() == "voucher-123.jpg"
	})).Return(o, nil)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/payment-proof",
		`{"payment_proof_ref":"voucher-123.jpg"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "voucher-123.jpg", decode[httpin.Order](t, rec).PaymentProofRef)
}

func TestServer_AttachPaymentProof_MissingReference(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/payment-proof", `{}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_ValidatePayment(t *testing.T) {
	f := newFixture()
	o := newOrder(t)
	f.validate.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ValidatePaymentCommand) bool {
		return !cmd.Approved() && cmd.RejectionReason() == "amount does not match"
	})).Return(commands.LifecycleResult{Order: o, NotificationQueued: false}, nil)

	rec := f.do(http.MethodPost, "/api/v1/orders/"+o.ID().String()+"/payment-validation",
		`{"approved":false,"rejection_reason":"amount does not match"}`)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[httpin.LifecycleResponse](t, rec).NotificationQueued)
}

func TestServer_ValidatePayment_PreconditionFailed(t *testing.T) {
	f := newFixture()
	f.validate.On("Handle", mock.Anything, mock.Anything).
		Return(commands.LifecycleResult{}, errs.NewValueIsInvalidErrorWithCause("payment proof", order.ErrPaymentProofMissing))

	rec := f.do(http.MethodPost, "/api/v1/orders/"+kernel.NewUUID().String()+"/payment-validation",
		`{"approved":true}`)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_DrainNotifications(t *testing.T) {
	f := newFixture()
	f.drain.On("Handle", mock.Anything, mock.Anything).
		Return(commands.DrainResult{Attempted: 3, Succeeded: 2, Failed: 1}, nil)

	rec := f.do(http.MethodPost, "/api/v1/notifications/drain", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, httpin.DrainSummary{Attempted: 3, Succeeded: 2, Failed: 1}, decode[httpin.DrainSummary](t, rec))
}

func TestServer_DrainNotifications_InProgress(t *testing.T) {
	f := newFixture()
	f.drain.On("Handle", mock.Anything, mock.Anything).
		Return(commands.DrainResult{}, commands.ErrDrainInProgress)

	rec := f.do(http.MethodPost, "/api/v1/notifications/drain", "")

	assert.Equal(t, http.StatusConflict, rec.Code)
}
