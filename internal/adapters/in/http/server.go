package http

import (
	"errors"
	"log/slog"
	"net/http"

	"storefront/internal/core/application/usecases/commands"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the order lifecycle and the notification queue over HTTP.
// It translates requests into commands and queries and maps their errors to
// status codes.
type Server struct {
	handlers Handlers
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		logger:   logger.With("component", "http_server"),
	}
}

// Register mounts the API, the health check and the Prometheus endpoint on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.POST("/orders", s.CreateOrder)
	api.GET("/orders", s.GetActiveOrders)
	api.GET("/orders/:id", s.GetOrder)
	api.GET("/orders/:id/history", s.GetOrderHistory)
	api.POST("/orders/:id/status", s.ChangeOrderStatus)
	api.POST("/orders/:id/payment-proof", s.AttachPaymentProof)
	api.POST("/orders/:id/payment-validation", s.ValidatePayment)
	api.POST("/notifications/drain", s.DrainNotifications)
}

// CreateOrder handles POST /api/v1/orders - creates a new placed order.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body NewOrder
	if err := ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(orderID, body.Number, body.CustomerContact)
	if err != nil {
		return s.fail(ctx, err)
	}

	if err = s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd); err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, CreatedOrder{ID: orderID.String()})
}

// GetActiveOrders handles GET /api/v1/orders - lists orders that are not delivered or cancelled.
func (s *Server) GetActiveOrders(ctx echo.Context) error {
	orders, err := s.handlers.ListActiveOrders.Handle(ctx.Request().Context(), queries.NewListActiveOrdersQuery())
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]ActiveOrder, len(orders))
	for i, o := range orders {
		response[i] = ActiveOrder{
			ID:             o.ID.String(),
			Number:         o.Number,
			Status:         o.Status.String(),
			PaymentStatus:  o.PaymentStatus.String(),
			AwaitingReview: o.AwaitingReview,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewGetOrderQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromQuery(o))
}

// GetOrderHistory handles GET /api/v1/orders/:id/history - the audit trail, oldest first.
func (s *Server) GetOrderHistory(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}

	query, err := queries.NewListOrderHistoryQuery(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	entries, err := s.handlers.ListOrderHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}

	response := make([]HistoryEntry, len(entries))
	for i, e := range entries {
		response[i] = HistoryEntry{
			ID:           e.ID.String(),
			StatusBefore: e.StatusBefore.String(),
			StatusAfter:  e.StatusAfter.String(),
			ActorRole:    string(e.Actor.Role),
			ActorName:    e.Actor.Name,
			Note:         e.Note,
			Metadata:     e.Metadata,
			CreatedAt:    e.CreatedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// ChangeOrderStatus handles POST /api/v1/orders/:id/status.
// The response carries the updated order and whether a notification was queued.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}

	var body StatusChange
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, body.Status, body.Note, body.Actor)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.ChangeOrderStatus.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, lifecycleResponse(result))
}

// AttachPaymentProof handles POST /api/v1/orders/:id/payment-proof.
func (s *Server) AttachPaymentProof(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}

	var body PaymentProof
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewAttachPaymentProofCommand(orderID, body.Reference)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.AttachPaymentProof.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, orderFromAggregate(o))
}

// ValidatePayment handles POST /api/v1/orders/:id/payment-validation.
func (s *Server) ValidatePayment(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return s.fail(ctx, err)
	}

	var body PaymentValidation
	if err = ctx.Bind(&body); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewValidatePaymentCommand(orderID, body.Approved, body.RejectionReason, body.ValidatedBy)
	if err != nil {
		return s.fail(ctx, err)
	}

	result, err := s.handlers.ValidatePayment.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, lifecycleResponse(result))
}

// DrainNotifications handles POST /api/v1/notifications/drain - runs one dispatch pass.
func (s *Server) DrainNotifications(ctx echo.Context) error {
	result, err := s.handlers.DrainNotifications.Handle(
		ctx.Request().Context(), commands.NewDrainNotificationQueueCommand(),
	)
	if err != nil {
		return s.fail(ctx, err)
	}

	return ctx.JSON(http.StatusOK, DrainSummary{
		Attempted: result.Attempted,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Skipped:   result.Skipped,
	})
}

func (s *Server) fail(ctx echo.Context, err error) error {
	code := statusCode(err)
	message := err.Error()
	if code == http.StatusInternalServerError {
		s.logger.ErrorContext(ctx.Request().Context(), "request failed",
			"method", ctx.Request().Method, "path", ctx.Path(), "error", err)
		message = http.StatusText(code)
	}

	return ctx.JSON(code, Error{Code: code, Message: message})
}

func statusCode(err error) int {
	switch {
	case errs.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrConflict), errors.Is(err, commands.ErrDrainInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, Error{
		Code:    http.StatusBadRequest,
		Message: message,
	})
}
