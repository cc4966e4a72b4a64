package queries_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "storefront/internal/adapters/out/postgres"
	"storefront/internal/adapters/out/postgres/orderrepo"
	"storefront/internal/core/application/usecases/queries"
	"storefront/internal/core/domain/model/kernel"
	"storefront/internal/core/domain/model/order"
	"storefront/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var placedAt = time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)

type QueriesIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	orders    *orderrepo.GormOrderRepository
	history   *orderrepo.GormHistoryRepository
}

func (suite *QueriesIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(postgres_adapter.AutoMigrate(db))
	suite.orders = orderrepo.NewGormOrderRepository(db)
	suite.history = orderrepo.NewGormHistoryRepository(db)
}

func (suite *QueriesIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *QueriesIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders, order_history").Error)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_ReturnsStoredOrder() {
	o := suite.addOrder("PED-0001", order.Confirmed)
	suite.Require().NoError(o.AttachPaymentProof("comprobantes/pedido_1.png"))
	suite.Require().NoError(o.RejectPayment("amount does not match"))
	suite.Require().NoError(suite.orders.Update(context.Background(), o))

	query, err := queries.NewGetOrderQuery(o.ID())
	suite.Require().NoError(err)

	resp, err := queries.NewGetOrderQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.True(resp.ID.IsEqual(o.ID()))
	suite.Equal("PED-0001", resp.Number)
	suite.Equal(order.Confirmed, resp.Status)
	suite.Equal(order.PaymentRejected, resp.PaymentStatus)
	suite.Equal("amount does not match", resp.PaymentRejectionReason)
	suite.Empty(resp.PaymentProofRef)
	suite.True(resp.Editable)
	suite.Equal(2, resp.Version)
	suite.Equal(map[order.Status]time.Time{
		order.Placed:    placedAt,
		order.Confirmed: placedAt.Add(time.Hour),
	}, resp.ReachedAt)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_Missing_ReturnsNotFound() {
	query, _ := queries.NewGetOrderQuery(kernel.NewUUID())

	_, err := queries.NewGetOrderQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestGetOrder_InvalidQuery_ReturnsError() {
	_, err := queries.NewGetOrderQueryHandler(suite.db).Handle(context.Background(), queries.GetOrderQuery{})

	suite.Require().ErrorIs(err, queries.ErrGetOrderQueryIsNotConstructed)
}

func (suite *QueriesIntegrationTestSuite) TestListOrderHistory_OldestFirst() {
	ctx := context.Background()
	o := suite.addOrder("PED-0001", order.Placed)
	actor := order.NewSellerActor("Lucia")

	second, _ := order.NewHistoryEntry(o.ID(), order.Confirmed, order.Cancelled, actor, "customer asked",
		map[string]any{"manual_change": true}, placedAt.Add(2*time.Hour))
	first, _ := order.NewHistoryEntry(o.ID(), order.Placed, order.Confirmed, actor, "status changed to confirmed",
		map[string]any{"manual_change": true}, placedAt.Add(time.Hour))
	suite.Require().NoError(suite.history.Add(ctx, second))
	suite.Require().NoError(suite.history.Add(ctx, first))

	query, _ := queries.NewListOrderHistoryQuery(o.ID())
	entries, err := queries.NewListOrderHistoryQueryHandler(suite.db).Handle(ctx, query)

	suite.Require().NoError(err)
	suite.Require().Len(entries, 2)
	suite.True(entries[0].ID.IsEqual(first.ID()))
	suite.Equal(order.Placed, entries[0].StatusBefore)
	suite.Equal(order.Confirmed, entries[0].StatusAfter)
	suite.Equal(actor, entries[0].Actor)
	suite.Equal(map[string]any{"manual_change": true}, entries[0].Metadata)
	suite.Equal(placedAt.Add(time.Hour), entries[0].CreatedAt)
	suite.Equal("customer asked", entries[1].Note)
}

func (suite *QueriesIntegrationTestSuite) TestListOrderHistory_NoEntries_ReturnsEmptySlice() {
	o := suite.addOrder("PED-0001", order.Placed)
	query, _ := queries.NewListOrderHistoryQuery(o.ID())

	entries, err := queries.NewListOrderHistoryQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().NoError(err)
	suite.NotNil(entries)
	suite.Empty(entries)
}

func (suite *QueriesIntegrationTestSuite) TestListOrderHistory_UnknownOrder_ReturnsNotFound() {
	query, _ := queries.NewListOrderHistoryQuery(kernel.NewUUID())

	_, err := queries.NewListOrderHistoryQueryHandler(suite.db).Handle(context.Background(), query)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *QueriesIntegrationTestSuite) TestListActiveOrders_ExcludesTerminalOrders() {
	placed := suite.addOrder("PED-0001", order.Placed)
	review := suite.addOrder("PED-0002", order.Confirmed)
	suite.Require().NoError(review.AttachPaymentProof("proof.png"))
	suite.Require().NoError(suite.orders.Update(context.Background(), review))
	suite.addOrder("PED-0003", order.Delivered)
	suite.addOrder("PED-0004", order.Cancelled)

	result, err := queries.NewListActiveOrdersQueryHandler(suite.db).
		Handle(context.Background(), queries.NewListActiveOrdersQuery())

	suite.Require().NoError(err)
	suite.Require().Len(result, 2)
	byID := make(map[kernel.UUID]queries.ListActiveOrdersQueryResponse)
	for _, r := range result {
		byID[r.ID] = r
	}
	suite.False(byID[placed.ID()].AwaitingReview)
	suite.True(byID[review.ID()].AwaitingReview)
	suite.Equal("PED-0002", byID[review.ID()].Number)
}

func (suite *QueriesIntegrationTestSuite) TestListActiveOrders_ContextCancellation_ReturnsError() {
	suite.addOrder("PED-0001", order.Placed)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := queries.NewListActiveOrdersQueryHandler(suite.db).Handle(ctx, queries.NewListActiveOrdersQuery())

	suite.Require().Error(err)
	suite.Nil(result)
}

// addOrder stores an order that walked the forward chain up to status,
// one hour per step. Cancelled orders are cancelled straight from placed.
func (suite *QueriesIntegrationTestSuite) addOrder(number string, status order.Status) *order.Order {
	o, err := order.NewOrder(kernel.NewUUID(), number, "+51 987 654 321", placedAt)
	suite.Require().NoError(err)

	at := placedAt
	if status == order.Cancelled {
		suite.Require().NoError(o.ChangeStatus(order.Cancelled, "", at.Add(time.Hour)))
	}
	for o.Status() != status {
		next, ok := o.Status().Next()
		suite.Require().True(ok)
		at = at.Add(time.Hour)
		suite.Require().NoError(o.ChangeStatus(next, "", at))
	}

	suite.Require().NoError(suite.orders.Add(context.Background(), o))
	return o
}

func TestQueriesIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(QueriesIntegrationTestSuite))
}
