package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application/services/testhelpers"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/infrastructure/persistence/postgres"
	dbhelpers "github.com/DanielPopoola/payment-intake/internal/infrastructure/persistence/postgres/testhelpers"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type PaymentRepositoryTestSuite struct {
	suite.Suite
	testDB      *dbhelpers.TestDatabase
	paymentRepo *postgres.PaymentRepository
}

func TestPaymentRepositorySuite(t *testing.T) {
	suite.Run(t, new(PaymentRepositoryTestSuite))
}

func (suite *PaymentRepositoryTestSuite) SetupSuite() {
	suite.testDB = dbhelpers.SetupTestDatabase(suite.T())
	suite.paymentRepo = postgres.NewPaymentRepository(suite.testDB.DB)
}

func (suite *PaymentRepositoryTestSuite) TearDownSuite() {
	if suite.testDB != nil {
		suite.testDB.Cleanup(suite.T())
	}
}

func (suite *PaymentRepositoryTestSuite) TearDownTest() {
	suite.testDB.CleanTables(suite.T())
}

func newPayment(t *testing.T, req domain.PaymentRequest, at time.Time) *domain.Payment {
	t.Helper()
	p, err := domain.NewPayment(uuid.New().String(), req, "stripe", at)
	require.NoError(t, err)
	return p
}

func (suite *PaymentRepositoryTestSuite) Test_CreateAndFind() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC().Truncate(time.Microsecond)
	req := testhelpers.DefaultCardRequest()
	req.Amount = decimal.RequireFromString("1234.5678")
	payment := newPayment(t, req, now)

	require.NoError(t, suite.paymentRepo.Create(ctx, payment))
	assert.Equal(t, 1, payment.Version)

	found, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.Reference, found.Reference)
	assert.True(t, payment.Amount.Equal(found.Amount))
	assert.Equal(t, "USD", found.Currency)
	assert.Equal(t, domain.StatusPending, found.Status)
	assert.Equal(t, domain.MethodCreditCard, found.Method)
	assert.Equal(t, now, found.CreatedAt)
	assert.Nil(t, found.GatewayTransactionID)

	byRef, err := suite.paymentRepo.FindByReference(ctx, payment.Reference)
	require.NoError(t, err)
	assert.Equal(t, payment.ID, byRef.ID)
}

func (suite *PaymentRepositoryTestSuite) Test_Create_DuplicateReference() {
	ctx := context.Background()
	t := suite.T()
	req := testhelpers.DefaultCardRequest()

	require.NoError(t, suite.paymentRepo.Create(ctx, newPayment(t, req, time.Now())))
	err := suite.paymentRepo.Create(ctx, newPayment(t, req, time.Now()))

	assert.ErrorIs(t, err, domain.ErrDuplicateReference)
}

func (suite *PaymentRepositoryTestSuite) Test_FindByID_NotFound() {
	ctx := context.Background()
	t := suite.T()

	_, err := suite.paymentRepo.FindByID(ctx, uuid.New().String())
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	_, err = suite.paymentRepo.FindByID(ctx, "not-a-uuid")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)
}

func (suite *PaymentRepositoryTestSuite) Test_Update_OptimisticLock() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC()
	payment := newPayment(t, testhelpers.DefaultCardRequest(), now)
	require.NoError(t, suite.paymentRepo.Create(ctx, payment))

	stale, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)

	require.NoError(t, payment.MarkProcessing(now))
	require.NoError(t, payment.Complete("pi_1", now))
	require.NoError(t, suite.paymentRepo.Update(ctx, payment))
	assert.Equal(t, 2, payment.Version)

	require.NoError(t, stale.Fail("late writer", now))
	err = suite.paymentRepo.Update(ctx, stale)
	assert.ErrorIs(t, err, domain.ErrConcurrentModification)

	found, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, found.Status)
	assert.Equal(t, "pi_1", *found.GatewayTransactionID)
	assert.NotNil(t, found.CompletedAt)
}

func (suite *PaymentRepositoryTestSuite) Test_Update_RedirectAndRefund() {
	ctx := context.Background()
	t := suite.T()
	now := time.Now().UTC()
	payment := newPayment(t, testhelpers.DefaultPayPalRequest(), now)
	require.NoError(t, suite.paymentRepo.Create(ctx, payment))

	require.NoError(t, payment.MarkProcessing(now))
	require.NoError(t, payment.AwaitSettlement("ORDER-R", now))
	payment.SetRedirectURL("https://www.sandbox.paypal.com/checkoutnow?token=ORDER-R")
	require.NoError(t, suite.paymentRepo.Update(ctx, payment))

	found, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	require.NotNil(t, found.RedirectURL)
	assert.Equal(t, "https://www.sandbox.paypal.com/checkoutnow?token=ORDER-R", *found.RedirectURL)

	require.NoError(t, found.Complete("ORDER-R", now))
	require.NoError(t, suite.paymentRepo.Update(ctx, found))
	require.NoError(t, found.Refund(now))
	require.NoError(t, suite.paymentRepo.Update(ctx, found))

	refunded, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	assert.Equal(t, 4, refunded.Version)

	byStatus, err := suite.paymentRepo.FindByStatus(ctx, domain.StatusRefunded, 10, 0)
	require.NoError(t, err)
	require.Len(t, byStatus, 1)
	assert.Equal(t, payment.ID, byStatus[0].ID)
}

func (suite *PaymentRepositoryTestSuite) Test_ListQueries() {
	ctx := context.Background()
	t := suite.T()
	base := time.Now().UTC().Add(-time.Hour)

	var ids []string
	for i := 0; i < 3; i++ {
		req := testhelpers.DefaultCardRequest()
		req.CustomerID = "cust-list"
		p := newPayment(t, req, base.Add(time.Duration(i)*time.Minute))
		require.NoError(t, suite.paymentRepo.Create(ctx, p))
		ids = append(ids, p.ID)
	}

	byCustomer, err := suite.paymentRepo.FindByCustomerID(ctx, "cust-list", 2, 0)
	require.NoError(t, err)
	require.Len(t, byCustomer, 2)
	assert.Equal(t, ids[2], byCustomer[0].ID)

	byMerchant, err := suite.paymentRepo.FindByMerchantID(ctx, "merchant-1", 10, 1)
	require.NoError(t, err)
	assert.Len(t, byMerchant, 2)

	byStatus, err := suite.paymentRepo.FindByStatus(ctx, domain.StatusPending, 10, 0)
	require.NoError(t, err)
	assert.Len(t, byStatus, 3)
}

func (suite *PaymentRepositoryTestSuite) Test_FindStalePending() {
	ctx := context.Background()
	t := suite.T()
	old := time.Now().UTC().Add(-time.Hour)

	stale := testhelpers.CreatePendingPayment(t, "paypal", "ORDER-1", old)
	require.NoError(t, suite.paymentRepo.Create(ctx, stale))

	fresh := testhelpers.CreatePendingPayment(t, "paypal", "ORDER-2", time.Now().UTC())
	require.NoError(t, suite.paymentRepo.Create(ctx, fresh))

	// PENDING without a transaction id was never accepted by a processor
	untracked := newPayment(t, testhelpers.DefaultPayPalRequest(), old)
	require.NoError(t, suite.paymentRepo.Create(ctx, untracked))

	found, err := suite.paymentRepo.FindStalePending(ctx, time.Now().UTC().Add(-5*time.Minute), 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, stale.ID, found[0].ID)
}
