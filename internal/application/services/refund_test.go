package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/DanielPopoola/payment-intake/internal/application"
	"github.com/DanielPopoola/payment-intake/internal/application/mocks"
	"github.com/DanielPopoola/payment-intake/internal/application/services"
	"github.com/DanielPopoola/payment-intake/internal/application/services/testhelpers"
	"github.com/DanielPopoola/payment-intake/internal/domain"
	"github.com/DanielPopoola/payment-intake/internal/infrastructure/gateway"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RefundServiceTestSuite struct {
	suite.Suite
	paymentRepo *mocks.MockPaymentRepository
	stripe      *mocks.MockProcessor
	service     *services.RefundService
}

func TestRefundServiceSuite(t *testing.T) {
	suite.Run(t, new(RefundServiceTestSuite))
}

func (suite *RefundServiceTestSuite) SetupTest() {
	suite.paymentRepo = mocks.NewMockPaymentRepository()
	suite.stripe = mocks.NewMockProcessor(gateway.ProviderStripe, domain.MethodCreditCard, domain.MethodDebitCard)

	suite.service = services.NewRefundService(
		gateway.NewRouter(suite.stripe),
		suite.paymentRepo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		func() time.Time { return fixedNow },
	)
}

func (suite *RefundServiceTestSuite) TearDownTest() {
	suite.stripe.AssertExpectations(suite.T())
}

// ============================================================================
// HAPPY PATH TESTS
// ============================================================================

func (suite *RefundServiceTestSuite) Test_Refund_Success() {
	ctx := context.Background()
	t := suite.T()
	payment := testhelpers.CreateCompletedPayment(t, gateway.ProviderStripe, "pi_paid", fixedNow.Add(-24*time.Hour))
	suite.paymentRepo.Seed(payment)

	amount := domain.Money{Amount: decimal.RequireFromString("100.00"), Currency: "USD"}
	suite.stripe.On("Refund", mock.Anything, "pi_paid", mock.MatchedBy(func(m domain.Money) bool {
		return m.Amount.Equal(amount.Amount) && m.Currency == amount.Currency
	}), "damaged item").
		Return(&application.ProcessorResult{TransactionID: "re_1", Status: domain.StatusRefunded}, nil).
		Once()

	refunded, err := suite.service.Refund(ctx, payment.ID, "damaged item")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
	assert.Equal(t, "pi_paid", *refunded.GatewayTransactionID)
	assert.Equal(t, fixedNow, refunded.UpdatedAt)

	saved, err := suite.paymentRepo.FindByID(ctx, payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, saved.Status)
}

// ============================================================================
// EDGE CASE TESTS
// ============================================================================

func (suite *RefundServiceTestSuite) Test_Refund_RequiresCompletedPayment() {
	t := suite.T()
	payment := testhelpers.CreatePendingPayment(t, gateway.ProviderStripe, "pi_pending", fixedNow)
	suite.paymentRepo.Seed(payment)

	_, err := suite.service.Refund(context.Background(), payment.ID, "")

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeInvalidState, svcErr.Code)
	assert.Equal(t, http.StatusConflict, svcErr.HTTPStatus)
	suite.stripe.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *RefundServiceTestSuite) Test_Refund_ProcessorDeclines() {
	t := suite.T()
	payment := testhelpers.CreateCompletedPayment(t, gateway.ProviderStripe, "pi_paid", fixedNow)
	suite.paymentRepo.Seed(payment)

	suite.stripe.On("Refund", mock.Anything, "pi_paid", mock.Anything, "").
		Return(&application.ProcessorResult{TransactionID: "re_2", Status: domain.StatusFailed, FailureReason: "charge_for_pending_refund_disputed"}, nil).
		Once()

	_, err := suite.service.Refund(context.Background(), payment.ID, "")

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeGatewayFailure, svcErr.Code)
	assert.Contains(t, err.Error(), "charge_for_pending_refund_disputed")

	saved, err := suite.paymentRepo.FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, saved.Status)
}

func (suite *RefundServiceTestSuite) Test_Refund_RecordsEvenIfCallerCancels() {
	t := suite.T()
	ctx, cancel := context.WithCancel(context.Background())
	payment := testhelpers.CreateCompletedPayment(t, gateway.ProviderStripe, "pi_paid", fixedNow)
	suite.paymentRepo.Seed(payment)

	suite.stripe.On("Refund", mock.Anything, "pi_paid", mock.Anything, "").
		Run(func(mock.Arguments) { cancel() }).
		Return(&application.ProcessorResult{TransactionID: "re_3", Status: domain.StatusRefunded}, nil).
		Once()

	refunded, err := suite.service.Refund(ctx, payment.ID, "")

	require.NoError(t, err)
	assert.Equal(t, domain.StatusRefunded, refunded.Status)
}

func (suite *RefundServiceTestSuite) Test_Refund_RepositoryFailure() {
	t := suite.T()
	suite.paymentRepo.FindByIDFn = func(ctx context.Context, id string) (*domain.Payment, error) {
		return nil, errors.New("connection refused")
	}

	_, err := suite.service.Refund(context.Background(), "pay-1", "")

	svcErr, ok := application.IsServiceError(err)
	require.True(t, ok)
	assert.Equal(t, application.ErrCodeInternal, svcErr.Code)
}
