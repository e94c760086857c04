package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/trovekart/storefront/internal/backend"
	"github.com/trovekart/storefront/internal/domain"
	apperrors "github.com/trovekart/storefront/pkg/errors"
)

type mockCheckoutRepository struct {
	mock.Mock
}

func (m *mockCheckoutRepository) Get(ctx context.Context, userID string) (*domain.CheckoutState, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CheckoutState), args.Error(1)
}

func (m *mockCheckoutRepository) Save(ctx context.Context, state *domain.CheckoutState) error {
	args := m.Called(ctx, state)
	return args.Error(0)
}

func (m *mockCheckoutRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// --- Test Helpers ---

func newTestCheckoutService(repo *mockCheckoutRepository, cartRepo *mockCartRepository, catalog *mockCatalog) *CheckoutService {
	return NewCheckoutService(repo, cartRepo, catalog, testCalculator(), newTestLogger())
}

func testAddress() domain.Address {
	return domain.Address{
		Name:        "Priya Sharma",
		Email:       "priya@example.com",
		Phone:       "+919876543210",
		AddressLine: "42 MG Road",
		City:        "Bengaluru",
		PostalCode:  "560001",
		Country:     "India",
	}
}

func newCheckoutState(userID string) *domain.CheckoutState {
	now := time.Now().UTC()
	return &domain.CheckoutState{
		SchemaVersion: domain.CheckoutSchemaVersion,
		UserID:        userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func expectNoState(repo *mockCheckoutRepository, ctx context.Context, userID string) {
	repo.On("Get", ctx, userID).Return(nil, apperrors.NotFound("checkout state", userID))
}

// --- Tests ---

func TestGetSession_CartItems(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	expectNoState(repo, ctx, "user-1")
	cartRepo.On("Get", ctx, "user-1").Return(newCartWithItem("user-1"), nil)

	session, err := svc.GetSession(ctx, "user-1")

	require.NoError(t, err)
	assert.Equal(t, domain.StepShipping, session.Step)
	assert.False(t, session.BuyNow)
	require.Len(t, session.OrderItems, 1)
	assert.Equal(t, "prod-1", session.OrderItems[0].ProductID)
	assert.Equal(t, int64(123_000), session.Totals.GrandTotal)

	repo.AssertExpectations(t)
	cartRepo.AssertExpectations(t)
}

func TestGetSession_EmptyRedirectsToCatalog(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	expectNoState(repo, ctx, "user-1")
	cartRepo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

	session, err := svc.GetSession(ctx, "user-1")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrPrerequisiteMissing)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.RedirectCatalog, appErr.Fields["redirect_to"])
}

func TestStartBuyNow_TakesPrecedenceOverCart(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	other := &backend.Product{ID: "prod-2", Name: "Mechanical Keyboard", Price: 350_000, Stock: 5}
	catalog.On("GetProduct", ctx, "prod-2").Return(other, nil)
	expectNoState(repo, ctx, "user-1")
	repo.On("Save", ctx, mock.AnythingOfType("*domain.CheckoutState")).Return(nil)

	session, err := svc.StartBuyNow(ctx, "user-1", "prod-2", 1)

	require.NoError(t, err)
	assert.True(t, session.BuyNow)
	require.Len(t, session.OrderItems, 1)
	assert.Equal(t, "prod-2", session.OrderItems[0].ProductID)
	// Above the free shipping threshold: no fee.
	assert.Equal(t, int64(0), session.Totals.ShippingFee)
	assert.Equal(t, int64(413_000), session.Totals.GrandTotal)

	// The cart is never consulted when a buy-now item is staged.
	cartRepo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)

	repo.AssertExpectations(t)
	catalog.AssertExpectations(t)
}

func TestStartBuyNow_StockExceeded(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	low := testProduct()
	low.Stock = 1
	catalog.On("GetProduct", ctx, "prod-1").Return(low, nil)

	session, err := svc.StartBuyNow(ctx, "user-1", "prod-1", 3)

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrStockExceeded)

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitShipping_AdvancesToPayment(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	expectNoState(repo, ctx, "user-1")
	cartRepo.On("Get", ctx, "user-1").Return(newCartWithItem("user-1"), nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.CheckoutState")).Return(nil)

	session, err := svc.SubmitShipping(ctx, "user-1", testAddress())

	require.NoError(t, err)
	assert.Equal(t, domain.StepPayment, session.Step)
	require.NotNil(t, session.ShippingAddress)
	assert.Equal(t, "Priya Sharma", session.ShippingAddress.Name)

	repo.AssertExpectations(t)
}

func TestSubmitShipping_NothingStaged(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	expectNoState(repo, ctx, "user-1")
	cartRepo.On("Get", ctx, "user-1").Return(nil, apperrors.NotFound("cart", "user-1"))

	session, err := svc.SubmitShipping(ctx, "user-1", testAddress())

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrPrerequisiteMissing)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domain.RedirectCatalog, appErr.Fields["redirect_to"])

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitShipping_IncompleteAddress(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)

	addr := testAddress()
	addr.PostalCode = ""

	session, err := svc.SubmitShipping(context.Background(), "user-1", addr)

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestSubmitPayment_AdvancesToPlaceOrder(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	addr := testAddress()
	state := newCheckoutState("user-1")
	state.ShippingAddress = &addr

	repo.On("Get", ctx, "user-1").Return(state, nil)
	cartRepo.On("Get", ctx, "user-1").Return(newCartWithItem("user-1"), nil)
	repo.On("Save", ctx, mock.AnythingOfType("*domain.CheckoutState")).Return(nil)

	session, err := svc.SubmitPayment(ctx, "user-1", domain.PaymentMethodCashOnDelivery)

	require.NoError(t, err)
	assert.Equal(t, domain.StepPlaceOrder, session.Step)
	assert.Equal(t, domain.PaymentMethodCashOnDelivery, session.PaymentMethod)

	repo.AssertExpectations(t)
}

func TestSubmitPayment_WithoutAddressRedirectsToShipping(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	repo.On("Get", ctx, "user-1").Return(newCheckoutState("user-1"), nil)
	cartRepo.On("Get", ctx, "user-1").Return(newCartWithItem("user-1"), nil)

	session, err := svc.SubmitPayment(ctx, "user-1", domain.PaymentMethodOnlineCard)

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrPrerequisiteMissing)

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, string(domain.StepShipping), appErr.Fields["redirect_to"])

	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitPayment_UnknownMethod(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)

	session, err := svc.SubmitPayment(context.Background(), "user-1", "crypto")

	assert.Nil(t, session)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestClearBuyNow_KeepsAddressAndMethod(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	addr := testAddress()
	state := newCheckoutState("user-1")
	state.BuyNowItem = &domain.LineItem{ProductID: "prod-1", UnitPrice: 50_000, Quantity: 1}
	state.ShippingAddress = &addr
	state.PaymentMethod = domain.PaymentMethodCashOnDelivery

	repo.On("Get", ctx, "user-1").Return(state, nil)
	repo.On("Save", ctx, mock.MatchedBy(func(s *domain.CheckoutState) bool {
		return s.BuyNowItem == nil && s.ShippingAddress != nil && s.PaymentMethod == domain.PaymentMethodCashOnDelivery
	})).Return(nil)

	err := svc.ClearBuyNow(ctx, "user-1")

	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestClearBuyNow_NoStateIsNoOp(t *testing.T) {
	repo := new(mockCheckoutRepository)
	cartRepo := new(mockCartRepository)
	catalog := new(mockCatalog)
	svc := newTestCheckoutService(repo, cartRepo, catalog)
	ctx := context.Background()

	expectNoState(repo, ctx, "user-1")

	err := svc.ClearBuyNow(ctx, "user-1")

	require.NoError(t, err)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}
