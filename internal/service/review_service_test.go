package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
)

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) Create(ctx context.Context, review *models.Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *mockReviewRepo) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Review, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Review), args.Error(1)
}

func (m *mockReviewRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	args := m.Called(ctx, sellerID, limit, offset)
	return args.Get(0).([]models.Review), args.Error(1)
}

type mockOrderRepoForReview struct {
	mock.Mock
}

func (m *mockOrderRepoForReview) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func TestReviewService_Create_Success(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(
		&models.Order{ID: orderID, BuyerID: buyerID, SellerID: sellerID, Status: "complete"}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).Return(nil)

	review, err := svc.Create(ctx, buyerID, orderID, ReviewInput{
		Rating: 5,
		Text:   "  Отличное выступление, гости в восторге  ",
	})
	assert.NoError(t, err)
	assert.Equal(t, sellerID, review.SellerID)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Отличное выступление, гости в восторге", review.Text)
	repo.AssertExpectations(t)
}

func TestReviewService_Create_OrderNotComplete(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	buyerID := uuid.New()
	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(
		&models.Order{ID: orderID, BuyerID: buyerID, Status: "delivered"}, nil)

	_, err := svc.Create(ctx, buyerID, orderID, ReviewInput{Rating: 4, Text: "рано"})
	assertAppCode(t, err, apperror.ErrCodeInvalidState)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestReviewService_Create_AlreadyReviewed(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	buyerID := uuid.New()
	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(
		&models.Order{ID: orderID, BuyerID: buyerID, Status: "complete"}, nil)
	repo.On("Create", ctx, mock.AnythingOfType("*models.Review")).
		Return(repository.ErrReviewExists)

	_, err := svc.Create(ctx, buyerID, orderID, ReviewInput{Rating: 3, Text: "повтор"})
	assertAppCode(t, err, apperror.ErrCodeAlreadyReviewed)
}

func TestReviewService_Create_InvalidRating(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)

	for _, rating := range []int{0, 6, -1} {
		_, err := svc.Create(context.Background(), uuid.New(), uuid.New(),
			ReviewInput{Rating: rating, Text: "текст"})
		assertAppCode(t, err, apperror.ErrCodeValidation)
	}
}

func TestReviewService_Create_NotBuyer(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(
		&models.Order{ID: orderID, BuyerID: uuid.New(), SellerID: uuid.New(), Status: "complete"}, nil)

	_, err := svc.Create(ctx, uuid.New(), orderID, ReviewInput{Rating: 5, Text: "чужой заказ"})
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestReviewService_GetByOrder_Parties(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	buyerID := uuid.New()
	sellerID := uuid.New()
	orderID := uuid.New()
	orders.On("GetByID", ctx, orderID).Return(
		&models.Order{ID: orderID, BuyerID: buyerID, SellerID: sellerID, Status: "complete"}, nil)
	repo.On("GetByOrderID", ctx, orderID).Return(
		&models.Review{OrderID: orderID, Rating: 5}, nil)

	_, err := svc.GetByOrder(ctx, sellerID, orderID)
	assert.NoError(t, err)

	_, err = svc.GetByOrder(ctx, uuid.New(), orderID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestReviewService_ListBySeller_NormalizesLimit(t *testing.T) {
	repo := new(mockReviewRepo)
	orders := new(mockOrderRepoForReview)
	svc := NewReviewService(repo, orders)
	ctx := context.Background()

	sellerID := uuid.New()
	repo.On("ListBySeller", ctx, sellerID, 20, 0).Return([]models.Review{}, nil)
	repo.On("ListBySeller", ctx, sellerID, 100, 0).Return([]models.Review{}, nil)

	_, err := svc.ListBySeller(ctx, sellerID, 0, 0)
	assert.NoError(t, err)
	_, err = svc.ListBySeller(ctx, sellerID, 500, 0)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
