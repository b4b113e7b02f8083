package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
	"github.com/ignatzorin/talent-backend/internal/validation"
)

// ReviewRepository описывает зависимости ReviewService от слоя хранилища.
type ReviewRepository interface {
	Create(ctx context.Context, review *models.Review) error
	GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Review, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Review, error)
}

// OrderRepoForReview — доступ к заказам из сервиса отзывов.
type OrderRepoForReview interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
}

// ReviewService принимает отзывы по завершённым заказам: один на заказ,
// без последующего редактирования.
type ReviewService struct {
	repo   ReviewRepository
	orders OrderRepoForReview
}

func NewReviewService(repo ReviewRepository, orders OrderRepoForReview) *ReviewService {
	return &ReviewService{repo: repo, orders: orders}
}

// ReviewInput содержит оценку и текст отзыва.
type ReviewInput struct {
	Rating int
	Text   string
}

// Create сохраняет отзыв покупателя по завершённому заказу.
func (s *ReviewService) Create(ctx context.Context, buyerID, orderID uuid.UUID, in ReviewInput) (*models.Review, error) {
	var fields []apperror.FieldError
	fields = validation.FieldRating(fields, "rating", in.Rating)
	fields = validation.FieldRequired(fields, "text", in.Text)
	fields = validation.FieldLength(fields, "text", in.Text, 0, validation.MaxReviewTextLength)
	if err := validation.Check(fields); err != nil {
		return nil, err
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != buyerID {
		return nil, apperror.ErrForbidden
	}
	if valueobject.OrderStatus(order.Status) != valueobject.OrderStatusComplete {
		return nil, apperror.New(apperror.ErrCodeInvalidState,
			"отзыв можно оставить только по завершённому заказу")
	}

	review := &models.Review{
		OrderID:  orderID,
		BuyerID:  buyerID,
		SellerID: order.SellerID,
		Rating:   in.Rating,
		Text:     strings.TrimSpace(in.Text),
	}
	if err := s.repo.Create(ctx, review); err != nil {
		if errors.Is(err, repository.ErrReviewExists) {
			return nil, apperror.ErrAlreadyReviewed
		}
		return nil, err
	}
	return review, nil
}

// GetByOrder возвращает отзыв по заказу любой из его сторон.
func (s *ReviewService) GetByOrder(ctx context.Context, userID, orderID uuid.UUID) (*models.Review, error) {
	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.ErrOrderNotFound
		}
		return nil, err
	}
	if order.BuyerID != userID && order.SellerID != userID {
		return nil, apperror.ErrForbidden
	}

	review, err := s.repo.GetByOrderID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrReviewNotFound) {
			return nil, apperror.ErrReviewNotFound
		}
		return nil, err
	}
	return review, nil
}

// ListBySeller возвращает отзывы об исполнителе. Публичная витрина.
func (s *ReviewService) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Review, error) {
	return s.repo.ListBySeller(ctx, sellerID, normalizeLimit(limit), offset)
}
