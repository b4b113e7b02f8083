package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
)

type fakeDisputeRepo struct {
	disputes    map[uuid.UUID]*models.Dispute
	attachments map[uuid.UUID][]uuid.UUID
}

func newFakeDisputeRepo() *fakeDisputeRepo {
	return &fakeDisputeRepo{
		disputes:    make(map[uuid.UUID]*models.Dispute),
		attachments: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (f *fakeDisputeRepo) Create(ctx context.Context, dispute *models.Dispute, attachmentIDs []uuid.UUID) error {
	dispute.ID = uuid.New()
	dispute.CreatedAt = time.Now()
	f.disputes[dispute.ID] = dispute
	f.attachments[dispute.ID] = attachmentIDs
	return nil
}

func (f *fakeDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	d, ok := f.disputes[id]
	if !ok {
		return nil, repository.ErrDisputeNotFound
	}
	return d, nil
}

func (f *fakeDisputeRepo) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]models.Dispute, error) {
	var result []models.Dispute
	for _, d := range f.disputes {
		if d.OrderID == orderID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (f *fakeDisputeRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, resolution *string, resolvedAt *time.Time) (*models.Dispute, error) {
	d, ok := f.disputes[id]
	if !ok {
		return nil, repository.ErrDisputeNotFound
	}
	d.Status = status
	d.Resolution = resolution
	d.ResolvedAt = resolvedAt
	return d, nil
}

type fakeOrderRepoForDispute struct {
	orders map[uuid.UUID]*models.Order
}

func (f *fakeOrderRepoForDispute) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	o, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	return o, nil
}

func newDisputeFixture() (*DisputeService, *fakeDisputeRepo, *models.Order) {
	repo := newFakeDisputeRepo()
	orders := &fakeOrderRepoForDispute{orders: make(map[uuid.UUID]*models.Order)}
	order := &models.Order{
		ID:       uuid.New(),
		OrderNo:  "ORD-000042",
		BuyerID:  uuid.New(),
		SellerID: uuid.New(),
		Status:   "delivered",
	}
	orders.orders[order.ID] = order
	return NewDisputeService(repo, orders), repo, order
}

func TestDisputeService_Create(t *testing.T) {
	svc, repo, order := newDisputeFixture()

	attachment := uuid.New()
	dispute, err := svc.Create(context.Background(), order.BuyerID, order.ID, DisputeInput{
		Subject:       "Исполнитель не вышел на связь",
		Description:   "За два дня до события перестал отвечать на сообщения",
		AttachmentIDs: []uuid.UUID{attachment},
	})
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, dispute.Status)
	assert.Equal(t, order.OrderNo, dispute.OrderNo)
	assert.Equal(t, order.BuyerID, dispute.InitiatorID)
	assert.Equal(t, []uuid.UUID{attachment}, repo.attachments[dispute.ID])
}

func TestDisputeService_Create_MultiplePerOrder(t *testing.T) {
	svc, repo, order := newDisputeFixture()

	in := DisputeInput{Subject: "Опоздание на час", Description: "Начал выступление с опозданием"}
	_, err := svc.Create(context.Background(), order.BuyerID, order.ID, in)
	assert.NoError(t, err)
	_, err = svc.Create(context.Background(), order.BuyerID, order.ID, in)
	assert.NoError(t, err)

	assert.Len(t, repo.disputes, 2)
}

func TestDisputeService_Create_NotBuyer(t *testing.T) {
	svc, _, order := newDisputeFixture()

	_, err := svc.Create(context.Background(), order.SellerID, order.ID, DisputeInput{
		Subject:     "Спор от исполнителя",
		Description: "Споры открывает только покупатель",
	})
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestDisputeService_Create_ShortSubject(t *testing.T) {
	svc, _, order := newDisputeFixture()

	_, err := svc.Create(context.Background(), order.BuyerID, order.ID, DisputeInput{
		Subject:     "ав",
		Description: "Тема короче трёх символов",
	})
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestDisputeService_ListByOrder_PartiesOnly(t *testing.T) {
	svc, _, order := newDisputeFixture()

	_, err := svc.ListByOrder(context.Background(), order.SellerID, order.ID)
	assert.NoError(t, err)
	_, err = svc.ListByOrder(context.Background(), uuid.New(), order.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestDisputeService_UpdateStatus_Chain(t *testing.T) {
	svc, _, order := newDisputeFixture()

	dispute, err := svc.Create(context.Background(), order.BuyerID, order.ID, DisputeInput{
		Subject:     "Исполнитель не вышел на связь",
		Description: "За два дня до события перестал отвечать",
	})
	assert.NoError(t, err)

	// Сразу в resolved нельзя
	_, err = svc.UpdateStatus(context.Background(), dispute.ID, models.DisputeStatusResolved, "итог")
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)

	updated, err := svc.UpdateStatus(context.Background(), dispute.ID, models.DisputeStatusInProgress, "")
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusInProgress, updated.Status)
	assert.Nil(t, updated.ResolvedAt)

	// Разрешение без итога не принимается
	_, err = svc.UpdateStatus(context.Background(), dispute.ID, models.DisputeStatusResolved, "")
	assertAppCode(t, err, apperror.ErrCodeValidation)

	resolved, err := svc.UpdateStatus(context.Background(), dispute.ID, models.DisputeStatusResolved, "возврат 50% покупателю")
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, resolved.Status)
	assert.NotNil(t, resolved.ResolvedAt)
	if assert.NotNil(t, resolved.Resolution) {
		assert.Equal(t, "возврат 50% покупателю", *resolved.Resolution)
	}

	// Разрешённый спор закрыт для переходов
	_, err = svc.UpdateStatus(context.Background(), dispute.ID, models.DisputeStatusInProgress, "")
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}
