package service

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/talent-backend/internal/domain/valueobject"
	"github.com/ignatzorin/talent-backend/internal/logger"
	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
)

func TestMain(m *testing.M) {
	logger.Init("fatal")
	os.Exit(m.Run())
}

// fakeOrderRepo повторяет семантику условных UPDATE из базы: переход
// срабатывает только из ожидаемого статуса, иначе ErrOrderNotFound.
type fakeOrderRepo struct {
	orders map[uuid.UUID]*models.Order
	seq    int
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*models.Order)}
}

func (f *fakeOrderRepo) Create(ctx context.Context, order *models.Order) error {
	f.seq++
	order.ID = uuid.New()
	order.OrderNo = "ORD-00000" + string(rune('0'+f.seq))
	order.CreatedAt = time.Now()
	order.UpdatedAt = order.CreatedAt
	f.orders[order.ID] = order
	return nil
}

func (f *fakeOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var result []models.Order
	for _, o := range f.orders {
		if o.BuyerID == buyerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Order, error) {
	var result []models.Order
	for _, o := range f.orders {
		if o.SellerID == sellerID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (f *fakeOrderRepo) HasActiveOrderForJob(ctx context.Context, jobID uuid.UUID) (bool, error) {
	for _, o := range f.orders {
		if o.JobID == jobID && o.Status != "complete" && o.Status != "cancelled" {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeOrderRepo) MarkDelivered(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.Status != "pending" {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = "delivered"
	order.DeliveredAt = &now
	order.CompletionRequestedAt = &now
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) Approve(ctx context.Context, id uuid.UUID, now time.Time) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.Status != "delivered" {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = "complete"
	order.ApprovedAt = &now
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) Reject(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || order.Status != "delivered" {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = "pending"
	order.RejectedAt = &now
	order.RejectionReason = &reason
	order.DeliveredAt = nil
	order.CompletionRequestedAt = nil
	copied := *order
	return &copied, nil
}

func (f *fakeOrderRepo) Cancel(ctx context.Context, id uuid.UUID, reason string, now time.Time) (*models.Order, error) {
	order, ok := f.orders[id]
	if !ok || (order.Status != "pending" && order.Status != "delivered") {
		return nil, repository.ErrOrderNotFound
	}
	order.Status = "cancelled"
	order.CancellationReason = &reason
	order.CancelledAt = &now
	copied := *order
	return &copied, nil
}

type fakeProposalRepoForOrder struct {
	proposals map[uuid.UUID]*models.Proposal
}

func (f *fakeProposalRepoForOrder) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	return p, nil
}

func (f *fakeProposalRepoForOrder) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	p, ok := f.proposals[id]
	if !ok {
		return repository.ErrProposalNotFound
	}
	p.Status = status
	return nil
}

type fakeJobRepoForOrder struct {
	jobs map[uuid.UUID]*models.Job
}

func (f *fakeJobRepoForOrder) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return j, nil
}

// fakePaymentRepoForOrder хранит один платёж на заказ и сигналит в released
// о выплате: Complete выплачивает эскроу в фоновой горутине.
type fakePaymentRepoForOrder struct {
	payments map[uuid.UUID]*models.Payment
	released chan struct{}
}

func newFakePaymentRepoForOrder() *fakePaymentRepoForOrder {
	return &fakePaymentRepoForOrder{
		payments: make(map[uuid.UUID]*models.Payment),
		released: make(chan struct{}, 1),
	}
}

func (f *fakePaymentRepoForOrder) GetByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	return p, nil
}

func (f *fakePaymentRepoForOrder) Release(ctx context.Context, orderID uuid.UUID, now time.Time) (*models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	if p.Status == "escrow" {
		p.Status = "released"
		p.ReleasedAt = &now
	}
	select {
	case f.released <- struct{}{}:
	default:
	}
	return p, nil
}

func (f *fakePaymentRepoForOrder) Refund(ctx context.Context, orderID uuid.UUID, percent int, amount float64, reason string, now time.Time) (*models.Payment, error) {
	p, ok := f.payments[orderID]
	if !ok {
		return nil, repository.ErrPaymentNotFound
	}
	if p.Status == "escrow" {
		p.Status = "refunded"
		p.RefundPercent = &percent
		p.RefundedAmount = &amount
		p.RefundReason = &reason
		p.RefundedAt = &now
	}
	return p, nil
}

type orderFixture struct {
	svc       *OrderService
	orders    *fakeOrderRepo
	proposals *fakeProposalRepoForOrder
	jobs      *fakeJobRepoForOrder
	payments  *fakePaymentRepoForOrder
	buyerID   uuid.UUID
	sellerID  uuid.UUID
	job       *models.Job
	proposal  *models.Proposal
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()
	f := &orderFixture{
		orders:    newFakeOrderRepo(),
		proposals: &fakeProposalRepoForOrder{proposals: make(map[uuid.UUID]*models.Proposal)},
		jobs:      &fakeJobRepoForOrder{jobs: make(map[uuid.UUID]*models.Job)},
		payments:  newFakePaymentRepoForOrder(),
		buyerID:   uuid.New(),
		sellerID:  uuid.New(),
	}
	f.svc = NewOrderService(f.orders, f.proposals, f.jobs, f.payments)

	eventDate := time.Now().Add(30 * 24 * time.Hour)
	locationName := "Клуб на Лиговском"
	f.job = &models.Job{
		ID:           uuid.New(),
		BuyerID:      f.buyerID,
		Title:        "Саксофонист на юбилей",
		Price:        15000,
		Status:       "active",
		EventDate:    &eventDate,
		LocationName: &locationName,
	}
	f.jobs.jobs[f.job.ID] = f.job

	f.proposal = &models.Proposal{
		ID:          uuid.New(),
		JobID:       f.job.ID,
		SellerID:    f.sellerID,
		Amount:      12000,
		CoverLetter: "Играю десять лет, репертуар подберу",
		Status:      models.ProposalStatusSubmitted,
	}
	f.proposals.proposals[f.proposal.ID] = f.proposal
	return f
}

// createOrder прогоняет заказ до нужного статуса через сам сервис.
func (f *orderFixture) createOrder(t *testing.T) *OrderView {
	t.Helper()
	view, err := f.svc.CreateFromProposal(context.Background(), f.buyerID, f.proposal.ID)
	if err != nil {
		t.Fatalf("не удалось создать заказ: %v", err)
	}
	return view
}

func (f *orderFixture) addEscrow(orderID uuid.UUID, total float64) *models.Payment {
	payment := &models.Payment{
		ID:          uuid.New(),
		OrderID:     orderID,
		BuyerID:     f.buyerID,
		TotalAmount: total,
		Status:      "escrow",
	}
	f.payments.payments[orderID] = payment
	return payment
}

func assertAppCode(t *testing.T, err error, code apperror.ErrorCode) {
	t.Helper()
	var appErr *apperror.AppError
	if !assert.ErrorAs(t, err, &appErr) {
		return
	}
	assert.Equal(t, code, appErr.Code)
}

func TestOrderService_CreateFromProposal(t *testing.T) {
	f := newOrderFixture(t)

	view := f.createOrder(t)

	assert.Equal(t, "pending", view.Status)
	assert.Equal(t, f.proposal.Amount, view.Amount)
	assert.Equal(t, f.sellerID, view.SellerID)
	// Расписание снято снимком с объявления
	assert.Equal(t, f.job.EventDate, view.EventDate)
	assert.Equal(t, f.job.LocationName, view.LocationName)
	assert.Equal(t, models.ProposalStatusAccepted, f.proposal.Status)
	assert.Contains(t, view.AllowedActions, valueobject.OrderActionDeliver)
	assert.Contains(t, view.AllowedActions, valueobject.OrderActionCancel)
	assert.Nil(t, view.CompletionWindow)
}

func TestOrderService_CreateFromProposal_ActiveOrderExists(t *testing.T) {
	f := newOrderFixture(t)
	f.createOrder(t)

	second := &models.Proposal{
		ID:       uuid.New(),
		JobID:    f.job.ID,
		SellerID: uuid.New(),
		Amount:   9000,
		Status:   models.ProposalStatusSubmitted,
	}
	f.proposals.proposals[second.ID] = second

	_, err := f.svc.CreateFromProposal(context.Background(), f.buyerID, second.ID)
	assertAppCode(t, err, apperror.ErrCodeConflict)
}

func TestOrderService_CreateFromProposal_NotJobOwner(t *testing.T) {
	f := newOrderFixture(t)

	_, err := f.svc.CreateFromProposal(context.Background(), uuid.New(), f.proposal.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestOrderService_CreateFromProposal_WithdrawnProposal(t *testing.T) {
	f := newOrderFixture(t)
	f.proposal.Status = models.ProposalStatusWithdrawn

	_, err := f.svc.CreateFromProposal(context.Background(), f.buyerID, f.proposal.ID)
	assertAppCode(t, err, apperror.ErrCodeInvalidState)
}

func TestOrderService_Deliver(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	deliveredAt := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return deliveredAt }

	view, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "delivered", view.Status)
	if assert.NotNil(t, view.CompletionWindow) {
		assert.Equal(t, deliveredAt.Add(48*time.Hour), view.CompletionWindow.Deadline)
		assert.False(t, view.CompletionWindow.Expired)
		assert.Equal(t, 2, view.CompletionWindow.Days)
	}
	assert.Contains(t, view.AllowedActions, valueobject.OrderActionApprove)
	assert.Contains(t, view.AllowedActions, valueobject.OrderActionReject)
}

func TestOrderService_Deliver_NotSeller(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Deliver(context.Background(), f.buyerID, order.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestOrderService_Deliver_AlreadyDelivered(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)

	_, err = f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestOrderService_Complete_Approve(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)
	f.addEscrow(order.ID, 13800)

	_, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)

	view, err := f.svc.Complete(context.Background(), f.buyerID, order.ID, CompleteInput{Status: "completed"})
	assert.NoError(t, err)
	assert.Equal(t, "complete", view.Status)
	assert.NotNil(t, view.ApprovedAt)
	assert.Empty(t, view.AllowedActions)

	// Выплата эскроу идёт фоновым шагом после записи заказа
	select {
	case <-f.payments.released:
	case <-time.After(2 * time.Second):
		t.Fatalf("эскроу не выплачен после завершения заказа")
	}
	assert.Equal(t, "released", f.payments.payments[order.ID].Status)
}

func TestOrderService_Complete_Reject(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)

	view, err := f.svc.Complete(context.Background(), f.buyerID, order.ID,
		CompleteInput{Status: "rejected", RejectionReason: "запись не совпадает с программой"})
	assert.NoError(t, err)
	assert.Equal(t, "pending", view.Status)
	assert.Nil(t, view.DeliveredAt)
	assert.Nil(t, view.CompletionWindow)
	if assert.NotNil(t, view.RejectionReason) {
		assert.Equal(t, "запись не совпадает с программой", *view.RejectionReason)
	}

	// Повторная сдача открывает окно заново
	again, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "delivered", again.Status)
	assert.NotNil(t, again.CompletionWindow)
}

func TestOrderService_Complete_RejectWithoutReason(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)

	_, err = f.svc.Complete(context.Background(), f.buyerID, order.ID, CompleteInput{Status: "rejected"})
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestOrderService_Complete_UnknownDecision(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Complete(context.Background(), f.buyerID, order.ID, CompleteInput{Status: "done"})
	assertAppCode(t, err, apperror.ErrCodeInvalidState)
}

func TestOrderService_Complete_FromPending(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Complete(context.Background(), f.buyerID, order.ID, CompleteInput{Status: "completed"})
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestOrderService_Cancel_RefundTiers(t *testing.T) {
	cancelledAt := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	cases := []struct {
		name          string
		eventIn       time.Duration
		wantPercent   int
		wantRefunded  float64
		totalInEscrow float64
	}{
		{"за неделю и раньше", 8 * 24 * time.Hour, 100, 11500, 11500},
		{"за 3-6 дней", 4 * 24 * time.Hour, 75, 8625, 11500},
		{"за 1-2 дня", 36 * time.Hour, 50, 5750, 11500},
		{"менее суток", 5 * time.Hour, 25, 2875, 11500},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newOrderFixture(t)
			eventDate := cancelledAt.Add(tc.eventIn)
			f.job.EventDate = &eventDate

			order := f.createOrder(t)
			f.addEscrow(order.ID, tc.totalInEscrow)
			f.svc.now = func() time.Time { return cancelledAt }

			view, err := f.svc.Cancel(context.Background(), f.buyerID, order.ID, "событие отменилось")
			assert.NoError(t, err)
			assert.Equal(t, "cancelled", view.Status)

			payment := f.payments.payments[order.ID]
			assert.Equal(t, "refunded", payment.Status)
			if assert.NotNil(t, payment.RefundPercent) {
				assert.Equal(t, tc.wantPercent, *payment.RefundPercent)
			}
			if assert.NotNil(t, payment.RefundedAmount) {
				assert.InDelta(t, tc.wantRefunded, *payment.RefundedAmount, 0.001)
			}
		})
	}
}

func TestOrderService_Cancel_NoEventDate(t *testing.T) {
	f := newOrderFixture(t)
	f.job.EventDate = nil

	order := f.createOrder(t)
	f.addEscrow(order.ID, 11500)

	_, err := f.svc.Cancel(context.Background(), f.buyerID, order.ID, "передумал")
	assert.NoError(t, err)

	// Без даты события отмена считается заблаговременной: возврат полный
	payment := f.payments.payments[order.ID]
	if assert.NotNil(t, payment.RefundPercent) {
		assert.Equal(t, 100, *payment.RefundPercent)
	}
}

func TestOrderService_Cancel_WithoutReason(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Cancel(context.Background(), f.buyerID, order.ID, "")
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestOrderService_Cancel_Terminal(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.Deliver(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)
	_, err = f.svc.Complete(context.Background(), f.buyerID, order.ID, CompleteInput{Status: "completed"})
	assert.NoError(t, err)

	_, err = f.svc.Cancel(context.Background(), f.buyerID, order.ID, "поздно")
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestOrderService_GetForUser_Outsider(t *testing.T) {
	f := newOrderFixture(t)
	order := f.createOrder(t)

	_, err := f.svc.GetForUser(context.Background(), uuid.New(), order.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)

	_, err = f.svc.GetForUser(context.Background(), f.sellerID, order.ID)
	assert.NoError(t, err)
}
