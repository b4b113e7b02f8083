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

type fakeJobRepo struct {
	jobs map[uuid.UUID]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[uuid.UUID]*models.Job)}
}

func (f *fakeJobRepo) Create(ctx context.Context, job *models.Job, attachmentIDs []uuid.UUID) error {
	job.ID = uuid.New()
	job.CreatedAt = time.Now()
	job.UpdatedAt = job.CreatedAt
	f.jobs[job.ID] = job
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	copied := *j
	return &copied, nil
}

func (f *fakeJobRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, status string) ([]models.Job, error) {
	var result []models.Job
	for _, j := range f.jobs {
		if j.BuyerID == buyerID && (status == "" || j.Status == status) {
			result = append(result, *j)
		}
	}
	return result, nil
}

func (f *fakeJobRepo) Update(ctx context.Context, job *models.Job) error {
	stored, ok := f.jobs[job.ID]
	if !ok {
		return repository.ErrJobNotFound
	}
	*stored = *job
	return nil
}

func (f *fakeJobRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	j, ok := f.jobs[id]
	if !ok {
		return repository.ErrJobNotFound
	}
	j.Status = status
	return nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := f.jobs[id]; !ok {
		return repository.ErrJobNotFound
	}
	delete(f.jobs, id)
	return nil
}

func validJobInput() JobInput {
	return JobInput{
		Title: "Ведущий на корпоратив",
		Price: 25000,
	}
}

func TestJobService_Create(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	job, err := svc.Create(context.Background(), buyerID, validJobInput(), false)
	assert.NoError(t, err)
	assert.Equal(t, "active", job.Status)

	draft, err := svc.Create(context.Background(), buyerID, validJobInput(), true)
	assert.NoError(t, err)
	assert.Equal(t, "draft", draft.Status)
}

func TestJobService_Create_AggregatesFieldErrors(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)

	past := time.Now().Add(-time.Hour)
	in := JobInput{Title: "до", Price: -1, EventDate: &past}
	_, err := svc.Create(context.Background(), uuid.New(), in, false)

	var appErr *apperror.AppError
	if assert.ErrorAs(t, err, &appErr) {
		assert.Equal(t, apperror.ErrCodeValidation, appErr.Code)
		assert.Len(t, appErr.Fields, 3)
	}
	assert.Empty(t, repo.jobs)
}

func TestJobService_ChangeStatus(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	job, err := svc.Create(context.Background(), buyerID, validJobInput(), true)
	assert.NoError(t, err)

	// draft → active → paused → active → closed
	for _, status := range []string{"active", "paused", "active", "closed"} {
		job, err = svc.ChangeStatus(context.Background(), buyerID, job.ID, status)
		assert.NoError(t, err)
		assert.Equal(t, status, job.Status)
	}

	// closed терминален
	_, err = svc.ChangeStatus(context.Background(), buyerID, job.ID, "active")
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestJobService_ChangeStatus_BackToDraft(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	job, err := svc.Create(context.Background(), buyerID, validJobInput(), false)
	assert.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), buyerID, job.ID, "draft")
	assertAppCode(t, err, apperror.ErrCodeInvalidTransition)
}

func TestJobService_ChangeStatus_UnknownStatus(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	job, err := svc.Create(context.Background(), buyerID, validJobInput(), false)
	assert.NoError(t, err)

	_, err = svc.ChangeStatus(context.Background(), buyerID, job.ID, "archived")
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestJobService_Delete(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	active, err := svc.Create(context.Background(), buyerID, validJobInput(), false)
	assert.NoError(t, err)

	// Опубликованное объявление не удаляется, только закрывается
	err = svc.Delete(context.Background(), buyerID, active.ID)
	assertAppCode(t, err, apperror.ErrCodeInvalidState)

	_, err = svc.ChangeStatus(context.Background(), buyerID, active.ID, "closed")
	assert.NoError(t, err)
	assert.NoError(t, svc.Delete(context.Background(), buyerID, active.ID))

	draft, err := svc.Create(context.Background(), buyerID, validJobInput(), true)
	assert.NoError(t, err)
	assert.NoError(t, svc.Delete(context.Background(), buyerID, draft.ID))
	assert.Empty(t, repo.jobs)
}

func TestJobService_Update_OwnerOnly(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)
	buyerID := uuid.New()

	job, err := svc.Create(context.Background(), buyerID, validJobInput(), false)
	assert.NoError(t, err)

	in := validJobInput()
	in.Price = 30000
	_, err = svc.Update(context.Background(), uuid.New(), job.ID, in)
	assertAppCode(t, err, apperror.ErrCodeForbidden)

	updated, err := svc.Update(context.Background(), buyerID, job.ID, in)
	assert.NoError(t, err)
	assert.Equal(t, 30000.0, updated.Price)
}

func TestJobService_ListByBuyer_ValidatesStatus(t *testing.T) {
	repo := newFakeJobRepo()
	svc := NewJobService(repo)

	_, err := svc.ListByBuyer(context.Background(), uuid.New(), "unknown")
	assertAppCode(t, err, apperror.ErrCodeValidation)

	_, err = svc.ListByBuyer(context.Background(), uuid.New(), "draft")
	assert.NoError(t, err)
}
