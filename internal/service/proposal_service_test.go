package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/ignatzorin/talent-backend/internal/models"
	"github.com/ignatzorin/talent-backend/internal/pkg/apperror"
	"github.com/ignatzorin/talent-backend/internal/repository"
)

type fakeProposalRepo struct {
	proposals map[uuid.UUID]*models.Proposal
}

func newFakeProposalRepo() *fakeProposalRepo {
	return &fakeProposalRepo{proposals: make(map[uuid.UUID]*models.Proposal)}
}

func (f *fakeProposalRepo) Create(ctx context.Context, proposal *models.Proposal, attachmentIDs []uuid.UUID) error {
	proposal.ID = uuid.New()
	f.proposals[proposal.ID] = proposal
	return nil
}

func (f *fakeProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	return p, nil
}

func (f *fakeProposalRepo) ListByJob(ctx context.Context, jobID uuid.UUID) ([]models.Proposal, error) {
	var result []models.Proposal
	for _, p := range f.proposals {
		if p.JobID == jobID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeProposalRepo) ListByBuyer(ctx context.Context, buyerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	return nil, nil
}

func (f *fakeProposalRepo) ListBySeller(ctx context.Context, sellerID uuid.UUID, limit, offset int) ([]models.Proposal, error) {
	var result []models.Proposal
	for _, p := range f.proposals {
		if p.SellerID == sellerID {
			result = append(result, *p)
		}
	}
	return result, nil
}

func (f *fakeProposalRepo) ExistsForJobAndSeller(ctx context.Context, jobID, sellerID uuid.UUID) (bool, error) {
	for _, p := range f.proposals {
		if p.JobID == jobID && p.SellerID == sellerID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProposalRepo) UpdateBuyerDecision(ctx context.Context, id uuid.UUID, decision *string) (*models.Proposal, error) {
	p, ok := f.proposals[id]
	if !ok {
		return nil, repository.ErrProposalNotFound
	}
	p.BuyerDecision = decision
	return p, nil
}

type fakeJobRepoForProposal struct {
	jobs map[uuid.UUID]*models.Job
}

func (f *fakeJobRepoForProposal) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	j, ok := f.jobs[id]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	return j, nil
}

func newProposalFixture() (*ProposalService, *fakeProposalRepo, *models.Job) {
	repo := newFakeProposalRepo()
	jobs := &fakeJobRepoForProposal{jobs: make(map[uuid.UUID]*models.Job)}
	job := &models.Job{
		ID:      uuid.New(),
		BuyerID: uuid.New(),
		Title:   "Кавер-группа на свадьбу",
		Price:   40000,
		Status:  "active",
	}
	jobs.jobs[job.ID] = job
	return NewProposalService(repo, jobs), repo, job
}

func TestProposalService_Create(t *testing.T) {
	svc, repo, job := newProposalFixture()
	sellerID := uuid.New()

	proposal, err := svc.Create(context.Background(), sellerID, job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Сыграем три сета, свой свет и звук",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.ProposalStatusSubmitted, proposal.Status)
	assert.Nil(t, proposal.BuyerDecision)
	assert.Len(t, repo.proposals, 1)
}

func TestProposalService_Create_Duplicate(t *testing.T) {
	svc, _, job := newProposalFixture()
	sellerID := uuid.New()

	in := ProposalInput{Amount: 35000, CoverLetter: "Сыграем три сета, свой свет и звук"}
	_, err := svc.Create(context.Background(), sellerID, job.ID, in)
	assert.NoError(t, err)

	_, err = svc.Create(context.Background(), sellerID, job.ID, in)
	assertAppCode(t, err, apperror.ErrCodeConflict)
}

func TestProposalService_Create_JobNotActive(t *testing.T) {
	svc, _, job := newProposalFixture()
	job.Status = "paused"

	_, err := svc.Create(context.Background(), uuid.New(), job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Объявление на паузе, отклик не пройдёт",
	})
	assertAppCode(t, err, apperror.ErrCodeInvalidState)
}

func TestProposalService_Create_OwnJob(t *testing.T) {
	svc, _, job := newProposalFixture()

	_, err := svc.Create(context.Background(), job.BuyerID, job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Откликаюсь на собственное объявление",
	})
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestProposalService_Create_ShortCoverLetter(t *testing.T) {
	svc, _, job := newProposalFixture()

	_, err := svc.Create(context.Background(), uuid.New(), job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "ок",
	})
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestProposalService_SetBuyerDecision(t *testing.T) {
	svc, _, job := newProposalFixture()
	sellerID := uuid.New()

	proposal, err := svc.Create(context.Background(), sellerID, job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Сыграем три сета, свой свет и звук",
	})
	assert.NoError(t, err)

	decision := "shortlisted"
	updated, err := svc.SetBuyerDecision(context.Background(), job.BuyerID, proposal.ID, &decision)
	assert.NoError(t, err)
	if assert.NotNil(t, updated.BuyerDecision) {
		assert.Equal(t, "shortlisted", *updated.BuyerDecision)
	}
	// Пометка не трогает статус отклика
	assert.Equal(t, models.ProposalStatusSubmitted, updated.Status)

	// null снимает пометку
	cleared, err := svc.SetBuyerDecision(context.Background(), job.BuyerID, proposal.ID, nil)
	assert.NoError(t, err)
	assert.Nil(t, cleared.BuyerDecision)
}

func TestProposalService_SetBuyerDecision_InvalidValue(t *testing.T) {
	svc, _, job := newProposalFixture()

	proposal, err := svc.Create(context.Background(), uuid.New(), job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Сыграем три сета, свой свет и звук",
	})
	assert.NoError(t, err)

	decision := "hired"
	_, err = svc.SetBuyerDecision(context.Background(), job.BuyerID, proposal.ID, &decision)
	assertAppCode(t, err, apperror.ErrCodeValidation)
}

func TestProposalService_SetBuyerDecision_NotOwner(t *testing.T) {
	svc, _, job := newProposalFixture()

	proposal, err := svc.Create(context.Background(), uuid.New(), job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Сыграем три сета, свой свет и звук",
	})
	assert.NoError(t, err)

	decision := "maybe"
	_, err = svc.SetBuyerDecision(context.Background(), uuid.New(), proposal.ID, &decision)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}

func TestProposalService_ListByJob_OnlyOwner(t *testing.T) {
	svc, _, job := newProposalFixture()

	_, err := svc.ListByJob(context.Background(), uuid.New(), job.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)

	_, err = svc.ListByJob(context.Background(), job.BuyerID, job.ID)
	assert.NoError(t, err)
}

func TestProposalService_Get_PartiesOnly(t *testing.T) {
	svc, _, job := newProposalFixture()
	sellerID := uuid.New()

	proposal, err := svc.Create(context.Background(), sellerID, job.ID, ProposalInput{
		Amount:      35000,
		CoverLetter: "Сыграем три сета, свой свет и звук",
	})
	assert.NoError(t, err)

	_, err = svc.Get(context.Background(), sellerID, proposal.ID)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), job.BuyerID, proposal.ID)
	assert.NoError(t, err)
	_, err = svc.Get(context.Background(), uuid.New(), proposal.ID)
	assertAppCode(t, err, apperror.ErrCodeForbidden)
}
