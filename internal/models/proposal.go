package models

import (
	"time"

	"github.com/google/uuid"
)

// Proposal представляет отклик исполнителя на объявление.
type Proposal struct {
	ID          uuid.UUID `db:"id" json:"id"`
	JobID       uuid.UUID `db:"job_id" json:"job_id"`
	SellerID    uuid.UUID `db:"seller_id" json:"seller_id"`
	Amount      float64   `db:"amount" json:"amount"`
	CoverLetter string    `db:"cover_letter" json:"cover_letter"`
	Status      string    `db:"status" json:"status"`

	// BuyerDecision — необязывающая пометка покупателя
	// (shortlisted / maybe / no_interest). NULL означает отсутствие решения.
	// Пометка никогда не влияет на возможность создать заказ.
	BuyerDecision *string `db:"buyer_decision" json:"buyer_decision,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Attachments []ProposalAttachment `json:"attachments,omitempty"`
}

// Статусы предложений.
const (
	ProposalStatusSubmitted = "submitted"
	ProposalStatusAccepted  = "accepted"
	ProposalStatusWithdrawn = "withdrawn"
)

// ProposalAttachment описывает файл, прикреплённый к отклику.
type ProposalAttachment struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	ProposalID uuid.UUID  `db:"proposal_id" json:"proposal_id"`
	MediaID    uuid.UUID  `db:"media_id" json:"media_id"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	Media      *MediaFile `json:"media,omitempty"`
}
