package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus enum constants
const (
	ApprovalPending  = "pending"
	ApprovalApproved = "approved"
	ApprovalRejected = "rejected"
)

// ApprovalDecision enum constants — how a reviewer resolves a pending request
const (
	DecisionApproveExternal = "approve_external"
	DecisionApproveInternal = "approve_internal"
	DecisionReject          = "reject"
)

// Approval records that a profile asked for a reference to be reviewed.
// At most one approval per reference may be pending at a time; a reviewer
// decision mutates it exactly once to approved or rejected and simultaneously
// sets the reference's terminal status (or reverts it to draft).
type Approval struct {
	ID          uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReferenceID uuid.UUID  `gorm:"type:uuid;not null;index" json:"reference_id"`
	Reference   *Reference `gorm:"foreignKey:ReferenceID" json:"reference,omitempty"`
	RequestedBy *uuid.UUID `gorm:"type:uuid;index" json:"requested_by"`
	Requester   *Profile   `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ReviewedBy  *uuid.UUID `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer    *Profile   `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt  *time.Time `json:"reviewed_at"`
	Status      string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}
