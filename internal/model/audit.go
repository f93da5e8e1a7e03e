package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateReference = "CREATE_REFERENCE"
	ActionUpdateReference = "UPDATE_REFERENCE"
	ActionDeleteReference = "DELETE_REFERENCE"
	ActionCreateDeal      = "CREATE_DEAL"
	ActionCreateInvite    = "CREATE_INVITE"

	// Approval workflow actions
	ActionSubmitForApproval = "SUBMIT_FOR_APPROVAL"
	ActionTokenDecision     = "TOKEN_DECISION"
	ActionApproveRequest    = "APPROVE_REQUEST"
	ActionRejectRequest     = "REJECT_REQUEST"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID  *uuid.UUID `gorm:"type:uuid;index" json:"profile_id"` // Nullable for unauthenticated token decisions
	Profile    *Profile   `gorm:"foreignKey:ProfileID" json:"profile"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
