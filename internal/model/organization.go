package model

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary — every profile, company, reference and
// deal belongs to exactly one organization.
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// OrganizationInvite lets an admin invite a colleague into the organization.
// The token is an opaque secret embedded in the registration link.
type OrganizationInvite struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID uuid.UUID  `gorm:"type:uuid;not null;index" json:"organization_id"`
	Email          string     `gorm:"type:varchar(255);not null" json:"email"`
	Token          string     `gorm:"type:varchar(64);uniqueIndex;not null" json:"-"`
	InvitedBy      *uuid.UUID `gorm:"type:uuid" json:"invited_by"`
	ExpiresAt      time.Time  `gorm:"not null" json:"expires_at"`
	CreatedAt      time.Time  `json:"created_at"`
}
