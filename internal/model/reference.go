package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReferenceStatus enum constants.
// A reference starts as draft, moves to pending when submitted for approval,
// and ends in exactly one of the four visibility levels (or back in draft on
// rejection). No transition is defined out of a terminal status except
// re-submitting, which re-enters pending with a fresh approval token.
const (
	ReferenceStatusDraft      = "draft"
	ReferenceStatusPending    = "pending"
	ReferenceStatusExternal   = "external"   // publicly usable with company name
	ReferenceStatusInternal   = "internal"   // internal sales use only
	ReferenceStatusAnonymous  = "anonymous"  // usable without naming the company
	ReferenceStatusRestricted = "restricted" // case-by-case release only
)

// ProjectStatus enum constants
const (
	ProjectStatusPlanned   = "planned"
	ProjectStatusOngoing   = "ongoing"
	ProjectStatusCompleted = "completed"
)

// TerminalReferenceStatuses are the statuses an approval decision may produce.
var TerminalReferenceStatuses = map[string]bool{
	ReferenceStatusExternal:   true,
	ReferenceStatusInternal:   true,
	ReferenceStatusAnonymous:  true,
	ReferenceStatusRestricted: true,
}

// ValidReferenceStatuses covers every status a reference row may hold.
var ValidReferenceStatuses = map[string]bool{
	ReferenceStatusDraft:      true,
	ReferenceStatusPending:    true,
	ReferenceStatusExternal:   true,
	ReferenceStatusInternal:   true,
	ReferenceStatusAnonymous:  true,
	ReferenceStatusRestricted: true,
}

// Reference represents a customer case-study record.
// Invariant: ApprovalToken is non-nil iff Status == pending; every terminal
// decision clears the token in the same write.
type Reference struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"organization_id"`
	CompanyID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"company_id"`
	Company         *Company       `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	ContactPersonID *uuid.UUID     `gorm:"type:uuid;index" json:"contact_person_id"`
	ContactPerson   *ContactPerson `gorm:"foreignKey:ContactPersonID" json:"contact_person,omitempty"`
	Title           string         `gorm:"type:varchar(255);not null" json:"title"`
	Summary         string         `gorm:"type:text" json:"summary"`
	Industry        string         `gorm:"type:varchar(100)" json:"industry"`
	Country         string         `gorm:"type:varchar(100)" json:"country"`
	Tags            string         `gorm:"type:jsonb" json:"tags"` // JSON array of free-form labels
	FilePath        string         `gorm:"type:varchar(500)" json:"file_path"`
	ProjectStatus   string         `gorm:"type:varchar(20)" json:"project_status"` // planned, ongoing, completed
	ProjectStart    *time.Time     `json:"project_start"`
	ProjectEnd      *time.Time     `json:"project_end"`
	Status          string         `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	ApprovalToken   *string        `gorm:"type:varchar(64);index" json:"-"` // single-use bearer secret, never serialized
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Favorite marks a reference as pinned by a profile
type Favorite struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProfileID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_profile_reference" json:"profile_id"`
	ReferenceID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_favorites_profile_reference" json:"reference_id"`
	CreatedAt   time.Time `json:"created_at"`
}
