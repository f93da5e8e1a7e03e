package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DealStatus enum constants
const (
	DealStatusInNegotiation = "in_negotiation"
	DealStatusRFPPhase      = "rfp_phase"
	DealStatusWon           = "won"
	DealStatusLost          = "lost"
	DealStatusOnHold        = "on_hold"
)

// ValidDealStatuses guards status values coming from the client
var ValidDealStatuses = map[string]bool{
	DealStatusInNegotiation: true,
	DealStatusRFPPhase:      true,
	DealStatusWon:           true,
	DealStatusLost:          true,
	DealStatusOnHold:        true,
}

// Deal represents a sales opportunity that references get attached to
type Deal struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrganizationID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"organization_id"`
	Title            string          `gorm:"type:varchar(255);not null" json:"title"`
	CompanyID        *uuid.UUID      `gorm:"type:uuid;index" json:"company_id"`
	Company          *Company        `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	Industry         string          `gorm:"type:varchar(100)" json:"industry"`
	Volume           decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"volume"` // expected contract value
	IsPublic         bool            `gorm:"default:true" json:"is_public"`
	AccountManagerID *uuid.UUID      `gorm:"type:uuid" json:"account_manager_id"`
	AccountManager   *Profile        `gorm:"foreignKey:AccountManagerID" json:"account_manager,omitempty"`
	SalesManagerID   *uuid.UUID      `gorm:"type:uuid" json:"sales_manager_id"`
	SalesManager     *Profile        `gorm:"foreignKey:SalesManagerID" json:"sales_manager,omitempty"`
	Status           string          `gorm:"type:varchar(20);not null;default:'in_negotiation';index" json:"status"`
	ExpiryDate       *time.Time      `json:"expiry_date"`
	References       []Reference     `gorm:"many2many:deal_references;" json:"references,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}
