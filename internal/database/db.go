package database

import (
	"log"

	"refstack/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.Organization{},
		&model.OrganizationInvite{},
		&model.Profile{},
		&model.RefreshToken{},
		&model.Company{},
		&model.ContactPerson{},
		&model.Reference{},
		&model.Approval{},
		&model.Deal{},
		&model.Favorite{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	// At most one open approval per reference. A partial unique index closes
	// the check-then-act window an application-level lookup leaves open.
	if err := db.Exec(
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_approvals_one_pending
		 ON approvals (reference_id) WHERE status = 'pending'`,
	).Error; err != nil {
		log.Println("WARNING: Failed to create pending-approval index:", err)
	}

	return db, nil
}
