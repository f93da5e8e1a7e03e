package repository

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlRecorder captures the SQL GORM generates without touching a database.
type sqlRecorder struct {
	statements []string
}

func (r *sqlRecorder) LogMode(logger.LogLevel) logger.Interface { return r }

func (r *sqlRecorder) Info(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Warn(context.Context, string, ...interface{})  {}
func (r *sqlRecorder) Error(context.Context, string, ...interface{}) {}

func (r *sqlRecorder) Trace(_ context.Context, _ time.Time, fc func() (string, int64), _ error) {
	sql, _ := fc()
	if sql != "" {
		r.statements = append(r.statements, sql)
	}
}

func newDryRunDB(t *testing.T, rec *sqlRecorder) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		postgres.New(postgres.Config{DSN: "host=localhost user=refstack dbname=refstack sslmode=disable"}),
		&gorm.Config{DryRun: true, DisableAutomaticPing: true, Logger: rec},
	)
	require.NoError(t, err)
	return db
}

// The references table name is a reserved word in Postgres, so every
// hand-written column qualifier in the list query must be quoted.
func TestReferenceList_QuotesReservedTableName(t *testing.T) {
	rec := &sqlRecorder{}
	repo := NewReferenceRepository(newDryRunDB(t, rec))

	_, _, err := repo.List(context.Background(), uuid.New(), ReferenceFilter{
		Status: "draft",
		Search: "acme",
		Page:   1,
		Limit:  20,
	})

	require.NoError(t, err)
	require.NotEmpty(t, rec.statements)

	var sawFilter, sawJoin bool
	for _, stmt := range rec.statements {
		// An unquoted qualifier would be a bare reserved word.
		assert.NotContains(t, stmt, "references.organization_id")
		assert.NotContains(t, stmt, "references.status")
		assert.NotContains(t, stmt, "references.title")
		assert.NotContains(t, stmt, "references.company_id")
		assert.NotContains(t, stmt, "references.created_at")
		if containsAll(stmt, `"references".organization_id`, `"references".status`) {
			sawFilter = true
		}
		if containsAll(stmt, `LEFT JOIN companies ON companies.id = "references".company_id`) {
			sawJoin = true
		}
	}
	assert.True(t, sawFilter, "expected a statement filtering on quoted reference columns")
	assert.True(t, sawJoin, "expected the company search join with a quoted qualifier")
}

func containsAll(s string, parts ...string) bool {
	for _, p := range parts {
		if !strings.Contains(s, p) {
			return false
		}
	}
	return true
}
