package postgres

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
)

// newMockDB returns a sqlx handle with dollar bind vars backed by sqlmock.
func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlx.NewDb(db, DriverName), mock
}

var cardColumnNames = []string{
	"id", "learner_id", "topic", "source_document_id", "front", "back",
	"ease_factor", "interval_days", "repetitions", "maturity_tier",
	"times_reviewed", "times_correct", "last_reviewed_at", "next_review_at",
	"created_at", "updated_at",
}
