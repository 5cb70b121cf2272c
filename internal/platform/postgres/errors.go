package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/synaptic/study-engine/internal/store"
)

// PostgreSQL error codes
const (
	uniqueViolationCode      = "23505"
	foreignKeyViolationCode  = "23503"
	checkViolationCode       = "23514"
	notNullViolationCode     = "23502"
	serializationFailureCode = "40001"
	deadlockDetectedCode     = "40P01"
)

// missingParents maps foreign keys to the error for the row they point at,
// so a write against a vanished card or exam reads as "not found".
var missingParents = map[string]error{
	"review_events_card_id_fkey":          store.ErrCardNotFound,
	"assessment_attempts_exam_id_fkey":    store.ErrExamNotFound,
	"readiness_snapshots_exam_id_fkey":    store.ErrExamNotFound,
	"study_plans_exam_id_fkey":            store.ErrExamNotFound,
	"study_plans_curriculum_id_fkey":      store.ErrCurriculumNotFound,
	"curriculum_weeks_curriculum_id_fkey": store.ErrCurriculumNotFound,
}

// MapError translates driver errors into store errors, keeping the original
// in the message.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %v", store.ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case uniqueViolationCode:
		return fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	case foreignKeyViolationCode:
		if parent, ok := missingParents[pgErr.ConstraintName]; ok {
			return fmt.Errorf("%w: %v", parent, err)
		}
		return fmt.Errorf("%w: foreign key violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case checkViolationCode:
		return fmt.Errorf("%w: check constraint violation (%s): %v", store.ErrInvalidEntity, pgErr.ConstraintName, err)
	case notNullViolationCode:
		return fmt.Errorf("%w: not null violation (%s): %v", store.ErrInvalidEntity, pgErr.ColumnName, err)
	case serializationFailureCode, deadlockDetectedCode:
		// Retryable: the whole transaction can be run again.
		return fmt.Errorf("%w: %v", store.ErrTransactionFailed, err)
	}
	return err
}

// CheckRowsAffected returns notFound (store.ErrNotFound when nil) if result
// touched no rows.
func CheckRowsAffected(result sql.Result, notFound error) error {
	if result == nil {
		return errors.New("nil result provided to CheckRowsAffected")
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if notFound == nil {
		return store.ErrNotFound
	}
	return notFound
}
