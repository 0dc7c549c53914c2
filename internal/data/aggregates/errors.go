package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	domainagg "github.com/yungbote/atlas-backend/internal/domain/aggregates"
)

var (
	// ErrValidation indicates caller input validation failure.
	ErrValidation = errors.New("aggregate validation")
	// ErrInvariant indicates invariant rule violation.
	ErrInvariant = errors.New("aggregate invariant violation")
	// ErrConflict indicates a uniqueness or concurrency conflict.
	ErrConflict = errors.New("aggregate conflict")
	// ErrPrecondition indicates the write is blocked by dependent rows.
	ErrPrecondition = errors.New("aggregate precondition failed")
	// ErrRetryable indicates transient retryable failure.
	ErrRetryable = errors.New("aggregate retryable")
)

// ValidationError tags an error as validation failure.
func ValidationError(msg string) error {
	return errors.Join(ErrValidation, errors.New(strings.TrimSpace(msg)))
}

// InvariantError tags an error as invariant violation.
func InvariantError(msg string) error {
	return errors.Join(ErrInvariant, errors.New(strings.TrimSpace(msg)))
}

// ConflictError tags an error as conflict failure.
func ConflictError(msg string) error {
	return errors.Join(ErrConflict, errors.New(strings.TrimSpace(msg)))
}

// PreconditionError tags an error as blocked by dependent state.
func PreconditionError(msg string) error {
	return errors.Join(ErrPrecondition, errors.New(strings.TrimSpace(msg)))
}

// RetryableError tags an error as retryable failure.
func RetryableError(msg string) error {
	return errors.Join(ErrRetryable, errors.New(strings.TrimSpace(msg)))
}

// MapError maps infrastructure/domain failures into aggregate error codes.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*domainagg.Error); ok {
		return err
	}
	switch {
	case errors.Is(err, ErrValidation):
		return domainagg.NewError(domainagg.CodeValidation, op, tagMessage(err, ErrValidation), err)
	case errors.Is(err, ErrInvariant):
		return domainagg.NewError(domainagg.CodeInvariantViolation, op, tagMessage(err, ErrInvariant), err)
	case errors.Is(err, ErrConflict):
		return domainagg.NewError(domainagg.CodeConflict, op, tagMessage(err, ErrConflict), err)
	case errors.Is(err, ErrPrecondition):
		return domainagg.NewError(domainagg.CodePreconditionFailed, op, tagMessage(err, ErrPrecondition), err)
	case errors.Is(err, ErrRetryable):
		return domainagg.NewError(domainagg.CodeRetryable, op, tagMessage(err, ErrRetryable), err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domainagg.Wrap(domainagg.CodeNotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	}
	var aggErr *domainagg.Error
	if errors.As(err, &aggErr) {
		return domainagg.NewError(aggErr.Code, op, aggErr.Message, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return domainagg.Wrap(domainagg.CodeConflict, op, err) // unique_violation
		case "23503":
			return domainagg.Wrap(domainagg.CodePreconditionFailed, op, err) // foreign_key_violation
		case "40001", "40P01", "55P03":
			return domainagg.Wrap(domainagg.CodeRetryable, op, err) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(strings.TrimSpace(err.Error()))
	switch {
	case strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "unique constraint failed"),
		strings.Contains(msg, "already exists"):
		return domainagg.Wrap(domainagg.CodeConflict, op, err)
	case strings.Contains(msg, "foreign key constraint failed"):
		return domainagg.Wrap(domainagg.CodePreconditionFailed, op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "sqlite_busy"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "temporar"):
		return domainagg.Wrap(domainagg.CodeRetryable, op, err)
	default:
		return domainagg.Wrap(domainagg.CodeInternal, op, err)
	}
}

// tagMessage strips the sentinel line errors.Join adds so callers see only the detail.
func tagMessage(err, sentinel error) string {
	msg := err.Error()
	prefix := sentinel.Error() + "\n"
	if strings.HasPrefix(msg, prefix) {
		return strings.TrimSpace(strings.TrimPrefix(msg, prefix))
	}
	return msg
}
