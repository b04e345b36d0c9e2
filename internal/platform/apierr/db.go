package apierr

import (
	"context"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// FromDB classifies persistence failures.
func FromDB(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return err
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return New(CodeNotFound, op, "record not found", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Unavailable(op, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		code := strings.TrimSpace(pgErr.Code)
		switch {
		case code == "23505", code == "23503", code == "23502", code == "22P02":
			// unique, foreign key, not null, invalid text representation
			return New(CodeValidation, op, pgErr.Message, err)
		case strings.HasPrefix(code, "08"), code == "57P01", code == "53300":
			return Unavailable(op, err)
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return Unavailable(op, err)
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "connection refused") || strings.Contains(msg, "database is locked") {
		return Unavailable(op, err)
	}
	return New(CodeInternal, op, err.Error(), err)
}
