// Package extract pulls the per-period inputs out of the Mapuche HR schema:
// legajos, liquidated concepts, other-employer activity and obra social codes.
package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"sicoss_backend/pkg/core/model"
)

// ErrNotFound is returned when a period (or a requested legajo) has no data.
// Callers treat it as an empty-but-successful extraction, not a failure.
var ErrNotFound = errors.New("sin datos para el período solicitado")

// ExtractorSet produces the full dataset for one fiscal period. The optional
// nroLegajo narrows the extraction to a single employee.
type ExtractorSet interface {
	Extract(ctx context.Context, periodo model.FiscalPeriod, nroLegajo *int) (*model.Dataset, error)
}

const (
	maxRetries   = 3
	retryBackoff = 500 * time.Millisecond
)

// withRetry runs fn up to maxRetries times with exponential backoff. Only
// transient failures are retried; context cancellation and permanent query
// errors abort immediately.
func withRetry(ctx context.Context, what string, fn func() error) error {
	var err error
	backoff := retryBackoff
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		if !esTransitorio(err) {
			return err
		}
		if attempt < maxRetries {
			fmt.Printf("[EXTRACT] %s falló (intento %d/%d): %v\n", what, attempt, maxRetries, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("%s agotó los reintentos: %w", what, err)
}

// esTransitorio reports whether an error is worth retrying: connection drops,
// serialization aborts and resource shortages. A permanent SQL error (syntax,
// missing relation, permissions) surfaces at once.
func esTransitorio(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if len(pgErr.Code) < 2 {
			return false
		}
		switch pgErr.Code[:2] {
		case "08", "40", "53", "57":
			return true
		}
		return false
	}
	// Sin SQLSTATE asumimos una falla de red.
	return true
}
