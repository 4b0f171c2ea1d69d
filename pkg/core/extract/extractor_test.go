package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestWithRetryErrorPermanente(t *testing.T) {
	intentos := 0
	err := withRetry(context.Background(), "consulta", func() error {
		intentos++
		return &pgconn.PgError{Code: "42P01", Message: "no existe la relación"}
	})

	if err == nil {
		t.Fatal("un error permanente debe devolverse")
	}
	if intentos != 1 {
		t.Errorf("intentos = %d, un error de consulta no se reintenta", intentos)
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "42P01" {
		t.Errorf("el error debe conservar el SQLSTATE original: %v", err)
	}
}

func TestWithRetryErrorTransitorio(t *testing.T) {
	intentos := 0
	err := withRetry(context.Background(), "consulta", func() error {
		intentos++
		if intentos < 2 {
			return &pgconn.PgError{Code: "40001", Message: "serialization failure"}
		}
		return nil
	})

	if err != nil {
		t.Fatalf("el reintento debía recuperarse: %v", err)
	}
	if intentos != 2 {
		t.Errorf("intentos = %d, se esperaban 2", intentos)
	}
}

func TestWithRetryErrorDeRed(t *testing.T) {
	// Una falla sin SQLSTATE se trata como caída de conexión y agota los
	// reintentos.
	intentos := 0
	err := withRetry(context.Background(), "consulta", func() error {
		intentos++
		return errors.New("connection refused")
	})

	if err == nil {
		t.Fatal("agotar los reintentos devuelve el último error")
	}
	if intentos != maxRetries {
		t.Errorf("intentos = %d, se esperaban %d", intentos, maxRetries)
	}
}

func TestWithRetryCancelacion(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	intentos := 0
	err := withRetry(ctx, "consulta", func() error {
		intentos++
		return ctx.Err()
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("la cancelación debe propagarse: %v", err)
	}
	if intentos != 1 {
		t.Errorf("intentos = %d, la cancelación no se reintenta", intentos)
	}
}

func TestEsTransitorio(t *testing.T) {
	testCases := []struct {
		code        string
		transitorio bool
	}{
		{"08006", true},  // connection failure
		{"40001", true},  // serialization failure
		{"53300", true},  // too many connections
		{"57P01", true},  // admin shutdown
		{"42601", false}, // syntax error
		{"42P01", false}, // undefined table
		{"23505", false}, // unique violation
	}

	for _, tc := range testCases {
		err := &pgconn.PgError{Code: tc.code}
		if got := esTransitorio(err); got != tc.transitorio {
			t.Errorf("esTransitorio(%s) = %v, se esperaba %v", tc.code, got, tc.transitorio)
		}
	}
}
