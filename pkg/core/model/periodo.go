// Package model defines the core data types shared by every stage of the
// SICOSS pipeline: the fiscal period, the extracted inputs (legajos,
// conceptos, otra actividad, obra social) and the wide output record.
package model

import (
	"fmt"
	"strconv"
)

// FiscalPeriod identifies one SICOSS run. Canonical string form is YYYYMM.
type FiscalPeriod struct {
	Year  int
	Month int
}

var mesesES = [12]string{
	"Enero", "Febrero", "Marzo", "Abril", "Mayo", "Junio",
	"Julio", "Agosto", "Septiembre", "Octubre", "Noviembre", "Diciembre",
}

// ParseFiscalPeriod parses a YYYYMM string ("202501") into a FiscalPeriod.
func ParseFiscalPeriod(s string) (FiscalPeriod, error) {
	if len(s) != 6 {
		return FiscalPeriod{}, fmt.Errorf("periodo fiscal inválido %q: se espera formato YYYYMM", s)
	}
	year, err := strconv.Atoi(s[:4])
	if err != nil {
		return FiscalPeriod{}, fmt.Errorf("periodo fiscal inválido %q: año no numérico", s)
	}
	month, err := strconv.Atoi(s[4:6])
	if err != nil {
		return FiscalPeriod{}, fmt.Errorf("periodo fiscal inválido %q: mes no numérico", s)
	}
	p := FiscalPeriod{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return FiscalPeriod{}, err
	}
	return p, nil
}

// Validate checks the period is a plausible SICOSS period.
func (p FiscalPeriod) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("mes inválido %d: debe estar entre 1 y 12", p.Month)
	}
	if p.Year < 1900 || p.Year > 9999 {
		return fmt.Errorf("año inválido %d", p.Year)
	}
	return nil
}

// String returns the canonical YYYYMM form.
func (p FiscalPeriod) String() string {
	return fmt.Sprintf("%04d%02d", p.Year, p.Month)
}

// DisplayName returns the period for human consumption, e.g. "Enero 2025".
func (p FiscalPeriod) DisplayName() string {
	if p.Month >= 1 && p.Month <= 12 {
		return fmt.Sprintf("%s %d", mesesES[p.Month-1], p.Year)
	}
	return fmt.Sprintf("Mes %d %d", p.Month, p.Year)
}

// Key returns the period as a single integer (YYYYMM). Used as the
// advisory-lock key that serializes concurrent runs for the same period.
func (p FiscalPeriod) Key() int64 {
	return int64(p.Year)*100 + int64(p.Month)
}

// Before reports whether p precedes other in time.
func (p FiscalPeriod) Before(other FiscalPeriod) bool {
	return p.Key() < other.Key()
}
