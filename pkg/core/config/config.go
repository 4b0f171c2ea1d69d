// Package config holds the SICOSS processing configuration and the database
// connection settings. SicossConfig is an immutable value: every stage takes
// it by value and a run never observes a change mid-flight.
package config

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrInvalidCapConfig marks a configuration rejected during pre-flight
// validation (negative caps).
var ErrInvalidCapConfig = errors.New("configuración de topes inválida")

// SicossConfig drives the whole computation. Caps are decimal pesos; the SAC
// caps derive from the base caps (half of each), mirroring the statutory rule.
type SicossConfig struct {
	TopeJubilatorioPatronal    decimal.Decimal
	TopeJubilatorioPersonal    decimal.Decimal
	TopeOtrosAportesPersonales decimal.Decimal
	TruncaTope                 bool

	CheckLicencias bool
	CheckRetro     bool
	CheckSinActivo bool

	AsignacionFamiliar      bool
	TrabajadorConvencionado string
	InformarBecarios        bool
	ARTConTope              bool
	ConceptosNoRemunEnART   bool

	PorcAporteAdicionalJubilacion decimal.Decimal

	// CategoriasDiferenciales is the activity-code membership of the
	// differential regime. It is input, never code.
	CategoriasDiferenciales []int
}

// Default returns the runtime defaults used when no yaml file overrides them.
func Default() SicossConfig {
	return SicossConfig{
		TopeJubilatorioPatronal:    decimal.NewFromInt(800000),
		TopeJubilatorioPersonal:    decimal.NewFromInt(600000),
		TopeOtrosAportesPersonales: decimal.NewFromInt(700000),
		TruncaTope:                 true,
		TrabajadorConvencionado:    "S",
		ARTConTope:                 true,
	}
}

// Validate rejects configurations the engine must not run with.
func (c SicossConfig) Validate() error {
	caps := []struct {
		name  string
		value decimal.Decimal
	}{
		{"tope_jubilatorio_patronal", c.TopeJubilatorioPatronal},
		{"tope_jubilatorio_personal", c.TopeJubilatorioPersonal},
		{"tope_otros_aportes_personales", c.TopeOtrosAportesPersonales},
	}
	for _, tope := range caps {
		if tope.value.IsNegative() {
			return fmt.Errorf("%w: %s = %s", ErrInvalidCapConfig, tope.name, tope.value)
		}
	}
	if c.PorcAporteAdicionalJubilacion.IsNegative() {
		return fmt.Errorf("%w: porc_aporte_adicional_jubilacion = %s",
			ErrInvalidCapConfig, c.PorcAporteAdicionalJubilacion)
	}
	return nil
}

// TopeSACJubilatorioPatronal is half the employer cap, applied to SAC.
func (c SicossConfig) TopeSACJubilatorioPatronal() decimal.Decimal {
	return c.TopeJubilatorioPatronal.Div(decimal.NewFromInt(2))
}

// TopeSACJubilatorioPersonal is half the personal cap, applied to SAC.
func (c SicossConfig) TopeSACJubilatorioPersonal() decimal.Decimal {
	return c.TopeJubilatorioPersonal.Div(decimal.NewFromInt(2))
}

// TopeSACOtrosAportes is half the other-contributions cap, applied to SAC.
func (c SicossConfig) TopeSACOtrosAportes() decimal.Decimal {
	return c.TopeOtrosAportesPersonales.Div(decimal.NewFromInt(2))
}

// EsCategoriaDiferencial reports whether an activity code belongs to the
// configured differential set.
func (c SicossConfig) EsCategoriaDiferencial(codActividad int) bool {
	for _, cod := range c.CategoriasDiferenciales {
		if cod == codActividad {
			return true
		}
	}
	return false
}
