// Package topes applies the statutory caps and the differential-category rule
// to the remunerative bases. The engine walks a fixed state machine per
// employee: Open → CappedPatronal → CappedPersonal → CappedOtros → Final.
package topes

import (
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/model"
)

// Cap names recorded on the row when a cap fires (or would fire, in
// report-only mode).
const (
	TopeJubilatorioPatronal  = "tope_jubilatorio_patronal"
	TopeJubilatorioPersonal  = "tope_jubilatorio_personal"
	TopeOtrosAportes         = "tope_otros_aportes_personales"
	TopeCategoriaDiferencial = "categoria_diferencial"
)

var (
	topeAbsoluto = decimal.NewFromInt(50_000_000)

	bandaImponible4 = decimal.RequireFromString("1.10")
	bandaART        = decimal.RequireFromString("1.05")
)

type estado int

const (
	estadoOpen estado = iota
	estadoCappedPatronal
	estadoCappedPersonal
	estadoCappedOtros
	estadoFinal
)

// Engine holds the validated cap configuration for one run.
type Engine struct {
	cfg config.SicossConfig
}

// NewEngine validates the cap configuration and builds the engine. A negative
// cap is fatal (config.ErrInvalidCapConfig).
func NewEngine(cfg config.SicossConfig) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{cfg: cfg}, nil
}

// Apply runs the cap state machine over one row in place. With trunca_tope
// off, caps are recorded in TopesObservados but no base is modified; the
// differential-category rule still zeroes rem_impo1 either way.
func (e *Engine) Apply(rec *model.SicossRecord) {
	for st := estadoOpen; st != estadoFinal; {
		switch st {
		case estadoOpen:
			e.toparPatronal(rec)
			st = estadoCappedPatronal
		case estadoCappedPatronal:
			e.toparPersonal(rec)
			st = estadoCappedPersonal
		case estadoCappedPersonal:
			e.toparOtrosAportes(rec)
			st = estadoCappedOtros
		case estadoCappedOtros:
			e.aplicarCategoriaDiferencial(rec)
			st = estadoFinal
		}
	}

	e.ajustesFinales(rec)
}

// toparPatronal caps the employer base: SAC and non-SAC parts share T_JP.
func (e *Engine) toparPatronal(rec *model.SicossRecord) {
	tope := e.cfg.TopeJubilatorioPatronal
	if !rec.ImporteImponiblePatronal.GreaterThan(tope) {
		return
	}
	rec.TopesObservados = append(rec.TopesObservados, TopeJubilatorioPatronal)
	if !e.cfg.TruncaTope {
		return
	}

	sacTopado := decimal.Min(rec.ImporteSACPatronal, tope)
	sinSACTopado := decimal.Min(rec.ImporteImponibleSinSAC, tope.Sub(sacTopado))
	if sinSACTopado.IsNegative() {
		sinSACTopado = decimal.Zero
	}
	rec.ImporteSACPatronal = sacTopado
	rec.ImporteImponibleSinSAC = sinSACTopado
	rec.ImporteImponiblePatronal = sacTopado.Add(sinSACTopado)
	rec.ImporteImponible1 = decimal.Min(rec.ImporteImponible1, rec.ImporteImponiblePatronal)
}

// toparPersonal caps rem_impo1 against T_JPer, net of contributions already
// made at another employer.
func (e *Engine) toparPersonal(rec *model.SicossRecord) {
	margen := e.cfg.TopeJubilatorioPersonal.Sub(rec.OtraActividadJubilatorio)
	if !rec.ImporteImponible1.GreaterThan(margen) {
		return
	}
	rec.TopesObservados = append(rec.TopesObservados, TopeJubilatorioPersonal)
	if !e.cfg.TruncaTope {
		return
	}

	if margen.IsNegative() {
		margen = decimal.Zero
	}
	rec.ImporteImponible1 = margen
}

// toparOtrosAportes caps rem_impo4 against T_OA, net of other-employer
// contributions.
func (e *Engine) toparOtrosAportes(rec *model.SicossRecord) {
	if !rec.ImporteImponible4.Add(rec.OtraActividadOtros).GreaterThan(e.cfg.TopeOtrosAportesPersonales) {
		return
	}
	rec.TopesObservados = append(rec.TopesObservados, TopeOtrosAportes)
	if !e.cfg.TruncaTope {
		return
	}

	margen := e.cfg.TopeOtrosAportesPersonales.Sub(rec.OtraActividadOtros)
	if margen.IsNegative() {
		margen = decimal.Zero
	}
	rec.ImporteImponible4 = margen
}

// aplicarCategoriaDiferencial zeroes rem_impo1 for differential-regime rows.
// SAC, non-remunerative amounts and rem_impo4..9 keep their values.
func (e *Engine) aplicarCategoriaDiferencial(rec *model.SicossRecord) {
	if !e.esDiferencial(rec) {
		return
	}
	rec.TopesObservados = append(rec.TopesObservados, TopeCategoriaDiferencial)
	rec.ImporteImponible1 = decimal.Zero
}

// esDiferencial is the differential-category membership predicate.
func (e *Engine) esDiferencial(rec *model.SicossRecord) bool {
	// Investigator amounts on a row the investigator regime did not claim:
	// they contribute through rem_impo6, never through rem_impo1.
	if !rec.ImporteInvestigador.IsZero() && rec.TipoDeOperacion == 1 {
		return true
	}
	if e.cfg.EsCategoriaDiferencial(rec.CodActividad) {
		return true
	}
	if e.cfg.CheckSinActivo && rec.ImporteImponible1.IsZero() && !rec.Remuner78805.IsZero() {
		return true
	}
	return false
}

// ajustesFinales re-establishes the consistency bands after the caps settled.
func (e *Engine) ajustesFinales(rec *model.SicossRecord) {
	if e.cfg.TruncaTope {
		// rem_impo4 may exceed its band against rem_impo5 after
		// other-employer credits were applied.
		if rec.ImporteImponible4.GreaterThan(rec.ImporteImponible5.Mul(bandaImponible4)) {
			rec.ImporteImponible4 = rec.ImporteImponible5
		}
	}

	if e.cfg.ARTConTope {
		// Con ART topada la base sigue a rem_impo4 ya truncado.
		rec.ImporteImponible9 = decimal.Min(rec.ImporteImponible9, rec.ImporteImponible4)
	}
	if e.cfg.ConceptosNoRemunEnART {
		rec.ImporteImponible9 = rec.ImporteImponible9.Add(rec.ImporteNoRemun)
	}
	// La banda del 5% sobre rem_impo4 liga a toda fila de salida, cualquiera
	// sea la configuración de ART.
	rec.ImporteImponible9 = decimal.Min(rec.ImporteImponible9, rec.ImporteImponible4.Mul(bandaART))

	clampMonetarios(rec)
	// Clamping can touch the gross components on reversal-heavy rows;
	// rem_total stays the sum of its parts.
	rec.ImporteBruto = rec.Remuner78805.Add(rec.ImporteNoRemun)
}

// clampMonetarios clamps every monetary output into [0, 5·10^7].
func clampMonetarios(rec *model.SicossRecord) {
	for _, imp := range []*decimal.Decimal{
		&rec.ImporteSAC, &rec.ImporteSACDoce, &rec.ImporteSACAuto, &rec.ImporteSACNoDocente,
		&rec.ImporteHorasExtras, &rec.ImporteZonaDesfavorable, &rec.ImporteVacaciones,
		&rec.ImportePremios, &rec.ImporteAdicionales, &rec.ImporteNoRemun,
		&rec.ImporteImponibleBecario, &rec.ImporteSeguroVida, &rec.ImporteInvestigador,
		&rec.ImporteTipo91, &rec.ImporteNoRemun96,
		&rec.Remuner78805, &rec.ImporteImponiblePatronal, &rec.ImporteSACPatronal,
		&rec.ImporteImponibleSinSAC, &rec.ImporteBruto,
		&rec.ImporteImponible1, &rec.ImporteImponible4, &rec.ImporteImponible5,
		&rec.ImporteImponible6, &rec.ImporteImponible9,
		&rec.AsignacionesFamiliares,
	} {
		if imp.IsNegative() {
			*imp = decimal.Zero
		} else if imp.GreaterThan(topeAbsoluto) {
			*imp = topeAbsoluto
		}
	}
}
