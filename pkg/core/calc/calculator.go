// Package calc computes the secondary imponible bases and the config-driven
// flags on each consolidated row. Pure per-employee function: no row depends
// on any other.
package calc

import (
	"time"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/model"
)

// pisoInvestigador is the statutory floor for Imponible 6 on investigator rows.
var pisoInvestigador = decimal.RequireFromString("69290.19")

// claseInvestigadorMin: activity classes at or above this value carry the
// investigator regime.
const claseInvestigadorMin = 38

// Asignaciones familiares per dependent, in pesos.
var (
	asignacionPorHijo    = decimal.NewFromInt(1000)
	asignacionPorConyuge = decimal.NewFromInt(500)
)

// Situación de revista 13: licencia sin goce de haberes.
const situacionLicenciaSinGoce = 13

// Calculator enriches consolidated rows with derived bases, revista defaults
// and processing metadata.
type Calculator struct {
	Config  config.SicossConfig
	Version string
	Metodo  string
}

// NewCalculator builds a calculator for one run.
func NewCalculator(cfg config.SicossConfig, version, metodo string) *Calculator {
	return &Calculator{Config: cfg, Version: version, Metodo: metodo}
}

// Calculate fills the derived fields of rec in place.
func (c *Calculator) Calculate(rec *model.SicossRecord) {
	rec.ImporteImponible4 = rec.ImporteImponibleSinSAC
	rec.ImporteImponible5 = rec.Remuner78805

	if c.esInvestigador(rec) {
		rec.ImporteImponible6 = rec.ImporteInvestigador
		if rec.ImporteImponible6.LessThan(pisoInvestigador) {
			rec.ImporteImponible6 = pisoInvestigador
		}
		rec.TipoDeOperacion = 2
	} else {
		rec.ImporteImponible6 = decimal.Zero
		rec.TipoDeOperacion = 1
	}

	rec.ImporteImponible9 = rec.ImporteImponible4

	if c.Config.AsignacionFamiliar {
		rec.AsignacionesFamiliares = asignacionPorHijo.Mul(decimal.NewFromInt(int64(rec.CantHijos)))
		if rec.Conyuge {
			rec.AsignacionesFamiliares = rec.AsignacionesFamiliares.Add(asignacionPorConyuge)
		}
	} else {
		rec.AsignacionesFamiliares = decimal.Zero
	}

	if rec.TrabajadorConvencionado == "" {
		rec.TrabajadorConvencionado = c.Config.TrabajadorConvencionado
	}
	if rec.PorcAporte.IsZero() {
		rec.PorcAporte = c.Config.PorcAporteAdicionalJubilacion
	}

	c.situacionRevista(rec)

	rec.FechaProcesamiento = time.Now()
	rec.VersionSistema = c.Version
	rec.MetodoProcesamiento = c.Metodo
}

// esInvestigador reports whether the row carries the investigator regime.
func (c *Calculator) esInvestigador(rec *model.SicossRecord) bool {
	return rec.PrioridadTipoDeActividad >= claseInvestigadorMin
}

// situacionRevista fills the three revista slots. Default is the employee's
// situación from day 1 with a full 30-day month; an unpaid leave replaces it
// with situación 13 and zero worked days when licencia checking is on.
func (c *Calculator) situacionRevista(rec *model.SicossRecord) {
	rec.SitRev1 = rec.CodSituacion
	rec.DiaIniSitRev1 = 1
	rec.SitRev2 = 0
	rec.DiaIniSitRev2 = 0
	rec.SitRev3 = 0
	rec.DiaIniSitRev3 = 0
	rec.DiasTrabajados = 30

	// Solo se estampa la terna de revista; la situación extraída del legajo
	// se conserva tal cual llegó.
	if c.Config.CheckLicencias && rec.Licencia && rec.Remuner78805.IsZero() {
		rec.SitRev1 = situacionLicenciaSinGoce
		rec.DiasTrabajados = 0
	}
}
