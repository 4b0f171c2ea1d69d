// Package conceptos folds the liquidated concept stream into the wide
// per-employee row: explode by group tag, map each tag onto an aggregate
// column, sum, then derive the base remunerative columns.
package conceptos

import (
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

// Group tags carried by concepts (codn_tipogrupo in Mapuche).
const (
	GrupoSAC              = 1
	GrupoNoRemun          = 3
	GrupoHorasExtras      = 6
	GrupoZonaDesfavorable = 7
	GrupoVacaciones       = 8
	GrupoSACPorEscalafon  = 9
	GrupoPremios          = 21
	GrupoAdicionales      = 22
	GrupoBecario          = 24
	GrupoSeguroVida       = 45
	GrupoTipo91           = 91
	GrupoNoRemun96        = 96
)

// clasesInvestigador maps investigator group tags onto their statutory
// activity class. Any class at or above claseInvestigadorMin marks the row
// with investigator priority.
var clasesInvestigador = map[int]int{
	11: 38,
	12: 39,
	13: 40,
	14: 41,
	15: 42,
	48: 48,
	49: 49,
}

const claseInvestigadorMin = 38

// aplicarGrupo accumulates one exploded contribution onto the record.
// Returns false when the group tag is not part of the mapping.
func aplicarGrupo(rec *model.SicossRecord, grupo int, c model.Concepto) bool {
	if clase, ok := clasesInvestigador[grupo]; ok {
		rec.ImporteInvestigador = rec.ImporteInvestigador.Add(c.ImppConce)
		if clase > rec.PrioridadTipoDeActividad {
			rec.PrioridadTipoDeActividad = clase
		}
		return true
	}

	switch grupo {
	case GrupoSAC:
		rec.ImporteSAC = rec.ImporteSAC.Add(c.ImppConce)
	case GrupoNoRemun:
		rec.ImporteNoRemun = rec.ImporteNoRemun.Add(c.ImppConce)
	case GrupoHorasExtras:
		rec.ImporteHorasExtras = rec.ImporteHorasExtras.Add(c.ImppConce)
		rec.CantidadHorasExtras += int(c.Cantidad.IntPart())
	case GrupoZonaDesfavorable:
		rec.ImporteZonaDesfavorable = rec.ImporteZonaDesfavorable.Add(c.ImppConce)
	case GrupoVacaciones:
		rec.ImporteVacaciones = rec.ImporteVacaciones.Add(c.ImppConce)
	case GrupoSACPorEscalafon:
		rec.ImporteSAC = rec.ImporteSAC.Add(c.ImppConce)
		switch c.Escalafon {
		case model.EscalafonDocente:
			rec.ImporteSACDoce = rec.ImporteSACDoce.Add(c.ImppConce)
		case model.EscalafonAutoridad:
			rec.ImporteSACAuto = rec.ImporteSACAuto.Add(c.ImppConce)
		case model.EscalafonNoDocente:
			rec.ImporteSACNoDocente = rec.ImporteSACNoDocente.Add(c.ImppConce)
		}
	case GrupoPremios:
		rec.ImportePremios = rec.ImportePremios.Add(c.ImppConce)
	case GrupoAdicionales:
		rec.ImporteAdicionales = rec.ImporteAdicionales.Add(c.ImppConce)
	case GrupoBecario:
		rec.ImporteImponibleBecario = rec.ImporteImponibleBecario.Add(c.ImppConce)
	case GrupoSeguroVida:
		rec.ImporteSeguroVida = rec.ImporteSeguroVida.Add(c.ImppConce)
	case GrupoTipo91:
		rec.ImporteTipo91 = rec.ImporteTipo91.Add(c.ImppConce)
	case GrupoNoRemun96:
		rec.ImporteNoRemun96 = rec.ImporteNoRemun96.Add(c.ImppConce)
	default:
		return false
	}
	return true
}

// remunerativos lists the aggregate columns that compose Remuner78805.
func remunerativos(rec *model.SicossRecord) []decimal.Decimal {
	return []decimal.Decimal{
		rec.ImporteSAC,
		rec.ImporteHorasExtras,
		rec.ImporteZonaDesfavorable,
		rec.ImporteVacaciones,
		rec.ImportePremios,
		rec.ImporteAdicionales,
		rec.ImporteImponibleBecario,
	}
}
