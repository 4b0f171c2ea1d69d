package conceptos

import (
	"errors"
	"fmt"

	"sicoss_backend/pkg/core/model"
)

// ErrConsolidationIncomplete marks a consolidated row whose derived base
// columns do not add up. The run is fatal; nothing is persisted.
var ErrConsolidationIncomplete = errors.New("consolidación incompleta")

// Consolidator folds concepts into per-employee wide rows.
type Consolidator struct {
	// gruposIgnorados records unknown group tags already reported, so each
	// unmapped tag is logged once per run.
	gruposIgnorados map[int]bool
}

// NewConsolidator creates a consolidator.
func NewConsolidator() *Consolidator {
	return &Consolidator{gruposIgnorados: make(map[int]bool)}
}

// Consolidate builds one record per legajo, in legajo order. Employees with
// no concepts get all-zero aggregates. Negative amounts (reversals) flow
// through the sums unchanged.
func (c *Consolidator) Consolidate(periodo model.FiscalPeriod, ds *model.Dataset) ([]model.SicossRecord, error) {
	porLegajo := make(map[int]*model.SicossRecord, len(ds.Legajos))
	records := make([]model.SicossRecord, len(ds.Legajos))

	for i, l := range ds.Legajos {
		records[i] = model.SicossRecord{
			PeriodoFiscal:           periodo.String(),
			NroLegaj:                l.NroLegaj,
			Cuil:                    l.Cuil,
			Apnom:                   l.Apnom,
			Conyuge:                 l.Conyuge,
			CantHijos:               l.Hijos,
			CantAdherentes:          l.Adherentes,
			CodSituacion:            l.CodSituacion,
			CodCondicion:            l.CodCondicion,
			CodActividad:            l.CodActividad,
			CodZona:                 l.CodZona,
			PorcAporte:              l.PorcAporteAdicional,
			CodModContratacion:      l.CodModContratacion,
			CodObraSocial:           l.CodObraSocial,
			Regimen:                 l.Regimen,
			ProvinciaLocalidad:      l.ProvinciaLocalidad,
			TrabajadorConvencionado: l.TrabajadorConvencionado,
			Licencia:                l.Licencia,
			Retro:                   l.Retro,
		}
		porLegajo[l.NroLegaj] = &records[i]
	}

	for _, os := range ds.ObraSocial {
		if rec, ok := porLegajo[os.NroLegaj]; ok && os.CodOS != "" {
			rec.CodObraSocial = os.CodOS
		}
	}
	for _, oa := range ds.OtraActividad {
		if rec, ok := porLegajo[oa.NroLegaj]; ok {
			rec.OtraActividadJubilatorio = oa.ImporteJubilatorio
			rec.OtraActividadOtros = oa.ImporteOtros
		}
	}

	for _, concepto := range ds.Conceptos {
		rec, ok := porLegajo[concepto.NroLegaj]
		if !ok {
			// Concept for a legajo outside the extraction scope.
			continue
		}
		for _, grupo := range concepto.TiposGrupos {
			if !aplicarGrupo(rec, grupo, concepto) && !c.gruposIgnorados[grupo] {
				c.gruposIgnorados[grupo] = true
				fmt.Printf("[CONSOLIDAR] grupo de conceptos desconocido %d, se ignora\n", grupo)
			}
		}
	}

	for i := range records {
		derivarBases(&records[i])
		if err := verificar(&records[i]); err != nil {
			return nil, err
		}
	}

	return records, nil
}

// derivarBases computes the deterministic base columns from the aggregates.
func derivarBases(rec *model.SicossRecord) {
	total := rec.Remuner78805
	for _, imp := range remunerativos(rec) {
		total = total.Add(imp)
	}
	rec.Remuner78805 = total
	rec.ImporteImponiblePatronal = rec.Remuner78805
	rec.ImporteSACPatronal = rec.ImporteSAC
	rec.ImporteImponibleSinSAC = rec.ImporteImponiblePatronal.Sub(rec.ImporteSACPatronal)
	rec.ImporteBruto = rec.ImporteImponiblePatronal.Add(rec.ImporteNoRemun)
	rec.ImporteImponible1 = rec.Remuner78805
}

// verificar re-checks the derived identities after consolidation.
func verificar(rec *model.SicossRecord) error {
	suma := rec.ImporteSACPatronal.Add(rec.ImporteImponibleSinSAC)
	if !suma.Equal(rec.ImporteImponiblePatronal) {
		return fmt.Errorf("%w: legajo %d: patronal %s != sac %s + sin_sac %s",
			ErrConsolidationIncomplete, rec.NroLegaj,
			rec.ImporteImponiblePatronal, rec.ImporteSACPatronal, rec.ImporteImponibleSinSAC)
	}
	bruto := rec.Remuner78805.Add(rec.ImporteNoRemun)
	if !bruto.Equal(rec.ImporteBruto) {
		return fmt.Errorf("%w: legajo %d: bruto %s != remunerativo %s + no_remun %s",
			ErrConsolidationIncomplete, rec.NroLegaj,
			rec.ImporteBruto, rec.Remuner78805, rec.ImporteNoRemun)
	}
	return nil
}
