// Package aggregate reduces the surviving record set into the run totals.
// The reduction is associative and order-independent, so shards computed in
// parallel merge into the same result.
package aggregate

import (
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

// Totals is the per-run totals block reported by the API and logged after
// each run. Imponible2 mirrors the employer base; Imponible8 the
// remunerative total.
type Totals struct {
	Bruto      decimal.Decimal `json:"bruto"`
	Imponible1 decimal.Decimal `json:"imponible_1"`
	Imponible2 decimal.Decimal `json:"imponible_2"`
	Imponible4 decimal.Decimal `json:"imponible_4"`
	Imponible5 decimal.Decimal `json:"imponible_5"`
	Imponible6 decimal.Decimal `json:"imponible_6"`
	Imponible8 decimal.Decimal `json:"imponible_8"`
	Imponible9 decimal.Decimal `json:"imponible_9"`
	SAC        decimal.Decimal `json:"sac"`
	NoRemun    decimal.Decimal `json:"no_remun"`
}

// Add accumulates one record into the totals.
func (t *Totals) Add(rec *model.SicossRecord) {
	t.Bruto = t.Bruto.Add(rec.ImporteBruto)
	t.Imponible1 = t.Imponible1.Add(rec.ImporteImponible1)
	t.Imponible2 = t.Imponible2.Add(rec.ImporteImponiblePatronal)
	t.Imponible4 = t.Imponible4.Add(rec.ImporteImponible4)
	t.Imponible5 = t.Imponible5.Add(rec.ImporteImponible5)
	t.Imponible6 = t.Imponible6.Add(rec.ImporteImponible6)
	t.Imponible8 = t.Imponible8.Add(rec.Remuner78805)
	t.Imponible9 = t.Imponible9.Add(rec.ImporteImponible9)
	t.SAC = t.SAC.Add(rec.ImporteSAC)
	t.NoRemun = t.NoRemun.Add(rec.ImporteNoRemun)
}

// Merge folds another partial total into t. Used to combine shard results.
func (t *Totals) Merge(other Totals) {
	t.Bruto = t.Bruto.Add(other.Bruto)
	t.Imponible1 = t.Imponible1.Add(other.Imponible1)
	t.Imponible2 = t.Imponible2.Add(other.Imponible2)
	t.Imponible4 = t.Imponible4.Add(other.Imponible4)
	t.Imponible5 = t.Imponible5.Add(other.Imponible5)
	t.Imponible6 = t.Imponible6.Add(other.Imponible6)
	t.Imponible8 = t.Imponible8.Add(other.Imponible8)
	t.Imponible9 = t.Imponible9.Add(other.Imponible9)
	t.SAC = t.SAC.Add(other.SAC)
	t.NoRemun = t.NoRemun.Add(other.NoRemun)
}

// Sum reduces a record slice. Only rows the validator kept should be passed.
func Sum(records []model.SicossRecord) Totals {
	var t Totals
	for i := range records {
		t.Add(&records[i])
	}
	return t
}
