package aggregate

import (
	"testing"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

func monto(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func registros() []model.SicossRecord {
	return []model.SicossRecord{
		{
			NroLegaj:                 1,
			ImporteBruto:             monto("550000.00"),
			Remuner78805:             monto("500000.00"),
			ImporteImponible1:        monto("500000.00"),
			ImporteImponiblePatronal: monto("500000.00"),
			ImporteImponible4:        monto("500000.00"),
			ImporteImponible5:        monto("500000.00"),
			ImporteImponible9:        monto("500000.00"),
			ImporteNoRemun:           monto("50000.00"),
		},
		{
			NroLegaj:                 2,
			ImporteBruto:             monto("100000.00"),
			Remuner78805:             monto("100000.00"),
			ImporteImponible1:        monto("100000.00"),
			ImporteImponiblePatronal: monto("100000.00"),
			ImporteImponible4:        monto("90000.00"),
			ImporteImponible5:        monto("100000.00"),
			ImporteImponible9:        monto("90000.00"),
			ImporteSAC:               monto("10000.00"),
		},
		{
			NroLegaj:          3,
			ImporteBruto:      monto("940000.00"),
			Remuner78805:      monto("900000.00"),
			ImporteImponible4: monto("800000.00"),
			ImporteImponible5: monto("900000.00"),
			ImporteNoRemun:    monto("40000.00"),
			ImporteSAC:        monto("100000.00"),
		},
	}
}

func TestSum(t *testing.T) {
	total := Sum(registros())

	if !total.Bruto.Equal(monto("1590000.00")) {
		t.Errorf("bruto = %s, se esperaba 1590000.00", total.Bruto)
	}
	if !total.Imponible1.Equal(monto("600000.00")) {
		t.Errorf("imponible_1 = %s, se esperaba 600000.00", total.Imponible1)
	}
	if !total.Imponible8.Equal(monto("1500000.00")) {
		t.Errorf("imponible_8 = %s, se esperaba 1500000.00", total.Imponible8)
	}
	if !total.SAC.Equal(monto("110000.00")) {
		t.Errorf("sac = %s, se esperaba 110000.00", total.SAC)
	}
	if !total.NoRemun.Equal(monto("90000.00")) {
		t.Errorf("no_remun = %s, se esperaba 90000.00", total.NoRemun)
	}
}

func TestMergeEsInvarianteALaParticion(t *testing.T) {
	recs := registros()
	completo := Sum(recs)

	// Cualquier partición en shards debe producir el mismo total.
	particiones := [][][]model.SicossRecord{
		{recs[:1], recs[1:]},
		{recs[:2], recs[2:]},
		{recs[:1], recs[1:2], recs[2:]},
		{recs[2:], recs[:2]},
	}

	for i, shards := range particiones {
		var total Totals
		for _, shard := range shards {
			total.Merge(Sum(shard))
		}
		if !total.Bruto.Equal(completo.Bruto) ||
			!total.Imponible1.Equal(completo.Imponible1) ||
			!total.Imponible4.Equal(completo.Imponible4) ||
			!total.Imponible9.Equal(completo.Imponible9) ||
			!total.SAC.Equal(completo.SAC) ||
			!total.NoRemun.Equal(completo.NoRemun) {
			t.Errorf("partición %d produjo totales distintos", i)
		}
	}
}

func TestConservacionDeMasa(t *testing.T) {
	total := Sum(registros())
	esperado := total.Imponible8.Add(total.NoRemun)
	if !total.Bruto.Equal(esperado) {
		t.Errorf("bruto %s != remunerativo %s + no_remun %s", total.Bruto, total.Imponible8, total.NoRemun)
	}
}
