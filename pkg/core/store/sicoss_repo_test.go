package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

func registroPersistible() model.SicossRecord {
	return model.SicossRecord{
		PeriodoFiscal:       "202501",
		NroLegaj:            1,
		Cuil:                "20123456789",
		Apnom:               "PEREZ JUAN",
		Remuner78805:        decimal.RequireFromString("500000.00"),
		ImporteImponible1:   decimal.RequireFromString("500000.00"),
		FechaProcesamiento:  time.Now(),
		VersionSistema:      "1.0.0",
		MetodoProcesamiento: "pipeline_go",
	}
}

func TestFilaSicossCompleta(t *testing.T) {
	rec := registroPersistible()
	fila, err := filaSicoss(0, &rec)
	if err != nil {
		t.Fatal(err)
	}
	if len(fila) != len(columnasSicoss) {
		t.Errorf("la fila tiene %d valores para %d columnas", len(fila), len(columnasSicoss))
	}
	for i, v := range fila {
		if v == nil {
			t.Errorf("columna %s sin valor", columnasSicoss[i])
		}
	}
}

func TestFilaSicossCuilInvalido(t *testing.T) {
	testCases := []string{
		"2012345678",   // 10 dígitos
		"201234567890", // 12 dígitos
		"20123A56789",  // no numérico
		"",
	}

	for _, cuil := range testCases {
		rec := registroPersistible()
		rec.Cuil = cuil
		_, err := filaSicoss(7, &rec)
		if err == nil {
			t.Errorf("cuil %q debía rechazarse", cuil)
			continue
		}
		var pe *PersistError
		if !errors.As(err, &pe) {
			t.Errorf("cuil %q: se esperaba PersistError, hay %T", cuil, err)
			continue
		}
		if pe.Fila != 7 || pe.Columna != "cuil" {
			t.Errorf("cuil %q: fila %d columna %q", cuil, pe.Fila, pe.Columna)
		}
	}
}

func TestFilaSicossSinPeriodo(t *testing.T) {
	rec := registroPersistible()
	rec.PeriodoFiscal = ""
	_, err := filaSicoss(0, &rec)
	var pe *PersistError
	if !errors.As(err, &pe) || pe.Columna != "periodo_fiscal" {
		t.Errorf("se esperaba PersistError sobre periodo_fiscal, hay %v", err)
	}
}

func TestFilaSicossTruncaApnom(t *testing.T) {
	rec := registroPersistible()
	rec.Apnom = strings.Repeat("A", 60)
	fila, err := filaSicoss(0, &rec)
	if err != nil {
		t.Fatal(err)
	}
	apnom, ok := fila[2].(string)
	if !ok || len(apnom) != 40 {
		t.Errorf("apnom debía truncarse a 40 caracteres, quedó %q", fila[2])
	}
}

func TestFilaSicossConvierteBanderas(t *testing.T) {
	rec := registroPersistible()
	rec.TrabajadorConvencionado = "S"
	rec.Regimen = "1"
	fila, err := filaSicoss(0, &rec)
	if err != nil {
		t.Fatal(err)
	}

	valores := make(map[string]any, len(fila))
	for i, col := range columnasSicoss {
		valores[col] = fila[i]
	}
	if valores["convencionado"] != 1 {
		t.Errorf("convencionado = %v, se esperaba 1", valores["convencionado"])
	}
	if valores["regimen"] != 1 {
		t.Errorf("regimen = %v, se esperaba 1", valores["regimen"])
	}
}

func TestFilaSicossMapeaBases(t *testing.T) {
	rec := registroPersistible()
	rec.ImporteImponiblePatronal = decimal.RequireFromString("450000.00")
	rec.ImporteImponible4 = decimal.RequireFromString("400000.00")
	rec.ImporteImponible9 = decimal.RequireFromString("420000.00")
	rec.ImporteTipo91 = decimal.RequireFromString("123.45")

	fila, err := filaSicoss(0, &rec)
	if err != nil {
		t.Fatal(err)
	}
	valores := make(map[string]any, len(fila))
	for i, col := range columnasSicoss {
		valores[col] = fila[i]
	}

	comparar := func(col, esperado string) {
		t.Helper()
		d, ok := valores[col].(decimal.Decimal)
		if !ok || !d.Equal(decimal.RequireFromString(esperado)) {
			t.Errorf("%s = %v, se esperaba %s", col, valores[col], esperado)
		}
	}
	comparar("rem_impo1", "500000.00")
	comparar("rem_impo2", "450000.00")
	comparar("rem_impo3", "450000.00")
	comparar("rem_impo4", "400000.00")
	comparar("rem_imp9", "420000.00")
	comparar("rem_imp7", "123.45")
	comparar("rem_dec_788", "500000.00")
}
