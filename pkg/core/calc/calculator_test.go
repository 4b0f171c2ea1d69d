package calc

import (
	"testing"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/model"
)

func monto(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculateBasesSecundarias(t *testing.T) {
	rec := model.SicossRecord{
		NroLegaj:               1,
		Remuner78805:           monto("500000.00"),
		ImporteImponibleSinSAC: monto("400000.00"),
	}

	NewCalculator(config.Default(), "1.0.0", "pipeline_go").Calculate(&rec)

	if !rec.ImporteImponible4.Equal(monto("400000.00")) {
		t.Errorf("ImporteImponible4 = %s, se esperaba 400000.00", rec.ImporteImponible4)
	}
	if !rec.ImporteImponible5.Equal(monto("500000.00")) {
		t.Errorf("ImporteImponible5 = %s, se esperaba 500000.00", rec.ImporteImponible5)
	}
	if !rec.ImporteImponible9.Equal(rec.ImporteImponible4) {
		t.Errorf("ImporteImponible9 = %s, debe partir de ImporteImponible4", rec.ImporteImponible9)
	}
	if rec.TipoDeOperacion != 1 {
		t.Errorf("TipoDeOperacion = %d, se esperaba 1", rec.TipoDeOperacion)
	}
	if !rec.ImporteImponible6.IsZero() {
		t.Errorf("ImporteImponible6 = %s, debe ser cero sin régimen de investigador", rec.ImporteImponible6)
	}
}

func TestCalculatePisoInvestigador(t *testing.T) {
	// Clase 38 con suma por debajo del piso estatutario.
	rec := model.SicossRecord{
		NroLegaj:                 2,
		ImporteInvestigador:      monto("20000.00"),
		PrioridadTipoDeActividad: 38,
	}

	NewCalculator(config.Default(), "1.0.0", "pipeline_go").Calculate(&rec)

	if !rec.ImporteImponible6.Equal(monto("69290.19")) {
		t.Errorf("ImporteImponible6 = %s, se esperaba el piso 69290.19", rec.ImporteImponible6)
	}
	if rec.TipoDeOperacion != 2 {
		t.Errorf("TipoDeOperacion = %d, se esperaba 2", rec.TipoDeOperacion)
	}
}

func TestCalculateInvestigadorSobreElPiso(t *testing.T) {
	rec := model.SicossRecord{
		NroLegaj:                 3,
		ImporteInvestigador:      monto("100000.00"),
		PrioridadTipoDeActividad: 49,
	}

	NewCalculator(config.Default(), "1.0.0", "pipeline_go").Calculate(&rec)

	if !rec.ImporteImponible6.Equal(monto("100000.00")) {
		t.Errorf("ImporteImponible6 = %s, se esperaba 100000.00", rec.ImporteImponible6)
	}
}

func TestCalculateAsignacionesFamiliares(t *testing.T) {
	cfg := config.Default()
	cfg.AsignacionFamiliar = true

	rec := model.SicossRecord{NroLegaj: 4, CantHijos: 3, Conyuge: true}
	NewCalculator(cfg, "1.0.0", "pipeline_go").Calculate(&rec)

	if !rec.AsignacionesFamiliares.Equal(monto("3500")) {
		t.Errorf("AsignacionesFamiliares = %s, se esperaba 3500", rec.AsignacionesFamiliares)
	}

	// Con la asignación apagada el monto es siempre cero.
	cfg.AsignacionFamiliar = false
	rec2 := model.SicossRecord{NroLegaj: 5, CantHijos: 3, Conyuge: true}
	NewCalculator(cfg, "1.0.0", "pipeline_go").Calculate(&rec2)
	if !rec2.AsignacionesFamiliares.IsZero() {
		t.Errorf("AsignacionesFamiliares = %s, se esperaba 0", rec2.AsignacionesFamiliares)
	}
}

func TestCalculateSituacionRevista(t *testing.T) {
	rec := model.SicossRecord{NroLegaj: 6, CodSituacion: 1}
	NewCalculator(config.Default(), "1.0.0", "pipeline_go").Calculate(&rec)

	if rec.SitRev1 != 1 || rec.DiaIniSitRev1 != 1 {
		t.Errorf("revista por defecto incorrecta: sit %d, día %d", rec.SitRev1, rec.DiaIniSitRev1)
	}
	if rec.DiasTrabajados != 30 {
		t.Errorf("DiasTrabajados = %d, se esperaba 30", rec.DiasTrabajados)
	}
}

func TestCalculateLicenciaSinGoce(t *testing.T) {
	cfg := config.Default()
	cfg.CheckLicencias = true

	rec := model.SicossRecord{NroLegaj: 7, CodSituacion: 1, Licencia: true}
	NewCalculator(cfg, "1.0.0", "pipeline_go").Calculate(&rec)

	if rec.SitRev1 != 13 {
		t.Errorf("SitRev1 = %d, se esperaba 13 (licencia sin goce)", rec.SitRev1)
	}
	if rec.DiasTrabajados != 0 {
		t.Errorf("DiasTrabajados = %d, se esperaba 0", rec.DiasTrabajados)
	}
	// La situación extraída del legajo no se pisa: solo cambia la revista.
	if rec.CodSituacion != 1 {
		t.Errorf("CodSituacion = %d, la clasificación extraída debe conservarse", rec.CodSituacion)
	}

	// Con haberes la licencia no cambia la revista.
	rec2 := model.SicossRecord{NroLegaj: 8, CodSituacion: 1, Licencia: true, Remuner78805: monto("1000.00")}
	NewCalculator(cfg, "1.0.0", "pipeline_go").Calculate(&rec2)
	if rec2.SitRev1 != 1 || rec2.DiasTrabajados != 30 {
		t.Errorf("licencia con haberes no debe cambiar la revista: sit %d, días %d",
			rec2.SitRev1, rec2.DiasTrabajados)
	}
}

func TestCalculatePassthroughDeConfig(t *testing.T) {
	cfg := config.Default()
	cfg.PorcAporteAdicionalJubilacion = monto("2.00")

	rec := model.SicossRecord{NroLegaj: 9}
	NewCalculator(cfg, "1.2.3", "pipeline_go").Calculate(&rec)

	if rec.TrabajadorConvencionado != "S" {
		t.Errorf("TrabajadorConvencionado = %q, se esperaba el valor por defecto S", rec.TrabajadorConvencionado)
	}
	if !rec.PorcAporte.Equal(monto("2.00")) {
		t.Errorf("PorcAporte = %s, se esperaba 2.00", rec.PorcAporte)
	}
	if rec.VersionSistema != "1.2.3" || rec.MetodoProcesamiento != "pipeline_go" {
		t.Errorf("metadata incompleta: %q / %q", rec.VersionSistema, rec.MetodoProcesamiento)
	}
	if rec.FechaProcesamiento.IsZero() {
		t.Error("FechaProcesamiento sin estampar")
	}
}
