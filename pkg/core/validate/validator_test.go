package validate

import (
	"testing"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/model"
)

func monto(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestValidatorIncluyePorDefecto(t *testing.T) {
	v := NewValidator(config.Default())
	rec := model.SicossRecord{NroLegaj: 1, ImporteImponible1: monto("1000.00")}
	v.Validate(&rec)

	if !rec.Valido || rec.MotivoRechazo != "" {
		t.Errorf("el registro debía incluirse: valido=%v motivo=%q", rec.Valido, rec.MotivoRechazo)
	}
}

func TestValidatorExclusiones(t *testing.T) {
	testCases := []struct {
		name   string
		cfg    func() config.SicossConfig
		rec    model.SicossRecord
		motivo string
	}{
		{
			name: "licencia sin haberes",
			cfg: func() config.SicossConfig {
				c := config.Default()
				c.CheckLicencias = true
				return c
			},
			rec:    model.SicossRecord{NroLegaj: 1, Licencia: true},
			motivo: MotivoLicenciaSinHaberes,
		},
		{
			name: "retro sin actividad",
			cfg: func() config.SicossConfig {
				c := config.Default()
				c.CheckRetro = true
				return c
			},
			rec:    model.SicossRecord{NroLegaj: 2, Retro: true},
			motivo: MotivoRetroSinActividad,
		},
		{
			name: "sin importes imponibles",
			cfg: func() config.SicossConfig {
				c := config.Default()
				c.CheckSinActivo = true
				return c
			},
			rec:    model.SicossRecord{NroLegaj: 3},
			motivo: MotivoSinImponible,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := tc.rec
			NewValidator(tc.cfg()).Validate(&rec)
			if rec.Valido {
				t.Fatal("el registro debía excluirse")
			}
			if rec.MotivoRechazo != tc.motivo {
				t.Errorf("motivo = %q, se esperaba %q", rec.MotivoRechazo, tc.motivo)
			}
		})
	}
}

func TestValidatorChequeosApagados(t *testing.T) {
	// Con los chequeos apagados nada se excluye, ni siquiera filas en cero.
	v := NewValidator(config.Default())
	rec := model.SicossRecord{NroLegaj: 4, Licencia: true, Retro: true}
	v.Validate(&rec)
	if !rec.Valido {
		t.Errorf("con chequeos apagados el registro debía incluirse: motivo=%q", rec.MotivoRechazo)
	}
}

func TestValidatorSituacionesProtegidas(t *testing.T) {
	cfg := config.Default()
	cfg.CheckLicencias = true
	cfg.CheckSinActivo = true
	v := NewValidator(cfg)

	for _, situacion := range []int{5, 11, 14} {
		rec := model.SicossRecord{NroLegaj: 5, CodSituacion: situacion, Licencia: true}
		v.Validate(&rec)
		if !rec.Valido {
			t.Errorf("la situación %d se declara siempre, motivo=%q", situacion, rec.MotivoRechazo)
		}
	}
}

func TestValidatorLicenciaConSAC(t *testing.T) {
	cfg := config.Default()
	cfg.CheckLicencias = true

	// Una licencia con SAC liquidado se declara.
	rec := model.SicossRecord{NroLegaj: 6, Licencia: true, ImporteSAC: monto("5000.00"), Remuner78805: monto("5000.00")}
	NewValidator(cfg).Validate(&rec)
	if !rec.Valido {
		t.Errorf("licencia con haberes debía incluirse, motivo=%q", rec.MotivoRechazo)
	}
}

func TestValidatorBecarios(t *testing.T) {
	becario := func() model.SicossRecord {
		return model.SicossRecord{
			NroLegaj:                10,
			ImporteImponibleBecario: monto("30000.00"),
			Remuner78805:            monto("30000.00"),
			ImporteImponible1:       monto("30000.00"),
		}
	}

	// Sin informar_becarios la fila de beca pura se excluye.
	cfg := config.Default()
	rec := becario()
	NewValidator(cfg).Validate(&rec)
	if rec.Valido || rec.MotivoRechazo != MotivoBecarioNoInformado {
		t.Errorf("becario puro debía excluirse: valido=%v motivo=%q", rec.Valido, rec.MotivoRechazo)
	}

	cfg.InformarBecarios = true
	rec = becario()
	NewValidator(cfg).Validate(&rec)
	if !rec.Valido {
		t.Errorf("con informar_becarios la fila se declara, motivo=%q", rec.MotivoRechazo)
	}

	// Una fila mixta (beca + otros remunerativos) se declara siempre.
	cfg.InformarBecarios = false
	rec = becario()
	rec.Remuner78805 = monto("80000.00")
	NewValidator(cfg).Validate(&rec)
	if !rec.Valido {
		t.Errorf("fila mixta debía incluirse, motivo=%q", rec.MotivoRechazo)
	}
}

func TestValidatorFilter(t *testing.T) {
	cfg := config.Default()
	cfg.CheckSinActivo = true

	records := []model.SicossRecord{
		{NroLegaj: 1, ImporteImponible1: monto("100.00")},
		{NroLegaj: 2},
		{NroLegaj: 3, ImporteSAC: monto("50.00")},
	}

	validos := NewValidator(cfg).Filter(records)
	if len(validos) != 2 {
		t.Fatalf("se esperaban 2 válidos, hay %d", len(validos))
	}
	if validos[0].NroLegaj != 1 || validos[1].NroLegaj != 3 {
		t.Errorf("el filtro debe conservar el orden: %d, %d", validos[0].NroLegaj, validos[1].NroLegaj)
	}
	if records[1].Valido {
		t.Error("el legajo 2 debía quedar marcado como rechazado")
	}
}
