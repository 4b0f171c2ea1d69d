// Package validate decides, per employee, whether a computed row reaches the
// persister. Every exclusion carries a reason code.
package validate

import (
	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/model"
)

// Exclusion reason codes stored in MotivoRechazo.
const (
	MotivoLicenciaSinHaberes = "licencia_sin_haberes"
	MotivoRetroSinActividad  = "retro_sin_actividad"
	MotivoSinImponible       = "sin_importes_imponibles"
	MotivoBecarioNoInformado = "becario_no_informado"
)

// Situaciones de revista que se declaran siempre, aun sin haberes: maternidad
// (5 y 11) y reserva de puesto (14).
var situacionesProtegidas = map[int]bool{
	5:  true,
	11: true,
	14: true,
}

// Validator applies the inclusion predicate.
type Validator struct {
	cfg config.SicossConfig
}

// NewValidator builds a validator for one run.
func NewValidator(cfg config.SicossConfig) *Validator {
	return &Validator{cfg: cfg}
}

// Validate stamps Valido and MotivoRechazo on the row.
func (v *Validator) Validate(rec *model.SicossRecord) {
	rec.Valido = true
	rec.MotivoRechazo = ""

	if situacionesProtegidas[rec.CodSituacion] {
		return
	}

	sinRemunerativos := rec.ImporteImponible1.IsZero() &&
		rec.ImporteImponible4.IsZero() &&
		rec.ImporteSAC.IsZero()

	// Una fila cuyo único contenido remunerativo es la beca solo se declara
	// cuando la configuración pide informar becarios.
	soloBecario := !rec.ImporteImponibleBecario.IsZero() &&
		rec.ImporteImponibleBecario.Equal(rec.Remuner78805)

	switch {
	case v.cfg.CheckLicencias && rec.Licencia && sinRemunerativos && rec.Remuner78805.IsZero():
		rec.Valido = false
		rec.MotivoRechazo = MotivoLicenciaSinHaberes
	case v.cfg.CheckRetro && rec.Retro && rec.Remuner78805.IsZero() && rec.ImporteNoRemun.IsZero():
		rec.Valido = false
		rec.MotivoRechazo = MotivoRetroSinActividad
	case v.cfg.CheckSinActivo && sinRemunerativos:
		rec.Valido = false
		rec.MotivoRechazo = MotivoSinImponible
	case soloBecario && !v.cfg.InformarBecarios:
		rec.Valido = false
		rec.MotivoRechazo = MotivoBecarioNoInformado
	}
}

// Filter splits the record set into included rows, keeping input order.
// Excluded rows stay in the original slice with Valido=false.
func (v *Validator) Filter(records []model.SicossRecord) []model.SicossRecord {
	incluidos := make([]model.SicossRecord, 0, len(records))
	for i := range records {
		v.Validate(&records[i])
		if records[i].Valido {
			incluidos = append(incluidos, records[i])
		}
	}
	return incluidos
}
