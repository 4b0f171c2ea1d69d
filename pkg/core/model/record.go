package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// SicossRecord is the wide per-employee output row. It is built by the
// consolidator from the concept stream, enriched by the calculator, capped by
// the topes engine and finally mapped onto suc.afip_mapuche_sicoss by the
// store. Monetary fields default to zero; none of them is ever nil.
type SicossRecord struct {
	// Identity
	PeriodoFiscal string `json:"periodo_fiscal"`
	NroLegaj      int    `json:"nro_legaj"`
	Cuil          string `json:"cuil"`
	Apnom         string `json:"apnom"`

	// Family
	Conyuge        bool `json:"conyuge"`
	CantHijos      int  `json:"cant_hijos"`
	CantAdherentes int  `json:"cant_adh"`

	// Classification
	CodSituacion       int             `json:"cod_situacion"`
	CodCondicion       int             `json:"cod_cond"`
	CodActividad       int             `json:"cod_act"`
	CodZona            int             `json:"cod_zona"`
	PorcAporte         decimal.Decimal `json:"porc_aporte"`
	CodModContratacion int             `json:"cod_mod_cont"`
	CodObraSocial      string          `json:"cod_os"`
	Regimen            string          `json:"regimen"`
	ProvinciaLocalidad string          `json:"prov"`

	// Consolidated concept aggregates
	ImporteSAC              decimal.Decimal `json:"sac"`
	ImporteSACDoce          decimal.Decimal `json:"sac_doce"`
	ImporteSACAuto          decimal.Decimal `json:"sac_auto"`
	ImporteSACNoDocente     decimal.Decimal `json:"sac_no_docente"`
	ImporteHorasExtras      decimal.Decimal `json:"horas_extras"`
	CantidadHorasExtras     int             `json:"nro_horas_ext"`
	ImporteZonaDesfavorable decimal.Decimal `json:"zona_desfav"`
	ImporteVacaciones       decimal.Decimal `json:"vacaciones"`
	ImportePremios          decimal.Decimal `json:"premios"`
	ImporteAdicionales      decimal.Decimal `json:"adicionales"`
	ImporteNoRemun          decimal.Decimal `json:"cpto_no_remun"`
	ImporteImponibleBecario decimal.Decimal `json:"imponible_becario"`
	ImporteSeguroVida       decimal.Decimal `json:"seguro_vida"`
	ImporteInvestigador     decimal.Decimal `json:"importe_investigador"`
	ImporteTipo91           decimal.Decimal `json:"importe_tipo_91"`
	ImporteNoRemun96        decimal.Decimal `json:"no_remun_96"`

	// Derived bases
	Remuner78805             decimal.Decimal `json:"rem_dec_788"`
	ImporteImponiblePatronal decimal.Decimal `json:"imponible_patronal"`
	ImporteSACPatronal       decimal.Decimal `json:"sac_patronal"`
	ImporteImponibleSinSAC   decimal.Decimal `json:"imponible_sin_sac"`
	ImporteBruto             decimal.Decimal `json:"rem_total"`
	ImporteImponible1        decimal.Decimal `json:"rem_impo1"`
	ImporteImponible4        decimal.Decimal `json:"rem_impo4"`
	ImporteImponible5        decimal.Decimal `json:"rem_impo5"`
	ImporteImponible6        decimal.Decimal `json:"rem_impo6"`
	ImporteImponible9        decimal.Decimal `json:"rem_impo9"`
	AsignacionesFamiliares   decimal.Decimal `json:"asig_fam_pag"`

	// Other-employer contributions credited against personal caps
	OtraActividadJubilatorio decimal.Decimal `json:"otra_actividad_jubilatorio"`
	OtraActividadOtros       decimal.Decimal `json:"otra_actividad_otros"`

	// Categoric fields
	TipoDeOperacion          int    `json:"tipo_oper"`
	PrioridadTipoDeActividad int    `json:"prioridad_tipo_actividad"`
	TrabajadorConvencionado  string `json:"convencionado"`

	// Situación de revista
	SitRev1        int `json:"sit_rev1"`
	DiaIniSitRev1  int `json:"dia_ini_sit_rev1"`
	SitRev2        int `json:"sit_rev2"`
	DiaIniSitRev2  int `json:"dia_ini_sit_rev2"`
	SitRev3        int `json:"sit_rev3"`
	DiaIniSitRev3  int `json:"dia_ini_sit_rev3"`
	DiasTrabajados int `json:"cant_dias_trab"`

	// Processing state
	Licencia        bool     `json:"licencia"`
	Retro           bool     `json:"retro"`
	TopesObservados []string `json:"topes_observados,omitempty"`
	Valido          bool     `json:"valido"`
	MotivoRechazo   string   `json:"motivo_rechazo,omitempty"`

	// Metadata stamps
	FechaProcesamiento  time.Time `json:"fecha_procesamiento"`
	VersionSistema      string    `json:"version_sistema"`
	MetodoProcesamiento string    `json:"metodo_procesamiento"`
}
