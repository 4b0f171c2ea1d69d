package model

import "github.com/shopspring/decimal"

// Escalafón codes carried by concept rows. Group 9 (SAC) splits by escalafón
// into the docente/autoridad/no-docente SAC buckets.
const (
	EscalafonDocente   = "DOCE"
	EscalafonAutoridad = "AUTO"
	EscalafonNoDocente = "NODO"
)

// Legajo is one employee row as extracted from the HR store for a period.
type Legajo struct {
	NroLegaj int    `json:"nro_legaj"`
	Cuil     string `json:"cuil"`
	Apnom    string `json:"apnom"`

	CodSituacion       int    `json:"cod_situacion"`
	CodCondicion       int    `json:"cod_condicion"`
	CodActividad       int    `json:"cod_actividad"`
	CodZona            int    `json:"cod_zona"`
	CodModContratacion int    `json:"cod_mod_contratacion"`
	CodObraSocial      string `json:"cod_obra_social"`
	Regimen            string `json:"regimen"`

	Conyuge    bool `json:"conyuge"`
	Hijos      int  `json:"hijos"`
	Adherentes int  `json:"adherentes"`

	Licencia bool `json:"licencia"`
	// Retro marks a legajo whose only liquidated amounts belong to
	// retroactive periods (no current activity this period).
	Retro bool `json:"retro"`

	TrabajadorConvencionado string `json:"trabajador_convencionado"`
	ProvinciaLocalidad      string `json:"provincia_localidad"`

	PorcAporteAdicional decimal.Decimal `json:"porc_aporte_adicional"`
}

// Concepto is one liquidated pay line item. A concept participates in zero or
// more classification groups (TiposGrupos); the consolidator explodes the row
// once per group tag.
type Concepto struct {
	NroLegaj    int             `json:"nro_legaj"`
	CodnConce   int             `json:"codn_conce"`
	ImppConce   decimal.Decimal `json:"impp_conce"`
	Cantidad    decimal.Decimal `json:"cantidad"`
	TiposGrupos []int           `json:"tipos_grupos"`
	TipoConce   string          `json:"tipo_conce"`
	NroOrimp    int             `json:"nro_orimp"`
	Escalafon   string          `json:"escalafon,omitempty"`
}

// OtraActividad carries contributions already made at another employer, which
// are credited against this employer's personal caps.
type OtraActividad struct {
	NroLegaj           int             `json:"nro_legaj"`
	ImporteJubilatorio decimal.Decimal `json:"importe_jubilatorio"`
	ImporteOtros       decimal.Decimal `json:"importe_otros"`
}

// ObraSocialCode associates a legajo with its DGI obra social code.
type ObraSocialCode struct {
	NroLegaj int    `json:"nro_legaj"`
	CodOS    string `json:"cod_os"`
}

// Dataset is the full extraction for one fiscal period.
type Dataset struct {
	Legajos       []Legajo
	Conceptos     []Concepto
	OtraActividad []OtraActividad
	ObraSocial    []ObraSocialCode
}
