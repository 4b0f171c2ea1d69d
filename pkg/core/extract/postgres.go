package extract

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

// obraSocialDGI is the fixed DGI obra social code reported for every legajo.
const obraSocialDGI = "000000"

// PostgresExtractor reads the Mapuche schema through the shared pgx pool.
type PostgresExtractor struct {
	pool *pgxpool.Pool

	// CodcReparto selects the reparto regime code used to derive the
	// régimen flag. Empty means "no reparto benefit configured".
	CodcReparto string
}

// NewPostgresExtractor creates an extractor backed by the given pool.
func NewPostgresExtractor(pool *pgxpool.Pool) *PostgresExtractor {
	return &PostgresExtractor{pool: pool, CodcReparto: "REPA"}
}

const legajosQuery = `
SELECT DISTINCT
    dh01.nro_legaj,
    dh01.nro_cuil1::text || LPAD(dh01.nro_cuil::text, 8, '0') || dh01.nro_cuil2::text AS cuil,
    dh01.desc_appat || ' ' || dh01.desc_nombr AS apnom,
    COALESCE(familiares.conyuge, 0) AS conyuge,
    COALESCE(familiares.hijos, 0) AS hijos,
    COALESCE(dha8.provincialocalidad, '') AS provincia_localidad,
    COALESCE(dha8.codigosituacion, 0) AS cod_situacion,
    COALESCE(dha8.codigocondicion, 0) AS cod_condicion,
    COALESCE(dha8.codigozona, 0) AS cod_zona,
    COALESCE(dha8.codigoactividad, 0) AS cod_actividad,
    COALESCE(dha8.porcaporteadicss, 0) AS porc_aporte_adicional,
    COALESCE(dha8.trabajador_convencionado, '') AS trabajador_convencionado,
    COALESCE(dha8.codigomodalcontrat, 0) AS cod_mod_contratacion,
    CASE WHEN dh09.codc_bprev = $3 OR dh09.fuerza_reparto OR ($3 = '' AND dh09.codc_bprev IS NULL)
         THEN '1' ELSE '0' END AS regimen,
    COALESCE(dh09.cant_cargo, 0) AS adherentes
FROM mapuche.dh01
LEFT JOIN (
    SELECT
        nro_legaj,
        COUNT(CASE WHEN codc_paren = 'CONY' THEN 1 END) AS conyuge,
        COUNT(CASE WHEN codc_paren IN ('HIJO', 'HIJN', 'HINC', 'HINN') THEN 1 END) AS hijos
    FROM mapuche.dh02
    WHERE sino_cargo != 'N'
    GROUP BY nro_legaj
) familiares ON familiares.nro_legaj = dh01.nro_legaj
LEFT OUTER JOIN mapuche.dha8 ON dha8.nro_legajo = dh01.nro_legaj
LEFT OUTER JOIN mapuche.dh09 ON dh09.nro_legaj = dh01.nro_legaj
WHERE dh01.nro_legaj IN (
    SELECT DISTINCT dh21.nro_legaj
    FROM mapuche.dh21
    INNER JOIN mapuche.dh22 ON dh22.nro_liqui = dh21.nro_liqui
    WHERE dh22.per_liano = $1 AND dh22.per_limes = $2 AND dh22.sino_genimp = true
)
AND ($4::integer IS NULL OR dh01.nro_legaj = $4)
ORDER BY dh01.nro_legaj`

const conceptosQuery = `
WITH tipos_grupos_conceptos AS (
    SELECT
        dh16.codn_conce,
        array_agg(DISTINCT dh15.codn_tipogrupo) AS tipos_grupos
    FROM mapuche.dh16
    INNER JOIN mapuche.dh15 ON dh15.codn_grupo = dh16.codn_grupo
    GROUP BY dh16.codn_conce
)
SELECT DISTINCT
    dh21.id_liquidacion,
    dh21.nro_legaj,
    dh21.codn_conce,
    dh21.impp_conce,
    COALESCE(dh21.nov1_conce, 0) AS cantidad,
    COALESCE(dh21.tipo_conce, '') AS tipo_conce,
    COALESCE(dh12.nro_orimp, 0) AS nro_orimp,
    COALESCE(tgc.tipos_grupos, ARRAY[]::integer[]) AS tipos_grupos,
    COALESCE(dh21.codigoescalafon, '') AS escalafon
FROM mapuche.dh21
INNER JOIN mapuche.dh22 ON dh22.nro_liqui = dh21.nro_liqui
LEFT JOIN mapuche.dh12 ON dh12.codn_conce = dh21.codn_conce
LEFT JOIN tipos_grupos_conceptos tgc ON tgc.codn_conce = dh21.codn_conce
WHERE dh22.per_liano = $1
AND dh22.per_limes = $2
AND dh22.sino_genimp = true
AND dh21.codn_conce > 0
AND ($3::integer IS NULL OR dh21.nro_legaj = $3)`

const otraActividadQuery = `
SELECT DISTINCT ON (nro_legaj)
    nro_legaj,
    COALESCE(importe, 0) AS importe_jubilatorio,
    COALESCE(importe_sac, 0) AS importe_otros
FROM mapuche.dhe9
WHERE nro_legaj = ANY($1)
ORDER BY nro_legaj, vig_ano DESC, vig_mes DESC`

const licenciasQuery = `
SELECT nro_legaj
FROM mapuche.licencias_tabla
WHERE nro_legaj = ANY($1)
AND ano_licencia = $2
AND mes_licencia = $3
GROUP BY nro_legaj`

const retroQuery = `
SELECT nro_legaj
FROM mapuche.dh21
WHERE nro_legaj = ANY($1)
AND ano_retro IS NOT NULL
AND mes_retro IS NOT NULL
GROUP BY nro_legaj
HAVING SUM(impp_conce) <> 0`

// Extract pulls the complete dataset for one period. Returns ErrNotFound when
// the period has no liquidated legajos.
func (e *PostgresExtractor) Extract(ctx context.Context, periodo model.FiscalPeriod, nroLegajo *int) (*model.Dataset, error) {
	if e.pool == nil {
		return nil, fmt.Errorf("pool de base de datos no configurado")
	}
	if err := periodo.Validate(); err != nil {
		return nil, err
	}

	var legajos []model.Legajo
	err := withRetry(ctx, "extracción de legajos", func() error {
		var err error
		legajos, err = e.fetchLegajos(ctx, periodo, nroLegajo)
		return err
	})
	if err != nil {
		return nil, err
	}
	if len(legajos) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, periodo)
	}

	var conceptos []model.Concepto
	err = withRetry(ctx, "extracción de conceptos", func() error {
		var err error
		conceptos, err = e.fetchConceptos(ctx, periodo, nroLegajo)
		return err
	})
	if err != nil {
		return nil, err
	}

	nros := make([]int, len(legajos))
	for i, l := range legajos {
		nros[i] = l.NroLegaj
	}

	var otra []model.OtraActividad
	err = withRetry(ctx, "extracción de otra actividad", func() error {
		var err error
		otra, err = e.fetchOtraActividad(ctx, nros)
		return err
	})
	if err != nil {
		return nil, err
	}

	var conLicencia, conRetro map[int]bool
	err = withRetry(ctx, "extracción de licencias", func() error {
		var err error
		conLicencia, err = e.fetchLegajoSet(ctx, licenciasQuery, nros, periodo.Year, periodo.Month)
		return err
	})
	if err != nil {
		return nil, err
	}
	err = withRetry(ctx, "extracción de retroactivos", func() error {
		var err error
		conRetro, err = e.fetchLegajoSet(ctx, retroQuery, nros)
		return err
	})
	if err != nil {
		return nil, err
	}

	obraSocial := make([]model.ObraSocialCode, len(legajos))
	for i := range legajos {
		legajos[i].Licencia = conLicencia[legajos[i].NroLegaj]
		legajos[i].Retro = conRetro[legajos[i].NroLegaj]
		obraSocial[i] = model.ObraSocialCode{NroLegaj: legajos[i].NroLegaj, CodOS: obraSocialDGI}
	}

	return &model.Dataset{
		Legajos:       legajos,
		Conceptos:     conceptos,
		OtraActividad: otra,
		ObraSocial:    obraSocial,
	}, nil
}

func (e *PostgresExtractor) fetchLegajos(ctx context.Context, periodo model.FiscalPeriod, nroLegajo *int) ([]model.Legajo, error) {
	rows, err := e.pool.Query(ctx, legajosQuery, periodo.Year, periodo.Month, e.CodcReparto, nroLegajo)
	if err != nil {
		return nil, fmt.Errorf("consulta de legajos: %w", err)
	}
	defer rows.Close()

	var legajos []model.Legajo
	for rows.Next() {
		var l model.Legajo
		var conyuge int
		var porc decimal.Decimal
		if err := rows.Scan(
			&l.NroLegaj, &l.Cuil, &l.Apnom,
			&conyuge, &l.Hijos,
			&l.ProvinciaLocalidad,
			&l.CodSituacion, &l.CodCondicion, &l.CodZona, &l.CodActividad,
			&porc, &l.TrabajadorConvencionado, &l.CodModContratacion,
			&l.Regimen, &l.Adherentes,
		); err != nil {
			return nil, fmt.Errorf("lectura de legajo: %w", err)
		}
		l.Conyuge = conyuge > 0
		l.PorcAporteAdicional = porc
		l.CodObraSocial = obraSocialDGI
		legajos = append(legajos, l)
	}
	return legajos, rows.Err()
}

func (e *PostgresExtractor) fetchConceptos(ctx context.Context, periodo model.FiscalPeriod, nroLegajo *int) ([]model.Concepto, error) {
	rows, err := e.pool.Query(ctx, conceptosQuery, periodo.Year, periodo.Month, nroLegajo)
	if err != nil {
		return nil, fmt.Errorf("consulta de conceptos: %w", err)
	}
	defer rows.Close()

	var conceptos []model.Concepto
	for rows.Next() {
		var c model.Concepto
		var idLiquidacion int64
		if err := rows.Scan(
			&idLiquidacion, &c.NroLegaj, &c.CodnConce,
			&c.ImppConce, &c.Cantidad, &c.TipoConce,
			&c.NroOrimp, &c.TiposGrupos, &c.Escalafon,
		); err != nil {
			return nil, fmt.Errorf("lectura de concepto: %w", err)
		}
		conceptos = append(conceptos, c)
	}
	return conceptos, rows.Err()
}

func (e *PostgresExtractor) fetchOtraActividad(ctx context.Context, nros []int) ([]model.OtraActividad, error) {
	rows, err := e.pool.Query(ctx, otraActividadQuery, nros)
	if err != nil {
		return nil, fmt.Errorf("consulta de otra actividad: %w", err)
	}
	defer rows.Close()

	var result []model.OtraActividad
	for rows.Next() {
		var oa model.OtraActividad
		if err := rows.Scan(&oa.NroLegaj, &oa.ImporteJubilatorio, &oa.ImporteOtros); err != nil {
			return nil, fmt.Errorf("lectura de otra actividad: %w", err)
		}
		result = append(result, oa)
	}
	return result, rows.Err()
}

// fetchLegajoSet runs a query returning one nro_legaj column and collects the
// result into a membership set.
func (e *PostgresExtractor) fetchLegajoSet(ctx context.Context, query string, nros []int, extra ...any) (map[int]bool, error) {
	args := append([]any{nros}, extra...)
	rows, err := e.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("consulta de marcas por legajo: %w", err)
	}
	defer rows.Close()

	set := make(map[int]bool)
	for rows.Next() {
		var nro int
		if err := rows.Scan(&nro); err != nil {
			return nil, fmt.Errorf("lectura de marca por legajo: %w", err)
		}
		set[nro] = true
	}
	return set, rows.Err()
}
