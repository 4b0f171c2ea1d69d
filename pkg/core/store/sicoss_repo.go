package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/model"
)

// TablaSicoss is the reporting table the run writes into.
const TablaSicoss = "suc.afip_mapuche_sicoss"

// chunkSize is the bulk-insert batch size.
const chunkSize = 1000

const (
	maxLenCuil  = 11
	maxLenApnom = 40
	maxLenProv  = 50
)

// PersistError points at the first row/column that failed validation or
// insertion. The whole transaction rolls back; no partial period is visible.
type PersistError struct {
	Fila    int
	Columna string
	Err     error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persistencia falló en fila %d, columna %s: %v", e.Fila, e.Columna, e.Err)
}

func (e *PersistError) Unwrap() error { return e.Err }

// SaveResult summarizes one persisted run.
type SaveResult struct {
	LegajosGuardados int           `json:"legajos_guardados"`
	Duracion         time.Duration `json:"duracion"`
	TablaDestino     string        `json:"tabla_destino"`
	Periodo          string        `json:"periodo"`
}

// SicossRepo persists computed rows. One transaction per run, serialized per
// period through an advisory lock on the period key.
type SicossRepo struct {
	pool *pgxpool.Pool

	// ReemplazarPeriodo deletes the period's previous rows inside the same
	// transaction before inserting, making re-runs idempotent.
	ReemplazarPeriodo bool
}

// NewSicossRepo creates a repository over the shared pool.
func NewSicossRepo(pool *pgxpool.Pool) *SicossRepo {
	return &SicossRepo{pool: pool, ReemplazarPeriodo: true}
}

// columnasSicoss is the authoritative wire format: core fields mapped onto
// the target columns, legacy NOT NULL columns padded with zero.
var columnasSicoss = []string{
	"periodo_fiscal", "cuil", "apnom",
	"conyuge", "cant_hijos", "cant_adh",
	"cod_situacion", "cod_cond", "cod_act", "cod_zona",
	"porc_aporte", "cod_mod_cont", "cod_os", "regimen", "prov",
	"rem_total", "rem_impo1", "asig_fam_pag",
	"aporte_vol", "imp_adic_os", "exc_aport_ss", "exc_aport_os",
	"rem_impo2", "rem_impo3", "rem_impo4", "rem_impo5", "rem_impo6",
	"cod_siniestrado", "marca_reduccion", "recomp_lrt", "tipo_empresa", "aporte_adic_os",
	"sit_rev1", "dia_ini_sit_rev1", "sit_rev2", "dia_ini_sit_rev2", "sit_rev3", "dia_ini_sit_rev3",
	"sueldo_adicc", "sac", "horas_extras", "zona_desfav", "vacaciones",
	"cant_dias_trab", "convencionado", "tipo_oper", "nro_horas_ext",
	"adicionales", "premios", "rem_dec_788", "rem_imp7", "cpto_no_remun",
	"maternidad", "rectificacion_remun", "rem_imp9", "contrib_dif",
	"hstrab", "seguro", "ley", "incsalarial", "remimp11",
	"fecha_procesamiento", "version_sistema", "metodo_procesamiento",
}

// Save validates and bulk-inserts the rows for one period.
func (r *SicossRepo) Save(ctx context.Context, periodo model.FiscalPeriod, records []model.SicossRecord) (*SaveResult, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("pool de base de datos no configurado")
	}
	inicio := time.Now()

	filas := make([][]any, len(records))
	for i := range records {
		fila, err := filaSicoss(i, &records[i])
		if err != nil {
			return nil, err
		}
		filas[i] = fila
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("no se pudo abrir la transacción: %w", err)
	}
	defer tx.Rollback(ctx)

	// Two runs for the same period must not interleave on the table.
	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", periodo.Key()); err != nil {
		return nil, fmt.Errorf("no se pudo serializar el período %s: %w", periodo, err)
	}

	if r.ReemplazarPeriodo {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf("DELETE FROM %s WHERE periodo_fiscal = $1", TablaSicoss),
			periodo.String()); err != nil {
			return nil, fmt.Errorf("no se pudo limpiar el período %s: %w", periodo, err)
		}
	}

	tabla := pgx.Identifier{"suc", "afip_mapuche_sicoss"}
	for desde := 0; desde < len(filas); desde += chunkSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		hasta := desde + chunkSize
		if hasta > len(filas) {
			hasta = len(filas)
		}
		if _, err := tx.CopyFrom(ctx, tabla, columnasSicoss, pgx.CopyFromRows(filas[desde:hasta])); err != nil {
			return nil, &PersistError{Fila: desde, Columna: "", Err: err}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("no se pudo confirmar la transacción: %w", err)
	}

	return &SaveResult{
		LegajosGuardados: len(records),
		Duracion:         time.Since(inicio),
		TablaDestino:     TablaSicoss,
		Periodo:          periodo.String(),
	}, nil
}

// filaSicoss validates one record and maps it onto the target column order.
func filaSicoss(idx int, rec *model.SicossRecord) ([]any, error) {
	if !esCuilValido(rec.Cuil) {
		return nil, &PersistError{
			Fila:    idx,
			Columna: "cuil",
			Err:     fmt.Errorf("cuil %q del legajo %d: se esperan exactamente 11 dígitos", rec.Cuil, rec.NroLegaj),
		}
	}
	if rec.PeriodoFiscal == "" {
		return nil, &PersistError{
			Fila:    idx,
			Columna: "periodo_fiscal",
			Err:     fmt.Errorf("legajo %d sin período fiscal", rec.NroLegaj),
		}
	}

	apnom := truncar(rec.Apnom, maxLenApnom)
	prov := truncar(rec.ProvinciaLocalidad, maxLenProv)

	convencionado := 0
	if rec.TrabajadorConvencionado == "S" {
		convencionado = 1
	}
	regimen := 0
	if rec.Regimen == "1" {
		regimen = 1
	}

	cero := decimal.Zero
	return []any{
		rec.PeriodoFiscal, rec.Cuil, apnom,
		rec.Conyuge, rec.CantHijos, rec.CantAdherentes,
		rec.CodSituacion, rec.CodCondicion, rec.CodActividad, rec.CodZona,
		rec.PorcAporte, rec.CodModContratacion, rec.CodObraSocial, regimen, prov,
		rec.ImporteBruto, rec.ImporteImponible1, rec.AsignacionesFamiliares,
		cero, cero, cero, cero,
		rec.ImporteImponiblePatronal, rec.ImporteImponiblePatronal,
		rec.ImporteImponible4, rec.ImporteImponible5, rec.ImporteImponible6,
		0, 0, cero, 0, cero,
		rec.SitRev1, rec.DiaIniSitRev1, rec.SitRev2, rec.DiaIniSitRev2, rec.SitRev3, rec.DiaIniSitRev3,
		cero, rec.ImporteSAC, rec.ImporteHorasExtras, rec.ImporteZonaDesfavorable, rec.ImporteVacaciones,
		rec.DiasTrabajados, convencionado, rec.TipoDeOperacion, rec.CantidadHorasExtras,
		rec.ImporteAdicionales, rec.ImportePremios, rec.Remuner78805, rec.ImporteTipo91, rec.ImporteNoRemun,
		cero, cero, rec.ImporteImponible9, cero,
		0, 0, cero, cero, cero,
		rec.FechaProcesamiento, rec.VersionSistema, rec.MetodoProcesamiento,
	}, nil
}

func esCuilValido(cuil string) bool {
	if len(cuil) != maxLenCuil {
		return false
	}
	for _, r := range cuil {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncar(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
