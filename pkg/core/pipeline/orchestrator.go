// Package pipeline drives one SICOSS run: extract, consolidate, calculate,
// cap, validate, aggregate and optionally persist. The per-employee stages
// run data-parallel over shards of the record set.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/aggregate"
	"sicoss_backend/pkg/core/calc"
	"sicoss_backend/pkg/core/conceptos"
	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/extract"
	"sicoss_backend/pkg/core/model"
	"sicoss_backend/pkg/core/store"
	"sicoss_backend/pkg/core/topes"
	"sicoss_backend/pkg/core/validate"
)

// Version reported in every processed row and API response.
const Version = "1.0.0"

const metodoProcesamiento = "pipeline_go"

// InvariantError reports a row that broke one of the post-stage consistency
// checks. The run is fatal and nothing is persisted.
type InvariantError struct {
	NroLegaj   int
	Invariante string
	Detalle    string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("invariante %s violada por legajo %d: %s", e.Invariante, e.NroLegaj, e.Detalle)
}

// Persister is the slice of the store the pipeline needs.
type Persister interface {
	Save(ctx context.Context, periodo model.FiscalPeriod, records []model.SicossRecord) (*store.SaveResult, error)
}

// Stats summarizes one run for the API's estadisticas block.
type Stats struct {
	TotalLegajos         int     `json:"total_legajos"`
	LegajosValidos       int     `json:"legajos_validos"`
	LegajosRechazados    int     `json:"legajos_rechazados"`
	PorcentajeAprobacion float64 `json:"porcentaje_aprobacion"`
	ConceptosProcesados  int     `json:"conceptos_procesados"`
}

// Result is the outcome of one run. Legajos holds only the rows the
// validator kept.
type Result struct {
	RunID    string               `json:"run_id"`
	Periodo  string               `json:"periodo"`
	Legajos  []model.SicossRecord `json:"legajos"`
	Totales  aggregate.Totals     `json:"totales"`
	Stats    Stats                `json:"estadisticas"`
	Guardado *store.SaveResult    `json:"guardado,omitempty"`
	Duracion time.Duration        `json:"duracion"`
}

// Orchestrator wires the stages for one deployment. Safe for concurrent runs
// over distinct periods.
type Orchestrator struct {
	Extractor extract.ExtractorSet
	Persister Persister
	Config    config.SicossConfig

	// Workers bounds the per-employee parallelism. Zero means NumCPU.
	Workers int
}

// NewOrchestrator builds an orchestrator with the given stages.
func NewOrchestrator(ex extract.ExtractorSet, p Persister, cfg config.SicossConfig) *Orchestrator {
	return &Orchestrator{Extractor: ex, Persister: p, Config: cfg}
}

// Run executes one full pipeline pass for the period. A period with no data
// yields an empty successful result. Cancellation surfaces as ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, periodo model.FiscalPeriod, nroLegajo *int, guardar bool) (*Result, error) {
	inicio := time.Now()
	runID := uuid.New().String()

	if err := periodo.Validate(); err != nil {
		return nil, err
	}
	if err := o.Config.Validate(); err != nil {
		return nil, err
	}

	fmt.Printf("[PIPELINE] run %s: período %s\n", runID, periodo.DisplayName())

	ds, err := o.Extractor.Extract(ctx, periodo, nroLegajo)
	if err != nil {
		if errors.Is(err, extract.ErrNotFound) {
			fmt.Printf("[PIPELINE] run %s: sin legajos para %s\n", runID, periodo)
			return &Result{RunID: runID, Periodo: periodo.String(), Duracion: time.Since(inicio)}, nil
		}
		return nil, fmt.Errorf("extracción del período %s: %w", periodo, err)
	}

	records, err := conceptos.NewConsolidator().Consolidate(periodo, ds)
	if err != nil {
		return nil, err
	}

	if err := o.procesarParalelo(ctx, records); err != nil {
		return nil, err
	}

	validador := validate.NewValidator(o.Config)
	validos := validador.Filter(records)

	totales, err := o.totalesPorShards(ctx, validos)
	if err != nil {
		return nil, err
	}

	stats := Stats{
		TotalLegajos:        len(records),
		LegajosValidos:      len(validos),
		LegajosRechazados:   len(records) - len(validos),
		ConceptosProcesados: len(ds.Conceptos),
	}
	if stats.TotalLegajos > 0 {
		stats.PorcentajeAprobacion = float64(stats.LegajosValidos) / float64(stats.TotalLegajos) * 100
	}

	result := &Result{
		RunID:   runID,
		Periodo: periodo.String(),
		Legajos: validos,
		Totales: totales,
		Stats:   stats,
	}

	if guardar && len(validos) > 0 {
		if o.Persister == nil {
			return nil, fmt.Errorf("se pidió guardar pero no hay persistencia configurada")
		}
		saved, err := o.Persister.Save(ctx, periodo, validos)
		if err != nil {
			return nil, err
		}
		result.Guardado = saved
	}

	result.Duracion = time.Since(inicio)
	fmt.Printf("[PIPELINE] run %s: %d legajos válidos de %d en %s\n",
		runID, stats.LegajosValidos, stats.TotalLegajos, result.Duracion)
	return result, nil
}

// procesarParalelo applies calculator, cap engine and invariant checks to
// each record, sharded across workers. Records have no cross dependencies.
func (o *Orchestrator) procesarParalelo(ctx context.Context, records []model.SicossRecord) error {
	engine, err := topes.NewEngine(o.Config)
	if err != nil {
		return err
	}
	calculadora := calc.NewCalculator(o.Config, Version, metodoProcesamiento)

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers == 0 {
		return nil
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	shard := (len(records) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		desde := w * shard
		hasta := desde + shard
		if hasta > len(records) {
			hasta = len(records)
		}
		wg.Add(1)
		go func(w, desde, hasta int) {
			defer wg.Done()
			for i := desde; i < hasta; i++ {
				if err := ctx.Err(); err != nil {
					errs[w] = err
					return
				}
				calculadora.Calculate(&records[i])
				engine.Apply(&records[i])
				if err := verificarInvariantes(&records[i], o.Config); err != nil {
					errs[w] = err
					return
				}
			}
		}(w, desde, hasta)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// totalesPorShards reduces the valid rows into run totals by merging partial
// shard sums. The merge order never changes the result.
func (o *Orchestrator) totalesPorShards(ctx context.Context, records []model.SicossRecord) (aggregate.Totals, error) {
	if err := ctx.Err(); err != nil {
		return aggregate.Totals{}, err
	}

	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(records) {
		workers = len(records)
	}
	if workers == 0 {
		return aggregate.Totals{}, nil
	}

	parciales := make([]aggregate.Totals, workers)
	shard := (len(records) + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		desde := w * shard
		hasta := desde + shard
		if hasta > len(records) {
			hasta = len(records)
		}
		wg.Add(1)
		go func(w, desde, hasta int) {
			defer wg.Done()
			parciales[w] = aggregate.Sum(records[desde:hasta])
		}(w, desde, hasta)
	}
	wg.Wait()

	var total aggregate.Totals
	for _, p := range parciales {
		total.Merge(p)
	}
	return total, nil
}

var (
	maximoMonetario  = decimal.NewFromInt(50_000_000)
	bandaImponible4  = decimal.RequireFromString("1.10")
	bandaART         = decimal.RequireFromString("1.05")
	pisoInvestigador = decimal.RequireFromString("69290.19")
)

// verificarInvariantes re-checks the row after calculator and caps. The
// remunerative identity only binds rows no cap touched.
func verificarInvariantes(rec *model.SicossRecord, cfg config.SicossConfig) error {
	if len(rec.TopesObservados) == 0 && !rec.ImporteImponible1.Equal(rec.Remuner78805) {
		return &InvariantError{rec.NroLegaj, "identidad_remunerativa",
			fmt.Sprintf("rem_impo1 %s != remunerativo %s", rec.ImporteImponible1, rec.Remuner78805)}
	}
	if !rec.ImporteBruto.Equal(rec.Remuner78805.Add(rec.ImporteNoRemun)) {
		return &InvariantError{rec.NroLegaj, "conservacion_bruto",
			fmt.Sprintf("rem_total %s != remunerativo %s + no_remun %s",
				rec.ImporteBruto, rec.Remuner78805, rec.ImporteNoRemun)}
	}
	if cfg.TruncaTope {
		if rec.ImporteImponible4.IsNegative() ||
			rec.ImporteImponible4.GreaterThan(rec.ImporteImponible5.Mul(bandaImponible4)) {
			return &InvariantError{rec.NroLegaj, "banda_imponible_4",
				fmt.Sprintf("rem_impo4 %s fuera de banda sobre rem_impo5 %s",
					rec.ImporteImponible4, rec.ImporteImponible5)}
		}
	}
	// La banda de ART liga a toda fila de salida, con cualquier configuración.
	if rec.ImporteImponible9.GreaterThan(rec.ImporteImponible4.Mul(bandaART)) {
		return &InvariantError{rec.NroLegaj, "banda_art",
			fmt.Sprintf("rem_impo9 %s fuera de banda sobre rem_impo4 %s",
				rec.ImporteImponible9, rec.ImporteImponible4)}
	}
	if rec.TipoDeOperacion == 2 && rec.ImporteImponible6.LessThan(pisoInvestigador) {
		return &InvariantError{rec.NroLegaj, "piso_investigador",
			fmt.Sprintf("rem_impo6 %s por debajo del piso de investigador", rec.ImporteImponible6)}
	}
	for _, imp := range []decimal.Decimal{
		rec.ImporteImponible1, rec.ImporteImponible4, rec.ImporteImponible5,
		rec.ImporteImponible6, rec.ImporteImponible9, rec.ImporteSAC,
	} {
		if imp.IsNegative() || imp.GreaterThan(maximoMonetario) {
			return &InvariantError{rec.NroLegaj, "rango_monetario",
				fmt.Sprintf("importe %s fuera del rango permitido", imp)}
		}
	}
	return nil
}
