// Package sicoss exposes the pipeline over HTTP: process a period, consult
// and update the runtime defaults, health check.
package sicoss

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"sicoss_backend/pkg/core/conceptos"
	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/extract"
	"sicoss_backend/pkg/core/model"
	"sicoss_backend/pkg/core/pipeline"
	"sicoss_backend/pkg/core/store"
)

const (
	backendName = "go"
	apiVersion  = pipeline.Version
)

// Response formats accepted in formato_respuesta.
const (
	FormatoCompleto    = "completo"
	FormatoResumen     = "resumen"
	FormatoSoloTotales = "solo_totales"
)

// ProcessRequest is the POST /sicoss/process body.
type ProcessRequest struct {
	PeriodoFiscal    string       `json:"periodo_fiscal"`
	NroLegajo        *int         `json:"nro_legajo,omitempty"`
	FormatoRespuesta string       `json:"formato_respuesta,omitempty"`
	GuardarEnBD      bool         `json:"guardar_en_bd"`
	ConfigTopes      *ConfigTopes `json:"config_topes,omitempty"`
}

// ConfigTopes overrides the cap configuration for a single run.
type ConfigTopes struct {
	TopeJubilatorioPatronal    *float64 `json:"tope_jubilatorio_patronal,omitempty"`
	TopeJubilatorioPersonal    *float64 `json:"tope_jubilatorio_personal,omitempty"`
	TopeOtrosAportesPersonales *float64 `json:"tope_otros_aportes_personales,omitempty"`
	TruncaTope                 *bool    `json:"trunca_tope,omitempty"`
}

// Envelope is the uniform response wrapper.
type Envelope struct {
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
	Metadata  Metadata  `json:"metadata"`
	Timestamp time.Time `json:"timestamp"`
}

// Metadata identifies the backend and measures the request.
type Metadata struct {
	Backend          string `json:"backend"`
	APIVersion       string `json:"api_version"`
	ProcessingTimeMs int64  `json:"processing_time_ms"`
}

// Handler serves the SICOSS endpoints. Safe for concurrent requests; runs
// for the same period are rejected with 409 while one is in flight.
type Handler struct {
	extractor extract.ExtractorSet
	persister pipeline.Persister

	mu        sync.Mutex
	defaults  config.SicossConfig
	enProceso map[string]bool
}

// NewHandler wires the handler with its stages and runtime defaults.
func NewHandler(ex extract.ExtractorSet, p pipeline.Persister, defaults config.SicossConfig) *Handler {
	return &Handler{
		extractor: ex,
		persister: p,
		defaults:  defaults,
		enProceso: make(map[string]bool),
	}
}

func cors(w http.ResponseWriter, methods string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods+", OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

// HandleProcess runs the pipeline for one period.
func (h *Handler) HandleProcess(w http.ResponseWriter, r *http.Request) {
	cors(w, "POST")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		h.respond(w, http.StatusMethodNotAllowed, time.Now(), false, "método no soportado", nil)
		return
	}

	inicio := time.Now()

	var req ProcessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respond(w, http.StatusBadRequest, inicio, false, fmt.Sprintf("cuerpo inválido: %v", err), nil)
		return
	}

	periodo, err := model.ParseFiscalPeriod(req.PeriodoFiscal)
	if err != nil {
		h.respond(w, http.StatusBadRequest, inicio, false, err.Error(), nil)
		return
	}

	formato := req.FormatoRespuesta
	if formato == "" {
		formato = FormatoCompleto
	}
	switch formato {
	case FormatoCompleto, FormatoResumen, FormatoSoloTotales:
	default:
		h.respond(w, http.StatusBadRequest, inicio, false,
			fmt.Sprintf("formato_respuesta inválido %q", formato), nil)
		return
	}

	cfg := h.configForRun(req.ConfigTopes)
	if err := cfg.Validate(); err != nil {
		h.respond(w, http.StatusBadRequest, inicio, false, err.Error(), nil)
		return
	}

	if !h.marcarEnProceso(periodo) {
		h.respond(w, http.StatusConflict, inicio, false,
			fmt.Sprintf("el período %s ya está en proceso", periodo), nil)
		return
	}
	defer h.liberarPeriodo(periodo)

	orq := pipeline.NewOrchestrator(h.extractor, h.persister, cfg)
	result, err := orq.Run(r.Context(), periodo, req.NroLegajo, req.GuardarEnBD)
	if err != nil {
		h.respondError(w, inicio, err)
		return
	}

	h.respond(w, http.StatusOK, inicio, true,
		fmt.Sprintf("período %s procesado", periodo.DisplayName()),
		shapeData(formato, result))
}

// respondError maps pipeline failures onto HTTP statuses.
func (h *Handler) respondError(w http.ResponseWriter, inicio time.Time, err error) {
	var invariante *pipeline.InvariantError
	var persistencia *store.PersistError

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// A cancelled run is not a server failure.
		h.respond(w, http.StatusOK, inicio, false, "cancelled", map[string]string{"reason": "cancelled"})
	case errors.As(err, &invariante),
		errors.As(err, &persistencia),
		errors.Is(err, conceptos.ErrConsolidationIncomplete):
		h.respond(w, http.StatusUnprocessableEntity, inicio, false, err.Error(), nil)
	case errors.Is(err, config.ErrInvalidCapConfig):
		h.respond(w, http.StatusBadRequest, inicio, false, err.Error(), nil)
	default:
		h.respond(w, http.StatusInternalServerError, inicio, false, err.Error(), nil)
	}
}

// shapeData builds the data block for the requested format.
func shapeData(formato string, result *pipeline.Result) map[string]any {
	switch formato {
	case FormatoSoloTotales:
		return map[string]any{"totales": result.Totales}
	case FormatoResumen:
		return map[string]any{
			"estadisticas": result.Stats,
			"resumen": map[string]any{
				"periodo":           result.Periodo,
				"run_id":            result.RunID,
				"legajos_incluidos": len(result.Legajos),
				"guardado":          result.Guardado,
			},
			"totales": result.Totales,
		}
	default:
		return map[string]any{
			"legajos":      result.Legajos,
			"estadisticas": result.Stats,
			"totales":      result.Totales,
			"resumen": map[string]any{
				"periodo":  result.Periodo,
				"run_id":   result.RunID,
				"guardado": result.Guardado,
			},
		}
	}
}

// HandleConfig serves GET/PUT of the runtime defaults.
func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	cors(w, "GET, PUT")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	inicio := time.Now()

	switch r.Method {
	case http.MethodGet:
		h.mu.Lock()
		cfg := h.defaults
		h.mu.Unlock()
		h.respond(w, http.StatusOK, inicio, true, "configuración vigente", configView(cfg))

	case http.MethodPut:
		var topes ConfigTopes
		if err := json.NewDecoder(r.Body).Decode(&topes); err != nil {
			h.respond(w, http.StatusBadRequest, inicio, false, fmt.Sprintf("cuerpo inválido: %v", err), nil)
			return
		}
		nueva := aplicarTopes(h.snapshot(), &topes)
		if err := nueva.Validate(); err != nil {
			h.respond(w, http.StatusBadRequest, inicio, false, err.Error(), nil)
			return
		}
		h.mu.Lock()
		h.defaults = nueva
		h.mu.Unlock()
		h.respond(w, http.StatusOK, inicio, true, "configuración actualizada", configView(nueva))

	default:
		h.respond(w, http.StatusMethodNotAllowed, inicio, false, "método no soportado", nil)
	}
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	cors(w, "GET")
	if r.Method == "OPTIONS" {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *Handler) snapshot() config.SicossConfig {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.defaults
}

func (h *Handler) configForRun(topes *ConfigTopes) config.SicossConfig {
	return aplicarTopes(h.snapshot(), topes)
}

func aplicarTopes(cfg config.SicossConfig, topes *ConfigTopes) config.SicossConfig {
	if topes == nil {
		return cfg
	}
	if topes.TopeJubilatorioPatronal != nil {
		cfg.TopeJubilatorioPatronal = decimal.NewFromFloat(*topes.TopeJubilatorioPatronal)
	}
	if topes.TopeJubilatorioPersonal != nil {
		cfg.TopeJubilatorioPersonal = decimal.NewFromFloat(*topes.TopeJubilatorioPersonal)
	}
	if topes.TopeOtrosAportesPersonales != nil {
		cfg.TopeOtrosAportesPersonales = decimal.NewFromFloat(*topes.TopeOtrosAportesPersonales)
	}
	if topes.TruncaTope != nil {
		cfg.TruncaTope = *topes.TruncaTope
	}
	return cfg
}

// configView serializes the defaults with the wire field names.
func configView(cfg config.SicossConfig) map[string]any {
	return map[string]any{
		"tope_jubilatorio_patronal":        cfg.TopeJubilatorioPatronal,
		"tope_jubilatorio_personal":        cfg.TopeJubilatorioPersonal,
		"tope_otros_aportes_personales":    cfg.TopeOtrosAportesPersonales,
		"trunca_tope":                      cfg.TruncaTope,
		"check_lic":                        cfg.CheckLicencias,
		"check_retro":                      cfg.CheckRetro,
		"check_sin_activo":                 cfg.CheckSinActivo,
		"asignacion_familiar":              cfg.AsignacionFamiliar,
		"trabajador_convencionado":         cfg.TrabajadorConvencionado,
		"informar_becarios":                cfg.InformarBecarios,
		"art_con_tope":                     cfg.ARTConTope,
		"conceptos_no_remun_en_art":        cfg.ConceptosNoRemunEnART,
		"porc_aporte_adicional_jubilacion": cfg.PorcAporteAdicionalJubilacion,
		"categorias_diferenciales":         cfg.CategoriasDiferenciales,
	}
}

func (h *Handler) marcarEnProceso(periodo model.FiscalPeriod) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.enProceso[periodo.String()] {
		return false
	}
	h.enProceso[periodo.String()] = true
	return true
}

func (h *Handler) liberarPeriodo(periodo model.FiscalPeriod) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.enProceso, periodo.String())
}

func (h *Handler) respond(w http.ResponseWriter, status int, inicio time.Time, success bool, message string, data any) {
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(Envelope{
		Success: success,
		Message: message,
		Data:    data,
		Metadata: Metadata{
			Backend:          backendName,
			APIVersion:       apiVersion,
			ProcessingTimeMs: time.Since(inicio).Milliseconds(),
		},
		Timestamp: time.Now(),
	})
}
