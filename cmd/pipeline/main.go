package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/extract"
	"sicoss_backend/pkg/core/model"
	"sicoss_backend/pkg/core/pipeline"
	"sicoss_backend/pkg/core/store"
)

func main() {
	periodoFlag := flag.String("periodo", "", "período fiscal YYYYMM (obligatorio)")
	legajoFlag := flag.Int("legajo", 0, "procesar un único legajo")
	guardarFlag := flag.Bool("guardar", false, "persistir el resultado en la base")
	configFlag := flag.String("config", "config/sicoss.yaml", "archivo de configuración")
	flag.Parse()

	if *periodoFlag == "" {
		fmt.Println("Uso: pipeline -periodo YYYYMM [-legajo N] [-guardar]")
		os.Exit(2)
	}

	periodo, err := model.ParseFiscalPeriod(*periodoFlag)
	if err != nil {
		fmt.Printf("[FATAL] %v\n", err)
		os.Exit(2)
	}

	godotenv.Load()

	cfg, err := config.LoadRuntime(*configFlag)
	if err != nil {
		fmt.Printf("[FATAL] Configuración inválida: %v\n", err)
		os.Exit(1)
	}
	dbCfg, err := config.LoadDatabase("database.ini")
	if err != nil {
		fmt.Printf("[FATAL] Configuración de base de datos inválida: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := store.InitDB(ctx, dbCfg.DSN()); err != nil {
		fmt.Printf("[FATAL] No se pudo conectar a la base de datos: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	var nroLegajo *int
	if *legajoFlag > 0 {
		nroLegajo = legajoFlag
	}

	orq := pipeline.NewOrchestrator(
		extract.NewPostgresExtractor(store.GetPool()),
		store.NewSicossRepo(store.GetPool()),
		cfg,
	)

	result, err := orq.Run(ctx, periodo, nroLegajo, *guardarFlag)
	if err != nil {
		fmt.Printf("[FATAL] El procesamiento falló: %v\n", err)
		os.Exit(1)
	}

	salida := map[string]any{
		"run_id":       result.RunID,
		"periodo":      result.Periodo,
		"estadisticas": result.Stats,
		"totales":      result.Totales,
		"duracion":     result.Duracion.String(),
	}
	if result.Guardado != nil {
		salida["guardado"] = result.Guardado
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(salida)
}
