package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"sicoss_backend/pkg/api/sicoss"
	"sicoss_backend/pkg/core/config"
	"sicoss_backend/pkg/core/extract"
	"sicoss_backend/pkg/core/store"
)

func main() {
	godotenv.Load()

	cfg, err := config.LoadRuntime("config/sicoss.yaml")
	if err != nil {
		fmt.Printf("[FATAL] Configuración inválida: %v\n", err)
		os.Exit(1)
	}

	dbCfg, err := config.LoadDatabase("database.ini")
	if err != nil {
		fmt.Printf("[FATAL] Configuración de base de datos inválida: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := store.InitDB(ctx, dbCfg.DSN()); err != nil {
		fmt.Printf("[FATAL] No se pudo conectar a la base de datos: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	extractor := extract.NewPostgresExtractor(store.GetPool())
	repo := store.NewSicossRepo(store.GetPool())
	handler := sicoss.NewHandler(extractor, repo, cfg)

	http.HandleFunc("/sicoss/process", handler.HandleProcess)
	http.HandleFunc("/sicoss/config", handler.HandleConfig)
	http.HandleFunc("/health", handler.HandleHealth)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("API server starting on :%s...\n", port)
	fmt.Println("  - POST /sicoss/process")
	fmt.Println("  - GET/PUT /sicoss/config")
	fmt.Println("  - GET  /health")

	if err := http.ListenAndServe(":"+port, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
