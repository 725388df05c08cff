package main

import (
	"fmt"
	"log"

	"billscan/internal/config"
	"billscan/internal/handler"
	"billscan/internal/ocr"
	"billscan/internal/repository/postgres"
	"billscan/internal/router"
	"billscan/internal/service"
	s3storage "billscan/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	billRepo := postgres.NewBillRepo(db)
	attachRepo := postgres.NewAttachmentRepo(db)
	lookupRepo := postgres.NewRecordLookupRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize OCR provider client
	ocrClient := ocr.NewClient(&cfg.OCR)

	// Initialize services
	ingestSvc := service.NewIngestService(billRepo, attachRepo, billRepo, s3Client, ocrClient, ocrClient, lookupRepo, &cfg.S3, &cfg.AutoParse)

	// Initialize handlers
	billH := handler.NewBillHandler(ingestSvc)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(billH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}
