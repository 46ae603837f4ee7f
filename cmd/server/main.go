package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	"ticket-backend/internal/archive"
	"ticket-backend/internal/auth"
	"ticket-backend/internal/cache"
	"ticket-backend/internal/config"
	"ticket-backend/internal/database"
	"ticket-backend/internal/db"
	"ticket-backend/internal/handlers"
	"ticket-backend/internal/health"
	h "ticket-backend/internal/http"
	"ticket-backend/internal/live"
	"ticket-backend/internal/middleware"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/services"
)

func main() {
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	pool := db.Connect(cfg)
	defer pool.Close()

	// Redis is optional; everything falls back to the database when it is down
	if err := cache.Init(); err != nil {
		log.Printf("[Redis] Cache unavailable: %v (continuing without cache)", err)
	} else {
		log.Println("[Redis] Cache connected successfully")
	}

	migrator := database.NewMigrator(pool)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := migrator.RunMigrations(ctx); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	healthChecker := health.NewHealthChecker(pool)
	jwtManager := auth.NewJWTManager(cfg)

	// Repositories
	userRepo := repositories.NewUserRepository(pool)
	entryRepo := repositories.NewTimeEntryRepository(pool)
	ticketRepo := repositories.NewTicketRepository(pool)
	expenseRepo := repositories.NewExpenseRepository(pool)
	technicianRepo := repositories.NewTechnicianRepository(pool)
	customerRepo := repositories.NewCustomerRepository(pool)
	projectRepo := repositories.NewProjectRepository(pool)
	auditRepo := repositories.NewAuditLogRepository(pool)

	// PDF archive storage is optional; a missing bucket disables it
	archiveClient, err := archive.New(context.Background(), cfg)
	if err != nil {
		log.Printf("[Archive] Disabled: %v", err)
	} else if archiveClient != nil {
		log.Printf("[Archive] Uploading ticket PDFs to bucket %q", cfg.Archive.Bucket)
	}

	// Services
	directoryService := services.NewDirectoryService(technicianRepo, customerRepo, projectRepo)
	reconcileService := services.NewReconcileService(entryRepo, ticketRepo, directoryService)
	ticketService := services.NewTicketService(ticketRepo, expenseRepo, technicianRepo, auditRepo, reconcileService)
	timeEntryService := services.NewTimeEntryService(entryRepo, projectRepo)
	expenseService := services.NewExpenseService(expenseRepo, ticketRepo)
	bulkService := services.NewBulkService(ticketService, cfg.Bulk.Workers)
	exportService := services.NewExportService(reconcileService, expenseRepo, archiveClient)
	userService := services.NewUserService(userRepo, jwtManager)
	totpService := services.NewTOTPService(userRepo, jwtManager)
	masterDataService := services.NewMasterDataService(technicianRepo, customerRepo, projectRepo)

	// Ticket change events stream to connected editors over websocket
	hub := live.NewHub()
	ticketService.SetNotifier(hub)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, userRepo)
	corsMiddleware := middleware.NewCORS(cfg)

	// Handlers
	authHandler := handlers.NewAuthHandler(userService)
	totpHandler := handlers.NewTOTPHandler(totpService, userService)
	userHandler := handlers.NewUserHandler(userService)
	ticketHandler := handlers.NewTicketHandler(reconcileService, ticketService, bulkService)
	timeEntryHandler := handlers.NewTimeEntryHandler(timeEntryService)
	expenseHandler := handlers.NewExpenseHandler(expenseService)
	masterDataHandler := handlers.NewMasterDataHandler(masterDataService)
	exportHandler := handlers.NewExportHandler(exportService, archiveClient)
	auditHandler := handlers.NewAuditHandler(auditRepo)
	healthHandler := handlers.NewHealthHandler(healthChecker)

	router := h.NewRouter(
		authHandler,
		totpHandler,
		userHandler,
		ticketHandler,
		timeEntryHandler,
		expenseHandler,
		masterDataHandler,
		exportHandler,
		auditHandler,
		healthHandler,
		hub,
		authMiddleware,
	)

	handler := middleware.PanicRecovery(
		middleware.RequestLogging(
			middleware.MetricsMiddleware(
				corsMiddleware(router))))

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Server running on %s", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
