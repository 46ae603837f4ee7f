package http

import (
	"net/http"

	"ticket-backend/internal/handlers"
	"ticket-backend/internal/live"
	"ticket-backend/internal/middleware"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(
	authHandler *handlers.AuthHandler,
	totpHandler *handlers.TOTPHandler,
	userHandler *handlers.UserHandler,
	ticketHandler *handlers.TicketHandler,
	timeEntryHandler *handlers.TimeEntryHandler,
	expenseHandler *handlers.ExpenseHandler,
	masterDataHandler *handlers.MasterDataHandler,
	exportHandler *handlers.ExportHandler,
	auditHandler *handlers.AuditHandler,
	healthHandler *handlers.HealthHandler,
	hub *live.Hub,
	authMiddleware *middleware.AuthMiddleware,
) *mux.Router {
	r := mux.NewRouter()

	admin := authMiddleware.RequireAdmin

	// Public API routes - Authentication
	r.HandleFunc("/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/totp/verify", totpHandler.Verify).Methods("POST")

	// Protected API routes - TOTP enrolment
	totpAPI := r.PathPrefix("/api/totp").Subrouter()
	totpAPI.Use(authMiddleware.Authenticate)
	totpAPI.HandleFunc("/setup", totpHandler.Setup).Methods("POST")
	totpAPI.HandleFunc("/enable", totpHandler.Enable).Methods("POST")

	// Protected API routes - Users (admin only)
	usersAPI := r.PathPrefix("/api/users").Subrouter()
	usersAPI.Use(authMiddleware.Authenticate)
	usersAPI.HandleFunc("", admin(http.HandlerFunc(userHandler.List)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("", admin(http.HandlerFunc(userHandler.Create)).ServeHTTP).Methods("POST")
	usersAPI.HandleFunc("/{id}", admin(http.HandlerFunc(userHandler.Get)).ServeHTTP).Methods("GET")
	usersAPI.HandleFunc("/{id}", admin(http.HandlerFunc(userHandler.Update)).ServeHTTP).Methods("PUT")
	usersAPI.HandleFunc("/{id}", admin(http.HandlerFunc(userHandler.Delete)).ServeHTTP).Methods("DELETE")

	// Protected API routes - Tickets
	ticketsAPI := r.PathPrefix("/api/tickets").Subrouter()
	ticketsAPI.Use(authMiddleware.Authenticate)
	ticketsAPI.HandleFunc("", ticketHandler.List).Methods("GET")
	ticketsAPI.HandleFunc("", ticketHandler.Save).Methods("POST")
	ticketsAPI.HandleFunc("/bulk", ticketHandler.BulkApply).Methods("POST")
	ticketsAPI.HandleFunc("/{id}", ticketHandler.Open).Methods("GET")
	ticketsAPI.HandleFunc("/{id}/transitions", ticketHandler.Transitions).Methods("GET")
	ticketsAPI.HandleFunc("/{id}", admin(http.HandlerFunc(ticketHandler.PermanentDelete)).ServeHTTP).Methods("DELETE")
	ticketsAPI.HandleFunc("/{id}/submit", ticketHandler.Submit).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/withdraw", ticketHandler.Withdraw).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/trash", ticketHandler.Trash).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/restore", ticketHandler.Restore).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/approve", admin(http.HandlerFunc(ticketHandler.Approve)).ServeHTTP).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/unapprove", admin(http.HandlerFunc(ticketHandler.Unapprove)).ServeHTTP).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/reject", admin(http.HandlerFunc(ticketHandler.Reject)).ServeHTTP).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/pipeline/forward", admin(http.HandlerFunc(ticketHandler.PipelineForward)).ServeHTTP).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/pipeline/back", admin(http.HandlerFunc(ticketHandler.PipelineBack)).ServeHTTP).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/audit", admin(http.HandlerFunc(auditHandler.ListByTicket)).ServeHTTP).Methods("GET")

	// Protected API routes - Ticket expenses
	ticketsAPI.HandleFunc("/{id}/expenses", expenseHandler.ListByTicket).Methods("GET")
	ticketsAPI.HandleFunc("/{id}/expenses", expenseHandler.Create).Methods("POST")
	ticketsAPI.HandleFunc("/{id}/expenses/{expense_id}", expenseHandler.Update).Methods("PUT")
	ticketsAPI.HandleFunc("/{id}/expenses/{expense_id}", expenseHandler.Delete).Methods("DELETE")

	// Protected API routes - Time entries
	entriesAPI := r.PathPrefix("/api/time-entries").Subrouter()
	entriesAPI.Use(authMiddleware.Authenticate)
	entriesAPI.HandleFunc("", timeEntryHandler.List).Methods("GET")
	entriesAPI.HandleFunc("", timeEntryHandler.Ingest).Methods("POST")
	entriesAPI.HandleFunc("/batch", timeEntryHandler.IngestBatch).Methods("POST")
	entriesAPI.HandleFunc("/{id}", timeEntryHandler.Delete).Methods("DELETE")

	// Protected API routes - Master data directories
	techniciansAPI := r.PathPrefix("/api/technicians").Subrouter()
	techniciansAPI.Use(authMiddleware.Authenticate)
	techniciansAPI.HandleFunc("", masterDataHandler.ListTechnicians).Methods("GET")
	techniciansAPI.HandleFunc("", admin(http.HandlerFunc(masterDataHandler.CreateTechnician)).ServeHTTP).Methods("POST")
	techniciansAPI.HandleFunc("/{id}", admin(http.HandlerFunc(masterDataHandler.UpdateTechnician)).ServeHTTP).Methods("PUT")

	customersAPI := r.PathPrefix("/api/customers").Subrouter()
	customersAPI.Use(authMiddleware.Authenticate)
	customersAPI.HandleFunc("", masterDataHandler.ListCustomers).Methods("GET")
	customersAPI.HandleFunc("", admin(http.HandlerFunc(masterDataHandler.CreateCustomer)).ServeHTTP).Methods("POST")
	customersAPI.HandleFunc("/{id}", admin(http.HandlerFunc(masterDataHandler.UpdateCustomer)).ServeHTTP).Methods("PUT")

	projectsAPI := r.PathPrefix("/api/projects").Subrouter()
	projectsAPI.Use(authMiddleware.Authenticate)
	projectsAPI.HandleFunc("", masterDataHandler.ListProjects).Methods("GET")
	projectsAPI.HandleFunc("", admin(http.HandlerFunc(masterDataHandler.CreateProject)).ServeHTTP).Methods("POST")

	// Protected API routes - Exports
	exportAPI := r.PathPrefix("/api/export").Subrouter()
	exportAPI.Use(authMiddleware.Authenticate)
	exportAPI.HandleFunc("/tickets/{id}/pdf", exportHandler.TicketPDF).Methods("GET")
	exportAPI.HandleFunc("/tickets/csv", exportHandler.TicketsCSV).Methods("GET")
	exportAPI.HandleFunc("/tickets/zip", exportHandler.BulkPDFZip).Methods("POST")
	exportAPI.HandleFunc("/archive", admin(http.HandlerFunc(exportHandler.ListArchive)).ServeHTTP).Methods("GET")

	// Protected API routes - Audit trail
	auditAPI := r.PathPrefix("/api/audit-logs").Subrouter()
	auditAPI.Use(authMiddleware.Authenticate)
	auditAPI.HandleFunc("", admin(http.HandlerFunc(auditHandler.ListRecent)).ServeHTTP).Methods("GET")

	// Live ticket events over websocket
	wsAPI := r.PathPrefix("/ws/events").Subrouter()
	wsAPI.Use(authMiddleware.Authenticate)
	wsAPI.HandleFunc("", hub.HandleWebSocket)

	// Health endpoints (no auth required - for Kubernetes probes)
	r.HandleFunc("/health", healthHandler.Basic).Methods("GET")
	r.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")
	r.HandleFunc("/health/system", healthHandler.System).Methods("GET")

	// Metrics endpoint (Prometheus format)
	r.Handle("/metrics", promhttp.Handler())

	return r
}
