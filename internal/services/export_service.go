package services

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"sync"
	"time"

	"ticket-backend/internal/archive"
	"ticket-backend/internal/models"
	"ticket-backend/internal/repositories"
	"ticket-backend/internal/tickets"
	"ticket-backend/internal/timeutil"

	"github.com/jung-kurt/gofpdf/v2"
)

// ExportService renders tickets to PDF and CSV and archives exported
// documents to the object store.
type ExportService struct {
	Reconcile   *ReconcileService
	ExpenseRepo *repositories.ExpenseRepository
	Archive     *archive.Client
}

func NewExportService(reconcile *ReconcileService, expenseRepo *repositories.ExpenseRepository, archiveClient *archive.Client) *ExportService {
	return &ExportService{
		Reconcile:   reconcile,
		ExpenseRepo: expenseRepo,
		Archive:     archiveClient,
	}
}

// TicketPDF renders the display view of one numbered record to PDF and
// uploads a copy to the archive under its ticket number. Documents only
// exist for numbered tickets.
func (s *ExportService) TicketPDF(ctx context.Context, recordID int) ([]byte, string, error) {
	dt, err := s.Reconcile.Open(ctx, recordID)
	if err != nil {
		return nil, "", err
	}
	if dt.TicketNumber == "" {
		return nil, "", validationErr("ticket %d has no ticket number yet; approve it before exporting", recordID)
	}

	expenses, err := s.ExpenseRepo.ListByTicket(ctx, recordID)
	if err != nil {
		return nil, "", err
	}

	data, err := s.renderTicketPDF(dt, expenses)
	if err != nil {
		return nil, "", err
	}

	filename := fmt.Sprintf("%s.pdf", dt.TicketNumber)
	key := fmt.Sprintf("tickets/%d/%s", dt.Date.Year(), filename)
	if err := s.Archive.Upload(ctx, key, data, "application/pdf"); err != nil {
		// Archiving is best effort; the export itself succeeded
		log.Printf("[Export] archive upload of %s failed: %v", key, err)
	}

	return data, filename, nil
}

// renderTicketPDF lays out one service ticket on a portrait A4 page
func (s *ExportService) renderTicketPDF(dt *tickets.DisplayTicket, expenses []*models.Expense) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	// Header
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(190, 10, "Service Ticket", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "B", 12)
	number := dt.TicketNumber
	if number == "" {
		number = "DRAFT"
	}
	pdf.CellFormat(190, 8, fmt.Sprintf("Ticket No: %s", number), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(190, 6, fmt.Sprintf("Date: %s", dt.Date.Format("02-Jan-2006")), "", 1, "C", false, 0, "")
	pdf.CellFormat(190, 6, fmt.Sprintf("Generated: %s", timeutil.Now().Format("02-Jan-2006 03:04 PM")), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	// Customer block
	pdf.SetFillColor(240, 240, 240)
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Customer", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(95, 7, fmt.Sprintf("Name: %s", dt.CustomerName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Contact: %s", dt.Contact), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Location: %s", dt.Location), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Project: %s", dt.ProjectName), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Technician: %s", dt.TechnicianName), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Approver: %s", dt.Approver), "RB", 1, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("PO/AFE: %s", dt.POAFE), "LB", 0, "L", false, 0, "")
	pdf.CellFormat(95, 7, fmt.Sprintf("Cost Center: %s", dt.CostCenter), "RB", 1, "L", false, 0, "")
	pdf.Ln(4)

	// Service lines
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(190, 8, "Work Performed", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	pdf.CellFormat(90, 7, "Description", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Shop", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Travel", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Field", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Shop OT", "1", 0, "C", true, 0, "")
	pdf.CellFormat(20, 7, "Field OT", "1", 1, "C", true, 0, "")

	hourCell := func(h float64) string {
		if h == 0 {
			return ""
		}
		return fmt.Sprintf("%.2f", h)
	}

	pdf.SetFont("Arial", "", 9)
	for _, row := range dt.Rows {
		desc := row.Description
		if len(desc) > 52 {
			desc = desc[:49] + "..."
		}
		pdf.CellFormat(90, 6, desc, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, hourCell(row.ShopTime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, hourCell(row.TravelTime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, hourCell(row.FieldTime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, hourCell(row.ShopOvertime), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, hourCell(row.FieldOvertime), "1", 1, "C", false, 0, "")
	}
	pdf.Ln(4)

	// Expenses, only when present
	expenseTotal := 0.0
	if len(expenses) > 0 {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(190, 8, "Expenses", "1", 1, "L", true, 0, "")

		pdf.SetFont("Arial", "B", 9)
		pdf.SetFillColor(200, 200, 200)
		pdf.CellFormat(35, 7, "Type", "1", 0, "C", true, 0, "")
		pdf.CellFormat(85, 7, "Description", "1", 0, "C", true, 0, "")
		pdf.CellFormat(20, 7, "Qty", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Rate", "1", 0, "C", true, 0, "")
		pdf.CellFormat(25, 7, "Amount", "1", 1, "C", true, 0, "")

		pdf.SetFont("Arial", "", 9)
		for _, e := range expenses {
			desc := e.Description
			if len(desc) > 48 {
				desc = desc[:45] + "..."
			}
			pdf.CellFormat(35, 6, string(e.Type), "1", 0, "L", false, 0, "")
			pdf.CellFormat(85, 6, desc, "1", 0, "L", false, 0, "")
			pdf.CellFormat(20, 6, fmt.Sprintf("%.2f", e.Quantity), "1", 0, "C", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", e.Rate), "1", 0, "R", false, 0, "")
			pdf.CellFormat(25, 6, fmt.Sprintf("%.2f", e.Amount()), "1", 1, "R", false, 0, "")
			expenseTotal += e.Amount()
		}
		pdf.Ln(4)
	}

	// Totals
	pdf.SetFont("Arial", "B", 12)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(190, 8, "Totals", "1", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 11)
	pdf.CellFormat(63, 8, fmt.Sprintf("Total Hours: %.2f", dt.TotalHours), "1", 0, "C", false, 0, "")
	pdf.CellFormat(63, 8, fmt.Sprintf("Labour: $%.2f", dt.TotalAmount), "1", 0, "C", false, 0, "")
	pdf.CellFormat(64, 8, fmt.Sprintf("Expenses: $%.2f", expenseTotal), "1", 1, "C", false, 0, "")

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(190, 10, fmt.Sprintf("Total: $%.2f", dt.TotalAmount+expenseTotal), "1", 1, "C", true, 0, "")

	if dt.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(190, 7, "Notes", "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.MultiCell(190, 5, dt.Notes, "1", "L", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// TicketsCSV exports the reconciled ticket list for a date range as CSV
func (s *ExportService) TicketsCSV(ctx context.Context, from, to time.Time, filter models.TicketFilter) ([]byte, error) {
	result, err := s.Reconcile.Reconcile(ctx, from, to, filter, 0)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	w.Write([]string{
		"Ticket No", "Status", "Date", "Technician", "Customer", "Location",
		"Project", "Approver", "PO/AFE", "Cost Center",
		"Shop", "Travel", "Field", "Shop OT", "Field OT",
		"Total Hours", "Total Amount",
	})

	for _, dt := range result.Tickets {
		var shop, travel, field, shopOT, fieldOT float64
		for _, row := range dt.Rows {
			shop += row.ShopTime
			travel += row.TravelTime
			field += row.FieldTime
			shopOT += row.ShopOvertime
			fieldOT += row.FieldOvertime
		}
		w.Write([]string{
			dt.TicketNumber,
			string(dt.Status),
			dt.Date.Format(timeutil.DateLayout),
			dt.TechnicianName,
			dt.CustomerName,
			dt.Location,
			dt.ProjectName,
			dt.Approver,
			dt.POAFE,
			dt.CostCenter,
			fmt.Sprintf("%.2f", shop),
			fmt.Sprintf("%.2f", travel),
			fmt.Sprintf("%.2f", field),
			fmt.Sprintf("%.2f", shopOT),
			fmt.Sprintf("%.2f", fieldOT),
			fmt.Sprintf("%.2f", dt.TotalHours),
			fmt.Sprintf("%.2f", dt.TotalAmount),
		})
	}

	w.Flush()
	return buf.Bytes(), w.Error()
}

// BulkPDFZip renders many tickets in parallel and bundles them into a zip
func (s *ExportService) BulkPDFZip(ctx context.Context, recordIDs []int) ([]byte, error) {
	if len(recordIDs) == 0 {
		return nil, validationErr("ticket_ids is required")
	}

	type pdfResult struct {
		index    int
		filename string
		data     []byte
		err      error
	}

	results := make(chan pdfResult, len(recordIDs))
	jobs := make(chan int, len(recordIDs))

	var wg sync.WaitGroup
	numWorkers := 5
	if numWorkers > len(recordIDs) {
		numWorkers = len(recordIDs)
	}
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				data, filename, err := s.TicketPDF(ctx, recordIDs[idx])
				results <- pdfResult{index: idx, filename: filename, data: data, err: err}
			}
		}()
	}

	for i := range recordIDs {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Zip entries in request order
	ordered := make([]pdfResult, len(recordIDs))
	for r := range results {
		ordered[r.index] = r
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, r := range ordered {
		if r.err != nil || r.data == nil {
			continue
		}
		fw, err := zw.Create(r.filename)
		if err != nil {
			continue
		}
		fw.Write(r.data)
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
