package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/mfukui/lockgate/internal/services"
	pkghttp "github.com/mfukui/lockgate/pkg/http"
)

// Reporter produces the banned-IP and locked-user lists in both read
// models
type Reporter interface {
	FromLedger(ctx context.Context) (*services.Report, error)
	FromCounters(ctx context.Context) (*services.Report, error)
}

// ReportHandler serves the operational report endpoints
type ReportHandler struct {
	reports Reporter
	logger  *slog.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports Reporter, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		reports: reports,
		logger:  logger,
	}
}

// FromLedger handles GET /report. The lists are recomputed from the full
// attempt ledger, so this is the audit-grade variant.
func (h *ReportHandler) FromLedger(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.FromLedger(r.Context())
	if err != nil {
		h.logger.Error("ledger report failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	h.writeReport(w, report)
}

// FromCounters handles GET /report2, the fast counter-based variant.
func (h *ReportHandler) FromCounters(w http.ResponseWriter, r *http.Request) {
	report, err := h.reports.FromCounters(r.Context())
	if err != nil {
		h.logger.Error("counter report failed", slog.Any("error", err))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}
	h.writeReport(w, report)
}

func (h *ReportHandler) writeReport(w http.ResponseWriter, report *services.Report) {
	// Empty lists serialize as [], not null.
	if report.BannedIPs == nil {
		report.BannedIPs = []string{}
	}
	if report.LockedUsers == nil {
		report.LockedUsers = []string{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(report); err != nil {
		h.logger.Error("failed to encode report", slog.Any("error", err))
	}
}
