package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/csvio"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/numeric"
	"github.com/mmynk/mandato360/internal/storage"
)

// FinancialService serves the five-year projection table.
type FinancialService struct {
	store storage.Store
}

// NewFinancialService creates a new FinancialService with the given storage backend.
func NewFinancialService(store storage.Store) *FinancialService {
	return &FinancialService{store: store}
}

// FinancialRow is a projection year with its profit margin.
type FinancialRow struct {
	models.FinancialYear
	Margin float64 `json:"margin"`
}

// FinancialView is the table plus any coercion warnings of the last edit.
type FinancialView struct {
	Rows     []FinancialRow `json:"rows"`
	Warnings []string       `json:"warnings,omitempty"`
}

// Register mounts the financial routes on r.
func (s *FinancialService) Register(r *mux.Router) {
	r.HandleFunc("/api/financials", s.ListFinancials).Methods(http.MethodGet)
	r.HandleFunc("/api/financials/export.csv", s.ExportCSV).Methods(http.MethodGet)
	r.HandleFunc("/api/financials/import", s.ImportCSV).Methods(http.MethodPost)
	r.HandleFunc("/api/financials/{index:[0-9]+}", s.UpdateFinancial).Methods(http.MethodPatch)
}

func newFinancialView(rows []models.FinancialYear, warnings []string) FinancialView {
	view := FinancialView{Rows: make([]FinancialRow, 0, len(rows)), Warnings: warnings}
	for _, row := range rows {
		view.Rows = append(view.Rows, FinancialRow{FinancialYear: row, Margin: row.Margin()})
	}
	return view
}

// ListFinancials returns the table.
func (s *FinancialService) ListFinancials(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListFinancials(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar projeções")
		return
	}
	writeJSON(w, http.StatusOK, newFinancialView(rows, nil))
}

// UpdateFinancial edits one cell: {"field": "revenue", "value": "1500000"}.
func (s *FinancialService) UpdateFinancial(w http.ResponseWriter, r *http.Request) {
	index, err := numeric.ParseInt(mux.Vars(r)["index"])
	if err != nil {
		writeError(w, r, fmt.Errorf("%w: %v", errBadRequest, err), "Índice inválido")
		return
	}

	var req struct {
		Field string `json:"field"`
		Value string `json:"value"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	rows, err := s.store.ListFinancials(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar projeções")
		return
	}
	edit, err := calculator.UpdateFinancialField(rows, index, calculator.FinancialField(req.Field), req.Value)
	if err != nil {
		writeError(w, r, err, "Edição inválida")
		return
	}
	if err := s.store.ReplaceFinancials(r.Context(), edit.Rows); err != nil {
		writeError(w, r, err, "Erro ao salvar projeções")
		return
	}

	var warnings []string
	if edit.Coerced {
		warnings = append(warnings, coercionWarning(req.Field, req.Value, fieldValue(edit.Rows[index], req.Field)))
	}
	slog.Info("Financial row updated", "index", index, "field", req.Field, "coerced", edit.Coerced)
	writeJSON(w, http.StatusOK, newFinancialView(edit.Rows, warnings))
}

func fieldValue(row models.FinancialYear, field string) float64 {
	switch calculator.FinancialField(field) {
	case calculator.FieldRevenue:
		return row.Revenue
	case calculator.FieldCosts:
		return row.Costs
	default:
		return row.Profit
	}
}

// ExportCSV downloads the table as Ano,Receita,Custos,Lucro.
func (s *FinancialService) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := s.store.ListFinancials(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar projeções")
		return
	}
	var buf bytes.Buffer
	if err := csvio.WriteFinancials(&buf, rows); err != nil {
		writeError(w, r, err, "Erro ao gerar CSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="projecoes-financeiras.csv"`)
	w.Write(buf.Bytes())
}

// ImportCSV replaces the table with the CSV in the request body. A file
// without data rows leaves the table as it was.
func (s *FinancialService) ImportCSV(w http.ResponseWriter, r *http.Request) {
	rows, err := csvio.ReadFinancials(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, r, err, "Arquivo CSV inválido")
		return
	}
	if len(rows) == 0 {
		slog.Info("Financial import ignored, no data rows")
		s.ListFinancials(w, r)
		return
	}
	if err := s.store.ReplaceFinancials(r.Context(), rows); err != nil {
		writeError(w, r, err, "Erro ao salvar projeções")
		return
	}
	slog.Info("Financials imported", "rows", len(rows))
	writeJSON(w, http.StatusOK, newFinancialView(rows, nil))
}
