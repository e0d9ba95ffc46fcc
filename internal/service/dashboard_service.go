package service

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/fixtures"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/storage"
)

// DashboardService serves the read-mostly pages: revenue roadmap, CRM and
// competitors.
type DashboardService struct {
	store       storage.Store
	roadmap     fixtures.Roadmap
	competitors []models.Competitor
}

// NewDashboardService creates a DashboardService. roadmap supplies the
// defaults used when a request omits a value.
func NewDashboardService(store storage.Store, roadmap fixtures.Roadmap, competitors []models.Competitor) *DashboardService {
	return &DashboardService{store: store, roadmap: roadmap, competitors: competitors}
}

// Register mounts the dashboard routes on r.
func (s *DashboardService) Register(r *mux.Router) {
	r.HandleFunc("/api/roadmap", s.GetRoadmap).Methods(http.MethodGet)
	r.HandleFunc("/api/roadmap", s.ComputeRoadmap).Methods(http.MethodPost)
	r.HandleFunc("/api/crm/contacts", s.ListContacts).Methods(http.MethodGet)
	r.HandleFunc("/api/competitors", s.ListCompetitors).Methods(http.MethodGet)
}

// RoadmapRequest carries the calculator inputs. Nil fields fall back to the
// fixture defaults.
type RoadmapRequest struct {
	Levels     []models.Level `json:"levels,omitempty"`
	StartMonth *int           `json:"startMonth,omitempty"`
	ChurnRate  *float64       `json:"churnRate,omitempty"`
	AnnualGoal *float64       `json:"annualGoal,omitempty"`
}

// RoadmapView is the calculator output.
type RoadmapView struct {
	Levels     []models.Level          `json:"levels"`
	StartMonth int                     `json:"startMonth"`
	ChurnRate  float64                 `json:"churnRate"`
	AnnualGoal float64                 `json:"annualGoal"`
	KPIs       calculator.RoadmapKPIs  `json:"kpis"`
	Monthly    []calculator.MonthPoint `json:"monthly"`
	LongTerm   []calculator.YearTarget `json:"longTerm"`
}

// Roadmap runs the revenue calculator for req.
func (s *DashboardService) Roadmap(req RoadmapRequest) (RoadmapView, error) {
	view := RoadmapView{
		Levels:     s.roadmap.Levels,
		StartMonth: s.roadmap.StartMonth,
		ChurnRate:  s.roadmap.ChurnRate,
		AnnualGoal: s.roadmap.AnnualGoal,
	}
	if req.Levels != nil {
		view.Levels = req.Levels
	}
	if req.StartMonth != nil {
		view.StartMonth = *req.StartMonth
	}
	if req.ChurnRate != nil {
		view.ChurnRate = *req.ChurnRate
	}
	if req.AnnualGoal != nil {
		view.AnnualGoal = *req.AnnualGoal
	}

	kpis, err := calculator.ComputeKPIs(view.Levels, view.StartMonth, view.ChurnRate, view.AnnualGoal)
	if err != nil {
		return RoadmapView{}, err
	}
	monthly, err := calculator.ProjectMonthly(view.Levels, view.StartMonth, view.AnnualGoal)
	if err != nil {
		return RoadmapView{}, err
	}
	view.KPIs = kpis
	view.Monthly = monthly
	view.LongTerm = calculator.LongTermPlan(s.roadmap.FirstYear, kpis.AnnualRevenue, view.AnnualGoal, s.roadmap.Targets)
	return view, nil
}

// GetRoadmap returns the calculator output for the fixture defaults.
func (s *DashboardService) GetRoadmap(w http.ResponseWriter, r *http.Request) {
	view, err := s.Roadmap(RoadmapRequest{})
	if err != nil {
		writeError(w, r, err, "Erro ao calcular o roadmap")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ComputeRoadmap returns the calculator output for the posted inputs.
func (s *DashboardService) ComputeRoadmap(w http.ResponseWriter, r *http.Request) {
	var req RoadmapRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}
	for _, lvl := range req.Levels {
		if lvl.Clients < 0 {
			writeError(w, r, fmt.Errorf("%w: level %s has negative clients", errBadRequest, lvl.ID), "Nível inválido")
			return
		}
	}

	view, err := s.Roadmap(req)
	if err != nil {
		writeError(w, r, err, "Erro ao calcular o roadmap")
		return
	}
	slog.Info("Roadmap computed",
		"levels", len(view.Levels),
		"mrr", view.KPIs.MRR,
		"annual_revenue", view.KPIs.AnnualRevenue,
	)
	writeJSON(w, http.StatusOK, view)
}

// ListContacts returns CRM contacts filtered by ?q= on name or city.
func (s *DashboardService) ListContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.ListContacts(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar contatos")
		return
	}
	writeJSON(w, http.StatusOK, models.SearchContacts(contacts, r.URL.Query().Get("q")))
}

// ListCompetitors returns the competitor fixtures.
func (s *DashboardService) ListCompetitors(w http.ResponseWriter, r *http.Request) {
	competitors := s.competitors
	if competitors == nil {
		competitors = []models.Competitor{}
	}
	writeJSON(w, http.StatusOK, competitors)
}
