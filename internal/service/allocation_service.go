package service

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/mmynk/mandato360/internal/calculator"
	"github.com/mmynk/mandato360/internal/csvio"
	"github.com/mmynk/mandato360/internal/metrics"
	"github.com/mmynk/mandato360/internal/models"
	"github.com/mmynk/mandato360/internal/numeric"
	"github.com/mmynk/mandato360/internal/storage"
)

// AllocationService serves the Slice Pie simulator.
type AllocationService struct {
	store   storage.Store
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewAllocationService creates a new AllocationService with the given storage backend.
func NewAllocationService(store storage.Store, m *metrics.Metrics) *AllocationService {
	return &AllocationService{store: store, metrics: m, now: time.Now}
}

// AllocationView is everything the simulator page renders.
type AllocationView struct {
	Pool       models.Pool           `json:"pool"`
	Categories []models.CategoryCap  `json:"categories"`
	Simulation calculator.Simulation `json:"simulation"`
	Warnings   []string              `json:"warnings,omitempty"`
}

// Register mounts the allocation routes on r.
func (s *AllocationService) Register(r *mux.Router) {
	r.HandleFunc("/api/allocation", s.GetAllocation).Methods(http.MethodGet)
	r.HandleFunc("/api/allocation/pool", s.UpdatePool).Methods(http.MethodPut)
	r.HandleFunc("/api/allocation/contributors", s.CreateContributor).Methods(http.MethodPost)
	r.HandleFunc("/api/allocation/contributors/{id}", s.UpdateContributor).Methods(http.MethodPatch)
	r.HandleFunc("/api/allocation/contributors/{id}", s.DeleteContributor).Methods(http.MethodDelete)
	r.HandleFunc("/api/allocation/contributors/{id}/lock", s.ToggleLock).Methods(http.MethodPost)
	r.HandleFunc("/api/allocation/categories/{id}", s.UpdateCategory).Methods(http.MethodPut)
	r.HandleFunc("/api/allocation/export.csv", s.ExportCSV).Methods(http.MethodGet)
}

// Simulate loads the current state and runs the allocation engine.
func (s *AllocationService) Simulate(ctx context.Context) (AllocationView, error) {
	pool, err := s.store.GetPool(ctx)
	if err != nil {
		return AllocationView{}, err
	}
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return AllocationView{}, err
	}
	contributors, err := s.store.ListContributors(ctx)
	if err != nil {
		return AllocationView{}, err
	}

	sim := calculator.Simulate(pool, contributors, categories)
	s.metrics.ObserveSimulation(sim.Overflow)
	if sim.Overflow {
		slog.Warn("Pool overflow",
			"pool_percent", pool.SizePercent,
			"distributed_percent", sim.TotalDistributed,
		)
	}
	return AllocationView{Pool: pool, Categories: categories, Simulation: sim}, nil
}

func (s *AllocationService) respond(w http.ResponseWriter, r *http.Request, status int, warnings []string) {
	view, err := s.Simulate(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao calcular a alocação")
		return
	}
	view.Warnings = warnings
	writeJSON(w, status, view)
}

// GetAllocation returns the full simulation.
func (s *AllocationService) GetAllocation(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, nil)
}

// UpdatePool applies form values {"sizePercent": "...", "mode": "..."}.
// Unparseable sizes are read as 0 and reported as warnings.
func (s *AllocationService) UpdatePool(w http.ResponseWriter, r *http.Request) {
	var form map[string]string
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	pool, err := s.store.GetPool(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar o pool")
		return
	}

	var warnings []string
	for field, raw := range form {
		switch field {
		case "sizePercent", "poolSizePercent":
			v, coerced := numeric.Coerce(raw)
			if coerced {
				warnings = append(warnings, coercionWarning(field, raw, v))
			}
			pool.SizePercent = v
		case "mode":
			mode, err := models.ParsePoolMode(raw)
			if err != nil {
				writeError(w, r, err, "Modo de pool inválido")
				return
			}
			pool.Mode = mode
		default:
			writeError(w, r, fmt.Errorf("%w: unknown field %q", errBadRequest, field), "Campo desconhecido")
			return
		}
	}

	if err := s.store.SetPool(r.Context(), pool); err != nil {
		writeError(w, r, err, "Erro ao salvar o pool")
		return
	}
	slog.Info("Pool updated", "size_percent", pool.SizePercent, "mode", pool.Mode)
	s.respond(w, r, http.StatusOK, warnings)
}

// CreateContributor adds a contributor. An empty body adds the default
// "Novo Contribuidor" row; otherwise the body is a full contributor.
func (s *AllocationService) CreateContributor(w http.ResponseWriter, r *http.Request) {
	c := models.Contributor{
		Name:          "Novo Contribuidor",
		Category:      "dev",
		Type:          models.ContributionHours,
		ValueUnit:     60,
		Weight:        1,
		StartDate:     s.now().Format(time.DateOnly),
		VestingMonths: 24,
		CliffMonths:   6,
	}
	if err := decodeJSON(r, &c); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	if err := s.store.CreateContributor(r.Context(), &c); err != nil {
		writeError(w, r, err, "Erro ao adicionar contribuidor")
		return
	}
	slog.Info("Contributor created", "contributor_id", c.ID, "name", c.Name)
	s.respond(w, r, http.StatusCreated, nil)
}

// UpdateContributor applies form-style edits {"field": "raw value"}.
// Numeric fields are read leniently; coercions come back as warnings.
func (s *AllocationService) UpdateContributor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form map[string]string
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	c, err := s.store.GetContributor(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Contribuidor não encontrado")
		return
	}

	warnings, err := applyContributorForm(&c, form)
	if err != nil {
		writeError(w, r, err, "Campo inválido")
		return
	}
	if err := c.Validate(); err != nil {
		writeError(w, r, err, "Contribuidor inválido")
		return
	}
	if err := s.store.UpdateContributor(r.Context(), c); err != nil {
		writeError(w, r, err, "Erro ao atualizar contribuidor")
		return
	}

	slog.Info("Contributor updated", "contributor_id", id, "fields", len(form), "warnings", len(warnings))
	s.respond(w, r, http.StatusOK, warnings)
}

// ToggleLock flips the lock flag of a contributor.
func (s *AllocationService) ToggleLock(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	c, err := s.store.GetContributor(r.Context(), id)
	if err != nil {
		writeError(w, r, err, "Contribuidor não encontrado")
		return
	}
	c.IsLocked = !c.IsLocked
	if err := s.store.UpdateContributor(r.Context(), c); err != nil {
		writeError(w, r, err, "Erro ao atualizar contribuidor")
		return
	}
	slog.Info("Contributor lock toggled", "contributor_id", id, "locked", c.IsLocked)
	s.respond(w, r, http.StatusOK, nil)
}

// DeleteContributor removes a contributor.
func (s *AllocationService) DeleteContributor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.store.DeleteContributor(r.Context(), id); err != nil {
		writeError(w, r, err, "Contribuidor não encontrado")
		return
	}
	slog.Info("Contributor deleted", "contributor_id", id)
	s.respond(w, r, http.StatusOK, nil)
}

// UpdateCategory applies {"name": "...", "maxPercent": "..."} to a category cap.
func (s *AllocationService) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var form map[string]string
	if err := decodeJSON(r, &form); err != nil {
		writeError(w, r, err, "JSON mal formado")
		return
	}

	categories, err := s.store.ListCategories(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao carregar categorias")
		return
	}
	var category *models.CategoryCap
	for i := range categories {
		if categories[i].ID == id {
			category = &categories[i]
			break
		}
	}
	if category == nil {
		writeError(w, r, fmt.Errorf("category %s: %w", id, storage.ErrNotFound), "Categoria não encontrada")
		return
	}

	var warnings []string
	for field, raw := range form {
		switch field {
		case "maxPercent":
			v, coerced := numeric.Coerce(raw)
			if coerced {
				warnings = append(warnings, coercionWarning(field, raw, v))
			}
			category.MaxPercent = v
		case "name":
			category.Name = raw
		default:
			writeError(w, r, fmt.Errorf("%w: unknown field %q", errBadRequest, field), "Campo desconhecido")
			return
		}
	}
	if err := category.Validate(); err != nil {
		writeError(w, r, err, "Categoria inválida")
		return
	}
	if err := s.store.UpdateCategory(r.Context(), *category); err != nil {
		writeError(w, r, err, "Erro ao atualizar categoria")
		return
	}
	slog.Info("Category updated", "category_id", id, "max_percent", category.MaxPercent)
	s.respond(w, r, http.StatusOK, warnings)
}

// ExportCSV downloads the allocation table.
func (s *AllocationService) ExportCSV(w http.ResponseWriter, r *http.Request) {
	view, err := s.Simulate(r.Context())
	if err != nil {
		writeError(w, r, err, "Erro ao calcular a alocação")
		return
	}
	var buf bytes.Buffer
	if err := csvio.WriteAllocation(&buf, view.Simulation.Shares); err != nil {
		writeError(w, r, err, "Erro ao gerar CSV")
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="slicepie-alocacao.csv"`)
	w.Write(buf.Bytes())
}

// applyContributorForm writes raw form values into c.
func applyContributorForm(c *models.Contributor, form map[string]string) ([]string, error) {
	var warnings []string
	number := func(field, raw string) float64 {
		v, coerced := numeric.Coerce(raw)
		if coerced {
			warnings = append(warnings, coercionWarning(field, raw, v))
		}
		return v
	}
	integer := func(field, raw string) int {
		if v, err := numeric.ParseInt(raw); err == nil {
			return v
		}
		v := numeric.ParseIntOrZero(raw)
		warnings = append(warnings, coercionWarning(field, raw, float64(v)))
		return v
	}

	for field, raw := range form {
		switch field {
		case "name":
			c.Name = raw
		case "category":
			c.Category = raw
		case "type":
			t, err := models.ParseContributionType(raw)
			if err != nil {
				return nil, err
			}
			c.Type = t
		case "quantity":
			c.Quantity = number(field, raw)
		case "valueUnit":
			c.ValueUnit = number(field, raw)
		case "weight":
			c.Weight = number(field, raw)
		case "startDate":
			c.StartDate = raw
		case "vestingMonths":
			c.VestingMonths = integer(field, raw)
		case "cliffMonths":
			c.CliffMonths = integer(field, raw)
		case "hasMilestone", "isLocked":
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be true or false", errBadRequest, field)
			}
			if field == "isLocked" {
				c.IsLocked = b
			} else {
				c.HasMilestone = b
			}
		case "milestoneDescription":
			if strings.TrimSpace(raw) == "" {
				c.MilestoneDescription = nil
			} else {
				d := raw
				c.MilestoneDescription = &d
			}
		case "milestoneTriggerValue":
			if strings.TrimSpace(raw) == "" {
				c.MilestoneTriggerValue = nil
			} else {
				v := number(field, raw)
				c.MilestoneTriggerValue = &v
			}
		default:
			return nil, fmt.Errorf("%w: unknown field %q", errBadRequest, field)
		}
	}
	return warnings, nil
}

func coercionWarning(field, raw string, v float64) string {
	return fmt.Sprintf("%s: valor %q não é um número válido, usado %s", field, raw, strconv.FormatFloat(v, 'f', -1, 64))
}
