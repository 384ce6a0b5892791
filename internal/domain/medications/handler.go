package medications

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"siam-adherence/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/medications", func(mr chi.Router) {
		mr.Post("/", createMedicationHandler(svc))
		mr.Get("/", listMedicationsHandler(svc))

		mr.Get("/{medicationID}", getMedicationHandler(svc))
		mr.Put("/{medicationID}", updateMedicationHandler(svc))
		mr.Delete("/{medicationID}", deleteMedicationHandler(svc))
	})
}

type scheduleDTO struct {
	Time       string   `json:"time" example:"08:00"`
	DaysOfWeek []string `json:"daysOfWeek" example:"Monday,Wednesday"`
}

// medicationRequest es el cuerpo de alta/edición de un medicamento.
type medicationRequest struct {
	Name                    string        `json:"name"`
	Dosage                  float64       `json:"dosage"`
	StartDate               string        `json:"startDate"`         // YYYY-MM-DD
	EndDate                 string        `json:"endDate,omitempty"` // YYYY-MM-DD opcional
	Observations            string        `json:"observations"`
	AdministrationSchedules []scheduleDTO `json:"administrationSchedules"`
}

type medicationResponse struct {
	ID                      int64         `json:"id"`
	Name                    string        `json:"name"`
	Dosage                  float64       `json:"dosage"`
	StartDate               string        `json:"startDate"`
	EndDate                 *string       `json:"endDate"`
	Observations            string        `json:"observations"`
	AdministrationSchedules []scheduleDTO `json:"administrationSchedules"`
	CreatedAt               time.Time     `json:"createdAt"`
	UpdatedAt               time.Time     `json:"updatedAt"`
}

// createMedicationHandler godoc
// @Summary Cadastrar medicamento
// @Description Crea un medicamento con sus horarios de administración en una única transacción.
// @Tags medications
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body medicationRequest true "Medicamento"
// @Success 201 {object} medicationResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /medications [post]
func createMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, err := decodeMedication(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toMedicationResponse(m))
	}
}

// listMedicationsHandler godoc
// @Summary Listar medicamentos do usuário
// @Tags medications
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /medications [get]
func listMedicationsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.List(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]medicationResponse, 0, len(items))
		for _, m := range items {
			out = append(out, toMedicationResponse(m))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getMedicationHandler godoc
// @Summary Obter medicamento
// @Tags medications
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param medicationID path int true "ID do medicamento"
// @Success 200 {object} medicationResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [get]
func getMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, ok := pathID(r, "medicationID")
		if !ok {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		m, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// updateMedicationHandler godoc
// @Summary Editar medicamento
// @Description Reemplaza datos y horarios. Solo el dueño puede editar.
// @Tags medications
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param medicationID path int true "ID do medicamento"
// @Param payload body medicationRequest true "Medicamento"
// @Success 200 {object} medicationResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [put]
func updateMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, ok := pathID(r, "medicationID")
		if !ok {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		in, err := decodeMedication(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		m, err := svc.Update(r.Context(), userID, id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toMedicationResponse(m))
	}
}

// deleteMedicationHandler godoc
// @Summary Excluir medicamento
// @Description Borra el medicamento; horarios, alertas y registros de dosis se eliminan en cascada.
// @Tags medications
// @Param Authorization header string false "Bearer token"
// @Param medicationID path int true "ID do medicamento"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /medications/{medicationID} [delete]
func deleteMedicationHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		id, ok := pathID(r, "medicationID")
		if !ok {
			http.Error(w, "medication not found", http.StatusNotFound)
			return
		}

		if err := svc.Delete(r.Context(), userID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeMedication(r *http.Request) (Input, error) {
	var req medicationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, errors.New("invalid json")
	}

	start, err := time.Parse(dateLayout, strings.TrimSpace(req.StartDate))
	if err != nil {
		return Input{}, errors.New("startDate must be YYYY-MM-DD")
	}

	var end *time.Time
	if v := strings.TrimSpace(req.EndDate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return Input{}, errors.New("endDate must be YYYY-MM-DD")
		}
		end = &t
	}

	schedules := make([]AdministrationSchedule, 0, len(req.AdministrationSchedules))
	for _, s := range req.AdministrationSchedules {
		schedules = append(schedules, AdministrationSchedule{Time: s.Time, DaysOfWeek: s.DaysOfWeek})
	}

	return Input{
		Name:         req.Name,
		Dosage:       req.Dosage,
		StartDate:    start,
		EndDate:      end,
		Observations: req.Observations,
		Schedules:    schedules,
	}, nil
}

func toMedicationResponse(m Medication) medicationResponse {
	var end *string
	if m.EndDate != nil {
		s := m.EndDate.Format(dateLayout)
		end = &s
	}

	schedules := make([]scheduleDTO, 0, len(m.Schedules))
	for _, s := range m.Schedules {
		schedules = append(schedules, scheduleDTO{Time: s.Time, DaysOfWeek: s.DaysOfWeek})
	}

	return medicationResponse{
		ID:                      m.ID,
		Name:                    m.Name,
		Dosage:                  m.Dosage,
		StartDate:               m.StartDate.Format(dateLayout),
		EndDate:                 end,
		Observations:            m.Observations,
		AdministrationSchedules: schedules,
		CreatedAt:               m.CreatedAt,
		UpdatedAt:               m.UpdatedAt,
	}
}

func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
