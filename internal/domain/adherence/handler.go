package adherence

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"siam-adherence/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/adherence", func(ar chi.Router) {
		ar.Post("/doses", registerDoseHandler(svc))

		ar.Get("/summary", summaryHandler(svc))
		ar.Get("/missed-by-week", missedByWeekHandler(svc))
		ar.Get("/daily-consumption", dailyConsumptionHandler(svc))
	})
}

type registerDoseRequest struct {
	MedicationID int64 `json:"medicationId"`
	Taken        *bool `json:"taken"`
}

type registerDoseResponse struct {
	Message      string    `json:"message"`
	ID           int64     `json:"id"`
	MedicationID int64     `json:"medicationId"`
	Taken        bool      `json:"taken"`
	TakenAt      time.Time `json:"takenAt"`
}

type summaryResponse struct {
	Name        string `json:"name"`
	TakenCount  int64  `json:"takenCount"`
	MissedCount int64  `json:"missedCount"`
}

type missedByWeekResponse struct {
	Name        string `json:"name"`
	MissedCount int64  `json:"missedCount"`
	Week        string `json:"week" example:"2025-03-03"`
}

type dailyConsumptionResponse struct {
	Name       string `json:"name"`
	TakenCount int64  `json:"takenCount"`
	DayOfWeek  string `json:"dayOfWeek" example:"Monday"`
}

// registerDoseHandler godoc
// @Summary Registrar dose
// @Description Registra si la dosis fue tomada. Con taken=false avisa por email a todos los responsables, en background.
// @Tags adherence
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body registerDoseRequest true "Dose"
// @Success 201 {object} registerDoseResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Failure 500 {string} string "internal error"
// @Router /adherence/doses [post]
func registerDoseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req registerDoseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if req.Taken == nil {
			http.Error(w, "taken is required", http.StatusBadRequest)
			return
		}

		l, err := svc.RegisterDose(r.Context(), userID, DoseInput{
			MedicationID: req.MedicationID,
			Taken:        *req.Taken,
		})
		if err != nil {
			switch {
			case errors.Is(err, ErrInvalidInput):
				http.Error(w, err.Error(), http.StatusBadRequest)
			case errors.Is(err, ErrNotFound):
				http.Error(w, "medication not found", http.StatusNotFound)
			default:
				http.Error(w, "internal error", http.StatusInternalServerError)
			}
			return
		}

		writeJSON(w, http.StatusCreated, registerDoseResponse{
			Message:      "Dose registrada com sucesso!",
			ID:           l.ID,
			MedicationID: l.MedicationID,
			Taken:        l.Taken,
			TakenAt:      l.TakenAt,
		})
	}
}

// summaryHandler godoc
// @Summary Dados de adesão
// @Description Tomas y omisiones por medicamento del usuario (incluye medicamentos sin registros).
// @Tags adherence
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} summaryResponse
// @Failure 401 {string} string "unauthorized"
// @Router /adherence/summary [get]
func summaryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := svc.Summary(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]summaryResponse, 0, len(rows))
		for _, s := range rows {
			out = append(out, summaryResponse{Name: s.Name, TakenCount: s.TakenCount, MissedCount: s.MissedCount})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// missedByWeekHandler godoc
// @Summary Doses esquecidas por semana
// @Description week es el lunes (UTC) de la semana, YYYY-MM-DD.
// @Tags adherence
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} missedByWeekResponse
// @Failure 401 {string} string "unauthorized"
// @Router /adherence/missed-by-week [get]
func missedByWeekHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rows, err := svc.MissedByWeek(r.Context(), userID)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]missedByWeekResponse, 0, len(rows))
		for _, m := range rows {
			out = append(out, missedByWeekResponse{
				Name:        m.Name,
				MissedCount: m.MissedCount,
				Week:        m.Week.UTC().Format("2006-01-02"),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// dailyConsumptionHandler godoc
// @Summary Consumo diário
// @Description Tomas por día de la semana. Por defecto solo la semana actual.
// @Tags adherence
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param current_week query bool false "Restringir a la semana actual (default true)"
// @Success 200 {array} dailyConsumptionResponse
// @Failure 400 {string} string "invalid current_week"
// @Failure 401 {string} string "unauthorized"
// @Router /adherence/daily-consumption [get]
func dailyConsumptionHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		currentWeek := true
		if raw := r.URL.Query().Get("current_week"); raw != "" {
			v, err := strconv.ParseBool(raw)
			if err != nil {
				http.Error(w, "invalid current_week", http.StatusBadRequest)
				return
			}
			currentWeek = v
		}

		rows, err := svc.DailyConsumption(r.Context(), userID, currentWeek)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]dailyConsumptionResponse, 0, len(rows))
		for _, d := range rows {
			out = append(out, dailyConsumptionResponse{Name: d.Name, TakenCount: d.TakenCount, DayOfWeek: d.DayOfWeek})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
