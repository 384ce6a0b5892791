package alerts

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"siam-adherence/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/alerts", func(ar chi.Router) {
		ar.Post("/", createAlertHandler(svc))
		ar.Get("/", listAlertsHandler(svc))

		ar.Get("/{alertID}", getAlertHandler(svc))
		ar.Put("/{alertID}", updateAlertHandler(svc))
		ar.Delete("/{alertID}", deleteAlertHandler(svc))
	})
}

type alertRequest struct {
	Name         string `json:"name"`
	PlayCount    int    `json:"playCount"`
	IsActive     *bool  `json:"isActive"` // default true
	MedicationID int64  `json:"medicationId"`
}

type alertResponse struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	PlayCount      int    `json:"playCount"`
	IsActive       bool   `json:"isActive"`
	MedicationID   int64  `json:"medicationId"`
	MedicationName string `json:"medicationName"`
}

// createAlertHandler godoc
// @Summary Cadastrar alerta
// @Description El medicamento referenciado debe pertenecer al usuario.
// @Tags alerts
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body alertRequest true "Alerta"
// @Success 201 {object} alertResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "medication not found"
// @Router /alerts [post]
func createAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, err := decodeAlert(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toAlertResponse(a))
	}
}

// listAlertsHandler godoc
// @Summary Listar alertas
// @Tags alerts
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} alertResponse
// @Failure 401 {string} string "unauthorized"
// @Router /alerts [get]
func listAlertsHandler(svc *Service) http.HandlerFunc {
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

		out := make([]alertResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAlertResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getAlertHandler godoc
// @Summary Obter alerta
// @Tags alerts
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param alertID path int true "ID do alerta"
// @Success 200 {object} alertResponse
// @Failure 404 {string} string "alert not found"
// @Router /alerts/{alertID} [get]
func getAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}

		a, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(a))
	}
}

// updateAlertHandler godoc
// @Summary Editar alerta
// @Tags alerts
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param alertID path int true "ID do alerta"
// @Param payload body alertRequest true "Alerta"
// @Success 200 {object} alertResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "alert not found"
// @Router /alerts/{alertID} [put]
func updateAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}

		in, err := decodeAlert(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Update(r.Context(), userID, id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAlertResponse(a))
	}
}

// deleteAlertHandler godoc
// @Summary Excluir alerta
// @Tags alerts
// @Param Authorization header string false "Bearer token"
// @Param alertID path int true "ID do alerta"
// @Success 204
// @Failure 404 {string} string "alert not found"
// @Router /alerts/{alertID} [delete]
func deleteAlertHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "alert not found", http.StatusNotFound)
			return
		}

		if err := svc.Delete(r.Context(), userID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeAlert(r *http.Request) (Input, error) {
	var req alertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, errors.New("invalid json")
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return Input{
		MedicationID: req.MedicationID,
		Name:         req.Name,
		PlayCount:    req.PlayCount,
		IsActive:     active,
	}, nil
}

func toAlertResponse(a Alert) alertResponse {
	return alertResponse{
		ID:             a.ID,
		Name:           a.Name,
		PlayCount:      a.PlayCount,
		IsActive:       a.IsActive,
		MedicationID:   a.MedicationID,
		MedicationName: a.MedicationName,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "alertID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrMedicationNotFound):
		http.Error(w, "medication not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "alert not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
