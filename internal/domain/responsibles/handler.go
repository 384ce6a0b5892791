package responsibles

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
	r.Route("/responsibles", func(rr chi.Router) {
		rr.Post("/", createResponsibleHandler(svc))
		rr.Get("/", listResponsiblesHandler(svc))

		rr.Get("/{responsibleID}", getResponsibleHandler(svc))
		rr.Put("/{responsibleID}", updateResponsibleHandler(svc))
		rr.Delete("/{responsibleID}", deleteResponsibleHandler(svc))
	})
}

type responsibleRequest struct {
	FullName     string `json:"fullName"`
	CPF          string `json:"cpf"`
	RG           string `json:"rg"`
	Birthdate    string `json:"birthdate"` // YYYY-MM-DD opcional
	PhoneNumber  string `json:"phoneNumber"`
	Email        string `json:"email"`
	Address      string `json:"address"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
	Observations string `json:"observations"`
}

type responsibleResponse struct {
	ID           int64   `json:"id"`
	FullName     string  `json:"fullName"`
	CPF          string  `json:"cpf"`
	RG           string  `json:"rg"`
	Birthdate    *string `json:"birthdate"`
	PhoneNumber  string  `json:"phoneNumber"`
	Email        string  `json:"email"`
	Address      string  `json:"address"`
	City         string  `json:"city"`
	ZipCode      string  `json:"zipCode"`
	Observations string  `json:"observations"`
}

// createResponsibleHandler godoc
// @Summary Cadastrar responsável
// @Tags responsibles
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body responsibleRequest true "Responsável"
// @Success 201 {object} responsibleResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /responsibles [post]
func createResponsibleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		in, err := decodeResponsible(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := svc.Create(r.Context(), userID, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toResponsibleResponse(resp))
	}
}

// listResponsiblesHandler godoc
// @Summary Listar responsáveis
// @Tags responsibles
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {array} responsibleResponse
// @Failure 401 {string} string "unauthorized"
// @Router /responsibles [get]
func listResponsiblesHandler(svc *Service) http.HandlerFunc {
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

		out := make([]responsibleResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toResponsibleResponse(it))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getResponsibleHandler godoc
// @Summary Obter responsável
// @Tags responsibles
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param responsibleID path int true "ID do responsável"
// @Success 200 {object} responsibleResponse
// @Failure 404 {string} string "responsible not found"
// @Router /responsibles/{responsibleID} [get]
func getResponsibleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "responsible not found", http.StatusNotFound)
			return
		}

		resp, err := svc.Get(r.Context(), userID, id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponsibleResponse(resp))
	}
}

// updateResponsibleHandler godoc
// @Summary Editar responsável
// @Tags responsibles
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param responsibleID path int true "ID do responsável"
// @Param payload body responsibleRequest true "Responsável"
// @Success 200 {object} responsibleResponse
// @Failure 400 {string} string "invalid input"
// @Failure 404 {string} string "responsible not found"
// @Router /responsibles/{responsibleID} [put]
func updateResponsibleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "responsible not found", http.StatusNotFound)
			return
		}

		in, err := decodeResponsible(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		resp, err := svc.Update(r.Context(), userID, id, in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toResponsibleResponse(resp))
	}
}

// deleteResponsibleHandler godoc
// @Summary Excluir responsável
// @Tags responsibles
// @Param Authorization header string false "Bearer token"
// @Param responsibleID path int true "ID do responsável"
// @Success 204
// @Failure 404 {string} string "responsible not found"
// @Router /responsibles/{responsibleID} [delete]
func deleteResponsibleHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		id, ok := pathID(r)
		if !ok {
			http.Error(w, "responsible not found", http.StatusNotFound)
			return
		}

		if err := svc.Delete(r.Context(), userID, id); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func decodeResponsible(r *http.Request) (Input, error) {
	var req responsibleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return Input{}, errors.New("invalid json")
	}

	var birth *time.Time
	if v := strings.TrimSpace(req.Birthdate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return Input{}, errors.New("birthdate must be YYYY-MM-DD")
		}
		birth = &t
	}

	return Input{
		FullName:     req.FullName,
		CPF:          req.CPF,
		RG:           req.RG,
		Birthdate:    birth,
		PhoneNumber:  req.PhoneNumber,
		Email:        req.Email,
		Address:      req.Address,
		City:         req.City,
		ZipCode:      req.ZipCode,
		Observations: req.Observations,
	}, nil
}

func toResponsibleResponse(r Responsible) responsibleResponse {
	var birth *string
	if r.Birthdate != nil {
		s := r.Birthdate.Format(dateLayout)
		birth = &s
	}
	return responsibleResponse{
		ID:           r.ID,
		FullName:     r.FullName,
		CPF:          r.CPF,
		RG:           r.RG,
		Birthdate:    birth,
		PhoneNumber:  r.PhoneNumber,
		Email:        r.Email,
		Address:      r.Address,
		City:         r.City,
		ZipCode:      r.ZipCode,
		Observations: r.Observations,
	}
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "responsibleID"), 10, 64)
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
		http.Error(w, "responsible not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
