package users

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"siam-adherence/internal/middleware"

	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

// RegisterAuthRoutes monta signup/login. El router los envuelve con rate limit.
func RegisterAuthRoutes(r chi.Router, svc *Service) {
	r.Post("/signup", signupHandler(svc))
	r.Post("/login", loginHandler(svc))
}

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/me", func(mr chi.Router) {
		mr.Get("/", getMeHandler(svc))
		mr.Put("/", updateMeHandler(svc))
		mr.Put("/password", changePasswordHandler(svc))
	})
}

type profileRequest struct {
	FullName     string `json:"fullName"`
	Nickname     string `json:"nickname"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	CPF          string `json:"cpf"`
	Birthdate    string `json:"birthdate"` // YYYY-MM-DD opcional
	Address      string `json:"address"`
	City         string `json:"city"`
	ZipCode      string `json:"zipCode"`
	Observations string `json:"observations"`
}

type signupRequest struct {
	profileRequest
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type userResponse struct {
	ID           int64     `json:"id"`
	FullName     string    `json:"fullName"`
	Nickname     string    `json:"nickname"`
	Email        string    `json:"email"`
	PhoneNumber  string    `json:"phoneNumber"`
	CPF          string    `json:"cpf"`
	Birthdate    *string   `json:"birthdate"`
	Address      string    `json:"address"`
	City         string    `json:"city"`
	ZipCode      string    `json:"zipCode"`
	Observations string    `json:"observations"`
	Username     string    `json:"username"`
	CreatedAt    time.Time `json:"createdAt"`
}

// signupHandler godoc
// @Summary Cadastro de usuário
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body signupRequest true "Usuário"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "invalid input"
// @Failure 409 {string} string "username already taken"
// @Failure 429 {string} string "too many requests"
// @Router /signup [post]
func signupHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		p, err := req.profileRequest.toProfile()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		u, err := svc.Register(r.Context(), RegisterInput{
			Profile:  p,
			Username: req.Username,
			Password: req.Password,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

// loginHandler godoc
// @Summary Login
// @Description Devuelve un JWT (HS256) para usar como Bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciais"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "invalid credentials"
// @Failure 429 {string} string "too many requests"
// @Router /login [post]
func loginHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		sess, err := svc.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, loginResponse{Token: sess.Token, UserID: sess.UserID})
	}
}

// getMeHandler godoc
// @Summary Meu perfil
// @Tags users
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Success 200 {object} userResponse
// @Failure 401 {string} string "unauthorized"
// @Router /me [get]
func getMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		u, err := svc.Get(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// updateMeHandler godoc
// @Summary Editar meu perfil
// @Tags users
// @Accept json
// @Produce json
// @Param Authorization header string false "Bearer token"
// @Param payload body profileRequest true "Perfil"
// @Success 200 {object} userResponse
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "unauthorized"
// @Router /me [put]
func updateMeHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		p, err := req.toProfile()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		u, err := svc.UpdateProfile(r.Context(), userID, p)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toUserResponse(u))
	}
}

// changePasswordHandler godoc
// @Summary Trocar senha
// @Tags users
// @Accept json
// @Param Authorization header string false "Bearer token"
// @Param payload body changePasswordRequest true "Senhas"
// @Success 204
// @Failure 400 {string} string "invalid input"
// @Failure 401 {string} string "invalid credentials"
// @Router /me/password [put]
func changePasswordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := middleware.UserID(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req changePasswordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.ChangePassword(r.Context(), userID, req.CurrentPassword, req.NewPassword); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (p profileRequest) toProfile() (Profile, error) {
	var birth *time.Time
	if v := strings.TrimSpace(p.Birthdate); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return Profile{}, errors.New("birthdate must be YYYY-MM-DD")
		}
		birth = &t
	}
	return Profile{
		FullName:     p.FullName,
		Nickname:     p.Nickname,
		Email:        p.Email,
		PhoneNumber:  p.PhoneNumber,
		CPF:          p.CPF,
		Birthdate:    birth,
		Address:      p.Address,
		City:         p.City,
		ZipCode:      p.ZipCode,
		Observations: p.Observations,
	}, nil
}

func toUserResponse(u User) userResponse {
	var birth *string
	if u.Birthdate != nil {
		s := u.Birthdate.Format(dateLayout)
		birth = &s
	}
	return userResponse{
		ID:           u.ID,
		FullName:     u.FullName,
		Nickname:     u.Nickname,
		Email:        u.Email,
		PhoneNumber:  u.PhoneNumber,
		CPF:          u.CPF,
		Birthdate:    birth,
		Address:      u.Address,
		City:         u.City,
		ZipCode:      u.ZipCode,
		Observations: u.Observations,
		Username:     u.Username,
		CreatedAt:    u.CreatedAt,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "invalid credentials", http.StatusUnauthorized)
	case errors.Is(err, ErrConflict):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "user not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
