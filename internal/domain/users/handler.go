package users

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/middleware"
	"civil-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// TokenIssuer firma un token de sesión para los claims dados.
type TokenIssuer interface {
	Issue(c auth.Claims) (string, error)
}

func RegisterRoutes(r chi.Router, svc *Service, issuer TokenIssuer, auditSvc *auditlog.Service) {
	r.Post("/login", loginHandler(svc, issuer, auditSvc))
	r.Get("/users", listUsersHandler(svc))
	r.Post("/users", createUserHandler(svc, auditSvc))
}

// loginRequest es el cuerpo de POST /login.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// userResponse representa un usuario devuelto por la API (sin hash).
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	FullName string `json:"fullName"`
	Kebele   string `json:"kebele,omitempty"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
	Token   string       `json:"token,omitempty"`
}

// createUserRequest es el cuerpo para crear una cuenta (solo ADMIN).
type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
	Role     Role   `json:"role" enums:"ADMIN,SUPERVISOR,DATA_CLERK,CITIZEN"`
	Kebele   string `json:"kebele"`
}

// loginHandler godoc
// @Summary Login
// @Description Autentica username/password contra el hash bcrypt almacenado. Si es válido devuelve el usuario y un token de sesión.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 400 {object} map[string]string "username and password required"
// @Failure 401 {object} map[string]string "credenciales inválidas"
// @Router /login [post]
func loginHandler(svc *Service, issuer TokenIssuer, auditSvc *auditlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
			return
		}
		if strings.TrimSpace(req.Username) == "" || req.Password == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Username and password required"})
			return
		}

		u, err := svc.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
			return
		}

		token := ""
		if issuer != nil {
			token, err = issuer.Issue(auth.Claims{
				UserID:   u.ID,
				Username: u.Username,
				Role:     string(u.Role),
				FullName: u.FullName,
				Kebele:   u.Kebele,
			})
			if err != nil {
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
				return
			}
		}

		auditSvc.Record(r.Context(), u.ID, u.FullName, auditlog.ActionLogin,
			fmt.Sprintf("User %s logged in.", u.Username))

		writeJSON(w, http.StatusOK, loginResponse{
			Success: true,
			User:    toUserResponse(u),
			Token:   token,
		})
	}
}

// listUsersHandler godoc
// @Summary Listar usuarios
// @Description Lista todas las cuentas. Solo ADMIN.
// @Tags users
// @Produce json
// @Success 200 {array} userResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /users [get]
func listUsersHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if Role(claims.Role) != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		items, err := svc.List(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]userResponse, 0, len(items))
		for _, u := range items {
			out = append(out, toUserResponse(u))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// createUserHandler godoc
// @Summary Crear usuario
// @Description Crea una cuenta nueva con el role indicado. Solo ADMIN.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body createUserRequest true "Datos de la cuenta"
// @Success 201 {object} userResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /users [post]
func createUserHandler(svc *Service, auditSvc *auditlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		if Role(claims.Role) != RoleAdmin {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		u, err := svc.Create(r.Context(), CreateInput{
			Username: req.Username,
			Password: req.Password,
			FullName: req.FullName,
			Role:     req.Role,
			Kebele:   req.Kebele,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		auditSvc.Record(r.Context(), claims.UserID, claims.FullName, auditlog.ActionCreateUser,
			fmt.Sprintf("Created %s account %s.", u.Role, u.Username))

		writeJSON(w, http.StatusCreated, toUserResponse(u))
	}
}

func toUserResponse(u User) userResponse {
	return userResponse{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		FullName: u.FullName,
		Kebele:   u.Kebele,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
