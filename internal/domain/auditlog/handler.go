package auditlog

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"civil-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/logs", listLogsHandler(svc))
	r.Post("/logs", appendLogHandler(svc))
}

// logResponse representa una entrada de auditoría devuelta por la API.
type logResponse struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

// appendLogRequest es el cuerpo para registrar una entrada de auditoría.
type appendLogRequest struct {
	UserID   string `json:"userId"`
	UserName string `json:"userName"`
	Action   string `json:"action"`
	Details  string `json:"details"`
}

// listLogsHandler godoc
// @Summary Listar log de auditoría
// @Description Devuelve las últimas 100 entradas del log, más recientes primero. Requiere usuario autenticado.
// @Tags logs
// @Produce json
// @Success 200 {array} logResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /logs [get]
func listLogsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		items, err := svc.Recent(r.Context(), RecentLimit)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]logResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toLogResponse(e))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// appendLogHandler godoc
// @Summary Registrar entrada de auditoría
// @Description Inserta una entrada en el log (append-only). El ID del cliente se descarta; lo asigna el store.
// @Tags logs
// @Accept json
// @Produce json
// @Param payload body appendLogRequest true "Entrada a registrar; action es obligatorio"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "invalid json / action required"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /logs [post]
func appendLogHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req appendLogRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		_, err := svc.Append(r.Context(), Entry{
			UserID:   req.UserID,
			UserName: req.UserName,
			Action:   req.Action,
			Details:  req.Details,
		})
		if err != nil {
			if err == ErrInvalidInput {
				http.Error(w, "action required", http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Log saved successfully"})
	}
}

func toLogResponse(e Entry) logResponse {
	return logResponse{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		UserID:    e.UserID,
		UserName:  e.UserName,
		Action:    e.Action,
		Details:   e.Details,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
