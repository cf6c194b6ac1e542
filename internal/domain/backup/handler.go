package backup

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"civil-registry/internal/domain/auditlog"
	"civil-registry/internal/domain/users"
	"civil-registry/internal/middleware"
	"civil-registry/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, auditSvc *auditlog.Service) {
	r.Route("/backup", func(br chi.Router) {
		br.Get("/export", exportHandler(svc, auditSvc))
		br.Post("/import", importHandler(svc, auditSvc))
	})
}

// exportHandler godoc
// @Summary Exportar backup
// @Description Devuelve el documento {version, exportDate, records, logs} con el estado actual. Solo ADMIN.
// @Tags backup
// @Produce json
// @Success 200 {object} Payload
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /backup/export [get]
func exportHandler(svc *Service, auditSvc *auditlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		p, err := svc.Export(r.Context())
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		auditSvc.Record(r.Context(), claims.UserID, claims.FullName,
			auditlog.ActionExportDatabase, "Admin exported a JSON backup.")

		writeJSON(w, http.StatusOK, p)
	}
}

// importHandler godoc
// @Summary Importar backup
// @Description Reemplaza registros y logs con el documento dado. Solo ADMIN.
// @Tags backup
// @Accept json
// @Produce json
// @Param payload body Payload true "Documento de backup"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "invalid json / payload inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 500 {string} string "internal error"
// @Router /backup/import [post]
func importHandler(svc *Service, auditSvc *auditlog.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireAdmin(w, r)
		if !ok {
			return
		}

		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if err := svc.Import(r.Context(), p); err != nil {
			if errors.Is(err, ErrInvalidPayload) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		auditSvc.Record(r.Context(), claims.UserID, claims.FullName,
			auditlog.ActionImportDatabase, "Admin restored system from backup.")

		writeJSON(w, http.StatusOK, map[string]string{"message": "Backup restored successfully"})
	}
}

func requireAdmin(w http.ResponseWriter, r *http.Request) (claims auth.Claims, ok bool) {
	c, has := middleware.GetClaims(r.Context())
	if !has || strings.TrimSpace(c.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return c, false
	}
	if users.Role(c.Role) != users.RoleAdmin {
		http.Error(w, "forbidden", http.StatusForbidden)
		return c, false
	}
	return c, true
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
