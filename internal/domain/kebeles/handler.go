package kebeles

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router) {
	r.Get("/kebeles", listKebelesHandler())
}

// listKebelesHandler godoc
// @Summary Listar kebeles
// @Description Devuelve el catálogo fijo de kebeles de la jurisdicción.
// @Tags kebeles
// @Produce json
// @Success 200 {array} Info
// @Router /kebeles [get]
func listKebelesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(List())
	}
}
