package records

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"civil-registry/internal/domain/records/details"
	"civil-registry/internal/domain/users"
	"civil-registry/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/records", func(rr chi.Router) {
		rr.Get("/", listRecordsHandler(svc))
		rr.Post("/", createRecordHandler(svc))
		rr.Put("/", updateStatusHandler(svc))

		rr.Get("/{recordID}", getRecordHandler(svc))
		rr.Get("/{recordID}/certificate", certificateHandler(svc))
	})
}

// documentPayload es un adjunto en el wire (nombres del cliente original).
type documentPayload struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// createRecordRequest es el cuerpo para crear un registro vital.
type createRecordRequest struct {
	ID          string            `json:"id"` // opcional; REG-XXXXXXXXX si viene
	Type        EventType         `json:"type" enums:"BIRTH,DEATH,MARRIAGE,DIVORCE"`
	Kebele      string            `json:"kebele"`
	Data        json.RawMessage   `json:"data"`
	Documents   []documentPayload `json:"documents"`
	ApplicantID string            `json:"applicantId"` // opcional (DATA_CLERK)
}

// updateRecordRequest es el cuerpo de PUT /records.
type updateRecordRequest struct {
	ID              string `json:"id"`
	Status          Status `json:"status" enums:"PENDING,UNDER_REVIEW,APPROVED,REJECTED"`
	RejectionReason string `json:"rejectionReason"`
}

// recordResponse representa un registro vital devuelto por la API.
type recordResponse struct {
	ID                string            `json:"id"`
	Type              EventType         `json:"type"`
	Kebele            string            `json:"kebele"`
	Status            Status            `json:"status"`
	RegistrationDate  time.Time         `json:"registrationDate"`
	ApplicantID       string            `json:"applicantId"`
	Data              details.EventData `json:"data"`
	Documents         []documentPayload `json:"documents"`
	CertificateNumber string            `json:"certificateNumber,omitempty"`
	RejectionReason   string            `json:"rejectionReason,omitempty"`
}

// certificateResponse es el payload del certificado imprimible.
type certificateResponse struct {
	CertificateNumber string    `json:"certificateNumber"`
	RecordID          string    `json:"recordId"`
	Type              EventType `json:"type"`
	Kebele            string    `json:"kebele"`
	Holder            string    `json:"holder"`
	EventDate         string    `json:"eventDate"`
	RegistrationDate  time.Time `json:"registrationDate"`
}

// listRecordsHandler godoc
// @Summary Listar/buscar registros vitales
// @Description Lista registros ordenados por fecha de registro descendente. search filtra por substring (case-insensitive) contra el id o el contenido del payload; type y kebele son match exacto. Un CITIZEN solo ve sus propios trámites.
// @Tags records
// @Produce json
// @Param search query string false "Texto libre contra id o datos del evento"
// @Param type query string false "Tipo de evento exacto (BIRTH, DEATH, MARRIAGE, DIVORCE)"
// @Param kebele query string false "Kebele exacto"
// @Success 200 {array} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /records [get]
func listRecordsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		f := Filter{
			Search: r.URL.Query().Get("search"),
			Kebele: r.URL.Query().Get("kebele"),
		}
		if v := strings.TrimSpace(r.URL.Query().Get("type")); v != "" {
			f.Type = EventType(v)
		}

		items, err := svc.ListForUser(r.Context(), actor, f)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]recordResponse, 0, len(items))
		for _, rec := range items {
			out = append(out, toRecordResponse(rec))
		}

		writeJSON(w, http.StatusOK, out)
	}
}

// createRecordHandler godoc
// @Summary Crear registro vital
// @Description Crea un registro nuevo en estado PENDING. Requiere tipo y kebele seleccionados, al menos un documento adjunto y los campos obligatorios del tipo de evento. Un DATA_CLERK puede registrar con applicantId ajeno; un CITIZEN siempre registra a su nombre.
// @Tags records
// @Accept json
// @Produce json
// @Param payload body createRecordRequest true "Registro a crear; data depende del tipo de evento"
// @Success 201 {object} map[string]string
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 500 {string} string "internal error"
// @Router /records [post]
func createRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req createRecordRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		if !req.Type.IsValid() {
			http.Error(w, ErrMissingSelection.Error(), http.StatusBadRequest)
			return
		}

		data, err := details.Decode(string(req.Type), req.Data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		docs := make([]Document, 0, len(req.Documents))
		for _, d := range req.Documents {
			docs = append(docs, Document{
				Name:       d.Name,
				MediaType:  d.Type,
				StorageRef: d.URL,
			})
		}

		rec, err := svc.Create(r.Context(), actor, CreateInput{
			ID:          req.ID,
			Type:        req.Type,
			Kebele:      req.Kebele,
			Data:        data,
			Documents:   docs,
			ApplicantID: req.ApplicantID,
		})
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, map[string]string{
			"message": "Record created successfully",
			"id":      rec.ID,
		})
	}
}

// updateStatusHandler godoc
// @Summary Actualizar status de un registro
// @Description Ejecuta una transición del workflow. Solo ADMIN/SUPERVISOR. La primera aprobación asigna el número de certificado; REJECTED puede llevar rejectionReason. Tolera un nivel de body doble-encodeado (workaround histórico del cliente).
// @Tags records
// @Accept json
// @Produce json
// @Param payload body updateRecordRequest true "Transición pedida"
// @Success 200 {object} map[string]string
// @Failure 400 {string} string "invalid json / transición inválida"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "record not found"
// @Failure 409 {string} string "conflicto (carrera de transición o certificado)"
// @Router /records [put]
func updateStatusHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		if err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}

		req, err := decodeUpdateRequest(raw)
		if err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ID) == "" {
			http.Error(w, "record id required", http.StatusBadRequest)
			return
		}

		_, err = svc.Transition(r.Context(), actor, req.ID, req.Status, req.RejectionReason)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, map[string]string{"message": "Record updated successfully"})
	}
}

// getRecordHandler godoc
// @Summary Obtener un registro
// @Description Devuelve un registro por id, respetando la vista por rol (un CITIZEN ajeno recibe 404).
// @Tags records
// @Produce json
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "record not found"
// @Router /records/{recordID} [get]
func getRecordHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.GetForActor(r.Context(), actor, chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toRecordResponse(rec))
	}
}

// certificateHandler godoc
// @Summary Obtener certificado de un registro aprobado
// @Description Devuelve el payload del certificado imprimible. Solo registros APPROVED.
// @Tags records
// @Produce json
// @Param recordID path string true "ID del registro"
// @Success 200 {object} certificateResponse
// @Failure 400 {string} string "record is not approved"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "record not found"
// @Router /records/{recordID}/certificate [get]
func certificateHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(r)
		if !ok {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		rec, err := svc.GetForActor(r.Context(), actor, chi.URLParam(r, "recordID"))
		if err != nil {
			writeError(w, err)
			return
		}

		if rec.Status != StatusApproved || rec.CertificateNumber == "" {
			http.Error(w, "record is not approved", http.StatusBadRequest)
			return
		}

		writeJSON(w, http.StatusOK, certificateResponse{
			CertificateNumber: rec.CertificateNumber,
			RecordID:          rec.ID,
			Type:              rec.Type,
			Kebele:            rec.Kebele,
			Holder:            rec.Data.Holder(),
			EventDate:         rec.Data.EventDate(),
			RegistrationDate:  rec.RegistrationDate,
		})
	}
}

// decodeUpdateRequest tolera un nivel de doble encoding: si el body
// deserializa a un string JSON, se decodea ese string una vez más.
// El cliente original llegó a mandar el body doble-encodeado.
func decodeUpdateRequest(raw []byte) (updateRecordRequest, error) {
	var req updateRecordRequest
	if err := json.Unmarshal(raw, &req); err == nil {
		return req, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return updateRecordRequest{}, err
	}
	if err := json.Unmarshal([]byte(s), &req); err != nil {
		return updateRecordRequest{}, err
	}
	return req, nil
}

func actorFrom(r *http.Request) (Actor, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		return Actor{}, false
	}
	return Actor{
		ID:   claims.UserID,
		Name: claims.FullName,
		Role: users.Role(claims.Role),
	}, true
}

func toRecordResponse(rec Record) recordResponse {
	docs := make([]documentPayload, 0, len(rec.Documents))
	for _, d := range rec.Documents {
		docs = append(docs, documentPayload{
			Name: d.Name,
			Type: d.MediaType,
			URL:  d.StorageRef,
		})
	}

	return recordResponse{
		ID:                rec.ID,
		Type:              rec.Type,
		Kebele:            rec.Kebele,
		Status:            rec.Status,
		RegistrationDate:  rec.RegistrationDate,
		ApplicantID:       rec.ApplicantID,
		Data:              rec.Data,
		Documents:         docs,
		CertificateNumber: rec.CertificateNumber,
		RejectionReason:   rec.RejectionReason,
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "record not found", http.StatusNotFound)
	case errors.Is(err, ErrBadState), errors.Is(err, ErrConflict), errors.Is(err, ErrDuplicateCertificate):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrNoDocuments),
		errors.Is(err, ErrMissingSelection), errors.Is(err, details.ErrMissingField),
		errors.Is(err, details.ErrUnknownEventType):
		http.Error(w, err.Error(), http.StatusBadRequest)
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
