package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"civil-registry/internal/platform/config"
	"civil-registry/internal/router"
)

var certPattern = regexp.MustCompile(`^CERT-\d{8}$`)

func newTestServer(t *testing.T, seed bool) *httptest.Server {
	t.Helper()
	return httptest.NewServer(router.NewRouter(router.Options{
		Config: config.Config{
			AppName:   "civil-registry",
			SeedUsers: seed,
		},
	}))
}

func birthPayload() map[string]any {
	return map[string]any{
		"type":   "BIRTH",
		"kebele": "01",
		"data": map[string]any{
			"fullName": "Abebe Kebede",
			"dob":      "2024-05-01",
			"gender":   "M",
		},
		"documents": []map[string]any{
			{"name": "birth-notification.pdf", "type": "application/pdf", "url": "uploads/a.pdf"},
		},
	}
}

func TestHTTP_EndToEnd_RegistrationWorkflow(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	citizen := debugUser{ID: "c-1", Role: "CITIZEN", Name: "Citizen One"}
	otherCitizen := debugUser{ID: "c-2", Role: "CITIZEN", Name: "Citizen Two"}
	admin := debugUser{ID: "a-1", Role: "ADMIN", Name: "Admin"}

	// 1) Ciudadano crea un registro de nacimiento
	recordID := createRecord(t, ts.URL, citizen, birthPayload())

	// 2) Nace PENDING y sin certificado
	{
		st, body := doReq(t, ts.URL, "GET", "/records/"+recordID, citizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get record, got %d body=%s", st, string(body))
		}
		var rec struct {
			Status            string `json:"status"`
			CertificateNumber string `json:"certificateNumber"`
		}
		_ = json.Unmarshal(body, &rec)
		if rec.Status != "PENDING" {
			t.Fatalf("expected PENDING, got %s", rec.Status)
		}
		if rec.CertificateNumber != "" {
			t.Fatalf("new record must not carry a certificate")
		}
	}

	// 3) El certificado todavía no existe
	{
		st, _ := doReq(t, ts.URL, "GET", "/records/"+recordID+"/certificate", citizen, nil)
		if st != http.StatusBadRequest {
			t.Fatalf("expected 400 certificate before approval, got %d", st)
		}
	}

	// 4) Un ciudadano no puede aprobar
	{
		st, _ := doReq(t, ts.URL, "PUT", "/records", citizen, map[string]any{
			"id": recordID, "status": "APPROVED",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 citizen approving, got %d", st)
		}
	}

	// 5) El admin aprueba
	{
		st, body := doReq(t, ts.URL, "PUT", "/records", admin, map[string]any{
			"id": recordID, "status": "APPROVED",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 approve, got %d body=%s", st, string(body))
		}
	}

	// 6) El registro quedó APPROVED con número CERT-XXXXXXXX
	var certificateNumber string
	{
		st, body := doReq(t, ts.URL, "GET", "/records/"+recordID, admin, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 get approved record, got %d", st)
		}
		var rec struct {
			Status            string `json:"status"`
			CertificateNumber string `json:"certificateNumber"`
		}
		_ = json.Unmarshal(body, &rec)
		if rec.Status != "APPROVED" {
			t.Fatalf("expected APPROVED, got %s", rec.Status)
		}
		if !certPattern.MatchString(rec.CertificateNumber) {
			t.Fatalf("certificate %q does not match CERT-XXXXXXXX", rec.CertificateNumber)
		}
		certificateNumber = rec.CertificateNumber
	}

	// 7) El certificado imprimible sale con el titular del evento
	{
		st, body := doReq(t, ts.URL, "GET", "/records/"+recordID+"/certificate", citizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 certificate, got %d body=%s", st, string(body))
		}
		var cert struct {
			CertificateNumber string `json:"certificateNumber"`
			Holder            string `json:"holder"`
			EventDate         string `json:"eventDate"`
		}
		_ = json.Unmarshal(body, &cert)
		if cert.CertificateNumber != certificateNumber {
			t.Fatalf("certificate mismatch: %s vs %s", cert.CertificateNumber, certificateNumber)
		}
		if cert.Holder != "Abebe Kebede" || cert.EventDate != "2024-05-01" {
			t.Fatalf("unexpected certificate payload: %+v", cert)
		}
	}

	// 8) Re-aprobar es idempotente: mismo certificado
	{
		st, _ := doReq(t, ts.URL, "PUT", "/records", admin, map[string]any{
			"id": recordID, "status": "APPROVED",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 re-approve, got %d", st)
		}
		_, body := doReq(t, ts.URL, "GET", "/records/"+recordID, admin, nil)
		var rec struct {
			CertificateNumber string `json:"certificateNumber"`
		}
		_ = json.Unmarshal(body, &rec)
		if rec.CertificateNumber != certificateNumber {
			t.Fatalf("re-approval changed certificate: %s vs %s", rec.CertificateNumber, certificateNumber)
		}
	}

	// 9) Otro ciudadano no ve el registro ajeno
	{
		st, _ := doReq(t, ts.URL, "GET", "/records/"+recordID, otherCitizen, nil)
		if st != http.StatusNotFound {
			t.Fatalf("expected 404 for foreign citizen, got %d", st)
		}

		st, body := doReq(t, ts.URL, "GET", "/records", otherCitizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d", st)
		}
		var list []json.RawMessage
		_ = json.Unmarshal(body, &list)
		if len(list) != 0 {
			t.Fatalf("foreign citizen must see no records, got %d", len(list))
		}
	}

	// 10) El dueño sí lo ve en su listado
	{
		st, body := doReq(t, ts.URL, "GET", "/records", citizen, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 listing, got %d", st)
		}
		var list []struct {
			ID string `json:"id"`
		}
		_ = json.Unmarshal(body, &list)
		if len(list) != 1 || list[0].ID != recordID {
			t.Fatalf("owner listing mismatch: %+v", list)
		}
	}

	// 11) El workflow quedó en el log de auditoría
	{
		st, body := doReq(t, ts.URL, "GET", "/logs", admin, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 logs, got %d", st)
		}
		var logs []struct {
			Action string `json:"action"`
		}
		_ = json.Unmarshal(body, &logs)
		actions := map[string]bool{}
		for _, l := range logs {
			actions[l.Action] = true
		}
		if !actions["CREATE_RECORD"] || !actions["UPDATE_RECORD"] {
			t.Fatalf("expected CREATE_RECORD and UPDATE_RECORD in audit log, got %+v", actions)
		}
	}
}

func TestHTTP_RejectWorkflow(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	citizen := debugUser{ID: "c-1", Role: "CITIZEN", Name: "Citizen One"}
	supervisor := debugUser{ID: "s-1", Role: "SUPERVISOR", Name: "Supervisor"}

	recordID := createRecord(t, ts.URL, citizen, birthPayload())

	st, body := doReq(t, ts.URL, "PUT", "/records", supervisor, map[string]any{
		"id": recordID, "status": "REJECTED", "rejectionReason": "incomplete documents",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 reject, got %d body=%s", st, string(body))
	}

	_, body = doReq(t, ts.URL, "GET", "/records/"+recordID, citizen, nil)
	var rec struct {
		Status            string `json:"status"`
		CertificateNumber string `json:"certificateNumber"`
		RejectionReason   string `json:"rejectionReason"`
	}
	_ = json.Unmarshal(body, &rec)
	if rec.Status != "REJECTED" || rec.CertificateNumber != "" {
		t.Fatalf("rejected record must carry no certificate: %+v", rec)
	}
	if rec.RejectionReason != "incomplete documents" {
		t.Fatalf("expected rejection reason, got %q", rec.RejectionReason)
	}

	// REJECTED es terminal
	st, _ = doReq(t, ts.URL, "PUT", "/records", supervisor, map[string]any{
		"id": recordID, "status": "APPROVED",
	})
	if st != http.StatusConflict {
		t.Fatalf("expected 409 approving a rejected record, got %d", st)
	}
}

func TestHTTP_CreateRecord_Validations(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	citizen := debugUser{ID: "c-1", Role: "CITIZEN"}

	// Sin documentos => 400
	p := birthPayload()
	p["documents"] = []map[string]any{}
	if st, _ := doReq(t, ts.URL, "POST", "/records", citizen, p); st != http.StatusBadRequest {
		t.Fatalf("expected 400 without documents, got %d", st)
	}

	// Campo requerido vacío => 400
	p = birthPayload()
	p["data"] = map[string]any{"fullName": "Abebe Kebede"} // sin dob
	if st, _ := doReq(t, ts.URL, "POST", "/records", citizen, p); st != http.StatusBadRequest {
		t.Fatalf("expected 400 without dob, got %d", st)
	}

	// Tipo desconocido => 400
	p = birthPayload()
	p["type"] = "ADOPTION"
	if st, _ := doReq(t, ts.URL, "POST", "/records", citizen, p); st != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown type, got %d", st)
	}

	// Sin auth => 401
	if st, _ := doReq(t, ts.URL, "POST", "/records", debugUser{}, birthPayload()); st != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", st)
	}
}

func TestHTTP_UpdateRecord_ToleratesDoubleEncodedBody(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	citizen := debugUser{ID: "c-1", Role: "CITIZEN"}
	admin := debugUser{ID: "a-1", Role: "ADMIN"}

	recordID := createRecord(t, ts.URL, citizen, birthPayload())

	// El cliente histórico mandaba el body JSON-encodeado dos veces.
	inner, _ := json.Marshal(map[string]any{"id": recordID, "status": "APPROVED"})
	double, _ := json.Marshal(string(inner))

	st, body := doRawReq(t, ts.URL, "PUT", "/records", admin, double)
	if st != http.StatusOK {
		t.Fatalf("expected 200 with double-encoded body, got %d body=%s", st, string(body))
	}

	_, body = doReq(t, ts.URL, "GET", "/records/"+recordID, admin, nil)
	var rec struct {
		Status string `json:"status"`
	}
	_ = json.Unmarshal(body, &rec)
	if rec.Status != "APPROVED" {
		t.Fatalf("expected APPROVED after double-encoded update, got %s", rec.Status)
	}
}

func TestHTTP_LoginWithSeededUsers(t *testing.T) {
	ts := newTestServer(t, true)
	defer ts.Close()

	// Credenciales correctas
	st, body := doReq(t, ts.URL, "POST", "/login", debugUser{}, map[string]any{
		"username": "admin", "password": "password123",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 login, got %d body=%s", st, string(body))
	}
	var resp struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		User    struct {
			Username string `json:"username"`
			Role     string `json:"role"`
		} `json:"user"`
	}
	_ = json.Unmarshal(body, &resp)
	if !resp.Success || resp.Token == "" {
		t.Fatalf("expected success with token, got %+v", resp)
	}
	if resp.User.Username != "admin" || resp.User.Role != "ADMIN" {
		t.Fatalf("unexpected user payload: %+v", resp.User)
	}

	// Password incorrecto
	st, body = doReq(t, ts.URL, "POST", "/login", debugUser{}, map[string]any{
		"username": "admin", "password": "wrong",
	})
	if st != http.StatusUnauthorized {
		t.Fatalf("expected 401 bad password, got %d", st)
	}
	var errResp struct {
		Error string `json:"error"`
	}
	_ = json.Unmarshal(body, &errResp)
	if errResp.Error != "Invalid username or password" {
		t.Fatalf("unexpected error body: %s", string(body))
	}
}

func TestHTTP_UsersEndpointIsAdminOnly(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	clerk := debugUser{ID: "clerk-1", Role: "DATA_CLERK"}
	admin := debugUser{ID: "a-1", Role: "ADMIN"}

	if st, _ := doReq(t, ts.URL, "GET", "/users", clerk, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 listing users as clerk, got %d", st)
	}

	st, body := doReq(t, ts.URL, "POST", "/users", admin, map[string]any{
		"username": "newclerk", "password": "secret123",
		"fullName": "New Clerk", "role": "DATA_CLERK", "kebele": "02",
	})
	if st != http.StatusCreated {
		t.Fatalf("expected 201 creating user, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts.URL, "GET", "/users", admin, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 listing users, got %d", st)
	}
	var list []struct {
		Username     string `json:"username"`
		PasswordHash string `json:"passwordHash"`
	}
	_ = json.Unmarshal(body, &list)
	if len(list) != 1 || list[0].Username != "newclerk" {
		t.Fatalf("unexpected users listing: %s", string(body))
	}
	if list[0].PasswordHash != "" {
		t.Fatalf("password hash must never leave the API")
	}
}

func TestHTTP_BackupExportImport(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	citizen := debugUser{ID: "c-1", Role: "CITIZEN"}
	admin := debugUser{ID: "a-1", Role: "ADMIN"}

	recordID := createRecord(t, ts.URL, citizen, birthPayload())

	// Solo admin exporta
	if st, _ := doReq(t, ts.URL, "GET", "/backup/export", citizen, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 export as citizen, got %d", st)
	}

	st, exported := doReq(t, ts.URL, "GET", "/backup/export", admin, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 export, got %d", st)
	}

	// Restaurar en un server limpio reproduce el registro
	ts2 := newTestServer(t, false)
	defer ts2.Close()

	st, body := doRawReq(t, ts2.URL, "POST", "/backup/import", admin, exported)
	if st != http.StatusOK {
		t.Fatalf("expected 200 import, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, ts2.URL, "GET", "/records/"+recordID, admin, nil)
	if st != http.StatusOK {
		t.Fatalf("expected restored record, got %d body=%s", st, string(body))
	}
}

func TestHTTP_KebeleCatalog(t *testing.T) {
	ts := newTestServer(t, false)
	defer ts.Close()

	st, body := doReq(t, ts.URL, "GET", "/kebeles", debugUser{}, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 kebeles, got %d", st)
	}
	var list []struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &list)
	if len(list) == 0 {
		t.Fatalf("expected non-empty kebele catalog")
	}
}

// -------------------------
// Helpers
// -------------------------

type debugUser struct {
	ID   string
	Role string
	Name string
}

func createRecord(t *testing.T, baseURL string, u debugUser, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/records", u, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create record, got %d body=%s", st, string(body))
	}

	var resp struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(body, &resp)
	if resp.ID == "" {
		t.Fatalf("create record: missing id body=%s", string(body))
	}
	return resp.ID
}

func doReq(t *testing.T, baseURL, method, path string, u debugUser, body any) (int, []byte) {
	t.Helper()

	var raw []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		raw = b
	}
	return doRawReq(t, baseURL, method, path, u, raw)
}

func doRawReq(t *testing.T, baseURL, method, path string, u debugUser, raw []byte) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if raw != nil {
		rdr = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if raw != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if u.ID != "" {
		req.Header.Set("X-Debug-User-ID", u.ID)
		if u.Role != "" {
			req.Header.Set("X-Debug-Role", u.Role)
		}
		if u.Name != "" {
			req.Header.Set("X-Debug-User-Name", u.Name)
		}
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
