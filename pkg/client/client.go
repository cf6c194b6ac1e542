// Package client es un cliente Go tipado para la API del registro civil.
// Lo usan herramientas internas y scripts de migración; no es parte del
// servidor.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"civil-registry/internal/platform/httpclient"
)

var ErrUnauthorized = errors.New("client: unauthorized")

type Config struct {
	BaseURL string

	// Token bearer inicial. Login lo reemplaza por el token emitido.
	Token string

	Timeout time.Duration
}

type Client struct {
	http  *httpclient.Client
	token string
}

func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("client: base url required")
	}
	hc, err := httpclient.NewWithBaseURL(cfg.BaseURL, cfg.Timeout)
	if err != nil {
		return nil, err
	}
	return &Client{
		http:  hc,
		token: strings.TrimSpace(cfg.Token),
	}, nil
}

// User es la vista pública de una cuenta.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	FullName string `json:"fullName"`
	Kebele   string `json:"kebele"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token"`
}

// Login autentica y guarda el token para los requests siguientes.
func (c *Client) Login(ctx context.Context, username, password string) (LoginResponse, error) {
	var out LoginResponse
	err := c.http.DoJSON(ctx, http.MethodPost, "/login", nil, map[string]string{
		"username": username,
		"password": password,
	}, &out)
	if err != nil {
		return LoginResponse{}, mapHTTPError(err)
	}
	c.token = out.Token
	return out, nil
}

// Document es un adjunto de un registro.
type Document struct {
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Record es un registro vital como lo devuelve la API. Data queda como
// JSON crudo: su forma depende del tipo de evento.
type Record struct {
	ID                string          `json:"id"`
	Type              string          `json:"type"`
	Kebele            string          `json:"kebele"`
	Status            string          `json:"status"`
	RegistrationDate  time.Time       `json:"registrationDate"`
	ApplicantID       string          `json:"applicantId"`
	Data              json.RawMessage `json:"data"`
	Documents         []Document      `json:"documents"`
	CertificateNumber string          `json:"certificateNumber,omitempty"`
	RejectionReason   string          `json:"rejectionReason,omitempty"`
}

type CreateRecordInput struct {
	ID          string          `json:"id,omitempty"`
	Type        string          `json:"type"`
	Kebele      string          `json:"kebele"`
	Data        json.RawMessage `json:"data"`
	Documents   []Document      `json:"documents"`
	ApplicantID string          `json:"applicantId,omitempty"`
}

// CreateRecord registra un trámite nuevo y devuelve el id asignado.
func (c *Client) CreateRecord(ctx context.Context, in CreateRecordInput) (string, error) {
	var out struct {
		ID string `json:"id"`
	}
	if err := c.http.DoJSON(ctx, http.MethodPost, "/records", c.authHeaders(), in, &out); err != nil {
		return "", mapHTTPError(err)
	}
	return out.ID, nil
}

type ListFilter struct {
	Search string
	Type   string
	Kebele string
}

func (c *Client) ListRecords(ctx context.Context, f ListFilter) ([]Record, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Type != "" {
		q.Set("type", f.Type)
	}
	if f.Kebele != "" {
		q.Set("kebele", f.Kebele)
	}

	path := "/records"
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}

	var out []Record
	if err := c.http.DoJSON(ctx, http.MethodGet, path, c.authHeaders(), nil, &out); err != nil {
		return nil, mapHTTPError(err)
	}
	return out, nil
}

func (c *Client) GetRecord(ctx context.Context, id string) (Record, error) {
	var out Record
	err := c.http.DoJSON(ctx, http.MethodGet, "/records/"+url.PathEscape(id), c.authHeaders(), nil, &out)
	if err != nil {
		return Record{}, mapHTTPError(err)
	}
	return out, nil
}

// UpdateStatus pide una transición del workflow (APPROVED, REJECTED, etc).
func (c *Client) UpdateStatus(ctx context.Context, id, status, rejectionReason string) error {
	body := map[string]string{
		"id":     id,
		"status": status,
	}
	if rejectionReason != "" {
		body["rejectionReason"] = rejectionReason
	}
	err := c.http.DoJSON(ctx, http.MethodPut, "/records", c.authHeaders(), body, nil)
	return mapHTTPError(err)
}

// Certificate es el payload imprimible de un registro aprobado.
type Certificate struct {
	CertificateNumber string    `json:"certificateNumber"`
	RecordID          string    `json:"recordId"`
	Type              string    `json:"type"`
	Kebele            string    `json:"kebele"`
	Holder            string    `json:"holder"`
	EventDate         string    `json:"eventDate"`
	RegistrationDate  time.Time `json:"registrationDate"`
}

func (c *Client) GetCertificate(ctx context.Context, id string) (Certificate, error) {
	var out Certificate
	err := c.http.DoJSON(ctx, http.MethodGet, "/records/"+url.PathEscape(id)+"/certificate", c.authHeaders(), nil, &out)
	if err != nil {
		return Certificate{}, mapHTTPError(err)
	}
	return out, nil
}

// LogEntry es una entrada del log de auditoría.
type LogEntry struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId"`
	UserName  string `json:"userName"`
	Action    string `json:"action"`
	Details   string `json:"details"`
}

func (c *Client) RecentLogs(ctx context.Context) ([]LogEntry, error) {
	var out []LogEntry
	if err := c.http.DoJSON(ctx, http.MethodGet, "/logs", c.authHeaders(), nil, &out); err != nil {
		return nil, mapHTTPError(err)
	}
	return out, nil
}

func (c *Client) authHeaders() map[string]string {
	if c.token == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.token}
}

func mapHTTPError(err error) error {
	if err == nil {
		return nil
	}
	var httpErr *httpclient.HTTPError
	if errors.As(err, &httpErr) {
		if httpErr.StatusCode == http.StatusUnauthorized || httpErr.StatusCode == http.StatusForbidden {
			return fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
	}
	return err
}
