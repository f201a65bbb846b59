package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/idilsaglam/taluka/internal/model"
)

// DefaultBaseURL is where the Taluka Master backend listens out of the box.
const DefaultBaseURL = "http://localhost:8080"

const talukasPath = "/api/talukas"

// errBadBody marks an accepted response whose body didn't decode.
var errBadBody = errors.New("undecodable response body")

// Client talks to the /api/talukas REST surface.
type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// Option tunes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithLogger sets where request diagnostics go.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// NewClient returns a client for the backend at baseURL (DefaultBaseURL if empty).
func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     discard,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend root the client was built with.
func (c *Client) BaseURL() string { return c.baseURL }

// ---------------------------------------------------
// Endpoints
// ---------------------------------------------------

// List fetches the whole collection. Only 200 counts as success.
func (c *Client) List(ctx context.Context) ([]model.Taluka, error) {
	var out []model.Taluka
	if err := c.do(ctx, http.MethodGet, talukasPath, nil, &out, http.StatusOK); err != nil {
		return nil, fmt.Errorf("list talukas: %w", err)
	}
	if out == nil {
		out = []model.Taluka{}
	}
	return out, nil
}

// Create posts a new record and returns what the server stored. The status
// code decides success; a body that isn't a record yields the zero Taluka.
func (c *Client) Create(ctx context.Context, in model.TalukaInput) (model.Taluka, error) {
	var out model.Taluka
	err := c.do(ctx, http.MethodPost, talukasPath, in, &out, http.StatusOK, http.StatusCreated)
	if errors.Is(err, errBadBody) {
		return model.Taluka{}, nil
	}
	if err != nil {
		return model.Taluka{}, fmt.Errorf("create taluka: %w", err)
	}
	return out, nil
}

// Update replaces the record addressed by id. Like Create, only the status
// code decides success.
func (c *Client) Update(ctx context.Context, id int64, in model.TalukaInput) (model.Taluka, error) {
	var out model.Taluka
	err := c.do(ctx, http.MethodPut, itemPath(id), in, &out, http.StatusOK, http.StatusCreated)
	if errors.Is(err, errBadBody) {
		return model.Taluka{}, nil
	}
	if err != nil {
		return model.Taluka{}, fmt.Errorf("update taluka %d: %w", id, err)
	}
	return out, nil
}

// SetStatus changes only the status of the record addressed by id.
func (c *Client) SetStatus(ctx context.Context, id int64, status model.Status) error {
	body := model.StatusInput{Status: status}
	if err := c.do(ctx, http.MethodPut, itemPath(id)+"/status", body, nil, http.StatusOK, http.StatusCreated); err != nil {
		return fmt.Errorf("set taluka %d status: %w", id, err)
	}
	return nil
}

// Delete removes the record addressed by id. Any 2xx is success.
func (c *Client) Delete(ctx context.Context, id int64) error {
	if err := c.do(ctx, http.MethodDelete, itemPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete taluka %d: %w", id, err)
	}
	return nil
}

func itemPath(id int64) string {
	return talukasPath + "/" + strconv.FormatInt(id, 10)
}

// ---------------------------------------------------
// Plumbing
// ---------------------------------------------------

// do sends one request. With no accepted codes, any 2xx is fine.
// out may be nil when the body is ignored.
func (c *Client) do(ctx context.Context, method, path string, in, out any, accept ...int) error {
	reqID := uuid.NewString()
	log := c.log.WithFields(logrus.Fields{
		"method":     method,
		"path":       path,
		"request_id": reqID,
	})

	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			log.WithError(err).Warn("encode request body")
			return fmt.Errorf("json marshal: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		log.WithError(err).Warn("build request")
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.WithError(err).Warn("no response from backend")
		return &TransportError{Method: method, Path: path, RequestID: reqID, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		log.WithError(err).Warn("read response body")
		return &TransportError{Method: method, Path: path, RequestID: reqID, Err: err}
	}
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode, "took": time.Since(start)})

	if !accepted(resp.StatusCode, accept) {
		se := &StatusError{
			Method:    method,
			Path:      path,
			Code:      resp.StatusCode,
			Message:   errorMessage(raw),
			RequestID: reqID,
		}
		log.WithField("message", se.Message).Warn("backend rejected request")
		return se
	}
	log.Debug("ok")

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		log.WithError(err).Warn("decode response body")
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

func accepted(code int, accept []int) bool {
	if len(accept) == 0 {
		return code >= 200 && code < 300
	}
	for _, a := range accept {
		if code == a {
			return true
		}
	}
	return false
}

// errorMessage pulls "message" out of an error body; anything else yields "".
func errorMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return strings.TrimSpace(body.Message)
}
