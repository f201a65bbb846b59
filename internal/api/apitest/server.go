// Package apitest runs an in-memory /api/talukas backend for tests.
package apitest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/idilsaglam/taluka/internal/model"
)

// Request is one call the backend received.
type Request struct {
	Method    string
	Path      string
	Body      string
	RequestID string
}

// Failure forces the next matching request to answer with Code and Message.
// Drop closes the connection without a response instead.
type Failure struct {
	Code    int
	Message string
	Drop    bool
}

// Server is a fake Taluka Master backend.
type Server struct {
	*httptest.Server

	mu            sync.Mutex
	records       map[int64]model.Taluka
	nextID        int64
	requests      []Request
	failures      map[string]Failure // keyed by "METHOD path"
	applyThenDrop map[string]bool
	rawReplies    map[string]string
}

// NewServer starts a backend seeded with records. Call Close when done.
func NewServer(seed ...model.Taluka) *Server {
	s := &Server{
		records:       make(map[int64]model.Taluka),
		nextID:        1,
		failures:      make(map[string]Failure),
		applyThenDrop: make(map[string]bool),
		rawReplies:    make(map[string]string),
	}
	for _, r := range seed {
		s.records[r.ID] = r
		if r.ID >= s.nextID {
			s.nextID = r.ID + 1
		}
	}

	r := mux.NewRouter()
	r.Use(s.record)
	r.HandleFunc("/api/talukas", s.list).Methods(http.MethodGet)
	r.HandleFunc("/api/talukas", s.create).Methods(http.MethodPost)
	r.HandleFunc("/api/talukas/{id:[0-9]+}", s.update).Methods(http.MethodPut)
	r.HandleFunc("/api/talukas/{id:[0-9]+}/status", s.setStatus).Methods(http.MethodPut)
	r.HandleFunc("/api/talukas/{id:[0-9]+}", s.remove).Methods(http.MethodDelete)
	s.Server = httptest.NewServer(r)
	return s
}

// HTTPClient returns a client that never reuses connections, so a dropped
// response is not silently retried by the transport.
func (s *Server) HTTPClient() *http.Client {
	return &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
}

// Fail makes the next request to "METHOD path" fail once.
func (s *Server) Fail(method, path string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] = f
}

// ApplyThenDrop makes the next request to "METHOD path" take effect but
// lose its response.
func (s *Server) ApplyThenDrop(method, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyThenDrop[method+" "+path] = true
}

// ApplyThenReply makes the next request to "METHOD path" take effect and
// answer with the handler's status code but body as plain text.
func (s *Server) ApplyThenReply(method, path, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rawReplies[method+" "+path] = body
}

// Requests returns a copy of everything received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// Records returns the stored records ordered by id.
func (s *Server) Records() []model.Taluka {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Get returns the record with id.
func (s *Server) Get(id int64) (model.Taluka, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}

// -------------- middleware --------------

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(b))

		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:    r.Method,
			Path:      r.URL.Path,
			Body:      string(b),
			RequestID: r.Header.Get("X-Request-ID"),
		})
		f, failing := s.failures[key]
		delete(s.failures, key)
		drop := s.applyThenDrop[key]
		delete(s.applyThenDrop, key)
		raw, replace := s.rawReplies[key]
		delete(s.rawReplies, key)
		s.mu.Unlock()

		switch {
		case failing && f.Drop:
			hijackAndClose(w)
			return
		case failing:
			writeError(w, f.Code, f.Message)
			return
		case drop:
			next.ServeHTTP(httptest.NewRecorder(), r)
			hijackAndClose(w)
			return
		case replace:
			rec := httptest.NewRecorder()
			next.ServeHTTP(rec, r)
			w.Header().Set("Content-Type", "text/plain")
			w.WriteHeader(rec.Code)
			_, _ = io.WriteString(w, raw)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// -------------- handlers --------------

func (s *Server) list(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	out := s.sortedLocked()
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	var in model.TalukaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	rec := model.Taluka{
		ID:         s.nextID,
		StateName:  in.StateName,
		District:   in.District,
		TalukaName: in.TalukaName,
		Status:     in.Status,
	}
	s.nextID++
	s.records[rec.ID] = rec
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var in model.TalukaInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		writeError(w, http.StatusNotFound, "Taluka not found")
		return
	}
	rec := model.Taluka{
		ID:         id,
		StateName:  in.StateName,
		District:   in.District,
		TalukaName: in.TalukaName,
		Status:     in.Status,
	}
	s.records[id] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) setStatus(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	var in model.StatusInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || !in.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Taluka not found")
		return
	}
	rec.Status = in.Status
	s.records[id] = rec
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		writeError(w, http.StatusNotFound, "Taluka not found")
		return
	}
	delete(s.records, id)
	w.WriteHeader(http.StatusNoContent)
}

// -------------- helpers --------------

func (s *Server) sortedLocked() []model.Taluka {
	out := make([]model.Taluka, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	if msg == "" {
		w.WriteHeader(code)
		return
	}
	writeJSON(w, code, map[string]string{"message": msg})
}

func hijackAndClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("apitest: response writer cannot hijack")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic("apitest: hijack: " + err.Error())
	}
	conn.Close()
}
