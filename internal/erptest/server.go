// Package erptest provides an in-process stand-in for the Dolibarr REST API.
package erptest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"

	"github.com/gorilla/mux"

	"github.com/fivetwenty-io/dolibarr-client/internal/constants"
)

// Defaults served by a new Server.
const (
	DefaultLogin    = "admin"
	DefaultPassword = "secret"
	DefaultToken    = "T"
)

// RecordedRequest is a request as the server received it.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// Server is a fake ERP. Configure it through the setters before issuing requests.
type Server struct {
	*httptest.Server

	mu           sync.Mutex
	requests     []RecordedRequest
	users        map[string]string
	token        string
	acceptedKeys map[string]bool
	invoices     []map[string]interface{}
	thirdParties []map[string]interface{}
	failStatus   int
	omitToken    bool
}

// NewServer starts a fake ERP with one user, a few invoices and third parties.
// The server is closed when the test ends.
func NewServer(tb testingTB) *Server {
	s := &Server{
		users:        map[string]string{DefaultLogin: DefaultPassword},
		token:        DefaultToken,
		acceptedKeys: map[string]bool{DefaultToken: true},
		invoices: []map[string]interface{}{
			{"id": "1", "ref": "FA2401-0001", "socid": "10", "total_ttc": "120.00000000", "statut": "1"},
			{"id": "2", "ref": "FA2401-0002", "socid": "11", "total_ttc": "80.50000000", "statut": "2"},
			{"id": "3", "ref": "FA2402-0003", "socid": "10", "total_ttc": "15.00000000", "statut": "0"},
		},
		thirdParties: []map[string]interface{}{
			{"id": "10", "name": "Acme Corp", "email": "billing@acme.test", "client": "1"},
			{"id": "11", "name": "Globex", "email": "ap@globex.test", "client": "2"},
		},
	}

	s.Server = httptest.NewServer(s.router())
	tb.Cleanup(s.Close)

	return s
}

// testingTB is the part of testing.TB the server needs.
type testingTB interface {
	Cleanup(func())
}

func (s *Server) router() http.Handler {
	router := mux.NewRouter()

	api := router.PathPrefix(constants.APIPrefix).Subrouter()
	api.HandleFunc("/"+constants.EndpointLogin, s.handleLogin).Methods(http.MethodPost)
	api.Handle("/"+constants.EndpointInvoices, s.authenticated(s.listHandler(func() []map[string]interface{} {
		return s.invoices
	}))).Methods(http.MethodGet)
	api.Handle("/"+constants.EndpointThirdParties, s.authenticated(s.listHandler(func() []map[string]interface{} {
		return s.thirdParties
	}))).Methods(http.MethodGet)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	return s.record(s.fail(router))
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()

		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		r.Body = io.NopCloser(bytes.NewReader(body))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) fail(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := s.failStatus
		s.mu.Unlock()

		if status != 0 {
			writeError(w, status, http.StatusText(status))

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		ok := s.acceptedKeys[r.Header.Get(constants.APIKeyHeader)]
		s.mu.Unlock()

		if !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")

			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Login    string `json:"login"`
		Password string `json:"password"`
	}

	err := json.NewDecoder(r.Body).Decode(&creds)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Bad Request")

		return
	}

	s.mu.Lock()
	password, known := s.users[creds.Login]
	token := s.token
	omit := s.omitToken
	s.mu.Unlock()

	if !known || password != creds.Password {
		writeError(w, http.StatusForbidden, "Access denied")

		return
	}

	if omit {
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": map[string]interface{}{"code": 200}})

		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": map[string]interface{}{
			"code":    200,
			"token":   token,
			"entity":  1,
			"message": "Welcome " + creds.Login,
		},
	})
}

func (s *Server) listHandler(records func() []map[string]interface{}) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		out := records()
		s.mu.Unlock()

		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err == nil && limit >= 0 && limit < len(out) {
			out = out[:limit]
		}

		writeJSON(w, http.StatusOK, out)
	})
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

// LastRequest returns the most recent request.
func (s *Server) LastRequest() (RecordedRequest, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.requests) == 0 {
		return RecordedRequest{}, false
	}

	return s.requests[len(s.requests)-1], true
}

// SetFailStatus makes every request fail with status; zero restores normal service.
func (s *Server) SetFailStatus(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failStatus = status
}

// SetToken changes the token issued by login and accepts it on later calls.
func (s *Server) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
	s.acceptedKeys[token] = true
}

// AcceptKey accepts an additional API key.
func (s *Server) AcceptKey(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.acceptedKeys[key] = true
}

// OmitToken makes login succeed without returning a token.
func (s *Server) OmitToken(omit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.omitToken = omit
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{"code": status, "message": message},
	})
}
