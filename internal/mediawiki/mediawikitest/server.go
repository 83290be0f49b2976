// Package mediawikitest provides an in-memory MediaWiki action API server
// for tests.
package mediawikitest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
)

const (
	loginToken    = "login-token+\\"
	csrfToken     = "csrf-token+\\"
	anonToken     = "+\\"
	sessionCookie = "wiki_session"
	sessionValue  = "logged-in"
)

// Edit records one successful edit.
type Edit struct {
	Title   string
	Text    string
	Summary string
}

// Server is a wiki holding pages in memory. It implements the subset of
// api.php used by the mediawiki client: login, page content queries and
// edits. Edits require a login when the server was created with
// credentials.
type Server struct {
	*httptest.Server

	username string
	password string

	mu        sync.Mutex
	pages     map[string]string
	edits     []Edit
	failTitle string
}

// NewServer starts a wiki. An empty username allows anonymous edits.
// Callers must Close it.
func NewServer(username, password string) *Server {
	s := &Server{
		username: username,
		password: password,
		pages:    make(map[string]string),
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serveAPI))
	return s
}

// WithPage creates or replaces a page.
func (s *Server) WithPage(title, content string) *Server {
	s.mu.Lock()
	s.pages[title] = content
	s.mu.Unlock()
	return s
}

// FailEdits makes every edit of title fail with an API error.
func (s *Server) FailEdits(title string) *Server {
	s.mu.Lock()
	s.failTitle = title
	s.mu.Unlock()
	return s
}

// Page returns the current content of title.
func (s *Server) Page(title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	content, ok := s.pages[title]
	return content, ok
}

// Edits returns every successful edit in order.
func (s *Server) Edits() []Edit {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]Edit, len(s.edits))
	copy(result, s.edits)
	return result
}

func (s *Server) serveAPI(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api.php" {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	switch action := r.Form.Get("action"); {
	case action == "query" && r.Form.Get("meta") == "tokens":
		s.serveTokens(w, r)
	case action == "query" && r.Form.Get("prop") == "revisions":
		s.servePage(w, r)
	case action == "login" && r.Method == http.MethodPost:
		s.serveLogin(w, r)
	case action == "edit" && r.Method == http.MethodPost:
		s.serveEdit(w, r)
	default:
		writeError(w, "badvalue", "Unrecognized value for parameter \"action\": "+action+".")
	}
}

func (s *Server) loggedIn(r *http.Request) bool {
	c, err := r.Cookie(sessionCookie)
	return err == nil && c.Value == sessionValue
}

func (s *Server) serveTokens(w http.ResponseWriter, r *http.Request) {
	tokens := map[string]string{}
	switch {
	case r.Form.Get("type") == "login":
		tokens["logintoken"] = loginToken
	case s.loggedIn(r):
		tokens["csrftoken"] = csrfToken
	default:
		tokens["csrftoken"] = anonToken
	}
	writeJSON(w, map[string]any{"query": map[string]any{"tokens": tokens}})
}

func (s *Server) servePage(w http.ResponseWriter, r *http.Request) {
	title := r.Form.Get("titles")
	content, ok := s.Page(title)

	page := map[string]any{"title": title}
	if ok {
		page["revisions"] = []any{map[string]any{
			"slots": map[string]any{"main": map[string]any{"content": content}},
		}}
	} else {
		page["missing"] = true
	}
	writeJSON(w, map[string]any{"query": map[string]any{"pages": []any{page}}})
}

func (s *Server) serveLogin(w http.ResponseWriter, r *http.Request) {
	if r.Form.Get("lgtoken") != loginToken {
		writeJSON(w, map[string]any{"login": map[string]any{"result": "WrongToken"}})
		return
	}
	if s.username == "" || r.Form.Get("lgname") != s.username || r.Form.Get("lgpassword") != s.password {
		writeJSON(w, map[string]any{"login": map[string]any{
			"result": "Failed",
			"reason": "Incorrect username or password entered. Please try again.",
		}})
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: sessionValue, Path: "/"})
	writeJSON(w, map[string]any{"login": map[string]any{"result": "Success", "lgusername": s.username}})
}

func (s *Server) serveEdit(w http.ResponseWriter, r *http.Request) {
	want := anonToken
	if s.username != "" {
		want = csrfToken
	}
	if r.Form.Get("token") != want || (s.username != "" && !s.loggedIn(r)) {
		writeError(w, "badtoken", "Invalid CSRF token.")
		return
	}

	title := r.Form.Get("title")
	s.mu.Lock()
	defer s.mu.Unlock()
	if title == s.failTitle {
		writeError(w, "protectedpage", "This page has been protected to prevent editing or other actions.")
		return
	}
	s.pages[title] = r.Form.Get("text")
	s.edits = append(s.edits, Edit{Title: title, Text: r.Form.Get("text"), Summary: r.Form.Get("summary")})
	writeJSON(w, map[string]any{"edit": map[string]any{"result": "Success", "title": title}})
}

func writeError(w http.ResponseWriter, code, info string) {
	writeJSON(w, map[string]any{"error": map[string]any{"code": code, "info": info}})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(v)
}
