package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	rferrors "github.com/FocuswithJustin/RefFinder/core/errors"
	"github.com/FocuswithJustin/RefFinder/core/scripture"
	"github.com/FocuswithJustin/RefFinder/internal/extract"
	"github.com/FocuswithJustin/RefFinder/internal/logging"
	"github.com/FocuswithJustin/RefFinder/internal/validation"
)

// APIResponse is the standard API response wrapper.
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *APIMeta  `json:"meta,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// APIMeta contains response metadata.
type APIMeta struct {
	Total     int    `json:"total,omitempty"`
	Timestamp string `json:"timestamp"`
}

// ScanRequest is the body of POST /references and POST /annotate.
type ScanRequest struct {
	Text           string `json:"text"`
	IncludeInvalid bool   `json:"include_invalid,omitempty"`
}

// ScanResult lists the references found in one text.
type ScanResult struct {
	TextHash   string                `json:"text_hash"`
	References []scripture.Reference `json:"references"`
}

// AnnotateResult is a ScanResult with the rendered HTML.
type AnnotateResult struct {
	TextHash   string                `json:"text_hash"`
	HTML       string                `json:"html"`
	References []scripture.Reference `json:"references"`
}

// PartsRequest is the body of POST /parts.
type PartsRequest struct {
	Spec string `json:"spec"`
}

// PartsResult is a parsed verse specification.
type PartsResult struct {
	Spec    string                `json:"spec"`
	Parts   []scripture.VersePart `json:"parts"`
	Display string                `json:"display"`
}

// ValidateResult is the oracle's answer for one verse.
type ValidateResult struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Valid   bool   `json:"valid"`
	Error   string `json:"error,omitempty"`
}

// BookInfo describes a book of the active system.
type BookInfo struct {
	Name             string   `json:"name"`
	OSIS             string   `json:"osis"`
	Testament        string   `json:"testament"`
	Deuterocanonical bool     `json:"deuterocanonical,omitempty"`
	Chapters         int      `json:"chapters"`
	Aliases          []string `json:"aliases"`
}

// HealthInfo is the health check response.
type HealthInfo struct {
	Status      string `json:"status"`
	Version     string `json:"version"`
	Uptime      string `json:"uptime"`
	System      string `json:"system"`
	Aliases     int    `json:"aliases"`
	Jobs        int    `json:"jobs"`
	Clients     int    `json:"websocket_clients"`
	CacheHits   int64  `json:"cache_hits"`
	CacheMisses int64  `json:"cache_misses"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, map[string]any{
		"name":    "RefFinder API",
		"version": s.version,
		"endpoints": []string{
			"GET /health",
			"GET /books",
			"POST /references",
			"POST /annotate",
			"GET /validate?book=&chapter=&verse=",
			"POST /parts",
			"POST /jobs",
			"GET /jobs",
			"GET /jobs/:id",
			"DELETE /jobs/:id",
			"WS /ws",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.results.Stats()
	respond(w, http.StatusOK, HealthInfo{
		Status:      "healthy",
		Version:     s.version,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		System:      string(s.v.System),
		Aliases:     s.aliases.Len(),
		Jobs:        s.jobs.Len(),
		Clients:     s.hub.Clients(),
		CacheHits:   stats.Hits,
		CacheMisses: stats.Misses,
	})
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	books := s.v.Books()
	out := make([]BookInfo, len(books))
	for i, b := range books {
		aliases := s.aliases.Aliases(b.Name)
		if aliases == nil {
			aliases = []string{}
		}
		out[i] = BookInfo{
			Name:             b.Name,
			OSIS:             b.OSIS,
			Testament:        string(b.Testament),
			Deuterocanonical: b.Deuterocanonical,
			Chapters:         b.Chapters(),
			Aliases:          aliases,
		}
	}
	respondList(w, out, len(out))
}

func (s *Server) handleReferences(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScan(w, r)
	if !ok {
		return
	}
	hash, refs, err := s.scan(r.Context(), req.Text, req.IncludeInvalid)
	if err != nil {
		respondScanError(w, r, err)
		return
	}
	respond(w, http.StatusOK, ScanResult{TextHash: hash, References: refs})
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	req, ok := s.decodeScan(w, r)
	if !ok {
		return
	}
	hash, refs, err := s.scan(r.Context(), req.Text, req.IncludeInvalid)
	if err != nil {
		respondScanError(w, r, err)
		return
	}
	respond(w, http.StatusOK, AnnotateResult{
		TextHash:   hash,
		HTML:       s.annotator.Annotate(req.Text, refs),
		References: refs,
	})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	book := q.Get("book")
	if book == "" {
		respondError(w, http.StatusBadRequest, "MISSING_PARAMS", "book, chapter and verse are required")
		return
	}
	chapter, err1 := strconv.Atoi(q.Get("chapter"))
	verse, err2 := strconv.Atoi(q.Get("verse"))
	if err1 != nil || err2 != nil {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMS", "chapter and verse must be integers")
		return
	}

	if canonical, ok := s.aliases.Canonicalize(book); ok {
		book = canonical
	}
	res, err := s.oracle.ValidateContext(r.Context(), book, chapter, verse)
	if err != nil {
		logging.ErrorContext(r.Context(), "validation failed", "book", book, "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "verse validation failed")
		return
	}
	respond(w, http.StatusOK, ValidateResult{Book: book, Chapter: chapter, Verse: verse, Valid: res.Valid, Error: res.Error})
}

func (s *Server) handleParts(w http.ResponseWriter, r *http.Request) {
	var req PartsRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := validation.ValidateSpec(req.Spec); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return
	}
	parts := scripture.ParseParts(req.Spec)
	if parts == nil {
		parts = []scripture.VersePart{}
	}
	display := make([]string, len(parts))
	for i, p := range parts {
		display[i] = p.String()
	}
	respond(w, http.StatusOK, PartsResult{Spec: req.Spec, Parts: parts, Display: strings.Join(display, ", ")})
}

func (s *Server) decodeScan(w http.ResponseWriter, r *http.Request) (ScanRequest, bool) {
	var req ScanRequest
	if !decodeJSON(w, r, &req) {
		return req, false
	}
	if err := validation.ValidateText(req.Text, s.maxTextBytes()); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
		return req, false
	}
	req.IncludeInvalid = req.IncludeInvalid || s.cfg.Finder.IncludeInvalid
	return req, true
}

// scan finds the references in text, caching results by text digest.
func (s *Server) scan(ctx context.Context, text string, includeInvalid bool) (string, []scripture.Reference, error) {
	hash := extract.Digest(text)
	key, finder := hash, s.finder
	if includeInvalid {
		key, finder = hash+"+invalid", s.lenient
	}
	refs, err := s.results.GetOrLoad(key, func() ([]scripture.Reference, error) {
		start := time.Now()
		refs, err := finder.Find(ctx, text)
		if err != nil {
			return nil, err
		}
		logging.ScanCompleted(ctx, "api", len(text), len(refs), time.Since(start), "text_hash", hash)
		return refs, nil
	})
	return hash, refs, err
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "TOO_LARGE", "Request body too large")
			return false
		}
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid JSON body")
		return false
	}
	return true
}

func respondScanError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respondError(w, http.StatusServiceUnavailable, "CANCELED", "scan canceled")
	case rferrors.Is(err, rferrors.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error())
	default:
		logging.ErrorContext(r.Context(), "scan failed", "error", err)
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "scan failed")
	}
}

func respond(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondList(w http.ResponseWriter, data any, total int) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{Total: total, Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
		Meta:    &APIMeta{Timestamp: time.Now().UTC().Format(time.RFC3339)},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Debug("write response", "error", err)
	}
}
