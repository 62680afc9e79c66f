package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	"github.com/matzehuels/wardley/pkg/cache"
	"github.com/matzehuels/wardley/pkg/errors"
	"github.com/matzehuels/wardley/pkg/layout"
	"github.com/matzehuels/wardley/pkg/meta"
	"github.com/matzehuels/wardley/pkg/model"
	"github.com/matzehuels/wardley/pkg/pipeline"
	"github.com/matzehuels/wardley/pkg/position"
)

// CompileRequest is the body of POST /v1/compile.
type CompileRequest struct {
	Text    string `json:"text"`
	Refresh bool   `json:"refresh,omitempty"`
}

// CompileResponse is returned by POST /v1/compile.
type CompileResponse struct {
	Map      *model.Map `json:"map"`
	TextHash string     `json:"text_hash"`
	Cached   bool       `json:"cached"`
}

// LayoutResponse is returned by POST /v1/layout.
type LayoutResponse struct {
	Layout   layout.Layout `json:"layout"`
	TextHash string        `json:"text_hash"`
	Flows    int           `json:"flows"`
	Cached   CacheStatus   `json:"cached"`
}

// CacheStatus reports which pipeline stages hit the cache.
type CacheStatus struct {
	Compile bool `json:"compile"`
	Layout  bool `json:"layout"`
}

// MoveRequest is the body of POST /v1/meta/move.
type MoveRequest struct {
	Meta string  `json:"meta"`
	ID   string  `json:"id"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// ResolveRequest is the body of POST /v1/meta/resolve.
type ResolveRequest struct {
	Meta    string         `json:"meta"`
	ID      string         `json:"id"`
	Default position.Point `json:"default"`
}

// ResolveResponse is returned by POST /v1/meta/resolve.
type ResolveResponse struct {
	position.Point
	Recorded bool `json:"recorded"`
}

// MetaResponse carries updated overlay text.
type MetaResponse struct {
	Meta    string   `json:"meta"`
	Removed []string `json:"removed,omitempty"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req CompileRequest
	if !decode(w, r, &req) {
		return
	}
	opts := pipeline.Options{Text: req.Text, Refresh: req.Refresh}
	m, hit, err := s.runner.CompileWithCacheInfo(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, CompileResponse{
		Map:      m,
		TextHash: cache.Hash([]byte(req.Text)),
		Cached:   hit,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !decode(w, r, &opts) {
		return
	}
	s.applyCanvas(&opts)
	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, LayoutResponse{
		Layout:   res.Layout,
		TextHash: res.TextHash,
		Flows:    res.Stats.FlowCount,
		Cached:   CacheStatus{Compile: res.CacheInfo.CompileHit, Layout: res.CacheInfo.LayoutHit},
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if !decode(w, r, &req) {
		return
	}
	updated, err := s.runner.Move(r.Context(), pipeline.Options{Overlay: req.Meta}, req.ID, position.Point{X: req.X, Y: req.Y})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, MetaResponse{Meta: updated})
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := meta.Parse(req.Meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, ok := o.Lookup(req.ID)
	if !ok {
		p = req.Default
	}
	s.respond(w, r, http.StatusOK, ResolveResponse{Point: p, Recorded: ok})
}

func (s *Server) handlePrune(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !decode(w, r, &opts) {
		return
	}
	s.applyCanvas(&opts)
	updated, removed, err := s.runner.Prune(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.respond(w, r, http.StatusOK, MetaResponse{Meta: updated, Removed: removed})
}

// decode reads a JSON body into v and answers 400 when it cannot.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		_ = writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Code:    string(errors.ErrCodeInvalidInput),
			Message: "invalid request body: " + err.Error(),
		})
		return false
	}
	return true
}

// statusFor maps error codes to HTTP statuses. Errors in the submitted
// texts are the caller's to fix and answer 422.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeLexical, errors.ErrCodeNumeric, errors.ErrCodeReference,
		errors.ErrCodeOverlayFormat, errors.ErrCodeInvalidInput,
		errors.ErrCodeInvalidStyle, errors.ErrCodeInvalidCanvas:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	status := statusFor(code)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "request_id", RequestID(r.Context()), "err", err)
	}
	_ = writeJSON(w, status, ErrorResponse{
		Code:    string(code),
		Message: errors.UserMessage(err),
		Line:    errors.LineOf(err),
	})
}

// respond writes v as the response body. A value JSON cannot represent,
// such as the infinite coordinate of an element placed far outside the
// canvas, answers NUMERIC_ERROR instead of a truncated 200.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeNumeric, err, "result is not representable as JSON"))
	}
}

// writeJSON encodes v before touching w, so a failed encoding leaves the
// response unwritten.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}
