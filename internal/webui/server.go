package webui

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/logger"
	"github.com/kayz/promptdesk/internal/output"
	"github.com/kayz/promptdesk/internal/presets"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

const maxBodyBytes = 1 << 20

// Sharer shares a generated prompt with a team channel.
type Sharer interface {
	Enabled() bool
	Share(ctx context.Context, g output.Generation) error
}

type Server struct {
	gen       *generator.Generator
	sharer    Sharer
	startedAt time.Time
	upgrader  websocket.Upgrader
}

func NewServer(gen *generator.Generator, sharer Sharer) *Server {
	return &Server{
		gen:       gen,
		sharer:    sharer,
		startedAt: time.Now().UTC(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 16384,
		},
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/options", s.handleOptions)
	mux.HandleFunc("/api/presets", s.handlePresets)
	mux.HandleFunc("/api/presets/{name}", s.handlePreset)
	mux.HandleFunc("/api/generate", s.handleGenerate)
	mux.HandleFunc("/api/last", s.handleLast)
	mux.HandleFunc("/api/download", s.handleDownload)
	mux.HandleFunc("/api/share", s.handleShare)
	mux.HandleFunc("/ws/preview", s.handlePreview)
	return mux
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	_, hasLast := s.gen.Cache().Last()
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":            true,
		"started_at":    s.startedAt.Format(time.RFC3339),
		"uptime_sec":    int(time.Since(s.startedAt).Seconds()),
		"profile":       s.gen.Profile().Name,
		"has_last":      hasLast,
		"share_enabled": s.sharer != nil && s.sharer.Enabled(),
	})
}

type optionsResponse struct {
	form.Catalog
	Profile  string            `json:"profile"`
	Profiles []string          `json:"profiles"`
	Defaults promptbuild.Flags `json:"defaults"`
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, optionsResponse{
		Catalog:  s.gen.Catalog(),
		Profile:  s.gen.Profile().Name,
		Profiles: promptbuild.BuiltinProfileNames(),
		Defaults: s.gen.Defaults(),
	})
}

func (s *Server) handlePresets(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	list, err := s.gen.Presets().List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"presets": list})
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	p, err := s.gen.Presets().Get(r.Context(), r.PathValue("name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type generateResponse struct {
	ID       string                `json:"id"`
	Prompt   string                `json:"prompt"`
	Sections []promptbuild.Section `json:"sections"`
	Params   promptbuild.Params    `json:"params"`
}

func newGenerateResponse(g output.Generation) generateResponse {
	return generateResponse{ID: g.ID, Prompt: g.Prompt, Sections: g.Sections, Params: g.Params}
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "read body failed"})
		return
	}
	req, err := decodeRequest(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	g, err := s.gen.Generate(r.Context(), req, "web")
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newGenerateResponse(g))
}

func decodeRequest(body []byte) (generator.Request, error) {
	var req generator.Request
	if len(body) == 0 {
		return req, nil
	}
	if err := form.ValidateRequestJSON(body); err != nil {
		return req, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, errors.New("invalid json body")
	}
	return req, nil
}

func (s *Server) handleLast(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	g, ok := s.gen.Cache().Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no prompt generated yet"})
		return
	}
	writeJSON(w, http.StatusOK, newGenerateResponse(g))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	g, ok := s.gen.Cache().Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no prompt generated yet"})
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+output.DefaultFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(g.Prompt)))
	_, _ = io.WriteString(w, g.Prompt)
}

func (s *Server) handleShare(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	if s.sharer == nil || !s.sharer.Enabled() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": output.ErrSharingDisabled.Error()})
		return
	}
	g, ok := s.gen.Cache().Last()
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no prompt generated yet"})
		return
	}
	if err := s.sharer.Share(r.Context(), g); err != nil {
		logger.Warn("[webui] share %s failed: %v", g.ID, err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "id": g.ID})
}

type previewReply struct {
	ID       string                `json:"id,omitempty"`
	Prompt   string                `json:"prompt,omitempty"`
	Sections []promptbuild.Section `json:"sections,omitempty"`
	Error    string                `json:"error,omitempty"`
	Fields   []form.FieldError     `json:"fields,omitempty"`
}

// handlePreview regenerates the prompt for every form state the page sends.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debug("[webui] websocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxBodyBytes)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("[webui] preview connection closed: %v", err)
			}
			return
		}

		var reply previewReply
		req, err := decodeRequest(message)
		if err == nil {
			var g output.Generation
			g, err = s.gen.Preview(r.Context(), req)
			reply = previewReply{ID: g.ID, Prompt: g.Prompt, Sections: g.Sections}
		}
		if err != nil {
			reply = previewReply{Error: err.Error()}
			var verr *form.ValidationError
			if errors.As(err, &verr) {
				reply.Fields = verr.Fields
			}
		}

		if err := conn.WriteJSON(reply); err != nil {
			logger.Debug("[webui] preview write failed: %v", err)
			return
		}
	}
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	return false
}

// writeError maps domain errors to HTTP statuses.
func writeError(w http.ResponseWriter, err error) {
	var verr *form.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": verr.Error(), "fields": verr.Fields})
	case errors.Is(err, presets.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, presets.ErrBuiltin):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		logger.Error("[webui] request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
