package webui

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/kayz/promptdesk/internal/generator"
	"github.com/kayz/promptdesk/internal/output"
)

type fakeSharer struct {
	enabled bool
	err     error
	shared  []string
}

func (f *fakeSharer) Enabled() bool { return f.enabled }

func (f *fakeSharer) Share(_ context.Context, g output.Generation) error {
	if f.err != nil {
		return f.err
	}
	f.shared = append(f.shared, g.ID)
	return nil
}

func newTestServer(sharer Sharer) http.Handler {
	return NewServer(generator.New(generator.Options{}), sharer).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestStatusEndpoint(t *testing.T) {
	rr := do(t, newTestServer(nil), http.MethodGet, "/api/status", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "\"ok\":true") {
		t.Fatalf("unexpected status payload: %s", rr.Body.String())
	}
}

func TestIndexServesForm(t *testing.T) {
	h := newTestServer(nil)
	rr := do(t, h, http.MethodGet, "/", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "/ws/preview") {
		t.Fatalf("unexpected index response: %d", rr.Code)
	}
	body := rr.Body.String()
	tips := strings.Index(body, "Tips for best results")
	if tips == -1 || tips > strings.Index(body, `id="preset"`) {
		t.Fatal("expected tips panel above the form")
	}
	for _, want := range []string{"placeholders", "<em>Task</em> field", "Make the goal explicit"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected tips to mention %q", want)
		}
	}
	if rr := do(t, h, http.MethodGet, "/nope", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestOptionsEndpoint(t *testing.T) {
	rr := do(t, newTestServer(nil), http.MethodGet, "/api/options", "")
	var got struct {
		Roles    []string        `json:"roles"`
		Formats  []string        `json:"formats"`
		Profile  string          `json:"profile"`
		Defaults map[string]bool `json:"defaults"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got.Roles) == 0 || len(got.Formats) != 4 || got.Profile != "standard" {
		t.Fatalf("unexpected options: %+v", got)
	}
	if !got.Defaults["checklist"] {
		t.Fatalf("expected checklist default on: %v", got.Defaults)
	}
}

func TestGenerateDownloadAndLast(t *testing.T) {
	h := newTestServer(nil)

	if rr := do(t, h, http.MethodGet, "/api/download", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any generation, got %d", rr.Code)
	}

	body := `{"role":"Customer support agent","audience":"Customer","tone":"Professional and polite","output_format":"Email","task":"Refund failed twice.","max_length_words":150}`
	rr := do(t, h, http.MethodPost, "/api/generate", body)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d body=%s", rr.Code, rr.Body.String())
	}
	var gen struct {
		ID       string            `json:"id"`
		Prompt   string            `json:"prompt"`
		Sections []json.RawMessage `json:"sections"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &gen); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gen.ID == "" || !strings.Contains(gen.Prompt, "Refund failed twice.") || len(gen.Sections) == 0 {
		t.Fatalf("unexpected generate response: %s", rr.Body.String())
	}

	dl := do(t, h, http.MethodGet, "/api/download", "")
	if dl.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", dl.Code)
	}
	if dl.Body.String() != gen.Prompt {
		t.Fatal("download must match the generated prompt byte for byte")
	}
	if cd := dl.Header().Get("Content-Disposition"); !strings.Contains(cd, "generated_prompt.txt") {
		t.Fatalf("unexpected Content-Disposition %q", cd)
	}

	last := do(t, h, http.MethodGet, "/api/last", "")
	if !strings.Contains(last.Body.String(), gen.ID) {
		t.Fatalf("last should return %s: %s", gen.ID, last.Body.String())
	}
}

func TestGenerateErrors(t *testing.T) {
	h := newTestServer(nil)
	tests := []struct {
		name   string
		method string
		body   string
		want   int
	}{
		{name: "wrong method", method: http.MethodGet, want: http.StatusMethodNotAllowed},
		{name: "unknown field", method: http.MethodPost, body: `{"colour":"red"}`, want: http.StatusBadRequest},
		{name: "bad json", method: http.MethodPost, body: `{`, want: http.StatusBadRequest},
		{name: "unknown tone", method: http.MethodPost, body: `{"tone":"Sarcastic"}`, want: http.StatusUnprocessableEntity},
		{name: "unknown preset", method: http.MethodPost, body: `{"preset":"nope"}`, want: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := do(t, h, tc.method, "/api/generate", tc.body)
			if rr.Code != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, rr.Code, rr.Body.String())
			}
			if !strings.Contains(rr.Body.String(), "\"error\"") {
				t.Fatalf("expected error payload: %s", rr.Body.String())
			}
		})
	}
}

func TestPresetEndpoints(t *testing.T) {
	h := newTestServer(nil)
	rr := do(t, h, http.MethodGet, "/api/presets", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "customer-email") {
		t.Fatalf("unexpected presets list: %d %s", rr.Code, rr.Body.String())
	}
	rr = do(t, h, http.MethodGet, "/api/presets/kb-article", "")
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "Knowledge base article draft") {
		t.Fatalf("unexpected preset: %d %s", rr.Code, rr.Body.String())
	}
	if rr := do(t, h, http.MethodGet, "/api/presets/missing", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestShareEndpoint(t *testing.T) {
	if rr := do(t, newTestServer(nil), http.MethodPost, "/api/share", ""); rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without a sharer, got %d", rr.Code)
	}

	sharer := &fakeSharer{enabled: true}
	h := newTestServer(sharer)
	if rr := do(t, h, http.MethodPost, "/api/share", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before generating, got %d", rr.Code)
	}
	do(t, h, http.MethodPost, "/api/generate", `{}`)
	if rr := do(t, h, http.MethodPost, "/api/share", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", rr.Code, rr.Body.String())
	}
	if len(sharer.shared) != 1 {
		t.Fatalf("expected one share, got %d", len(sharer.shared))
	}

	sharer.err = errors.New("webhook down")
	if rr := do(t, h, http.MethodPost, "/api/share", ""); rr.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rr.Code)
	}
}

func TestPreviewWebsocket(t *testing.T) {
	srv := httptest.NewServer(newTestServer(nil))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws/preview"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"task":"Printer offline","output_format":"Slack message"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	var reply previewReply
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Error != "" || !strings.Contains(reply.Prompt, "Printer offline") {
		t.Fatalf("unexpected reply: %+v", reply)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"audience":"Aliens"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	reply = previewReply{}
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Error == "" || len(reply.Fields) != 1 || reply.Fields[0].Field != "audience" {
		t.Fatalf("expected audience field error, got %+v", reply)
	}
}
