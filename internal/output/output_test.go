package output

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kayz/promptdesk/internal/promptbuild"
)

func testGeneration(prompt string) Generation {
	p := promptbuild.Params{
		Role:         "Customer support agent",
		Audience:     "Customer",
		Tone:         "Professional and polite",
		OutputFormat: "Email",
		Task:         "Refund failed.",
	}
	return NewGeneration(p, prompt, promptbuild.NewAssembler(promptbuild.StandardProfile()).Sections(p))
}

func TestCacheReplacesEntry(t *testing.T) {
	var c Cache
	if _, ok := c.Last(); ok {
		t.Fatal("empty cache should have no entry")
	}

	first := testGeneration("first")
	second := testGeneration("second")
	c.Store(first)
	c.Store(second)

	got, ok := c.Last()
	if !ok || got.Prompt != "second" || got.ID != second.ID {
		t.Fatalf("expected second generation, got %+v", got)
	}
	if first.ID == second.ID {
		t.Fatal("generation ids should differ")
	}

	c.Clear()
	if _, ok := c.Last(); ok {
		t.Fatal("cache should be empty after Clear")
	}
}

func TestCacheConcurrentAccess(t *testing.T) {
	var c Cache
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Store(testGeneration("p"))
		}()
		go func() {
			defer wg.Done()
			c.Last()
		}()
	}
	wg.Wait()
	if _, ok := c.Last(); !ok {
		t.Fatal("expected an entry")
	}
}

func TestWriteFileByteForByte(t *testing.T) {
	dir := t.TempDir()
	prompt := "You are acting as a **Customer support agent**.\n\nTask:\n---\nü ✅\n---"

	path, err := WriteFile(dir, prompt)
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if filepath.Base(path) != DefaultFileName {
		t.Fatalf("expected default file name, got %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != prompt {
		t.Fatalf("file content differs:\n%q", data)
	}

	custom := filepath.Join(dir, "nested", "reply.txt")
	if _, err := WriteFile(custom, prompt); err != nil {
		t.Fatalf("WriteFile to nested path failed: %v", err)
	}
	if _, err := os.Stat(custom); err != nil {
		t.Fatalf("expected %s to exist: %v", custom, err)
	}
}

func TestAuditorRecordAppendsSameDay(t *testing.T) {
	dir := t.TempDir()
	a := NewAuditor(AuditConfig{Enabled: true, Dir: dir, RetentionDays: 7})

	if err := a.Record(testGeneration("first"), "cli"); err != nil {
		t.Fatalf("first record: %v", err)
	}
	if err := a.Record(testGeneration("second"), "web"); err != nil {
		t.Fatalf("second record: %v", err)
	}

	file := filepath.Join(dir, "promptdesk-"+time.Now().Format("2006-01-02")+".jsonl")
	data, err := os.ReadFile(file)
	if err != nil {
		t.Fatalf("read audit file: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 audit lines, got %d", len(lines))
	}

	var rec auditRecord
	if err := json.Unmarshal([]byte(lines[1]), &rec); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if rec.ID == "" || rec.ParamsDigest == "" || rec.Source != "web" || rec.Prompt != "second" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if len(rec.Sections) == 0 || rec.Sections[0] != promptbuild.SectionBrief.Title() {
		t.Fatalf("unexpected section titles: %v", rec.Sections)
	}
}

func TestAuditorDisabledWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	a := NewAuditor(AuditConfig{Dir: dir})
	if err := a.Record(testGeneration("x"), "cli"); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("audit dir should not be created, stat err = %v", err)
	}
}

func TestAuditorCleanupByDateAndModTime(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 27, 10, 0, 0, 0, time.UTC)

	write := func(name string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	oldByName := write("promptdesk-2026-02-18.jsonl")
	newByName := write("promptdesk-2026-02-26.jsonl")
	fallbackOld := write("promptdesk-not-a-date.jsonl")
	old := now.AddDate(0, 0, -10)
	if err := os.Chtimes(fallbackOld, old, old); err != nil {
		t.Fatal(err)
	}
	other := write("other-2026-01-01.jsonl")

	a := NewAuditor(AuditConfig{Enabled: true, Dir: dir, RetentionDays: 7})
	a.now = func() time.Time { return now }
	if err := a.Cleanup(); err != nil {
		t.Fatalf("Cleanup failed: %v", err)
	}

	for _, gone := range []string{oldByName, fallbackOld} {
		if _, err := os.Stat(gone); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", filepath.Base(gone))
		}
	}
	for _, kept := range []string{newByName, other} {
		if _, err := os.Stat(kept); err != nil {
			t.Errorf("%s should be kept: %v", filepath.Base(kept), err)
		}
	}
}

func TestAuditorScheduleRejectsBadSpec(t *testing.T) {
	a := NewAuditor(AuditConfig{Enabled: true, Dir: t.TempDir()})
	if _, err := a.Schedule("not a cron spec", nil); err == nil {
		t.Fatal("expected error for invalid spec")
	}
	c, err := a.Schedule("@daily", nil)
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	c.Stop()
}

func TestParamsDigestIgnoresTaskContent(t *testing.T) {
	p := promptbuild.Params{Role: "r", Task: "abc"}
	q := p
	q.Task = "xyz"
	if ParamsDigest(p) != ParamsDigest(q) {
		t.Fatal("same-length tasks should share a digest")
	}
	q.Include.Safety = true
	if ParamsDigest(p) == ParamsDigest(q) {
		t.Fatal("flags should change the digest")
	}
}

func TestSlackSharerRetriesThenSucceeds(t *testing.T) {
	var calls int32
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewSlackSharer(srv.URL, 3)
	s.delay = time.Millisecond
	if err := s.Share(context.Background(), testGeneration("Hello prompt")); err != nil {
		t.Fatalf("Share failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if !strings.Contains(body, "Hello prompt") {
		t.Fatalf("webhook body missing prompt: %s", body)
	}
}

func TestSlackSharerDisabled(t *testing.T) {
	s := NewSlackSharer("  ", 3)
	if err := s.Share(context.Background(), testGeneration("x")); !errors.Is(err, ErrSharingDisabled) {
		t.Fatalf("expected ErrSharingDisabled, got %v", err)
	}
}

func TestRenderFallsBackOnEmpty(t *testing.T) {
	if got := Render("", 80); got != "" {
		t.Fatalf("expected empty output, got %q", got)
	}
	if got := Render("Task:\n---\nhello\n---", 80); !strings.Contains(got, "hello") {
		t.Fatalf("rendered output lost content: %q", got)
	}
}
