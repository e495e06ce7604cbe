package presets

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kayz/promptdesk/internal/form"
	"github.com/kayz/promptdesk/internal/promptbuild"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "presets.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBuiltinsCollect(t *testing.T) {
	c := form.NewCollector(form.DefaultCatalog(), promptbuild.StandardProfile().Defaults, false)
	for _, p := range Builtins() {
		if !ValidName(p.Name) {
			t.Errorf("built-in %q has an invalid name", p.Name)
		}
		if _, err := c.Collect(p.Fields); err != nil {
			t.Errorf("built-in %q does not pass the default catalog: %v", p.Name, err)
		}
	}
}

func TestStoreSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p := Preset{
		Name:        "refund-followup",
		Description: "Refund follow-up",
		Fields: form.Input{
			Tone:           "Professional and polite",
			Task:           "Refund issued on {date}.",
			MaxLengthWords: form.Int(180),
			Safety:         form.Bool(false),
		},
	}
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := s.Get(ctx, "refund-followup")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Description != "Refund follow-up" || got.Fields.Task != "Refund issued on {date}." {
		t.Fatalf("unexpected preset: %+v", got)
	}
	if got.Fields.MaxLengthWords == nil || *got.Fields.MaxLengthWords != 180 {
		t.Fatalf("length not stored")
	}
	if got.Fields.Safety == nil || *got.Fields.Safety {
		t.Fatalf("safety=false not stored")
	}
	if got.Fields.Checklist != nil {
		t.Fatalf("unset flag should stay nil")
	}

	p.Description = "Updated"
	if err := s.Save(ctx, p); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}
	got, _ = s.Get(ctx, "refund-followup")
	if got.Description != "Updated" {
		t.Fatalf("upsert did not update description: %q", got.Description)
	}

	if err := s.Delete(ctx, "refund-followup"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get(ctx, "refund-followup"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.Delete(ctx, "refund-followup"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestStoreProtectsBuiltins(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.Save(ctx, Preset{Name: "customer-email"}); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin on save, got %v", err)
	}
	if err := s.Delete(ctx, "kb-article"); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin on delete, got %v", err)
	}
	p, err := s.Get(ctx, "kb-article")
	if err != nil || !p.Builtin {
		t.Fatalf("expected built-in kb-article, got %+v, %v", p, err)
	}
}

func TestStoreRejectsBadNames(t *testing.T) {
	s := openTestStore(t)
	for _, name := range []string{"", "Has Space", "UPPER", "../escape"} {
		if err := s.Save(context.Background(), Preset{Name: name}); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestListOrdersBuiltinsFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, name := range []string{"zeta", "alpha"} {
		if err := s.Save(ctx, Preset{Name: name}); err != nil {
			t.Fatalf("Save %s: %v", name, err)
		}
	}

	list, err := s.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	n := len(Builtins())
	if len(list) != n+2 {
		t.Fatalf("expected %d presets, got %d", n+2, len(list))
	}
	for i := 0; i < n; i++ {
		if !list[i].Builtin {
			t.Fatalf("entry %d should be built-in", i)
		}
	}
	if list[n].Name != "alpha" || list[n+1].Name != "zeta" {
		t.Fatalf("user presets not sorted: %s, %s", list[n].Name, list[n+1].Name)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openTestStore(t)
	if err := src.Save(ctx, Preset{Name: "escalation", Description: "Escalate", Fields: form.Input{QualityBar: form.Bool(true)}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "bundle.yaml")
	n, err := src.Export(ctx, path)
	if err != nil || n != 1 {
		t.Fatalf("Export = %d, %v", n, err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "customer-email") {
		t.Fatalf("export should skip built-ins:\n%s", data)
	}

	dst := openTestStore(t)
	if n, err := dst.Import(ctx, path); err != nil || n != 1 {
		t.Fatalf("Import = %d, %v", n, err)
	}
	got, err := dst.Get(ctx, "escalation")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Fields.QualityBar == nil || !*got.Fields.QualityBar {
		t.Fatalf("quality_bar lost in round trip: %+v", got.Fields)
	}
}

func TestImportRejectsBuiltinNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	data := "version: 1\npresets:\n  - name: ok-one\n  - name: customer-email\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	s := openTestStore(t)
	if _, err := s.Import(context.Background(), path); !errors.Is(err, ErrBuiltin) {
		t.Fatalf("expected ErrBuiltin, got %v", err)
	}
	if _, err := s.Get(context.Background(), "ok-one"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("nothing should be written when the bundle is rejected, got %v", err)
	}
}
