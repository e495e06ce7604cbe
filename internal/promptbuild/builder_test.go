package promptbuild

import (
	"strings"
	"testing"
)

func sampleParams() Params {
	return Params{
		Role:           "customer support agent",
		Audience:       "customer",
		Tone:           "professional and polite",
		OutputFormat:   FormatEmail,
		Task:           "Customer cannot log in after password reset.",
		MaxLengthWords: 150,
		Include:        Flags{Checklist: true},
	}
}

func TestAssembleEmailScenario(t *testing.T) {
	out := Assemble(sampleParams())

	markers := []string{
		"You are acting as a **customer support agent**.",
		"for the **customer**.",
		"Use a **professional and polite** tone.",
		"Customer cannot log in after password reset.",
		"Structure with greeting, brief context, solution/next steps, and closing signature.",
		"Review checklist (for the human agent before sending):",
	}
	lastPos := -1
	for _, marker := range markers {
		idx := strings.Index(out, marker)
		if idx == -1 {
			t.Fatalf("expected output to contain %q\n%s", marker, out)
		}
		if idx <= lastPos {
			t.Fatalf("expected marker %q after previous marker\n%s", marker, out)
		}
		lastPos = idx
	}

	if !strings.Contains(out, "Target length: ~150 words.") {
		t.Fatalf("expected max length to be interpolated:\n%s", out)
	}

	bullets := 0
	checklist := out[strings.Index(out, "Review checklist"):]
	for _, line := range strings.Split(checklist, "\n") {
		if strings.HasPrefix(line, "- ✅") {
			bullets++
		}
	}
	if bullets != 5 {
		t.Fatalf("expected 5 checklist bullets, got %d", bullets)
	}
	if !strings.HasSuffix(out, "- ✅ Links are public and correct") {
		t.Fatalf("expected checklist to close the prompt, got tail %q", out[len(out)-60:])
	}
}

func TestAssembleIsDeterministic(t *testing.T) {
	p := sampleParams()
	p.Include = Flags{Checklist: true, Placeholders: true, Safety: true, QualityBar: true, ReferencePolicy: true}
	p.ExtraContext = "Account created via SSO."

	first := Assemble(p)
	for i := 0; i < 10; i++ {
		if got := Assemble(p); got != first {
			t.Fatalf("run %d differs from first run", i)
		}
	}
}

func TestAssembleEmptyTaskUsesPlaceholder(t *testing.T) {
	p := sampleParams()
	p.Task = "   \n\t "

	out := Assemble(p)
	if !strings.Contains(out, "---\n"+DefaultTaskPlaceholder+"\n---") {
		t.Fatalf("expected task placeholder inside task fences:\n%s", out)
	}
}

func TestAssembleCustomPlaceholder(t *testing.T) {
	prof := StandardProfile()
	prof.TaskPlaceholder = "[Task not provided]"
	a := NewAssembler(prof)

	out := a.Assemble(Params{Role: "r", Audience: "a", Tone: "t", OutputFormat: FormatEmail})
	if !strings.Contains(out, "[Task not provided]") {
		t.Fatalf("expected custom placeholder:\n%s", out)
	}
}

func TestAssembleUnknownFormatFallsBack(t *testing.T) {
	p := sampleParams()
	p.OutputFormat = "Carrier pigeon"

	out := Assemble(p)
	if !strings.Contains(out, DefaultFallbackGuidance) {
		t.Fatalf("expected fallback guidance:\n%s", out)
	}
	if !strings.Contains(out, "helpful carrier pigeon.") {
		t.Fatalf("expected lower-cased format in objective:\n%s", out)
	}
}

func TestAssembleBlankFieldsDegrade(t *testing.T) {
	out := Assemble(Params{})
	if out == "" {
		t.Fatal("expected non-empty output for zero params")
	}
	for _, want := range []string{
		"Write in **English**",
		"~250 words",
		DefaultTaskPlaceholder,
		DefaultFallbackGuidance,
		"Write only the final response",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAssembleExtraContextSection(t *testing.T) {
	p := sampleParams()
	without := Assemble(p)
	if strings.Contains(without, "Additional context:") {
		t.Fatal("context section should be omitted when empty")
	}

	p.ExtraContext = "  Customer is on the Pro plan.  "
	with := Assemble(p)
	if !strings.Contains(with, "Additional context:\nCustomer is on the Pro plan.") {
		t.Fatalf("expected trimmed context section:\n%s", with)
	}
	taskIdx := strings.Index(with, "Task (source")
	ctxIdx := strings.Index(with, "Additional context:")
	objIdx := strings.Index(with, "Objective:")
	if !(taskIdx < ctxIdx && ctxIdx < objIdx) {
		t.Fatalf("expected context between task and objective")
	}
}

func TestFlagGatingTouchesOnlyItsBlock(t *testing.T) {
	blocks := DefaultBlocks()
	for _, id := range BlockIDs() {
		t.Run(string(id), func(t *testing.T) {
			base := sampleParams()
			base.Include = Flags{}

			off := Assemble(base)
			on := base
			on.Include = on.Include.With(id, true)
			withBlock := Assemble(on)

			text := blocks.Text(id)
			if strings.Contains(off, text) {
				t.Fatalf("block %s present while disabled", id)
			}
			if !strings.Contains(withBlock, text) {
				t.Fatalf("block %s missing while enabled", id)
			}
			if got := strings.Replace(withBlock, "\n\n"+text, "", 1); got != off {
				t.Fatalf("enabling %s changed other sections", id)
			}
		})
	}
}

func TestSectionsFollowLayout(t *testing.T) {
	p := sampleParams()
	p.Include = Flags{Checklist: true, Placeholders: true, Safety: true}

	got := NewAssembler(StandardProfile()).Sections(p)
	want := []SectionID{
		SectionBrief, SectionPlaceholders, SectionSafety, SectionTask,
		SectionObjective, SectionRequirements, SectionOutput, SectionChecklist,
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Fatalf("section %d: expected %s, got %s", i, want[i], got[i].ID)
		}
		if got[i].Title == "" {
			t.Fatalf("section %d has no title", i)
		}
	}
}

func TestReferenceProfileOrder(t *testing.T) {
	p := sampleParams()
	p.Include = Flags{Safety: true, ReferencePolicy: true}

	out := NewAssembler(ReferenceProfile()).Assemble(p)
	safety := strings.Index(out, "Safety & Privacy:")
	ref := strings.Index(out, "Reference sources:")
	task := strings.Index(out, "Task (source")
	if !(safety >= 0 && ref > safety && task > ref) {
		t.Fatalf("expected safety -> reference -> task order:\n%s", out)
	}
}

func TestAssembleKeepsFieldsVerbatim(t *testing.T) {
	p := sampleParams()
	p.Role = " customer support agent "
	p.Audience = "customer\t"
	p.Tone = "  calm"
	out := Assemble(p)

	for _, want := range []string{
		"**" + p.Role + "**",
		"**" + p.Audience + "**",
		"**" + p.Tone + "**",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q verbatim in output:\n%s", want, out)
		}
	}
}
