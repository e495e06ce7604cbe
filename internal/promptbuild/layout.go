package promptbuild

import (
	"fmt"
	"strings"
)

// SectionID names one section of the assembled prompt.
type SectionID string

const (
	SectionBrief           SectionID = "brief"
	SectionPlaceholders    SectionID = SectionID(BlockPlaceholders)
	SectionSafety          SectionID = SectionID(BlockSafety)
	SectionObjective       SectionID = "objective"
	SectionTask            SectionID = "task"
	SectionContext         SectionID = "context"
	SectionRequirements    SectionID = "requirements"
	SectionOutput          SectionID = "output"
	SectionChecklist       SectionID = SectionID(BlockChecklist)
	SectionQualityBar      SectionID = SectionID(BlockQualityBar)
	SectionReferencePolicy SectionID = SectionID(BlockReferencePolicy)
)

// fixedSections must appear exactly once in every layout.
var fixedSections = []SectionID{
	SectionBrief,
	SectionObjective,
	SectionTask,
	SectionRequirements,
	SectionOutput,
}

var sectionTitles = map[SectionID]string{
	SectionBrief:           "Brief",
	SectionPlaceholders:    "Placeholders",
	SectionSafety:          "Safety & Privacy",
	SectionObjective:       "Objective",
	SectionTask:            "Task",
	SectionContext:         "Additional Context",
	SectionRequirements:    "Requirements",
	SectionOutput:          "Output",
	SectionChecklist:       "Review Checklist",
	SectionQualityBar:      "Quality Bar",
	SectionReferencePolicy: "Reference Sources",
}

// Title returns a human-readable section name.
func (id SectionID) Title() string {
	if t, ok := sectionTitles[id]; ok {
		return t
	}
	return string(id)
}

// Block returns the boilerplate block behind a gated section.
func (id SectionID) Block() (BlockID, bool) {
	b := BlockID(id)
	return b, isBlockID(b)
}

// Layout is the fixed order in which sections are emitted.
type Layout []SectionID

// DefaultLayout puts the placeholder and safety blocks ahead of the task and appends
// the checklist, quality bar and reference blocks after the core sections.
func DefaultLayout() Layout {
	return Layout{
		SectionBrief,
		SectionPlaceholders,
		SectionSafety,
		SectionTask,
		SectionContext,
		SectionObjective,
		SectionRequirements,
		SectionOutput,
		SectionChecklist,
		SectionQualityBar,
		SectionReferencePolicy,
	}
}

// Contains reports whether id is part of the layout.
func (l Layout) Contains(id SectionID) bool {
	for _, s := range l {
		if s == id {
			return true
		}
	}
	return false
}

func (l Layout) clone() Layout {
	out := make(Layout, len(l))
	copy(out, l)
	return out
}

// ParseLayout converts section names into a validated Layout.
func ParseLayout(names []string) (Layout, error) {
	l := make(Layout, 0, len(names))
	for _, n := range names {
		l = append(l, SectionID(strings.TrimSpace(n)))
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks for unknown or duplicated sections and missing fixed sections.
func (l Layout) Validate() error {
	if len(l) == 0 {
		return fmt.Errorf("layout is empty")
	}
	seen := make(map[SectionID]struct{}, len(l))
	for _, id := range l {
		if _, ok := sectionTitles[id]; !ok {
			return fmt.Errorf("unknown section %q", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate section %q", id)
		}
		seen[id] = struct{}{}
	}
	for _, id := range fixedSections {
		if _, ok := seen[id]; !ok {
			return fmt.Errorf("missing required section %q", id)
		}
	}
	return nil
}
