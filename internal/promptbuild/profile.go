package promptbuild

import "sort"

// Built-in profile names.
const (
	ProfileStandard  = "standard"
	ProfileQuality   = "quality"
	ProfileReference = "reference"
)

// Profile is the configuration an Assembler runs with: guidance table, boilerplate
// texts, section order, the task placeholder and the default block flags a form
// should start from.
type Profile struct {
	Name            string
	Description     string
	Guidance        GuidanceTable
	Blocks          Blocks
	Layout          Layout
	TaskPlaceholder string
	Defaults        Flags
}

// StandardProfile matches the stock support form: placeholders, safety reminders and
// the review checklist are on by default.
func StandardProfile() Profile {
	return Profile{
		Name:            ProfileStandard,
		Description:     "Placeholders and safety reminders up front, review checklist at the end.",
		Guidance:        DefaultGuidance(),
		Blocks:          DefaultBlocks(),
		Layout:          DefaultLayout(),
		TaskPlaceholder: DefaultTaskPlaceholder,
		Defaults: Flags{
			Checklist:    true,
			Placeholders: true,
			Safety:       true,
		},
	}
}

// QualityProfile adds the quality bar by default and drops the placeholder list.
func QualityProfile() Profile {
	p := StandardProfile()
	p.Name = ProfileQuality
	p.Description = "Standard layout with the quality bar enabled instead of the placeholder list."
	p.Defaults = Flags{
		Checklist:  true,
		Safety:     true,
		QualityBar: true,
	}
	return p
}

// ReferenceProfile moves the reference-sources note right after the safety reminders.
func ReferenceProfile() Profile {
	p := StandardProfile()
	p.Name = ProfileReference
	p.Description = "Reference-sources policy placed with the safety reminders; no checklist."
	p.Layout = Layout{
		SectionBrief,
		SectionPlaceholders,
		SectionSafety,
		SectionReferencePolicy,
		SectionTask,
		SectionContext,
		SectionObjective,
		SectionRequirements,
		SectionOutput,
		SectionQualityBar,
		SectionChecklist,
	}
	p.Defaults = Flags{
		Placeholders:    true,
		Safety:          true,
		ReferencePolicy: true,
	}
	return p
}

var builtinProfiles = map[string]func() Profile{
	ProfileStandard:  StandardProfile,
	ProfileQuality:   QualityProfile,
	ProfileReference: ReferenceProfile,
}

// BuiltinProfile returns a fresh copy of a built-in profile.
func BuiltinProfile(name string) (Profile, bool) {
	fn, ok := builtinProfiles[name]
	if !ok {
		return Profile{}, false
	}
	return fn(), true
}

// BuiltinProfileNames lists built-in profile names, sorted.
func BuiltinProfileNames() []string {
	names := make([]string, 0, len(builtinProfiles))
	for n := range builtinProfiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
