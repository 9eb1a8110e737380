package framework

import (
	"fmt"
	"strings"
)

// Framework is an immutable, ordered answer scaffold (e.g. STAR) with a
// coaching hint per section.
type Framework struct {
	Name     string
	Sections []string
	hints    map[string]string
}

// SectionNames returns a copy of the ordered section list so callers cannot
// mutate the registry.
func (f Framework) SectionNames() []string {
	out := make([]string, len(f.Sections))
	copy(out, f.Sections)
	return out
}

// HasSection reports whether name belongs to the framework's section set.
func (f Framework) HasSection(name string) bool {
	for _, s := range f.Sections {
		if s == name {
			return true
		}
	}
	return false
}

// HintFor returns the coaching hint for a section. Callers must validate
// membership first; an unknown section is a programming error surfaced as
// ErrUnknownSection.
func (f Framework) HintFor(section string) (string, error) {
	hint, ok := f.hints[section]
	if !ok {
		return "", fmt.Errorf("%w: %q is not a section of %s", ErrUnknownSection, section, f.Name)
	}
	return hint, nil
}

// ErrUnknownSection is returned by HintFor for a section outside the framework.
var ErrUnknownSection = fmt.Errorf("unknown framework section")

var (
	// STAR is the behavioral framework and the detection fallback.
	STAR = Framework{
		Name:     "STAR",
		Sections: []string{"Situation", "Task", "Action", "Result"},
		hints: map[string]string{
			"Situation": "Describe the context. What was happening? Where were you? What was the challenge or scenario?",
			"Task":      "Define your responsibility. What was your specific role? What were you asked to do?",
			"Action":    "Explain your actions. What specific steps did you take? How did you approach the problem?",
			"Result":    "Share the outcome. What happened? What were the measurable results? What did you learn?",
		},
	}

	// CTETD is the technical-explanation framework.
	CTETD = Framework{
		Name:     "C-T-E-T-D",
		Sections: []string{"Context", "Theory", "Example", "Trade-offs", "Decision"},
		hints: map[string]string{
			"Context":    "Set the stage. Explain the background, scenario, or environment where this concept applies.",
			"Theory":     "Define the core concept. Explain how it works, key principles, or the underlying mechanism.",
			"Example":    "Provide a concrete example. Show working code, a real scenario, or a practical demonstration.",
			"Trade-offs": "Discuss pros and cons. What are the benefits? What are the limitations or downsides?",
			"Decision":   "Conclude with your recommendation. When would you use this? What's your best practice?",
		},
	}

	// GCDIO is the system-design framework.
	GCDIO = Framework{
		Name:     "G-C-D-I-O",
		Sections: []string{"Goal", "Constraints", "Decision", "Implementation", "Outcome"},
		hints: map[string]string{
			"Goal":           "State the objective. What were you trying to achieve? What problem needed solving?",
			"Constraints":    "Identify limitations. What constraints did you face? (time, resources, requirements, etc.)",
			"Decision":       "Explain your choice. What approach did you decide on? Why did you choose it over alternatives?",
			"Implementation": "Describe execution. How did you implement your decision? What specific steps or code?",
			"Outcome":        "Share results. What was the impact? Did you meet the goal? What were the trade-offs?",
		},
	}
)

// DetectionRule maps marker substrings found in a structural hint to a
// framework. Matching is case-insensitive; any marker hit selects the rule.
type DetectionRule struct {
	Framework Framework
	Markers   []string
}

// Registry resolves structural hints to frameworks. The rule slice order is
// the detection priority: first rule with a matching marker wins.
type Registry struct {
	rules    []DetectionRule
	fallback Framework
}

// NewRegistry builds the default registry: STAR before C-T-E-T-D before
// G-C-D-I-O, falling back to STAR when nothing matches.
func NewRegistry() *Registry {
	return &Registry{
		rules: []DetectionRule{
			{Framework: STAR, Markers: []string{"star", "situation"}},
			{Framework: CTETD, Markers: []string{"c-t-e-t-d", "ctetd", "trade-off"}},
			{Framework: GCDIO, Markers: []string{"gcdio", "g-c-d-i-o", "constraints"}},
		},
		fallback: STAR,
	}
}

// Register appends a rule with the lowest priority. Call sites never change
// when a new framework is added.
func (r *Registry) Register(rule DetectionRule) {
	r.rules = append(r.rules, rule)
}

// Detect returns the framework whose marker first appears in the structural
// hint. Pure and deterministic for a given input.
func (r *Registry) Detect(structuralHint string) Framework {
	lower := strings.ToLower(structuralHint)
	for _, rule := range r.rules {
		for _, marker := range rule.Markers {
			if strings.Contains(lower, marker) {
				return rule.Framework
			}
		}
	}
	return r.fallback
}

// ByName returns a registered framework by its canonical name, falling back
// like Detect when the name is unknown. Used when the framework was assigned
// at question creation and only its name was persisted.
func (r *Registry) ByName(name string) Framework {
	for _, rule := range r.rules {
		if rule.Framework.Name == name {
			return rule.Framework
		}
	}
	return r.fallback
}
