package questionbank

import (
	"fmt"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

// Question is one bank entry. StructureHint steers the candidate toward an
// answer framework without giving the answer away.
type Question struct {
	Text          string `json:"text"`
	Topic         string `json:"topic"`
	Category      string `json:"category"`
	StructureHint string `json:"structure_hint"`
}

// Bank serves track-scoped question sets. Selections are memoized in an
// instance-scoped cache so repeated bootstraps of the same track/difficulty
// do not rebuild the slice.
type Bank struct {
	cache  *cache.Cache
	tracks map[string][]Question
}

func NewBank() *Bank {
	// Default expiration 1 hour, purge sweep every 10 minutes
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &Bank{
		cache:  c,
		tracks: defaultTracks(),
	}
}

// Tracks returns the known track names.
func (b *Bank) Tracks() []string {
	names := make([]string, 0, len(b.tracks))
	for name := range b.tracks {
		names = append(names, name)
	}
	return names
}

// Select returns up to count questions for the track. Unknown tracks fall
// back to the behavioral set so a practice can always start.
func (b *Bank) Select(track, difficulty string, count int) []Question {
	track = normalizeTrack(track)
	key := fmt.Sprintf("%s|%s|%d", track, difficulty, count)
	if x, found := b.cache.Get(key); found {
		return x.([]Question)
	}

	pool, ok := b.tracks[track]
	if !ok {
		pool = b.tracks["behavioral"]
	}
	if count <= 0 || count > len(pool) {
		count = len(pool)
	}

	selected := make([]Question, count)
	copy(selected, pool[:count])
	for i := range selected {
		if selected[i].StructureHint == "" {
			selected[i].StructureHint = FallbackHint(selected[i].Category)
		}
	}

	b.cache.Set(key, selected, cache.DefaultExpiration)
	return selected
}

// FallbackHint picks a structure hint from the question category.
func FallbackHint(category string) string {
	category = strings.ToLower(category)
	switch {
	case strings.Contains(category, "behavioral"):
		return "Use STAR method: Situation, Task, Action, Result. Focus on your specific role and measurable outcomes."
	case strings.Contains(category, "system"), strings.Contains(category, "design"):
		// Keep this free of other frameworks' markers ("trade-off", and the
		// "star" substring hiding in "Start with") so hint detection lands
		// on G-C-D-I-O.
		return "Begin with the goal and constraints, then present your high-level architecture before diving into individual components."
	case strings.Contains(category, "algorithm"), strings.Contains(category, "coding"):
		return "Clarify assumptions, explain your approach, walk through an example, then discuss time/space complexity and edge cases."
	default:
		return "Begin with context and definition, explain your reasoning step-by-step, then summarize key takeaways and practical applications."
	}
}

func normalizeTrack(track string) string {
	return strings.ToLower(strings.TrimSpace(track))
}

func defaultTracks() map[string][]Question {
	return map[string][]Question{
		"behavioral": {
			{
				Text:          "Tell me about a time you had to deliver a project under a tight deadline.",
				Topic:         "delivery",
				Category:      "behavioral",
				StructureHint: "Use STAR method: Situation, Task, Action, Result. Focus on your specific role and measurable outcomes.",
			},
			{
				Text:          "Describe a situation where you disagreed with a teammate and how you resolved it.",
				Topic:         "collaboration",
				Category:      "behavioral",
				StructureHint: "Use STAR method: Situation, Task, Action, Result. Focus on your specific role and measurable outcomes.",
			},
			{
				Text:          "Tell me about a time you made a mistake in production. What did you do?",
				Topic:         "ownership",
				Category:      "behavioral",
				StructureHint: "Use STAR method: Situation, Task, Action, Result. Focus on your specific role and measurable outcomes.",
			},
			{
				Text:          "Give an example of a time you had to learn a new technology quickly.",
				Topic:         "learning",
				Category:      "behavioral",
				StructureHint: "Use STAR method: Situation, Task, Action, Result. Focus on your specific role and measurable outcomes.",
			},
		},
		"backend": {
			{
				Text:          "How would you choose between SQL and NoSQL storage for a new service?",
				Topic:         "storage",
				Category:      "technical",
				StructureHint: "Structure with C-T-E-T-D: Context, Theory, Example, Trade-offs, Decision.",
			},
			{
				Text:          "Explain how you would make an API idempotent and why it matters.",
				Topic:         "api_design",
				Category:      "technical",
				StructureHint: "Structure with C-T-E-T-D: Context, Theory, Example, Trade-offs, Decision.",
			},
			{
				Text:          "What strategies would you use to reduce tail latency in a read-heavy service?",
				Topic:         "performance",
				Category:      "technical",
				StructureHint: "Structure with C-T-E-T-D: Context, Theory, Example, Trade-offs, Decision.",
			},
		},
		"system_design": {
			{
				Text:          "Design a URL shortener that handles one billion redirects per day.",
				Topic:         "scalability",
				Category:      "system_design",
				StructureHint: "Follow G-C-D-I-O: Goal, Constraints, Decision, Implementation, Outcome.",
			},
			{
				Text:          "Design a notification system that delivers to email, push and SMS.",
				Topic:         "messaging",
				Category:      "system_design",
				StructureHint: "Follow G-C-D-I-O: Goal, Constraints, Decision, Implementation, Outcome.",
			},
			{
				Text:          "Design a rate limiter for a public API used by thousands of tenants.",
				Topic:         "throttling",
				Category:      "system_design",
				StructureHint: "Follow G-C-D-I-O: Goal, Constraints, Decision, Implementation, Outcome.",
			},
		},
	}
}
