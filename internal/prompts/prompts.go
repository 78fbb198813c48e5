// Package prompts selects follow-up questions for missing event fields.
//
// Selection is pure: the only state is an injectable random source, so tests
// can force deterministic output. Every template set is a list of equally
// valid phrasings and callers must treat the result as "one of N".
package prompts

import (
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/hearthplan/hearth/internal/models"
)

// performanceKeywords flag event names that deserve a performer-flavored
// question about the child.
var performanceKeywords = []string{"concert", "recital", "performance"}

// placeholderKeywords flag event names too generic to gush about.
var placeholderKeywords = []string{
	"thing", "event", "something", "stuff", "activity",
	"meeting", "appointment", "get together", "gathering",
}

// noContextFallback is the short-circuit question used for date/time/location
// when no event name is known yet.
const noContextFallback = "What would you like to do for them?"

var childFallbackPrompts = []string{
	"Who is this for?",
	"Which of your kids is this about?",
}

var childKeeperPrompts = []string{
	"Who needs to get this done?",
	"Which kiddo is on the hook for this one?",
}

var childPerformerPrompts = []string{
	"A %s! Who's the star performer?",
	"Lovely! Which of your kids is performing in the %s?",
}

var childMinimalPrompts = []string{
	"Who is the %s for?",
	"Got it. Who should I put down for the %s?",
}

var childWarmPrompts = []string{
	"Fun! Who's going to the %s?",
	"Sounds great! Which of your kids has the %s?",
}

var eventNamePrompts = []string{
	"What's the occasion?",
	"What would you like to put on the calendar?",
}

var datePrompts = []string{
	"What day is the %s?",
	"When is the %s happening?",
}

var timePrompts = []string{
	"What time does the %s start?",
	"Do you know what time the %s is?",
}

var locationPrompts = []string{
	"Where is the %s?",
	"Where will the %s take place?",
}

// Generator selects follow-up prompts. The zero value is not usable; build
// one with NewGenerator or NewGeneratorWithRand.
type Generator struct {
	randInt func(n int) int
}

// NewGenerator creates a Generator backed by math/rand/v2.
func NewGenerator() *Generator {
	return &Generator{randInt: rand.Intn}
}

// NewGeneratorWithRand creates a Generator with a caller-supplied random
// source, used by tests to force deterministic selection.
func NewGeneratorWithRand(randInt func(n int) int) *Generator {
	return &Generator{randInt: randInt}
}

// NextPrompt returns a follow-up question for the requested field.
// eventName may be empty when no event context is known yet; isKeeper
// flavors the child question for tasks rather than outings.
func (g *Generator) NextPrompt(field models.FieldKey, knownChildren []string, eventName string, isKeeper bool) string {
	slog.Debug("Generator.NextPrompt: selecting prompt", "field", field, "eventName", eventName, "isKeeper", isKeeper, "knownChildren", len(knownChildren))

	if field == models.FieldChildName {
		return g.childPrompt(knownChildren, eventName, isKeeper)
	}

	// Asking about the details of an event we can't name yet is jarring, so
	// the normal per-field templates are short-circuited without context.
	if eventName == "" && field != models.FieldEventName {
		return noContextFallback
	}

	switch field {
	case models.FieldEventName:
		return g.pick(eventNamePrompts)
	case models.FieldDate:
		return fmt.Sprintf(g.pick(datePrompts), eventName)
	case models.FieldTime:
		return fmt.Sprintf(g.pick(timePrompts), eventName)
	case models.FieldLocation:
		return fmt.Sprintf(g.pick(locationPrompts), eventName)
	default:
		return noContextFallback
	}
}

// childPrompt applies the special-case ordering for asking about the child:
// no context, keeper, performance, generic placeholder, then the default
// warm prompt.
func (g *Generator) childPrompt(knownChildren []string, eventName string, isKeeper bool) string {
	if eventName == "" {
		if len(knownChildren) >= 2 {
			return fmt.Sprintf("Is this for %s?", orList(knownChildren))
		}
		return g.pick(childFallbackPrompts)
	}
	if isKeeper {
		return g.pick(childKeeperPrompts)
	}
	lower := strings.ToLower(eventName)
	for _, kw := range performanceKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf(g.pick(childPerformerPrompts), eventName)
		}
	}
	for _, kw := range placeholderKeywords {
		if strings.Contains(lower, kw) {
			return fmt.Sprintf(g.pick(childMinimalPrompts), eventName)
		}
	}
	return fmt.Sprintf(g.pick(childWarmPrompts), eventName)
}

// pick returns a uniformly random element of templates.
func (g *Generator) pick(templates []string) string {
	return templates[g.randInt(len(templates))]
}

// orList joins names as "A or B" / "A, B, or C".
func orList(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " or " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", or " + names[len(names)-1]
	}
}
