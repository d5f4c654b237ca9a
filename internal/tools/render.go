package tools

import (
	"fmt"
	"strings"

	"github.com/coursecompass/advisor-go/internal/catalog"
	"github.com/coursecompass/advisor-go/internal/feedback"
	"github.com/coursecompass/advisor-go/internal/markup"
)

// CurrentTermFilter narrows section queries to the configured term.
func CurrentTermFilter(d Deps) catalog.SectionFilter {
	return catalog.SectionFilter{Term: d.CurrentTerm, Year: d.CurrentYear}
}

// TaggedList renders summaries or quotes as a bullet list with section
// provenance after each entry.
func TaggedList(items []feedback.Tagged) string {
	var b strings.Builder
	for _, item := range items {
		fmt.Fprintf(&b, "- \"%s\" %s %d (Instructor: %s)\n\n",
			markup.Sanitize(item.Text), item.Term, item.Year, markup.Sanitize(item.Instructor))
	}
	return b.String()
}

// PlacementLine renders one requirement placement as a bullet: the
// section, the subsection when nested, and the sequence when the course
// counts as a sequence step.
func PlacementLine(p catalog.RequirementPlacement) string {
	label := markup.Sanitize(p.Section)
	if p.SubSection != "" {
		label += " > " + markup.Sanitize(p.SubSection)
	}
	if len(p.Sequence) > 0 {
		label += fmt.Sprintf(" (within the sequence %s)", markup.Sanitize(strings.Join(p.Sequence, " then ")))
	}
	return "- " + label + "\n"
}

// NotFound renders the clarifying fallback shown when resolution misses.
func NotFound(what, dept string) string {
	return markup.Fallback(fmt.Sprintf(
		"Hmm, I couldn't find %s in the %s department. Could you double-check the name or give me a course id?",
		what, dept))
}

// NoData renders the explicit no-data fallback, distinct from a zero
// result.
func NoData(what string) string {
	return markup.Fallback(fmt.Sprintf(
		"I found %s, but there is no feedback data for it yet. I'll note this down and work on improving in the future!",
		what))
}
