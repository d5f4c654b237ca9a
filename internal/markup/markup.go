// Package markup builds the structural output markers consumed by the
// renderer. Embedded user and feedback text is sanitized so it cannot
// break marker nesting or escape the barchart data attribute.
package markup

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// Standalone markers.
const (
	Separator      = "<separator>"
	SpaceSeparator = "<spaceseparator>"
)

// markerPattern matches any marker-like tag embedded in free text.
var markerPattern = regexp.MustCompile(`(?i)</?\s*(longshowmore|showmore|calltoaction|separator|spaceseparator|fallback|barchart)[^>]*>`)

// Sanitize strips marker-like tags and the single quotes that would
// escape a barchart data attribute.
func Sanitize(s string) string {
	s = markerPattern.ReplaceAllString(s, "")
	return strings.ReplaceAll(s, "'", "")
}

// LongShowMore wraps content in a collapsed long-form block.
func LongShowMore(content string) string {
	return "<longshowmore>\n\n" + content + "\n\n</longshowmore>"
}

// ShowMore wraps content in a collapsed block.
func ShowMore(content string) string {
	return "<showmore>\n\n" + content + "\n\n</showmore>"
}

// CallToAction wraps a follow-up prompt for the user.
func CallToAction(content string) string {
	return "<calltoaction>" + content + "</calltoaction>"
}

// Fallback wraps an apology or clarifying question shown when a tool
// cannot answer.
func Fallback(content string) string {
	return "<fallback>" + content + "</fallback>"
}

type barChartData struct {
	Values []float64 `json:"values"`
	Labels []string  `json:"labels"`
	Max    float64   `json:"max"`
}

// BarChart renders a bar chart marker. Labels are sanitized; values and
// max pass through as numbers.
func BarChart(values []float64, labels []string, max float64) (string, error) {
	if len(values) != len(labels) {
		return "", fmt.Errorf("markup: %d values for %d labels", len(values), len(labels))
	}

	clean := make([]string, len(labels))
	for i, label := range labels {
		clean[i] = Sanitize(label)
	}

	data, err := json.Marshal(barChartData{Values: values, Labels: clean, Max: max})
	if err != nil {
		return "", fmt.Errorf("markup: marshal barchart data: %w", err)
	}
	return fmt.Sprintf("<barchart data='%s' ></barchart>", data), nil
}
