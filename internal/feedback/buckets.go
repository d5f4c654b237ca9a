package feedback

import (
	"regexp"
	"strconv"
	"strings"
)

// Bucket label heuristics. Labels are free text; these offsets estimate a
// representative value for open-ended buckets.
const (
	// OpenEndedOffset is added to the bound of an "n+" bucket.
	OpenEndedOffset = 2
	// LessThanOffset is subtracted from the bound of a "Less than n"
	// bucket.
	LessThanOffset = 5
)

var (
	lessThanPattern = regexp.MustCompile(`(?i)^less than\s+([\d.]+)`)
	rangePattern    = regexp.MustCompile(`^([\d.]+)\s*[-–]\s*([\d.]+)`)
	plusPattern     = regexp.MustCompile(`^([\d.]+)\s*\+`)
	numberPattern   = regexp.MustCompile(`^([\d.]+)`)
)

// representativeValue estimates a numeric value for a free-text bucket
// label such as "0-2 hours", "12+ hours", "Less than 50%", or "100%".
// The second return is false when the label has no usable number.
func representativeValue(label string) (float64, bool) {
	label = strings.TrimSpace(label)

	if m := lessThanPattern.FindStringSubmatch(label); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return v - LessThanOffset, true
	}

	if m := rangePattern.FindStringSubmatch(label); m != nil {
		low, err1 := strconv.ParseFloat(m[1], 64)
		high, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return 0, false
		}
		return (low + high) / 2, true
	}

	if m := plusPattern.FindStringSubmatch(label); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return v + OpenEndedOffset, true
	}

	if m := numberPattern.FindStringSubmatch(label); m != nil {
		v, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return v, true
	}

	return 0, false
}

// sectionWeightedAverage computes a single section's weighted average
// over a bucketed distribution. Buckets with non-positive percentages or
// unusable labels contribute nothing; remaining weights are renormalized
// by their own sum. The second return is false when the section has no
// usable data points.
func sectionWeightedAverage(buckets map[string]Percent) (float64, bool) {
	var weighted, total float64
	for label, pct := range buckets {
		weight := float64(pct) / 100
		if weight <= 0 {
			continue
		}
		value, ok := representativeValue(label)
		if !ok {
			continue
		}
		weighted += value * weight
		total += weight
	}
	if total <= 0 {
		return 0, false
	}
	return weighted / total, true
}
