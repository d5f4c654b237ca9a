// Package feedback aggregates course evaluation documents across
// sections: summaries, quotes, Likert metrics, and bucketed
// distributions. An absent category is an explicit no-data result,
// never a zero.
package feedback

import (
	"fmt"

	domerrors "github.com/coursecompass/advisor-go/internal/errors"
)

// Category names one facet of a feedback document. The set is closed.
type Category string

const (
	CategoryOverallImpression     Category = "overallCourseImpression"
	CategoryLearningGains         Category = "learningGains"
	CategoryTeachingEffectiveness Category = "teachingEffectiveness"
	CategoryCourseDifficulty      Category = "courseDifficulty"
	CategoryCourseStructure       Category = "courseStructure"
	CategoryStudentEngagement     Category = "studentEngagement"
	CategorySuggestedImprovements Category = "suggestedImprovements"
)

// Categories returns all valid categories in canonical order.
func Categories() []Category {
	return []Category{
		CategoryOverallImpression,
		CategoryLearningGains,
		CategoryTeachingEffectiveness,
		CategoryCourseDifficulty,
		CategoryCourseStructure,
		CategoryStudentEngagement,
		CategorySuggestedImprovements,
	}
}

// ParseCategory validates a category token.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown feedback category %q: %w", s, domerrors.ErrInvalidInput)
}

// Title returns a human-readable heading for the category.
func (c Category) Title() string {
	switch c {
	case CategoryOverallImpression:
		return "Overall Course Impression"
	case CategoryLearningGains:
		return "Learning Gains"
	case CategoryTeachingEffectiveness:
		return "Teaching Effectiveness"
	case CategoryCourseDifficulty:
		return "Course Difficulty"
	case CategoryCourseStructure:
		return "Course Structure"
	case CategoryStudentEngagement:
		return "Student Engagement"
	case CategorySuggestedImprovements:
		return "Suggested Improvements"
	default:
		return string(c)
	}
}
