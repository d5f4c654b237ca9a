package catalog

import (
	"context"
	"encoding/json"
	"testing"
)

func TestUpsertCourses(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	courses := []Course{
		{ID: "MATH 20700", Department: "MATH", Name: "Honors Analysis in Rn I"},
		{ID: "MATH 20800", Department: "MATH", Name: "Honors Analysis in Rn II", Description: "Continuation of 20700."},
	}
	if err := db.UpsertCourses(ctx, courses); err != nil {
		t.Fatalf("UpsertCourses() error = %v", err)
	}

	got, err := db.GetCourse(ctx, "MATH", "MATH 20800")
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if got.Description != "Continuation of 20700." {
		t.Errorf("Description = %q, want stored value", got.Description)
	}

	// Re-upserting with new data updates in place.
	courses[1].Description = "Measure and integration."
	if err := db.UpsertCourses(ctx, courses); err != nil {
		t.Fatalf("UpsertCourses() second pass error = %v", err)
	}
	got, err = db.GetCourse(ctx, "MATH", "MATH 20800")
	if err != nil {
		t.Fatalf("GetCourse() error = %v", err)
	}
	if got.Description != "Measure and integration." {
		t.Errorf("Description = %q after update, want new value", got.Description)
	}

	count, err := db.CountRows(ctx, "courses")
	if err != nil {
		t.Fatalf("CountRows() error = %v", err)
	}
	if count != 2 {
		t.Errorf("CountRows(courses) = %d, want 2", count)
	}
}

func TestUpsertCoursesRejectsMissingID(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	defer db.Close()

	err = db.UpsertCourses(context.Background(), []Course{{Department: "MATH", Name: "Nameless"}})
	if err == nil {
		t.Fatal("UpsertCourses() error = nil for course without id")
	}
}

func TestUpsertSections(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	feedback := json.RawMessage(`{"overallCourseImpression":{"aiSummary":"Challenging but rewarding."}}`)
	sections := []CourseSection{
		{SectionID: "MATH20700-AUT25-1", CourseID: "MATH 20700", Department: "MATH", Term: "Autumn", Year: 2025, InstructorName: "J. Rivera", Feedback: feedback},
		{SectionID: "MATH20700-AUT25-2", CourseID: "MATH 20700", Department: "MATH", Term: "Autumn", Year: 2025, InstructorName: "A. Chan"},
	}
	if err := db.UpsertSections(ctx, sections); err != nil {
		t.Fatalf("UpsertSections() error = %v", err)
	}

	got, err := db.GetCourseSections(ctx, "MATH 20700", SectionFilter{})
	if err != nil {
		t.Fatalf("GetCourseSections() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("GetCourseSections() returned %d sections, want 2", len(got))
	}

	var withFeedback *CourseSection
	for i := range got {
		if got[i].InstructorName == "J. Rivera" {
			withFeedback = &got[i]
		}
	}
	if withFeedback == nil || len(withFeedback.Feedback) == 0 {
		t.Fatal("feedback document not stored for J. Rivera's section")
	}
}

func TestUpsertDegreeTracks(t *testing.T) {
	t.Parallel()
	db, err := NewTestDB()
	if err != nil {
		t.Fatalf("NewTestDB() error = %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	tracks := []DegreeTrack{
		{
			Name:        "Mathematics BA",
			Department:  "MATH",
			Type:        "major",
			TotalUnits:  1300,
			Description: "Rigorous training in pure mathematics.",
			Sections: []DegreeSection{
				{
					Name:      "Core",
					Courses:   []string{"MATH 20700"},
					Sequences: [][]string{{"MATH 16100", "MATH 16200", "MATH 16300"}},
				},
			},
		},
	}
	if err := db.UpsertDegreeTracks(ctx, tracks); err != nil {
		t.Fatalf("UpsertDegreeTracks() error = %v", err)
	}

	got, err := db.GetDegreeTrack(ctx, "MATH", "Mathematics BA")
	if err != nil {
		t.Fatalf("GetDegreeTrack() error = %v", err)
	}
	if len(got.Sections) != 1 || len(got.Sections[0].Sequences) != 1 {
		t.Errorf("Sections = %+v, want one section with one sequence", got.Sections)
	}
}
