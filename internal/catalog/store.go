package catalog

import "context"

// Store is the read contract over the course catalog. The catalog is
// populated by an external ingestion process; nothing here writes.
type Store interface {
	// GetCourse returns the course matching the id or the exact name
	// within the department. Returns errors.ErrNotFound when absent.
	GetCourse(ctx context.Context, dept, idOrName string) (*Course, error)

	// GetCourseByID returns the course with the given id. Ids carry their
	// department prefix, so no department scope is needed. Returns
	// errors.ErrNotFound when absent.
	GetCourseByID(ctx context.Context, courseID string) (*Course, error)

	// GetCourseSections returns the sections of a course, optionally
	// narrowed by term, year, and instructor.
	GetCourseSections(ctx context.Context, courseID string, filter SectionFilter) ([]CourseSection, error)

	// GetInstructorSections returns every section an instructor taught
	// within the department, optionally narrowed by term and year.
	GetInstructorSections(ctx context.Context, dept, instructor string, filter SectionFilter) ([]CourseSection, error)

	// GetDegreeTrack returns a degree track with its nested requirement
	// sections. Returns errors.ErrNotFound when absent.
	GetDegreeTrack(ctx context.Context, dept, trackName string) (*DegreeTrack, error)

	// GetDegreeTrackByName returns a degree track by name alone. Used for
	// college-wide tracks such as the core curriculum that are not owned
	// by any one department. Returns errors.ErrNotFound when absent.
	GetDegreeTrackByName(ctx context.Context, trackName string) (*DegreeTrack, error)

	// ListDegreeTracks returns summaries of a department's degree tracks.
	ListDegreeTracks(ctx context.Context, dept string) ([]DegreeTrackSummary, error)

	// ListCoursesWithTerms returns a department's courses together with
	// the distinct terms each is offered in.
	ListCoursesWithTerms(ctx context.Context, filter CourseFilter) ([]CourseWithTerms, error)
}

var _ Store = (*DB)(nil)
