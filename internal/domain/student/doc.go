// Package student holds the Student aggregate.
//
// A student belongs to exactly one school, may be placed in a section and
// is linked to any number of parents through a relation addressed by id
// pairs. The package has no dependencies beyond the standard library and
// the shared domain package.
//
// # Construction
//
// Students are only built through NewStudent, which validates every input
// before any field is set and returns the pending StudentCreated event:
//
//	s, events, err := student.NewStudent(student.NewStudentParams{
//	    FirstName:      "María",
//	    LastName:       "Rojas",
//	    Identification: "1-2345-6789",
//	    GradeLevel:     shared.GradeQuinto,
//	    DateOfBirth:    dob,
//	    SchoolID:       schoolID,
//	}, clock.Now())
//
// The events are not stored on the entity. The caller hands them to the
// store, which binds them to the assigned id and dispatches them after the
// transaction commits.
//
// # Listing
//
// ListFilter describes the paginated listing: optional school, grade level
// and active flag filters plus a case-insensitive substring search over
// first name, last name and identification. Results are ordered by last
// name, first name and finally id so that pages stay stable.
package student
