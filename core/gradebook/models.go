package gradebook

import (
	"github.com/bobur6/professor-ai-helper/core"
)

// Class is the summary shown in the classes list.
type Class struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	UserID int    `json:"user_id,omitempty"`
}

// ClassRoom is one class with its students and assignments, as returned by GET /classes/{id}.
type ClassRoom struct {
	ID          int          `json:"id"`
	Name        string       `json:"name"`
	Assignments []Assignment `json:"assignments"`
	Students    []Student    `json:"students"`
}

type Student struct {
	ID       int     `json:"id"`
	ClassID  int     `json:"class_id,omitempty"`
	FullName string  `json:"full_name"`
	Grades   []Grade `json:"grades"`
}

// GradeFor returns the student's grade for the assignment, if any.
func (s Student) GradeFor(assignmentID int) (Grade, bool) {
	for _, g := range s.Grades {
		if g.AssignmentID == assignmentID {
			return g, true
		}
	}
	return Grade{}, false
}

type Assignment struct {
	ID          int    `json:"id"`
	ClassID     int    `json:"class_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Grade is free-form text; a null grade on the wire decodes to "".
type Grade struct {
	ID           int    `json:"id,omitempty"`
	StudentID    int    `json:"student_id"`
	AssignmentID int    `json:"assignment_id"`
	Value        string `json:"grade"`
}

// NewClass contains information needed to create or rename a Class.
type NewClass struct {
	Name string `json:"name" validate:"notblank,max=255"`
}

func (nc *NewClass) Validate(v *core.Validator) error {
	nc.Name = core.CleanString(nc.Name)
	return v.Struct(nc)
}

// NewStudent contains information needed to create a new Student.
type NewStudent struct {
	FullName string `json:"full_name" validate:"notblank,max=255"`
}

func (ns *NewStudent) Validate(v *core.Validator) error {
	ns.FullName = core.CleanString(ns.FullName)
	return v.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	FullName string `json:"full_name" validate:"notblank,max=255"`
}

func (us *UpdateStudent) Validate(v *core.Validator) error {
	us.FullName = core.CleanString(us.FullName)
	return v.Struct(us)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	Title       string `json:"title" validate:"notblank,max=255"`
	Description string `json:"description,omitempty"`
}

func (na *NewAssignment) Validate(v *core.Validator) error {
	na.Title = core.CleanString(na.Title)
	na.Description = core.CleanString(na.Description)
	return v.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	Title string `json:"title" validate:"notblank,max=255"`
}

func (ua *UpdateAssignment) Validate(v *core.Validator) error {
	ua.Title = core.CleanString(ua.Title)
	return v.Struct(ua)
}

// SetGrade is the body of a grade write. The value is free-form text; an empty value clears the cell.
type SetGrade struct {
	Value string `json:"grade"`
}

func (sg *SetGrade) Validate(v *core.Validator) error {
	sg.Value = core.CleanString(sg.Value)
	return v.Struct(sg)
}

// FileReport is the assistant report on an uploaded class file.
type FileReport struct {
	Status   string `json:"status"`
	ClassID  int    `json:"class_id"`
	FileName string `json:"filename"`
	Report   string `json:"report"`
}

// ImportCounts counts what an import created; grades also count overwritten ones.
type ImportCounts struct {
	Students    int `json:"students"`
	Assignments int `json:"assignments"`
	Grades      int `json:"grades"`
}

// ImportResult is the answer to a gradebook import.
type ImportResult struct {
	Status   string       `json:"status"`
	Message  string       `json:"message"`
	ClassID  int          `json:"class_id"`
	FileName string       `json:"filename"`
	Imported ImportCounts `json:"imported"`
}
