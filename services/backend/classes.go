package backendsvc

import (
	"context"
	"fmt"
	"net/http"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

var _ gradebook.Gateway = (*Client)(nil)

func classPath(classID int) string {
	return fmt.Sprintf("/classes/%d", classID)
}

func studentPath(classID, studentID int) string {
	return fmt.Sprintf("/classes/%d/students/%d", classID, studentID)
}

func assignmentPath(classID, assignmentID int) string {
	return fmt.Sprintf("/classes/%d/assignments/%d", classID, assignmentID)
}

// Classes

func (c *Client) ListClasses(ctx context.Context) ([]gradebook.Class, error) {
	var classes []gradebook.Class
	if err := c.doJSON(ctx, http.MethodGet, "/classes", nil, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

func (c *Client) CreateClass(ctx context.Context, nc gradebook.NewClass) (gradebook.Class, error) {
	var class gradebook.Class
	err := c.doJSON(ctx, http.MethodPost, "/classes", nc, &class)
	return class, err
}

func (c *Client) UpdateClass(ctx context.Context, classID int, nc gradebook.NewClass) (gradebook.Class, error) {
	var class gradebook.Class
	err := c.doJSON(ctx, http.MethodPut, classPath(classID), nc, &class)
	return class, err
}

func (c *Client) DeleteClass(ctx context.Context, classID int) error {
	return c.doJSON(ctx, http.MethodDelete, classPath(classID), nil, nil)
}

// GetClass returns the class with its students, their grades and the assignments.
func (c *Client) GetClass(ctx context.Context, classID int) (gradebook.ClassRoom, error) {
	var cr gradebook.ClassRoom
	err := c.doJSON(ctx, http.MethodGet, classPath(classID), nil, &cr)
	return cr, err
}

// Students

func (c *Client) CreateStudent(ctx context.Context, classID int, ns gradebook.NewStudent) (gradebook.Student, error) {
	var s gradebook.Student
	err := c.doJSON(ctx, http.MethodPost, classPath(classID)+"/students", ns, &s)
	return s, err
}

func (c *Client) UpdateStudent(ctx context.Context, classID, studentID int, us gradebook.UpdateStudent) (gradebook.Student, error) {
	var s gradebook.Student
	err := c.doJSON(ctx, http.MethodPut, studentPath(classID, studentID), us, &s)
	return s, err
}

func (c *Client) DeleteStudent(ctx context.Context, classID, studentID int) error {
	return c.doJSON(ctx, http.MethodDelete, studentPath(classID, studentID), nil, nil)
}

// Assignments

func (c *Client) CreateAssignment(ctx context.Context, classID int, na gradebook.NewAssignment) (gradebook.Assignment, error) {
	var a gradebook.Assignment
	err := c.doJSON(ctx, http.MethodPost, classPath(classID)+"/assignments", na, &a)
	return a, err
}

func (c *Client) UpdateAssignment(ctx context.Context, classID, assignmentID int, ua gradebook.UpdateAssignment) (gradebook.Assignment, error) {
	var a gradebook.Assignment
	err := c.doJSON(ctx, http.MethodPut, assignmentPath(classID, assignmentID), ua, &a)
	return a, err
}

func (c *Client) DeleteAssignment(ctx context.Context, classID, assignmentID int) error {
	return c.doJSON(ctx, http.MethodDelete, assignmentPath(classID, assignmentID), nil, nil)
}

// Grades

// SetGrade writes a grade; the response echoes the stored value.
func (c *Client) SetGrade(ctx context.Context, classID, studentID, assignmentID int, sg gradebook.SetGrade) (gradebook.Grade, error) {
	var g gradebook.Grade
	path := fmt.Sprintf("%s/assignments/%d/grade", studentPath(classID, studentID), assignmentID)
	if err := c.doJSON(ctx, http.MethodPost, path, sg, &g); err != nil {
		return gradebook.Grade{}, err
	}
	return g, nil
}
