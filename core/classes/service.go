// Package classes is the server side of the gradebook: classes owned by a teacher account,
// their students, assignments and grades.
package classes

import (
	"errors"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

var (
	// errors
	ErrClassNotFound      = errors.New("Class not found")
	ErrStudentNotFound    = errors.New("Student not found")
	ErrAssignmentNotFound = errors.New("Assignment not found")
)

type Repository interface {
	CreateClass(class gradebook.Class) (gradebook.Class, error)
	QueryClasses(userID int) ([]gradebook.Class, error)
	GetClass(id int) (gradebook.Class, error)
	UpdateClass(class gradebook.Class) (gradebook.Class, error)
	DeleteClass(id int) error
	GetClassRoom(id int) (gradebook.ClassRoom, error)

	CreateStudent(s gradebook.Student) (gradebook.Student, error)
	GetStudent(id int) (gradebook.Student, error)
	UpdateStudent(s gradebook.Student) (gradebook.Student, error)
	DeleteStudent(id int) error

	CreateAssignment(a gradebook.Assignment) (gradebook.Assignment, error)
	GetAssignment(id int) (gradebook.Assignment, error)
	UpdateAssignment(a gradebook.Assignment) (gradebook.Assignment, error)
	DeleteAssignment(id int) error

	SaveGrade(g gradebook.Grade) (gradebook.Grade, error)
}

// Service checks that every entity reached belongs to the requesting user.
// Entities of other users are reported as not found.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) ownedClass(userID, classID int) (gradebook.Class, error) {
	class, err := svc.repo.GetClass(classID)
	if err != nil {
		return gradebook.Class{}, err
	}
	if class.UserID != userID {
		return gradebook.Class{}, ErrClassNotFound
	}
	return class, nil
}

func (svc *Service) classStudent(userID, classID, studentID int) (gradebook.Student, error) {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return gradebook.Student{}, err
	}
	s, err := svc.repo.GetStudent(studentID)
	if err != nil {
		return gradebook.Student{}, err
	}
	if s.ClassID != classID {
		return gradebook.Student{}, ErrStudentNotFound
	}
	return s, nil
}

func (svc *Service) classAssignment(userID, classID, assignmentID int) (gradebook.Assignment, error) {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return gradebook.Assignment{}, err
	}
	a, err := svc.repo.GetAssignment(assignmentID)
	if err != nil {
		return gradebook.Assignment{}, err
	}
	if a.ClassID != classID {
		return gradebook.Assignment{}, ErrAssignmentNotFound
	}
	return a, nil
}

// Classes

func (svc *Service) ListClasses(userID int) ([]gradebook.Class, error) {
	return svc.repo.QueryClasses(userID)
}

func (svc *Service) CreateClass(userID int, nc gradebook.NewClass) (gradebook.Class, error) {
	return svc.repo.CreateClass(gradebook.Class{Name: nc.Name, UserID: userID})
}

func (svc *Service) UpdateClass(userID, classID int, nc gradebook.NewClass) (gradebook.Class, error) {
	class, err := svc.ownedClass(userID, classID)
	if err != nil {
		return gradebook.Class{}, err
	}
	class.Name = nc.Name
	return svc.repo.UpdateClass(class)
}

func (svc *Service) DeleteClass(userID, classID int) error {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return err
	}
	return svc.repo.DeleteClass(classID)
}

func (svc *Service) GetClassRoom(userID, classID int) (gradebook.ClassRoom, error) {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return gradebook.ClassRoom{}, err
	}
	return svc.repo.GetClassRoom(classID)
}

// Students

func (svc *Service) AddStudent(userID, classID int, ns gradebook.NewStudent) (gradebook.Student, error) {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return gradebook.Student{}, err
	}
	return svc.repo.CreateStudent(gradebook.Student{ClassID: classID, FullName: ns.FullName})
}

func (svc *Service) UpdateStudent(userID, classID, studentID int, us gradebook.UpdateStudent) (gradebook.Student, error) {
	s, err := svc.classStudent(userID, classID, studentID)
	if err != nil {
		return gradebook.Student{}, err
	}
	s.FullName = us.FullName
	return svc.repo.UpdateStudent(s)
}

func (svc *Service) RemoveStudent(userID, classID, studentID int) error {
	if _, err := svc.classStudent(userID, classID, studentID); err != nil {
		return err
	}
	return svc.repo.DeleteStudent(studentID)
}

// Assignments

func (svc *Service) AddAssignment(userID, classID int, na gradebook.NewAssignment) (gradebook.Assignment, error) {
	if _, err := svc.ownedClass(userID, classID); err != nil {
		return gradebook.Assignment{}, err
	}
	return svc.repo.CreateAssignment(gradebook.Assignment{ClassID: classID, Title: na.Title, Description: na.Description})
}

func (svc *Service) UpdateAssignment(userID, classID, assignmentID int, ua gradebook.UpdateAssignment) (gradebook.Assignment, error) {
	a, err := svc.classAssignment(userID, classID, assignmentID)
	if err != nil {
		return gradebook.Assignment{}, err
	}
	a.Title = ua.Title
	return svc.repo.UpdateAssignment(a)
}

func (svc *Service) RemoveAssignment(userID, classID, assignmentID int) error {
	if _, err := svc.classAssignment(userID, classID, assignmentID); err != nil {
		return err
	}
	return svc.repo.DeleteAssignment(assignmentID)
}

// SetGrade creates or replaces the grade of a student for an assignment of the same class.
func (svc *Service) SetGrade(userID, classID, studentID, assignmentID int, sg gradebook.SetGrade) (gradebook.Grade, error) {
	if _, err := svc.classStudent(userID, classID, studentID); err != nil {
		return gradebook.Grade{}, err
	}
	if _, err := svc.classAssignment(userID, classID, assignmentID); err != nil {
		return gradebook.Grade{}, err
	}
	return svc.repo.SaveGrade(gradebook.Grade{StudentID: studentID, AssignmentID: assignmentID, Value: sg.Value})
}

// IsNotFound reports whether err is one of the not found errors of this package.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrClassNotFound) || errors.Is(err, ErrStudentNotFound) || errors.Is(err, ErrAssignmentNotFound)
}
