package inmemdb

import (
	"sort"

	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

type classRepository struct {
	db *schoolTables
}

var _ classes.Repository = (*classRepository)(nil) // interface compliance check

func NewClassRepository(db *DB) classes.Repository {
	return &classRepository{db: db.school}
}

func (repo *classRepository) nextPK() int {
	repo.db.pk++
	return repo.db.pk
}

// Classes

func (repo *classRepository) CreateClass(class gradebook.Class) (gradebook.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	class.ID = repo.nextPK()
	repo.db.classes[class.ID] = &class
	return class, nil
}

func (repo *classRepository) QueryClasses(userID int) ([]gradebook.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	r := make([]gradebook.Class, 0)
	for _, c := range repo.db.classes {
		if c.UserID == userID {
			r = append(r, *c)
		}
	}
	sort.Slice(r, func(i, j int) bool { return r[i].ID < r[j].ID })
	return r, nil
}

func (repo *classRepository) GetClass(id int) (gradebook.Class, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if c, ok := repo.db.classes[id]; ok {
		return *c, nil
	}
	return gradebook.Class{}, classes.ErrClassNotFound
}

func (repo *classRepository) UpdateClass(class gradebook.Class) (gradebook.Class, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.classes[class.ID]
	if !ok {
		return gradebook.Class{}, classes.ErrClassNotFound
	}
	orig.Name = class.Name
	return *orig, nil
}

// DeleteClass removes the class with its students, assignments and grades.
func (repo *classRepository) DeleteClass(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[id]; !ok {
		return classes.ErrClassNotFound
	}
	for sid, s := range repo.db.students {
		if s.ClassID == id {
			repo.deleteStudent(sid)
		}
	}
	for aid, a := range repo.db.assignments {
		if a.ClassID == id {
			repo.deleteAssignment(aid)
		}
	}
	delete(repo.db.classes, id)
	return nil
}

// GetClassRoom returns the class with students and assignments in creation order.
func (repo *classRepository) GetClassRoom(id int) (gradebook.ClassRoom, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	c, ok := repo.db.classes[id]
	if !ok {
		return gradebook.ClassRoom{}, classes.ErrClassNotFound
	}
	cr := gradebook.ClassRoom{
		ID:          c.ID,
		Name:        c.Name,
		Assignments: make([]gradebook.Assignment, 0),
		Students:    make([]gradebook.Student, 0),
	}
	for _, a := range repo.db.assignments {
		if a.ClassID == id {
			cr.Assignments = append(cr.Assignments, *a)
		}
	}
	sort.Slice(cr.Assignments, func(i, j int) bool { return cr.Assignments[i].ID < cr.Assignments[j].ID })

	for _, s := range repo.db.students {
		if s.ClassID == id {
			cr.Students = append(cr.Students, repo.withGrades(*s))
		}
	}
	sort.Slice(cr.Students, func(i, j int) bool { return cr.Students[i].ID < cr.Students[j].ID })
	return cr, nil
}

// Students

func (repo *classRepository) withGrades(s gradebook.Student) gradebook.Student {
	s.Grades = make([]gradebook.Grade, 0)
	for k, g := range repo.db.grades {
		if k.studentID == s.ID {
			s.Grades = append(s.Grades, *g)
		}
	}
	sort.Slice(s.Grades, func(i, j int) bool { return s.Grades[i].AssignmentID < s.Grades[j].AssignmentID })
	return s
}

func (repo *classRepository) CreateStudent(s gradebook.Student) (gradebook.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[s.ClassID]; !ok {
		return gradebook.Student{}, classes.ErrClassNotFound
	}
	s.ID = repo.nextPK()
	s.Grades = nil
	repo.db.students[s.ID] = &s
	return repo.withGrades(s), nil
}

func (repo *classRepository) GetStudent(id int) (gradebook.Student, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if s, ok := repo.db.students[id]; ok {
		return repo.withGrades(*s), nil
	}
	return gradebook.Student{}, classes.ErrStudentNotFound
}

func (repo *classRepository) UpdateStudent(s gradebook.Student) (gradebook.Student, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.students[s.ID]
	if !ok {
		return gradebook.Student{}, classes.ErrStudentNotFound
	}
	orig.FullName = s.FullName
	return repo.withGrades(*orig), nil
}

func (repo *classRepository) deleteStudent(id int) {
	for k := range repo.db.grades {
		if k.studentID == id {
			delete(repo.db.grades, k)
		}
	}
	delete(repo.db.students, id)
}

// DeleteStudent removes the student and its grades.
func (repo *classRepository) DeleteStudent(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[id]; !ok {
		return classes.ErrStudentNotFound
	}
	repo.deleteStudent(id)
	return nil
}

// Assignments

func (repo *classRepository) CreateAssignment(a gradebook.Assignment) (gradebook.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.classes[a.ClassID]; !ok {
		return gradebook.Assignment{}, classes.ErrClassNotFound
	}
	a.ID = repo.nextPK()
	repo.db.assignments[a.ID] = &a
	return a, nil
}

func (repo *classRepository) GetAssignment(id int) (gradebook.Assignment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if a, ok := repo.db.assignments[id]; ok {
		return *a, nil
	}
	return gradebook.Assignment{}, classes.ErrAssignmentNotFound
}

func (repo *classRepository) UpdateAssignment(a gradebook.Assignment) (gradebook.Assignment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	orig, ok := repo.db.assignments[a.ID]
	if !ok {
		return gradebook.Assignment{}, classes.ErrAssignmentNotFound
	}
	orig.Title = a.Title
	return *orig, nil
}

func (repo *classRepository) deleteAssignment(id int) {
	for k := range repo.db.grades {
		if k.assignmentID == id {
			delete(repo.db.grades, k)
		}
	}
	delete(repo.db.assignments, id)
}

// DeleteAssignment removes the assignment and every grade referencing it.
func (repo *classRepository) DeleteAssignment(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.assignments[id]; !ok {
		return classes.ErrAssignmentNotFound
	}
	repo.deleteAssignment(id)
	return nil
}

// Grades

// SaveGrade inserts the grade or replaces the value of the existing one for the same pair.
func (repo *classRepository) SaveGrade(g gradebook.Grade) (gradebook.Grade, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.students[g.StudentID]; !ok {
		return gradebook.Grade{}, classes.ErrStudentNotFound
	}
	if _, ok := repo.db.assignments[g.AssignmentID]; !ok {
		return gradebook.Grade{}, classes.ErrAssignmentNotFound
	}

	key := gradeKey{studentID: g.StudentID, assignmentID: g.AssignmentID}
	if orig, ok := repo.db.grades[key]; ok {
		orig.Value = g.Value
		return *orig, nil
	}
	g.ID = repo.nextPK()
	repo.db.grades[key] = &g
	return g, nil
}
