package gradebook

import (
	"sort"
	"sync"
)

type studentRecord struct {
	student Student
	grades  map[int]Grade // {assignmentID: Grade}
}

func newStudentRecord(s Student) *studentRecord {
	rec := &studentRecord{grades: make(map[int]Grade, len(s.Grades))}
	rec.student = s
	rec.student.Grades = nil
	for _, g := range s.Grades {
		g.StudentID = s.ID
		rec.grades[g.AssignmentID] = g
	}
	return rec
}

// snapshot returns a copy with grades ordered by assignment ID.
func (rec *studentRecord) snapshot() Student {
	s := rec.student
	s.Grades = make([]Grade, 0, len(rec.grades))
	for _, g := range rec.grades {
		s.Grades = append(s.Grades, g)
	}
	sort.Slice(s.Grades, func(i, j int) bool { return s.Grades[i].AssignmentID < s.Grades[j].AssignmentID })
	return s
}

// Cache holds the local copy of one ClassRoom.
// Grades are attached to their Student, so removing a Student drops its grades with it.
// Every method is synchronous, returns copies and never does I/O.
type Cache struct {
	mutex sync.RWMutex

	classID   int
	className string

	students     map[int]*studentRecord
	studentOrder []int // insertion order

	assignments     map[int]Assignment
	assignmentOrder []int
}

func NewCache() *Cache {
	return &Cache{
		students:    make(map[int]*studentRecord),
		assignments: make(map[int]Assignment),
	}
}

// Load replaces the cache contents with cr.
// Duplicate IDs collapse into the last occurrence and grades of unknown assignments are dropped.
func (c *Cache) Load(cr ClassRoom) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.classID = cr.ID
	c.className = cr.Name
	c.students = make(map[int]*studentRecord, len(cr.Students))
	c.studentOrder = make([]int, 0, len(cr.Students))
	c.assignments = make(map[int]Assignment, len(cr.Assignments))
	c.assignmentOrder = make([]int, 0, len(cr.Assignments))

	for _, a := range cr.Assignments {
		c.putAssignment(a)
	}
	for _, s := range cr.Students {
		c.putStudent(s)
	}
	for _, rec := range c.students {
		for aid := range rec.grades {
			if _, ok := c.assignments[aid]; !ok {
				delete(rec.grades, aid)
			}
		}
	}
}

func (c *Cache) ClassID() int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.classID
}

// ClassRoom returns a full snapshot in insertion order.
func (c *Cache) ClassRoom() ClassRoom {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return ClassRoom{
		ID:          c.classID,
		Name:        c.className,
		Assignments: c.assignmentList(),
		Students:    c.studentList(),
	}
}

// Students

func (c *Cache) studentList() []Student {
	r := make([]Student, 0, len(c.studentOrder))
	for _, id := range c.studentOrder {
		r = append(r, c.students[id].snapshot())
	}
	return r
}

// Students returns all students in insertion order.
func (c *Cache) Students() []Student {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.studentList()
}

func (c *Cache) Student(id int) (Student, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if rec, ok := c.students[id]; ok {
		return rec.snapshot(), true
	}
	return Student{}, false
}

func (c *Cache) putStudent(s Student) {
	if s.ClassID == 0 {
		s.ClassID = c.classID
	}
	if _, ok := c.students[s.ID]; !ok {
		c.studentOrder = append(c.studentOrder, s.ID)
	}
	c.students[s.ID] = newStudentRecord(s)
}

// AddStudent appends s, or replaces the student with the same ID in place.
func (c *Cache) AddStudent(s Student) Student {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.putStudent(s)
	return c.students[s.ID].snapshot()
}

// UpdateStudent renames a student, keeping its grades.
func (c *Cache) UpdateStudent(id int, fullName string) (Student, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	rec, ok := c.students[id]
	if !ok {
		return Student{}, false
	}
	rec.student.FullName = fullName
	return rec.snapshot(), true
}

// RemoveStudent removes the student and its grades.
// It returns the removed student and its position so that RestoreStudent can undo it.
func (c *Cache) RemoveStudent(id int) (Student, int, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	rec, ok := c.students[id]
	if !ok {
		return Student{}, -1, false
	}
	delete(c.students, id)
	idx := indexOf(c.studentOrder, id)
	c.studentOrder = removeAt(c.studentOrder, idx)
	return rec.snapshot(), idx, true
}

// RestoreStudent re-inserts a removed student at its former position.
// grades of assignments that no longer exist are not restored. A negative idx means
// nothing was removed and is ignored.
func (c *Cache) RestoreStudent(s Student, idx int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if idx < 0 {
		return
	}
	if _, ok := c.students[s.ID]; ok {
		return
	}
	rec := newStudentRecord(s)
	for aid := range rec.grades {
		if _, ok := c.assignments[aid]; !ok {
			delete(rec.grades, aid)
		}
	}
	c.students[s.ID] = rec
	c.studentOrder = insertAt(c.studentOrder, idx, s.ID)
}

// ReplaceStudent swaps the entry `oldID` (usually provisional) for s, keeping its position
// and re-keying grades written in the meantime. If `oldID` is gone, s is added.
func (c *Cache) ReplaceStudent(oldID int, s Student) Student {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	old, ok := c.students[oldID]
	if !ok {
		c.putStudent(s)
		return c.students[s.ID].snapshot()
	}

	if s.ClassID == 0 {
		s.ClassID = c.classID
	}
	rec := newStudentRecord(s)
	for aid, g := range old.grades {
		if _, exists := rec.grades[aid]; !exists {
			g.StudentID = s.ID
			rec.grades[aid] = g
		}
	}
	delete(c.students, oldID)
	idx := indexOf(c.studentOrder, oldID)
	if _, dup := c.students[s.ID]; dup {
		// the server entity arrived by other means (e.g. a reload); drop the placeholder
		c.studentOrder = removeAt(c.studentOrder, idx)
	} else {
		c.studentOrder[idx] = s.ID
	}
	c.students[s.ID] = rec
	return rec.snapshot()
}

// Assignments

func (c *Cache) assignmentList() []Assignment {
	r := make([]Assignment, 0, len(c.assignmentOrder))
	for _, id := range c.assignmentOrder {
		r = append(r, c.assignments[id])
	}
	return r
}

// Assignments returns all assignments in insertion order.
func (c *Cache) Assignments() []Assignment {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.assignmentList()
}

func (c *Cache) Assignment(id int) (Assignment, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	a, ok := c.assignments[id]
	return a, ok
}

func (c *Cache) putAssignment(a Assignment) {
	if a.ClassID == 0 {
		a.ClassID = c.classID
	}
	if _, ok := c.assignments[a.ID]; !ok {
		c.assignmentOrder = append(c.assignmentOrder, a.ID)
	}
	c.assignments[a.ID] = a
}

// AddAssignment appends a, or replaces the assignment with the same ID in place.
func (c *Cache) AddAssignment(a Assignment) Assignment {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.putAssignment(a)
	return c.assignments[a.ID]
}

func (c *Cache) UpdateAssignment(id int, title string) (Assignment, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	a, ok := c.assignments[id]
	if !ok {
		return Assignment{}, false
	}
	a.Title = title
	c.assignments[id] = a
	return a, true
}

// RemoveAssignment removes the assignment and every grade referencing it.
// The removed grades and position are returned for RestoreAssignment.
func (c *Cache) RemoveAssignment(id int) (Assignment, []Grade, int, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	a, ok := c.assignments[id]
	if !ok {
		return Assignment{}, nil, -1, false
	}
	var removed []Grade
	for _, sid := range c.studentOrder {
		rec := c.students[sid]
		if g, ok := rec.grades[id]; ok {
			removed = append(removed, g)
			delete(rec.grades, id)
		}
	}
	delete(c.assignments, id)
	idx := indexOf(c.assignmentOrder, id)
	c.assignmentOrder = removeAt(c.assignmentOrder, idx)
	return a, removed, idx, true
}

// RestoreAssignment re-inserts a removed assignment and its grades of still-live students.
func (c *Cache) RestoreAssignment(a Assignment, grades []Grade, idx int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if idx < 0 {
		return
	}
	if _, ok := c.assignments[a.ID]; ok {
		return
	}
	c.assignments[a.ID] = a
	c.assignmentOrder = insertAt(c.assignmentOrder, idx, a.ID)
	for _, g := range grades {
		if rec, ok := c.students[g.StudentID]; ok {
			if _, exists := rec.grades[a.ID]; !exists {
				rec.grades[a.ID] = g
			}
		}
	}
}

// ReplaceAssignment swaps the entry `oldID` for a, keeping position and grades.
func (c *Cache) ReplaceAssignment(oldID int, a Assignment) Assignment {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if a.ClassID == 0 {
		a.ClassID = c.classID
	}
	if _, ok := c.assignments[oldID]; !ok {
		c.putAssignment(a)
		return c.assignments[a.ID]
	}

	delete(c.assignments, oldID)
	idx := indexOf(c.assignmentOrder, oldID)
	if _, dup := c.assignments[a.ID]; dup {
		c.assignmentOrder = removeAt(c.assignmentOrder, idx)
	} else {
		c.assignmentOrder[idx] = a.ID
	}
	c.assignments[a.ID] = a

	for _, rec := range c.students {
		if g, ok := rec.grades[oldID]; ok {
			delete(rec.grades, oldID)
			if _, exists := rec.grades[a.ID]; !exists {
				g.AssignmentID = a.ID
				rec.grades[a.ID] = g
			}
		}
	}
	return a
}

// Grades

// SetGrade writes value into the (student, assignment) cell, replacing any previous value
// and keeping the existing grade ID. It never fails: for an unknown student or assignment
// the grade is returned without being stored.
func (c *Cache) SetGrade(studentID, assignmentID int, value string) Grade {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	g := Grade{StudentID: studentID, AssignmentID: assignmentID, Value: value}
	rec, ok := c.students[studentID]
	if !ok {
		return g
	}
	if _, ok = c.assignments[assignmentID]; !ok {
		return g
	}
	if prev, ok := rec.grades[assignmentID]; ok {
		g.ID = prev.ID
	}
	rec.grades[assignmentID] = g
	return g
}

// PutGrade stores g as is, ID included. Same rules as SetGrade.
func (c *Cache) PutGrade(g Grade) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	rec, ok := c.students[g.StudentID]
	if !ok {
		return
	}
	if _, ok = c.assignments[g.AssignmentID]; !ok {
		return
	}
	rec.grades[g.AssignmentID] = g
}

func (c *Cache) ClearGrade(studentID, assignmentID int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	if rec, ok := c.students[studentID]; ok {
		delete(rec.grades, assignmentID)
	}
}

func (c *Cache) GradeFor(studentID, assignmentID int) (Grade, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	if rec, ok := c.students[studentID]; ok {
		g, ok := rec.grades[assignmentID]
		return g, ok
	}
	return Grade{}, false
}

// Grade returns the cell value, "" when there is none.
func (c *Cache) Grade(studentID, assignmentID int) string {
	g, _ := c.GradeFor(studentID, assignmentID)
	return g.Value
}

// CountGrades counts the grades referencing the assignment across all students.
func (c *Cache) CountGrades(assignmentID int) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	var n int
	for _, rec := range c.students {
		if _, ok := rec.grades[assignmentID]; ok {
			n++
		}
	}
	return n
}

func indexOf(ids []int, id int) int {
	for i, v := range ids {
		if v == id {
			return i
		}
	}
	return -1
}

func removeAt(ids []int, idx int) []int {
	if idx < 0 || idx >= len(ids) {
		return ids
	}
	return append(ids[:idx], ids[idx+1:]...)
}

func insertAt(ids []int, idx, id int) []int {
	if idx < 0 || idx > len(ids) {
		return append(ids, id)
	}
	ids = append(ids, 0)
	copy(ids[idx+1:], ids[idx:])
	ids[idx] = id
	return ids
}
