package inmemdb

import (
	"sync"

	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
)

type (
	DB struct {
		user     *userTable
		school   *schoolTables
		document *documentTable
	}

	userTable struct {
		mutex sync.RWMutex
		table map[int]*user.User
		pk    int
	}

	documentTable struct {
		mutex sync.RWMutex
		table map[int]*documents.Document
		pk    int
	}

	gradeKey struct {
		studentID    int
		assignmentID int
	}

	// schoolTables share one lock so that cascading deletes are atomic.
	schoolTables struct {
		mutex       sync.RWMutex
		classes     map[int]*gradebook.Class
		students    map[int]*gradebook.Student
		assignments map[int]*gradebook.Assignment
		grades      map[gradeKey]*gradebook.Grade
		pk          int
	}
)

func Open() *DB {
	return &DB{
		user:     &userTable{table: make(map[int]*user.User)},
		document: &documentTable{table: make(map[int]*documents.Document)},
		school: &schoolTables{
			classes:     make(map[int]*gradebook.Class),
			students:    make(map[int]*gradebook.Student),
			assignments: make(map[int]*gradebook.Assignment),
			grades:      make(map[gradeKey]*gradebook.Grade),
		},
	}
}

// Reset empties every table.
func (db *DB) Reset() {
	db.user.mutex.Lock()
	db.user.table = make(map[int]*user.User)
	db.user.mutex.Unlock()

	db.document.mutex.Lock()
	db.document.table = make(map[int]*documents.Document)
	db.document.mutex.Unlock()

	db.school.mutex.Lock()
	db.school.classes = make(map[int]*gradebook.Class)
	db.school.students = make(map[int]*gradebook.Student)
	db.school.assignments = make(map[int]*gradebook.Assignment)
	db.school.grades = make(map[gradeKey]*gradebook.Grade)
	db.school.mutex.Unlock()
}
