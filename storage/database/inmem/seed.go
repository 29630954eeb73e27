package inmemdb

import (
	"time"

	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
)

const (
	DemoEmail    = "professor@example.com"
	DemoPassword = "professor"
)

// SeedDemo creates a demo account owning one graded class.
func SeedDemo(db *DB) (user.User, gradebook.ClassRoom, error) {
	usr := user.User{Email: DemoEmail, IsActive: true, CreatedAt: time.Now().UTC()}
	if err := usr.SetPassword(DemoPassword); err != nil {
		return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "hashing demo password")
	}
	usr, err := NewUserRepository(db).CreateUser(usr)
	if err != nil {
		return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "creating demo user")
	}

	repo := NewClassRepository(db)
	class, err := repo.CreateClass(gradebook.Class{Name: "10А Алгебра", UserID: usr.ID})
	if err != nil {
		return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "creating demo class")
	}

	var assignments []gradebook.Assignment
	for _, title := range []string{"Контрольная 1", "Домашнее задание", "Эссе"} {
		a, err := repo.CreateAssignment(gradebook.Assignment{ClassID: class.ID, Title: title})
		if err != nil {
			return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "creating demo assignment")
		}
		assignments = append(assignments, a)
	}

	grades := map[string][]string{
		"Петров Пётр":   {"4", "5", ""},
		"Иванов Иван":   {"5", "5", "4"},
		"Сидорова Анна": {"3", "", "5"},
	}
	for _, name := range []string{"Петров Пётр", "Иванов Иван", "Сидорова Анна"} {
		s, err := repo.CreateStudent(gradebook.Student{ClassID: class.ID, FullName: name})
		if err != nil {
			return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "creating demo student")
		}
		for i, value := range grades[name] {
			if value == "" {
				continue
			}
			g := gradebook.Grade{StudentID: s.ID, AssignmentID: assignments[i].ID, Value: value}
			if _, err = repo.SaveGrade(g); err != nil {
				return user.User{}, gradebook.ClassRoom{}, errors.Wrap(err, "creating demo grade")
			}
		}
	}

	cr, err := repo.GetClassRoom(class.ID)
	return usr, cr, err
}
