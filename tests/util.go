package testutil

import (
	"testing"
	"time"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
)

// TestConfig returns the configuration used by server tests.
func TestConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Professor AI Helper",
		Locale:   "ru",
		API: core.APIConfig{
			Timeout:    5 * time.Second,
			LoginPath:  "/login",
			MaxRetries: 0,
		},
		Server: core.ServerConfig{
			SecretKey:          "test-secret",
			JWTExpirationDelta: time.Hour,
			DisableReqLogs:     true,
		},
	}
}

func CreateUser(t *testing.T, repo user.Repository, email, pwd string, isActive bool) user.User {
	t.Helper()
	usr := user.User{
		Email:     email,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// CreateClass stores a class owned by userID with the given students and assignment titles.
func CreateClass(t *testing.T, repo classes.Repository, userID int, name string, students []string, assignments ...string) gradebook.ClassRoom {
	t.Helper()
	class, err := repo.CreateClass(gradebook.Class{Name: name, UserID: userID})
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	for _, fullName := range students {
		if _, err = repo.CreateStudent(gradebook.Student{ClassID: class.ID, FullName: fullName}); err != nil {
			t.Fatalf("CreateClass() failed: %v", err)
		}
	}
	for _, title := range assignments {
		if _, err = repo.CreateAssignment(gradebook.Assignment{ClassID: class.ID, Title: title}); err != nil {
			t.Fatalf("CreateClass() failed: %v", err)
		}
	}
	cr, err := repo.GetClassRoom(class.ID)
	if err != nil {
		t.Fatalf("CreateClass() failed: %v", err)
	}
	return cr
}

func SetGrade(t *testing.T, repo classes.Repository, studentID, assignmentID int, value string) gradebook.Grade {
	t.Helper()
	g, err := repo.SaveGrade(gradebook.Grade{StudentID: studentID, AssignmentID: assignmentID, Value: value})
	if err != nil {
		t.Fatalf("SetGrade() failed: %v", err)
	}
	return g
}
