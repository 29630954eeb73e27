package gradebook

import (
	"context"
	"io"
)

type (
	// Gateway is the remote gradebook service.
	Gateway interface {
		GetClass(ctx context.Context, classID int) (ClassRoom, error)

		CreateStudent(ctx context.Context, classID int, ns NewStudent) (Student, error)
		UpdateStudent(ctx context.Context, classID, studentID int, us UpdateStudent) (Student, error)
		DeleteStudent(ctx context.Context, classID, studentID int) error

		CreateAssignment(ctx context.Context, classID int, na NewAssignment) (Assignment, error)
		UpdateAssignment(ctx context.Context, classID, assignmentID int, ua UpdateAssignment) (Assignment, error)
		DeleteAssignment(ctx context.Context, classID, assignmentID int) error

		SetGrade(ctx context.Context, classID, studentID, assignmentID int, sg SetGrade) (Grade, error)
	}

	ChatMessage struct {
		Role    string `json:"role"` // "user" or "assistant"
		Content string `json:"content"`
	}

	ChatRequest struct {
		DocumentText string        `json:"document_text"`
		Query        string        `json:"query"`
		History      []ChatMessage `json:"history"`
	}

	// Assistant is the AI side of the remote service.
	Assistant interface {
		GenerateReport(ctx context.Context, text string) (string, error)
		Chat(ctx context.Context, req ChatRequest) (string, error)
	}

	// Files is the part of the remote service reading uploaded class files.
	Files interface {
		FileReport(ctx context.Context, classID int, fileName string, content io.Reader) (FileReport, error)
		ImportClassData(ctx context.Context, classID int, fileName string, content io.Reader) (ImportResult, error)
	}

	// Notifier shows transient messages to the user.
	Notifier interface {
		Success(msg string)
		Error(msg string)
	}
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}
