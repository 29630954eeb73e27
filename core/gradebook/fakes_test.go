package gradebook

import (
	"context"
	"io"
	"sync"
)

// fakeGateway answers like the real service. Setting err makes every call fail with it.
type fakeGateway struct {
	mu     sync.Mutex
	class  ClassRoom
	err    error
	nextID int
	calls  []string

	createStudent func(ctx context.Context, ns NewStudent) (Student, error)
	setGrade      func(ctx context.Context, studentID, assignmentID int, sg SetGrade) (Grade, error)
	deleteStudent func(ctx context.Context, studentID int) error
	deleteAssign  func(ctx context.Context, assignmentID int) error
}

var _ Gateway = (*fakeGateway)(nil)

func newFakeGateway(class ClassRoom) *fakeGateway {
	return &fakeGateway{class: class, nextID: 100}
}

func (gw *fakeGateway) record(call string) error {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.calls = append(gw.calls, call)
	return gw.err
}

func (gw *fakeGateway) id() int {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.nextID++
	return gw.nextID
}

func (gw *fakeGateway) callCount() int {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	return len(gw.calls)
}

func (gw *fakeGateway) setErr(err error) {
	gw.mu.Lock()
	defer gw.mu.Unlock()
	gw.err = err
}

func (gw *fakeGateway) GetClass(_ context.Context, _ int) (ClassRoom, error) {
	if err := gw.record("GetClass"); err != nil {
		return ClassRoom{}, err
	}
	return gw.class, nil
}

func (gw *fakeGateway) CreateStudent(ctx context.Context, classID int, ns NewStudent) (Student, error) {
	if gw.createStudent != nil {
		gw.record("CreateStudent")
		return gw.createStudent(ctx, ns)
	}
	if err := gw.record("CreateStudent"); err != nil {
		return Student{}, err
	}
	return Student{ID: gw.id(), ClassID: classID, FullName: ns.FullName}, nil
}

func (gw *fakeGateway) UpdateStudent(_ context.Context, classID, studentID int, us UpdateStudent) (Student, error) {
	if err := gw.record("UpdateStudent"); err != nil {
		return Student{}, err
	}
	return Student{ID: studentID, ClassID: classID, FullName: us.FullName}, nil
}

func (gw *fakeGateway) DeleteStudent(ctx context.Context, _, studentID int) error {
	if gw.deleteStudent != nil {
		gw.record("DeleteStudent")
		return gw.deleteStudent(ctx, studentID)
	}
	return gw.record("DeleteStudent")
}

func (gw *fakeGateway) CreateAssignment(_ context.Context, classID int, na NewAssignment) (Assignment, error) {
	if err := gw.record("CreateAssignment"); err != nil {
		return Assignment{}, err
	}
	return Assignment{ID: gw.id(), ClassID: classID, Title: na.Title, Description: na.Description}, nil
}

func (gw *fakeGateway) UpdateAssignment(_ context.Context, classID, assignmentID int, ua UpdateAssignment) (Assignment, error) {
	if err := gw.record("UpdateAssignment"); err != nil {
		return Assignment{}, err
	}
	return Assignment{ID: assignmentID, ClassID: classID, Title: ua.Title}, nil
}

func (gw *fakeGateway) DeleteAssignment(ctx context.Context, _, assignmentID int) error {
	if gw.deleteAssign != nil {
		gw.record("DeleteAssignment")
		return gw.deleteAssign(ctx, assignmentID)
	}
	return gw.record("DeleteAssignment")
}

func (gw *fakeGateway) SetGrade(ctx context.Context, _, studentID, assignmentID int, sg SetGrade) (Grade, error) {
	if gw.setGrade != nil {
		gw.record("SetGrade")
		return gw.setGrade(ctx, studentID, assignmentID, sg)
	}
	if err := gw.record("SetGrade"); err != nil {
		return Grade{}, err
	}
	return Grade{Value: sg.Value}, nil
}

type fakeAssistant struct {
	mu       sync.Mutex
	report   string
	answer   string
	err      error
	lastText string
	requests []ChatRequest
}

func (ai *fakeAssistant) GenerateReport(_ context.Context, text string) (string, error) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	ai.lastText = text
	return ai.report, ai.err
}

func (ai *fakeAssistant) Chat(_ context.Context, req ChatRequest) (string, error) {
	ai.mu.Lock()
	defer ai.mu.Unlock()
	ai.requests = append(ai.requests, req)
	return ai.answer, ai.err
}

type recordingNotifier struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (n *recordingNotifier) Success(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, msg)
}

func (n *recordingNotifier) Error(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, msg)
}

func (n *recordingNotifier) counts() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.successes), len(n.errors)
}

// sampleClass has two students and two assignments; student 1 is graded on both.
func sampleClass() ClassRoom {
	return ClassRoom{
		ID:   1,
		Name: "10A",
		Assignments: []Assignment{
			{ID: 10, Title: "Контрольная 1"},
			{ID: 11, Title: "Эссе"},
		},
		Students: []Student{
			{ID: 1, FullName: "Иванов Иван", Grades: []Grade{
				{ID: 501, AssignmentID: 10, Value: "5"},
				{ID: 502, AssignmentID: 11, Value: "4"},
			}},
			{ID: 2, FullName: "Петров Пётр", Grades: []Grade{
				{ID: 503, AssignmentID: 10, Value: "3"},
			}},
		},
	}
}

// fakeFiles reads uploads whole; onImport runs before an import answers.
type fakeFiles struct {
	report   string
	err      error
	lastName string
	lastBody string
	onImport func()
}

func (f *fakeFiles) FileReport(_ context.Context, classID int, fileName string, content io.Reader) (FileReport, error) {
	if err := f.read(fileName, content); err != nil {
		return FileReport{}, err
	}
	return FileReport{Status: "success", ClassID: classID, FileName: fileName, Report: f.report}, nil
}

func (f *fakeFiles) ImportClassData(_ context.Context, classID int, fileName string, content io.Reader) (ImportResult, error) {
	if err := f.read(fileName, content); err != nil {
		return ImportResult{}, err
	}
	if f.onImport != nil {
		f.onImport()
	}
	res := ImportResult{Status: "success", ClassID: classID, FileName: fileName}
	res.Imported.Students = 1
	return res, nil
}

func (f *fakeFiles) read(fileName string, content io.Reader) error {
	body, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.lastName, f.lastBody = fileName, string(body)
	return f.err
}
