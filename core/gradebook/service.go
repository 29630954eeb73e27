package gradebook

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/text/language"

	"github.com/bobur6/professor-ai-helper/core"
)

var (
	// errors
	ErrSuperseded = errors.New("grade write superseded by a newer one")

	errUnknownStudent        = errors.New("student not found")
	errUnknownAssignment     = errors.New("assignment not found")
	errProvisionalStudent    = errors.New("student is not saved yet")
	errProvisionalAssignment = errors.New("assignment is not saved yet")
)

// mutation kinds
const (
	kindLoad             = "load"
	kindAddStudent       = "add_student"
	kindUpdateStudent    = "update_student"
	kindRemoveStudent    = "remove_student"
	kindAddAssignment    = "add_assignment"
	kindUpdateAssignment = "update_assignment"
	kindRemoveAssignment = "remove_assignment"
	kindSetGrade         = "set_grade"
	kindReport           = "report"
	kindChat             = "chat"
	kindFileReport       = "file_report"
	kindImport           = "import"
)

var (
	successMsgs = map[string]string{
		kindAddStudent:       "student added",
		kindUpdateStudent:    "student updated",
		kindRemoveStudent:    "student removed",
		kindAddAssignment:    "assignment added",
		kindUpdateAssignment: "assignment updated",
		kindRemoveAssignment: "assignment removed",
		kindSetGrade:         "grade saved",
		kindImport:           "data imported",
	}
	failureMsgs = map[string]string{
		kindLoad:             "failed to load class",
		kindAddStudent:       "failed to add student",
		kindUpdateStudent:    "failed to update student",
		kindRemoveStudent:    "failed to remove student",
		kindAddAssignment:    "failed to add assignment",
		kindUpdateAssignment: "failed to update assignment",
		kindRemoveAssignment: "failed to remove assignment",
		kindSetGrade:         "failed to save grade",
		kindReport:           "failed to generate report",
		kindChat:             "failed to get an answer",
		kindFileReport:       "failed to generate report from file",
		kindImport:           "failed to import data",
	}
)

type Deps struct {
	Gateway   Gateway
	Assistant Assistant
	Files     Files
	Cache     *Cache
	Validator *core.Validator
	Notifier  Notifier
	Logger    core.Logger
	Metrics   *Metrics

	// SequenceGrades discards grade responses older than the latest write to the same cell.
	SequenceGrades bool
	// Locale is the collation language of projections. Defaults to Russian.
	Locale string
}

// Controller applies user changes to the Cache first and then to the Gateway,
// reconciling on success and rolling back on failure.
type Controller struct {
	classID int
	gw      Gateway
	ai      Assistant
	files   Files
	cache   *Cache
	v       *core.Validator
	notify  Notifier
	log     core.Logger
	metrics *Metrics
	seq     *sequencer
	lang    language.Tag

	lastTmpID int64 // provisional IDs: -1, -2, ...

	chat *Chat
}

func NewController(classID int, deps Deps) *Controller {
	ctrl := &Controller{
		classID: classID,
		gw:      deps.Gateway,
		ai:      deps.Assistant,
		files:   deps.Files,
		cache:   deps.Cache,
		v:       deps.Validator,
		notify:  deps.Notifier,
		log:     deps.Logger,
		metrics: deps.Metrics,
		lang:    language.Russian,
		chat:    NewChat(deps.Assistant),
	}
	if ctrl.cache == nil {
		ctrl.cache = NewCache()
	}
	if ctrl.v == nil {
		ctrl.v = core.NewValidator()
	}
	if ctrl.notify == nil {
		ctrl.notify = nopNotifier{}
	}
	if ctrl.log == nil {
		ctrl.log = core.NopLogger{}
	}
	if deps.SequenceGrades {
		ctrl.seq = newSequencer()
	}
	if deps.Locale != "" {
		if tag, err := language.Parse(deps.Locale); err == nil {
			ctrl.lang = tag
		}
	}
	return ctrl
}

func (ctrl *Controller) ClassID() int { return ctrl.classID }

func (ctrl *Controller) Cache() *Cache { return ctrl.cache }

// Projection returns a sorted view over the cached students.
func (ctrl *Controller) Projection(cfg SortConfig) Projection {
	return NewProjection(ctrl.cache, cfg).WithLanguage(ctrl.lang)
}

func (ctrl *Controller) nextProvisionalID() int {
	return int(atomic.AddInt64(&ctrl.lastTmpID, -1))
}

// IsProvisional reports whether id was assigned locally and not yet confirmed by the server.
func IsProvisional(id int) bool {
	return id < 0
}

// Load fetches the class and replaces the cache contents.
func (ctrl *Controller) Load(ctx context.Context) error {
	cr, err := ctrl.gw.GetClass(ctx, ctrl.classID)
	if err != nil {
		ctrl.fail(kindLoad, err, nil)
		return err
	}
	ctrl.cache.Load(cr)
	ctrl.log.Debug("class loaded", core.Fields{
		"class":       ctrl.classID,
		"students":    len(cr.Students),
		"assignments": len(cr.Assignments),
	})
	return nil
}

func (ctrl *Controller) invalid(kind string, err error) error {
	ctrl.metrics.observe(kind, outcomeInvalid)
	return err
}

func (ctrl *Controller) succeed(kind string) {
	ctrl.metrics.observe(kind, outcomeSuccess)
	ctrl.notify.Success(successMsgs[kind])
}

// fail reports a remote failure after its local effect has been undone.
func (ctrl *Controller) fail(kind string, err error, fields core.Fields) {
	switch kind {
	case kindLoad, kindReport, kindChat, kindFileReport, kindImport:
		// nothing to roll back
	default:
		ctrl.metrics.observe(kind, outcomeRollback)
	}
	if fields == nil {
		fields = core.Fields{}
	}
	fields["class"] = ctrl.classID
	fields["kind"] = kind
	fields["cause"] = errors.Cause(err).Error()
	ctrl.log.Warn("remote call failed", fields)
	ctrl.notify.Error(fmt.Sprintf("%s: %s", failureMsgs[kind], core.UserMessage(err)))
}

func (ctrl *Controller) liveStudent(id int) (Student, error) {
	if IsProvisional(id) {
		return Student{}, core.NewValidationError(errProvisionalStudent, core.FieldError{Field: "student_id", Error: errProvisionalStudent.Error()})
	}
	s, ok := ctrl.cache.Student(id)
	if !ok {
		return Student{}, core.NewValidationError(errUnknownStudent, core.FieldError{Field: "student_id", Error: errUnknownStudent.Error()})
	}
	return s, nil
}

func (ctrl *Controller) liveAssignment(id int) (Assignment, error) {
	if IsProvisional(id) {
		return Assignment{}, core.NewValidationError(errProvisionalAssignment, core.FieldError{Field: "assignment_id", Error: errProvisionalAssignment.Error()})
	}
	a, ok := ctrl.cache.Assignment(id)
	if !ok {
		return Assignment{}, core.NewValidationError(errUnknownAssignment, core.FieldError{Field: "assignment_id", Error: errUnknownAssignment.Error()})
	}
	return a, nil
}

// Students

func (ctrl *Controller) AddStudent(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(ctrl.v); err != nil {
		return Student{}, ctrl.invalid(kindAddStudent, err)
	}

	tmpID := ctrl.nextProvisionalID()
	ctrl.cache.AddStudent(Student{ID: tmpID, ClassID: ctrl.classID, FullName: ns.FullName})

	done := ctrl.metrics.start()
	s, err := ctrl.gw.CreateStudent(ctx, ctrl.classID, ns)
	done()
	if err != nil {
		ctrl.cache.RemoveStudent(tmpID)
		ctrl.fail(kindAddStudent, err, core.Fields{"student": tmpID})
		return Student{}, err
	}

	s = ctrl.cache.ReplaceStudent(tmpID, s)
	ctrl.succeed(kindAddStudent)
	return s, nil
}

func (ctrl *Controller) UpdateStudent(ctx context.Context, studentID int, us UpdateStudent) (Student, error) {
	if err := us.Validate(ctrl.v); err != nil {
		return Student{}, ctrl.invalid(kindUpdateStudent, err)
	}
	prev, err := ctrl.liveStudent(studentID)
	if err != nil {
		return Student{}, ctrl.invalid(kindUpdateStudent, err)
	}

	ctrl.cache.UpdateStudent(studentID, us.FullName)

	done := ctrl.metrics.start()
	s, err := ctrl.gw.UpdateStudent(ctx, ctrl.classID, studentID, us)
	done()
	if err != nil {
		ctrl.cache.UpdateStudent(studentID, prev.FullName)
		ctrl.fail(kindUpdateStudent, err, core.Fields{"student": studentID})
		return Student{}, err
	}

	if s.FullName == "" {
		s.FullName = us.FullName
	}
	s, _ = ctrl.cache.UpdateStudent(studentID, s.FullName)
	ctrl.succeed(kindUpdateStudent)
	return s, nil
}

// RemoveStudent deletes the student together with its grades.
func (ctrl *Controller) RemoveStudent(ctx context.Context, studentID int) error {
	if _, err := ctrl.liveStudent(studentID); err != nil {
		return ctrl.invalid(kindRemoveStudent, err)
	}

	removed, idx, ok := ctrl.cache.RemoveStudent(studentID)
	if !ok {
		// removed by a concurrent call since the check above
		return ctrl.invalid(kindRemoveStudent, core.NewValidationError(errUnknownStudent, core.FieldError{Field: "student_id", Error: errUnknownStudent.Error()}))
	}

	done := ctrl.metrics.start()
	err := ctrl.gw.DeleteStudent(ctx, ctrl.classID, studentID)
	done()
	if err != nil {
		ctrl.cache.RestoreStudent(removed, idx)
		ctrl.fail(kindRemoveStudent, err, core.Fields{"student": studentID})
		return err
	}

	ctrl.succeed(kindRemoveStudent)
	return nil
}

// Assignments

func (ctrl *Controller) AddAssignment(ctx context.Context, na NewAssignment) (Assignment, error) {
	if err := na.Validate(ctrl.v); err != nil {
		return Assignment{}, ctrl.invalid(kindAddAssignment, err)
	}

	tmpID := ctrl.nextProvisionalID()
	ctrl.cache.AddAssignment(Assignment{ID: tmpID, ClassID: ctrl.classID, Title: na.Title, Description: na.Description})

	done := ctrl.metrics.start()
	a, err := ctrl.gw.CreateAssignment(ctx, ctrl.classID, na)
	done()
	if err != nil {
		ctrl.cache.RemoveAssignment(tmpID)
		ctrl.fail(kindAddAssignment, err, core.Fields{"assignment": tmpID})
		return Assignment{}, err
	}

	a = ctrl.cache.ReplaceAssignment(tmpID, a)
	ctrl.succeed(kindAddAssignment)
	return a, nil
}

func (ctrl *Controller) UpdateAssignment(ctx context.Context, assignmentID int, ua UpdateAssignment) (Assignment, error) {
	if err := ua.Validate(ctrl.v); err != nil {
		return Assignment{}, ctrl.invalid(kindUpdateAssignment, err)
	}
	prev, err := ctrl.liveAssignment(assignmentID)
	if err != nil {
		return Assignment{}, ctrl.invalid(kindUpdateAssignment, err)
	}

	ctrl.cache.UpdateAssignment(assignmentID, ua.Title)

	done := ctrl.metrics.start()
	a, err := ctrl.gw.UpdateAssignment(ctx, ctrl.classID, assignmentID, ua)
	done()
	if err != nil {
		ctrl.cache.UpdateAssignment(assignmentID, prev.Title)
		ctrl.fail(kindUpdateAssignment, err, core.Fields{"assignment": assignmentID})
		return Assignment{}, err
	}

	if a.Title == "" {
		a.Title = ua.Title
	}
	a, _ = ctrl.cache.UpdateAssignment(assignmentID, a.Title)
	ctrl.succeed(kindUpdateAssignment)
	return a, nil
}

// RemoveAssignment deletes the assignment and every grade referencing it.
func (ctrl *Controller) RemoveAssignment(ctx context.Context, assignmentID int) error {
	if _, err := ctrl.liveAssignment(assignmentID); err != nil {
		return ctrl.invalid(kindRemoveAssignment, err)
	}

	removed, grades, idx, ok := ctrl.cache.RemoveAssignment(assignmentID)
	if !ok {
		return ctrl.invalid(kindRemoveAssignment, core.NewValidationError(errUnknownAssignment, core.FieldError{Field: "assignment_id", Error: errUnknownAssignment.Error()}))
	}

	done := ctrl.metrics.start()
	err := ctrl.gw.DeleteAssignment(ctx, ctrl.classID, assignmentID)
	done()
	if err != nil {
		ctrl.cache.RestoreAssignment(removed, grades, idx)
		ctrl.fail(kindRemoveAssignment, err, core.Fields{"assignment": assignmentID, "grades": len(grades)})
		return err
	}

	ctrl.succeed(kindRemoveAssignment)
	return nil
}

// Grades

// SetGrade writes value into the cell. With grade sequencing enabled, a call overtaken by a newer
// write to the same cell leaves the cache alone and returns ErrSuperseded.
func (ctrl *Controller) SetGrade(ctx context.Context, studentID, assignmentID int, value string) (Grade, error) {
	sg := SetGrade{Value: value}
	if err := sg.Validate(ctrl.v); err != nil {
		return Grade{}, ctrl.invalid(kindSetGrade, err)
	}
	if _, err := ctrl.liveStudent(studentID); err != nil {
		return Grade{}, ctrl.invalid(kindSetGrade, err)
	}
	if _, err := ctrl.liveAssignment(assignmentID); err != nil {
		return Grade{}, ctrl.invalid(kindSetGrade, err)
	}

	c := cell{studentID: studentID, assignmentID: assignmentID}
	var token uint64
	if ctrl.seq != nil {
		token = ctrl.seq.next(c)
	}

	prev, hadPrev := ctrl.cache.GradeFor(studentID, assignmentID)
	ctrl.cache.SetGrade(studentID, assignmentID, sg.Value)

	done := ctrl.metrics.start()
	g, err := ctrl.gw.SetGrade(ctx, ctrl.classID, studentID, assignmentID, sg)
	done()

	if ctrl.seq != nil && !ctrl.seq.current(c, token) {
		ctrl.metrics.observe(kindSetGrade, outcomeStale)
		ctrl.log.Debug("stale grade response discarded", core.Fields{
			"student": studentID, "assignment": assignmentID, "token": token, "failed": err != nil,
		})
		return Grade{}, ErrSuperseded
	}

	if err != nil {
		if hadPrev {
			ctrl.cache.PutGrade(prev)
		} else {
			ctrl.cache.ClearGrade(studentID, assignmentID)
		}
		ctrl.fail(kindSetGrade, err, core.Fields{"student": studentID, "assignment": assignmentID})
		return Grade{}, err
	}

	g.StudentID = studentID
	g.AssignmentID = assignmentID
	if g.ID != 0 {
		ctrl.cache.PutGrade(g)
	} else {
		g = ctrl.cache.SetGrade(studentID, assignmentID, g.Value)
	}
	ctrl.succeed(kindSetGrade)
	return g, nil
}
