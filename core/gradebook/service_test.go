package gradebook

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobur6/professor-ai-helper/core"
)

var testValidator = core.NewValidator()

type testController struct {
	*Controller
	gw      *fakeGateway
	notify  *recordingNotifier
	metrics *Metrics
}

func newTestController(t *testing.T, opts ...func(*Deps)) testController {
	t.Helper()
	gw := newFakeGateway(sampleClass())
	n := &recordingNotifier{}
	m := NewMetrics(prometheus.NewRegistry())
	deps := Deps{Gateway: gw, Validator: testValidator, Notifier: n, Metrics: m}
	for _, opt := range opts {
		opt(&deps)
	}
	ctrl := NewController(1, deps)
	require.NoError(t, ctrl.Load(context.Background()))
	return testController{Controller: ctrl, gw: gw, notify: n, metrics: m}
}

func (tc testController) mutationCount(kind, outcome string) float64 {
	return promtest.ToFloat64(tc.metrics.mutations.WithLabelValues(kind, outcome))
}

var errNetwork = core.NewNetworkError(errors.New("connection refused"))

func TestController_Load(t *testing.T) {
	tc := newTestController(t)
	assert.Len(t, tc.Cache().Students(), 2)
	assert.Equal(t, "10A", tc.Cache().ClassRoom().Name)

	tc.gw.setErr(&core.ServerError{Status: 404, Detail: "Class not found"})
	err := tc.Load(context.Background())
	require.Error(t, err)
	assert.Len(t, tc.Cache().Students(), 2, "failed reload keeps the cache")
	assert.Equal(t, []string{"failed to load class: Class not found"}, tc.notify.errors)
}

func TestController_AddStudent(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	s, err := tc.AddStudent(ctx, NewStudent{FullName: "  Сидоров Сидор "})
	require.NoError(t, err)
	assert.Equal(t, 101, s.ID)
	assert.Equal(t, "Сидоров Сидор", s.FullName)
	assert.Equal(t, []int{1, 2, 101}, studentIDs(tc.Cache().Students()))
	assert.Equal(t, []string{"student added"}, tc.notify.successes)
	assert.Equal(t, 1.0, tc.mutationCount(kindAddStudent, outcomeSuccess))
}

func TestController_AddStudent_failure(t *testing.T) {
	tc := newTestController(t)
	tc.gw.setErr(errNetwork)

	_, err := tc.AddStudent(context.Background(), NewStudent{FullName: "Сидоров"})
	require.Error(t, err)
	assert.True(t, core.IsNetwork(err))
	assert.Equal(t, []int{1, 2}, studentIDs(tc.Cache().Students()))
	require.Len(t, tc.notify.errors, 1)
	assert.Equal(t, "failed to add student: "+core.MsgNetwork, tc.notify.errors[0])
	assert.Equal(t, 1.0, tc.mutationCount(kindAddStudent, outcomeRollback))
}

func TestController_validation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		kind  string
		apply func(ctrl *Controller) error
	}{
		{name: "blank student", kind: kindAddStudent, apply: func(ctrl *Controller) error {
			_, err := ctrl.AddStudent(ctx, NewStudent{FullName: "   "})
			return err
		}},
		{name: "too long student", kind: kindAddStudent, apply: func(ctrl *Controller) error {
			_, err := ctrl.AddStudent(ctx, NewStudent{FullName: strings.Repeat("я", 256)})
			return err
		}},
		{name: "blank rename", kind: kindUpdateStudent, apply: func(ctrl *Controller) error {
			_, err := ctrl.UpdateStudent(ctx, 1, UpdateStudent{FullName: ""})
			return err
		}},
		{name: "unknown student", kind: kindUpdateStudent, apply: func(ctrl *Controller) error {
			_, err := ctrl.UpdateStudent(ctx, 42, UpdateStudent{FullName: "x"})
			return err
		}},
		{name: "remove unknown student", kind: kindRemoveStudent, apply: func(ctrl *Controller) error {
			return ctrl.RemoveStudent(ctx, 42)
		}},
		{name: "blank assignment", kind: kindAddAssignment, apply: func(ctrl *Controller) error {
			_, err := ctrl.AddAssignment(ctx, NewAssignment{Title: "\t"})
			return err
		}},
		{name: "rename unknown assignment", kind: kindUpdateAssignment, apply: func(ctrl *Controller) error {
			_, err := ctrl.UpdateAssignment(ctx, 42, UpdateAssignment{Title: "x"})
			return err
		}},
		{name: "remove provisional assignment", kind: kindRemoveAssignment, apply: func(ctrl *Controller) error {
			return ctrl.RemoveAssignment(ctx, -1)
		}},
		{name: "grade unknown assignment", kind: kindSetGrade, apply: func(ctrl *Controller) error {
			_, err := ctrl.SetGrade(ctx, 1, 42, "5")
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestController(t)
			before := tc.Cache().ClassRoom()
			calls := tc.gw.callCount()

			err := tt.apply(tc.Controller)
			require.Error(t, err)
			assert.True(t, core.IsValidation(err), "got %v", err)
			assert.NotEmpty(t, core.UserMessage(err))
			assert.Equal(t, calls, tc.gw.callCount(), "no network call expected")
			assert.Equal(t, before, tc.Cache().ClassRoom())
			successes, failures := tc.notify.counts()
			assert.Zero(t, successes)
			assert.Zero(t, failures)
			assert.Equal(t, 1.0, tc.mutationCount(tt.kind, outcomeInvalid))
		})
	}
}

func TestController_provisionalIDs(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	started := make(chan struct{})
	release := make(chan struct{})
	tc.gw.createStudent = func(ctx context.Context, ns NewStudent) (Student, error) {
		started <- struct{}{}
		<-release
		return Student{ID: 300, FullName: ns.FullName}, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := tc.AddStudent(ctx, NewStudent{FullName: "Новиков"})
		assert.NoError(t, err)
	}()
	<-started

	students := tc.Cache().Students()
	require.Len(t, students, 3)
	tmp := students[2]
	assert.Equal(t, -1, tmp.ID)
	assert.True(t, IsProvisional(tmp.ID))

	_, err := tc.UpdateStudent(ctx, tmp.ID, UpdateStudent{FullName: "x"})
	assert.True(t, core.IsValidation(err))
	_, err = tc.SetGrade(ctx, tmp.ID, 10, "5")
	assert.True(t, core.IsValidation(err))

	close(release)
	wg.Wait()
	assert.Equal(t, []int{1, 2, 300}, studentIDs(tc.Cache().Students()))

	// provisional IDs keep decreasing
	tc.gw.createStudent = nil
	tc.gw.setErr(errNetwork)
	assert.Equal(t, -2, tc.nextProvisionalID())
	_, _ = tc.AddAssignment(ctx, NewAssignment{Title: "x"})
	assert.Equal(t, -4, tc.nextProvisionalID())
}

func TestController_UpdateStudent(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	s, err := tc.UpdateStudent(ctx, 1, UpdateStudent{FullName: "Иванов И. И."})
	require.NoError(t, err)
	assert.Equal(t, "Иванов И. И.", s.FullName)
	assert.Len(t, s.Grades, 2)

	tc.gw.setErr(&core.ServerError{Status: 422, Detail: "Name is taken"})
	_, err = tc.UpdateStudent(ctx, 1, UpdateStudent{FullName: "Другой"})
	require.Error(t, err)
	got, _ := tc.Cache().Student(1)
	assert.Equal(t, "Иванов И. И.", got.FullName)
	assert.Equal(t, []string{"failed to update student: Name is taken"}, tc.notify.errors)
}

func TestController_RemoveStudent(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	require.NoError(t, tc.RemoveStudent(ctx, 1))
	students := tc.Cache().Students()
	assert.Len(t, students, 1)
	for _, s := range students {
		for _, g := range s.Grades {
			assert.NotEqual(t, 1, g.StudentID)
		}
	}
	assert.Equal(t, 1, tc.Cache().CountGrades(10))
}

func TestController_RemoveStudent_failure(t *testing.T) {
	tc := newTestController(t)
	tc.gw.setErr(&core.ServerError{Status: 500})
	before := tc.Cache().ClassRoom()

	err := tc.RemoveStudent(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, before, tc.Cache().ClassRoom())
	assert.Equal(t, []string{"failed to remove student: " + core.MsgGeneric}, tc.notify.errors)
}

func TestController_concurrentRemoves(t *testing.T) {
	tests := []struct {
		name   string
		hook   func(tc testController, fn func(context.Context, int) error)
		remove func(tc testController) error
	}{
		{
			name:   "student",
			hook:   func(tc testController, fn func(context.Context, int) error) { tc.gw.deleteStudent = fn },
			remove: func(tc testController) error { return tc.RemoveStudent(context.Background(), 1) },
		},
		{
			name:   "assignment",
			hook:   func(tc testController, fn func(context.Context, int) error) { tc.gw.deleteAssign = fn },
			remove: func(tc testController) error { return tc.RemoveAssignment(context.Background(), 10) },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestController(t)
			before := tc.Cache().ClassRoom()

			started := make(chan struct{}, 1)
			release := make(chan struct{})
			tt.hook(tc, func(context.Context, int) error {
				started <- struct{}{}
				<-release
				return errNetwork
			})

			var (
				wg    sync.WaitGroup
				first error
			)
			wg.Add(1)
			go func() {
				defer wg.Done()
				first = tt.remove(tc)
			}()
			<-started

			second := tt.remove(tc)
			close(release)
			wg.Wait()

			assert.ErrorIs(t, first, errNetwork)
			assert.True(t, core.IsValidation(second), "err = %v; want a validation error", second)
			assert.Equal(t, 2, tc.gw.callCount(), "load and a single delete")
			assert.Len(t, tc.notify.errors, 1)
			assert.Equal(t, before, tc.Cache().ClassRoom())
			_, found := tc.Cache().Student(0)
			assert.False(t, found)
			_, found = tc.Cache().Assignment(0)
			assert.False(t, found)
		})
	}
}

func TestController_Assignments(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	a, err := tc.AddAssignment(ctx, NewAssignment{Title: "Диктант"})
	require.NoError(t, err)
	assert.Equal(t, 101, a.ID)
	assert.Equal(t, 1, a.ClassID)

	a, err = tc.UpdateAssignment(ctx, a.ID, UpdateAssignment{Title: "Диктант 2"})
	require.NoError(t, err)
	assert.Equal(t, "Диктант 2", a.Title)

	require.NoError(t, tc.RemoveAssignment(ctx, 10))
	assert.Equal(t, 0, tc.Cache().CountGrades(10))
	_, ok := tc.Cache().Assignment(10)
	assert.False(t, ok)

	assert.Equal(t, []string{"assignment added", "assignment updated", "assignment removed"}, tc.notify.successes)
}

func TestController_Assignments_failure(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()
	tc.gw.setErr(errNetwork)
	before := tc.Cache().ClassRoom()

	_, err := tc.AddAssignment(ctx, NewAssignment{Title: "Диктант"})
	require.Error(t, err)
	_, err = tc.UpdateAssignment(ctx, 11, UpdateAssignment{Title: "Сочинение"})
	require.Error(t, err)
	err = tc.RemoveAssignment(ctx, 10)
	require.Error(t, err)

	assert.Equal(t, before, tc.Cache().ClassRoom())
	assert.Equal(t, 2, tc.Cache().CountGrades(10))
	assert.Len(t, tc.notify.errors, 3)
}

func TestController_SetGrade(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	g, err := tc.SetGrade(ctx, 2, 11, " 4 ")
	require.NoError(t, err)
	assert.Equal(t, "4", g.Value)

	g, err = tc.SetGrade(ctx, 2, 11, "5")
	require.NoError(t, err)
	assert.Equal(t, "5", g.Value)

	s, _ := tc.Cache().Student(2)
	var n int
	for _, g := range s.Grades {
		if g.AssignmentID == 11 {
			n++
			assert.Equal(t, "5", g.Value)
		}
	}
	assert.Equal(t, 1, n)
	assert.Equal(t, 2.0, tc.mutationCount(kindSetGrade, outcomeSuccess))
}

func TestController_SetGrade_freeForm(t *testing.T) {
	tc := newTestController(t)
	value := "отлично, но " + strings.Repeat("есть замечания по оформлению ", 4)

	g, err := tc.SetGrade(context.Background(), 1, 10, value)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(value), g.Value)
	assert.Equal(t, strings.TrimSpace(value), tc.Cache().Grade(1, 10))
}

func TestController_SetGrade_serverEcho(t *testing.T) {
	tc := newTestController(t)
	tc.gw.setGrade = func(_ context.Context, _, _ int, sg SetGrade) (Grade, error) {
		return Grade{ID: 777, Value: strings.ToUpper(sg.Value)}, nil
	}

	g, err := tc.SetGrade(context.Background(), 2, 11, "a")
	require.NoError(t, err)
	assert.Equal(t, Grade{ID: 777, StudentID: 2, AssignmentID: 11, Value: "A"}, g)
	got, _ := tc.Cache().GradeFor(2, 11)
	assert.Equal(t, g, got)
}

func TestController_SetGrade_failure(t *testing.T) {
	tests := []struct {
		name         string
		studentID    int
		assignmentID int
		want         string
		wantFound    bool
	}{
		{name: "new cell cleared", studentID: 1, assignmentID: 10, want: "", wantFound: false},
		{name: "previous restored", studentID: 1, assignmentID: 11, want: "4", wantFound: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tc := newTestController(t, func(d *Deps) {
				gw := newFakeGateway(ClassRoom{
					ID:          1,
					Assignments: []Assignment{{ID: 10}, {ID: 11}},
					Students:    []Student{{ID: 1, Grades: []Grade{{ID: 9, AssignmentID: 11, Value: "4"}}}},
				})
				d.Gateway = gw
			})
			tc.gw = tc.Controller.gw.(*fakeGateway)
			tc.gw.setErr(errNetwork)

			_, err := tc.SetGrade(context.Background(), tt.studentID, tt.assignmentID, "5")
			require.Error(t, err)
			assert.Equal(t, tt.want, tc.Cache().Grade(tt.studentID, tt.assignmentID))
			_, found := tc.Cache().GradeFor(tt.studentID, tt.assignmentID)
			assert.Equal(t, tt.wantFound, found)
			assert.Equal(t, []string{"failed to save grade: " + core.MsgNetwork}, tc.notify.errors)
		})
	}
}

// overlappingGrades issues "4" then "5" to the same cell and resolves "5" first.
func overlappingGrades(t *testing.T, tc testController, failFirst bool) (first, second error) {
	t.Helper()
	started := make(chan string, 2)
	release := map[string]chan struct{}{"4": make(chan struct{}), "5": make(chan struct{})}
	tc.gw.setGrade = func(_ context.Context, _, _ int, sg SetGrade) (Grade, error) {
		started <- sg.Value
		<-release[sg.Value]
		if failFirst && sg.Value == "4" {
			return Grade{}, errNetwork
		}
		return Grade{Value: sg.Value}, nil
	}

	ctx := context.Background()
	var firstDone, secondDone sync.WaitGroup
	firstDone.Add(1)
	go func() {
		defer firstDone.Done()
		_, first = tc.SetGrade(ctx, 2, 11, "4")
	}()
	require.Equal(t, "4", <-started)

	secondDone.Add(1)
	go func() {
		defer secondDone.Done()
		_, second = tc.SetGrade(ctx, 2, 11, "5")
	}()
	require.Equal(t, "5", <-started)

	close(release["5"])
	secondDone.Wait()
	close(release["4"])
	firstDone.Wait()
	return first, second
}

func TestController_SetGrade_lastResponseWins(t *testing.T) {
	tc := newTestController(t)

	first, second := overlappingGrades(t, tc, false)
	assert.NoError(t, first)
	assert.NoError(t, second)
	assert.Equal(t, "4", tc.Cache().Grade(2, 11))
}

func TestController_SetGrade_sequenced(t *testing.T) {
	tc := newTestController(t, func(d *Deps) { d.SequenceGrades = true })

	first, second := overlappingGrades(t, tc, false)
	assert.ErrorIs(t, first, ErrSuperseded)
	assert.NoError(t, second)
	assert.Equal(t, "5", tc.Cache().Grade(2, 11))
	assert.Equal(t, 1.0, tc.mutationCount(kindSetGrade, outcomeStale))
}

func TestController_SetGrade_sequencedStaleFailure(t *testing.T) {
	tc := newTestController(t, func(d *Deps) { d.SequenceGrades = true })

	first, second := overlappingGrades(t, tc, true)
	assert.ErrorIs(t, first, ErrSuperseded)
	assert.NoError(t, second)
	assert.Equal(t, "5", tc.Cache().Grade(2, 11), "stale failure must not roll back")
	_, failures := tc.notify.counts()
	assert.Zero(t, failures)
}

func TestController_concurrentAdds(t *testing.T) {
	tc := newTestController(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := tc.AddStudent(ctx, NewStudent{FullName: "Ученик"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	ids := studentIDs(tc.Cache().Students())
	assert.Len(t, ids, 22)
	seen := make(map[int]bool)
	for _, id := range ids {
		assert.False(t, seen[id], "duplicate student %d", id)
		assert.False(t, IsProvisional(id))
		seen[id] = true
	}
}

func TestController_Projection(t *testing.T) {
	tc := newTestController(t, func(d *Deps) { d.Locale = "ru" })
	p := tc.Projection(DefaultSort().Toggle())
	assert.Equal(t, []string{"Петров Пётр", "Иванов Иван"}, names(p.Collect()))
}

func TestNewMetrics_nil(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.observe(kindSetGrade, outcomeSuccess)
		m.start()()
	})
}
