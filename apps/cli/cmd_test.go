package main

import (
	"bytes"
	"errors"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	echoapi "github.com/bobur6/professor-ai-helper/apps/api/echo"
	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
	"github.com/bobur6/professor-ai-helper/core/user"
	inmemdb "github.com/bobur6/professor-ai-helper/storage/database/inmem"
	testutil "github.com/bobur6/professor-ai-helper/tests"
)

type fixture struct {
	conf      *core.Config
	token     string
	class     gradebook.ClassRoom
	classRepo classes.Repository
}

func setup(t *testing.T) fixture {
	t.Helper()
	db := inmemdb.Open()
	usr, cr, err := inmemdb.SeedDemo(db)
	require.NoError(t, err)

	conf := testutil.TestConfig()
	app := echoapi.NewServer(&echoapi.Deps{
		Conf:     conf,
		UserSvc:  user.NewService(inmemdb.NewUserRepository(db)),
		ClassSvc: classes.NewService(inmemdb.NewClassRepository(db)),
		DocSvc:   documents.NewService(inmemdb.NewDocumentRepository(db), core.NewValidator()),
	})
	srv := httptest.NewServer(app)
	t.Cleanup(srv.Close)

	token, err := app.GenerateToken(usr)
	require.NoError(t, err)

	conf.API.BaseURL = srv.URL + "/api/v1"
	return fixture{conf: conf, token: token, class: cr, classRepo: inmemdb.NewClassRepository(db)}
}

type cliTest struct {
	name       string
	args       []string // without program name
	stdin      string
	wantErr    error
	wantErrStr string
	wantOut    []string
}

func runCLITests(t *testing.T, f fixture, tests []cliTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			cli := commandLine{conf: f.conf, in: strings.NewReader(tt.stdin), out: &out, errOut: &out}
			err := cli.run(append([]string{"gradebook"}, tt.args...))

			switch {
			case tt.wantErr != nil:
				assert.True(t, errors.Is(err, tt.wantErr), "err = %v; want %v", err, tt.wantErr)
			case tt.wantErrStr != "":
				if assert.Error(t, err) {
					assert.Contains(t, core.UserMessage(err)+" "+err.Error(), tt.wantErrStr)
				}
			default:
				assert.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, out.String(), want)
			}
		})
	}
}

func Test_commandLine_login(t *testing.T) {
	f := setup(t)

	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(inmemdb.DemoPassword), nil }

	var out bytes.Buffer
	cli := commandLine{conf: f.conf, in: strings.NewReader(""), out: &out, errOut: &out}
	require.NoError(t, cli.run([]string{"gradebook", "login", inmemdb.DemoEmail}))
	token := strings.TrimSpace(strings.TrimPrefix(out.String(), "Enter password:"))
	assert.NotEmpty(t, token)
	assert.Equal(t, token, cli.tokens.Token())

	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("wrong"), nil }
	runCLITests(t, f, []cliTest{
		{name: "no email", args: []string{"login"}, wantErrStr: "accepts 1 arg(s)"},
		{name: "wrong password", args: []string{"login", inmemdb.DemoEmail}, wantErrStr: "Incorrect email or password"},
	})
}

func Test_commandLine_read(t *testing.T) {
	f := setup(t)
	class := f.class.ID
	id := strconv.Itoa

	runCLITests(t, f, []cliTest{
		{name: "no subcommand", wantErr: errHelp},
		{name: "no token", args: []string{"classes"}, wantErrStr: core.MsgAuth, wantOut: []string{"gradebook login"}},
		{name: "classes", args: []string{"classes", "--token", f.token}, wantOut: []string{"10А Алгебра"}},
		{name: "bad class id", args: []string{"show", "x", "--token", f.token}, wantErrStr: "class id must be a number (got 'x')"},
		{name: "unknown class", args: []string{"show", "999", "--token", f.token}, wantErr: errReported, wantOut: []string{"error: failed to load class: Class not found"}},
		{name: "bad sort", args: []string{"show", id(class), "--sort", "grade", "--token", f.token}, wantErrStr: `unknown sort key "grade"`},
		{name: "filter", args: []string{"show", id(class), "--filter", "Сидорва", "--token", f.token}, wantOut: []string{"Сидорова Анна"}},
	})

	t.Run("sorted", func(t *testing.T) {
		for _, tc := range []struct {
			args []string
			want []string
		}{
			{[]string{}, []string{"Иванов Иван", "Петров Пётр", "Сидорова Анна"}},
			{[]string{"--desc"}, []string{"Сидорова Анна", "Петров Пётр", "Иванов Иван"}},
			{[]string{"--sort", "id"}, []string{"Петров Пётр", "Иванов Иван", "Сидорова Анна"}},
		} {
			var out bytes.Buffer
			cli := commandLine{conf: f.conf, in: strings.NewReader(""), out: &out, errOut: &out}
			args := append([]string{"gradebook", "show", id(class), "--token", f.token}, tc.args...)
			require.NoError(t, cli.run(args))

			got := out.String()
			last := -1
			for _, name := range tc.want {
				idx := strings.Index(got, name)
				require.Greater(t, idx, last, "%v: %s before the previous name", tc.args, name)
				last = idx
			}
		}
	})
}

func Test_commandLine_write(t *testing.T) {
	f := setup(t)
	class := strconv.Itoa(f.class.ID)
	student := strconv.Itoa(f.class.Students[0].ID)
	assignment := strconv.Itoa(f.class.Assignments[2].ID)
	tok := []string{"--token", f.token}

	runCLITests(t, f, []cliTest{
		{name: "add student", args: append([]string{"add-student", class, "Кузнецов", "Олег"}, tok...), wantOut: []string{"ok: student added", "Кузнецов Олег"}},
		{name: "blank student", args: append([]string{"add-student", class, " "}, tok...), wantErrStr: "this field cannot be blank"},
		{name: "rename student", args: append([]string{"rename-student", class, student, "Петров", "П."}, tok...), wantOut: []string{"ok: student updated"}},
		{name: "unknown student", args: append([]string{"rename-student", class, "999", "X"}, tok...), wantErrStr: "student not found"},
		{name: "grade", args: append([]string{"grade", class, student, assignment, "5"}, tok...), wantOut: []string{"ok: grade saved"}},
		{name: "add assignment", args: append([]string{"add-assignment", class, "Проект", "--description", "весна"}, tok...), wantOut: []string{"ok: assignment added"}},
		{name: "rename assignment", args: append([]string{"rename-assignment", class, assignment, "Эссе 2"}, tok...), wantOut: []string{"ok: assignment updated"}},
	})

	cr, err := f.classRepo.GetClassRoom(f.class.ID)
	require.NoError(t, err)
	require.Len(t, cr.Students, 4)
	assert.Equal(t, "Петров П.", cr.Students[0].FullName)
	g, ok := cr.Students[0].GradeFor(f.class.Assignments[2].ID)
	assert.True(t, ok)
	assert.Equal(t, "5", g.Value)
	assert.Equal(t, "Эссе 2", cr.Assignments[2].Title)

	runCLITests(t, f, []cliTest{
		{name: "remove assignment", args: append([]string{"rm-assignment", class, assignment}, tok...), wantOut: []string{"ok: assignment removed"}},
		{name: "remove student", args: append([]string{"rm-student", class, student}, tok...), wantOut: []string{"ok: student removed"}},
		{name: "remove student twice", args: append([]string{"rm-student", class, student}, tok...), wantErrStr: "student not found"},
	})

	cr, err = f.classRepo.GetClassRoom(f.class.ID)
	require.NoError(t, err)
	assert.Len(t, cr.Students, 3)
	assert.Len(t, cr.Assignments, 3)
}

func Test_commandLine_assistant(t *testing.T) {
	f := setup(t)
	class := strconv.Itoa(f.class.ID)
	tok := []string{"--token", f.token}

	runCLITests(t, f, []cliTest{
		{name: "report", args: append([]string{"report", class}, tok...), wantOut: []string{"Class 10А Алгебра has 3 students and 3 assignments"}},
		{name: "ask once", args: append([]string{"ask", class, "кто", "лучший?"}, tok...), wantOut: []string{`You asked: "кто лучший?".`}},
		{
			name: "conversation", args: append([]string{"ask", class}, tok...), stdin: "first\n\nsecond\n",
			wantOut: []string{`You asked: "first".`, `You asked: "second". ` + "Class 10А", "We have exchanged 2 messages so far."},
		},
	})
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func Test_commandLine_register(t *testing.T) {
	f := setup(t)

	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte("pa55word"), nil }

	runCLITests(t, f, []cliTest{
		{name: "new account", args: []string{"register", "New@School.ru"}, wantOut: []string{"registered new@school.ru", "gradebook login new@school.ru"}},
		{name: "taken", args: []string{"register", inmemdb.DemoEmail}, wantErrStr: "Email already registered"},
		{name: "bad email", args: []string{"register", "nobody"}, wantErrStr: "email"},
	})
}

func Test_commandLine_files(t *testing.T) {
	f := setup(t)
	class := strconv.Itoa(f.class.ID)
	tok := []string{"--token", f.token}
	notes := writeFile(t, "notes.txt", "Иванов молодец\nПетров старается\n")
	sheet := writeFile(t, "journal.csv", "ФИО,Эссе,Проект\nИванов Иван,5,5\nКузнецов Олег,,4\n")
	table := writeFile(t, "journal.xlsx", "PK")

	runCLITests(t, f, []cliTest{
		{name: "file report", args: append([]string{"file-report", class, notes}, tok...), wantOut: []string{"File notes.txt has 2 lines and 4 words."}},
		{name: "file report of a table", args: append([]string{"file-report", class, table}, tok...), wantErrStr: "unsupported file format"},
		{name: "missing file", args: append([]string{"file-report", class, filepath.Join(t.TempDir(), "none.txt")}, tok...), wantErrStr: "no such file"},
		{name: "import", args: append([]string{"import", class, sheet}, tok...), wantOut: []string{"ok: data imported", "1 students, 1 assignments, 3 grades"}},
		{name: "import of a table", args: append([]string{"import", class, table}, tok...), wantErrStr: "unsupported file format"},
	})

	cr, err := f.classRepo.GetClassRoom(f.class.ID)
	require.NoError(t, err)
	assert.Len(t, cr.Students, 4)
	assert.Len(t, cr.Assignments, 4)
}

func Test_commandLine_documents(t *testing.T) {
	f := setup(t)
	tok := []string{"--token", f.token}
	plan := writeFile(t, "plan.txt", "Тема урока: дроби")

	runCLITests(t, f, []cliTest{
		{name: "upload", args: append([]string{"upload", plan}, tok...), wantOut: []string{"1\tplan.txt"}},
		{name: "upload image", args: append([]string{"upload", writeFile(t, "photo.png", "png")}, tok...), wantErrStr: "File type not supported"},
		{name: "list", args: append([]string{"docs"}, tok...), wantOut: []string{"plan.txt", "text/plain"}},
		{name: "show", args: append([]string{"doc", "1"}, tok...), wantOut: []string{"plan.txt (#1)", "Тема урока: дроби"}},
		{name: "ask once", args: append([]string{"doc-ask", "1", "о", "чём?"}, tok...), wantOut: []string{`You asked: "о чём?".`}},
		{
			name: "conversation", args: append([]string{"doc-ask", "1"}, tok...), stdin: "first\nsecond\n",
			wantOut: []string{`You asked: "first".`, `You asked: "second".`, "We have exchanged 2 messages so far."},
		},
		{name: "delete", args: append([]string{"rm-doc", "1"}, tok...), wantOut: []string{"ok: document deleted"}},
		{name: "deleted", args: append([]string{"doc", "1"}, tok...), wantErrStr: documents.ErrNotFound.Error()},
		{name: "ask deleted", args: append([]string{"doc-ask", "1", "?"}, tok...), wantErrStr: documents.ErrNotFound.Error()},
	})
}
