package classes

import (
	"encoding/csv"
	"io"

	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

var errEmptyImport = errors.New("the file has no gradebook header")

// ImportCSV merges a gradebook table into the class. The first row holds a name column
// followed by assignment titles; every other row is a student and their grades.
// Students and assignments are matched by name, missing ones are created and non-empty
// cells overwrite grades.
func (svc *Service) ImportCSV(userID, classID int, r io.Reader) (gradebook.ImportCounts, error) {
	var counts gradebook.ImportCounts

	cr, err := svc.GetClassRoom(userID, classID)
	if err != nil {
		return counts, err
	}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		msg := "invalid CSV: " + err.Error()
		return counts, core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
	}
	if len(records) == 0 || len(records[0]) < 2 {
		return counts, core.NewValidationError(errEmptyImport, core.FieldError{Field: "file", Error: errEmptyImport.Error()})
	}

	assignments := make(map[string]int, len(cr.Assignments))
	for _, a := range cr.Assignments {
		assignments[a.Title] = a.ID
	}
	students := make(map[string]int, len(cr.Students))
	for _, s := range cr.Students {
		students[s.FullName] = s.ID
	}

	columns := make([]int, len(records[0])) // assignment id per column, 0 when blank
	for i, title := range records[0][1:] {
		title = core.CleanString(title)
		if title == "" {
			continue
		}
		id, ok := assignments[title]
		if !ok {
			a, err := svc.AddAssignment(userID, classID, gradebook.NewAssignment{Title: title})
			if err != nil {
				return counts, errors.Wrapf(err, "creating assignment %q", title)
			}
			id = a.ID
			assignments[title] = id
			counts.Assignments++
		}
		columns[i+1] = id
	}

	for _, row := range records[1:] {
		name := core.CleanString(row[0])
		if name == "" {
			continue
		}
		sid, ok := students[name]
		if !ok {
			s, err := svc.AddStudent(userID, classID, gradebook.NewStudent{FullName: name})
			if err != nil {
				return counts, errors.Wrapf(err, "creating student %q", name)
			}
			sid = s.ID
			students[name] = sid
			counts.Students++
		}
		for j := 1; j < len(row) && j < len(columns); j++ {
			value := core.CleanString(row[j])
			if columns[j] == 0 || value == "" {
				continue
			}
			if _, err := svc.SetGrade(userID, classID, sid, columns[j], gradebook.SetGrade{Value: value}); err != nil {
				return counts, errors.Wrap(err, "saving imported grade")
			}
			counts.Grades++
		}
	}
	return counts, nil
}
