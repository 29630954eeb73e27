package gradebook

import (
	"context"
	"io"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
)

const fileReportFallback = "could not generate a report from the file, check its format and content"

var (
	// ReportFileTypes are the extensions the assistant can read a report from.
	ReportFileTypes = []string{".csv", ".txt", ".md"}
	// ImportFileTypes are the extensions a gradebook can be imported from.
	ImportFileTypes = []string{".csv"}

	errNoFiles = errors.New("file processing is not configured")
)

func checkFileType(fileName string, allowed []string) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	for _, a := range allowed {
		if ext == a {
			return nil
		}
	}
	msg := "unsupported file format, use one of " + strings.Join(allowed, ", ")
	return core.NewValidationError(errors.New(msg), core.FieldError{Field: "file", Error: msg})
}

// FileReport asks the assistant for a report on an uploaded file of the class.
func (ctrl *Controller) FileReport(ctx context.Context, fileName string, content io.Reader) (string, error) {
	if err := checkFileType(fileName, ReportFileTypes); err != nil {
		return "", err
	}
	if ctrl.files == nil {
		return "", errNoFiles
	}
	fr, err := ctrl.files.FileReport(ctx, ctrl.classID, filepath.Base(fileName), content)
	if err != nil {
		ctrl.fail(kindFileReport, err, core.Fields{"file": fileName})
		return "", err
	}
	if strings.TrimSpace(fr.Report) == "" {
		return fileReportFallback, nil
	}
	return fr.Report, nil
}

// ImportFile adds the students, assignments and grades of a gradebook file to the class
// and reloads the cache. Nothing is applied locally before the server answers.
func (ctrl *Controller) ImportFile(ctx context.Context, fileName string, content io.Reader) (ImportResult, error) {
	if err := checkFileType(fileName, ImportFileTypes); err != nil {
		return ImportResult{}, ctrl.invalid(kindImport, err)
	}
	if ctrl.files == nil {
		return ImportResult{}, errNoFiles
	}

	done := ctrl.metrics.start()
	res, err := ctrl.files.ImportClassData(ctx, ctrl.classID, filepath.Base(fileName), content)
	done()
	if err != nil {
		ctrl.fail(kindImport, err, core.Fields{"file": fileName})
		return ImportResult{}, err
	}

	ctrl.succeed(kindImport)
	if err = ctrl.Load(ctx); err != nil {
		return res, err
	}
	return res, nil
}
