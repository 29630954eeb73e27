package gradebook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
)

const (
	reportFallback = "report generated"
	chatApology    = "sorry, I could not answer that. please try again"
)

var errNoAssistant = errors.New("assistant is not configured")

type (
	reportStudent struct {
		ID       int     `json:"id"`
		FullName string  `json:"full_name"`
		Grades   []Grade `json:"grades"`
	}
	reportAssignment struct {
		ID    int    `json:"id"`
		Title string `json:"title"`
	}
	reportClass struct {
		Name        string             `json:"name"`
		Students    []reportStudent    `json:"students"`
		Assignments []reportAssignment `json:"assignments"`
	}
)

// ClassDocument renders the cached class as the JSON text the assistant reads.
func (ctrl *Controller) ClassDocument() (string, error) {
	cr := ctrl.cache.ClassRoom()
	doc := reportClass{
		Name:        cr.Name,
		Students:    make([]reportStudent, 0, len(cr.Students)),
		Assignments: make([]reportAssignment, 0, len(cr.Assignments)),
	}
	for _, s := range cr.Students {
		doc.Students = append(doc.Students, reportStudent{ID: s.ID, FullName: s.FullName, Grades: s.Grades})
	}
	for _, a := range cr.Assignments {
		doc.Assignments = append(doc.Assignments, reportAssignment{ID: a.ID, Title: a.Title})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshalling class document")
	}
	return string(data), nil
}

// GenerateReport asks the assistant for a report on the cached class.
func (ctrl *Controller) GenerateReport(ctx context.Context) (string, error) {
	if ctrl.ai == nil {
		return "", errNoAssistant
	}
	text, err := ctrl.ClassDocument()
	if err != nil {
		return "", err
	}
	report, err := ctrl.ai.GenerateReport(ctx, text)
	if err != nil {
		ctrl.fail(kindReport, err, nil)
		return "", err
	}
	if strings.TrimSpace(report) == "" {
		report = reportFallback
	}
	return report, nil
}

// Ask sends query about the cached class with the chat history so far.
func (ctrl *Controller) Ask(ctx context.Context, query string) (string, error) {
	text, err := ctrl.ClassDocument()
	if err != nil {
		return "", err
	}
	answer, err := ctrl.chat.Ask(ctx, text, query)
	if err != nil {
		if !core.IsValidation(err) && err != errNoAssistant {
			ctrl.fail(kindChat, err, nil)
		}
		return "", err
	}
	return answer, nil
}

func (ctrl *Controller) History() []ChatMessage {
	return ctrl.chat.History()
}
