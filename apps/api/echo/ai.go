package echoapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

// The assistant here is deterministic, it only summarises what it is sent.

type (
	ReportRequest struct {
		Text string `json:"text" validate:"notblank"`
	}

	ReportResponse struct {
		Report string `json:"report"`
	}

	ChatRequest struct {
		DocumentText string                  `json:"document_text"`
		Query        string                  `json:"query" validate:"notblank"`
		History      []gradebook.ChatMessage `json:"history"`
	}

	ChatResponse struct {
		Message string `json:"message"`
	}

	// classDocument is the shape of the class text sent by the client.
	classDocument struct {
		Name     string `json:"name"`
		Students []struct {
			FullName string            `json:"full_name"`
			Grades   []gradebook.Grade `json:"grades"`
		} `json:"students"`
		Assignments []struct {
			Title string `json:"title"`
		} `json:"assignments"`
	}
)

type aiApi struct {
	v *core.Validator
}

func registerAIAPI(g *echo.Group, jwt echo.MiddlewareFunc, v *core.Validator) {
	api := aiApi{v: v}

	ag := g.Group("/ai", jwt)
	ag.POST("/generate-report", api.generateReport)
	ag.POST("/chat", api.chat)
}

func (api *aiApi) generateReport(ctx echo.Context) error {
	var data ReportRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportRequest")
	}
	if err := api.v.Struct(&data); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, ReportResponse{Report: summarize(data.Text)})
}

func (api *aiApi) chat(ctx echo.Context) error {
	var data ChatRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ChatRequest")
	}
	if err := api.v.Struct(&data); err != nil {
		return err
	}

	msg := fmt.Sprintf("You asked: %q.", strings.TrimSpace(data.Query))
	if data.DocumentText != "" {
		msg += " " + summarize(data.DocumentText)
	}
	if n := len(data.History); n > 0 {
		msg += fmt.Sprintf(" We have exchanged %d messages so far.", n)
	}
	return ctx.JSON(http.StatusOK, ChatResponse{Message: msg})
}

// summarize describes a class document; text that is not one is only measured.
func summarize(text string) string {
	var doc classDocument
	if err := json.Unmarshal([]byte(text), &doc); err != nil || doc.Name == "" {
		return fmt.Sprintf("The document has %d characters.", len([]rune(text)))
	}

	var graded, numeric int
	var sum float64
	for _, s := range doc.Students {
		for _, g := range s.Grades {
			if g.Value == "" {
				continue
			}
			graded++
			if f, err := strconv.ParseFloat(strings.ReplaceAll(g.Value, ",", "."), 64); err == nil {
				numeric++
				sum += f
			}
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Class %s has %d students and %d assignments, %d grades recorded.",
		doc.Name, len(doc.Students), len(doc.Assignments), graded)
	if numeric > 0 {
		fmt.Fprintf(&b, " Average numeric grade: %.2f.", sum/float64(numeric))
	}
	return b.String()
}

// describeFile measures an uploaded file; a class document inside it is summarised.
func describeFile(name, text string) string {
	lines := 0
	if text != "" {
		lines = strings.Count(strings.TrimRight(text, "\n"), "\n") + 1
	}
	msg := fmt.Sprintf("File %s has %d lines and %d words.", name, lines, len(strings.Fields(text)))
	if s := summarize(text); strings.HasPrefix(s, "Class ") {
		msg += " " + s
	}
	return msg
}
