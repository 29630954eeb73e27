package echoapi

import (
	"bytes"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

type classApi struct {
	svc *classes.Service
	v   *core.Validator
}

func registerClassAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *classes.Service, v *core.Validator) {
	api := classApi{svc: svc, v: v}

	cg := g.Group("/classes", jwt)
	cg.GET("", api.queryClasses)
	cg.POST("", api.createClass)
	cg.GET("/:id", api.retrieveClass)
	cg.PUT("/:id", api.updateClass)
	cg.DELETE("/:id", api.destroyClass)

	cg.POST("/:id/students", api.createStudent)
	cg.PUT("/:id/students/:sid", api.updateStudent)
	cg.DELETE("/:id/students/:sid", api.destroyStudent)
	cg.POST("/:id/students/:sid/assignments/:aid/grade", api.setGrade)

	cg.POST("/:id/assignments", api.createAssignment)
	cg.PUT("/:id/assignments/:aid", api.updateAssignment)
	cg.DELETE("/:id/assignments/:aid", api.destroyAssignment)

	cg.POST("/:id/file-report", api.fileReport, middleware.BodyLimit(uploadLimit))
	cg.POST("/:id/import-data", api.importData, middleware.BodyLimit(uploadLimit))
}

// pathIDs reads the authenticated user and the named integer path params.
func pathIDs(ctx echo.Context, names ...string) (int, []int, error) {
	uid, err := getContextUserID(ctx)
	if err != nil {
		return 0, nil, err
	}
	ids := make([]int, len(names))
	for i, name := range names {
		id, err := strconv.Atoi(ctx.Param(name))
		if err != nil {
			return 0, nil, errHttpNotFound
		}
		ids[i] = id
	}
	return uid, ids, nil
}

// Classes

func (api *classApi) queryClasses(ctx echo.Context) error {
	uid, _, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	list, err := api.svc.ListClasses(uid)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *classApi) createClass(ctx echo.Context) error {
	uid, _, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	var data gradebook.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	class, err := api.svc.CreateClass(uid, data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *classApi) retrieveClass(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	cr, err := api.svc.GetClassRoom(uid, ids[0])
	if err != nil {
		return errors.Wrap(err, "retrieving class")
	}
	return ctx.JSON(http.StatusOK, cr)
}

func (api *classApi) updateClass(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	var data gradebook.NewClass
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewClass")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	class, err := api.svc.UpdateClass(uid, ids[0], data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *classApi) destroyClass(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	if err = api.svc.DeleteClass(uid, ids[0]); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Students

func (api *classApi) createStudent(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	var data gradebook.NewStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	s, err := api.svc.AddStudent(uid, ids[0], data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *classApi) updateStudent(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id", "sid")
	if err != nil {
		return err
	}
	var data gradebook.UpdateStudent
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	s, err := api.svc.UpdateStudent(uid, ids[0], ids[1], data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *classApi) destroyStudent(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id", "sid")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveStudent(uid, ids[0], ids[1]); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *classApi) setGrade(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id", "sid", "aid")
	if err != nil {
		return err
	}
	var data gradebook.SetGrade
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetGrade")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	g, err := api.svc.SetGrade(uid, ids[0], ids[1], ids[2], data)
	if err != nil {
		return errors.Wrap(err, "setting grade")
	}
	return ctx.JSON(http.StatusOK, g)
}

// Assignments

func (api *classApi) createAssignment(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	var data gradebook.NewAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAssignment")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	a, err := api.svc.AddAssignment(uid, ids[0], data)
	if err != nil {
		return errors.Wrap(err, "creating assignment")
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *classApi) updateAssignment(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id", "aid")
	if err != nil {
		return err
	}
	var data gradebook.UpdateAssignment
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAssignment")
	}
	if err = data.Validate(api.v); err != nil {
		return err
	}
	a, err := api.svc.UpdateAssignment(uid, ids[0], ids[1], data)
	if err != nil {
		return errors.Wrap(err, "updating assignment")
	}
	return ctx.JSON(http.StatusOK, a)
}

func (api *classApi) destroyAssignment(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id", "aid")
	if err != nil {
		return err
	}
	if err = api.svc.RemoveAssignment(uid, ids[0], ids[1]); err != nil {
		return errors.Wrap(err, "deleting assignment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// Files

func (api *classApi) fileReport(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetClassRoom(uid, ids[0]); err != nil {
		return errors.Wrap(err, "retrieving class")
	}
	name, _, data, err := readUpload(ctx)
	if err != nil {
		return err
	}
	ext := strings.ToLower(filepath.Ext(name))
	if !contains(gradebook.ReportFileTypes, ext) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file format: "+ext)
	}
	return ctx.JSON(http.StatusOK, gradebook.FileReport{
		Status:   "success",
		ClassID:  ids[0],
		FileName: name,
		Report:   describeFile(name, documents.ExtractText(name, data)),
	})
}

func (api *classApi) importData(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	if _, err = api.svc.GetClassRoom(uid, ids[0]); err != nil {
		return errors.Wrap(err, "retrieving class")
	}
	name, _, data, err := readUpload(ctx)
	if err != nil {
		return err
	}
	if !contains(gradebook.ImportFileTypes, strings.ToLower(filepath.Ext(name))) {
		return echo.NewHTTPError(http.StatusBadRequest, "Unsupported file format. Please upload a CSV file.")
	}
	counts, err := api.svc.ImportCSV(uid, ids[0], bytes.NewReader(data))
	if err != nil {
		return errors.Wrap(err, "importing class data")
	}
	return ctx.JSON(http.StatusOK, gradebook.ImportResult{
		Status:   "success",
		Message:  "Data imported successfully",
		ClassID:  ids[0],
		FileName: name,
		Imported: counts,
	})
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
