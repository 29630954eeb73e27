package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
)

var errHttpNotFound = echo.NewHTTPError(http.StatusNotFound, "Not found")

// fieldDetail mirrors one item of a FastAPI validation error list.
type fieldDetail struct {
	Loc []string `json:"loc"`
	Msg string   `json:"msg"`
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler rendering every error as `{"detail": ...}`.
func newAppHTTPErrorHandler(logger core.Logger) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var detail interface{}

		var vErr *core.ValidationError
		switch {
		case errors.As(err, &vErr):
			code = http.StatusUnprocessableEntity
			if len(vErr.Fields) > 0 {
				flds := make([]fieldDetail, 0, len(vErr.Fields))
				for _, fErr := range vErr.Fields {
					flds = append(flds, fieldDetail{Loc: []string{"body", fErr.Field}, Msg: fErr.Error})
				}
				detail = flds
			} else {
				detail = vErr.Error()
			}

		case classes.IsNotFound(err), documents.IsNotFound(err):
			code = http.StatusNotFound
			detail = errors.Cause(err).Error()

		default:
			if herr, ok := errors.Cause(err).(*echo.HTTPError); ok {
				if herr == middleware.ErrJWTMissing {
					code = http.StatusUnauthorized
					detail = herr.Message
					break
				}
				if herr.Internal != nil {
					if inner, ok := herr.Internal.(*echo.HTTPError); ok {
						herr = inner
					}
				}
				code = herr.Code
				detail = herr.Message
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			detail = http.StatusText(http.StatusInternalServerError)
			fields := core.Fields{"method": ctx.Request().Method, "path": ctx.Request().URL.Path}
			if uid, cErr := getContextUserID(ctx); cErr == nil {
				fields["user_id"] = uid
			}
			logger.Error("request failed", errors.WithStack(err), fields)
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, echo.Map{"detail": detail})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}
