package echoapi

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/documents"
)

const uploadLimit = "10M"

type documentApi struct {
	svc *documents.Service
}

func registerDocumentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *documents.Service) {
	api := documentApi{svc: svc}

	dg := g.Group("/documents", jwt)
	dg.GET("", api.queryDocuments)
	dg.POST("/upload", api.uploadDocument, middleware.BodyLimit(uploadLimit))
	dg.GET("/:id", api.retrieveDocument)
	dg.DELETE("/:id", api.destroyDocument)
}

// readUpload returns the name, media type and content of the multipart field "file".
func readUpload(ctx echo.Context) (string, string, []byte, error) {
	fh, err := ctx.FormFile("file")
	if err != nil {
		return "", "", nil, core.NewValidationError(err, core.FieldError{Field: "file", Error: "file is required"})
	}
	data, err := readFileHeader(fh)
	if err != nil {
		return "", "", nil, errors.Wrap(err, "reading upload")
	}
	contentType := fh.Header.Get(echo.HeaderContentType)
	if contentType == "" || contentType == echo.MIMEOctetStream {
		contentType = documents.TypeOf(fh.Filename)
	}
	return fh.Filename, contentType, data, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func queryInt(ctx echo.Context, name string, def int) int {
	if n, err := strconv.Atoi(ctx.QueryParam(name)); err == nil {
		return n
	}
	return def
}

func (api *documentApi) queryDocuments(ctx echo.Context) error {
	uid, _, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	list, err := api.svc.List(uid, queryInt(ctx, "skip", 0), queryInt(ctx, "limit", 100))
	if err != nil {
		return errors.Wrap(err, "querying documents")
	}
	return ctx.JSON(http.StatusOK, list)
}

func (api *documentApi) uploadDocument(ctx echo.Context) error {
	uid, _, err := pathIDs(ctx)
	if err != nil {
		return err
	}
	name, contentType, data, err := readUpload(ctx)
	if err != nil {
		return err
	}
	doc, err := api.svc.Upload(uid, documents.NewDocument{FileName: name, FileType: contentType, Content: data})
	if err != nil {
		if err == documents.ErrUnsupportedType {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return errors.Wrap(err, "uploading document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) retrieveDocument(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	doc, err := api.svc.Get(uid, ids[0])
	if err != nil {
		return errors.Wrap(err, "retrieving document")
	}
	return ctx.JSON(http.StatusOK, doc)
}

func (api *documentApi) destroyDocument(ctx echo.Context) error {
	uid, ids, err := pathIDs(ctx, "id")
	if err != nil {
		return err
	}
	res, err := api.svc.Delete(uid, ids[0])
	if err != nil {
		return errors.Wrap(err, "deleting document")
	}
	return ctx.JSON(http.StatusOK, res)
}
