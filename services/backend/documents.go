package backendsvc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/gradebook"
)

var _ gradebook.Files = (*Client)(nil)

func documentPath(documentID int) string {
	return fmt.Sprintf("/documents/%d", documentID)
}

// newUploadRequest wraps content into a multipart body with a single "file" field.
func newUploadRequest(path, fileName string, content io.Reader) (request, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filepath.Base(fileName)))
	h.Set("Content-Type", documents.TypeOf(fileName))
	part, err := w.CreatePart(h)
	if err != nil {
		return request{}, errors.Wrap(err, "creating upload")
	}
	if _, err = io.Copy(part, content); err != nil {
		return request{}, errors.Wrap(err, "reading upload")
	}
	if err = w.Close(); err != nil {
		return request{}, errors.Wrap(err, "creating upload")
	}
	return request{
		method:      http.MethodPost,
		path:        path,
		body:        body.Bytes(),
		contentType: w.FormDataContentType(),
	}, nil
}

func (c *Client) upload(ctx context.Context, path, fileName string, content io.Reader, out interface{}) error {
	req, err := newUploadRequest(path, fileName, content)
	if err != nil {
		return err
	}
	return c.do(ctx, req, out)
}

// Documents

func (c *Client) ListDocuments(ctx context.Context, skip, limit int) ([]documents.Document, error) {
	q := url.Values{}
	q.Set("skip", fmt.Sprint(skip))
	q.Set("limit", fmt.Sprint(limit))

	var docs []documents.Document
	if err := c.doJSON(ctx, http.MethodGet, "/documents?"+q.Encode(), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *Client) GetDocument(ctx context.Context, documentID int) (documents.Document, error) {
	var doc documents.Document
	err := c.doJSON(ctx, http.MethodGet, documentPath(documentID), nil, &doc)
	return doc, err
}

func (c *Client) UploadDocument(ctx context.Context, fileName string, content io.Reader) (documents.Document, error) {
	var doc documents.Document
	err := c.upload(ctx, "/documents/upload", fileName, content, &doc)
	return doc, err
}

// DeleteDocument fails unless the server confirms the deletion.
func (c *Client) DeleteDocument(ctx context.Context, documentID int) error {
	var res documents.Deleted
	if err := c.doJSON(ctx, http.MethodDelete, documentPath(documentID), nil, &res); err != nil {
		return err
	}
	if res.Status != "success" {
		return errors.Errorf("document %d was not deleted: %s", documentID, res.Message)
	}
	return nil
}

// Class files

func (c *Client) FileReport(ctx context.Context, classID int, fileName string, content io.Reader) (gradebook.FileReport, error) {
	var res gradebook.FileReport
	err := c.upload(ctx, classPath(classID)+"/file-report", fileName, content, &res)
	return res, err
}

func (c *Client) ImportClassData(ctx context.Context, classID int, fileName string, content io.Reader) (gradebook.ImportResult, error) {
	var res gradebook.ImportResult
	err := c.upload(ctx, classPath(classID)+"/import-data", fileName, content, &res)
	return res, err
}
