package echoapi_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"reflect"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	echoapi "github.com/bobur6/professor-ai-helper/apps/api/echo"
	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/classes"
	"github.com/bobur6/professor-ai-helper/core/documents"
	"github.com/bobur6/professor-ai-helper/core/user"
	inmemdb "github.com/bobur6/professor-ai-helper/storage/database/inmem"
	testutil "github.com/bobur6/professor-ai-helper/tests"
)

var errMissingToken = httpErr{Detail: "missing or malformed jwt"}

type env struct {
	app       *echoapi.Server
	usrRepo   user.Repository
	classRepo classes.Repository
	docRepo   documents.Repository
	registry  *prometheus.Registry
}

func setup(t *testing.T) env {
	t.Helper()
	db := inmemdb.Open()
	e := env{
		usrRepo:   inmemdb.NewUserRepository(db),
		classRepo: inmemdb.NewClassRepository(db),
		docRepo:   inmemdb.NewDocumentRepository(db),
		registry:  prometheus.NewRegistry(),
	}
	e.app = echoapi.NewServer(&echoapi.Deps{
		Conf:      testutil.TestConfig(),
		Logger:    core.NopLogger{},
		Validator: core.NewValidator(),
		UserSvc:   user.NewService(e.usrRepo),
		ClassSvc:  classes.NewService(e.classRepo),
		DocSvc:    documents.NewService(e.docRepo, core.NewValidator()),
		Registry:  e.registry,
	})
	return e
}

type httpErr struct {
	Detail string `json:"detail"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// newUploadRequest posts content as the multipart field "file".
func newUploadRequest(t *testing.T, path, token, fileName, contentType string, content []byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	part, err := w.CreatePart(h)
	if err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}
	_, _ = part.Write(content)
	if err = w.Close(); err != nil {
		t.Fatalf("newUploadRequest() failed: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, httptest.NewRecorder()
}

func getToken(t *testing.T, app *echoapi.Server, usr user.User) string {
	token, err := app.GenerateToken(usr)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func runHTTPTests(t *testing.T, app http.Handler, tests []httpTest) {
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req, rec := newAuthRequest(method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
