package documents_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bobur6/professor-ai-helper/core"
	"github.com/bobur6/professor-ai-helper/core/documents"
	inmemdb "github.com/bobur6/professor-ai-helper/storage/database/inmem"
)

const (
	owner    = 1
	stranger = 2
)

func newService() *documents.Service {
	return documents.NewService(inmemdb.NewDocumentRepository(inmemdb.Open()), core.NewValidator())
}

func TestService_Upload(t *testing.T) {
	tests := []struct {
		name     string
		in       documents.NewDocument
		wantErr  error
		wantType string
		wantText string
	}{
		{
			name:     "text file",
			in:       documents.NewDocument{FileName: " план.txt ", FileType: "text/plain; charset=utf-8", Content: []byte("\ufeffТема урока")},
			wantType: "text/plain",
			wantText: "Тема урока",
		},
		{
			name:     "pdf keeps no text",
			in:       documents.NewDocument{FileName: "lecture.pdf", FileType: "application/pdf", Content: []byte("%PDF-1.4")},
			wantType: "application/pdf",
			wantText: documents.NoTextExtracted,
		},
		{
			name:    "unsupported type",
			in:      documents.NewDocument{FileName: "photo.png", FileType: "image/png"},
			wantErr: documents.ErrUnsupportedType,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := newService().Upload(owner, tt.in)
			if tt.wantErr != nil {
				assert.Equal(t, tt.wantErr, err)
				return
			}
			require.NoError(t, err)
			assert.NotZero(t, doc.ID)
			assert.Equal(t, owner, doc.UserID)
			assert.Equal(t, tt.wantType, doc.FileType)
			assert.Equal(t, tt.wantText, doc.ExtractedText)
			assert.Equal(t, len(tt.in.Content), doc.FileSize)
			assert.False(t, doc.UploadedAt.IsZero())
		})
	}
}

func TestService_Upload_blankName(t *testing.T) {
	_, err := newService().Upload(owner, documents.NewDocument{FileName: "  ", FileType: "text/plain"})
	require.Error(t, err)
	assert.True(t, core.IsValidation(err))
}

func TestService_ownership(t *testing.T) {
	svc := newService()
	mine, err := svc.Upload(owner, documents.NewDocument{FileName: "a.txt", FileType: "text/plain"})
	require.NoError(t, err)
	theirs, err := svc.Upload(stranger, documents.NewDocument{FileName: "b.txt", FileType: "text/plain"})
	require.NoError(t, err)

	list, err := svc.List(owner, -1, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	_, err = svc.Get(owner, theirs.ID)
	assert.True(t, documents.IsNotFound(err))
	_, err = svc.Delete(owner, theirs.ID)
	assert.True(t, documents.IsNotFound(err))

	res, err := svc.Delete(owner, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, mine.ID, res.Data.DocumentID)
	_, err = svc.Get(owner, mine.ID)
	assert.True(t, documents.IsNotFound(err))
}

func TestTypeOf(t *testing.T) {
	tests := []struct {
		fileName string
		want     string
	}{
		{"notes.TXT", "text/plain"},
		{"journal.csv", "text/plain"},
		{"lecture.pdf", "application/pdf"},
		{"essay.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.want, documents.TypeOf(tt.fileName))
		})
	}
}
