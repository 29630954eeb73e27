// Package documents holds the files a user uploads to talk to the assistant about them.
package documents

import (
	"time"

	"github.com/bobur6/professor-ai-helper/core"
)

// Document is an uploaded file and the text extracted from it.
type Document struct {
	ID            int       `json:"id"`
	UserID        int       `json:"user_id"`
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type"`
	FileSize      int       `json:"file_size"`
	UploadedAt    time.Time `json:"uploaded_at"` // UTC
	ExtractedText string    `json:"extracted_text_content"`
}

// NewDocument contains an uploaded file.
type NewDocument struct {
	FileName string `json:"file_name" validate:"notblank,max=255"`
	FileType string `json:"file_type" validate:"required"`
	Content  []byte `json:"-"`
}

func (nd *NewDocument) Validate(v *core.Validator) error {
	nd.FileName = core.CleanString(nd.FileName)
	return v.Struct(nd)
}

// Deleted is the answer to a document deletion.
type Deleted struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		DocumentID  int  `json:"document_id"`
		FileDeleted bool `json:"file_deleted"`
	} `json:"data"`
}
