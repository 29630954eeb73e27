package documents

import (
	"errors"
	"time"

	"github.com/bobur6/professor-ai-helper/core"
)

var (
	// errors
	ErrNotFound        = errors.New("Document not found or access denied")
	ErrUnsupportedType = errors.New("File type not supported. Please upload a PDF, DOC, DOCX, or TXT file.")
)

const defaultLimit = 100

type Repository interface {
	CreateDocument(doc Document) (Document, error)
	QueryDocuments(userID, skip, limit int) ([]Document, error)
	GetDocument(id int) (Document, error)
	DeleteDocument(id int) error
}

// Service keeps documents private to the user who uploaded them.
type Service struct {
	repo Repository
	v    *core.Validator
}

func NewService(repo Repository, v *core.Validator) *Service {
	return &Service{repo: repo, v: v}
}

// Upload stores the file with its extracted text.
func (svc *Service) Upload(userID int, nd NewDocument) (Document, error) {
	if err := nd.Validate(svc.v); err != nil {
		return Document{}, err
	}
	if !Allowed(nd.FileType) {
		return Document{}, ErrUnsupportedType
	}
	return svc.repo.CreateDocument(Document{
		UserID:        userID,
		FileName:      nd.FileName,
		FileType:      mediaType(nd.FileType),
		FileSize:      len(nd.Content),
		UploadedAt:    time.Now().UTC(),
		ExtractedText: ExtractText(nd.FileName, nd.Content),
	})
}

// List returns the documents of the user, oldest first. A limit <= 0 means 100.
func (svc *Service) List(userID, skip, limit int) ([]Document, error) {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return svc.repo.QueryDocuments(userID, skip, limit)
}

func (svc *Service) Get(userID, id int) (Document, error) {
	doc, err := svc.repo.GetDocument(id)
	if err != nil {
		return Document{}, err
	}
	if doc.UserID != userID {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

func (svc *Service) Delete(userID, id int) (Deleted, error) {
	if _, err := svc.Get(userID, id); err != nil {
		return Deleted{}, err
	}
	if err := svc.repo.DeleteDocument(id); err != nil {
		return Deleted{}, err
	}
	res := Deleted{Status: "success", Message: "Document deleted successfully"}
	res.Data.DocumentID = id
	res.Data.FileDeleted = true
	return res, nil
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
