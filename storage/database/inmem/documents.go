package inmemdb

import (
	"sort"

	"github.com/bobur6/professor-ai-helper/core/documents"
)

type documentRepository struct {
	db *documentTable
}

var _ documents.Repository = (*documentRepository)(nil) // interface compliance check

func NewDocumentRepository(db *DB) documents.Repository {
	return &documentRepository{db: db.document}
}

func (repo *documentRepository) CreateDocument(doc documents.Document) (documents.Document, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	repo.db.pk++
	doc.ID = repo.db.pk
	repo.db.table[doc.ID] = &doc
	return doc, nil
}

func (repo *documentRepository) QueryDocuments(userID, skip, limit int) ([]documents.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	r := make([]documents.Document, 0)
	for _, doc := range repo.db.table {
		if doc.UserID == userID {
			r = append(r, *doc)
		}
	}
	sort.Slice(r, func(i, j int) bool { return r[i].ID < r[j].ID })

	if skip >= len(r) {
		return r[:0], nil
	}
	r = r[skip:]
	if limit < len(r) {
		r = r[:limit]
	}
	return r, nil
}

func (repo *documentRepository) GetDocument(id int) (documents.Document, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if doc, ok := repo.db.table[id]; ok {
		return *doc, nil
	}
	return documents.Document{}, documents.ErrNotFound
}

func (repo *documentRepository) DeleteDocument(id int) error {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, ok := repo.db.table[id]; !ok {
		return documents.ErrNotFound
	}
	delete(repo.db.table, id)
	return nil
}
