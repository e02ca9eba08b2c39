package database

import (
	"context"
	"fmt"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// FileStore implements domain.FileRepository on SurrealDB.
type FileStore struct {
	db *surrealdb.DB
}

// NewFileStore creates a new avatar metadata repository.
func NewFileStore(db *surrealdb.DB) domain.FileRepository {
	return &FileStore{db: db}
}

// Create inserts a new file metadata record after validating it.
func (s *FileStore) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	if err := file.Validate(); err != nil {
		return nil, NewDBError(ErrInvalidInput, err.Error())
	}
	query := "CREATE file CONTENT $data"
	created, err := QueryOne[domain.File](ctx, s.db, query, map[string]any{"data": file})
	if err != nil {
		return nil, fmt.Errorf("failed to create file record: %w", err)
	}
	if created == nil {
		return nil, NewDBError(ErrQueryFailed, "file record was not created")
	}
	return created, nil
}

// FindByID retrieves file metadata by its record ID.
func (s *FileStore) FindByID(ctx context.Context, fileID string) (*domain.File, error) {
	file, err := QueryOne[domain.File](ctx, s.db, fmt.Sprintf("SELECT * FROM %s", fileID), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to find file: %w", err)
	}
	if file == nil {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

// DeleteByUser removes all file metadata records owned by the given user.
func (s *FileStore) DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error {
	query := "DELETE file WHERE user_id = $user_id"
	return Execute(ctx, s.db, query, map[string]any{"user_id": userID})
}
