package domain

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// validatorInstance is a package-level validator instance. A single instance
// caches struct metadata across calls.
var validatorInstance = validator.New()

func init() {
	_ = validatorInstance.RegisterValidation("safepath", validateSafePath)
}

// validateSafePath ensures the path doesn't contain directory traversal attempts.
func validateSafePath(fl validator.FieldLevel) bool {
	path := fl.Field().String()

	if strings.Contains(path, "..") ||
		strings.Contains(path, "~") ||
		strings.HasPrefix(path, "/") ||
		strings.Contains(path, "\\") {
		return false
	}

	return path == filepath.Clean(path)
}

// File represents the metadata for a stored avatar image. The image content
// itself lives in the configured storage backend under StoragePath.
type File struct {
	ID          *surrealmodels.RecordID `json:"id,omitempty"`
	UserID      *surrealmodels.RecordID `json:"user_id,omitempty" validate:"required"`
	Filename    string                  `json:"filename" validate:"required,min=1,max=255"`
	MIMEType    string                  `json:"mime_type" validate:"required"`
	Size        int64                   `json:"size" validate:"gte=0"`
	StoragePath string                  `json:"storage_path" validate:"required,safepath"`
}

// Validate runs validation checks on the File struct using the defined tags.
func (f *File) Validate() error {
	return validatorInstance.Struct(f)
}

// FileRepository defines the interface for interacting with avatar metadata.
type FileRepository interface {
	Create(ctx context.Context, file *File) (*File, error)
	FindByID(ctx context.Context, fileID string) (*File, error)
	DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error
}
