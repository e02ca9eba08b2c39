// Package testutils holds small helpers shared by tests across packages.
package testutils

import (
	"github.com/google/uuid"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// RecordID builds a *RecordID with a fixed identifier, for tests that
// assert on the resulting "table:id" string.
func RecordID(table, id string) *surrealmodels.RecordID {
	rid := surrealmodels.NewRecordID(table, id)
	return &rid
}

// NewTestRecordID creates a RecordID with a random identifier.
func NewTestRecordID(table string) *surrealmodels.RecordID {
	return RecordID(table, uuid.NewString())
}
