package repository

import (
	"context"

	"github.com/docmanage/opd-api/internal/model"
)

// SnapshotRepository is the durable key-value layer behind the dashboard.
// Each slot holds one serialized document: the full patient set, the
// currently authenticated user, and the registered-credential list. Slots
// are read once at startup and rewritten wholesale on every mutation to
// their owning domain; a slot that has never been written loads as empty,
// not as an error.
type SnapshotRepository interface {
	LoadPatients(ctx context.Context) ([]model.Patient, error)
	SavePatients(ctx context.Context, patients []model.Patient) error

	LoadCurrentUser(ctx context.Context) (*model.AuthUser, error)
	SaveCurrentUser(ctx context.Context, user *model.AuthUser) error
	ClearCurrentUser(ctx context.Context) error

	LoadCredentials(ctx context.Context) ([]model.Credential, error)
	SaveCredentials(ctx context.Context, creds []model.Credential) error
}
