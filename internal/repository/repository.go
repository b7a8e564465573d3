// Package repository declares the storage contracts used by the service layer.
// Implementations live in sub-packages (see repository/sqlite).
package repository

import (
	"context"

	"github.com/sakif/study-cards/internal/model"
)

// FlashcardSetRepository stores flashcard sets.
//
// Owner scoping is part of the contract: GetForOwner and DeleteForOwner only
// ever touch rows whose owner matches, and report apperror.ErrNotFound
// otherwise. GetByID is unscoped and exists so the service can tell "missing"
// apart from "owned by someone else" when deleting.
type FlashcardSetRepository interface {
	Create(ctx context.Context, set *model.FlashcardSet) error
	GetByID(ctx context.Context, id string) (*model.FlashcardSet, error)
	GetForOwner(ctx context.Context, ownerID, id string) (*model.FlashcardSet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.FlashcardSet, error)
	DeleteForOwner(ctx context.Context, ownerID, id string) error
}

// UserRepository stores user accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}
