// Package service contains the business logic layer of the application.
//
// Handlers parse HTTP and write responses, services enforce the rules, and
// repositories talk to the database:
//
//	Handler (HTTP) → Service (rules, orchestration) → Repository (SQL)
//
// Services only return apperror values for expected failures; mapping them
// to status codes is the handler's job.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/xid"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
	"github.com/sakif/study-cards/internal/repository"
	"github.com/sakif/study-cards/internal/sanitize"
	"github.com/sakif/study-cards/internal/upload"
)

// Extractor turns a document into raw model text (see extractor.Extractor).
type Extractor interface {
	Extract(ctx context.Context, doc []byte, fileName string) (string, error)
}

// FlashcardService runs the upload pipeline and the owner-scoped reads and
// deletes on stored sets.
type FlashcardService struct {
	repo      repository.FlashcardSetRepository
	gate      *upload.Gate
	extractor Extractor
	validate  *validator.Validate
	logger    *slog.Logger
}

func NewFlashcardService(
	repo repository.FlashcardSetRepository,
	gate *upload.Gate,
	extractor Extractor,
	logger *slog.Logger,
) *FlashcardService {
	return &FlashcardService{
		repo:      repo,
		gate:      gate,
		extractor: extractor,
		validate:  newValidator(),
		logger:    logger,
	}
}

// GenerateFromUpload is the whole pipeline for one upload:
//
//	gate → extractor → sanitizer → persister
//
// The staged temp file is released on every path once it exists. A failed
// release is logged and never changes the result.
func (s *FlashcardService) GenerateFromUpload(ctx context.Context, ownerID, fieldName string, f upload.File) (*model.FlashcardSet, error) {
	tmp, err := s.gate.Store(ctx, fieldName, f)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := tmp.Release(); err != nil {
			s.logger.Error("failed to remove temporary upload",
				slog.String("path", tmp.Path),
				slog.String("error", err.Error()),
			)
		}
	}()

	s.logger.Info("upload accepted",
		slog.String("owner", ownerID),
		slog.String("file", tmp.OriginalName),
		slog.Int64("bytes", tmp.Size),
	)

	doc, err := tmp.Bytes()
	if err != nil {
		return nil, fmt.Errorf("reading staged upload: %w", err)
	}

	raw, err := s.extractor.Extract(ctx, doc, tmp.OriginalName)
	if err != nil {
		return nil, err
	}

	parsed, err := sanitize.Parse(raw)
	if err != nil {
		s.logger.Warn("model output could not be parsed",
			slog.String("file", tmp.OriginalName),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return s.Persist(ctx, ownerID, tmp.OriginalName, parsed.Summaries, parsed.Questions)
}

// Persist validates every entry and stores a new set for ownerID.
//
// The first entry with an empty field fails the whole set with
// apperror.ErrInvalidSetContent naming the field, e.g. "summaries[0].title".
// Nothing is written in that case.
func (s *FlashcardService) Persist(
	ctx context.Context,
	ownerID, fileName string,
	summaries []model.Summary,
	questions []model.Question,
) (*model.FlashcardSet, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, apperror.ValidationFailed("ownerId", "owner is required")
	}

	for i := range summaries {
		if err := s.checkEntry("summaries", i, &summaries[i]); err != nil {
			return nil, err
		}
	}
	for i := range questions {
		if err := s.checkEntry("questions", i, &questions[i]); err != nil {
			return nil, err
		}
	}

	if summaries == nil {
		summaries = []model.Summary{}
	}
	if questions == nil {
		questions = []model.Question{}
	}

	set := &model.FlashcardSet{
		OwnerID:          ownerID,
		OriginalFileName: strings.TrimSpace(fileName),
		Summaries:        summaries,
		Questions:        questions,
	}

	if err := s.repo.Create(ctx, set); err != nil {
		s.logger.Error("failed to save flashcard set",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("saving flashcard set: %w", err)
	}

	s.logger.Info("flashcard set created",
		slog.String("id", set.ID),
		slog.String("owner", ownerID),
		slog.Int("summaries", len(set.Summaries)),
		slog.Int("questions", len(set.Questions)),
	)

	return set, nil
}

func (s *FlashcardService) checkEntry(kind string, i int, entry any) error {
	err := s.validate.Struct(entry)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		field := fmt.Sprintf("%s[%d].%s", kind, i, verrs[0].Field())
		return apperror.InvalidSetContent(field, field+" is required")
	}
	return fmt.Errorf("validating %s[%d]: %w", kind, i, err)
}

// List returns the owner's sets, newest first. Never nil.
func (s *FlashcardService) List(ctx context.Context, ownerID string) ([]model.FlashcardSet, error) {
	sets, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		s.logger.Error("failed to list flashcard sets",
			slog.String("owner", ownerID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing flashcard sets: %w", err)
	}
	if sets == nil {
		sets = []model.FlashcardSet{}
	}
	return sets, nil
}

// Get returns the set only to its owner. Someone else's set is reported as
// not found, so existence is not leaked.
func (s *FlashcardService) Get(ctx context.Context, ownerID, id string) (*model.FlashcardSet, error) {
	id, err := checkSetID(id)
	if err != nil {
		return nil, err
	}
	return s.repo.GetForOwner(ctx, ownerID, id)
}

// Delete removes a set owned by ownerID. A missing set is NotFound; a set
// that belongs to another user is Forbidden and stays untouched.
func (s *FlashcardService) Delete(ctx context.Context, ownerID, id string) error {
	id, err := checkSetID(id)
	if err != nil {
		return err
	}

	set, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if set.OwnerID != ownerID {
		s.logger.Warn("delete of another user's flashcard set refused",
			slog.String("id", id),
			slog.String("caller", ownerID),
		)
		return apperror.Forbidden("User not authorized to delete this set.")
	}

	if err := s.repo.DeleteForOwner(ctx, ownerID, id); err != nil {
		return err
	}

	s.logger.Info("flashcard set deleted", slog.String("id", id), slog.String("owner", ownerID))
	return nil
}

// checkSetID rejects ids that could never have been issued.
func checkSetID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if _, err := xid.FromString(id); err != nil {
		return "", apperror.ValidationFailed("id", "Invalid flashcard set ID format.")
	}
	return id, nil
}
