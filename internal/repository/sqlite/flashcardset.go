package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
	"github.com/sakif/study-cards/internal/repository"
)

var _ repository.FlashcardSetRepository = (*DB)(nil)

const flashcardSetColumns = `id, owner_id, original_file_name, summaries, questions, created_at`

// Create inserts a new flashcard set, assigning its ID and CreatedAt.
//
// The whole set goes in with a single INSERT, so a failure never leaves a
// partially written set behind.
func (db *DB) Create(ctx context.Context, set *model.FlashcardSet) error {
	summaries, err := json.Marshal(nonNilSummaries(set.Summaries))
	if err != nil {
		return fmt.Errorf("sqlite: encoding summaries: %w", err)
	}
	questions, err := json.Marshal(nonNilQuestions(set.Questions))
	if err != nil {
		return fmt.Errorf("sqlite: encoding questions: %w", err)
	}

	set.ID = xid.New().String()
	set.CreatedAt = time.Now().UTC()

	_, err = db.conn.ExecContext(ctx,
		`INSERT INTO flashcard_sets (`+flashcardSetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		set.ID,
		set.OwnerID,
		set.OriginalFileName,
		string(summaries),
		string(questions),
		set.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating flashcard set: %w", err)
	}

	set.Summaries = nonNilSummaries(set.Summaries)
	set.Questions = nonNilQuestions(set.Questions)
	return nil
}

// GetByID returns a set regardless of owner.
func (db *DB) GetByID(ctx context.Context, id string) (*model.FlashcardSet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+flashcardSetColumns+` FROM flashcard_sets WHERE id = ?`,
		id,
	)
	set, err := scanFlashcardSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("flashcard set", id)
		}
		return nil, fmt.Errorf("sqlite: getting flashcard set %s: %w", id, err)
	}
	return set, nil
}

// GetForOwner returns the set only if it belongs to ownerID. A set owned by
// someone else yields the same NotFound as a missing one.
func (db *DB) GetForOwner(ctx context.Context, ownerID, id string) (*model.FlashcardSet, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+flashcardSetColumns+` FROM flashcard_sets WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	set, err := scanFlashcardSet(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("flashcard set", id)
		}
		return nil, fmt.Errorf("sqlite: getting flashcard set %s: %w", id, err)
	}
	return set, nil
}

// ListByOwner returns every set owned by ownerID, newest first. Sets created
// within the same clock tick fall back to id order; xids are time-sortable.
func (db *DB) ListByOwner(ctx context.Context, ownerID string) ([]model.FlashcardSet, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+flashcardSetColumns+`
		 FROM flashcard_sets
		 WHERE owner_id = ?
		 ORDER BY created_at DESC, id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing flashcard sets: %w", err)
	}
	defer rows.Close()

	sets := make([]model.FlashcardSet, 0)
	for rows.Next() {
		set, err := scanFlashcardSet(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scanning flashcard set row: %w", err)
		}
		sets = append(sets, *set)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating flashcard sets: %w", err)
	}

	return sets, nil
}

// DeleteForOwner removes the set if ownerID owns it.
func (db *DB) DeleteForOwner(ctx context.Context, ownerID, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM flashcard_sets WHERE id = ? AND owner_id = ?`,
		id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: deleting flashcard set %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("flashcard set", id)
	}

	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcardSet(row rowScanner) (*model.FlashcardSet, error) {
	var (
		set                  model.FlashcardSet
		summaries, questions string
	)
	if err := row.Scan(
		&set.ID,
		&set.OwnerID,
		&set.OriginalFileName,
		&summaries,
		&questions,
		&set.CreatedAt,
	); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(summaries), &set.Summaries); err != nil {
		return nil, fmt.Errorf("decoding summaries of %s: %w", set.ID, err)
	}
	if err := json.Unmarshal([]byte(questions), &set.Questions); err != nil {
		return nil, fmt.Errorf("decoding questions of %s: %w", set.ID, err)
	}
	set.Summaries = nonNilSummaries(set.Summaries)
	set.Questions = nonNilQuestions(set.Questions)

	return &set, nil
}

func nonNilSummaries(s []model.Summary) []model.Summary {
	if s == nil {
		return []model.Summary{}
	}
	return s
}

func nonNilQuestions(q []model.Question) []model.Question {
	if q == nil {
		return []model.Question{}
	}
	return q
}
