// Package model defines the data structures shared by every layer of the service.
package model

import "time"

// Summary is one study section extracted from a document.
// All three fields must be non-empty before a set is stored.
type Summary struct {
	Title         string `json:"title"         validate:"required"`
	Summary       string `json:"summary"       validate:"required"`
	EstimatedTime string `json:"estimatedTime" validate:"required"`
}

// Question is a single flashcard: the prompt on the front, the answer on the back.
type Question struct {
	Question string `json:"question" validate:"required"`
	Answer   string `json:"answer"   validate:"required"`
}

// FlashcardSet is the result of one upload, owned by exactly one user.
//
// Sets are immutable once created: regenerating material from the same PDF
// produces a new set rather than updating this one.
type FlashcardSet struct {
	ID               string     `json:"id"`
	OwnerID          string     `json:"ownerId"`
	OriginalFileName string     `json:"originalFileName,omitempty"`
	Summaries        []Summary  `json:"summaries"`
	Questions        []Question `json:"questions"`
	CreatedAt        time.Time  `json:"createdAt"`
}
