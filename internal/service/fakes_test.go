package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSetRepo is an in-memory repository.FlashcardSetRepository.
type fakeSetRepo struct {
	mu        sync.Mutex
	sets      map[string]model.FlashcardSet
	createErr error
	creates   int
}

func newFakeSetRepo() *fakeSetRepo {
	return &fakeSetRepo{sets: make(map[string]model.FlashcardSet)}
}

func (f *fakeSetRepo) Create(_ context.Context, set *model.FlashcardSet) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	if f.createErr != nil {
		return f.createErr
	}
	set.ID = xid.New().String()
	set.CreatedAt = time.Now().UTC()
	f.sets[set.ID] = *set
	return nil
}

func (f *fakeSetRepo) GetByID(_ context.Context, id string) (*model.FlashcardSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[id]
	if !ok {
		return nil, apperror.NotFound("flashcard set", id)
	}
	return &set, nil
}

func (f *fakeSetRepo) GetForOwner(ctx context.Context, ownerID, id string) (*model.FlashcardSet, error) {
	set, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if set.OwnerID != ownerID {
		return nil, apperror.NotFound("flashcard set", id)
	}
	return set, nil
}

func (f *fakeSetRepo) ListByOwner(_ context.Context, ownerID string) ([]model.FlashcardSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.FlashcardSet, 0)
	for _, s := range f.sets {
		if s.OwnerID == ownerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeSetRepo) DeleteForOwner(_ context.Context, ownerID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	set, ok := f.sets[id]
	if !ok || set.OwnerID != ownerID {
		return apperror.NotFound("flashcard set", id)
	}
	delete(f.sets, id)
	return nil
}

func (f *fakeSetRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

// fakeExtractor returns canned text and records what it was given.
type fakeExtractor struct {
	text string
	err  error

	calls    int
	doc      []byte
	fileName string
}

func (f *fakeExtractor) Extract(_ context.Context, doc []byte, fileName string) (string, error) {
	f.calls++
	f.doc = doc
	f.fileName = fileName
	return f.text, f.err
}

// fakeUserRepo is an in-memory repository.UserRepository.
type fakeUserRepo struct {
	users     map[string]*model.User
	byEmail   map[string]*model.User
	createErr error
	getErr    error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:   make(map[string]*model.User),
		byEmail: make(map[string]*model.User),
	}
}

func (f *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	if _, ok := f.byEmail[user.Email]; ok {
		return apperror.Conflict("user", user.Email)
	}
	user.ID = xid.New().String()
	user.CreatedAt = time.Now().UTC()
	copied := *user
	f.users[user.ID] = &copied
	f.byEmail[user.Email] = &copied
	return nil
}

func (f *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	return u, nil
}

func (f *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byEmail[email]
	if !ok {
		return nil, apperror.NotFound("user", email)
	}
	return u, nil
}

func (f *fakeUserRepo) DeleteUser(_ context.Context, id string) error {
	u, ok := f.users[id]
	if !ok {
		return apperror.NotFound("user", id)
	}
	delete(f.users, id)
	delete(f.byEmail, u.Email)
	return nil
}

// modelJSON builds a well-formed model answer with n summaries and m questions.
func modelJSON(n, m int) string {
	out := `{"summaries":[`
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"title":"Section %d","summary":"About section %d","estimatedTime":"%d minutes"}`, i+1, i+1, i+2)
	}
	out += `],"questions":[`
	for i := 0; i < m; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"question":"Question %d?","answer":"Answer %d"}`, i+1, i+1)
	}
	return out + `]}`
}

var errDatabase = errors.New("database is locked")
