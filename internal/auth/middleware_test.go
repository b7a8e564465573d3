package auth

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/study-cards/internal/apperror"
	"github.com/sakif/study-cards/internal/model"
)

type fakeUsers map[string]*model.User

func (f fakeUsers) GetUserByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, apperror.NotFound("user", id)
}

// brokenUsers fails every lookup the way an unavailable database would.
type brokenUsers struct{}

func (brokenUsers) GetUserByID(context.Context, string) (*model.User, error) {
	return nil, errors.New("database is locked")
}

// echoUserID is the protected handler: it writes back the user ID it sees.
var echoUserID = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	io.WriteString(w, id)
})

func runRequireAuth(t *testing.T, users UserLookup, header string) *httptest.ResponseRecorder {
	t.Helper()
	ts := newTestTokenService(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	req := httptest.NewRequest(http.MethodGet, "/flashcards", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	RequireAuth(ts, users, logger)(echoUserID).ServeHTTP(rec, req)
	return rec
}

func decodeMsg(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool   `json:"success"`
		Msg     string `json:"msg"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.False(t, body.Success)
	return body.Msg
}

func TestRequireAuth_ValidToken(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("user-1")
	require.NoError(t, err)

	rec := runRequireAuth(t, fakeUsers{"user-1": {ID: "user-1"}}, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", rec.Body.String())
}

func TestRequireAuth_LowercaseScheme(t *testing.T) {
	ts := newTestTokenService(t)
	token, _ := ts.Generate("user-1")

	rec := runRequireAuth(t, fakeUsers{"user-1": {ID: "user-1"}}, "bearer "+token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAuth_Rejections(t *testing.T) {
	ts := newTestTokenService(t)
	valid, _ := ts.Generate("user-1")
	expired, _ := ts.GenerateWithDuration("user-1", -time.Minute)
	ghost, _ := ts.Generate("deleted-user")

	users := fakeUsers{"user-1": {ID: "user-1"}}

	tests := []struct {
		name    string
		header  string
		wantMsg string
	}{
		{"no header", "", "Not authorized, no token"},
		{"wrong scheme", "Basic " + valid, "Not authorized, no token"},
		{"scheme only", "Bearer", "Not authorized, no token"},
		{"garbage token", "Bearer not-a-jwt", "Not authorized, token failed"},
		{"expired token", "Bearer " + expired, "Not authorized, token failed"},
		{"deleted user", "Bearer " + ghost, "Not authorized, user not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := runRequireAuth(t, users, tt.header)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantMsg, decodeMsg(t, rec))
		})
	}
}

func TestRequireAuth_LookupFailureIsServerError(t *testing.T) {
	ts := newTestTokenService(t)
	token, err := ts.Generate("user-1")
	require.NoError(t, err)

	rec := runRequireAuth(t, brokenUsers{}, "Bearer "+token)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	msg := decodeMsg(t, rec)
	assert.Equal(t, "Internal server error", msg)
	assert.NotContains(t, msg, "database is locked")
}

func TestUserIDFromContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)

	_, ok = UserIDFromContext(WithUserID(context.Background(), ""))
	assert.False(t, ok, "empty ID is not authenticated")

	id, ok := UserIDFromContext(WithUserID(context.Background(), "user-9"))
	assert.True(t, ok)
	assert.Equal(t, "user-9", id)
}
