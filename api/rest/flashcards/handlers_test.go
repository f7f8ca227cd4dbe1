package flashcards

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codeberg.org/studyhall/server/api/rest/metering"
	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/ledger"
	"codeberg.org/studyhall/server/internal/llm"
	"codeberg.org/studyhall/server/internal/quota"
	"codeberg.org/studyhall/server/internal/studyai"
	"codeberg.org/studyhall/server/studyhall/files"
	"codeberg.org/studyhall/server/studyhall/flashcards"
)

const (
	testUserID = "user-1"
	testFileID = "5f0c7a1e-3b7d-4c1a-9a55-0d6f1b2c3d4e"
)

type mockFiles struct {
	mock.Mock
}

func (m *mockFiles) Get(ctx context.Context, fileID, userID string) (*files.File, error) {
	args := m.Called(ctx, fileID, userID)
	if f, ok := args.Get(0).(*files.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCards struct {
	mock.Mock
}

func (m *mockCards) CreateBatch(ctx context.Context, fileID string, cards []studyai.Flashcard) ([]flashcards.Flashcard, error) {
	args := m.Called(ctx, fileID, cards)
	saved, _ := args.Get(0).([]flashcards.Flashcard) //nolint:errcheck
	return saved, args.Error(1)
}

func (m *mockCards) ListByFile(ctx context.Context, fileID string) ([]flashcards.Flashcard, error) {
	args := m.Called(ctx, fileID)
	saved, _ := args.Get(0).([]flashcards.Flashcard) //nolint:errcheck
	return saved, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) GenerateFlashcards(ctx context.Context, text string) ([]studyai.Flashcard, error) {
	args := m.Called(ctx, text)
	cards, _ := args.Get(0).([]studyai.Flashcard) //nolint:errcheck
	return cards, args.Error(1)
}

func newMeter(limit int64) (*metering.Meter, *ledger.Ledger) {
	clock := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)
	l := ledger.New(ledger.NewMemoryStore(), quota.NewPolicy(quota.Limits{FreeFlashcards: limit}),
		ledger.WithClock(func() time.Time { return clock }))

	tiers := metering.TierFunc(func(context.Context, string) (quota.Tier, error) { return quota.TierFree, nil })

	return metering.New(l, tiers), l
}

func setup(t *testing.T, deps Dependencies) (*gin.Engine, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	issuer, err := auth.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateJWT(testUserID, "ada@example.com")
	require.NoError(t, err)

	router := gin.New()
	RegisterRoutes(router.Group("/api/v1"), issuer, deps)

	return router, token
}

func generate(router *gin.Engine, token string) *httptest.ResponseRecorder {
	body := fmt.Sprintf(`{"file_id":%q}`, testFileID)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sampleFile() *files.File {
	return &files.File{ID: testFileID, UserID: testUserID, TextContent: "Mitochondria produce ATP."}
}

func TestGenerate_SavesCardsAndCountsUsage(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(sampleFile(), nil)

	generated := []studyai.Flashcard{{Question: "What produces ATP?", Answer: "Mitochondria"}}

	gen := &mockGenerator{}
	gen.On("GenerateFlashcards", mock.Anything, "Mitochondria produce ATP.").Return(generated, nil).Once()

	cards := &mockCards{}
	cards.On("CreateBatch", mock.Anything, testFileID, generated).
		Return([]flashcards.Flashcard{{ID: "c1", FileID: testFileID, Question: "What produces ATP?", Answer: "Mitochondria"}}, nil).Once()

	meter, l := newMeter(2)
	router, token := setup(t, Dependencies{Files: fileStore, Cards: cards, Generator: gen, Meter: meter})

	w := generate(router, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "1", w.Header().Get("X-Quota-Remaining"))

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Flashcards, 1)
	assert.Equal(t, "c1", resp.Flashcards[0].ID)
	assert.Equal(t, int64(1), resp.Usage.Current)

	count, err := l.GetTodayCount(context.Background(), testUserID, quota.CapabilityFlashcards)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	gen.AssertExpectations(t)
	cards.AssertExpectations(t)
}

func TestGenerate_QuotaExhaustedSkipsWork(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(sampleFile(), nil).Once()

	gen := &mockGenerator{}
	gen.On("GenerateFlashcards", mock.Anything, mock.Anything).Return([]studyai.Flashcard{{Question: "q", Answer: "a"}}, nil).Once()

	cards := &mockCards{}
	cards.On("CreateBatch", mock.Anything, testFileID, mock.Anything).Return([]flashcards.Flashcard{{ID: "c1"}}, nil).Once()

	meter, _ := newMeter(1)
	router, token := setup(t, Dependencies{Files: fileStore, Cards: cards, Generator: gen, Meter: meter})

	require.Equal(t, http.StatusCreated, generate(router, token).Code)

	w := generate(router, token)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "daily limit reached")

	// generator and store were only hit by the first request
	gen.AssertExpectations(t)
	cards.AssertExpectations(t)
	fileStore.AssertExpectations(t)
}

func TestGenerate_NotAvailableOnPlan(t *testing.T) {
	meter, _ := newMeter(0)
	router, token := setup(t, Dependencies{Files: &mockFiles{}, Cards: &mockCards{}, Generator: &mockGenerator{}, Meter: meter})

	w := generate(router, token)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "not available on your plan")
}

func TestGenerate_MissingFileStillCharged(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(nil, files.ErrFileNotFound)

	meter, l := newMeter(5)
	router, token := setup(t, Dependencies{Files: fileStore, Cards: &mockCards{}, Generator: &mockGenerator{}, Meter: meter})

	w := generate(router, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	count, err := l.GetTodayCount(context.Background(), testUserID, quota.CapabilityFlashcards)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGenerate_EmptyTextIsNotFound(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(&files.File{ID: testFileID}, nil)

	meter, _ := newMeter(5)
	router, token := setup(t, Dependencies{Files: fileStore, Cards: &mockCards{}, Generator: &mockGenerator{}, Meter: meter})

	assert.Equal(t, http.StatusNotFound, generate(router, token).Code)
}

func TestGenerate_ProviderDown(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(sampleFile(), nil)

	gen := &mockGenerator{}
	gen.On("GenerateFlashcards", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: status 529", llm.ErrProviderStatus))

	meter, _ := newMeter(5)
	router, token := setup(t, Dependencies{Files: fileStore, Cards: &mockCards{}, Generator: gen, Meter: meter})

	w := generate(router, token)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "5", w.Header().Get("Retry-After"))
}

func TestGenerate_InvalidBody(t *testing.T) {
	meter, l := newMeter(5)
	router, token := setup(t, Dependencies{Meter: meter})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/flashcards/generate", strings.NewReader(`{"file_id":"nope"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	count, err := l.GetTodayCount(context.Background(), testUserID, quota.CapabilityFlashcards)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestList(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(sampleFile(), nil)

	cards := &mockCards{}
	cards.On("ListByFile", mock.Anything, testFileID).Return([]flashcards.Flashcard{{ID: "c1"}, {ID: "c2"}}, nil)

	router, token := setup(t, Dependencies{Files: fileStore, Cards: cards})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards/"+testFileID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp ListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Flashcards, 2)
}

func TestList_OtherUsersFile(t *testing.T) {
	fileStore := &mockFiles{}
	fileStore.On("Get", mock.Anything, testFileID, testUserID).Return(nil, files.ErrFileNotFound)

	router, token := setup(t, Dependencies{Files: fileStore, Cards: &mockCards{}})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flashcards/"+testFileID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
