package files

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"codeberg.org/studyhall/server/internal/auth"
	"codeberg.org/studyhall/server/internal/chunker"
	"codeberg.org/studyhall/server/studyhall/files"
)

const testUserID = "user-1"

type mockFileStore struct {
	mock.Mock
}

func (m *mockFileStore) Create(ctx context.Context, req files.CreateFileRequest) (*files.File, error) {
	args := m.Called(ctx, req)
	if f, ok := args.Get(0).(*files.File); ok {
		return f, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFileStore) List(ctx context.Context, userID string, limit, offset int) ([]files.File, int, error) {
	args := m.Called(ctx, userID, limit, offset)
	list, _ := args.Get(0).([]files.File) //nolint:errcheck
	return list, args.Int(1), args.Error(2)
}

func (m *mockFileStore) Delete(ctx context.Context, fileID, userID string) (string, error) {
	args := m.Called(ctx, fileID, userID)
	return args.String(0), args.Error(1)
}

type mockIndexer struct {
	mock.Mock
}

func (m *mockIndexer) InsertChunksBatch(ctx context.Context, fileID string, chunks []chunker.Chunk, embeddings [][]float32) error {
	return m.Called(ctx, fileID, chunks, embeddings).Error(0)
}

type mockArchive struct {
	mock.Mock
}

func (m *mockArchive) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return m.Called(ctx, key, data, contentType).Error(0)
}

func (m *mockArchive) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// returns a vector of [len(text)] for each input
type fakeEmbedder struct {
	calls atomic.Int32
	err   error
}

func (e *fakeEmbedder) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	return []float32{float32(len(text))}, e.err
}

func (e *fakeEmbedder) GenerateEmbeddings(_ context.Context, texts []string) ([][]float32, error) {
	e.calls.Add(1)

	if e.err != nil {
		return nil, e.err
	}

	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}

	return out, nil
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

func uploadRequest(t *testing.T, token, filename string, content []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestUpload_IndexesAndArchives(t *testing.T) {
	store := &mockFileStore{}
	indexer := &mockIndexer{}
	archive := &mockArchive{}
	embedder := &fakeEmbedder{}

	const text = "The French Revolution began in 1789."

	archive.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/"+testUserID+"/") && strings.HasSuffix(key, ".txt")
	}), []byte(text), mock.Anything).Return(nil).Once()

	store.On("Create", mock.Anything, mock.MatchedBy(func(req files.CreateFileRequest) bool {
		return req.UserID == testUserID && req.Filename == "history.txt" &&
			req.TextContent == text && req.ObjectKey != "" && req.SizeBytes == int64(len(text))
	})).Return(&files.File{ID: "file-1", UserID: testUserID}, nil).Once()

	indexer.On("InsertChunksBatch", mock.Anything, "file-1", mock.MatchedBy(func(chunks []chunker.Chunk) bool {
		return len(chunks) == 1 && chunks[0].Content == text
	}), [][]float32{{float32(len(text))}}).Return(nil).Once()

	router, token := setup(t, Dependencies{
		Files: store, Chunks: indexer, Embedder: embedder, Archive: archive, MaxUploadBytes: 1 << 20,
	})

	w := serve(router, uploadRequest(t, token, "history.txt", []byte(text)))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var resp UploadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "file-1", resp.FileID)
	assert.Equal(t, 1, resp.Chunks)

	store.AssertExpectations(t)
	indexer.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestUpload_WithoutArchive(t *testing.T) {
	store := &mockFileStore{}
	store.On("Create", mock.Anything, mock.MatchedBy(func(req files.CreateFileRequest) bool {
		return req.ObjectKey == ""
	})).Return(&files.File{ID: "file-1"}, nil).Once()

	indexer := &mockIndexer{}
	indexer.On("InsertChunksBatch", mock.Anything, "file-1", mock.Anything, mock.Anything).Return(nil).Once()

	router, token := setup(t, Dependencies{Files: store, Chunks: indexer, Embedder: &fakeEmbedder{}})

	w := serve(router, uploadRequest(t, token, "notes.txt", []byte("Cells divide.")))

	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestUpload_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		content  []byte
		maxBytes int64
		want     int
	}{
		{"unsupported type", "slides.pptx", []byte("data"), 0, http.StatusUnsupportedMediaType},
		{"no extension", "README", []byte("data"), 0, http.StatusUnsupportedMediaType},
		{"too large", "big.txt", bytes.Repeat([]byte("a"), 4096), 1024, http.StatusRequestEntityTooLarge},
		{"no text", "blank.txt", []byte("   \n\n  "), 0, http.StatusInternalServerError},
		{"corrupt pdf", "paper.pdf", []byte("not a pdf"), 0, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &mockFileStore{}
			router, token := setup(t, Dependencies{
				Files: store, Chunks: &mockIndexer{}, Embedder: &fakeEmbedder{}, MaxUploadBytes: tt.maxBytes,
			})

			w := serve(router, uploadRequest(t, token, tt.filename, tt.content))

			assert.Equal(t, tt.want, w.Code, w.Body.String())
			store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestUpload_UnsupportedTypeErrorCode(t *testing.T) {
	router, token := setup(t, Dependencies{Files: &mockFileStore{}})

	w := serve(router, uploadRequest(t, token, "notes.rtf", []byte("data")))

	require.Equal(t, http.StatusUnsupportedMediaType, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "unsupported_media_type", body["error"])
	assert.Contains(t, body["message"], ".pdf")
}

func TestUpload_MissingFileField(t *testing.T) {
	router, token := setup(t, Dependencies{Files: &mockFileStore{}})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusBadRequest, serve(router, req).Code)
}

func TestUpload_IndexFailureUndoesUpload(t *testing.T) {
	store := &mockFileStore{}
	store.On("Create", mock.Anything, mock.Anything).Return(&files.File{ID: "file-1"}, nil).Once()
	store.On("Delete", mock.Anything, "file-1", testUserID).Return("uploads/user-1/file-1.txt", nil).Once()

	archive := &mockArchive{}
	archive.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
	archive.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
		return strings.HasPrefix(key, "uploads/"+testUserID+"/")
	})).Return(nil).Once()

	embedder := &fakeEmbedder{err: stderrors.New("provider down")}

	router, token := setup(t, Dependencies{
		Files: store, Chunks: &mockIndexer{}, Embedder: embedder, Archive: archive,
	})

	w := serve(router, uploadRequest(t, token, "notes.txt", []byte("Cells divide.")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	store.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestUpload_RequiresAuth(t *testing.T) {
	router, _ := setup(t, Dependencies{Files: &mockFileStore{}})

	req := uploadRequest(t, "", "notes.txt", []byte("x"))
	req.Header.Del("Authorization")

	assert.Equal(t, http.StatusUnauthorized, serve(router, req).Code)
}

func TestListFiles_Pagination(t *testing.T) {
	store := &mockFileStore{}
	store.On("List", mock.Anything, testUserID, 100, 10).Return([]files.File{{ID: "f1"}, {ID: "f2"}}, 120, nil).Once()

	router, token := setup(t, Dependencies{Files: store})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files?limit=500&offset=10", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := serve(router, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp FilesListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Files, 2)
	assert.Equal(t, 120, resp.Pagination.Total)
	assert.Equal(t, 100, resp.Pagination.Limit)
	assert.True(t, resp.Pagination.HasMore)
	assert.NotContains(t, w.Body.String(), "text_content")
}

func TestDeleteFile(t *testing.T) {
	const fileID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	store := &mockFileStore{}
	store.On("Delete", mock.Anything, fileID, testUserID).Return("uploads/user-1/x.pdf", nil).Once()

	archive := &mockArchive{}
	archive.On("Delete", mock.Anything, "uploads/user-1/x.pdf").Return(nil).Once()

	router, token := setup(t, Dependencies{Files: store, Archive: archive})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID, nil)
	req.Header.Set("Authorization", "Bearer "+token)

	assert.Equal(t, http.StatusOK, serve(router, req).Code)
	store.AssertExpectations(t)
	archive.AssertExpectations(t)
}

func TestDeleteFile_NotFound(t *testing.T) {
	const fileID = "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	store := &mockFileStore{}
	store.On("Delete", mock.Anything, fileID, testUserID).Return("", files.ErrFileNotFound).Once()

	router, token := setup(t, Dependencies{Files: store})

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+fileID, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, serve(router, req).Code)

	bad := httptest.NewRequest(http.MethodDelete, "/api/v1/files/not-a-uuid", nil)
	bad.Header.Set("Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusNotFound, serve(router, bad).Code)
}

func TestEmbedAll_BatchesStayAligned(t *testing.T) {
	texts := make([]string, 150)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	embedder := &fakeEmbedder{}

	embeddings, err := embedAll(context.Background(), embedder, texts)

	require.NoError(t, err)
	require.Len(t, embeddings, 150)
	assert.Equal(t, int32(3), embedder.calls.Load())

	for i, e := range embeddings {
		assert.Equal(t, float32(i+1), e[0])
	}
}
