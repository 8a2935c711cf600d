package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dimitrije/folio-api/internal/auth"
	"github.com/dimitrije/folio-api/internal/middleware"
	"github.com/dimitrije/folio-api/internal/models"
	"github.com/dimitrije/folio-api/internal/store"
	"github.com/dimitrije/folio-api/pkg/dto"
	"github.com/dimitrije/folio-api/tests/testutil"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupArtworkTest(t *testing.T) (*testutil.MockArtworkStore, *testutil.MockEventPublisher, http.Handler) {
	t.Helper()
	artworks := new(testutil.MockArtworkStore)
	events := new(testutil.MockEventPublisher)
	handler := NewArtworkHandler(artworks, events, zap.NewNop())

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Get("/api/artworks", handler.List)
	app.Post("/api/artworks", handler.Create)
	app.Delete("/api/artworks", handler.Delete)

	return artworks, events, app
}

func sampleArtwork(id string) models.Artwork {
	return models.Artwork{
		ID:          id,
		Title:       "Mystical Forest",
		Category:    "Environment",
		Description: "An enchanted forest scene.",
		Image:       "/images/cg (1).jpg",
		CreatedAt:   time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC),
	}
}

func TestArtworkHandler_List_Success(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	list := []models.Artwork{sampleArtwork("2"), sampleArtwork("1")}
	artworks.On("List", mock.Anything).Return(list, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var got []models.Artwork
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2", got[0].ID)
	assert.True(t, got[0].CreatedAt.Equal(list[0].CreatedAt))
	assert.Contains(t, rec.Body.String(), `"createdAt"`)

	artworks.AssertExpectations(t)
}

func TestArtworkHandler_List_EmptyIsArray(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	artworks.On("List", mock.Anything).Return([]models.Artwork{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestArtworkHandler_List_StorageError(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	artworks.On("List", mock.Anything).Return(nil, store.ErrStorageUnavailable)

	req := httptest.NewRequest(http.MethodGet, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to fetch artworks")
}

func TestArtworkHandler_Create_Success(t *testing.T) {
	artworks, events, app := setupArtworkTest(t)

	input := models.ArtworkInput{
		Title:       "Mystical Forest",
		Category:    "Environment",
		Description: "An enchanted forest scene.",
		Image:       "/images/cg (1).jpg",
	}
	created := sampleArtwork("new-id")

	artworks.On("Create", mock.Anything, input).Return(&created, nil)
	events.On("ArtworkCreated", created).Return()

	body, _ := json.Marshal(dto.CreateArtworkRequest{
		Title:       input.Title,
		Category:    input.Category,
		Description: input.Description,
		Image:       input.Image,
	})
	req := httptest.NewRequest(http.MethodPost, "/api/artworks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var got models.Artwork
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "new-id", got.ID)
	assert.Equal(t, "Mystical Forest", got.Title)

	artworks.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestArtworkHandler_Create_ValidationError(t *testing.T) {
	artworks, events, app := setupArtworkTest(t)

	artworks.On("Create", mock.Anything, mock.Anything).
		Return(nil, &store.ValidationError{Fields: []string{"description", "image"}})

	body := []byte(`{"title":"Only a title","category":"Environment"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/artworks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.ValidationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"description", "image"}, resp.Fields)
	assert.Contains(t, resp.Error, "missing required fields")

	events.AssertNotCalled(t, "ArtworkCreated", mock.Anything)
}

func TestArtworkHandler_Create_InvalidBody(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	req := httptest.NewRequest(http.MethodPost, "/api/artworks", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid request body")
	artworks.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestArtworkHandler_Create_StorageError(t *testing.T) {
	artworks, events, app := setupArtworkTest(t)

	artworks.On("Create", mock.Anything, mock.Anything).Return(nil, store.ErrStorageUnavailable)

	body := []byte(`{"title":"T","category":"C","description":"D","image":"/i.png"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/artworks", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to create artwork")
	events.AssertNotCalled(t, "ArtworkCreated", mock.Anything)
}

func TestArtworkHandler_Delete_Success(t *testing.T) {
	artworks, events, app := setupArtworkTest(t)

	artworks.On("DeleteByID", mock.Anything, "abc").Return(nil)
	events.On("ArtworkDeleted", "abc").Return()

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks?id=abc", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	artworks.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestArtworkHandler_Delete_MissingID(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "artwork id is required")
	artworks.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestArtworkHandler_Delete_NotFound(t *testing.T) {
	artworks, events, app := setupArtworkTest(t)

	artworks.On("DeleteByID", mock.Anything, "nonexistent-id").Return(store.ErrNotFound)

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks?id=nonexistent-id", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "artwork not found")
	events.AssertNotCalled(t, "ArtworkDeleted", mock.Anything)
}

func TestArtworkHandler_Delete_StorageError(t *testing.T) {
	artworks, _, app := setupArtworkTest(t)

	artworks.On("DeleteByID", mock.Anything, "1").Return(store.ErrStorageUnavailable)

	req := httptest.NewRequest(http.MethodDelete, "/api/artworks?id=1", nil)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestArtworkHandler_WritesRequireAdmin(t *testing.T) {
	artworks := new(testutil.MockArtworkStore)
	events := new(testutil.MockEventPublisher)
	handler := NewArtworkHandler(artworks, events, zap.NewNop())
	jwtSvc := testutil.TestJWTService()

	app := drift.New()
	app.Use(driftmw.BodyParser())
	api := app.Group("/api")
	api.Get("/artworks", handler.List)
	admin := api.Group("")
	admin.Use(middleware.Auth(jwtSvc))
	admin.Use(middleware.RequireRole(auth.RoleAdmin))
	admin.Delete("/artworks", handler.Delete)

	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/api/artworks?id=1", nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("viewer", func(t *testing.T) {
		token := testutil.GenerateTestToken(t, "fan@example.com", auth.RoleViewer)
		req := httptest.NewRequest(http.MethodDelete, "/api/artworks?id=1", nil)
		req.Header.Set("Authorization", testutil.AuthHeader(token))
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	artworks.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}
