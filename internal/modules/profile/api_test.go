package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/profileapi"
	"github.com/palaver-chat/palaver/internal/storage"
	"github.com/palaver-chat/palaver/internal/testutils"
	"github.com/spf13/afero"
)

type stubUserRepo struct {
	domain.UserRepository

	updateChanges *domain.ProfileChanges
	updateUser    *domain.User
	updateToken   string
	updateErr     error

	deletedID string
	deleteErr error
}

func (s *stubUserRepo) UpdateProfile(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.User, string, error) {
	s.updateChanges = &changes
	if s.updateErr != nil {
		return nil, "", s.updateErr
	}
	return s.updateUser, s.updateToken, nil
}

func (s *stubUserRepo) Delete(ctx context.Context, id string) error {
	s.deletedID = id
	return s.deleteErr
}

type stubFileRepo struct {
	created []*domain.File
	deleted []*surrealmodels.RecordID
}

func (s *stubFileRepo) Create(ctx context.Context, file *domain.File) (*domain.File, error) {
	s.created = append(s.created, file)
	return file, nil
}

func (s *stubFileRepo) FindByID(ctx context.Context, fileID string) (*domain.File, error) {
	return nil, domain.ErrNotFound
}

func (s *stubFileRepo) DeleteByUser(ctx context.Context, userID *surrealmodels.RecordID) error {
	s.deleted = append(s.deleted, userID)
	return nil
}

func testUser() *domain.User {
	return &domain.User{
		ID:       testutils.RecordID("user", "alice"),
		Username: "alice",
		Email:    "alice@example.com",
		Avatar:   "/files/avatars/alice.png",
	}
}

func apiContext(t *testing.T, method, target string, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, body)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.UserContextKey, testUser())
	return c, rec
}

func TestAPIGetUserReturnsProfile(t *testing.T) {
	h := NewAPIHandler(&stubUserRepo{}, &stubFileRepo{}, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)
	c, rec := apiContext(t, http.MethodGet, "/api/user", nil, "")

	require.NoError(t, h.GetUser(c))

	var got profileapi.Profile
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@example.com", got.Email)
	assert.NotEmpty(t, got.ID)
}

func multipartBody(t *testing.T, fields map[string]string, avatarName string, avatarContent []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if avatarName != "" {
		fw, err := w.CreateFormFile("avatar", avatarName)
		require.NoError(t, err)
		_, err = fw.Write(avatarContent)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestAPIUpdateUserRotatesToken(t *testing.T) {
	updated := testUser()
	updated.Username = "alice2"
	users := &stubUserRepo{updateUser: updated, updateToken: "rotated-token"}
	h := NewAPIHandler(users, &stubFileRepo{}, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice2",
		"email":    "alice@example.com",
	}, "", nil)
	c, rec := apiContext(t, http.MethodPatch, "/api/user/user:alice", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues(testUser().ID.String())

	require.NoError(t, h.UpdateUser(c))

	var result profileapi.UpdateResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "rotated-token", result.AuthToken)
	assert.Equal(t, "alice2", result.Payload.Username)

	require.NotNil(t, users.updateChanges)
	require.NotNil(t, users.updateChanges.Username)
	assert.Equal(t, "alice2", *users.updateChanges.Username)
	assert.Nil(t, users.updateChanges.Email, "unchanged fields stay out of the update")
}

func TestAPIUpdateUserStoresAvatar(t *testing.T) {
	updated := testUser()
	users := &stubUserRepo{updateUser: updated, updateToken: "rotated-token"}
	files := &stubFileRepo{}
	store := storage.NewAferoStore(afero.NewMemMapFs())
	h := NewAPIHandler(users, files, store, 1<<20)

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice",
		"email":    "alice@example.com",
	}, "new.png", []byte("png-bytes"))
	c, _ := apiContext(t, http.MethodPatch, "/api/user/user:alice", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues(testUser().ID.String())

	require.NoError(t, h.UpdateUser(c))

	require.Len(t, files.created, 1)
	record := files.created[0]
	assert.Equal(t, "new.png", record.Filename)
	assert.Equal(t, int64(len("png-bytes")), record.Size)

	require.NotNil(t, users.updateChanges.Avatar)
	assert.Contains(t, *users.updateChanges.Avatar, "/files/avatars/")

	content, err := store.Open(context.Background(), record.StoragePath)
	require.NoError(t, err)
	content.Close()
}

func TestAPIUpdateUserRejectsInvalidEmail(t *testing.T) {
	h := NewAPIHandler(&stubUserRepo{}, &stubFileRepo{}, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)

	body, contentType := multipartBody(t, map[string]string{
		"username": "alice",
		"email":    "not-an-email",
	}, "", nil)
	c, _ := apiContext(t, http.MethodPatch, "/api/user/user:alice", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues(testUser().ID.String())

	err := h.UpdateUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.Code)
}

func TestAPIUpdateUserRejectsForeignID(t *testing.T) {
	h := NewAPIHandler(&stubUserRepo{}, &stubFileRepo{}, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)

	body, contentType := multipartBody(t, map[string]string{
		"username": "bob", "email": "bob@example.com",
	}, "", nil)
	c, _ := apiContext(t, http.MethodPatch, "/api/user/user:bob", body, contentType)
	c.SetParamNames("id")
	c.SetParamValues("user:bob")

	err := h.UpdateUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}

func TestAPIDeleteUserRemovesEverything(t *testing.T) {
	users := &stubUserRepo{}
	files := &stubFileRepo{}
	h := NewAPIHandler(users, files, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)

	c, rec := apiContext(t, http.MethodDelete, "/api/user/user:alice", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(testUser().ID.String())

	require.NoError(t, h.DeleteUser(c))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, testUser().ID.String(), users.deletedID)
	require.Len(t, files.deleted, 1)
}

func TestAPIDeleteUserSurfacesFailure(t *testing.T) {
	users := &stubUserRepo{deleteErr: errors.New("db down")}
	h := NewAPIHandler(users, &stubFileRepo{}, storage.NewAferoStore(afero.NewMemMapFs()), 1<<20)

	c, _ := apiContext(t, http.MethodDelete, "/api/user/user:alice", nil, "")
	c.SetParamNames("id")
	c.SetParamValues(testUser().ID.String())

	err := h.DeleteUser(c)
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusInternalServerError, httpErr.Code)
}
