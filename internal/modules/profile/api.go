package profile

import (
	"fmt"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/palaver-chat/palaver/internal/middleware"
	"github.com/palaver-chat/palaver/internal/profileapi"
	"github.com/palaver-chat/palaver/internal/storage"
)

// updateForm carries the multipart fields of a profile update request.
type updateForm struct {
	Username string `form:"username" validate:"required,min=1,max=64"`
	Email    string `form:"email" validate:"required,email"`
}

// APIHandler serves the JSON profile API consumed by profileapi.Client.
type APIHandler struct {
	users          domain.UserRepository
	files          domain.FileRepository
	store          storage.Store
	maxUploadBytes int64
	validate       *validator.Validate
	logger         *slog.Logger
}

// NewAPIHandler creates the API handler.
func NewAPIHandler(users domain.UserRepository, files domain.FileRepository, store storage.Store, maxUploadBytes int64) *APIHandler {
	return &APIHandler{
		users:          users,
		files:          files,
		store:          store,
		maxUploadBytes: maxUploadBytes,
		validate:       validator.New(),
		logger:         slog.Default().With("component", "profile-api"),
	}
}

// RegisterRoutes mounts the API routes on the given group. The group must
// carry bearer authentication.
func (h *APIHandler) RegisterRoutes(api *echo.Group) {
	api.GET("/user", h.GetUser)
	api.PATCH("/user/:id", h.UpdateUser)
	api.DELETE("/user/:id", h.DeleteUser)
}

// GetUser returns the authenticated user's profile.
func (h *APIHandler) GetUser(c echo.Context) error {
	user := c.Get(middleware.UserContextKey).(*domain.User)
	return c.JSON(http.StatusOK, toWireProfile(user))
}

// UpdateUser applies a partial profile update from a multipart form. The
// response carries the rotated session token alongside the authoritative
// post-update profile.
func (h *APIHandler) UpdateUser(c echo.Context) error {
	user := c.Get(middleware.UserContextKey).(*domain.User)
	if c.Param("id") != user.ID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "cannot modify another user's profile")
	}

	var form updateForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request")
	}
	if err := h.validate.Struct(form); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	changes := domain.ProfileChanges{}
	if form.Username != user.Username {
		changes.Username = &form.Username
	}
	if form.Email != user.Email {
		changes.Email = &form.Email
	}

	if avatar, err := c.FormFile("avatar"); err == nil && avatar != nil {
		url, err := h.storeAvatar(c, user, avatar)
		if err != nil {
			return err
		}
		changes.Avatar = &url
	}

	if changes.Username == nil && changes.Email == nil && changes.Avatar == nil {
		// Nothing changed; rotate nothing, return current state.
		return c.JSON(http.StatusOK, profileapi.UpdateResult{
			AuthToken: strings.TrimPrefix(c.Request().Header.Get(echo.HeaderAuthorization), "Bearer "),
			Payload:   toWireProfile(user),
		})
	}

	updated, token, err := h.users.UpdateProfile(c.Request().Context(), user.ID.String(), changes)
	if err != nil {
		if err == domain.ErrNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		h.logger.Error("profile update failed", "userID", user.ID.String(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not update profile")
	}

	return c.JSON(http.StatusOK, profileapi.UpdateResult{
		AuthToken: token,
		Payload:   toWireProfile(updated),
	})
}

// DeleteUser permanently removes the account, its avatar metadata, and the
// user record. Stored avatar content is removed best-effort.
func (h *APIHandler) DeleteUser(c echo.Context) error {
	user := c.Get(middleware.UserContextKey).(*domain.User)
	if c.Param("id") != user.ID.String() {
		return echo.NewHTTPError(http.StatusForbidden, "cannot delete another user's account")
	}

	ctx := c.Request().Context()
	if err := h.files.DeleteByUser(ctx, user.ID); err != nil {
		h.logger.Error("failed to delete avatar records", "userID", user.ID.String(), "error", err)
	}
	if err := h.users.Delete(ctx, user.ID.String()); err != nil {
		h.logger.Error("account deletion failed", "userID", user.ID.String(), "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "could not delete account")
	}

	return c.NoContent(http.StatusNoContent)
}

// storeAvatar saves the uploaded image and records its metadata, returning
// the public URL for the stored file.
func (h *APIHandler) storeAvatar(c echo.Context, user *domain.User, header *multipart.FileHeader) (string, error) {
	if header.Size > h.maxUploadBytes {
		return "", echo.NewHTTPError(http.StatusRequestEntityTooLarge, "avatar image too large")
	}

	src, err := header.Open()
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "could not read uploaded file")
	}
	defer src.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	mimeType := header.Header.Get(echo.HeaderContentType)
	if mimeType == "" {
		mimeType = mime.TypeByExtension(ext)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return "", echo.NewHTTPError(http.StatusUnsupportedMediaType, "avatar must be an image")
	}

	storagePath := fmt.Sprintf("avatars/%s%s", uuid.NewString(), ext)
	size, err := h.store.Save(c.Request().Context(), storagePath, src)
	if err != nil {
		h.logger.Error("failed to store avatar", "userID", user.ID.String(), "error", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "could not store avatar")
	}

	record := &domain.File{
		UserID:      user.ID,
		Filename:    header.Filename,
		MIMEType:    mimeType,
		Size:        size,
		StoragePath: storagePath,
	}
	if err := record.Validate(); err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, "invalid avatar upload")
	}
	if _, err := h.files.Create(c.Request().Context(), record); err != nil {
		h.logger.Error("failed to record avatar metadata", "userID", user.ID.String(), "error", err)
		return "", echo.NewHTTPError(http.StatusInternalServerError, "could not store avatar")
	}

	return "/files/" + storagePath, nil
}

// ServeAvatar streams a stored avatar image.
func (h *APIHandler) ServeAvatar(c echo.Context) error {
	name := c.Param("name")
	if name == "" || strings.ContainsAny(name, "/\\") || strings.Contains(name, "..") {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid file name")
	}

	f, err := h.store.Open(c.Request().Context(), "avatars/"+name)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "file not found")
	}
	defer f.Close()

	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	return c.Stream(http.StatusOK, mimeType, f)
}

// toWireProfile converts a stored user into its API representation.
func toWireProfile(user *domain.User) profileapi.Profile {
	p := profileapi.Profile{
		Username: user.Username,
		Email:    user.Email,
		Avatar:   user.Avatar,
	}
	if user.ID != nil {
		p.ID = user.ID.String()
	}
	return p
}
