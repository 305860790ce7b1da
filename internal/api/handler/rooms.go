package handler

import (
	"net/http"
	"strings"

	"roompad/backend/internal/config"
	"roompad/backend/internal/rooms"

	"github.com/gin-gonic/gin"
)

type createRoomRequest struct {
	Slug      *string  `json:"slug"`
	Content   *string  `json:"content"`
	Password  *string  `json:"password"`
	ExpiresIn *float64 `json:"expiresIn"`
}

type updateRoomRequest struct {
	Content      *string `json:"content"`
	Password     *string `json:"password"`
	LockPassword *string `json:"lockPassword"`
	IsPrivate    *bool   `json:"isPrivate"`
}

type verifyRoomRequest struct {
	Password *string `json:"password"`
}

// GetRoom returns a room, creating it on first visit.
func (h *Handler) GetRoom(c *gin.Context) {
	slug, ok := pathSlug(c)
	if !ok {
		return
	}

	room, err := h.Rooms.Read(c.Request.Context(), slug, credentialFrom(c, nil), c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room.View())
}

// CreateRoom creates a room under a requested or generated slug.
func (h *Handler) CreateRoom(c *gin.Context) {
	var req createRoomRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	in := rooms.CreateInput{
		Slug:      deref(req.Slug),
		Content:   deref(req.Content),
		Password:  deref(req.Password),
		ExpiresIn: req.ExpiresIn,
		IP:        c.ClientIP(),
	}
	if req.Slug != nil {
		if err := rooms.ValidateSlug(in.Slug); err != nil {
			writeError(c, err)
			return
		}
	}

	room, err := h.Rooms.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room.View())
}

// UpdateRoom applies a partial update to an existing room.
func (h *Handler) UpdateRoom(c *gin.Context) {
	slug, ok := pathSlug(c)
	if !ok {
		return
	}

	var req updateRoomRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}

	patch := rooms.Patch{
		Content:      req.Content,
		LockPassword: req.LockPassword,
		IsPrivate:    req.IsPrivate,
	}
	room, err := h.Rooms.Write(c.Request.Context(), slug, patch, credentialFrom(c, req.Password))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, room.View())
}

// VerifyRoom checks a password without returning content. A granted private
// room also yields an access token.
func (h *Handler) VerifyRoom(c *gin.Context) {
	slug, ok := pathSlug(c)
	if !ok {
		return
	}

	var req verifyRoomRequest
	if err := bindJSON(c, &req); err != nil {
		writeError(c, err)
		return
	}
	if req.Password == nil {
		writeError(c, &rooms.ValidationError{Field: "password", Message: "Required"})
		return
	}

	result, err := h.Rooms.Verify(c.Request.Context(), slug, *req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	if !result.Granted {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "message": "Invalid password"})
		return
	}

	resp := gin.H{"success": true}
	if result.Token != "" {
		resp["token"] = result.Token
	}
	c.JSON(http.StatusOK, resp)
}

func pathSlug(c *gin.Context) (string, bool) {
	slug := c.Param("slug")
	if err := rooms.ValidateSlug(slug); err != nil {
		writeError(c, err)
		return "", false
	}
	return slug, true
}

// credentialFrom collects what the caller presented: a non-empty body
// password, else the password header, plus any bearer token. Empty values
// count as absent.
func credentialFrom(c *gin.Context, bodyPassword *string) rooms.Credential {
	var cred rooms.Credential
	switch {
	case bodyPassword != nil && *bodyPassword != "":
		cred.Password = bodyPassword
	case c.GetHeader(config.PasswordHeader) != "":
		header := c.GetHeader(config.PasswordHeader)
		cred.Password = &header
	}
	cred.Token = bearerToken(c)
	return cred
}

func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	const prefix = "Bearer "
	if len(auth) > len(prefix) && strings.EqualFold(auth[:len(prefix)], prefix) {
		return strings.TrimSpace(auth[len(prefix):])
	}
	return ""
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
