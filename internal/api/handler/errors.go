package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"roompad/backend/internal/rooms"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// writeError maps service errors onto the HTTP contract. Unclassified errors
// are logged and answered without detail.
func writeError(c *gin.Context, err error) {
	var vErr *rooms.ValidationError
	switch {
	case errors.As(err, &vErr):
		body := gin.H{"message": vErr.Message}
		if vErr.Field != "" {
			body["field"] = vErr.Field
		}
		c.JSON(http.StatusBadRequest, body)
	case errors.Is(err, rooms.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Room not found"})
	case errors.Is(err, rooms.ErrCredentialRequired):
		c.JSON(http.StatusForbidden, gin.H{"isPrivate": true, "message": "Password required"})
	case errors.Is(err, rooms.ErrInvalidCredential):
		c.JSON(http.StatusForbidden, gin.H{"isPrivate": true, "message": "Invalid password"})
	case errors.Is(err, rooms.ErrSlugTaken):
		c.JSON(http.StatusConflict, gin.H{"message": "Slug already exists"})
	case errors.Is(err, rooms.ErrAllocationExhausted):
		logrus.WithError(err).Error("Slug allocation exhausted")
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate unique slug"})
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request failed")
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
	}
}

// bindJSON decodes the request body into dst. An empty body leaves dst
// untouched. Decode failures come back as a ValidationError naming the
// offending field when the decoder reports one.
func bindJSON(c *gin.Context, dst interface{}) error {
	err := c.ShouldBindJSON(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return &rooms.ValidationError{
			Field:   typeErr.Field,
			Message: "expected " + typeErr.Type.String(),
		}
	}
	return &rooms.ValidationError{Message: "malformed JSON body"}
}
