package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"taleweaver/internal/game/director"
	"taleweaver/internal/session"
	"taleweaver/internal/storage"
)

var errBadRequest = errors.New("bad request")

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func handleError(c *gin.Context, err error) {
	var status int
	var resp ErrorResponse

	switch {
	case errors.Is(err, session.ErrNotFound):
		status, resp = http.StatusNotFound, ErrorResponse{Code: "session_not_found", Message: "Session not found"}
	case errors.Is(err, storage.ErrNotFound):
		status, resp = http.StatusNotFound, ErrorResponse{Code: "story_not_found", Message: "Story not found"}
	case errors.Is(err, director.ErrWrongStage):
		status, resp = http.StatusConflict, ErrorResponse{Code: "wrong_stage", Message: err.Error()}
	case errors.Is(err, director.ErrChoiceOutOfRange),
		errors.Is(err, director.ErrEmptyAction),
		errors.Is(err, director.ErrEmptyGenre),
		errors.Is(err, storage.ErrInvalidKey),
		errors.Is(err, errBadRequest):
		status, resp = http.StatusBadRequest, ErrorResponse{Code: "bad_request", Message: err.Error()}
	default:
		_ = c.Error(err)
		status, resp = http.StatusInternalServerError, ErrorResponse{Code: "internal", Message: "An unexpected internal error occurred"}
	}

	c.AbortWithStatusJSON(status, resp)
}
