package handler

import (
	"errors"
	"net/http"

	"inventario/internal/errs"
	"inventario/internal/middleware"
	"inventario/internal/model"
	"inventario/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, errs.ErrUnauthorized):
		status, code = http.StatusUnauthorized, "unauthorized"
		if _, ok := middleware.CurrentActor(c); ok {
			status, code = http.StatusForbidden, "forbidden"
		}
	case errors.Is(err, errs.ErrNotFound):
		status, code = http.StatusNotFound, "not_found"
	case errors.Is(err, errs.ErrInvalidReference):
		status, code = http.StatusUnprocessableEntity, "invalid_reference"
	case errors.Is(err, errs.ErrInvalidTransition):
		status, code = http.StatusConflict, "invalid_transition"
	case errors.Is(err, errs.ErrConflict):
		status, code = http.StatusConflict, "conflict"
	case errors.Is(err, errs.ErrValidation):
		status, code = http.StatusBadRequest, "validation"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		// details go to the request log, not the client
		_ = c.Error(err)
		msg = "internal server error"
	}
	c.JSON(status, response.ErrorWithCode(status, code, msg))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "validation", err.Error()))
}

// actor returns the authenticated caller; the zero Actor makes services answer ErrUnauthorized.
func actor(c *gin.Context) model.Actor {
	a, _ := middleware.CurrentActor(c)
	return a
}

// pathID parses the :id route parameter, answering 400 when malformed.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.ErrorWithCode(http.StatusBadRequest, "validation", "invalid id"))
		return uuid.Nil, false
	}
	return id, true
}
