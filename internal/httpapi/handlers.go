// Package httpapi exposes a board session over HTTP for a local
// presentation layer.
package httpapi

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/roach88/kanban/internal/board"
	"github.com/roach88/kanban/internal/gesture"
	"github.com/roach88/kanban/internal/session"
)

const postEventsMaxSize = 1 << 20

// Register wires up all API routes on the provided Echo instance.
// s is usually a *session.Manager.
func Register(e *echo.Echo, s gesture.Target, logger *log.Logger) {
	e.GET("/api/board", getBoard(s))
	e.POST("/api/events", postEvents(s, logger))
	e.GET("/healthz", healthz())
}

type errorBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	TaskID   string `json:"taskId,omitempty"`
	ColumnID string `json:"columnId,omitempty"`
}

type eventsResponse struct {
	Applied int          `json:"applied"`
	TaskIDs []string     `json:"taskIds"`
	Board   *board.Board `json:"board"`
	Error   *errorBody   `json:"error,omitempty"`
}

func healthz() echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}
}

func getBoard(s gesture.Target) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, s.Board())
	}
}

func postEvents(s gesture.Target, logger *log.Logger) echo.HandlerFunc {
	dispatcher := gesture.NewDispatcher(s, logger)
	return func(c echo.Context) error {
		lr := io.LimitReader(c.Request().Body, postEventsMaxSize)
		events, err := gesture.DecodeEvents(lr)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorBody{Code: "INPUT", Message: "invalid body"})
		}

		outcomes, err := dispatcher.DispatchAll(c.Request().Context(), events)
		resp := eventsResponse{TaskIDs: make([]string, 0, len(outcomes)), Board: s.Board()}
		for _, out := range outcomes {
			if out.Applied {
				resp.Applied++
			}
			resp.TaskIDs = append(resp.TaskIDs, out.TaskID)
		}
		if err == nil {
			return c.JSON(http.StatusOK, resp)
		}

		status, body := describe(err)
		if status == http.StatusInternalServerError {
			logger.WithError(err).Error("events request failed")
		}
		resp.Error = body
		return c.JSON(status, resp)
	}
}

// describe maps an error to its HTTP status and response body.
func describe(err error) (int, *errorBody) {
	var be *board.Error
	if errors.As(err, &be) {
		body := &errorBody{Code: string(be.Code), Message: err.Error(), TaskID: be.TaskID, ColumnID: be.ColumnID}
		switch be.Code {
		case board.CodeNotFound:
			return http.StatusNotFound, body
		case board.CodeConflict:
			return http.StatusConflict, body
		default:
			return http.StatusBadRequest, body
		}
	}
	if session.IsPersistError(err) {
		return http.StatusInternalServerError, &errorBody{Code: "STORAGE", Message: err.Error()}
	}
	return http.StatusInternalServerError, &errorBody{Code: "INTERNAL", Message: err.Error()}
}
