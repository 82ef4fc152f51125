package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"llmjobs/internal/jobstore"
	"llmjobs/internal/provider"
	"llmjobs/internal/translator"
)

type requestError struct {
	Status int
	Detail string
}

func (e requestError) Error() string {
	return e.Detail
}

type errorBody struct {
	Detail string `json:"detail"`
}

func detailErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var reqErr requestError
		if errors.As(err, &reqErr) {
			writeError(c, log, reqErr.Status, reqErr.Detail)
			return
		}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			writeError(c, log, he.Code, fmt.Sprint(he.Message))
			return
		}

		writeError(c, log, http.StatusInternalServerError, err.Error())
	}
}

func writeError(c echo.Context, log zerolog.Logger, status int, detail string) {
	var err error
	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, errorBody{Detail: detail})
	}
	if err != nil {
		log.Error().Err(err).Msg("failed to write error response")
	}
}

// toHTTPError maps domain errors onto status codes. Upstream failures are
// not classified further: every one becomes a 500 carrying the cause.
func toHTTPError(err error) error {
	var reqErr requestError
	if errors.As(err, &reqErr) {
		return reqErr
	}

	switch {
	case errors.Is(err, translator.ErrEmptyContent):
		return requestError{Status: http.StatusUnprocessableEntity, Detail: err.Error()}
	case errors.Is(err, jobstore.ErrNotFound):
		return requestError{Status: http.StatusNotFound, Detail: "Job not found"}
	case provider.IsUpstream(err):
		return requestError{Status: http.StatusInternalServerError, Detail: err.Error()}
	default:
		return requestError{Status: http.StatusInternalServerError, Detail: err.Error()}
	}
}
