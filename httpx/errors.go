package httpx

import (
	"fmt"
	"net/http"

	"github.com/go-chi/render"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-forms/draft"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/repository"
	"github.com/mbolis/quick-forms/respond"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// ValidationBody is sent with status 422 when answers are missing or invalid.
type ValidationBody struct {
	Error   string   `json:"error"`
	Missing []string `json:"missing,omitempty"`
	Step    int      `json:"step"`
}

var badRequest = []error{
	draft.ErrInvalidKind,
	draft.ErrEmptyOptions,
	draft.ErrNotPermutation,
	draft.ErrLastOption,
	draft.ErrOptionIndex,
	draft.ErrNotSaved,
	draft.ErrNoQuestions,
	respond.ErrUnknownQuestion,
	respond.ErrStepRange,
}

// Will pick the HTTP status matching err, log it under code, and send the response.
// Storage and unexpected errors become a 500 with default text.
func LogError(w http.ResponseWriter, r *http.Request, code string, err error) {
	var verr *respond.ValidationError
	switch {
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, draft.ErrUnknownQuestion):
		LogNotFound(w, code, err)
	case errors.As(err, &verr):
		log.Debugf("%s: %s", code, verr)
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, ValidationBody{Error: verr.Error(), Missing: verr.Missing, Step: verr.Step})
	case isBadRequest(err):
		LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, code, "%s", err)
	default:
		LogInternalError(w, code, err)
	}
}

func isBadRequest(err error) bool {
	for _, target := range badRequest {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
