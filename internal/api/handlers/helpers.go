package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"

	"github.com/pulsesocial/pulse/internal/api/middleware"
	"github.com/pulsesocial/pulse/internal/pkg/errors"
	"github.com/pulsesocial/pulse/internal/pkg/utils"
	"github.com/pulsesocial/pulse/internal/pkg/validator"
)

const maxBodyBytes = 1 << 20

// requireAccountID reads the authenticated account, writing a 401 when
// the request carries none.
func requireAccountID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := middleware.GetAccountID(r)
	if !ok || id == 0 {
		utils.WriteError(w, errors.Unauthorized("Authentication required"))
		return 0, false
	}
	return id, true
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the error response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, val *validator.Validator, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case stderrors.As(err, &tooLarge):
			utils.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, errors.ErrCodeBadRequest, "Request body too large")
		case stderrors.Is(err, io.EOF):
			utils.WriteError(w, errors.BadRequest("Request body is required"))
		default:
			utils.WriteError(w, errors.BadRequest("Invalid request body"))
		}
		return false
	}

	if validationErrs := val.Validate(dst); len(validationErrs) > 0 {
		utils.WriteError(w, errors.ValidationError("Validation failed", validationErrs))
		return false
	}
	return true
}
