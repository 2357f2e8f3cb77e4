package transport

import (
	"errors"
	"net/http"

	"coastal-mart/internal/domain"
	"coastal-mart/internal/middleware"
	"coastal-mart/internal/repository"
	"coastal-mart/internal/service"
)

// respondServiceError maps a service-layer error onto an HTTP status and
// writes the structured error envelope. Every handler funnels its service
// errors through here so the mapping stays in one place.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrMissingAddress),
		errors.Is(err, service.ErrAlreadyApproved),
		errors.Is(err, service.ErrOrderNotApproved),
		errors.Is(err, service.ErrProofRequired),
		errors.Is(err, service.ErrResetTokenExpired),
		errors.Is(err, repository.ErrInsufficientStock),
		errors.Is(err, repository.ErrResetTokenNotFound),
		errors.Is(err, repository.ErrResetTokenUsed):
		middleware.RespondWithError(w, http.StatusBadRequest, err.Error())

	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		middleware.RespondWithError(w, http.StatusUnauthorized, err.Error())

	case errors.Is(err, service.ErrForbidden):
		middleware.RespondWithError(w, http.StatusForbidden, err.Error())

	case errors.Is(err, repository.ErrProductNotFound),
		errors.Is(err, repository.ErrUserNotFound),
		errors.Is(err, repository.ErrOrderNotFound),
		errors.Is(err, repository.ErrCartItemNotFound):
		middleware.RespondWithError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, repository.ErrProductAlreadyExists),
		errors.Is(err, repository.ErrUserAlreadyExists):
		middleware.RespondWithError(w, http.StatusConflict, err.Error())

	default:
		middleware.RespondWithError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeRequest decodes and validates a JSON body, writing the error
// response itself. Returns false when the handler should bail out.
func decodeRequest(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := middleware.DecodeAndValidate(r, dst); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// actorFromContext pulls the authenticated actor, answering 401 when the
// auth middleware did not run or rejected the token.
func actorFromContext(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, found := middleware.GetActor(r.Context())
	if !found {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return domain.Actor{}, false
	}
	return actor, true
}
