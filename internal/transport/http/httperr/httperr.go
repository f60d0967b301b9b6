package httperr

import (
	"errors"
	"net/http"

	"github.com/IgorGrieder/shortlink/internal/apperr"
	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/logger"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"go.uber.org/zap"
)

// Write maps an apperr kind onto the API error envelope.
// Internal causes are logged and never echoed to the client.
func Write(w http.ResponseWriter, r *http.Request, err error) {
	httputils.WriteAPIError(w, r, APIErrorFor(w, err))
}

// APIErrorFor picks the envelope for err. Rate-limit errors also set Retry-After on w.
func APIErrorFor(w http.ResponseWriter, err error) constants.APIError {
	switch apperr.KindOf(err) {
	case apperr.Validation:
		switch {
		case errors.Is(err, links.ErrInvalidURL):
			return constants.ErrValidation.WithMessage(constants.MsgInvalidURL)
		case errors.Is(err, links.ErrInvalidAlias):
			return constants.ErrValidation.WithMessage(constants.MsgInvalidAlias)
		case errors.Is(err, links.ErrExpiryInPast):
			return constants.ErrValidation.WithMessage(constants.MsgExpiryInPast)
		}
		return constants.ErrValidation
	case apperr.NotFound:
		return constants.ErrLinkNotFound
	case apperr.Conflict:
		if errors.Is(err, links.ErrCodeSpaceExhausted) {
			return constants.ErrCodeSpaceExhausted
		}
		return constants.ErrAliasTaken
	case apperr.RateLimited:
		httputils.SetRetryAfter(w, apperr.RetryAfterOf(err))
		return constants.ErrRateLimited
	case apperr.Unauthorized:
		return constants.ErrUnauthorized
	default:
		logger.Error("request failed", zap.Error(err), zap.String("op", apperr.OpOf(err)))
		return constants.ErrInternalError
	}
}
