package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/IgorGrieder/shortlink/internal/config"
	"github.com/IgorGrieder/shortlink/internal/constants"
	"github.com/IgorGrieder/shortlink/internal/infrastructure/security"
	appvalidation "github.com/IgorGrieder/shortlink/internal/infrastructure/validation"
	"github.com/IgorGrieder/shortlink/internal/processing/analytics"
	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/IgorGrieder/shortlink/internal/transport/http/httperr"
	"github.com/IgorGrieder/shortlink/pkg/httputils"
	"github.com/go-playground/validator/v10"
)

const defaultClickTimeout = 2 * time.Second

type LinksHandler struct {
	cfg     *config.Config
	svc     *links.Service
	tracker *analytics.Tracker
	hasher  *security.IPHasher

	clickTimeout time.Duration
}

type LinksHandlerOptions struct {
	// ClickTimeout bounds the background enqueue of a click event.
	ClickTimeout time.Duration
}

func NewLinksHandler(cfg *config.Config, svc *links.Service, tracker *analytics.Tracker, hasher *security.IPHasher, opts LinksHandlerOptions) *LinksHandler {
	if opts.ClickTimeout <= 0 {
		opts.ClickTimeout = defaultClickTimeout
	}

	return &LinksHandler{
		cfg:          cfg,
		svc:          svc,
		tracker:      tracker,
		hasher:       hasher,
		clickTimeout: opts.ClickTimeout,
	}
}

type createLinkRequest struct {
	URL         string     `json:"url" validate:"required,notblank,http_url"`
	CustomAlias string     `json:"customAlias,omitempty" validate:"short_alias"`
	ExpiresAt   *time.Time `json:"expiresAt,omitempty" validate:"omitempty,future"`
}

type createLinkResponse struct {
	Code        string     `json:"code"`
	ShortURL    string     `json:"shortUrl"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *time.Time `json:"expiresAt"`
}

func (h *LinksHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputils.WriteAPIError(w, r, constants.ErrInvalidRequestBody)
		return
	}
	if err := appvalidation.Validate(req); err != nil {
		httputils.WriteAPIError(w, r, validationError(err))
		return
	}

	link, err := h.svc.CreateLink(r.Context(), links.CreateLinkInput{
		URL:             req.URL,
		CustomAlias:     req.CustomAlias,
		ExpiresAt:       req.ExpiresAt,
		RequesterIPHash: h.RequesterHash(r),
	})
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessLinkCreated, createLinkResponse{
		Code:        link.Code,
		ShortURL:    strings.TrimRight(h.cfg.Shortener.BaseURL, "/") + "/" + link.Code,
		OriginalURL: link.OriginalURL,
		ExpiresAt:   link.ExpiresAt,
	})
}

func (h *LinksHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")

	res, err := h.svc.Resolve(r.Context(), code)
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	ev := analytics.NewClickEvent(
		res.LinkID,
		time.Now().UTC(),
		r.Referer(),
		r.UserAgent(),
		h.RequesterHash(r),
		r.Header.Get("CF-IPCountry"),
	)
	h.tracker.TrackAsync(r.Context(), ev, h.clickTimeout)

	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Location", res.OriginalURL)
	w.WriteHeader(h.cfg.Shortener.RedirectStatus)
}

func (h *LinksHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.GetStats(r.Context(), r.PathValue("code"))
	if err != nil {
		httperr.Write(w, r, err)
		return
	}

	httputils.WriteAPISuccess(w, r, constants.SuccessStatsFound, stats)
}

// RequesterHash is the salted hash of the caller's IP. Raw addresses never
// leave the transport layer.
func (h *LinksHandler) RequesterHash(r *http.Request) string {
	return h.hasher.Hash(httputils.ClientIP(r, h.cfg.Server.TrustProxy))
}

func validationError(err error) constants.APIError {
	apiErr := constants.ErrValidation
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return apiErr
	}
	for _, e := range validationErrs {
		switch e.Field() {
		case "url":
			return apiErr.WithMessage(constants.MsgInvalidURL)
		case "customAlias":
			return apiErr.WithMessage(constants.MsgInvalidAlias)
		case "expiresAt":
			return apiErr.WithMessage(constants.MsgExpiryInPast)
		}
	}
	return apiErr
}
