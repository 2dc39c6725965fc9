package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"xcmkit/internal/directive"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/httputil"
	"xcmkit/pkg/requestcontext"
)

// Service defines the directive operations the handler exposes.
type Service interface {
	BuildTransferDirective(ctx context.Context, req directive.Request) (*directive.TransferDirective, error)
	Encode(ctx context.Context, req directive.Request) (*directive.Encoded, error)
	Classify(ctx context.Context, origin, destination string) (*directive.Classification, error)
}

// Handler wires directive endpoints to the directive service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a directive handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts directive endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/v1/directives", h.HandleBuild)
	r.Post("/v1/directives/encode", h.HandleEncode)
	r.Get("/v1/directions", h.HandleClassify)
}

// HandleBuild handles POST /v1/directives requests.
func (h *Handler) HandleBuild(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[BuildRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	d, err := h.service.BuildTransferDirective(ctx, req.ToDomain())
	if err != nil {
		h.logFailure(ctx, "directive build failed", requestID, req, err)
		httputil.WriteError(w, err)
		return
	}
	rendered, err := d.Render()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render directive"))
		return
	}

	h.logger.InfoContext(ctx, "directive built",
		"request_id", requestID,
		"origin", req.Origin,
		"dest", req.Destination,
		"direction", d.Direction,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, rendered)
}

// HandleEncode handles POST /v1/directives/encode requests.
func (h *Handler) HandleEncode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[BuildRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	enc, err := h.service.Encode(ctx, req.ToDomain())
	if err != nil {
		h.logFailure(ctx, "directive encode failed", requestID, req, err)
		httputil.WriteError(w, err)
		return
	}
	rendered, err := enc.Directive.Render()
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render directive"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromEncoded(rendered, enc.CallArgs))
}

// HandleClassify handles GET /v1/directions?origin=&dest= requests.
func (h *Handler) HandleClassify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	origin := strings.TrimSpace(r.URL.Query().Get("origin"))
	dest := strings.TrimSpace(r.URL.Query().Get("dest"))
	if origin == "" || dest == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "origin and dest query parameters are required"))
		return
	}

	c, err := h.service.Classify(ctx, origin, dest)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromClassification(c))
}

func (h *Handler) logFailure(ctx context.Context, msg, requestID string, req *BuildRequest, err error) {
	level := slog.LevelWarn
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal || code == dErrors.CodeUnavailable {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"origin", req.Origin,
		"dest", req.Destination,
		"error", err,
	)
}
