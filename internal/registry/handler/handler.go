package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"xcmkit/internal/registry"
	"xcmkit/internal/registry/models"
	"xcmkit/internal/xcm"
	dErrors "xcmkit/pkg/domain-errors"
	"xcmkit/pkg/platform/audit"
	"xcmkit/pkg/platform/httputil"
	"xcmkit/pkg/platform/sentinel"
	"xcmkit/pkg/requestcontext"
)

// Registry is the registry surface exposed over HTTP.
type Registry interface {
	Chain(specName string) (models.ChainInfo, error)
	ForeignAssetLocations(ctx context.Context, specName string) ([]registry.ForeignAsset, error)
	CacheForeignAsset(ctx context.Context, specName, symbol string, loc xcm.Location) error
}

// Handler serves registry reads and the admin foreign-asset write.
type Handler struct {
	registry Registry
	auditor  audit.Emitter
	logger   *slog.Logger
}

// New constructs a registry handler. auditor may be nil.
func New(reg Registry, auditor audit.Emitter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{registry: reg, auditor: auditor, logger: logger}
}

// Register mounts the public registry endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Get("/v1/registry/chains/{specName}", h.HandleGetChain)
}

// RegisterAdmin mounts admin endpoints. Callers wrap r in the admin guard.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/admin/registry/foreign-assets", h.HandleCacheForeignAsset)
}

// HandleGetChain handles GET /v1/registry/chains/{specName}.
func (h *Handler) HandleGetChain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	specName := strings.TrimSpace(chi.URLParam(r, "specName"))

	info, err := h.registry.Chain(specName)
	if err != nil {
		httputil.WriteError(w, translate(err, specName))
		return
	}
	foreign, err := h.registry.ForeignAssetLocations(ctx, specName)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list foreign assets",
			"request_id", requestcontext.RequestID(ctx),
			"spec_name", specName,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "foreign asset cache unavailable"))
		return
	}
	resp, err := FromChain(info, foreign)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render chain"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleCacheForeignAsset handles POST /admin/registry/foreign-assets.
func (h *Handler) HandleCacheForeignAsset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CacheForeignAssetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if _, err := h.registry.Chain(req.SpecName); err != nil {
		httputil.WriteError(w, translate(err, req.SpecName))
		return
	}

	loc := req.ParsedLocation()
	if err := h.registry.CacheForeignAsset(ctx, req.SpecName, req.Symbol, loc); err != nil {
		h.logger.ErrorContext(ctx, "failed to cache foreign asset",
			"request_id", requestID,
			"spec_name", req.SpecName,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to cache foreign asset"))
		return
	}

	actor := requestcontext.AdminSubject(ctx)
	h.emit(ctx, audit.Event{
		Action:    string(audit.EventForeignAssetCached),
		RequestID: requestID,
		ActorID:   actor,
		Subject:   req.SpecName,
		Reason:    req.Symbol + " " + loc.String(),
	})
	h.logger.InfoContext(ctx, "foreign asset cached",
		"request_id", requestID,
		"actor", actor,
		"spec_name", req.SpecName,
		"symbol", req.Symbol,
	)

	rendered, err := renderLocation(loc)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "failed to render location"))
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, ForeignAssetResponse{Symbol: req.Symbol, Location: rendered})
}

func (h *Handler) emit(ctx context.Context, event audit.Event) {
	if h.auditor == nil {
		return
	}
	if err := h.auditor.Emit(ctx, event); err != nil {
		h.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func translate(err error, specName string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Newf(dErrors.CodeNotFound, "chain %q is not registered", specName)
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "registry lookup failed")
}

// renderLocation renders loc in the V4 shape, which accepts every network id.
func renderLocation(loc xcm.Location) (json.RawMessage, error) {
	a, err := xcm.AdapterFor(xcm.V4)
	if err != nil {
		return nil, err
	}
	return a.MarshalLocation(loc)
}
