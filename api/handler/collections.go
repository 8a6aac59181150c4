package handler

import (
	"net/http"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/api/transport"
	"github.com/sorayamlj/FocusTache/pkg/httpcontext"
	"github.com/sorayamlj/FocusTache/usecase/dashboard"
	sessionUC "github.com/sorayamlj/FocusTache/usecase/session"
)

// CollectionHandler serves the session, note and calendar read endpoints
// and session recording.
type CollectionHandler struct {
	baseHandler
	sessions *sessionUC.UseCase
	source   dashboard.Source
}

func NewCollectionHandler(sessions *sessionUC.UseCase, source dashboard.Source, adapter *httpcontext.Adapter, logger *zap.Logger) *CollectionHandler {
	return &CollectionHandler{
		baseHandler: newBaseHandler(adapter, logger),
		sessions:    sessions,
		source:      source,
	}
}

// @Summary List focus sessions
// @Tags sessions
// @Router /api/v1/sessions [get]
func (h *CollectionHandler) GetSessions(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}
	var since time.Time
	if raw := string(ctx.QueryArgs().Peek("since")); raw != "" {
		parsed, err := transport.ParseTime(raw)
		if err != nil {
			h.respondError(ctx, err)
			return
		}
		since = parsed
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	sessions, err := h.sessions.List(stdCtx, caller, since)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, "sessions", sessions, transport.ListMeta{Count: len(sessions)})
}

// @Summary Record focus session
// @Tags sessions
// @Router /api/v1/sessions [post]
func (h *CollectionHandler) RecordSession(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}
	var req transport.SessionRequest
	if !h.decode(ctx, &req) {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	session, err := h.sessions.Record(stdCtx, caller, req.TaskID, req.ElapsedSeconds)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, session)
}

// @Summary List notes
// @Tags notes
// @Router /api/v1/notes [get]
func (h *CollectionHandler) GetNotes(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	notes, err := h.source.Notes(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, "notes", notes, transport.ListMeta{Count: len(notes)})
}

// @Summary List calendar events
// @Tags calendar
// @Router /api/v1/calendar/events [get]
func (h *CollectionHandler) GetEvents(ctx *fasthttp.RequestCtx) {
	caller, ok := h.caller(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	events, err := h.source.Events(stdCtx, caller.Email)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondList(ctx, "events", events, transport.ListMeta{Count: len(events)})
}
