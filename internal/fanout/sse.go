package fanout

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/appetiteclub/tableside/internal/auth"
	"github.com/aquamarinepk/aqm"
	"github.com/go-chi/chi/v5"
)

const (
	maxChannelsPerStream = 8
	defaultKeepalive     = 30 * time.Second
)

// SSEHandler streams hub events to browsers. Order channels are open to the
// customer holding the order id; branch channels need staff or owner access.
type SSEHandler struct {
	hub       *Hub
	resolver  auth.ActorResolver
	logger    aqm.Logger
	buffer    int
	keepalive time.Duration
}

func NewSSEHandler(hub *Hub, resolver auth.ActorResolver, buffer int, logger aqm.Logger) *SSEHandler {
	if logger == nil {
		logger = aqm.NewNoopLogger()
	}
	return &SSEHandler{
		hub:       hub,
		resolver:  resolver,
		logger:    logger,
		buffer:    buffer,
		keepalive: defaultKeepalive,
	}
}

func (h *SSEHandler) RegisterRoutes(r chi.Router) {
	r.Get("/events", h.ServeHTTP)
}

// ServeHTTP handles GET /events?channel=order:<id>&channel=branch:<id>
func (h *SSEHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	channels := r.URL.Query()["channel"]
	if len(channels) == 0 {
		aqm.RespondError(w, http.StatusBadRequest, "At least one channel is required")
		return
	}
	if len(channels) > maxChannelsPerStream {
		aqm.RespondError(w, http.StatusBadRequest, "Too many channels")
		return
	}

	var actor *auth.Actor
	for _, channel := range channels {
		kind, id, ok := ParseChannel(channel)
		if !ok {
			aqm.RespondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid channel %q", channel))
			return
		}
		if kind != "branch" {
			continue
		}

		if actor == nil {
			resolved, err := h.resolveActor(r)
			if err != nil {
				aqm.RespondError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			actor = &resolved
		}
		if !actor.CanAccessBranch(id) {
			aqm.RespondError(w, http.StatusForbidden, "Forbidden")
			return
		}
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		aqm.RespondError(w, http.StatusInternalServerError, "Streaming unsupported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	sub := NewSubscriber(h.buffer)
	for _, channel := range channels {
		h.hub.Subscribe(channel, sub)
	}
	defer h.hub.Remove(sub)

	h.logger.Info("new SSE connection", "subscriber_id", sub.ID, "channels", strings.Join(channels, ","))

	fmt.Fprintf(w, ": connected\n\n")
	fmt.Fprintf(w, "retry: 2000\n\n")
	flusher.Flush()

	ticker := time.NewTicker(h.keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			h.logger.Info("SSE client disconnected", "subscriber_id", sub.ID)
			return

		case <-ticker.C:
			fmt.Fprintf(w, ": keepalive\n\n")
			flusher.Flush()

		case evt, ok := <-sub.C:
			if !ok {
				return
			}
			writeSSEEvent(w, evt.Type, string(evt.Payload))
			flusher.Flush()
		}
	}
}

func (h *SSEHandler) resolveActor(r *http.Request) (auth.Actor, error) {
	if h.resolver == nil {
		return auth.Actor{}, auth.ErrMissingToken
	}
	return h.resolver.Resolve(r)
}

// writeSSEEvent prefixes every line of data with "data: " as the event
// stream format requires.
func writeSSEEvent(w http.ResponseWriter, eventType, data string) {
	fmt.Fprintf(w, "event: %s\n", eventType)
	for _, line := range strings.Split(strings.TrimSpace(data), "\n") {
		fmt.Fprintf(w, "data: %s\n", line)
	}
	fmt.Fprintf(w, "\n")
}
