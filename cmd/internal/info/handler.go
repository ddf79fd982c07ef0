// Package info serves the authenticated lookup endpoints: user and channel
// records by ID, channel message history over a time window, and channel
// creation. Every route sits behind the bearer-token gate.
package info

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"globchat/cmd/identity"
	"globchat/cmd/identity/ids"
	authapi "globchat/cmd/internal/auth/api"
	"globchat/cmd/internal/metrics"
)

const (
	maxBodyBytes = 64 << 10

	// maxMessagesPerQuery bounds one history response so an unbounded
	// window cannot dump the whole channel in a single body.
	maxMessagesPerQuery = 1000

	maxChannelNameLen = 128
)

// Handler serves the /info routes.
type Handler struct {
	log     *slog.Logger
	store   identity.Store
	ids     *ids.Snowflake
	gate    *authapi.Gate
	metrics *metrics.Set
}

// NewHandler constructs the info handler. m may be nil.
func NewHandler(log *slog.Logger, store identity.Store, gen *ids.Snowflake, gate *authapi.Gate, m *metrics.Set) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{log: log, store: store, ids: gen, gate: gate, metrics: m}
}

// Register wires the info routes onto the provided mux. The literal
// "create" segment wins over the {id} wildcard, so both can coexist.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /info/user/{id}", h.gate.Wrap(h.handleUser))
	mux.HandleFunc("GET /info/channel/{id}", h.gate.Wrap(h.handleChannel))
	mux.HandleFunc("GET /info/channel/{id}/messages", h.gate.Wrap(h.handleMessages))
	mux.HandleFunc("POST /info/channel/create", h.gate.Wrap(h.handleChannelCreate))
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return id, err == nil
}

func (h *Handler) handleUser(w http.ResponseWriter, r *http.Request, _ identity.User) {
	id, ok := pathID(r)
	if !ok {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid user id")
		return
	}

	user, err := h.store.FindUserByID(r.Context(), identity.UserID(id))
	if identity.IsNotFound(err) {
		authapi.WriteError(w, http.StatusNotFound, "user_not_found", "user not found")
		return
	}
	if err != nil {
		h.log.Error("info.user.store.fail", "err", err)
		authapi.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	authapi.WriteJSON(w, http.StatusOK, userResponse{
		Username:     user.Username,
		UserID:       user.ID,
		CreationTime: user.CreatedAt.Unix(),
	})
}

func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request, _ identity.User) {
	id, ok := pathID(r)
	if !ok {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid channel id")
		return
	}

	ch, err := h.store.FindChannelByID(r.Context(), identity.ChannelID(id))
	if identity.IsNotFound(err) {
		authapi.WriteError(w, http.StatusNotFound, "channel_not_found", "channel not found")
		return
	}
	if err != nil {
		h.log.Error("info.channel.store.fail", "err", err)
		authapi.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	authapi.WriteJSON(w, http.StatusOK, channelResponse{
		Name:         ch.Name,
		CreationTime: ch.CreatedAt.Unix(),
		Creator:      ch.CreatorID,
		ChannelID:    ch.ID,
	})
}

// handleMessages returns a channel's messages whose creation time falls in
// [from, to], both unix seconds. from is required; to defaults to unbounded.
func (h *Handler) handleMessages(w http.ResponseWriter, r *http.Request, _ identity.User) {
	id, ok := pathID(r)
	if !ok {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "invalid channel id")
		return
	}

	q := r.URL.Query()
	from, err := strconv.ParseInt(q.Get("from"), 10, 64)
	if err != nil {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "from must be a unix timestamp")
		return
	}

	query := identity.MessagesQuery{
		Channel: identity.ChannelID(id),
		From:    time.Unix(from, 0).UTC(),
		Limit:   maxMessagesPerQuery,
	}
	if raw := q.Get("to"); raw != "" {
		to, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			authapi.WriteError(w, http.StatusBadRequest, "bad_request", "to must be a unix timestamp")
			return
		}
		t := time.Unix(to, 0).UTC()
		query.To = &t
	}

	msgs, err := h.store.FindMessages(r.Context(), query)
	if err != nil {
		h.log.Error("info.messages.store.fail", "err", err, "channel_id", id)
		authapi.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, messageResponse{
			Contents:  m.Contents,
			Author:    m.AuthorID,
			Timestamp: m.CreatedAt.Unix(),
			MessageID: m.ID,
		})
	}
	authapi.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) handleChannelCreate(w http.ResponseWriter, r *http.Request, user identity.User) {
	var req channelCreateRequest
	if err := authapi.DecodeJSON(w, r, maxBodyBytes, &req); err != nil {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxChannelNameLen {
		authapi.WriteError(w, http.StatusBadRequest, "bad_request", "channel name required")
		return
	}

	ch := identity.Channel{
		ID:        identity.ChannelID(h.ids.Next()),
		Name:      name,
		CreatorID: user.ID,
		CreatedAt: time.Now().UTC(),
	}
	h.metrics.IDIssued()

	if err := h.store.InsertChannel(r.Context(), ch); err != nil {
		h.log.Error("info.channel.create.fail", "err", err)
		authapi.WriteError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("info.channel.create.ok", "channel_id", ch.ID, "creator", user.ID)
	authapi.WriteJSON(w, http.StatusOK, channelResponse{
		Name:         ch.Name,
		CreationTime: ch.CreatedAt.Unix(),
		Creator:      ch.CreatorID,
		ChannelID:    ch.ID,
	})
}
