package handler

import (
	"net/http"

	"github.com/chatly/chatweb/internal/flash"
	"github.com/chatly/chatweb/internal/middleware"
	"github.com/chatly/chatweb/internal/view"
)

// ChatsHandler serves the signed-in landing page.
type ChatsHandler struct {
	notices *flash.Notices
}

// NewChatsHandler creates a new ChatsHandler.
func NewChatsHandler(notices *flash.Notices) *ChatsHandler {
	return &ChatsHandler{notices: notices}
}

// HandleChats handles GET /chats requests. It must run behind
// middleware.RequireSession.
func (h *ChatsHandler) HandleChats(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	render(w, r, http.StatusOK, view.ChatsPage(user, readNotice(h.notices, w, r)))
}
