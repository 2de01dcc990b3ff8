package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/julienschmidt/httprouter"
)

// handleHistory lists both directions of a conversation, oldest first.
// ?viewer=<id> leaves out what that user hid.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	msgs, err := s.messages.History(r.Context(), ps.ByName("userId"), ps.ByName("peerId"), r.URL.Query().Get("viewer"))
	if err != nil {
		s.logger.Error(r.Context(), "history", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Failed to fetch messages"})
		return
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	s.writeJSON(w, r, http.StatusOK, msgs)
}

func (s *Server) handleDeleteMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, _ := ClaimsFromContext(r.Context())
	s.writeMessageResult(w, r, s.messages.Delete(r.Context(), ps.ByName("id"), claims.UserID))
}

func (s *Server) handleHideMessage(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	claims, _ := ClaimsFromContext(r.Context())
	s.writeMessageResult(w, r, s.messages.Hide(r.Context(), ps.ByName("id"), claims.UserID))
}

func (s *Server) writeMessageResult(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusOK, successResponse{Success: true})
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Message not found"})
	case errors.Is(err, common.ErrorForbidden):
		s.writeJSON(w, r, http.StatusForbidden, errorResponse{Error: "Forbidden"})
	default:
		s.logger.Error(r.Context(), "message update", "path", r.URL.Path, "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Server error"})
	}
}
