package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/gophchat/internal/common"
	"github.com/dmitrijs2005/gophchat/internal/server/models"
	"github.com/dmitrijs2005/gophchat/internal/server/services"
	"github.com/julienschmidt/httprouter"
)

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req submitRequest
	if problem := s.decode(w, r, &req); problem != "" {
		writeText(w, http.StatusBadRequest, problem)
		return
	}

	_, err := s.users.Register(r.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	switch {
	case err == nil:
		writeText(w, http.StatusCreated, "User registered successfully")
	case errors.Is(err, common.ErrorAlreadyExists):
		writeText(w, http.StatusConflict, "User already exists")
	default:
		s.logger.Error(r.Context(), "register", "error", err)
		writeText(w, http.StatusInternalServerError, "Server error")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if problem := s.decode(w, r, &req); problem != "" {
		writeText(w, http.StatusBadRequest, problem)
		return
	}

	res, err := s.users.Login(r.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusOK, loginResponse{Token: res.Token, User: res.User})
	case errors.Is(err, common.ErrorNotFound):
		writeText(w, http.StatusNotFound, "User not found")
	case errors.Is(err, common.ErrorInvalidCredentials):
		writeText(w, http.StatusUnauthorized, "Invalid credentials")
	default:
		s.logger.Error(r.Context(), "login", "error", err)
		writeText(w, http.StatusInternalServerError, "Server error")
	}
}

// handleLogout always succeeds. A valid bearer token, if presented, is revoked.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if token, ok := bearerToken(r); ok {
		claims, err := s.users.Authenticate(r.Context(), token)
		if err == nil {
			err = s.users.Logout(r.Context(), claims)
		}
		if err != nil {
			s.logger.Debug(r.Context(), "logout without revocation", "error", err)
		}
	}
	s.writeJSON(w, r, http.StatusOK, messageResponse{Message: "Logout successful"})
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := ClaimsFromContext(r.Context())

	users, err := s.users.ListOthers(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error(r.Context(), "list users", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Server error"})
		return
	}
	if users == nil {
		users = []*models.User{}
	}
	s.writeJSON(w, r, http.StatusOK, users)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := s.users.GetUser(r.Context(), ps.ByName("id"))
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusOK, user)
	case errors.Is(err, common.ErrorNotFound):
		writeText(w, http.StatusNotFound, "User not found")
	default:
		s.logger.Error(r.Context(), "get user", "error", err)
		writeText(w, http.StatusInternalServerError, "Server error")
	}
}

func (s *Server) handleAvatarUpload(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	claims, _ := ClaimsFromContext(r.Context())

	key, url, err := s.users.AvatarUploadURL(r.Context(), claims.UserID)
	if err != nil {
		s.logger.Error(r.Context(), "avatar upload url", "user_id", claims.UserID, "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Server error"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, avatarUploadResponse{Key: key, URL: url})
}

func (s *Server) handleAvatarDownload(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	url, err := s.users.AvatarDownloadURL(r.Context(), ps.ByName("id"))
	switch {
	case err == nil:
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
	case errors.Is(err, common.ErrorNotFound):
		s.writeJSON(w, r, http.StatusNotFound, errorResponse{Error: "Avatar not found"})
	default:
		s.logger.Error(r.Context(), "avatar download url", "error", err)
		s.writeJSON(w, r, http.StatusInternalServerError, errorResponse{Error: "Server error"})
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	s.writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
