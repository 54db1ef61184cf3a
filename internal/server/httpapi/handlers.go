package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avoronov/accountd/internal/common"
	"github.com/avoronov/accountd/internal/server/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
}

// userResponse is the public projection of a user record. Credential fields
// have no place here.
type userResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type messageResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
	Token   string `json:"token,omitempty"`
}

func toUserResponse(u *models.User) userResponse {
	return userResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *HTTPServer) register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "All fields are required"})
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "All fields are required"})
		case errors.Is(err, common.ErrorAlreadyExists):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "User already exists"})
		default:
			s.logger.Error(r.Context(), "registration failed", "error", err)
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "registration failed"})
		}
		return
	}

	s.logger.Info(r.Context(), "Registered", "username", user.Username)
	writeJSON(w, http.StatusCreated, messageResponse{Message: "User registered successfully", UserID: user.ID})
}

func (s *HTTPServer) login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "All fields are required"})
		return
	}

	token, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, messageResponse{Message: "invalid email or password"})
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "login failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionTokenCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
	})

	writeJSON(w, http.StatusOK, messageResponse{Message: "authenticated", Token: token})
}

func (s *HTTPServer) logout(w http.ResponseWriter, r *http.Request) {
	token := sessionTokenFromRequest(r)

	if err := s.users.Logout(r.Context(), token); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "logout failed"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     common.SessionTokenCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})

	if u, ok := sessionUser(r.Context()); ok {
		s.logger.Info(r.Context(), "Logged out", "username", u.Username)
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (s *HTTPServer) listUsers(w http.ResponseWriter, r *http.Request) {
	list, err := s.users.ListUsers(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list users failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
		return
	}

	result := make([]userResponse, 0, len(list))
	for _, u := range list {
		result = append(result, toUserResponse(u))
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *HTTPServer) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.users.GetUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "user not found"})
			return
		}
		s.logger.Error(r.Context(), "get user failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (s *HTTPServer) updateUser(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "invalid request body"})
		return
	}

	upd := models.UserUpdate{Username: req.Username, Email: req.Email}
	err := s.users.UpdateUser(r.Context(), r.PathValue("id"), upd)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorValidation):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "nothing to update"})
		case errors.Is(err, common.ErrorAlreadyExists):
			writeJSON(w, http.StatusBadRequest, messageResponse{Message: "User already exists"})
		case errors.Is(err, common.ErrorNotFound):
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "user not found"})
		default:
			s.logger.Error(r.Context(), "update user failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
		}
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user updated"})
}

func (s *HTTPServer) deleteUser(w http.ResponseWriter, r *http.Request) {
	err := s.users.DeleteUser(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			writeJSON(w, http.StatusNotFound, messageResponse{Message: "user not found"})
			return
		}
		s.logger.Error(r.Context(), "delete user failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "user deleted"})
}
