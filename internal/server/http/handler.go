package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"legacyvault/internal/common"
	"legacyvault/internal/server/models"
	"legacyvault/internal/server/services"
)

const maxUploadSize = 32 << 20

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.users.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidEmail), errors.Is(err, common.ErrPasswordTooWeak):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, common.ErrorAlreadyExists):
			writeError(w, http.StatusConflict, "email already registered")
		default:
			s.logger.Error(r.Context(), "register failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		s.logger.Error(r.Context(), "login failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	pair, err := s.users.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrRefreshTokenExpired):
			writeError(w, http.StatusUnauthorized, "refresh token expired")
		case errors.Is(err, common.ErrorUnauthorized):
			writeError(w, http.StatusUnauthorized, "unauthorized")
		default:
			s.logger.Error(r.Context(), "refresh failed", "error", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.users.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.logger.Error(r.Context(), "loading account failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleCreateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	category, err := models.ParseCategory(r.FormValue("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		writeError(w, http.StatusBadRequest, common.ErrTitleRequired.Error())
		return
	}

	file, err := readAttachment(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file upload")
		return
	}

	entry, err := s.entries.CreateEntry(r.Context(), userID, category, title, r.FormValue("description"), file)
	if err != nil {
		s.logger.Error(r.Context(), "creating entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	category, err := models.ParseCategory(r.URL.Query().Get("category"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entries, err := s.entries.GetEntries(r.Context(), userID, category)
	if err != nil {
		s.logger.Error(r.Context(), "listing entries failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []*models.Entry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleUpdateEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entryID := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	// Only fields present in the form are applied, so a client can change
	// the title without resending the description.
	var updates services.EntryUpdates
	if vals, ok := r.MultipartForm.Value["title"]; ok && len(vals) > 0 {
		title := strings.TrimSpace(vals[0])
		if title == "" {
			writeError(w, http.StatusBadRequest, common.ErrTitleRequired.Error())
			return
		}
		updates.Title = &title
	}
	if vals, ok := r.MultipartForm.Value["description"]; ok && len(vals) > 0 {
		updates.Description = &vals[0]
	}
	if vals, ok := r.MultipartForm.Value["category"]; ok && len(vals) > 0 {
		category, err := models.ParseCategory(vals[0])
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		updates.Category = &category
	}

	file, err := readAttachment(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file upload")
		return
	}

	entry, err := s.entries.UpdateEntry(r.Context(), entryID, userID, updates, file)
	if err != nil {
		if errors.Is(err, common.ErrEntryNotFoundOrUnauthorized) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error(r.Context(), "updating entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	userID, ok := UserIDFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	entryID := mux.Vars(r)["id"]

	if err := s.entries.DeleteEntry(r.Context(), entryID, userID); err != nil {
		if errors.Is(err, common.ErrEntryNotFoundOrUnauthorized) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.logger.Error(r.Context(), "deleting entry failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func readAttachment(r *http.Request) (*services.Attachment, error) {
	f, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}
	return &services.Attachment{Name: header.Filename, Data: data}, nil
}
