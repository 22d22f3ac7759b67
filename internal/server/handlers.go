package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/raphaelgruber/globotrack/internal/service"
	"github.com/raphaelgruber/globotrack/internal/session"
)

type profileResponse struct {
	SignedIn bool                `json:"signedIn"`
	Profile  *models.UserProfile `json:"profile"`
}

type searchRequest struct {
	Origin      string `json:"origin" validate:"required"`
	Destination string `json:"destination" validate:"required"`
}

func (r *searchRequest) trim() {
	r.Origin = strings.TrimSpace(r.Origin)
	r.Destination = strings.TrimSpace(r.Destination)
}

type searchResponse struct {
	service.SearchState
	Stale bool `json:"stale"`
}

type saveRouteResponse struct {
	Saved   bool                `json:"saved"`
	Profile *models.UserProfile `json:"profile"`
}

type bioRequest struct {
	Bio string `json:"bio"`
}

type chatRequest struct {
	Message string `json:"message" validate:"required"`
}

func (r *chatRequest) trim() {
	r.Message = strings.TrimSpace(r.Message)
}

type chatResponse struct {
	Reply      models.ChatMessage   `json:"reply"`
	Transcript []models.ChatMessage `json:"transcript"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

func (s *Server) currentProfile() profileResponse {
	p, ok := s.deps.Session.Current()
	if !ok {
		return profileResponse{}
	}
	return profileResponse{SignedIn: true, Profile: &p}
}

func (s *Server) getProfile(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.currentProfile())
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds auth.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.deps.Session.SignIn(r.Context(), creds); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentProfile())
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var creds auth.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.deps.Session.SignUp(r.Context(), creds); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentProfile())
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if err := s.deps.Session.SignOut(r.Context()); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profileResponse{})
}

func (s *Server) saveRoute(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var route models.TravelRoute
	if err := decodeBody(r, &route); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.deps.Session.SaveRoute(r.Context(), route)
	if err != nil {
		s.writeSessionError(w, err)
		return
	}
	resp := s.currentProfile()
	writeJSON(w, http.StatusOK, saveRouteResponse{Saved: saved, Profile: resp.Profile})
}

func (s *Server) deleteRoute(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := s.deps.Session.DeleteRoute(r.Context(), ps.ByName("id")); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentProfile())
}

func (s *Server) updateBio(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req bioRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.deps.Session.UpdateBio(r.Context(), req.Bio); err != nil {
		s.writeSessionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.currentProfile())
}

func (s *Server) searchState(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, searchResponse{SearchState: s.deps.Search.State()})
}

// searchRoutes blocks until the model answers. When a newer search started
// meanwhile, the response carries the newer state and stale=true.
func (s *Server) searchRoutes(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req searchRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	state, applied := s.deps.Search.Search(r.Context(), req.Origin, req.Destination)
	writeJSON(w, http.StatusOK, searchResponse{SearchState: state, Stale: !applied})
}

func (s *Server) transcript(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, chatResponse{Transcript: s.deps.Chat.Transcript()})
}

func (s *Server) sendChat(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	reply, ok := s.deps.Chat.Send(r.Context(), req.Message)
	if !ok {
		writeError(w, http.StatusBadRequest, "message is blank")
		return
	}
	writeJSON(w, http.StatusOK, chatResponse{Reply: reply, Transcript: s.deps.Chat.Transcript()})
}

func (s *Server) stats(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	writeJSON(w, http.StatusOK, s.deps.Metrics.Snapshot())
}

// writeSessionError maps controller and verifier errors to status codes.
func (s *Server) writeSessionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotSignedIn):
		writeError(w, http.StatusUnauthorized, session.MsgSignInToSave)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error("session operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
