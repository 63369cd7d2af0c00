package server

import (
	"fmt"
	"net/http"
	"strings"

	"failmarket/pkg/types"
)

func (s *Service) handleGetCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	s.respond(w, http.StatusOK, "current user", map[string]any{"user": user})
}

func (s *Service) handleUpdateCurrentUser(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input types.UpdateUserInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	if input.Nickname == nil && input.ProfileImage == nil {
		s.respondDomainError(w, fmt.Errorf("no update data provided: %w", types.ErrValidation))
		return
	}
	if input.Nickname != nil && strings.TrimSpace(*input.Nickname) == "" {
		s.respondDomainError(w, fmt.Errorf("nickname cannot be empty: %w", types.ErrValidation))
		return
	}

	update := types.UserUpdate{
		Nickname:     input.Nickname,
		ProfileImage: input.ProfileImage,
	}
	if err := s.userRepo.UpdateUser(r.Context(), user.UserID, update); err != nil {
		s.respondDomainError(w, err)
		return
	}

	updated, err := s.userRepo.User(r.Context(), user.UserID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "profile updated", map[string]any{"user": updated})
}

func (s *Service) handleGetUserProfile(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	user, err := s.userRepo.User(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "user profile", map[string]any{"user": publicUser(user)})
}

func (s *Service) handleGetUserPosts(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	projects, err := s.projectSvc.ProjectsByUser(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "user posts", map[string]any{"projects": projects})
}

func (s *Service) handleGetUserHelpfulProjects(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	projects, err := s.ledgerSvc.HelpfulProjects(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "helpful projects", map[string]any{"projects": projects})
}

func (s *Service) handleGetUserPurchases(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	userID, err := pathID(r, "userID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	// Purchase history is private to its owner.
	if user.UserID != userID {
		s.respondDomainError(w, types.ErrForbidden)
		return
	}

	projects, err := s.ledgerSvc.PurchasedProjects(r.Context(), userID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "purchased projects", map[string]any{"projects": projects})
}
