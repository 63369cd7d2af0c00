package server

import (
	"net/http"

	"failmarket/pkg/types"
)

func (s *Service) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var input types.CreateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	created, err := s.projectSvc.Create(r.Context(), user.UserID, input)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "project uploaded", map[string]any{"project": created})
}

func (s *Service) handleGetProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var viewerID int64
	if user, err := s.userFromContext(r.Context()); err == nil {
		viewerID = user.UserID
	}

	detail, err := s.projectSvc.Detail(r.Context(), projectID, viewerID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "project detail", detail)
}

func (s *Service) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var input types.UpdateProjectInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	updated, err := s.projectSvc.Update(r.Context(), user.UserID, projectID, input)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "project updated", map[string]any{"project": updated})
}

func (s *Service) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	if err := s.projectSvc.Delete(r.Context(), user.UserID, projectID); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "project deleted", nil)
}

func (s *Service) handleGetPopularProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.projectSvc.Popular(r.Context(), 7)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "popular projects", map[string]any{"projects": projects})
}

func (s *Service) handleAddHelpful(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	helpful, err := s.ledgerSvc.AddHelpful(r.Context(), user.UserID, projectID)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "helpful mark added", map[string]any{"helpful": helpful})
}

func (s *Service) handleRemoveHelpful(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	if err := s.ledgerSvc.RemoveHelpful(r.Context(), user.UserID, projectID); err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "helpful mark removed", nil)
}

func (s *Service) handlePurchaseProject(w http.ResponseWriter, r *http.Request) {
	user, err := s.userFromContext(r.Context())
	if err != nil {
		s.respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	projectID, err := pathID(r, "projectID")
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	var input types.PurchaseInput
	if err := decodeJSON(r, &input); err != nil {
		s.respondDomainError(w, err)
		return
	}

	receipt, err := s.ledgerSvc.Purchase(r.Context(), user.UserID, projectID, input.Price)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "purchase recorded", receipt)
}
