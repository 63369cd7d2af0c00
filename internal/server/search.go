package server

import (
	"fmt"
	"net/http"

	"failmarket/pkg/types"
)

func (s *Service) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req types.SearchRequest
	if err := decoder.Decode(&req, r.URL.Query()); err != nil {
		s.respondDomainError(w, fmt.Errorf("invalid search parameters: %w", types.ErrValidation))
		return
	}

	result, err := s.searchSvc.Search(r.Context(), req)
	if err != nil {
		s.respondDomainError(w, err)
		return
	}

	s.respond(w, http.StatusOK, "search results", result)
}
