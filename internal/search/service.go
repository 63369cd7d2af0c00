// Package search implements project and user discovery over AND-combined
// keyword and category predicates.
package search

import (
	"context"
	"fmt"

	"failmarket/pkg/types"
)

type ProjectSearchStore interface {
	SearchProjects(ctx context.Context, keyword string, categories []string) ([]*types.Project, error)
	SearchUsers(ctx context.Context, keyword string) ([]*types.User, error)
}

type CategoryMapStore interface {
	CategoryNamesByProjectIDs(ctx context.Context, projectIDs []int64) (map[int64][]string, error)
}

type UserStore interface {
	User(ctx context.Context, userID int64) (*types.User, error)
}

// ProjectResult is one project search hit with its owner and category names.
type ProjectResult struct {
	Project           *types.Project `json:"project"`
	OwnerName         string         `json:"owner_name"`
	OwnerNickname     string         `json:"owner_nickname"`
	OwnerProfileImage *string        `json:"owner_profile_image"`
	FailureCategories []string       `json:"failure_category"`
}

type Result struct {
	Type            string           `json:"type"`
	Keyword         string           `json:"keyword"`
	FailureCategory []string         `json:"failure_category"`
	Projects        []*ProjectResult `json:"projects,omitempty"`
	Users           []*types.User    `json:"users,omitempty"`
}

type Service struct {
	store ProjectSearchStore
	maps  CategoryMapStore
	users UserStore
}

func NewService(store ProjectSearchStore, maps CategoryMapStore, users UserStore) *Service {
	return &Service{store: store, maps: maps, users: users}
}

// Search runs a project or user search. Category filters only apply to
// project searches; for user searches they are silently ignored.
func (s *Service) Search(ctx context.Context, req types.SearchRequest) (*Result, error) {
	switch req.Type {
	case "project":
		return s.searchProjects(ctx, req)
	case "user":
		return s.searchUsers(ctx, req)
	}
	return nil, fmt.Errorf("search type must be project or user, got %q: %w", req.Type, types.ErrValidation)
}

func (s *Service) searchProjects(ctx context.Context, req types.SearchRequest) (*Result, error) {
	projects, err := s.store.SearchProjects(ctx, req.Keyword, req.FailureCategory)
	if err != nil {
		return nil, err
	}

	projectIDs := make([]int64, len(projects))
	for i, p := range projects {
		projectIDs[i] = p.ProjectID
	}

	names, err := s.maps.CategoryNamesByProjectIDs(ctx, projectIDs)
	if err != nil {
		return nil, err
	}

	owners := make(map[int64]*types.User)
	results := make([]*ProjectResult, 0, len(projects))
	for _, p := range projects {
		owner, ok := owners[p.UserID]
		if !ok {
			owner, err = s.users.User(ctx, p.UserID)
			if err != nil {
				return nil, err
			}
			owners[p.UserID] = owner
		}

		results = append(results, &ProjectResult{
			Project:           p,
			OwnerName:         owner.Name,
			OwnerNickname:     owner.Nickname,
			OwnerProfileImage: owner.ProfileImage,
			FailureCategories: names[p.ProjectID],
		})
	}

	return &Result{
		Type:            "project",
		Keyword:         req.Keyword,
		FailureCategory: req.FailureCategory,
		Projects:        results,
	}, nil
}

func (s *Service) searchUsers(ctx context.Context, req types.SearchRequest) (*Result, error) {
	users, err := s.store.SearchUsers(ctx, req.Keyword)
	if err != nil {
		return nil, err
	}

	return &Result{
		Type:            "user",
		Keyword:         req.Keyword,
		FailureCategory: req.FailureCategory,
		Users:           users,
	}, nil
}
