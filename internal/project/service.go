// Package project implements the project use cases, most importantly the
// category composition writer: the validation and persistence logic that
// keeps a project's structured failure-category mappings consistent with
// what the author declared.
package project

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"failmarket/pkg/types"

	"github.com/sirupsen/logrus"
)

const (
	minFailureCategories = 1
	maxFailureCategories = 5
	answersPerCategory   = 3
)

type ProjectStore interface {
	Project(ctx context.Context, projectID int64) (*types.Project, error)
	ProjectsByUser(ctx context.Context, userID int64) ([]*types.Project, error)
	PopularProjects(ctx context.Context, limit uint64) ([]*types.Project, error)
	CreateProject(ctx context.Context, project *types.Project, maps []*types.ProjectCategoryMap) error
	UpdateProject(ctx context.Context, projectID int64, update types.ProjectUpdate) error
	DeleteProject(ctx context.Context, projectID int64) error
}

type CategoryStore interface {
	CategoryByName(ctx context.Context, name string) (*types.FailureCategory, error)
}

type CategoryMapStore interface {
	CategoryDetailsByProjectID(ctx context.Context, projectID int64) ([]types.ProjectCategoryDetail, error)
	ReplaceMaps(ctx context.Context, projectID int64, maps []*types.ProjectCategoryMap) error
}

type HelpfulStore interface {
	Helpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error)
}

type PurchaseStore interface {
	PurchaseByUserAndProject(ctx context.Context, userID, projectID int64) (*types.Purchase, error)
}

type UserStore interface {
	User(ctx context.Context, userID int64) (*types.User, error)
}

type Service struct {
	logger     *logrus.Logger
	projects   ProjectStore
	categories CategoryStore
	maps       CategoryMapStore
	helpfuls   HelpfulStore
	purchases  PurchaseStore
	users      UserStore
}

func NewService(
	logger *logrus.Logger,
	projects ProjectStore,
	categories CategoryStore,
	maps CategoryMapStore,
	helpfuls HelpfulStore,
	purchases PurchaseStore,
	users UserStore,
) *Service {
	return &Service{
		logger:     logger,
		projects:   projects,
		categories: categories,
		maps:       maps,
		helpfuls:   helpfuls,
		purchases:  purchases,
		users:      users,
	}
}

// Create validates the project payload and its failure composition, then
// persists the project and its mapping rows as one atomic unit.
func (s *Service) Create(ctx context.Context, userID int64, input types.CreateProjectInput) (*types.Project, error) {
	if err := validateScalars(input); err != nil {
		return nil, err
	}

	maps, err := s.composeMaps(ctx, input.Failure)
	if err != nil {
		return nil, err
	}

	project := &types.Project{
		UserID:      userID,
		Name:        input.Name,
		Period:      input.Period,
		Personnel:   input.Personnel,
		Intent:      input.Intent,
		MyRole:      input.MyRole,
		SaleStatus:  input.SaleStatus,
		IsFree:      input.IsFree,
		Price:       input.Price,
		ResultURL:   input.ResultURL,
		GrowthPoint: input.GrowthPoint,
		Image:       input.Image,
	}

	if err := s.projects.CreateProject(ctx, project, maps); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"project_id": project.ProjectID,
		"user_id":    userID,
		"categories": len(maps),
	}).Info("project created")

	return project, nil
}

// Update applies a partial update to the project's scalar fields. When the
// input carries a failure composition the whole mapping set is validated and
// atomically replaced; when it doesn't, existing mappings are left untouched.
func (s *Service) Update(ctx context.Context, userID, projectID int64, input types.UpdateProjectInput) (*types.Project, error) {
	existing, err := s.projects.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		return nil, types.ErrForbidden
	}

	if err := validateUpdateScalars(existing, input); err != nil {
		return nil, err
	}

	if input.Failure != nil {
		maps, err := s.composeMaps(ctx, input.Failure)
		if err != nil {
			return nil, err
		}
		if err := s.maps.ReplaceMaps(ctx, projectID, maps); err != nil {
			return nil, err
		}
	}

	update := types.ProjectUpdate{
		Name:        input.Name,
		Period:      input.Period,
		Personnel:   input.Personnel,
		Intent:      input.Intent,
		MyRole:      input.MyRole,
		SaleStatus:  input.SaleStatus,
		IsFree:      input.IsFree,
		Price:       input.Price,
		ResultURL:   input.ResultURL,
		GrowthPoint: input.GrowthPoint,
		Image:       input.Image,
	}

	if err := s.projects.UpdateProject(ctx, projectID, update); err != nil {
		return nil, err
	}

	return s.projects.Project(ctx, projectID)
}

// Detail assembles the project read model. viewerID of 0 means anonymous:
// the helpful/purchased flags stay false.
func (s *Service) Detail(ctx context.Context, projectID, viewerID int64) (*types.ProjectDetail, error) {
	project, err := s.projects.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}

	owner, err := s.users.User(ctx, project.UserID)
	if err != nil {
		return nil, err
	}

	categories, err := s.maps.CategoryDetailsByProjectID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	detail := &types.ProjectDetail{
		Project:    project,
		Owner:      owner,
		Categories: categories,
	}

	if viewerID != 0 {
		_, err := s.helpfuls.Helpful(ctx, viewerID, projectID)
		if err != nil && !errors.Is(err, types.ErrHelpfulNotFound) {
			return nil, err
		}
		detail.IsHelpful = err == nil

		purchase, err := s.purchases.PurchaseByUserAndProject(ctx, viewerID, projectID)
		if err != nil {
			return nil, err
		}
		detail.IsPurchased = purchase != nil
	}

	return detail, nil
}

func (s *Service) Delete(ctx context.Context, userID, projectID int64) error {
	existing, err := s.projects.Project(ctx, projectID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return types.ErrForbidden
	}

	return s.projects.DeleteProject(ctx, projectID)
}

func (s *Service) Popular(ctx context.Context, limit uint64) ([]*types.Project, error) {
	if limit == 0 {
		limit = 7
	}
	return s.projects.PopularProjects(ctx, limit)
}

func (s *Service) ProjectsByUser(ctx context.Context, userID int64) ([]*types.Project, error) {
	return s.projects.ProjectsByUser(ctx, userID)
}

// composeMaps validates the declared failure composition and resolves every
// category name through the directory. Order of the supplied list is kept.
func (s *Service) composeMaps(ctx context.Context, failure []types.FailureEntry) ([]*types.ProjectCategoryMap, error) {
	if len(failure) < minFailureCategories || len(failure) > maxFailureCategories {
		return nil, fmt.Errorf("failure category count must be between %d and %d, got %d: %w",
			minFailureCategories, maxFailureCategories, len(failure), types.ErrValidation)
	}

	seen := make(map[string]struct{}, len(failure))
	maps := make([]*types.ProjectCategoryMap, 0, len(failure))

	for _, entry := range failure {
		name := strings.TrimSpace(entry.Category)
		if name == "" {
			return nil, fmt.Errorf("failure category name is blank: %w", types.ErrValidation)
		}

		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("category %q declared twice: %w", name, types.ErrDuplicateCategory)
		}
		seen[name] = struct{}{}

		answers, err := normalizeAnswers(name, entry.Answers)
		if err != nil {
			return nil, err
		}

		category, err := s.categories.CategoryByName(ctx, name)
		if err != nil {
			return nil, err
		}

		maps = append(maps, &types.ProjectCategoryMap{
			CategoryID: category.CategoryID,
			Answer1:    answers[0],
			Answer2:    answers[1],
			Answer3:    answers[2],
		})
	}

	return maps, nil
}

// normalizeAnswers enforces exactly three non-blank answers, trimmed.
func normalizeAnswers(category string, answers []string) ([answersPerCategory]string, error) {
	var out [answersPerCategory]string

	if len(answers) != answersPerCategory {
		return out, fmt.Errorf("category %q requires exactly %d answers, got %d: %w",
			category, answersPerCategory, len(answers), types.ErrValidation)
	}

	for i, answer := range answers {
		trimmed := strings.TrimSpace(answer)
		if trimmed == "" {
			return out, fmt.Errorf("category %q answer %d is blank: %w", category, i+1, types.ErrValidation)
		}
		out[i] = trimmed
	}

	return out, nil
}

func validateScalars(input types.CreateProjectInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("name is required: %w", types.ErrValidation)
	}
	if strings.TrimSpace(input.Period) == "" {
		return fmt.Errorf("period is required: %w", types.ErrValidation)
	}
	if strings.TrimSpace(input.GrowthPoint) == "" {
		return fmt.Errorf("growth_point is required: %w", types.ErrValidation)
	}
	if input.Personnel < 1 {
		return fmt.Errorf("personnel must be at least 1: %w", types.ErrValidation)
	}
	if !input.SaleStatus.Valid() {
		return fmt.Errorf("sale_status %q is not one of NOTSALE, FREE, ONSALE: %w", input.SaleStatus, types.ErrValidation)
	}
	if input.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", types.ErrValidation)
	}
	if input.IsFree && input.Price != 0 {
		return fmt.Errorf("a free project must have price 0: %w", types.ErrValidation)
	}
	return nil
}

// validateUpdateScalars checks the row as it would look after the partial
// update, so invariants spanning two fields hold even when only one of them
// is supplied.
func validateUpdateScalars(existing *types.Project, input types.UpdateProjectInput) error {
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return fmt.Errorf("name cannot be blank: %w", types.ErrValidation)
	}
	if input.Period != nil && strings.TrimSpace(*input.Period) == "" {
		return fmt.Errorf("period cannot be blank: %w", types.ErrValidation)
	}
	if input.GrowthPoint != nil && strings.TrimSpace(*input.GrowthPoint) == "" {
		return fmt.Errorf("growth_point cannot be blank: %w", types.ErrValidation)
	}

	personnel := existing.Personnel
	if input.Personnel != nil {
		personnel = *input.Personnel
	}
	if personnel < 1 {
		return fmt.Errorf("personnel must be at least 1: %w", types.ErrValidation)
	}

	saleStatus := existing.SaleStatus
	if input.SaleStatus != nil {
		saleStatus = *input.SaleStatus
	}
	if !saleStatus.Valid() {
		return fmt.Errorf("sale_status %q is not one of NOTSALE, FREE, ONSALE: %w", saleStatus, types.ErrValidation)
	}

	isFree := existing.IsFree
	if input.IsFree != nil {
		isFree = *input.IsFree
	}
	price := existing.Price
	if input.Price != nil {
		price = *input.Price
	}
	if price < 0 {
		return fmt.Errorf("price must not be negative: %w", types.ErrValidation)
	}
	if isFree && price != 0 {
		return fmt.Errorf("a free project must have price 0: %w", types.ErrValidation)
	}

	return nil
}
