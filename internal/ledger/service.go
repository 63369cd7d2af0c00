// Package ledger enforces the at-most-once semantics of helpful marks and
// purchases. Both actions ultimately rely on storage-level uniqueness
// constraints; the service layer adds precondition checks and price
// validation on top so that the common failure modes surface as clean domain
// errors rather than constraint violations.
package ledger

import (
	"context"
	"fmt"

	"failmarket/pkg/types"

	"github.com/sirupsen/logrus"
)

type HelpfulStore interface {
	AddHelpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error)
	RemoveHelpful(ctx context.Context, userID, projectID int64) error
	ProjectsMarkedHelpful(ctx context.Context, userID int64) ([]*types.Project, error)
}

type PurchaseStore interface {
	CreatePurchase(ctx context.Context, userID, projectID, price int64) (*types.User, *types.Purchase, error)
	PurchaseByUserAndProject(ctx context.Context, userID, projectID int64) (*types.Purchase, error)
	PurchasedProjects(ctx context.Context, userID int64) ([]*types.Project, error)
}

type ProjectStore interface {
	Project(ctx context.Context, projectID int64) (*types.Project, error)
}

type Service struct {
	logger    *logrus.Logger
	helpfuls  HelpfulStore
	purchases PurchaseStore
	projects  ProjectStore
}

func NewService(logger *logrus.Logger, helpfuls HelpfulStore, purchases PurchaseStore, projects ProjectStore) *Service {
	return &Service{
		logger:    logger,
		helpfuls:  helpfuls,
		purchases: purchases,
		projects:  projects,
	}
}

// AddHelpful marks a project helpful for the user. The project must exist;
// a second mark for the same pair fails with ErrAlreadyMarked even when two
// calls race, because the store inserts against a unique index.
func (s *Service) AddHelpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error) {
	if _, err := s.projects.Project(ctx, projectID); err != nil {
		return nil, err
	}

	helpful, err := s.helpfuls.AddHelpful(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"project_id": projectID,
	}).Info("helpful mark added")

	return helpful, nil
}

func (s *Service) RemoveHelpful(ctx context.Context, userID, projectID int64) error {
	return s.helpfuls.RemoveHelpful(ctx, userID, projectID)
}

func (s *Service) HelpfulProjects(ctx context.Context, userID int64) ([]*types.Project, error) {
	return s.helpfuls.ProjectsMarkedHelpful(ctx, userID)
}

// Purchase buys a project with the caller-declared price. The declared price
// must be positive and match the stored price of a project that is actually
// on sale. The debit and the purchase row are committed by the store as one
// transaction; the pre-transaction duplicate check here only produces a
// friendlier error for the common case, the unique index remains the
// authority under concurrency.
func (s *Service) Purchase(ctx context.Context, userID, projectID, price int64) (*types.PurchaseReceipt, error) {
	if price <= 0 {
		return nil, fmt.Errorf("price must be a positive integer: %w", types.ErrValidation)
	}

	project, err := s.projects.Project(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project.SaleStatus != types.SaleStatusOnSale {
		return nil, fmt.Errorf("project %d is not on sale: %w", projectID, types.ErrValidation)
	}
	if project.Price != price {
		return nil, fmt.Errorf("declared price %d does not match the listed price %d: %w",
			price, project.Price, types.ErrValidation)
	}

	if prior, err := s.purchases.PurchaseByUserAndProject(ctx, userID, projectID); err != nil {
		return nil, err
	} else if prior != nil {
		return nil, types.ErrAlreadyPurchased
	}

	user, purchase, err := s.purchases.CreatePurchase(ctx, userID, projectID, price)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":     userID,
		"project_id":  projectID,
		"price":       price,
		"purchase_id": purchase.PurchaseID,
	}).Info("project purchased")

	return &types.PurchaseReceipt{User: user, Purchase: purchase}, nil
}

func (s *Service) PurchasedProjects(ctx context.Context, userID int64) ([]*types.Project, error) {
	return s.purchases.PurchasedProjects(ctx, userID)
}
