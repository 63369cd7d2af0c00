package project

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"failmarket/internal/utils"
	"failmarket/pkg/types"
)

type fakeProjectStore struct {
	projects     map[int64]*types.Project
	nextID       int64
	created      *types.Project
	createdMaps  []*types.ProjectCategoryMap
	updates      []types.ProjectUpdate
	deleted      []int64
	popularLimit uint64
}

func (f *fakeProjectStore) Project(ctx context.Context, projectID int64) (*types.Project, error) {
	p, ok := f.projects[projectID]
	if !ok {
		return nil, types.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjectStore) ProjectsByUser(ctx context.Context, userID int64) ([]*types.Project, error) {
	var out []*types.Project
	for _, p := range f.projects {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeProjectStore) PopularProjects(ctx context.Context, limit uint64) ([]*types.Project, error) {
	f.popularLimit = limit
	return nil, nil
}

func (f *fakeProjectStore) CreateProject(ctx context.Context, project *types.Project, maps []*types.ProjectCategoryMap) error {
	f.nextID++
	project.ProjectID = f.nextID
	f.created = project
	f.createdMaps = maps
	if f.projects == nil {
		f.projects = make(map[int64]*types.Project)
	}
	f.projects[project.ProjectID] = project
	return nil
}

func (f *fakeProjectStore) UpdateProject(ctx context.Context, projectID int64, update types.ProjectUpdate) error {
	if _, ok := f.projects[projectID]; !ok {
		return types.ErrProjectNotFound
	}
	f.updates = append(f.updates, update)
	return nil
}

func (f *fakeProjectStore) DeleteProject(ctx context.Context, projectID int64) error {
	f.deleted = append(f.deleted, projectID)
	delete(f.projects, projectID)
	return nil
}

type fakeCategoryStore struct {
	categories map[string]int64
}

func (f *fakeCategoryStore) CategoryByName(ctx context.Context, name string) (*types.FailureCategory, error) {
	id, ok := f.categories[name]
	if !ok {
		return nil, types.ErrCategoryNotFound
	}
	return &types.FailureCategory{CategoryID: id, Name: name}, nil
}

type fakeMapStore struct {
	details  []types.ProjectCategoryDetail
	replaced [][]*types.ProjectCategoryMap
}

func (f *fakeMapStore) CategoryDetailsByProjectID(ctx context.Context, projectID int64) ([]types.ProjectCategoryDetail, error) {
	return f.details, nil
}

func (f *fakeMapStore) ReplaceMaps(ctx context.Context, projectID int64, maps []*types.ProjectCategoryMap) error {
	f.replaced = append(f.replaced, maps)
	return nil
}

type fakeHelpfulStore struct {
	marked map[int64]bool
}

func (f *fakeHelpfulStore) Helpful(ctx context.Context, userID, projectID int64) (*types.UserHelpful, error) {
	if f.marked[userID] {
		return &types.UserHelpful{UserID: userID, ProjectID: projectID}, nil
	}
	return nil, types.ErrHelpfulNotFound
}

type fakePurchaseStore struct {
	purchased map[int64]bool
}

func (f *fakePurchaseStore) PurchaseByUserAndProject(ctx context.Context, userID, projectID int64) (*types.Purchase, error) {
	if f.purchased[userID] {
		return &types.Purchase{UserID: userID, ProjectID: projectID}, nil
	}
	return nil, nil
}

type fakeUserStore struct {
	users map[int64]*types.User
}

func (f *fakeUserStore) User(ctx context.Context, userID int64) (*types.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, types.ErrUserNotFound
	}
	return u, nil
}

type fixture struct {
	svc       *Service
	projects  *fakeProjectStore
	maps      *fakeMapStore
	helpfuls  *fakeHelpfulStore
	purchases *fakePurchaseStore
}

func newFixture() *fixture {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	projects := &fakeProjectStore{projects: make(map[int64]*types.Project)}
	categories := &fakeCategoryStore{categories: map[string]int64{
		"Planning":  1,
		"Execution": 2,
		"Team":      3,
		"Funding":   4,
		"Timing":    5,
		"Marketing": 6,
	}}
	maps := &fakeMapStore{}
	helpfuls := &fakeHelpfulStore{marked: make(map[int64]bool)}
	purchases := &fakePurchaseStore{purchased: make(map[int64]bool)}
	users := &fakeUserStore{users: map[int64]*types.User{
		10: {UserID: 10, Name: "Ava Williams", Nickname: "ava"},
	}}

	return &fixture{
		svc:       NewService(logger, projects, categories, maps, helpfuls, purchases, users),
		projects:  projects,
		maps:      maps,
		helpfuls:  helpfuls,
		purchases: purchases,
	}
}

func entry(category string, answers ...string) types.FailureEntry {
	return types.FailureEntry{Category: category, Answers: answers}
}

func validInput(failure ...types.FailureEntry) types.CreateProjectInput {
	return types.CreateProjectInput{
		Name:        "Meal-kit delivery for single households",
		Period:      "2025.01 - 2025.06",
		Personnel:   3,
		Intent:      "Solve our own dinner problem",
		MyRole:      "Backend developer",
		SaleStatus:  types.SaleStatusNotSale,
		GrowthPoint: "Validate demand before building",
		Failure:     failure,
	}
}

func TestCreateComposition(t *testing.T) {
	t.Run("keeps declared order and trims answers", func(t *testing.T) {
		f := newFixture()

		project, err := f.svc.Create(context.Background(), 10, validInput(
			entry("Planning", "  We never wrote a plan ", "Scope grew weekly", "Write it down first"),
			entry("Execution", "Shipped late", "No owner per outcome", "Assign owners"),
		))
		require.NoError(t, err)
		require.NotNil(t, project)
		assert.Equal(t, int64(10), project.UserID)

		require.Len(t, f.projects.createdMaps, 2)
		assert.Equal(t, int64(1), f.projects.createdMaps[0].CategoryID)
		assert.Equal(t, int64(2), f.projects.createdMaps[1].CategoryID)
		assert.Equal(t, "We never wrote a plan", f.projects.createdMaps[0].Answer1)
	})

	tests := []struct {
		name    string
		failure []types.FailureEntry
		wantErr error
	}{
		{
			name:    "no categories",
			failure: nil,
			wantErr: types.ErrValidation,
		},
		{
			name: "six categories",
			failure: []types.FailureEntry{
				entry("Planning", "a", "b", "c"),
				entry("Execution", "a", "b", "c"),
				entry("Team", "a", "b", "c"),
				entry("Funding", "a", "b", "c"),
				entry("Timing", "a", "b", "c"),
				entry("Marketing", "a", "b", "c"),
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "duplicate category after trimming",
			failure: []types.FailureEntry{
				entry("Planning", "a", "b", "c"),
				entry(" Planning ", "a", "b", "c"),
			},
			wantErr: types.ErrDuplicateCategory,
		},
		{
			name: "unknown category",
			failure: []types.FailureEntry{
				entry("Astrology", "a", "b", "c"),
			},
			wantErr: types.ErrCategoryNotFound,
		},
		{
			name: "two answers",
			failure: []types.FailureEntry{
				entry("Planning", "a", "b"),
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "four answers",
			failure: []types.FailureEntry{
				entry("Planning", "a", "b", "c", "d"),
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "blank answer",
			failure: []types.FailureEntry{
				entry("Planning", "a", "   ", "c"),
			},
			wantErr: types.ErrValidation,
		},
		{
			name: "blank category name",
			failure: []types.FailureEntry{
				entry("  ", "a", "b", "c"),
			},
			wantErr: types.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			_, err := f.svc.Create(context.Background(), 10, validInput(tt.failure...))
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, f.projects.created, "no project should be persisted")
		})
	}
}

func TestCreateScalars(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*types.CreateProjectInput)
	}{
		{"blank name", func(in *types.CreateProjectInput) { in.Name = "  " }},
		{"blank period", func(in *types.CreateProjectInput) { in.Period = "" }},
		{"blank growth point", func(in *types.CreateProjectInput) { in.GrowthPoint = "" }},
		{"zero personnel", func(in *types.CreateProjectInput) { in.Personnel = 0 }},
		{"unknown sale status", func(in *types.CreateProjectInput) { in.SaleStatus = "PENDING" }},
		{"negative price", func(in *types.CreateProjectInput) { in.Price = -100 }},
		{"free with price", func(in *types.CreateProjectInput) {
			in.SaleStatus = types.SaleStatusFree
			in.IsFree = true
			in.Price = 500
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()

			input := validInput(entry("Planning", "a", "b", "c"))
			tt.mutate(&input)

			_, err := f.svc.Create(context.Background(), 10, input)
			assert.ErrorIs(t, err, types.ErrValidation)
		})
	}

	t.Run("on sale with price is valid", func(t *testing.T) {
		f := newFixture()

		input := validInput(entry("Planning", "a", "b", "c"))
		input.SaleStatus = types.SaleStatusOnSale
		input.Price = 1500

		project, err := f.svc.Create(context.Background(), 10, input)
		require.NoError(t, err)
		assert.Equal(t, int64(1500), project.Price)
	})
}

func TestUpdate(t *testing.T) {
	seedProject := func(f *fixture) *types.Project {
		p := &types.Project{ProjectID: 1, UserID: 10, Name: "Original", Personnel: 3, SaleStatus: types.SaleStatusNotSale}
		f.projects.projects[1] = p
		return p
	}

	t.Run("rejects non-owner", func(t *testing.T) {
		f := newFixture()
		seedProject(f)

		_, err := f.svc.Update(context.Background(), 99, 1, types.UpdateProjectInput{})
		assert.ErrorIs(t, err, types.ErrForbidden)
	})

	t.Run("missing project", func(t *testing.T) {
		f := newFixture()

		_, err := f.svc.Update(context.Background(), 10, 42, types.UpdateProjectInput{})
		assert.ErrorIs(t, err, types.ErrProjectNotFound)
	})

	t.Run("nil failure leaves mappings untouched", func(t *testing.T) {
		f := newFixture()
		seedProject(f)

		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{
			Name: utils.StringPtr("Renamed"),
		})
		require.NoError(t, err)
		assert.Empty(t, f.maps.replaced)
		require.Len(t, f.projects.updates, 1)
		assert.Equal(t, "Renamed", *f.projects.updates[0].Name)
	})

	t.Run("non-nil failure replaces the whole set", func(t *testing.T) {
		f := newFixture()
		seedProject(f)

		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{
			Failure: []types.FailureEntry{
				entry("Team", "a", "b", "c"),
			},
		})
		require.NoError(t, err)
		require.Len(t, f.maps.replaced, 1)
		require.Len(t, f.maps.replaced[0], 1)
		assert.Equal(t, int64(3), f.maps.replaced[0][0].CategoryID)
	})

	t.Run("free flag alone cannot leave a stored price behind", func(t *testing.T) {
		f := newFixture()
		p := seedProject(f)
		p.SaleStatus = types.SaleStatusOnSale
		p.Price = 500

		free := true
		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{IsFree: &free})
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Empty(t, f.projects.updates)
	})

	t.Run("price alone cannot be raised on a free project", func(t *testing.T) {
		f := newFixture()
		p := seedProject(f)
		p.SaleStatus = types.SaleStatusFree
		p.IsFree = true

		price := int64(500)
		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{Price: &price})
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Empty(t, f.projects.updates)
	})

	t.Run("free flag with explicit zero price is accepted", func(t *testing.T) {
		f := newFixture()
		p := seedProject(f)
		p.SaleStatus = types.SaleStatusOnSale
		p.Price = 500

		free := true
		price := int64(0)
		status := types.SaleStatusFree
		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{
			SaleStatus: &status,
			IsFree:     &free,
			Price:      &price,
		})
		require.NoError(t, err)
		require.Len(t, f.projects.updates, 1)
	})

	t.Run("blank name in a partial update is rejected", func(t *testing.T) {
		f := newFixture()
		seedProject(f)

		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{
			Name: utils.StringPtr("   "),
		})
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Empty(t, f.projects.updates)
	})

	t.Run("invalid replacement composition aborts before storage", func(t *testing.T) {
		f := newFixture()
		seedProject(f)

		_, err := f.svc.Update(context.Background(), 10, 1, types.UpdateProjectInput{
			Failure: []types.FailureEntry{
				entry("Team", "a", "b"),
			},
		})
		assert.ErrorIs(t, err, types.ErrValidation)
		assert.Empty(t, f.maps.replaced)
		assert.Empty(t, f.projects.updates)
	})
}

func TestDetail(t *testing.T) {
	seed := func(f *fixture) {
		f.projects.projects[1] = &types.Project{ProjectID: 1, UserID: 10, Name: "Original"}
		f.maps.details = []types.ProjectCategoryDetail{{CategoryID: 1, Name: "Planning", Answer1: "a", Answer2: "b", Answer3: "c"}}
	}

	t.Run("anonymous viewer gets false flags", func(t *testing.T) {
		f := newFixture()
		seed(f)

		detail, err := f.svc.Detail(context.Background(), 1, 0)
		require.NoError(t, err)
		assert.False(t, detail.IsHelpful)
		assert.False(t, detail.IsPurchased)
		assert.Equal(t, "Ava Williams", detail.Owner.Name)
		require.Len(t, detail.Categories, 1)
	})

	t.Run("viewer without marks gets false flags", func(t *testing.T) {
		f := newFixture()
		seed(f)

		detail, err := f.svc.Detail(context.Background(), 1, 20)
		require.NoError(t, err)
		assert.False(t, detail.IsHelpful)
		assert.False(t, detail.IsPurchased)
	})

	t.Run("viewer with mark and purchase gets true flags", func(t *testing.T) {
		f := newFixture()
		seed(f)
		f.helpfuls.marked[20] = true
		f.purchases.purchased[20] = true

		detail, err := f.svc.Detail(context.Background(), 1, 20)
		require.NoError(t, err)
		assert.True(t, detail.IsHelpful)
		assert.True(t, detail.IsPurchased)
	})
}

func TestDelete(t *testing.T) {
	f := newFixture()
	f.projects.projects[1] = &types.Project{ProjectID: 1, UserID: 10}

	err := f.svc.Delete(context.Background(), 99, 1)
	assert.ErrorIs(t, err, types.ErrForbidden)
	assert.Empty(t, f.projects.deleted)

	err = f.svc.Delete(context.Background(), 10, 1)
	require.NoError(t, err)
	assert.Equal(t, []int64{1}, f.projects.deleted)
}

func TestPopularDefaultLimit(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Popular(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), f.projects.popularLimit)

	_, err = f.svc.Popular(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), f.projects.popularLimit)
}
