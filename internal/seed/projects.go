package seed

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/jackc/pgx/v5/pgxpool"

	"failmarket/internal/store"
	"failmarket/pkg/types"
)

var fakeProjectNames = []string{
	"[seed] Meal-kit delivery for single households",
	"[seed] Peer tutoring matching platform",
	"[seed] Neighborhood secondhand auction app",
	"[seed] Freelance invoice automation tool",
	"[seed] AI-assisted interview practice service",
	"[seed] Local gym pass aggregator",
	"[seed] Subscription plant care box",
	"[seed] Campus errand running marketplace",
	"[seed] Indie game crowdfunding tracker",
	"[seed] Commuter carpool scheduling app",
}

var fakeAnswerSets = [][3]string{
	{
		"We assumed demand without talking to a single potential customer.",
		"The landing page test came too late to change direction.",
		"Next time we validate with pre-orders before building anything.",
	},
	{
		"The team split responsibilities by title instead of by strength.",
		"Weekly syncs turned into status theater with no decisions.",
		"We now assign one owner per outcome, not per function.",
	},
	{
		"Launch slipped three months chasing features nobody asked for.",
		"Scope was never written down, so it grew every sprint.",
		"A one-page scope doc would have caught this in week one.",
	},
	{
		"We priced below cost to win users and could not climb back up.",
		"Unit economics were a spreadsheet we opened after the money ran out.",
		"Margin per order is now the first number we model.",
	},
}

type weightedSaleStatus struct {
	Status types.SaleStatus
	Weight int
}

var weightedStatuses = []weightedSaleStatus{
	{Status: types.SaleStatusNotSale, Weight: 40},
	{Status: types.SaleStatusFree, Weight: 25},
	{Status: types.SaleStatusOnSale, Weight: 35},
}

func pickSaleStatus(rng *rand.Rand) types.SaleStatus {
	total := 0
	for _, ws := range weightedStatuses {
		total += ws.Weight
	}
	roll := rng.Intn(total)
	for _, ws := range weightedStatuses {
		if roll < ws.Weight {
			return ws.Status
		}
		roll -= ws.Weight
	}
	return types.SaleStatusNotSale
}

// SeedFakeProjects creates demo case studies owned by the seeded fake users,
// each mapped to one to three random failure categories. Seeded rows carry a
// "[seed] " name prefix so reset can find them.
func SeedFakeProjects(
	ctx context.Context,
	pool *pgxpool.Pool,
	projectRepo *store.ProjectRepository,
	categoryRepo *store.CategoryRepository,
	userRepo *store.UserRepository,
	count int,
	reset bool,
) error {
	if count <= 0 {
		fmt.Println("Skipping fake projects seed because count <= 0")
		return nil
	}

	if reset {
		result, err := pool.Exec(ctx, `DELETE FROM failmarket.projects WHERE name LIKE '[seed] %'`)
		if err != nil {
			return fmt.Errorf("failed to reset seeded fake projects: %w", err)
		}
		fmt.Printf("Removed %d previously seeded projects\n", result.RowsAffected())
	}

	categories, err := categoryRepo.AllCategories(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch categories for project seed: %w", err)
	}
	if len(categories) == 0 {
		return fmt.Errorf("no categories found, run the category seed first")
	}

	owners := make([]*types.User, 0, len(fakeUsers))
	for _, fakeUser := range fakeUsers {
		owner, err := userRepo.UserByAuthSubject(ctx, fakeUser.Subject)
		if err != nil {
			return fmt.Errorf("failed to fetch fake user %s, run the user seed first: %w", fakeUser.Subject, err)
		}
		owners = append(owners, owner)
	}

	rng := rand.New(rand.NewSource(rand.Int63()))
	for i := 0; i < count; i++ {
		owner := owners[rng.Intn(len(owners))]
		status := pickSaleStatus(rng)

		var price int64
		if status == types.SaleStatusOnSale {
			price = int64(rng.Intn(20)+1) * 100
		}

		project := &types.Project{
			UserID:      owner.UserID,
			Name:        fakeProjectNames[rng.Intn(len(fakeProjectNames))],
			Period:      fmt.Sprintf("2025.0%d - 2025.0%d", rng.Intn(4)+1, rng.Intn(4)+5),
			Personnel:   rng.Intn(6) + 1,
			Intent:      "We wanted to solve a problem we had ourselves and see if others shared it.",
			MyRole:      "Product lead and backend developer",
			SaleStatus:  status,
			IsFree:      status == types.SaleStatusFree,
			Price:       price,
			ResultURL:   "https://example.com/retro",
			GrowthPoint: "Learned to validate demand before committing engineering time.",
		}

		maps := fakeCategoryMaps(rng, categories)
		if err := projectRepo.CreateProject(ctx, project, maps); err != nil {
			return fmt.Errorf("failed to create fake project %d: %w", i, err)
		}
	}

	fmt.Printf("Fake projects seeded: %d created\n", count)
	return nil
}

func fakeCategoryMaps(rng *rand.Rand, categories []*types.FailureCategory) []*types.ProjectCategoryMap {
	picked := rng.Perm(len(categories))
	n := rng.Intn(3) + 1
	if n > len(picked) {
		n = len(picked)
	}

	maps := make([]*types.ProjectCategoryMap, 0, n)
	for _, idx := range picked[:n] {
		answers := fakeAnswerSets[rng.Intn(len(fakeAnswerSets))]
		maps = append(maps, &types.ProjectCategoryMap{
			CategoryID: categories[idx].CategoryID,
			Answer1:    answers[0],
			Answer2:    answers[1],
			Answer3:    answers[2],
		})
	}
	return maps
}
