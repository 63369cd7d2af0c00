package seed

import (
	"context"
	"fmt"

	"failmarket/internal/store"
)

// This list is the source of truth for failure categories. The application
// core only ever reads them.
var categoryNames = []string{
	"Planning",
	"Market Research",
	"Team",
	"Execution",
	"Funding",
	"Timing",
	"Technology",
	"Marketing",
}

// SeedCategories upserts the category list above. Existing names are left
// untouched.
func SeedCategories(ctx context.Context, repo *store.CategoryRepository) error {
	for _, name := range categoryNames {
		if err := repo.UpsertCategory(ctx, name); err != nil {
			return fmt.Errorf("failed to seed category %q: %w", name, err)
		}
	}

	fmt.Printf("Categories seeded: %d upserted\n", len(categoryNames))
	return nil
}
