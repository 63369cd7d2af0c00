package seed

import (
	"context"
	"fmt"

	"failmarket/internal/store"
)

type fakeUserSeed struct {
	Subject string
	Email   string
	Name    string
	Balance int64
}

var fakeUsers = []fakeUserSeed{
	{Subject: "seed-11111111-1111-1111-1111-111111111111", Email: "ava.williams+seed1@example.com", Name: "Ava Williams", Balance: 5000},
	{Subject: "seed-22222222-2222-2222-2222-222222222222", Email: "liam.johnson+seed2@example.com", Name: "Liam Johnson", Balance: 1500},
	{Subject: "seed-33333333-3333-3333-3333-333333333333", Email: "noah.brown+seed3@example.com", Name: "Noah Brown", Balance: 0},
	{Subject: "seed-44444444-4444-4444-4444-444444444444", Email: "mia.davis+seed4@example.com", Name: "Mia Davis", Balance: 10000},
	{Subject: "seed-55555555-5555-5555-5555-555555555555", Email: "elijah.garcia+seed5@example.com", Name: "Elijah Garcia", Balance: 300},
	{Subject: "seed-66666666-6666-6666-6666-666666666666", Email: "olivia.miller+seed6@example.com", Name: "Olivia Miller", Balance: 2500},
	{Subject: "seed-77777777-7777-7777-7777-777777777777", Email: "ethan.moore+seed7@example.com", Name: "Ethan Moore", Balance: 0},
	{Subject: "seed-88888888-8888-8888-8888-888888888888", Email: "sophia.taylor+seed8@example.com", Name: "Sophia Taylor", Balance: 700},
}

// SeedFakeUsers upserts demo accounts keyed by a fixed auth subject and funds
// their balances through the topup ledger. The topup payment intent is derived
// from the subject, so re-running the seed never double-credits.
func SeedFakeUsers(ctx context.Context, userRepo *store.UserRepository, topupRepo *store.TopupRepository) error {
	seeded := 0
	for _, fakeUser := range fakeUsers {
		user, err := userRepo.UpsertIdentity(ctx, fakeUser.Subject, fakeUser.Email, fakeUser.Name)
		if err != nil {
			return fmt.Errorf("failed to upsert fake user %s: %w", fakeUser.Subject, err)
		}

		if fakeUser.Balance > 0 {
			if _, err := topupRepo.RecordTopup(ctx, user.UserID, fakeUser.Balance, "seed-topup-"+fakeUser.Subject); err != nil {
				return fmt.Errorf("failed to fund fake user %s: %w", fakeUser.Subject, err)
			}
		}
		seeded++
	}

	fmt.Printf("Fake users seeded: %d upserted\n", seeded)
	return nil
}
