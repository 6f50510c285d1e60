package leasing

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
)

// CreateSchema creates the four leasing tables if they do not exist.
func CreateSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*User)(nil),
		(*Property)(nil),
		(*Slot)(nil),
		(*Booking)(nil),
	}
	for _, m := range models {
		if _, err := db.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", m, err)
		}
	}
	return nil
}

// Seed loads demo inventory when the properties table is empty: a handful of
// available units and a few tour slots each, starting tomorrow morning.
func Seed(ctx context.Context, db *bun.DB, now time.Time) error {
	count, err := db.NewSelect().Model((*Property)(nil)).Count(ctx)
	if err != nil {
		return fmt.Errorf("count properties: %w", err)
	}
	if count > 0 {
		return nil
	}

	props := []Property{
		{Address: "101 Maple Street, Unit 2A", Beds: 1, Available: true},
		{Address: "245 Birch Avenue, Unit 5", Beds: 2, Available: true},
		{Address: "310 Cedar Lane, Unit 12", Beds: 2, Available: true},
		{Address: "78 Willow Court, Unit 1B", Beds: 3, Available: true},
		{Address: "52 Elm Drive, Unit 9", Beds: 2, Available: false},
	}
	if _, err := db.NewInsert().Model(&props).Exec(ctx); err != nil {
		return fmt.Errorf("seed properties: %w", err)
	}

	day := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	var slots []Slot
	for _, p := range props {
		if !p.Available {
			continue
		}
		for i := 0; i < 3; i++ {
			start := day.Add(time.Duration(24*i)*time.Hour + 10*time.Hour)
			slots = append(slots, Slot{
				PropertyID: p.ID,
				StartTime:  start,
				EndTime:    start.Add(30 * time.Minute),
			})
		}
	}
	if _, err := db.NewInsert().Model(&slots).Exec(ctx); err != nil {
		return fmt.Errorf("seed availability: %w", err)
	}

	log.Info().Int("properties", len(props)).Int("slots", len(slots)).Msg("seeded leasing inventory")
	return nil
}
