package repositories

import (
	"context"
	"fmt"

	"bode-andarilho/agenda/internal/constants"
	"bode-andarilho/agenda/internal/models/dtos"

	"github.com/jmoiron/sqlx"
)

const headcountSelect = `
SELECT
	COUNT(*) AS total,
	COALESCE(SUM(CASE WHEN meal_tier IN (?, ?) THEN 1 ELSE 0 END), 0) AS with_meal,
	COALESCE(SUM(CASE WHEN meal_tier IN (?, ?) THEN 0 ELSE 1 END), 0) AS no_meal
FROM confirmations`

// AttendanceStatsRepository runs the aggregate queries behind attendee
// lists and the export link.
type AttendanceStatsRepository struct {
	db *sqlx.DB
}

func NewAttendanceStatsRepository(db *sqlx.DB) *AttendanceStatsRepository {
	return &AttendanceStatsRepository{db: db}
}

func mealArgs() []any {
	return []any{
		constants.MealTierFree, constants.MealTierPaidShared,
		constants.MealTierFree, constants.MealTierPaidShared,
	}
}

// Headcount counts an event's confirmations split by meal choice.
func (r *AttendanceStatsRepository) Headcount(ctx context.Context, eventID string) (dtos.Headcount, error) {
	var hc dtos.Headcount
	query := r.db.Rebind(headcountSelect + ` WHERE event_id = ?`)
	args := append(mealArgs(), eventID)
	if err := r.db.GetContext(ctx, &hc, query, args...); err != nil {
		return dtos.Headcount{}, fmt.Errorf("failed to count attendance: %w", err)
	}
	return hc, nil
}

// HeadcountsByEvent returns the headcount of each event id; events without
// confirmations are absent from the map.
func (r *AttendanceStatsRepository) HeadcountsByEvent(ctx context.Context, eventIDs []string) (map[string]dtos.Headcount, error) {
	out := make(map[string]dtos.Headcount, len(eventIDs))
	if len(eventIDs) == 0 {
		return out, nil
	}

	query, args, err := sqlx.In(
		`SELECT event_id,
			COUNT(*) AS total,
			COALESCE(SUM(CASE WHEN meal_tier IN (?, ?) THEN 1 ELSE 0 END), 0) AS with_meal,
			COALESCE(SUM(CASE WHEN meal_tier IN (?, ?) THEN 0 ELSE 1 END), 0) AS no_meal
		FROM confirmations
		WHERE event_id IN (?)
		GROUP BY event_id`,
		append(mealArgs(), eventIDs)...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build headcount query: %w", err)
	}

	var rows []struct {
		EventID string `db:"event_id"`
		dtos.Headcount
	}
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to count attendance: %w", err)
	}
	for _, row := range rows {
		out[row.EventID] = row.Headcount
	}
	return out, nil
}

// Ping checks the sqlx connection. Used by the health check.
func (r *AttendanceStatsRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
