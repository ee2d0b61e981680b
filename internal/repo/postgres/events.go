package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventsRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewEventsRepo(pool *pgxpool.Pool, prom *observability.Prom) *EventsRepo {
	return &EventsRepo{observed: observed{prom: prom}, pool: pool}
}

const eventColumns = `id, name, description, location, date_time, organization_id`

func scanEvent(row pgx.Row) (event.Event, error) {
	var e event.Event
	err := row.Scan(&e.ID, &e.Name, &e.Description, &e.Location, &e.DateTime, &e.OrganizationID)
	return e, err
}

func (r *EventsRepo) Create(ctx context.Context, e event.Event) (out event.Event, err error) {
	err = r.observe("events.create", func() error {
		out, err = scanEvent(r.pool.QueryRow(ctx, `
			INSERT INTO events (name, description, location, date_time, organization_id)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+eventColumns,
			e.Name, e.Description, e.Location, e.DateTime, e.OrganizationID,
		))
		return err
	})

	if _, ok := isForeignKeyViolation(err); ok {
		return event.Event{}, organization.ErrNotFound
	}
	return out, err
}

func (r *EventsRepo) List(ctx context.Context, f event.ListEventsFilter) ([]event.Event, error) {
	var conds []string
	var args []interface{}

	if f.OrganizationID != nil {
		conds = append(conds, fmt.Sprintf("organization_id = $%d", len(args)+1))
		args = append(args, *f.OrganizationID)
	}

	query := `SELECT ` + eventColumns + ` FROM events`

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY date_time ASC, id ASC"

	out := make([]event.Event, 0)

	err := r.observe("events.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			e, err := scanEvent(rows)
			if err != nil {
				return err
			}
			out = append(out, e)
		}
		return rows.Err()
	})

	return out, err
}

func (r *EventsRepo) GetByID(ctx context.Context, id int64) (e event.Event, err error) {
	err = r.observe("events.get_by_id", func() error {
		e, err = scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	return e, err
}

func (r *EventsRepo) Update(ctx context.Context, e event.Event) (out event.Event, err error) {
	err = r.observe("events.update", func() error {
		out, err = scanEvent(r.pool.QueryRow(ctx, `
			UPDATE events
			SET name = $2, description = $3, location = $4, date_time = $5, organization_id = $6
			WHERE id = $1
			RETURNING `+eventColumns,
			e.ID, e.Name, e.Description, e.Location, e.DateTime, e.OrganizationID,
		))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return event.Event{}, event.ErrNotFound
	}
	if _, ok := isForeignKeyViolation(err); ok {
		return event.Event{}, organization.ErrNotFound
	}
	return out, err
}

func (r *EventsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("events.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	// if no rows were deleted as a result return a not found error
	if affected == 0 {
		return event.ErrNotFound
	}

	return nil
}
