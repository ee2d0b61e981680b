package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/event"
	"github.com/geocoder89/volunteerhub/internal/domain/registration"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RegistrationsRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewRegistrationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *RegistrationsRepo {
	return &RegistrationsRepo{observed: observed{prom: prom}, pool: pool}
}

func (r *RegistrationsRepo) Create(ctx context.Context, reg registration.Registration) (registration.Registration, error) {
	err := r.observe("registrations.create", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO event_registrations (user_id, event_id, organization_id, registration_time)
			VALUES ($1, $2, $3, $4)
		`, reg.UserID, reg.EventID, reg.OrganizationID, reg.RegistrationTime)
		return e
	})

	if err != nil {
		if IsUniqueViolation(err) {
			return registration.Registration{}, registration.ErrAlreadyRegistered
		}
		// the event was deleted between lookup and insert
		if _, ok := isForeignKeyViolation(err); ok {
			return registration.Registration{}, event.ErrNotFound
		}
		return registration.Registration{}, err
	}

	return reg, nil
}

// List joins events unconditionally; the summary is attached only when the
// filter asks for it.
func (r *RegistrationsRepo) List(ctx context.Context, f registration.ListFilter) ([]registration.Registration, error) {
	conds := []string{"r.user_id = $1"}
	args := []interface{}{f.UserID}

	argsPosition := 2

	if f.OrganizationID != nil {
		conds = append(conds, fmt.Sprintf("r.organization_id = $%d", argsPosition))
		args = append(args, *f.OrganizationID)
		argsPosition++
	}

	if f.EventID != nil {
		conds = append(conds, fmt.Sprintf("r.event_id = $%d", argsPosition))
		args = append(args, *f.EventID)
	}

	query := `
		SELECT r.user_id, r.event_id, r.organization_id, r.registration_time,
			e.name, e.location, e.date_time
		FROM event_registrations r
		JOIN events e ON e.id = r.event_id
		WHERE ` + strings.Join(conds, " AND ") + `
		ORDER BY r.registration_time ASC, r.event_id ASC`

	out := make([]registration.Registration, 0)

	err := r.observe("registrations.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var reg registration.Registration
			var ev registration.EventSummary

			err := rows.Scan(
				&reg.UserID, &reg.EventID, &reg.OrganizationID, &reg.RegistrationTime,
				&ev.Name, &ev.Location, &ev.DateTime,
			)
			if err != nil {
				return err
			}

			if f.IncludeEventDetails {
				ev.DateTime = ev.DateTime.UTC()
				reg.Event = &ev
			}
			out = append(out, reg)
		}
		return rows.Err()
	})

	return out, err
}

func (r *RegistrationsRepo) Get(ctx context.Context, orgID, eventID, userID int64) (reg registration.Registration, err error) {
	err = r.observe("registrations.get", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT user_id, event_id, organization_id, registration_time
			FROM event_registrations
			WHERE organization_id = $1 AND event_id = $2 AND user_id = $3
		`, orgID, eventID, userID).Scan(&reg.UserID, &reg.EventID, &reg.OrganizationID, &reg.RegistrationTime)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return registration.Registration{}, registration.ErrNotFound
	}
	return reg, err
}

func (r *RegistrationsRepo) Delete(ctx context.Context, userID, eventID int64) error {
	var affected int64

	err := r.observe("registrations.delete", func() error {
		tag, e := r.pool.Exec(ctx, `
			DELETE FROM event_registrations WHERE user_id = $1 AND event_id = $2
		`, userID, eventID)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return registration.ErrNotFound
	}
	return nil
}
