package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OrganizationsRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewOrganizationsRepo(pool *pgxpool.Pool, prom *observability.Prom) *OrganizationsRepo {
	return &OrganizationsRepo{observed: observed{prom: prom}, pool: pool}
}

const selectOrganization = `
	SELECT id, name, description, category, COALESCE(created_by_user_id, 0)
	FROM organizations
`

func scanOrganization(row pgx.Row) (organization.Organization, error) {
	var o organization.Organization
	err := row.Scan(&o.ID, &o.Name, &o.Description, &o.Category, &o.CreatedByUserID)
	return o, err
}

// CreateWithAdmin inserts the organization and grants its creator the admin
// role in the same transaction.
func (r *OrganizationsRepo) CreateWithAdmin(ctx context.Context, o organization.Organization) (out organization.Organization, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("organizations.create_tx.insert", func() error {
		return tx.QueryRow(ctx, `
			INSERT INTO organizations (name, description, category, created_by_user_id)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, o.Name, o.Description, o.Category, o.CreatedByUserID).Scan(&o.ID)
	})

	if err != nil {
		return
	}

	err = r.observe("organizations.create_tx.grant_admin", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO roles (user_id, organization_id, permission_level)
			VALUES ($1, $2, $3)
		`, o.CreatedByUserID, o.ID, role.Admin)
		return e
	})

	if err != nil {
		return
	}

	if err = tx.Commit(ctx); err != nil {
		return
	}

	return o, nil
}

func (r *OrganizationsRepo) GetByID(ctx context.Context, id int64) (o organization.Organization, err error) {
	err = r.observe("organizations.get_by_id", func() error {
		o, err = scanOrganization(r.pool.QueryRow(ctx, selectOrganization+` WHERE id = $1`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return organization.Organization{}, organization.ErrNotFound
	}
	return o, err
}

func (r *OrganizationsRepo) List(ctx context.Context, f organization.ListFilter) ([]organization.Organization, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if f.Query != nil && strings.TrimSpace(*f.Query) != "" {
		conds = append(conds, fmt.Sprintf(`(name ILIKE $%d ESCAPE '\' OR description ILIKE $%d ESCAPE '\')`, argsPosition, argsPosition))
		args = append(args, containsPattern(strings.TrimSpace(*f.Query)))
		argsPosition++
	}

	if f.Category != nil {
		conds = append(conds, fmt.Sprintf("category = $%d", argsPosition))
		args = append(args, *f.Category)
	}

	query := selectOrganization

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " ORDER BY id ASC"

	out := make([]organization.Organization, 0)

	err := r.observe("organizations.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			o, err := scanOrganization(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})

	return out, err
}

func (r *OrganizationsRepo) Update(ctx context.Context, o organization.Organization) (out organization.Organization, err error) {
	err = r.observe("organizations.update", func() error {
		out, err = scanOrganization(r.pool.QueryRow(ctx, `
			UPDATE organizations
			SET name = $2, description = $3, category = $4
			WHERE id = $1
			RETURNING id, name, description, category, COALESCE(created_by_user_id, 0)
		`, o.ID, o.Name, o.Description, o.Category))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return organization.Organization{}, organization.ErrNotFound
	}
	return out, err
}

// Delete cascades to roles, events and their registrations.
func (r *OrganizationsRepo) Delete(ctx context.Context, id int64) error {
	var affected int64

	err := r.observe("organizations.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM organizations WHERE id = $1`, id)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return organization.ErrNotFound
	}
	return nil
}
