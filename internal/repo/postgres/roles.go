package postgres

import (
	"context"
	"errors"

	"github.com/geocoder89/volunteerhub/internal/domain/organization"
	"github.com/geocoder89/volunteerhub/internal/domain/role"
	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RolesRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewRolesRepo(pool *pgxpool.Pool, prom *observability.Prom) *RolesRepo {
	return &RolesRepo{observed: observed{prom: prom}, pool: pool}
}

func (r *RolesRepo) GetRole(ctx context.Context, userID, orgID int64) (role.Role, error) {
	out := role.Role{UserID: userID, OrganizationID: orgID}

	err := r.observe("roles.get", func() error {
		return r.pool.QueryRow(ctx, `
			SELECT permission_level FROM roles
			WHERE user_id = $1 AND organization_id = $2
		`, userID, orgID).Scan(&out.PermissionLevel)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return role.Role{}, role.ErrNotFound
	}
	return out, err
}

func (r *RolesRepo) ListByUser(ctx context.Context, userID int64) ([]role.Role, error) {
	out := make([]role.Role, 0)

	err := r.observe("roles.list_by_user", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT user_id, organization_id, permission_level FROM roles
			WHERE user_id = $1
			ORDER BY organization_id
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var rl role.Role
			if err := rows.Scan(&rl.UserID, &rl.OrganizationID, &rl.PermissionLevel); err != nil {
				return err
			}
			out = append(out, rl)
		}
		return rows.Err()
	})

	return out, err
}

func (r *RolesRepo) ListMembers(ctx context.Context, orgID int64) ([]role.Member, error) {
	out := make([]role.Member, 0)

	err := r.observe("roles.list_members", func() error {
		rows, err := r.pool.Query(ctx, `
			SELECT r.user_id, r.organization_id, u.first_name || ' ' || u.last_name, r.permission_level
			FROM roles r
			JOIN users u ON u.id = r.user_id
			WHERE r.organization_id = $1
			ORDER BY r.user_id
		`, orgID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var m role.Member
			if err := rows.Scan(&m.UserID, &m.OrganizationID, &m.Name, &m.PermissionLevel); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})

	return out, err
}

// AddRole fails with role.ErrAlreadyMember on the (user, organization) key
// and with a not-found error when either side does not exist.
func (r *RolesRepo) AddRole(ctx context.Context, rl role.Role) error {
	err := r.observe("roles.insert", func() error {
		_, e := r.pool.Exec(ctx, `
			INSERT INTO roles (user_id, organization_id, permission_level)
			VALUES ($1, $2, $3)
		`, rl.UserID, rl.OrganizationID, rl.PermissionLevel)
		return e
	})

	if err == nil {
		return nil
	}

	if IsUniqueViolation(err) {
		return role.ErrAlreadyMember
	}

	if constraint, ok := isForeignKeyViolation(err); ok {
		if constraint == "roles_user_id_fkey" {
			return user.ErrNotFound
		}
		return organization.ErrNotFound
	}
	return err
}

func (r *RolesRepo) UpdateRole(ctx context.Context, rl role.Role) error {
	var affected int64

	err := r.observe("roles.update", func() error {
		tag, e := r.pool.Exec(ctx, `
			UPDATE roles SET permission_level = $3
			WHERE user_id = $1 AND organization_id = $2
		`, rl.UserID, rl.OrganizationID, rl.PermissionLevel)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return role.ErrNotFound
	}
	return nil
}

func (r *RolesRepo) DeleteRole(ctx context.Context, userID, orgID int64) error {
	var affected int64

	err := r.observe("roles.delete", func() error {
		tag, e := r.pool.Exec(ctx, `
			DELETE FROM roles WHERE user_id = $1 AND organization_id = $2
		`, userID, orgID)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return role.ErrNotFound
	}
	return nil
}
