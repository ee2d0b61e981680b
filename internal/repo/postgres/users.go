package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/geocoder89/volunteerhub/internal/domain/user"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	observed
	pool *pgxpool.Pool
}

func NewUsersRepo(pool *pgxpool.Pool, prom *observability.Prom) *UsersRepo {
	return &UsersRepo{observed: observed{prom: prom}, pool: pool}
}

const selectUser = `
	SELECT u.id, u.email, u.first_name, u.last_name, u.availability, u.skills,
		COALESCE(array_agg(ui.category ORDER BY ui.category) FILTER (WHERE ui.category IS NOT NULL), '{}')
	FROM users u
	LEFT JOIN user_interests ui ON ui.user_id = u.id
`

func scanUser(row pgx.Row) (user.User, error) {
	var u user.User
	var interests []string

	err := row.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Availability, &u.Skills, &interests)
	if err != nil {
		return user.User{}, err
	}

	u.Interests = stringsToCategories(interests)
	return u, nil
}

func (r *UsersRepo) GetByID(ctx context.Context, id int64) (u user.User, err error) {
	err = r.observe("users.get_by_id", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.id = $1 GROUP BY u.id`, id))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

// GetByEmail expects a normalised email.
func (r *UsersRepo) GetByEmail(ctx context.Context, email string) (u user.User, err error) {
	err = r.observe("users.get_by_email", func() error {
		u, err = scanUser(r.pool.QueryRow(ctx, selectUser+` WHERE u.email = $1 GROUP BY u.id`, email))
		return err
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.User{}, user.ErrNotFound
	}
	return u, err
}

func (r *UsersRepo) List(ctx context.Context, f user.ListFilter) ([]user.User, error) {
	var conds []string
	var args []interface{}

	argsPosition := 1

	if f.Query != nil && strings.TrimSpace(*f.Query) != "" {
		conds = append(conds, fmt.Sprintf(
			`(u.email ILIKE $%d ESCAPE '\' OR u.first_name ILIKE $%d ESCAPE '\' OR u.last_name ILIKE $%d ESCAPE '\')`,
			argsPosition, argsPosition, argsPosition,
		))
		args = append(args, containsPattern(strings.TrimSpace(*f.Query)))
		argsPosition++
	}

	if f.Availability != nil {
		conds = append(conds, fmt.Sprintf("u.availability = $%d", argsPosition))
		args = append(args, *f.Availability)
	}

	query := selectUser

	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	query += " GROUP BY u.id ORDER BY u.id ASC"

	out := make([]user.User, 0)

	err := r.observe("users.list", func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			u, err := scanUser(rows)
			if err != nil {
				return err
			}
			out = append(out, u)
		}
		return rows.Err()
	})

	return out, err
}

func (r *UsersRepo) GetCredential(ctx context.Context, userID int64) (user.Credential, error) {
	c := user.Credential{UserID: userID}

	err := r.observe("credentials.get", func() error {
		return r.pool.QueryRow(ctx,
			`SELECT password_hash FROM credentials WHERE user_id = $1`, userID,
		).Scan(&c.PasswordHash)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return user.Credential{}, user.ErrNotFound
	}
	return c, err
}

// CreateAccount writes the user, interests and credential in one transaction.
// The unique index on email decides races between concurrent signups.
func (r *UsersRepo) CreateAccount(ctx context.Context, acc user.NewAccount) (u user.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	interests := categoriesToStrings(acc.Interests)

	err = r.observe("users.create_tx.insert_user", func() error {
		return tx.QueryRow(ctx, `
			INSERT INTO users (email, first_name, last_name, skills)
			VALUES ($1, $2, $3, $4)
			RETURNING id
		`, acc.Email, acc.FirstName, acc.LastName, acc.Skills).Scan(&u.ID)
	})

	if err != nil {
		if IsUniqueViolation(err) {
			err = user.ErrEmailTaken
		}
		return
	}

	err = r.observe("users.create_tx.insert_interests", func() error {
		_, e := tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, category)
			SELECT $1, unnest($2::text[])
			ON CONFLICT DO NOTHING
		`, u.ID, interests)
		return e
	})

	if err != nil {
		return
	}

	err = r.observe("users.create_tx.insert_credential", func() error {
		_, e := tx.Exec(ctx,
			`INSERT INTO credentials (user_id, password_hash) VALUES ($1, $2)`,
			u.ID, acc.PasswordHash,
		)
		return e
	})

	if err != nil {
		return
	}

	err = tx.Commit(ctx)
	if err != nil {
		if IsUniqueViolation(err) {
			err = user.ErrEmailTaken
		}
		return
	}

	u.Email = acc.Email
	u.FirstName = acc.FirstName
	u.LastName = acc.LastName
	u.Skills = acc.Skills
	u.Interests = stringsToCategories(interests)
	return
}

func (r *UsersRepo) UpdateCredential(ctx context.Context, userID int64, hash string) error {
	var affected int64

	err := r.observe("credentials.update", func() error {
		tag, e := r.pool.Exec(ctx, `
			UPDATE credentials
			SET password_hash = $2, updated_at = NOW()
			WHERE user_id = $1
		`, userID, hash)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return err
	}

	if affected == 0 {
		return user.ErrNotFound
	}
	return nil
}

// UpdateProfile overwrites the scalar fields and replaces the interest set.
func (r *UsersRepo) UpdateProfile(ctx context.Context, u user.User) (out user.User, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var affected int64

	err = r.observe("users.update_tx.update_user", func() error {
		tag, e := tx.Exec(ctx, `
			UPDATE users
			SET first_name = $2, last_name = $3, availability = $4, skills = $5, updated_at = NOW()
			WHERE id = $1
		`, u.ID, u.FirstName, u.LastName, u.Availability, u.Skills)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return
	}

	if affected == 0 {
		err = user.ErrNotFound
		return
	}

	interests := categoriesToStrings(u.Interests)

	err = r.observe("users.update_tx.replace_interests", func() error {
		if _, e := tx.Exec(ctx, `DELETE FROM user_interests WHERE user_id = $1`, u.ID); e != nil {
			return e
		}
		_, e := tx.Exec(ctx, `
			INSERT INTO user_interests (user_id, category)
			SELECT $1, unnest($2::text[])
			ON CONFLICT DO NOTHING
		`, u.ID, interests)
		return e
	})

	if err != nil {
		return
	}

	if err = tx.Commit(ctx); err != nil {
		return
	}

	u.Interests = stringsToCategories(interests)
	return u, nil
}

// DeleteAccount removes the credential and the user together; roles,
// interests and registrations go with the user through ON DELETE CASCADE.
func (r *UsersRepo) DeleteAccount(ctx context.Context, userID int64) (err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return
	}

	defer func() {
		_ = tx.Rollback(ctx)
	}()

	err = r.observe("users.delete_tx.credential", func() error {
		_, e := tx.Exec(ctx, `DELETE FROM credentials WHERE user_id = $1`, userID)
		return e
	})

	if err != nil {
		return
	}

	var affected int64

	err = r.observe("users.delete_tx.user", func() error {
		tag, e := tx.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
		affected = tag.RowsAffected()
		return e
	})

	if err != nil {
		return
	}

	if affected == 0 {
		err = user.ErrNotFound
		return
	}

	return tx.Commit(ctx)
}
