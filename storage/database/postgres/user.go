package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

const uniqueViolation = "23505" // pg error class

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}

// listingOrder renders the ORDER BY clause of a listing query. Every listing
// surface guarantees ascending id order.
func listingOrder(field string) string {
	return ` ORDER BY ` + core.DBOrdering{Field: field, Ascending: true}.String()
}

type userRepository struct {
	exec core.DBExecutor
}

var _ account.UserRepository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{exec: exec}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

// trapNoRowsErr maps psql "no rows" err to account.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) EmailTaken(ctx context.Context, email string, exec ...core.DBExecutor) (bool, error) {
	var taken bool
	err := repo.getExec(exec).GetContext(
		ctx, &taken,
		`SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`,
		email,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking email uniqueness")
	}
	return taken, nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr account.User, exec ...core.DBExecutor) (account.User, error) {
	err := repo.getExec(exec).GetContext(
		ctx, &usr.ID,
		`INSERT INTO users (username, email, first_name, last_name, is_active, password_hash, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		usr.Username, usr.Email, usr.FirstName, usr.LastName, usr.IsActive, usr.PasswordHash, usr.CreatedAt, usr.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return account.User{}, account.ErrEmailExists
	}
	if err != nil {
		return account.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.User, error) {
	var usr account.User
	err := repo.getExec(exec).GetContext(ctx, &usr, `SELECT * FROM users WHERE id = $1`, id)
	if err != nil {
		return account.User{}, repo.trapNoRowsErr(err, "finding user by ID")
	}
	if err = repo.loadRoles(ctx, &usr, exec...); err != nil {
		return account.User{}, err
	}
	return usr, nil
}

func (repo userRepository) GetUserByUsernameOrEmail(ctx context.Context, username string, exec ...core.DBExecutor) (account.User, error) {
	var usr account.User
	err := repo.getExec(exec).GetContext(
		ctx, &usr,
		`SELECT * FROM users WHERE username = $1 OR email = $1`,
		username,
	)
	if err != nil {
		return account.User{}, repo.trapNoRowsErr(err, "finding user")
	}
	if err = repo.loadRoles(ctx, &usr, exec...); err != nil {
		return account.User{}, err
	}
	return usr, nil
}

func (repo userRepository) loadRoles(ctx context.Context, usr *account.User, exec ...core.DBExecutor) error {
	err := repo.getExec(exec).SelectContext(
		ctx, &usr.Roles,
		`SELECT g.name FROM groups g
		 INNER JOIN user_groups ug ON ug.group_id = g.id
		 WHERE ug.user_id = $1
		 ORDER BY g.name`,
		usr.ID,
	)
	return errors.Wrap(err, "loading user roles")
}

func (repo userRepository) UpdateUserNames(ctx context.Context, id int, firstName, lastName string, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE users SET first_name = $2, last_name = $3, updated_at = $4 WHERE id = $1`,
		id, firstName, lastName, time.Now().UTC(),
	)
	return errors.Wrap(err, "updating user names")
}

func (repo userRepository) SetUserActive(ctx context.Context, id int, active bool, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE users SET is_active = $2, updated_at = $3 WHERE id = $1`,
		id, active, time.Now().UTC(),
	)
	return errors.Wrap(err, "setting user active flag")
}

func (repo userRepository) SetLastLogin(ctx context.Context, id int, t time.Time, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `UPDATE users SET last_login = $2 WHERE id = $1`, id, t)
	return errors.Wrap(err, "setting last login")
}

func (repo userRepository) DeleteUserByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	// profiles and group links cascade
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return errors.Wrap(err, "deleting user")
}

func (repo userRepository) GetOrCreateGroup(ctx context.Context, name string, exec ...core.DBExecutor) (account.Group, error) {
	var grp account.Group
	err := repo.getExec(exec).GetContext(
		ctx, &grp,
		`INSERT INTO groups (name) VALUES ($1)
		 ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
		 RETURNING id, name`,
		name,
	)
	if err != nil {
		return account.Group{}, errors.Wrap(err, "getting or creating group")
	}
	return grp, nil
}

func (repo userRepository) AddUserToGroup(ctx context.Context, userID, groupID int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`INSERT INTO user_groups (user_id, group_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, groupID,
	)
	return errors.Wrap(err, "associating user to group")
}
