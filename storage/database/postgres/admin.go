package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

// adminCols aliases the joined users columns so sqlx can hydrate the nested
// User struct ("user.id", "user.email", ...).
const adminCols = `
	a.id, a.user_id, a.clave_admin, a.telefono, a.rfc, a.edad, a.ocupacion,
	u.id AS "user.id", u.username AS "user.username", u.email AS "user.email",
	u.first_name AS "user.first_name", u.last_name AS "user.last_name",
	u.is_active AS "user.is_active", u.password_hash AS "user.password_hash",
	u.created_at AS "user.created_at", u.updated_at AS "user.updated_at",
	u.last_login AS "user.last_login"
	FROM administradores a
	INNER JOIN users u ON u.id = a.user_id`

type adminRepository struct {
	exec core.DBExecutor
}

var _ account.AdminRepository = (*adminRepository)(nil) // interface compliance check

func NewAdminRepository(exec core.DBExecutor) *adminRepository {
	return &adminRepository{exec: exec}
}

func (repo adminRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo adminRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo adminRepository) CreateAdminProfile(ctx context.Context, prof account.AdminProfile, exec ...core.DBExecutor) (account.AdminProfile, error) {
	err := repo.getExec(exec).GetContext(
		ctx, &prof.ID,
		`INSERT INTO administradores (user_id, clave_admin, telefono, rfc, edad, ocupacion)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		prof.UserID, prof.AdminKey, prof.Phone, prof.RFC, prof.Age, prof.Occupation,
	)
	if err != nil {
		return account.AdminProfile{}, errors.Wrap(err, "inserting admin profile")
	}
	return prof, nil
}

func (repo adminRepository) GetAdminByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.AdminProfile, error) {
	var prof account.AdminProfile
	err := repo.getExec(exec).GetContext(ctx, &prof, `SELECT `+adminCols+` WHERE a.id = $1`, id)
	if err != nil {
		return account.AdminProfile{}, repo.trapNoRowsErr(err, "finding admin profile")
	}
	return prof, nil
}

func (repo adminRepository) QueryAdmins(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.AdminProfile, error) {
	query := `SELECT ` + adminCols
	if activeOnly {
		query += ` WHERE u.is_active`
	}
	query += listingOrder("a.id")

	profs := []account.AdminProfile{}
	if err := repo.getExec(exec).SelectContext(ctx, &profs, query); err != nil {
		return nil, errors.Wrap(err, "querying admin profiles")
	}
	return profs, nil
}

func (repo adminRepository) UpdateAdminProfile(ctx context.Context, prof account.AdminProfile, exec ...core.DBExecutor) (account.AdminProfile, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE administradores
		 SET clave_admin = $2, telefono = $3, rfc = $4, edad = $5, ocupacion = $6
		 WHERE id = $1`,
		prof.ID, prof.AdminKey, prof.Phone, prof.RFC, prof.Age, prof.Occupation,
	)
	if err != nil {
		return account.AdminProfile{}, errors.Wrap(err, "updating admin profile")
	}
	return prof, nil
}

func (repo adminRepository) CountActiveAdmins(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).GetContext(
		ctx, &cnt,
		`SELECT COUNT(*) FROM administradores a INNER JOIN users u ON u.id = a.user_id WHERE u.is_active`,
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting admins")
	}
	return cnt, nil
}
