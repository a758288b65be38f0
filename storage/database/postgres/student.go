package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

const studentCols = `
	al.id, al.user_id, al.matricula, al.curp, al.rfc, al.edad, al.telefono, al.ocupacion,
	u.id AS "user.id", u.username AS "user.username", u.email AS "user.email",
	u.first_name AS "user.first_name", u.last_name AS "user.last_name",
	u.is_active AS "user.is_active", u.password_hash AS "user.password_hash",
	u.created_at AS "user.created_at", u.updated_at AS "user.updated_at",
	u.last_login AS "user.last_login"
	FROM alumnos al
	INNER JOIN users u ON u.id = al.user_id`

type studentRepository struct {
	exec core.DBExecutor
}

var _ account.StudentRepository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

func (repo studentRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CreateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	err := repo.getExec(exec).GetContext(
		ctx, &prof.ID,
		`INSERT INTO alumnos (user_id, matricula, curp, rfc, edad, telefono, ocupacion)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		prof.UserID, prof.Enrollment, prof.CURP, prof.RFC, prof.Age, prof.Phone, prof.Occupation,
	)
	if err != nil {
		return account.StudentProfile{}, errors.Wrap(err, "inserting student profile")
	}
	return prof, nil
}

func (repo studentRepository) GetStudentByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.StudentProfile, error) {
	var prof account.StudentProfile
	err := repo.getExec(exec).GetContext(ctx, &prof, `SELECT `+studentCols+` WHERE al.id = $1`, id)
	if err != nil {
		return account.StudentProfile{}, repo.trapNoRowsErr(err, "finding student profile")
	}
	return prof, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.StudentProfile, error) {
	query := `SELECT ` + studentCols
	if activeOnly {
		query += ` WHERE u.is_active`
	}
	query += listingOrder("al.id")

	profs := []account.StudentProfile{}
	if err := repo.getExec(exec).SelectContext(ctx, &profs, query); err != nil {
		return nil, errors.Wrap(err, "querying student profiles")
	}
	return profs, nil
}

func (repo studentRepository) UpdateStudentProfile(ctx context.Context, prof account.StudentProfile, exec ...core.DBExecutor) (account.StudentProfile, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE alumnos
		 SET matricula = $2, curp = $3, rfc = $4, edad = $5, telefono = $6, ocupacion = $7
		 WHERE id = $1`,
		prof.ID, prof.Enrollment, prof.CURP, prof.RFC, prof.Age, prof.Phone, prof.Occupation,
	)
	if err != nil {
		return account.StudentProfile{}, errors.Wrap(err, "updating student profile")
	}
	return prof, nil
}

func (repo studentRepository) CountActiveStudents(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).GetContext(
		ctx, &cnt,
		`SELECT COUNT(*) FROM alumnos al INNER JOIN users u ON u.id = al.user_id WHERE u.is_active`,
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return cnt, nil
}
