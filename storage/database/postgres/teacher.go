package postgres

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

const teacherCols = `
	m.id, m.user_id, m.id_trabajador, m.telefono, m.rfc, m.cubiculo, m.area_investigacion, m.materias_json,
	u.id AS "user.id", u.username AS "user.username", u.email AS "user.email",
	u.first_name AS "user.first_name", u.last_name AS "user.last_name",
	u.is_active AS "user.is_active", u.password_hash AS "user.password_hash",
	u.created_at AS "user.created_at", u.updated_at AS "user.updated_at",
	u.last_login AS "user.last_login"
	FROM maestros m
	INNER JOIN users u ON u.id = m.user_id`

type teacherRepository struct {
	exec core.DBExecutor
}

var _ account.TeacherRepository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

func (repo teacherRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return account.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacherProfile(ctx context.Context, prof account.TeacherProfile, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	err := repo.getExec(exec).GetContext(
		ctx, &prof.ID,
		`INSERT INTO maestros (user_id, id_trabajador, telefono, rfc, cubiculo, area_investigacion, materias_json)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING id`,
		prof.UserID, prof.StaffID, prof.Phone, prof.RFC, prof.Cubicle, prof.ResearchArea, prof.SubjectsJSON,
	)
	if err != nil {
		return account.TeacherProfile{}, errors.Wrap(err, "inserting teacher profile")
	}
	return prof, nil
}

func (repo teacherRepository) GetTeacherByID(ctx context.Context, id int, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	var prof account.TeacherProfile
	err := repo.getExec(exec).GetContext(ctx, &prof, `SELECT `+teacherCols+` WHERE m.id = $1`, id)
	if err != nil {
		return account.TeacherProfile{}, repo.trapNoRowsErr(err, "finding teacher profile")
	}
	return prof, nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, activeOnly bool, exec ...core.DBExecutor) ([]account.TeacherProfile, error) {
	query := `SELECT ` + teacherCols
	if activeOnly {
		query += ` WHERE u.is_active`
	}
	query += listingOrder("m.id")

	profs := []account.TeacherProfile{}
	if err := repo.getExec(exec).SelectContext(ctx, &profs, query); err != nil {
		return nil, errors.Wrap(err, "querying teacher profiles")
	}
	return profs, nil
}

func (repo teacherRepository) UpdateTeacherProfile(ctx context.Context, prof account.TeacherProfile, exec ...core.DBExecutor) (account.TeacherProfile, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE maestros
		 SET id_trabajador = $2, telefono = $3, rfc = $4, cubiculo = $5, area_investigacion = $6, materias_json = $7
		 WHERE id = $1`,
		prof.ID, prof.StaffID, prof.Phone, prof.RFC, prof.Cubicle, prof.ResearchArea, prof.SubjectsJSON,
	)
	if err != nil {
		return account.TeacherProfile{}, errors.Wrap(err, "updating teacher profile")
	}
	return prof, nil
}

func (repo teacherRepository) TeacherExists(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := repo.getExec(exec).GetContext(
		ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM maestros WHERE id = $1)`,
		id,
	)
	if err != nil {
		return false, errors.Wrap(err, "checking teacher existence")
	}
	return exists, nil
}

func (repo teacherRepository) CountActiveTeachers(ctx context.Context, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := repo.getExec(exec).GetContext(
		ctx, &cnt,
		`SELECT COUNT(*) FROM maestros m INNER JOIN users u ON u.id = m.user_id WHERE u.is_active`,
	)
	if err != nil {
		return 0, errors.Wrap(err, "counting teachers")
	}
	return cnt, nil
}
