package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/subject"
)

type subjectRepository struct {
	exec core.DBExecutor
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{exec: exec}
}

func (repo subjectRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.exec
}

func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return subject.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) NRCExists(ctx context.Context, nrc string, excludedIDs []int, exec ...core.DBExecutor) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM materias WHERE nrc = ?`
	args := []interface{}{nrc}
	if len(excludedIDs) > 0 {
		q, inArgs, err := sqlx.In(` AND id NOT IN (?)`, excludedIDs)
		if err != nil {
			return false, errors.Wrap(err, "expanding NRC exclusion list")
		}
		query += q
		args = append(args, inArgs...)
	}
	query += `)`

	var exists bool
	err := repo.getExec(exec).GetContext(ctx, &exists, sqlx.Rebind(sqlx.DOLLAR, query), args...)
	if err != nil {
		return false, errors.Wrap(err, "checking NRC uniqueness")
	}
	return exists, nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	err := repo.getExec(exec).GetContext(
		ctx, &sub.ID,
		`INSERT INTO materias (nrc, nombre_materia, profesor_id, dias, hora_inicio, hora_fin, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		sub.NRC, sub.Name, sub.TeacherID, sub.Days, sub.StartTime, sub.EndTime, sub.CreatedAt, sub.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return subject.Subject{}, subject.ErrNRCExists
	}
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]subject.Subject, error) {
	subs := []subject.Subject{}
	err := repo.getExec(exec).SelectContext(ctx, &subs, `SELECT * FROM materias`+listingOrder("id"))
	if err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	return subs, nil
}

func (repo subjectRepository) GetSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (subject.Subject, error) {
	var sub subject.Subject
	err := repo.getExec(exec).GetContext(ctx, &sub, `SELECT * FROM materias WHERE id = $1`, id)
	if err != nil {
		return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject")
	}
	return sub, nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	_, err := repo.getExec(exec).ExecContext(
		ctx,
		`UPDATE materias
		 SET nrc = $2, nombre_materia = $3, profesor_id = $4, dias = $5, hora_inicio = $6, hora_fin = $7, updated_at = $8
		 WHERE id = $1`,
		sub.ID, sub.NRC, sub.Name, sub.TeacherID, sub.Days, sub.StartTime, sub.EndTime, sub.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return subject.Subject{}, subject.ErrNRCExists
	}
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "updating subject")
	}
	return sub, nil
}

func (repo subjectRepository) DeleteSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) error {
	_, err := repo.getExec(exec).ExecContext(ctx, `DELETE FROM materias WHERE id = $1`, id)
	return errors.Wrap(err, "deleting subject")
}
