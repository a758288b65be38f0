package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/escolarapp/escolar/core"
)

var (
	// errors; the messages of the Err*Exists pair are client-facing
	ErrNotFound        = errors.New("materia no encontrada")
	ErrNRCExists       = errors.New("El NRC ya existe en la base de datos.")
	ErrTeacherNotFound = errors.New("El profesor seleccionado no existe.")
)

type (
	Repository interface {
		// NRCExists reports whether a Subject other than excludedIDs owns nrc.
		NRCExists(ctx context.Context, nrc string, excludedIDs []int, exec ...core.DBExecutor) (bool, error)
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		// QuerySubjects returns all subjects ordered by identifier ascending.
		QuerySubjects(ctx context.Context, exec ...core.DBExecutor) ([]Subject, error)
		GetSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		DeleteSubjectByID(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	// TeacherDirectory answers existence checks for teacher references.
	TeacherDirectory interface {
		TeacherExists(ctx context.Context, id int, exec ...core.DBExecutor) (bool, error)
	}

	Service struct {
		db       core.DB
		repo     Repository
		teachers TeacherDirectory
	}
)

func NewService(db core.DB, repo Repository, teachers TeacherDirectory) *Service {
	return &Service{db: db, repo: repo, teachers: teachers}
}

// checkNRC rejects nrc if a record other than excludedIDs already owns it.
func (svc *Service) checkNRC(ctx context.Context, nrc string, excludedIDs []int, exec ...core.DBExecutor) error {
	taken, err := svc.repo.NRCExists(ctx, nrc, excludedIDs, exec...)
	if err != nil {
		return errors.Wrap(err, "checking NRC uniqueness")
	}
	if taken {
		return nrcExistsError()
	}
	return nil
}

// checkTeacher rejects a supplied teacher reference that resolves to no TeacherProfile.
func (svc *Service) checkTeacher(ctx context.Context, teacherID *int, exec ...core.DBExecutor) error {
	if teacherID == nil {
		return nil
	}
	exists, err := svc.teachers.TeacherExists(ctx, *teacherID, exec...)
	if err != nil {
		return errors.Wrap(err, "checking teacher existence")
	}
	if !exists {
		return core.NewValidationError(ErrTeacherNotFound, core.FieldError{Field: "profesor", Error: ErrTeacherNotFound.Error()})
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		NRC:       ns.NRC,
		Name:      ns.Name,
		Days:      string(ns.Days),
		StartTime: ns.StartTime,
		EndTime:   ns.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ns.TeacherID != nil {
		sub.TeacherID = null.IntFrom(*ns.TeacherID)
	}

	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if err := svc.checkNRC(ctx, ns.NRC, nil, tx); err != nil {
			return err
		}
		if err := svc.checkTeacher(ctx, ns.TeacherID, tx); err != nil {
			return err
		}
		var err error
		sub, err = svc.repo.CreateSubject(ctx, sub, tx)
		if errors.Cause(err) == ErrNRCExists {
			// a concurrent insert beat the pre-check; the unique constraint wins
			return nrcExistsError()
		}
		return err
	})
	if err != nil {
		return Subject{}, err
	}
	return sub, nil
}

func (svc *Service) Query(ctx context.Context) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Subject, error) {
	return svc.repo.GetSubjectByID(ctx, id)
}

// NRCTaken reports existence of a record with the given NRC; no record contents.
func (svc *Service) NRCTaken(ctx context.Context, nrc string) (bool, error) {
	return svc.repo.NRCExists(ctx, core.CleanString(nrc), nil)
}

func (svc *Service) Update(ctx context.Context, id int, us UpdateSubject) (Subject, error) {
	var sub Subject
	err := core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		orig, err := svc.repo.GetSubjectByID(ctx, id, tx)
		if err != nil {
			return err
		}
		if us.NRC != nil && *us.NRC != orig.NRC {
			// keeping one's own NRC passes; taking another record's does not
			if err := svc.checkNRC(ctx, *us.NRC, []int{orig.ID}, tx); err != nil {
				return err
			}
		}
		if err := svc.checkTeacher(ctx, us.TeacherID, tx); err != nil {
			return err
		}

		sub = us.apply(orig)
		sub.UpdatedAt = time.Now().UTC()
		sub, err = svc.repo.UpdateSubject(ctx, sub, tx)
		if errors.Cause(err) == ErrNRCExists {
			return nrcExistsError()
		}
		return err
	})
	if err != nil {
		return Subject{}, err
	}
	return sub, nil
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return core.Atomic(ctx, svc.db, func(tx core.DBTransactor) error {
		if _, err := svc.repo.GetSubjectByID(ctx, id, tx); err != nil {
			return err
		}
		return svc.repo.DeleteSubjectByID(ctx, id, tx)
	})
}

func nrcExistsError() error {
	return core.NewValidationError(ErrNRCExists, core.FieldError{Field: "nrc", Error: ErrNRCExists.Error()})
}
