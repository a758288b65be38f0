package report

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

type (
	// Totals carries the active-account counts per role category.
	Totals struct {
		Admins   int `json:"admins"`
		Teachers int `json:"maestros"`
		Students int `json:"alumnos"`
	}

	// TeacherSummary is a TeacherProfile whose subjects-taught attribute has
	// been decoded from its stored JSON text.
	TeacherSummary struct {
		account.TeacherProfile
		Subjects []string `json:"materias_json"`
	}

	Service struct {
		admins   account.AdminRepository
		teachers account.TeacherRepository
		students account.StudentRepository
		log      core.Logger
	}
)

func NewService(
	admins account.AdminRepository,
	teachers account.TeacherRepository,
	students account.StudentRepository,
	log core.Logger,
) *Service {
	return &Service{admins: admins, teachers: teachers, students: students, log: log}
}

// Totals counts active accounts per role category. A category with zero
// members yields 0; the response is always well-formed.
func (svc *Service) Totals(ctx context.Context) (Totals, error) {
	admins, err := svc.admins.CountActiveAdmins(ctx)
	if err != nil {
		return Totals{}, errors.Wrap(err, "counting admins")
	}
	teachers, err := svc.teachers.CountActiveTeachers(ctx)
	if err != nil {
		return Totals{}, errors.Wrap(err, "counting teachers")
	}
	students, err := svc.students.CountActiveStudents(ctx)
	if err != nil {
		return Totals{}, errors.Wrap(err, "counting students")
	}
	return Totals{Admins: admins, Teachers: teachers, Students: students}, nil
}

// Teachers lists active teachers with their subjects-taught lists decoded.
// A decode failure on one record degrades that record's list to empty and is
// logged only; it never aborts the listing.
func (svc *Service) Teachers(ctx context.Context) ([]TeacherSummary, error) {
	profs, err := svc.teachers.QueryTeachers(ctx, true /* activeOnly */)
	if err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}

	summaries := make([]TeacherSummary, 0, len(profs))
	for _, prof := range profs {
		summary := TeacherSummary{TeacherProfile: prof, Subjects: []string{}}
		if prof.SubjectsJSON != "" {
			if err := json.Unmarshal([]byte(prof.SubjectsJSON), &summary.Subjects); err != nil {
				if svc.log != nil {
					svc.log.Warn("malformed materias_json, falling back to empty list", err)
				}
				summary.Subjects = []string{}
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}
