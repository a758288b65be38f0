package subject_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/core/subject"
	"github.com/escolarapp/escolar/storage/database/inmem"
)

func setup() (*subject.Service, *inmem.AccountRepository) {
	accounts := inmem.NewAccountRepository()
	return subject.NewService(inmem.NewDB(), inmem.NewSubjectRepository(), accounts), accounts
}

func addTeacher(t *testing.T, accounts *inmem.AccountRepository) account.TeacherProfile {
	t.Helper()
	ctx := context.Background()
	usr, err := accounts.CreateUser(ctx, account.User{
		Username: "profe@uni.mx", Email: "profe@uni.mx", FirstName: "Ana", LastName: "García", IsActive: true,
	})
	require.NoError(t, err)
	prof, err := accounts.CreateTeacherProfile(ctx, account.TeacherProfile{UserID: usr.ID, SubjectsJSON: "[]"})
	require.NoError(t, err)
	return prof
}

func fieldErrors(t *testing.T, err error) map[string][]string {
	t.Helper()
	vErr, ok := errors.Cause(err).(*core.ValidationError)
	require.True(t, ok, "expected *core.ValidationError, got %v", err)
	return vErr.FieldErrorMap()
}

func TestServiceCreate(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()
	prof := addTeacher(t, accounts)

	sub, err := svc.Create(ctx, subject.NewSubject{
		NRC:       "12345",
		Name:      "Cálculo I",
		TeacherID: &prof.ID,
		Days:      "Lunes, Martes",
		StartTime: "14:00:00",
		EndTime:   "16:00:00",
	})
	require.NoError(t, err)
	assert.NotZero(t, sub.ID)
	assert.Equal(t, "Cálculo I", sub.Name)
	require.True(t, sub.TeacherID.Valid)
	assert.Equal(t, prof.ID, sub.TeacherID.Int)

	t.Run("duplicate NRC rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, subject.NewSubject{NRC: "12345", Name: "Otra"})
		flds := fieldErrors(t, err)
		assert.Equal(t, []string{"El NRC ya existe en la base de datos."}, flds["nrc"])
	})

	t.Run("unknown teacher rejected", func(t *testing.T) {
		missing := prof.ID + 99
		_, err := svc.Create(ctx, subject.NewSubject{NRC: "54321", Name: "Otra", TeacherID: &missing})
		flds := fieldErrors(t, err)
		assert.Equal(t, []string{"El profesor seleccionado no existe."}, flds["profesor"])
	})

	t.Run("no teacher is fine", func(t *testing.T) {
		sub, err := svc.Create(ctx, subject.NewSubject{NRC: "67890", Name: "Sin Profesor"})
		require.NoError(t, err)
		assert.False(t, sub.TeacherID.Valid)
	})
}

func TestServiceCreateConcurrentSameNRC(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, subject.NewSubject{NRC: "99999", Name: "Concurrente"})
		}()
	}
	wg.Wait()

	var created int
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "nrc")
	}
	assert.Equal(t, 1, created, "exactly one concurrent create must win")
}

func TestServiceUpdate(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()
	prof := addTeacher(t, accounts)

	sub, err := svc.Create(ctx, subject.NewSubject{NRC: "11111", Name: "Física"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, subject.NewSubject{NRC: "22222", Name: "Química"})
	require.NoError(t, err)

	t.Run("partial update keeps unsupplied fields", func(t *testing.T) {
		name := "Física II"
		updated, err := svc.Update(ctx, sub.ID, subject.UpdateSubject{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Física II", updated.Name)
		assert.Equal(t, "11111", updated.NRC)
	})

	t.Run("keeping own NRC passes", func(t *testing.T) {
		nrc := "11111"
		_, err := svc.Update(ctx, sub.ID, subject.UpdateSubject{NRC: &nrc})
		require.NoError(t, err)
	})

	t.Run("taking another record's NRC fails", func(t *testing.T) {
		nrc := other.NRC
		_, err := svc.Update(ctx, sub.ID, subject.UpdateSubject{NRC: &nrc})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "nrc")
	})

	t.Run("teacher reference re-checked", func(t *testing.T) {
		missing := prof.ID + 99
		_, err := svc.Update(ctx, sub.ID, subject.UpdateSubject{TeacherID: &missing})
		flds := fieldErrors(t, err)
		assert.Contains(t, flds, "profesor")
	})

	t.Run("missing record", func(t *testing.T) {
		name := "X"
		_, err := svc.Update(ctx, 404404, subject.UpdateSubject{Name: &name})
		assert.Equal(t, subject.ErrNotFound, errors.Cause(err))
	})
}

func TestServiceReadsSurviveTeacherDeactivation(t *testing.T) {
	svc, accounts := setup()
	ctx := context.Background()
	prof := addTeacher(t, accounts)

	sub, err := svc.Create(ctx, subject.NewSubject{NRC: "66666", Name: "Álgebra", TeacherID: &prof.ID})
	require.NoError(t, err)

	require.NoError(t, accounts.SetUserActive(ctx, prof.UserID, false))

	// the reference stays; deactivation never cascades into subjects
	got, err := svc.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	require.True(t, got.TeacherID.Valid)
	assert.Equal(t, prof.ID, got.TeacherID.Int)

	subs, err := svc.Query(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "66666", subs[0].NRC)
}

func TestServiceDelete(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	sub, err := svc.Create(ctx, subject.NewSubject{NRC: "33333", Name: "Historia"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, sub.ID))
	_, err = svc.GetByID(ctx, sub.ID)
	assert.Equal(t, subject.ErrNotFound, errors.Cause(err))

	assert.Equal(t, subject.ErrNotFound, errors.Cause(svc.Delete(ctx, sub.ID)))
}

func TestServiceNRCTaken(t *testing.T) {
	svc, _ := setup()
	ctx := context.Background()

	_, err := svc.Create(ctx, subject.NewSubject{NRC: "44444", Name: "Arte"})
	require.NoError(t, err)

	taken, err := svc.NRCTaken(ctx, "44444")
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = svc.NRCTaken(ctx, "55555")
	require.NoError(t, err)
	assert.False(t, taken)
}
