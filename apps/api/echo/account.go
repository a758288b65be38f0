package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core/account"
)

type accountApi struct {
	svc      *account.Service
	validate *validator.Validate
}

// registerAccountAPI wires the three role lifecycles. Account creation stays
// open (the frontend provisions from an unauthenticated signup screen, as the
// original API does); everything else requires a token.
func registerAccountAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *account.Service, validate *validator.Validate) {
	api := accountApi{svc: svc, validate: validate}

	app.POST("/admin", api.createAdmin)
	app.POST("/maestros", api.createTeacher)
	app.POST("/alumnos", api.createStudent)

	g := app.Group("", jwt)
	g.GET("/admin", api.retrieveAdmin)
	g.PUT("/admin", api.updateAdmin)
	g.DELETE("/admin", api.destroyAdmin)
	g.GET("/lista-admins", api.queryAdmins)

	g.GET("/maestros", api.retrieveTeacher)
	g.PUT("/maestros", api.updateTeacher)
	g.DELETE("/maestros", api.destroyTeacher)

	g.GET("/alumnos", api.retrieveStudent)
	g.PUT("/alumnos", api.updateStudent)
	g.DELETE("/alumnos", api.destroyStudent)
	g.GET("/lista-alumnos", api.queryStudents)
}

// --- administradores ---

func (api *accountApi) createAdmin(ctx echo.Context) error {
	var data account.NewAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAdmin")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.CreateAdmin(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Administrador creado exitosamente", "id": prof.ID})
}

func (api *accountApi) retrieveAdmin(ctx echo.Context) error {
	prof, err := api.svc.GetAdmin(ctx.Request().Context(), resolveRecordID(ctx))
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding admin")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *accountApi) queryAdmins(ctx echo.Context) error {
	profs, err := api.svc.QueryAdmins(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying admins")
	}
	return ctx.JSON(http.StatusOK, profs)
}

func (api *accountApi) updateAdmin(ctx echo.Context) error {
	id := resolveRecordID(ctx)

	var data account.UpdateAdmin
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateAdmin")
	}
	if id == 0 && data.ID != nil {
		id = *data.ID
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.UpdateAdmin(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Administrador actualizado correctamente", "admin": prof})
}

func (api *accountApi) destroyAdmin(ctx echo.Context) error {
	id := resolveRecordID(ctx)
	err := api.svc.DeleteAdmin(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		// reported generically, attempted once
		return ctx.JSON(http.StatusBadRequest, echo.Map{"details": "Algo pasó al eliminar"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"details": "Administrador eliminado"})
}

// --- maestros ---

func (api *accountApi) createTeacher(ctx echo.Context) error {
	var data account.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.CreateTeacher(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Maestro creado exitosamente", "id": prof.ID})
}

func (api *accountApi) retrieveTeacher(ctx echo.Context) error {
	prof, err := api.svc.GetTeacher(ctx.Request().Context(), resolveRecordID(ctx))
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding teacher")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *accountApi) updateTeacher(ctx echo.Context) error {
	id := resolveRecordID(ctx)

	var data account.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if id == 0 && data.ID != nil {
		id = *data.ID
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.UpdateTeacher(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Maestro actualizado correctamente", "maestro": prof})
}

// destroyTeacher deactivates the account; the profile row stays for history.
func (api *accountApi) destroyTeacher(ctx echo.Context) error {
	id := resolveRecordID(ctx)
	if err := api.svc.DeactivateTeacher(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return ctx.JSON(http.StatusBadRequest, echo.Map{"details": "Algo pasó al eliminar"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"details": "Maestro eliminado"})
}

// --- alumnos ---

func (api *accountApi) createStudent(ctx echo.Context) error {
	var data account.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.CreateStudent(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"message": "Alumno creado exitosamente", "id": prof.ID})
}

func (api *accountApi) retrieveStudent(ctx echo.Context) error {
	prof, err := api.svc.GetStudent(ctx.Request().Context(), resolveRecordID(ctx))
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *accountApi) queryStudents(ctx echo.Context) error {
	profs, err := api.svc.QueryStudents(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, profs)
}

func (api *accountApi) updateStudent(ctx echo.Context) error {
	id := resolveRecordID(ctx)

	var data account.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if id == 0 && data.ID != nil {
		id = *data.ID
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	prof, err := api.svc.UpdateStudent(ctx.Request().Context(), id, data)
	if err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Alumno actualizado correctamente", "alumno": prof})
}

// destroyStudent deactivates the account; the profile row stays for history.
func (api *accountApi) destroyStudent(ctx echo.Context) error {
	id := resolveRecordID(ctx)
	if err := api.svc.DeactivateStudent(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == account.ErrNotFound {
			return errHttpNotFound
		}
		return ctx.JSON(http.StatusBadRequest, echo.Map{"details": "Algo pasó al eliminar"})
	}
	return ctx.JSON(http.StatusOK, echo.Map{"details": "Alumno eliminado"})
}
