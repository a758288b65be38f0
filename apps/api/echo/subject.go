package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core/subject"
)

type subjectApi struct {
	svc      *subject.Service
	validate *validator.Validate
}

func registerSubjectAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *subject.Service, validate *validator.Validate) {
	api := subjectApi{svc: svc, validate: validate}

	g := app.Group("", jwt)
	g.GET("/materias-all", api.query)
	g.GET("/materias/verificar-nrc/:nrc", api.verifyNRC)

	// the main view adapts to the frontend: the id may ride the path, the
	// query string or the body
	g.GET("/materias", api.retrieveOrQuery)
	g.POST("/materias", api.create)
	g.PUT("/materias", api.update)
	g.DELETE("/materias", api.destroy)
	g.GET("/materias/:id", api.retrieveOrQuery)
	g.PUT("/materias/:id", api.update)
	g.DELETE("/materias/:id", api.destroy)
}

func (api *subjectApi) query(ctx echo.Context) error {
	subs, err := api.svc.Query(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	if subs == nil {
		subs = []subject.Subject{}
	}
	return ctx.JSON(http.StatusOK, subs)
}

func (api *subjectApi) retrieveOrQuery(ctx echo.Context) error {
	id := resolveRecordID(ctx)
	if id == 0 {
		return api.query(ctx)
	}

	sub, err := api.svc.GetByID(ctx.Request().Context(), id)
	if err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding subject")
	}
	return ctx.JSON(http.StatusOK, sub)
}

func (api *subjectApi) create(ctx echo.Context) error {
	var data subject.NewSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubject")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sub, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"materia_created_id": sub.ID})
}

func (api *subjectApi) update(ctx echo.Context) error {
	id := resolveRecordID(ctx)

	var data subject.UpdateSubject
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSubject")
	}
	if id == 0 && data.ID != nil {
		id = *data.ID
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if _, err := api.svc.Update(ctx.Request().Context(), id, data); err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Materia actualizada correctamente"})
}

func (api *subjectApi) destroy(ctx echo.Context) error {
	id := resolveRecordID(ctx)

	if err := api.svc.Delete(ctx.Request().Context(), id); err != nil {
		if errors.Cause(err) == subject.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting subject")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"message": "Materia eliminada correctamente"})
}

func (api *subjectApi) verifyNRC(ctx echo.Context) error {
	taken, err := api.svc.NRCTaken(ctx.Request().Context(), ctx.Param("nrc"))
	if err != nil {
		return errors.Wrap(err, "checking NRC")
	}
	return ctx.JSON(http.StatusOK, echo.Map{"existe": taken})
}
