package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/escolarapp/escolar/core/report"
)

type reportApi struct {
	svc *report.Service
}

// registerReportAPI exposes the dashboard views. The counters are served
// without authentication, as the original does; the teacher listing carries
// account data and stays behind the token.
func registerReportAPI(app *echo.Echo, jwt echo.MiddlewareFunc, svc *report.Service) {
	api := reportApi{svc: svc}

	app.GET("/total-users", api.totals)
	app.GET("/lista-maestros", api.queryTeachers, jwt)
}

func (api *reportApi) totals(ctx echo.Context) error {
	totals, err := api.svc.Totals(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "counting users")
	}
	return ctx.JSON(http.StatusOK, totals)
}

// queryTeachers lists active teachers with their materias_json decoded, the
// shape the dashboard renders.
func (api *reportApi) queryTeachers(ctx echo.Context) error {
	summaries, err := api.svc.Teachers(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	return ctx.JSON(http.StatusOK, summaries)
}
