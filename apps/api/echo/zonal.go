package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/core/zonal"
)

const (
	studentsCSVName = "Zonal Details"
	collegesCSVName = "District Details"
)

type zonalApi struct {
	srv *Server
	svc *zonal.Service
}

func registerZonalAPI(g *echo.Group, srv *Server) {
	api := zonalApi{srv: srv, svc: srv.deps.ZonalSvc}

	zg := g.Group("/zonal", srv.roleMiddleware(user.RoleZonalCampusLead))
	zg.GET("/zonal-details", api.details)
	zg.GET("/top-districts", api.topDistricts)
	zg.GET("/student-level", api.studentLevels)
	zg.GET("/student-details", api.students)
	zg.GET("/student-details/csv", api.exportStudents)
	zg.GET("/district-details", api.colleges)
	zg.GET("/district-details/csv", api.exportColleges)
}

func (api *zonalApi) details(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	det, err := api.svc.Details(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "getting zone details")
	}
	return respond(ctx, http.StatusOK, det)
}

func (api *zonalApi) topDistricts(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	dists, err := api.svc.TopDistricts(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "getting top districts")
	}
	return respond(ctx, http.StatusOK, dists)
}

func (api *zonalApi) studentLevels(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	colleges, err := api.svc.StudentLevels(ctx.Request().Context(), userID)
	if err != nil {
		return errors.Wrap(err, "getting student levels")
	}
	return respond(ctx, http.StatusOK, colleges)
}

func (api *zonalApi) students(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	pq := api.srv.bindPageQuery(ctx)
	students, pagination, err := api.svc.Students(ctx.Request().Context(), userID, &pq)
	if err != nil {
		return errors.Wrap(err, "querying zone students")
	}
	return respondPage(ctx, students, pagination)
}

func (api *zonalApi) exportStudents(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	students, err := api.svc.ExportStudents(ctx.Request().Context(), userID, api.srv.bindPageQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting zone students")
	}

	records := make([][]string, 0, len(students))
	for _, s := range students {
		records = append(records, s.CSVRecord())
	}
	return respondCSV(ctx, studentsCSVName, zonal.Student{}.CSVHeader(), records)
}

func (api *zonalApi) colleges(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	pq := api.srv.bindPageQuery(ctx)
	colleges, pagination, err := api.svc.Colleges(ctx.Request().Context(), userID, &pq)
	if err != nil {
		return errors.Wrap(err, "querying zone colleges")
	}
	return respondPage(ctx, colleges, pagination)
}

func (api *zonalApi) exportColleges(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	colleges, err := api.svc.ExportColleges(ctx.Request().Context(), userID, api.srv.bindPageQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting zone colleges")
	}

	records := make([][]string, 0, len(colleges))
	for _, c := range colleges {
		records = append(records, c.CSVRecord())
	}
	return respondCSV(ctx, collegesCSVName, zonal.College{}.CSVHeader(), records)
}
