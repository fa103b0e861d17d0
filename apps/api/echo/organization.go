package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/organization"
	"github.com/trezcool/campusdash/core/user"
)

const institutionsCSVName = "Institutions"

type orgApi struct {
	srv *Server
	svc *organization.Service
}

func registerOrganizationAPI(g *echo.Group, srv *Server) {
	api := orgApi{srv: srv, svc: srv.deps.OrgSvc}

	og := g.Group("/organisation", srv.roleMiddleware(user.RoleAdmin))

	ig := og.Group("/institutes")
	ig.GET("/show/:organisation_type", api.queryInstitutions)
	ig.GET("/show/:organisation_type/:district_id", api.queryInstitutions)
	ig.POST("/add", api.createInstitution)
	ig.GET("/csv/:org_type", api.exportInstitutions)
	ig.GET("/info/all_inst", api.allInstitutions)
	ig.GET("/info/:org_code", api.retrieveInstitution)
	ig.GET("/names/:organisation_type", api.institutionNames)
	ig.GET("/:org_code", api.retrieveInstitution)
	ig.POST("/:org_code", api.updateInstitution)
	ig.PUT("/:org_code", api.updateInstitution)
	ig.DELETE("/:org_code", api.destroyInstitution)

	ag := ig.Group("/org/affiliation")
	ag.GET("", api.queryAffiliations)
	ag.POST("", api.createAffiliation)
	ag.GET("/:affiliation_id", api.retrieveAffiliation)
	ag.PUT("/:affiliation_id", api.updateAffiliation)
	ag.DELETE("/:affiliation_id", api.destroyAffiliation)

	dg := og.Group("/departments")
	dg.GET("", api.queryDepartments)
	dg.POST("", api.createDepartment)
	dg.GET("/:dept_id", api.retrieveDepartment)
	dg.PUT("/edit/:department_id", api.updateDepartment)
	dg.DELETE("/delete/:department_id", api.destroyDepartment)
}

func institutionFilter(ctx echo.Context, typeParam string) (organization.InstitutionFilter, error) {
	filter := organization.InstitutionFilter{
		OrgType:    ctx.Param(typeParam),
		DistrictID: ctx.Param("district_id"),
	}
	if !organization.IsType(filter.OrgType) {
		return filter, core.NewFieldError("org_type", "invalid organisation type")
	}
	return filter, nil
}

// Institutions

func (api *orgApi) queryInstitutions(ctx echo.Context) error {
	filter, err := institutionFilter(ctx, "organisation_type")
	if err != nil {
		return err
	}
	pq := api.srv.bindPageQuery(ctx)
	insts, pagination, err := api.svc.QueryInstitutions(ctx.Request().Context(), filter, &pq)
	if err != nil {
		return errors.Wrap(err, "querying institutions")
	}
	return respondPage(ctx, insts, pagination)
}

func (api *orgApi) exportInstitutions(ctx echo.Context) error {
	filter, err := institutionFilter(ctx, "org_type")
	if err != nil {
		return err
	}
	insts, err := api.svc.ExportInstitutions(ctx.Request().Context(), filter, api.srv.bindPageQuery(ctx))
	if err != nil {
		return errors.Wrap(err, "exporting institutions")
	}

	records := make([][]string, 0, len(insts))
	for _, inst := range insts {
		records = append(records, inst.CSVRecord())
	}
	return respondCSV(ctx, institutionsCSVName, organization.Institution{}.CSVHeader(), records)
}

func (api *orgApi) allInstitutions(ctx echo.Context) error {
	insts, err := api.svc.AllInstitutions(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying all institutions")
	}
	return respond(ctx, http.StatusOK, insts)
}

func (api *orgApi) retrieveInstitution(ctx echo.Context) error {
	info, err := api.svc.GetInstitutionInfo(ctx.Request().Context(), ctx.Param("org_code"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, info)
}

func (api *orgApi) institutionNames(ctx echo.Context) error {
	names, err := api.svc.InstitutionNames(ctx.Request().Context(), ctx.Param("organisation_type"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, names)
}

func (api *orgApi) createInstitution(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data organization.NewInstitution
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewInstitution")
	}
	if err = data.Validate(ctx.Request().Context(), api.srv.deps.Validate, api.svc); err != nil {
		return err
	}

	info, err := api.svc.CreateInstitution(ctx.Request().Context(), userID, data)
	if err != nil {
		return errors.Wrap(err, "creating institution")
	}
	return respond(ctx, http.StatusCreated, info)
}

func (api *orgApi) updateInstitution(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	org, err := api.svc.GetOrganization(ctx.Request().Context(), ctx.Param("org_code"))
	if err != nil {
		return err
	}

	var data organization.UpdateInstitution
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateInstitution")
	}
	if err = data.Validate(ctx.Request().Context(), api.srv.deps.Validate, api.svc, &org); err != nil {
		return err
	}

	info, err := api.svc.UpdateInstitution(ctx.Request().Context(), userID, org)
	if err != nil {
		return errors.Wrap(err, "updating institution")
	}
	return respond(ctx, http.StatusOK, info)
}

func (api *orgApi) destroyInstitution(ctx echo.Context) error {
	if err := api.svc.DeleteInstitution(ctx.Request().Context(), ctx.Param("org_code")); err != nil {
		return err
	}
	return respondMessage(ctx, http.StatusOK, "Institution deleted successfully")
}

// Affiliations

func (api *orgApi) queryAffiliations(ctx echo.Context) error {
	pq := api.srv.bindPageQuery(ctx)
	affs, pagination, err := api.svc.QueryAffiliations(ctx.Request().Context(), &pq)
	if err != nil {
		return errors.Wrap(err, "querying affiliations")
	}
	return respondPage(ctx, affs, pagination)
}

func (api *orgApi) retrieveAffiliation(ctx echo.Context) error {
	aff, err := api.svc.GetAffiliation(ctx.Request().Context(), ctx.Param("affiliation_id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, aff)
}

func (api *orgApi) createAffiliation(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data organization.TitleInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TitleInput")
	}
	if err = data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	aff, err := api.svc.CreateAffiliation(ctx.Request().Context(), userID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, aff)
}

func (api *orgApi) updateAffiliation(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	aff, err := api.svc.GetAffiliation(ctx.Request().Context(), ctx.Param("affiliation_id"))
	if err != nil {
		return err
	}

	var data organization.TitleInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TitleInput")
	}
	if err = data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	aff, err = api.svc.UpdateAffiliation(ctx.Request().Context(), userID, aff, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, aff)
}

func (api *orgApi) destroyAffiliation(ctx echo.Context) error {
	if err := api.svc.DeleteAffiliation(ctx.Request().Context(), ctx.Param("affiliation_id")); err != nil {
		return err
	}
	return respondMessage(ctx, http.StatusOK, "Affiliation deleted successfully")
}

// Departments

func (api *orgApi) queryDepartments(ctx echo.Context) error {
	pq := api.srv.bindPageQuery(ctx)
	depts, pagination, err := api.svc.QueryDepartments(ctx.Request().Context(), &pq)
	if err != nil {
		return errors.Wrap(err, "querying departments")
	}
	return respondPage(ctx, depts, pagination)
}

func (api *orgApi) retrieveDepartment(ctx echo.Context) error {
	dept, err := api.svc.GetDepartment(ctx.Request().Context(), ctx.Param("dept_id"))
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, dept)
}

func (api *orgApi) createDepartment(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}

	var data organization.TitleInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TitleInput")
	}
	if err = data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	dept, err := api.svc.CreateDepartment(ctx.Request().Context(), userID, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusCreated, dept)
}

func (api *orgApi) updateDepartment(ctx echo.Context) error {
	userID, err := api.srv.getContextUserID(ctx)
	if err != nil {
		return err
	}
	dept, err := api.svc.GetDepartment(ctx.Request().Context(), ctx.Param("department_id"))
	if err != nil {
		return err
	}

	var data organization.TitleInput
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TitleInput")
	}
	if err = data.Validate(api.srv.deps.Validate); err != nil {
		return err
	}

	dept, err = api.svc.UpdateDepartment(ctx.Request().Context(), userID, dept, data)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, dept)
}

func (api *orgApi) destroyDepartment(ctx echo.Context) error {
	if err := api.svc.DeleteDepartment(ctx.Request().Context(), ctx.Param("department_id")); err != nil {
		return err
	}
	return respondMessage(ctx, http.StatusOK, "Department deleted successfully")
}
