package tests

import (
	"encoding/csv"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/organization"
	"github.com/trezcool/campusdash/core/user"
)

const orgPath = "/api/v1/dashboard/organisation"

func Test_orgApi_auth(t *testing.T) {
	app := setup(t)

	admin := app.fx.User("Admin User", "admin", "", user.RoleAdmin)
	lead := app.fx.User("Zonal Lead", "lead", "", user.RoleZonalCampusLead)
	adminToken := app.getToken(t, admin, user.RoleAdmin)

	tests := []httpTest{
		{name: "Auth required", path: orgPath + "/departments", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{
			name: "Invalid token", path: orgPath + "/departments", token: "lol", wantCode: http.StatusUnauthorized,
			wantData: errData(http.StatusUnauthorized, "invalid or expired jwt"),
		},
		{
			name: "Admin required", path: orgPath + "/departments", token: app.getToken(t, lead, user.RoleZonalCampusLead),
			wantCode: http.StatusForbidden, wantData: errData(http.StatusForbidden, "permission denied"),
		},
		{
			name: "Empty listing", path: orgPath + "/departments", token: adminToken, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{Data: []interface{}{}, Pagination: core.Pagination{TotalPages: 1}}),
		},
		{
			name: "Unknown department", path: orgPath + "/departments/nope", token: adminToken,
			wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrDepartmentNotFound.Error()),
		},
		{
			name: "Unknown route", path: orgPath + "/nope", token: adminToken,
			wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, "Not Found"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}
}

func Test_orgApi_institutions(t *testing.T) {
	app := setup(t)

	admin := app.fx.User("Admin User", "admin", "", user.RoleAdmin)
	zone := app.fx.Zone("North")
	district := app.fx.District("Kochi", zone)
	empty := app.fx.District("Idukki", zone)
	token := app.getToken(t, admin, user.RoleAdmin)

	// affiliation
	rec := app.do(t, httpTest{method: http.MethodPost, path: orgPath + "/institutes/org/affiliation", token: token, body: []byte(`{"title": " KTU "}`)})
	if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
		return
	}
	var aff organization.Affiliation
	decodeResponse(t, rec, &aff)
	assert.Equal(t, "KTU", aff.Title)
	assert.Equal(t, "Admin User", aff.CreatedBy)

	// institution
	body := marshallObj(t, map[string]string{
		"title":       "Model Engineering College",
		"code":        "MEC",
		"org_type":    organization.TypeCollege,
		"affiliation": aff.ID,
		"district":    district,
	})
	rec = app.do(t, httpTest{method: http.MethodPost, path: orgPath + "/institutes/add", token: token, body: body})
	if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
		return
	}
	var info organization.InstitutionInfo
	decodeResponse(t, rec, &info)
	assert.Equal(t, "MEC", info.Code)
	assert.Equal(t, "Kochi", core.StringValue(info.District))
	assert.Equal(t, "North", core.StringValue(info.Zone))

	inst := info.Institution
	emptyPage := page{Data: []interface{}{}, Pagination: core.Pagination{TotalPages: 1}}

	tests := []httpTest{
		{
			name: "add: title required", method: http.MethodPost, path: orgPath + "/institutes/add", token: token,
			body:     []byte(`{"code": "X", "org_type": "College"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "title", "this field is required"),
		},
		{
			name: "add: invalid org type", method: http.MethodPost, path: orgPath + "/institutes/add", token: token,
			body:     []byte(`{"title": "X", "code": "X", "org_type": "School"}`),
			wantCode: http.StatusBadRequest,
			wantData: fieldErrData(http.StatusBadRequest, "org_type", "org_type must be one of College, Company or Community"),
		},
		{
			name: "add: unknown district", method: http.MethodPost, path: orgPath + "/institutes/add", token: token,
			body:     []byte(`{"title": "X", "code": "X", "org_type": "College", "district": "nope"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "district", organization.ErrDistrictNotFound.Error()),
		},
		{
			name: "add: duplicate code", method: http.MethodPost, path: orgPath + "/institutes/add", token: token,
			body:     []byte(`{"title": "X", "code": "MEC", "org_type": "Community"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "code", organization.ErrCodeExists.Error()),
		},
		{
			name: "show colleges", path: orgPath + "/institutes/show/College", token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{
				Data:       []organization.Institution{inst},
				Pagination: core.Pagination{Count: 1, TotalPages: 1},
			}),
		},
		{
			name: "show colleges of district", path: orgPath + "/institutes/show/College/" + district, token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{
				Data:       []organization.Institution{inst},
				Pagination: core.Pagination{Count: 1, TotalPages: 1},
			}),
		},
		{
			name: "show district without colleges", path: orgPath + "/institutes/show/College/" + empty, token: token,
			wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, emptyPage),
		},
		{
			name: "show companies", path: orgPath + "/institutes/show/Company", token: token,
			wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, emptyPage),
		},
		{
			name: "show unknown type", path: orgPath + "/institutes/show/School", token: token,
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "org_type", "invalid organisation type"),
		},
		{
			name: "names", path: orgPath + "/institutes/names/College", token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, []organization.InstitutionName{{ID: inst.ID, Title: inst.Title}}),
		},
		{
			name: "info", path: orgPath + "/institutes/info/MEC", token: token,
			wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, info),
		},
		{
			name: "retrieve", path: orgPath + "/institutes/MEC", token: token,
			wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, info),
		},
		{
			name: "retrieve unknown", path: orgPath + "/institutes/NOPE", token: token,
			wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrNotFound.Error()),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}

	t.Run("all institutions", func(t *testing.T) {
		rec := app.do(t, httpTest{path: orgPath + "/institutes/info/all_inst", token: token})
		checkCodeAndData(t, httpTest{wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, organization.Institutions{
			Colleges:    []organization.Institution{inst},
			Companies:   []organization.Institution{},
			Communities: []organization.Institution{},
		})}, rec)
	})

	t.Run("csv export", func(t *testing.T) {
		rec := app.do(t, httpTest{path: orgPath + "/institutes/csv/College", token: token})
		if !assert.Equal(t, http.StatusOK, rec.Code) {
			return
		}
		assert.Equal(t, `attachment; filename="Institutions.csv"`, rec.Header().Get("Content-Disposition"))

		rows, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
		if assert.NoError(t, err) && assert.Len(t, rows, 2) {
			assert.Equal(t, organization.Institution{}.CSVHeader(), rows[0])
			assert.Equal(t, inst.CSVRecord(), rows[1])
		}
	})

	t.Run("update", func(t *testing.T) {
		for _, method := range []string{http.MethodPut, http.MethodPost} {
			rec := app.do(t, httpTest{method: method, path: orgPath + "/institutes/MEC", token: token, body: []byte(`{"title": "MEC ` + method + `"}`)})
			if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
				return
			}
			var updated organization.InstitutionInfo
			decodeResponse(t, rec, &updated)
			assert.Equal(t, "MEC "+method, updated.Title)
			assert.Equal(t, "MEC", updated.Code)
			assert.Equal(t, "KTU", core.StringValue(updated.Affiliation))
		}
	})

	t.Run("delete", func(t *testing.T) {
		tests := []httpTest{
			{
				method: http.MethodDelete, path: orgPath + "/institutes/MEC", token: token,
				wantCode: http.StatusOK, wantData: okMessage(http.StatusOK, "Institution deleted successfully"),
			},
			{
				method: http.MethodDelete, path: orgPath + "/institutes/MEC", token: token,
				wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrNotFound.Error()),
			},
		}
		for _, tt := range tests {
			checkCodeAndData(t, tt, app.do(t, tt))
		}
	})
}

func Test_orgApi_affiliations(t *testing.T) {
	app := setup(t)

	admin := app.fx.User("Admin User", "admin", "", user.RoleAdmin)
	other := app.fx.User("Other Admin", "other", "", user.RoleAdmin)
	token := app.getToken(t, admin, user.RoleAdmin)
	affPath := orgPath + "/institutes/org/affiliation"

	var ids []string
	for _, title := range []string{"KTU", "CUSAT"} {
		rec := app.do(t, httpTest{method: http.MethodPost, path: affPath, token: token, body: []byte(`{"title": "` + title + `"}`)})
		if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
			return
		}
		var aff organization.Affiliation
		decodeResponse(t, rec, &aff)
		ids = append(ids, aff.ID)
	}

	tests := []httpTest{
		{
			name: "duplicate title", method: http.MethodPost, path: affPath, token: token, body: []byte(`{"title": "ktu"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "title", organization.ErrTitleExists.Error()),
		},
		{
			name: "blank title", method: http.MethodPost, path: affPath, token: token, body: []byte(`{"title": "  "}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "title", "this field is required"),
		},
		{
			name: "rename to a taken title", method: http.MethodPut, path: affPath + "/" + ids[1], token: token, body: []byte(`{"title": "KTU"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "title", organization.ErrTitleExists.Error()),
		},
		{
			name: "update unknown", method: http.MethodPut, path: affPath + "/nope", token: token, body: []byte(`{"title": "X"}`),
			wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrAffiliationNotFound.Error()),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}

	t.Run("update keeps the creator", func(t *testing.T) {
		rec := app.do(t, httpTest{
			method: http.MethodPut, path: affPath + "/" + ids[0],
			token: app.getToken(t, other, user.RoleAdmin), body: []byte(`{"title": "APJ KTU"}`),
		})
		if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
			return
		}
		var aff organization.Affiliation
		decodeResponse(t, rec, &aff)
		assert.Equal(t, "APJ KTU", aff.Title)
		assert.Equal(t, "Admin User", aff.CreatedBy)
		assert.Equal(t, "Other Admin", aff.UpdatedBy)
	})

	t.Run("listing", func(t *testing.T) {
		rec := app.do(t, httpTest{path: affPath + "?sortBy=-title&perPage=1", token: token})
		if !assert.Equal(t, http.StatusOK, rec.Code) {
			return
		}
		var affs []organization.Affiliation
		p := page{Data: &affs}
		decodeResponse(t, rec, &p)
		if assert.Len(t, affs, 1) {
			assert.Equal(t, "CUSAT", affs[0].Title)
		}
		two := 2
		assert.Equal(t, core.Pagination{Count: 2, TotalPages: 2, IsNext: true, NextPage: &two}, p.Pagination)
	})

	t.Run("delete", func(t *testing.T) {
		tests := []httpTest{
			{
				method: http.MethodDelete, path: affPath + "/" + ids[1], token: token,
				wantCode: http.StatusOK, wantData: okMessage(http.StatusOK, "Affiliation deleted successfully"),
			},
			{
				method: http.MethodDelete, path: affPath + "/" + ids[1], token: token,
				wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrAffiliationNotFound.Error()),
			},
		}
		for _, tt := range tests {
			checkCodeAndData(t, tt, app.do(t, tt))
		}
	})
}

func Test_orgApi_departments(t *testing.T) {
	app := setup(t)

	admin := app.fx.User("Admin User", "admin", "", user.RoleAdmin)
	token := app.getToken(t, admin, user.RoleAdmin)
	deptPath := orgPath + "/departments"

	var depts []organization.Department
	for _, title := range []string{"Mechanical", "Civil"} {
		rec := app.do(t, httpTest{method: http.MethodPost, path: deptPath, token: token, body: []byte(`{"title": "` + title + `"}`)})
		if !assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String()) {
			return
		}
		var dept organization.Department
		decodeResponse(t, rec, &dept)
		depts = append(depts, dept)
	}
	mech, civil := depts[0], depts[1]

	tests := []httpTest{
		{
			name: "listing (title order)", path: deptPath, token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{
				Data:       []organization.Department{civil, mech},
				Pagination: core.Pagination{Count: 2, TotalPages: 1},
			}),
		},
		{
			name: "search", path: deptPath + "?search=MECH", token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{
				Data:       []organization.Department{mech},
				Pagination: core.Pagination{Count: 1, TotalPages: 1},
			}),
		},
		{
			name: "second page", path: deptPath + "?perPage=1&pageIndex=2", token: token, wantCode: http.StatusOK,
			wantData: okData(t, http.StatusOK, page{
				Data:       []organization.Department{mech},
				Pagination: core.Pagination{Count: 2, TotalPages: 2, IsPrev: true},
			}),
		},
		{
			name: "retrieve", path: deptPath + "/" + mech.ID, token: token,
			wantCode: http.StatusOK, wantData: okData(t, http.StatusOK, mech),
		},
		{
			name: "rename to a taken title", method: http.MethodPut, path: deptPath + "/edit/" + civil.ID, token: token,
			body:     []byte(`{"title": "MECHANICAL"}`),
			wantCode: http.StatusBadRequest, wantData: fieldErrData(http.StatusBadRequest, "title", organization.ErrTitleExists.Error()),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}

	t.Run("edit & delete", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodPut, path: deptPath + "/edit/" + civil.ID, token: token, body: []byte(`{"title": "Civil Engineering"}`)})
		if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
			return
		}
		var dept organization.Department
		decodeResponse(t, rec, &dept)
		assert.Equal(t, "Civil Engineering", dept.Title)

		tests := []httpTest{
			{
				method: http.MethodDelete, path: deptPath + "/delete/" + civil.ID, token: token,
				wantCode: http.StatusOK, wantData: okMessage(http.StatusOK, "Department deleted successfully"),
			},
			{
				path: deptPath + "/" + civil.ID, token: token,
				wantCode: http.StatusNotFound, wantData: errData(http.StatusNotFound, organization.ErrDepartmentNotFound.Error()),
			},
		}
		for _, tt := range tests {
			checkCodeAndData(t, tt, app.do(t, tt))
		}
	})
}
