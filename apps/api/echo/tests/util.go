package tests

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"

	. "github.com/trezcool/campusdash/apps/api/echo"
	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/organization"
	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/core/zonal"
	"github.com/trezcool/campusdash/services/logger"
	"github.com/trezcool/campusdash/storage/database/sqlx"
	"github.com/trezcool/campusdash/tests"
)

var errMissingToken = errData(http.StatusUnauthorized, "missing or malformed jwt")

type testApp struct {
	*Server
	conf *core.Config
	fx   *testutil.Fixtures
}

func newTestConfig() *core.Config {
	conf := &core.Config{
		Env:       "TEST",
		AppName:   "Campus Dashboard",
		TestMode:  true,
		SecretKey: "secret",
	}
	conf.Server.JWTExpirationDelta = time.Hour
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.Pagination.PerPage = 10
	conf.Pagination.MaxPerPage = 100
	return conf
}

func setup(t *testing.T) testApp {
	// set up DB & repos
	db := testutil.OpenDB(t)
	conf := newTestConfig()

	logger := logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
	logger.Enable(false)

	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)
	organization.InitValidators(validate, translator)

	// set up server
	srv := NewServer(ServerDeps{
		Conf:       conf,
		Logger:     logger,
		UserSvc:    user.NewService(sqlxrepos.NewUserRepository(db)),
		OrgSvc:     organization.NewService(sqlxrepos.NewOrganizationRepository(db)),
		ZonalSvc:   zonal.NewService(sqlxrepos.NewZonalRepository(db)),
		Validate:   validate,
		Translator: translator,
	})
	return testApp{Server: srv, conf: conf, fx: testutil.NewFixtures(t, db)}
}

type envelope struct {
	HasError   bool        `json:"hasError"`
	StatusCode int         `json:"statusCode"`
	Message    interface{} `json:"message"`
	Response   interface{} `json:"response"`
}

type page struct {
	Data       interface{}     `json:"data"`
	Pagination core.Pagination `json:"pagination"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	if method == "" {
		method = http.MethodGet
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func (app testApp) do(t *testing.T, tt httpTest) *httptest.ResponseRecorder {
	req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
	app.ServeHTTP(rec, req)
	return rec
}

func (app testApp) getToken(t *testing.T, userID string, roles ...string) string {
	claims := GetUserClaims(app.conf, user.User{ID: userID, Roles: roles})
	token, err := GenerateToken(app.conf, claims)
	if err != nil {
		t.Fatalf("getToken() failed: %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj() failed: %v", err)
	}
	return data
}

func okData(t *testing.T, code int, response interface{}) []byte {
	return marshallObj(t, envelope{StatusCode: code, Message: map[string]interface{}{}, Response: response})
}

func okMessage(code int, msg string) []byte {
	data, _ := json.Marshal(envelope{
		StatusCode: code,
		Message:    map[string][]string{"general": {msg}},
		Response:   map[string]interface{}{},
	})
	return data
}

func errData(code int, msg string) []byte {
	return fieldErrData(code, "general", msg)
}

func fieldErrData(code int, field, msg string) []byte {
	data, _ := json.Marshal(envelope{
		HasError:   true,
		StatusCode: code,
		Message:    map[string][]string{field: {msg}},
		Response:   map[string]interface{}{},
	})
	return data
}

// decodeResponse extracts the "response" of an envelope into `dst`.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	env := envelope{Response: dst}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v; body %s", err, rec.Body.String())
	}
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
