package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/campusdash/apps/api/echo"
	"github.com/trezcool/campusdash/core/user"
)

const authPath = "/api/v1/auth"

func Test_authApi(t *testing.T) {
	app := setup(t)

	lead := app.fx.User("Zonal Lead", "lead", "1111", user.RoleZonalCampusLead)

	// roles in the token are stale, the store is the source of truth
	staleToken := app.getToken(t, lead, user.RoleStudent)

	oldClaims := GetUserClaims(app.conf, user.User{ID: lead}, time.Now().Add(-5*time.Hour).Unix())
	expiredRefresh, err := GenerateToken(app.conf, oldClaims)
	if !assert.NoError(t, err) {
		return
	}
	ghostToken := app.getToken(t, "ghost", user.RoleAdmin)

	tests := []httpTest{
		{name: "me: auth required", path: authPath + "/me", wantCode: http.StatusUnauthorized, wantData: errMissingToken},
		{
			name: "me: unknown user", path: authPath + "/me", token: ghostToken,
			wantCode: http.StatusUnauthorized, wantData: errData(http.StatusUnauthorized, "user not authenticated"),
		},
		{
			name: "refresh: auth required", method: http.MethodPost, path: authPath + "/token-refresh",
			wantCode: http.StatusUnauthorized, wantData: errMissingToken,
		},
		{
			name: "refresh: expired", method: http.MethodPost, path: authPath + "/token-refresh", token: expiredRefresh,
			wantCode: http.StatusForbidden, wantData: errData(http.StatusForbidden, "refresh has expired"),
		},
		{
			name: "refresh: unknown user", method: http.MethodPost, path: authPath + "/token-refresh", token: ghostToken,
			wantCode: http.StatusUnauthorized, wantData: errData(http.StatusUnauthorized, "user not authenticated"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkCodeAndData(t, tt, app.do(t, tt))
		})
	}

	t.Run("me", func(t *testing.T) {
		rec := app.do(t, httpTest{path: authPath + "/me", token: staleToken})
		if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
			return
		}
		var usr user.User
		decodeResponse(t, rec, &usr)
		assert.Equal(t, lead, usr.ID)
		assert.Equal(t, "Zonal Lead", usr.FullName)
		assert.Equal(t, "1111", usr.Mobile)
		assert.Equal(t, []string{user.RoleZonalCampusLead}, usr.Roles)
	})

	t.Run("refresh", func(t *testing.T) {
		rec := app.do(t, httpTest{method: http.MethodPost, path: authPath + "/token-refresh", token: staleToken})
		if !assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String()) {
			return
		}
		var resp TokenResponse
		decodeResponse(t, rec, &resp)

		claims := new(Claims)
		_, err := jwt.ParseWithClaims(resp.Token, claims, func(*jwt.Token) (interface{}, error) {
			return []byte(app.conf.SecretKey), nil
		})
		if assert.NoError(t, err) {
			assert.Equal(t, lead, claims.Subject)
			assert.Equal(t, "lead", claims.Muid)
			assert.Equal(t, []string{user.RoleZonalCampusLead}, claims.Roles)
		}
	})
}
