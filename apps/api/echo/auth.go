package echoapi

import (
	"net/http"
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/user"
)

const (
	jwtContextKey  = "userToken"
	contextUserKey = "user"
	tokenAudience  = "Dashboard"
)

// newJWTConfig returns the JWT auth middleware config.
func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    jwtContextKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Muid         string   `json:"muid,omitempty"`
	FullName     string   `json:"full_name,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

func GetUserClaims(conf *core.Config, usr user.User, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   usr.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Muid:         usr.Muid,
		FullName:     usr.FullName,
		Roles:        usr.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the user Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	jwtConf := newJWTConfig(conf)
	method := jwt.GetSigningMethod(jwtConf.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(jwtConf.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (s *Server) getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(s.jwt.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUserID returns the ID of the authenticated user.
func (s *Server) getContextUserID(ctx echo.Context) (string, error) {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Server) getContextUser(ctx echo.Context, clms ...Claims) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = s.getContextClaims(ctx)
		if err != nil {
			return user.User{}, errors.Wrap(err, "getting context claims")
		}
	}

	usr, err := s.deps.UserSvc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if err == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by ID")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

func (s *Server) contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := s.getContextClaims(ctx); err == nil {
		sort.Strings(claims.Roles)
		for _, role := range roles {
			if i := sort.SearchStrings(claims.Roles, role); i < len(claims.Roles) {
				if match := claims.Roles[i]; role == match {
					return true
				}
			}
		}
	}
	return false
}

func (s *Server) refreshToken(ctx echo.Context) (string, error) {
	claims, err := s.getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(s.deps.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	// roles may have changed since the token was issued
	usr, err := s.getContextUser(ctx, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context user")
	}

	newClaims := GetUserClaims(s.deps.Conf, usr, claims.OrigIssuedAt)
	token, err := GenerateToken(s.deps.Conf, newClaims)
	return token, errors.Wrap(err, "generating token")
}

type (
	TokenResponse struct {
		Token string `json:"token"`
	}

	authApi struct {
		srv *Server
	}
)

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, srv *Server) {
	api := authApi{srv: srv}

	ag := g.Group("/auth", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("/me", api.me)
}

func (api *authApi) refreshToken(ctx echo.Context) error {
	token, err := api.srv.refreshToken(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, TokenResponse{Token: token})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := api.srv.getContextUser(ctx)
	if err != nil {
		return err
	}
	return respond(ctx, http.StatusOK, usr)
}
