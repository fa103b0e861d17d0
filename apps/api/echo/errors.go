package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
	"github.com/trezcool/campusdash/core/organization"
	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/core/zonal"
)

const generalErrKey = "general"

var (
	errUnauthorized   = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errRefreshExpired = echo.NewHTTPError(http.StatusForbidden, "refresh has expired")
	errHttpForbidden  = echo.NewHTTPError(http.StatusForbidden, "permission denied")
)

// classifyError returns the HTTP status code of `err` along with its cause.
func classifyError(err error) (int, error) {
	cause := errors.Cause(err)
	switch origErr := cause.(type) {
	case *echo.HTTPError:
		if origErr == middleware.ErrJWTMissing {
			return http.StatusUnauthorized, origErr
		}
		if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
			return herr.Code, herr
		}
		return origErr.Code, origErr
	case validator.ValidationErrors, *core.ValidationError:
		return http.StatusBadRequest, cause
	}

	switch cause {
	case user.ErrNotFound,
		organization.ErrNotFound,
		organization.ErrAffiliationNotFound,
		organization.ErrDepartmentNotFound,
		zonal.ErrNoCollegeLink:
		return http.StatusNotFound, cause
	}
	return http.StatusInternalServerError, cause
}

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that renders our errors as envelopes.
// The Server is shut down gracefully whenever a core.shutdown error is caught.
func (s *Server) newAppHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code, cause := classifyError(err)

		var message map[string][]string
		switch origErr := cause.(type) {
		case *echo.HTTPError:
			message = generalMessage(fmt.Sprint(origErr.Message))
		case validator.ValidationErrors:
			message = make(map[string][]string, len(origErr))
			for _, vErr := range origErr {
				message[vErr.Field()] = append(message[vErr.Field()], vErr.Translate(s.deps.Translator))
			}
		case *core.ValidationError:
			if len(origErr.Fields) > 0 {
				message = make(map[string][]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					message[fErr.Field] = append(message[fErr.Field], fErr.Error)
				}
			} else {
				message = generalMessage(origErr.Error())
			}
		default:
			if code != http.StatusInternalServerError {
				message = generalMessage(cause.Error())
				break
			}

			msg := http.StatusText(http.StatusInternalServerError)
			message = generalMessage(msg)

			var usr user.User
			if claims, cErr := s.getContextClaims(ctx); cErr == nil {
				usr.ID = claims.Subject
				usr.Muid = claims.Muid
				usr.FullName = claims.FullName
			}
			s.deps.Logger.Error(msg, errors.Wrap(err, msg), usr)

			if ctx.Echo().Debug {
				message = generalMessage(err.Error())
			}

			// shutting down...
			if core.IsShutdown(err) {
				s.signalShutdown()
			}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, envelope{
					HasError:   true,
					StatusCode: code,
					Message:    message,
					Response:   echo.Map{},
				})
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

func generalMessage(msg string) map[string][]string {
	return map[string][]string{generalErrKey: {msg}}
}
