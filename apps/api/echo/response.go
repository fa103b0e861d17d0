package echoapi

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/campusdash/core"
)

type (
	// envelope wraps every JSON response.
	envelope struct {
		HasError   bool        `json:"hasError"`
		StatusCode int         `json:"statusCode"`
		Message    interface{} `json:"message"`
		Response   interface{} `json:"response"`
	}

	// Page is the response of paginated listings.
	Page struct {
		Data       interface{}     `json:"data"`
		Pagination core.Pagination `json:"pagination"`
	}
)

func respond(ctx echo.Context, code int, data interface{}) error {
	return ctx.JSON(code, envelope{
		StatusCode: code,
		Message:    echo.Map{},
		Response:   data,
	})
}

func respondPage(ctx echo.Context, data interface{}, pagination core.Pagination) error {
	return respond(ctx, http.StatusOK, Page{Data: data, Pagination: pagination})
}

func respondMessage(ctx echo.Context, code int, msg string) error {
	return ctx.JSON(code, envelope{
		StatusCode: code,
		Message:    generalMessage(msg),
		Response:   echo.Map{},
	})
}

// respondCSV streams `records` as the `<name>.csv` attachment.
func respondCSV(ctx echo.Context, name string, header []string, records [][]string) error {
	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/csv")
	resp.Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s.csv"`, name))
	resp.WriteHeader(http.StatusOK)

	w := csv.NewWriter(resp)
	if err := w.Write(header); err != nil {
		return errors.Wrap(err, "writing csv header")
	}
	if err := w.WriteAll(records); err != nil {
		return errors.Wrap(err, "writing csv records")
	}
	return nil
}
