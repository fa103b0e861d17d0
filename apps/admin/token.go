package main

import (
	"context"
	"fmt"

	echoapi "github.com/trezcool/campusdash/apps/api/echo"
	"github.com/trezcool/campusdash/core/user"
	sqlxrepos "github.com/trezcool/campusdash/storage/database/sqlx"
)

// token prints a signed API token for the user `muid`.
func (cli *commandLine) token(muid string) error {
	svc := user.NewService(sqlxrepos.NewUserRepository(cli.db))
	usr, err := svc.GetByMuid(context.Background(), muid)
	if err != nil {
		return err
	}

	token, err := echoapi.GenerateToken(cli.conf, echoapi.GetUserClaims(cli.conf, usr))
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, token)
	return nil
}
