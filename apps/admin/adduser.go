package main

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/trezcool/campusdash/core/user"
	"github.com/trezcool/campusdash/storage/database"
	sqlxrepos "github.com/trezcool/campusdash/storage/database/sqlx"
)

// addUser creates a user.User, or grants the missing roles when the muid is taken.
func (cli *commandLine) addUser(muid, name, email, mobile string, roles []string) error {
	ctx := context.Background()

	nu := user.NewUser{
		FullName: name,
		Muid:     muid,
		Email:    email,
		Mobile:   mobile,
		Roles:    roles,
	}
	if err := nu.Validate(cli.validate); err != nil {
		return err
	}

	return database.WrapTx(ctx, cli.db, func(tx *sqlx.Tx) error {
		svc := user.NewService(sqlxrepos.NewUserRepository(tx))

		usr, err := svc.GetByMuid(ctx, nu.Muid)
		switch err {
		case nil:
			_, err = svc.AddRoles(ctx, usr, nu.Roles...)
			return err
		case user.ErrNotFound:
			_, err = svc.Create(ctx, nu)
			return err
		default:
			return err
		}
	})
}
