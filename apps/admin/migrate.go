package main

import (
	"database/sql"

	"github.com/trezcool/goose"

	"github.com/trezcool/campusdash/fs"
	"github.com/trezcool/campusdash/storage/database"
)

// mockable
var gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
	return goose.RunFS(command, db, appfs.FS, "migrations", args...)
}

func (cli *commandLine) migrate(args []string) error {
	if err := database.SetDialect(cli.db.DriverName()); err != nil {
		return err
	}
	arguments := make([]string, 0)
	if len(args) > 1 {
		arguments = append(arguments, args[1:]...)
	}
	return gooseRunFunc(args[0], cli.db.DB, arguments...)
}
