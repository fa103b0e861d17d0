package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/campusdash/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	conf     *core.Config
	db       *sqlx.DB
	validate *validator.Validate
	out      io.Writer
}

// rolesFlag collects every `-role` occurrence.
type rolesFlag []string

func (r *rolesFlag) String() string {
	return strings.Join(*r, ",")
}

func (r *rolesFlag) Set(role string) error {
	*r = append(*r, role)
	return nil
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  migrate COMMAND [ARGS]                                  - run a goose migration command")
	fmt.Fprintln(cli.out, "  adduser -muid MUID -name NAME [-email] [-mobile] [-role] - create a user or grant it roles")
	fmt.Fprintln(cli.out, "  token -muid MUID                                        - print a signed API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ContinueOnError)
	addUserCmd.SetOutput(cli.out)
	addUserMuid := addUserCmd.String("muid", "", "The user's muid.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmail := addUserCmd.String("email", "", "The user's email.")
	addUserMobile := addUserCmd.String("mobile", "", "The user's mobile number.")
	var addUserRoles rolesFlag
	addUserCmd.Var(&addUserRoles, "role", "A role to grant; may be repeated.")

	tokenCmd := flag.NewFlagSet("token", flag.ContinueOnError)
	tokenCmd.SetOutput(cli.out)
	tokenMuid := tokenCmd.String("muid", "", "The user's muid.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *addUserMuid == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserMuid, *addUserName, *addUserEmail, *addUserMobile, addUserRoles)
	case "token":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		if *tokenMuid == "" {
			tokenCmd.Usage()
			return errHelp
		}
		return cli.token(*tokenMuid)
	default:
		cli.printUsage()
		return errHelp
	}
}
