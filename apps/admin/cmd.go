package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db      *database.DB
	acctSvc *account.Service
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply pending database migrations")
	fmt.Println("  addadmin -email EMAIL -first FIRST -last LAST - create an administrator account; password prompted")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addAdminCmd := flag.NewFlagSet("addadmin", flag.ExitOnError)
	addAdminEmail := addAdminCmd.String("email", "", "The administrator's email; doubles as the username.")
	addAdminFirst := addAdminCmd.String("first", "", "First name.")
	addAdminLast := addAdminCmd.String("last", "", "Last name.")
	addAdminKey := addAdminCmd.String("clave", "ADMIN", "Administrator key.")
	addAdminPhone := addAdminCmd.String("telefono", "N/A", "Phone number.")
	addAdminRFC := addAdminCmd.String("rfc", "XAXX010101000", "RFC.")
	addAdminAge := addAdminCmd.Int("edad", 30, "Age.")
	addAdminOcc := addAdminCmd.String("ocupacion", "Administrador", "Occupation.")

	switch args[1] {
	case "migrate":
		return cli.migrate()
	case "addadmin":
		if err := addAdminCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addAdminEmail == "" || *addAdminFirst == "" || *addAdminLast == "" {
			addAdminCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addAdminCmd.Usage()
			return errHelp
		}
		return cli.addAdmin(adminOptions{
			email:      *addAdminEmail,
			firstName:  *addAdminFirst,
			lastName:   *addAdminLast,
			password:   string(pwd),
			adminKey:   *addAdminKey,
			phone:      *addAdminPhone,
			rfc:        *addAdminRFC,
			age:        *addAdminAge,
			occupation: *addAdminOcc,
		})
	default:
		cli.printUsage()
		return errHelp
	}
}
