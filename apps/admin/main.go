package main

import (
	"log"
	"os"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/services/email"
	"github.com/escolarapp/escolar/storage/database"
	"github.com/escolarapp/escolar/storage/database/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// set up DB
	errAndDie(database.CreateIfNotExist(core.Conf))
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	acctSvc := account.NewService(
		db,
		postgres.NewUserRepository(db),
		postgres.NewAdminRepository(db),
		postgres.NewTeacherRepository(db),
		postgres.NewStudentRepository(db),
		emailsvc.NewConsoleService(),
	)

	// start CLI
	cli := commandLine{
		db:      db,
		acctSvc: acctSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
