package main

import (
	"log"
	"os"

	"github.com/escolarapp/escolar/apps/api/echo"
	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
	"github.com/escolarapp/escolar/core/report"
	"github.com/escolarapp/escolar/core/subject"
	"github.com/escolarapp/escolar/services/email"
	"github.com/escolarapp/escolar/services/logger"
	"github.com/escolarapp/escolar/storage/database"
	"github.com/escolarapp/escolar/storage/database/postgres"
)

func main() {
	std := log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	logger := logsvc.NewRollbarLogger(std, core.Conf)
	logger.Enable(!(core.Conf.Debug || core.Conf.TestMode))

	// set up DB
	db, err := database.Open(core.Conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()

	// set up services
	var mailSvc core.EmailService
	if core.Conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	userRepo := postgres.NewUserRepository(db)
	adminRepo := postgres.NewAdminRepository(db)
	teacherRepo := postgres.NewTeacherRepository(db)
	studentRepo := postgres.NewStudentRepository(db)
	subjectRepo := postgres.NewSubjectRepository(db)

	acctSvc := account.NewService(db, userRepo, adminRepo, teacherRepo, studentRepo, mailSvc)
	subjSvc := subject.NewService(db, subjectRepo, teacherRepo)
	reportSvc := report.NewService(adminRepo, teacherRepo, studentRepo, logger)

	validate, translator := core.NewValidator()
	subject.RegisterValidators(validate, translator)

	// start API server
	app := echoapi.NewServer(&echoapi.Options{
		Address:    core.Conf.Server.Address(),
		SubjectSvc: subjSvc,
		AccountSvc: acctSvc,
		ReportSvc:  reportSvc,
		Logger:     logger,
		Validate:   validate,
		Translator: translator,
	})
	app.Start()
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
