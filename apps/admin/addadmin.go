package main

import (
	"context"
	"strconv"

	"github.com/escolarapp/escolar/core"
	"github.com/escolarapp/escolar/core/account"
)

type adminOptions struct {
	email      string
	firstName  string
	lastName   string
	password   string
	adminKey   string
	phone      string
	rfc        string
	age        int
	occupation string
}

// addAdmin provisions an administrator account the same way the API does:
// account, role group and profile in one transaction.
func (cli *commandLine) addAdmin(opts adminOptions) error {
	na := account.NewAdmin{
		Role:       account.RoleAdmin,
		FirstName:  opts.firstName,
		LastName:   opts.lastName,
		Email:      core.CleanString(opts.email, true /* lower */),
		Password:   opts.password,
		AdminKey:   opts.adminKey,
		Phone:      opts.phone,
		RFC:        opts.rfc,
		Age:        account.FlexInt(opts.age),
		Occupation: opts.occupation,
	}

	validate, _ := core.NewValidator()
	if err := na.Validate(validate); err != nil {
		return err
	}

	prof, err := cli.acctSvc.CreateAdmin(context.Background(), na)
	if err != nil {
		return err
	}
	logger.Println("administrator created with profile id " + strconv.Itoa(prof.ID))
	return nil
}
