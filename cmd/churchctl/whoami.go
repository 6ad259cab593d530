package main

import (
	"fmt"
	"strings"

	"github.com/gosuri/uitable"
	"github.com/jrsteele09/churchai-session/internal/utils"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func whoami(c *cli.Context) error {
	output := c.String(flagOutput)
	if err := validateOutputFormat(output); err != nil {
		return err
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.manager.Hydrate(c.Context); err != nil {
		return err
	}
	state := env.manager.State()
	if !state.IsAuthenticated() {
		return errors.New("not logged in")
	}
	user := state.User

	if strings.ToLower(output) != outputTable {
		return printStructured(output, user)
	}

	table := uitable.New()
	table.AddRow("ID", "NAME", "EMAIL", "ROLE", "STATUS", "CHURCH")
	table.AddRow(
		user.ID,
		user.FullName(),
		user.Email,
		user.Role,
		user.Status,
		utils.ValueOr(user.ChurchID, "-"),
	)
	fmt.Println(table)
	return nil
}
