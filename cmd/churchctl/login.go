package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func login(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("login requires one argument-- an email address")
	}
	email := c.Args().First()

	password, err := readPassword(c.String(flagPassword))
	if err != nil {
		return err
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := env.manager.Login(c.Context, email, password); err != nil {
		return err
	}

	user := env.manager.State().User
	successColor.Printf("Logged in as %s (%s).\n", user.FullName(), user.Role)
	return nil
}
