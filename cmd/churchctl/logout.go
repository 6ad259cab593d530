package main

import (
	"fmt"

	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/jrsteele09/churchai-session/credentials"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func logout(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	// The server revoking the access token is a courtesy. The local credentials are cleared
	// whether or not it succeeds.
	if _, ok := env.store.Get(credentials.KeyAccessToken); ok {
		if err := env.client.Post(c.Context, apiclient.LogoutPath, nil, nil); err != nil {
			warnColor.Printf("Server logout failed: %s\n", apiclient.Message(err, "unknown error"))
		}
	}
	env.manager.Logout()

	fmt.Println("Logout was successful.")
	return nil
}
