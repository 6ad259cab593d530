package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "churchctl"
	app.Usage = "Sign in to ChurchAI and inspect the current session"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    flagConfig,
			Aliases: []string{"c"},
			Usage:   "Path to the client profile (defaults to ~/.churchai/config.toml)",
			EnvVars: []string{"CHURCHAI_CONFIG"},
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:      "login",
			Usage:     "Log in to ChurchAI",
			ArgsUsage: "EMAIL",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
			},
			Action: login,
		},
		{
			Name:      "register",
			Usage:     "Create a ChurchAI account",
			ArgsUsage: "EMAIL",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
				&cli.StringFlag{
					Name:     flagFirstName,
					Usage:    "First name",
					Required: true,
				},
				&cli.StringFlag{
					Name:     flagLastName,
					Usage:    "Last name",
					Required: true,
				},
				&cli.StringFlag{
					Name:  flagPhone,
					Usage: "Contact phone number",
				},
				&cli.StringFlag{
					Name:  flagType,
					Usage: "Registration type: pastor_new_church, staff_existing_church or member",
					Value: "member",
				},
				&cli.StringFlag{
					Name:  flagInvitationCode,
					Usage: "Church invitation code (staff and member registrations)",
				},
				&cli.StringFlag{
					Name:  flagRole,
					Usage: "Requested staff role when joining an existing church",
				},
				&cli.StringFlag{
					Name:  flagDenomination,
					Usage: "Denomination (pastor registrations)",
				},
				&cli.IntFlag{
					Name:  flagYearsInMinistry,
					Usage: "Years in ministry (pastor registrations)",
				},
				&cli.StringFlag{
					Name:  flagChurchName,
					Usage: "Current church name (pastor registrations)",
				},
			},
			Action: register,
		},
		{
			Name:   "logout",
			Usage:  "Log out of ChurchAI",
			Action: logout,
		},
		{
			Name:   "whoami",
			Usage:  "Show the signed in user",
			Flags:  []cli.Flag{cliFlagOutput},
			Action: whoami,
		},
		{
			Name:        "get",
			Usage:       "Send an authenticated GET request",
			Description: "The path is relative to the API URL, for example /v1/auth/me.",
			ArgsUsage:   "PATH",
			Action:      get,
		},
		{
			Name:  "watch",
			Usage: "Print session changes made by other processes until interrupted",
			Flags: []cli.Flag{
				&cli.DurationFlag{
					Name:  flagDebounce,
					Usage: "How long to wait for a burst of credential file changes to settle",
					Value: 100 * time.Millisecond,
				},
			},
			Action: watch,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "\n%s\n\n", err)
		os.Exit(1)
	}
}
