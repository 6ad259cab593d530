package main

import "github.com/urfave/cli/v2"

const (
	flagChurchName      = "church-name"
	flagConfig          = "config"
	flagDebounce        = "debounce"
	flagDenomination    = "denomination"
	flagFirstName       = "first-name"
	flagInvitationCode  = "invitation-code"
	flagLastName        = "last-name"
	flagOutput          = "output"
	flagPassword        = "password"
	flagPhone           = "phone"
	flagRole            = "role"
	flagType            = "type"
	flagYearsInMinistry = "years-in-ministry"
)

var cliFlagOutput = &cli.StringFlag{
	Name:    flagOutput,
	Aliases: []string{"o"},
	Usage:   "Return output in another format. Supported formats: table, json, yaml",
	Value:   "table",
}
