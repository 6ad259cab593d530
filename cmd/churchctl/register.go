package main

import (
	"fmt"
	"strings"

	"github.com/jrsteele09/churchai-session/authmodel"
	"github.com/jrsteele09/churchai-session/users"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func register(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("register requires one argument-- an email address")
	}

	req, err := registerRequest(c)
	if err != nil {
		return err
	}
	if req.Password, err = readPassword(c.String(flagPassword)); err != nil {
		return err
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.manager.Register(c.Context, req)
	if err != nil {
		return err
	}

	successColor.Println(resp.Message)
	if resp.Status == users.StatusPendingApproval {
		fmt.Println("Your account is pending approval.")
		if resp.EstimatedApprovalTime != "" {
			fmt.Printf("Estimated approval time: %s\n", resp.EstimatedApprovalTime)
		}
	}
	if state := env.manager.State(); state.IsAuthenticated() {
		fmt.Printf("Signed in as %s.\n", state.User.Email)
	}
	return nil
}

// registerRequest builds the body from the command flags. The password is filled in by the caller.
func registerRequest(c *cli.Context) (authmodel.RegisterRequest, error) {
	req := authmodel.RegisterRequest{
		Email:                strings.TrimSpace(c.Args().First()),
		FirstName:            c.String(flagFirstName),
		LastName:             c.String(flagLastName),
		Phone:                c.String(flagPhone),
		RegistrationType:     users.RegistrationType(c.String(flagType)),
		ChurchInvitationCode: c.String(flagInvitationCode),
		RequestedRole:        users.RoleType(c.String(flagRole)),
	}
	if !req.RegistrationType.Valid() {
		return req, errors.Errorf("unknown registration type %q", req.RegistrationType)
	}

	switch req.RegistrationType {
	case users.RegistrationPastorNewChurch:
		req.PastorInfo = &users.PastorInfo{
			Denomination:      c.String(flagDenomination),
			YearsInMinistry:   c.Int(flagYearsInMinistry),
			CurrentChurchName: c.String(flagChurchName),
		}
	default:
		if req.ChurchInvitationCode == "" {
			return req, errors.Errorf("--%s is required for %s registrations", flagInvitationCode, req.RegistrationType)
		}
	}
	return req, nil
}
