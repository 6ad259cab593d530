package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/churchai-session/apiclient"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func get(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New("get requires one argument-- an API path")
	}
	path := c.Args().First()
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	env, err := getEnvironment(c)
	if err != nil {
		return err
	}
	defer env.Close()

	resp, err := env.client.Do(c.Context, apiclient.Request{Method: http.MethodGet, Path: path})
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		printBody(apiErr.Body)
		return err
	}
	if err != nil {
		return err
	}
	printBody(resp.Body)
	return nil
}

func printBody(body []byte) {
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}
	fmt.Println(pretty.String())
}
