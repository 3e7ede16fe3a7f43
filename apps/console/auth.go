package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var readPasswordFunc = term.ReadPassword // mockable

func loginCmd(a *app) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Open a back-office session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.login(cmd, username)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username or email (prompted when empty)")
	return cmd
}

func logoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Close the back-office session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if res := a.client.Logout(cmd.Context()); !res.OK {
				a.logger.Warn("logout: " + res.Message)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}
}

// login prompts for whatever is missing and opens a session.
func (a *app) login(cmd *cobra.Command, username string) error {
	out := cmd.OutOrStdout()
	if username == "" {
		fmt.Fprint(out, "Username or email: ")
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "reading username")
		}
		username = strings.TrimSpace(line)
	}
	if username == "" {
		return errors.New("a username is required")
	}

	fmt.Fprint(out, "Password: ")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	fmt.Fprintln(out)
	if err != nil {
		return errors.Wrap(err, "reading password")
	}

	res := a.client.Login(cmd.Context(), username, string(pwd))
	if !res.OK {
		return errors.New(res.Message)
	}
	fmt.Fprintln(out, "Logged in.")
	return nil
}

// redirectToLogin is the console's answer to an expired or missing session.
func (a *app) redirectToLogin(cmd *cobra.Command) error {
	fmt.Fprintln(cmd.OutOrStdout(), "Authentication required: please log in, then run the command again.")
	return a.login(cmd, "")
}
