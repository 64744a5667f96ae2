package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/prompt"
)

var userPassword string

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage admin accounts",
}

var userAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create an admin account, or reset its password",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

func init() {
	userAddCmd.Flags().StringVar(&userPassword, "password", "", "password (prompted when omitted)")
	userCmd.AddCommand(userAddCmd)
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	password := userPassword
	if password == "" {
		driver := prompt.NewSurveyDriver(os.Stdout)
		password, err = driver.Password(cmd.Context(), prompt.InputConfig{
			Message: "Password for " + args[0],
			Validator: func(s string) error {
				if len(s) < 8 {
					return errors.New("use at least 8 characters")
				}
				return nil
			},
		})
		if err != nil {
			return err
		}
	}

	if err := httpx.CreateUser(cmd.Context(), e.db, args[0], password); err != nil {
		return errors.Wrap(err, "user.add")
	}
	log.Infof("user %s saved", args[0])
	return nil
}
