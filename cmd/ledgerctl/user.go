package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jwalitptl/clinic-ledger/internal/app"
)

func newUserCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff logins",
	}

	var username, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a staff login",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := app.OpenStore(cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			user, err := app.NewServices(cfg, store, nil).Auth.CreateUser(ctx, username, password)
			if err != nil {
				return err
			}
			fmt.Printf("Created user %s (id %d)\n", user.Username, user.ID)
			return nil
		},
	}
	add.Flags().StringVar(&username, "username", "", "login name")
	add.Flags().StringVar(&password, "password", "", "initial password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	cmd.AddCommand(add)
	return cmd
}
