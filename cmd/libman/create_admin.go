package main

import (
	"fmt"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libman/internal/auth"
	"libman/internal/config"
	"libman/internal/log"
	"libman/internal/repository"
	"libman/internal/service"
)

func createAdminCmd() *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Seed an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log.Init(cfg.LogLevel, cfg.LogJSON)

			password, err := readPassword("Admin password: ")
			if err != nil {
				return err
			}
			if len(password) < 6 {
				return fmt.Errorf("password must be at least 6 characters")
			}

			db, err := repository.NewDB(cfg.Database)
			if err != nil {
				return err
			}
			if err := repository.Migrate(db); err != nil {
				return err
			}

			authSvc := service.NewAuthService(db, auth.NewTokenIssuer(cfg.JWTSecret, cfg.TokenTTL))
			user, err := authSvc.CreateAdmin(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			fmt.Printf("Admin %s (%s) created with id %d\n", user.Name, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "display name for the admin")
	cmd.Flags().StringVar(&email, "email", "", "login email for the admin")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword prompts on the terminal without echoing.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimSpace(string(raw)), nil
}
