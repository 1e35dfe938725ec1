package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/store"
)

// generatedPasswordLength is the length of passwords printed by user commands.
const generatedPasswordLength = 16

func (a *app) newUserCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage accounts",
	}
	cmd.AddCommand(a.newUserAddCmd(), a.newUserResetCmd())
	return cmd
}

func (a *app) newUserAddCmd() *cobra.Command {
	var displayName string

	cmd := &cobra.Command{
		Use:   "add <username>",
		Short: "Create an account and print its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			username := strings.TrimSpace(args[0])
			if username == "" {
				return fmt.Errorf("username must not be empty")
			}

			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			password, hash, err := newPassword()
			if err != nil {
				return err
			}

			user, err := store.CreateUser(cmd.Context(), database, username, strings.TrimSpace(displayName), hash)
			if db.IsUniqueViolation(err) {
				return fmt.Errorf("user %q already exists", username)
			}
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Account created:")
			fmt.Fprintf(out, "  Username: %s\n", user.Username)
			fmt.Fprintf(out, "  Shown as: %s\n", user.PublicName())
			fmt.Fprintf(out, "  Password: %s\n", password)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Save this password, it cannot be recovered.")
			fmt.Fprintln(out, "The user can change it after logging in.")
			return nil
		},
	}
	cmd.Flags().StringVar(&displayName, "display-name", "", "public display name (default: generated alias)")
	return cmd
}

func (a *app) newUserResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset-password <username>",
		Short: "Replace an account's password and print the new one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.openDB()
			if err != nil {
				return err
			}
			defer database.Close()

			user, err := store.GetUserByUsername(cmd.Context(), database, args[0])
			if err != nil {
				return err
			}
			if user == nil {
				return fmt.Errorf("user %q not found", args[0])
			}

			password, hash, err := newPassword()
			if err != nil {
				return err
			}
			if err := store.UpdateUserPassword(cmd.Context(), database, user.ID, hash); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "New password for %s: %s\n", user.Username, password)
			return nil
		},
	}
}

func newPassword() (password, hash string, err error) {
	password, err = auth.GeneratePassword(generatedPasswordLength)
	if err != nil {
		return "", "", fmt.Errorf("generating password: %w", err)
	}
	hash, err = auth.HashPassword(password)
	if err != nil {
		return "", "", fmt.Errorf("hashing password: %w", err)
	}
	return password, hash, nil
}
