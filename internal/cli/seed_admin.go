package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/hernanharco/authcenter-backend/internal/app/bootstrap"
	"github.com/hernanharco/authcenter-backend/internal/application"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

func newSeedAdminCommand(load loaderFunc) *cobra.Command {
	var req application.SeedAdminRequest

	cmd := &cobra.Command{
		Use:   "seed-admin",
		Short: "Create an active admin, or promote and reset an existing account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if req.Password == "" {
				password, err := promptPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				req.Password = password
			}

			cfg, logger, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			runtime, err := bootstrap.NewRuntime(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer runtime.Close()

			account, created, err := runtime.Service().SeedAdmin(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("seed admin: %w", err)
			}
			verb := "updated"
			if created {
				verb = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "admin %s: %s (%s)\n", verb, account.Username, account.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Username, "username", "", "admin username")
	cmd.Flags().StringVar(&req.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&req.FullName, "full-name", "", "admin display name")
	cmd.Flags().StringVar(&req.Password, "password", "", "admin password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("full-name")
	return cmd
}

// promptPassword reads the password twice from the terminal without echo.
func promptPassword(w io.Writer) (string, error) {
	fmt.Fprint(w, "Password: ")
	first, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(w, "Confirm password: ")
	second, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if len(first) == 0 {
		return "", errors.New("password is required")
	}
	return string(first), nil
}
