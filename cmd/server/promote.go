package main

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iliyamo/event-registration/internal/model"
	"github.com/iliyamo/event-registration/internal/repository"
)

// promoteCmd grants a role from the command line. It is how the first
// superadmin is created.
func promoteCmd() *cobra.Command {
	var email, role string
	cmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the role of an existing user",
		RunE: func(*cobra.Command, []string) error {
			valid := []string{model.RoleUser, model.RoleAdmin, model.RoleSuperAdmin}
			if !slices.Contains(valid, role) {
				return fmt.Errorf("role must be one of: %s", strings.Join(valid, ", "))
			}
			_, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			users := repository.NewUserRepo(db)
			u, err := users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
			if err != nil {
				return fmt.Errorf("find user %q: %w", email, err)
			}
			if err := users.UpdateRole(ctx, u.ID, role); err != nil {
				return err
			}
			log.Info("role updated", "user_id", u.ID, "role", role)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "e-mail of the user")
	cmd.Flags().StringVar(&role, "role", model.RoleAdmin, "role to grant")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}
