package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"
	"time"

	"github.com/campusevents/calendar/internal/domain"
	"github.com/campusevents/calendar/internal/service"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// cliIdentity is recorded as created_by for accounts added from the command line.
var cliIdentity = domain.Identity{ID: uuid.Nil, Username: "calendarctl"}

func newAdminCommand(logger func() *slog.Logger) *cobra.Command {
	admin := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}

	var username, password string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create an admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccess(cmd.Context(), logger(), func(access *service.AccessService) error {
				user, err := access.AddAdmin(cmd.Context(), service.AddAdminInput{
					Username: username,
					Password: password,
				}, cliIdentity)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.ID)
				return nil
			})
		},
	}
	add.Flags().StringVar(&username, "username", "", "admin username")
	add.Flags().StringVar(&password, "password", "", "admin password")
	_ = add.MarkFlagRequired("username")
	_ = add.MarkFlagRequired("password")

	list := &cobra.Command{
		Use:   "list",
		Short: "List admin accounts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAccess(cmd.Context(), logger(), func(access *service.AccessService) error {
				admins, err := access.ListAdmins(cmd.Context())
				if err != nil {
					return err
				}
				printAdmins(cmd, admins)
				return nil
			})
		},
	}

	admin.AddCommand(add, list)
	return admin
}

func printAdmins(cmd *cobra.Command, admins []domain.AdminUser) {
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tUSERNAME\tCREATED BY\tCREATED AT")
	for _, a := range admins {
		createdBy := "-"
		if a.CreatedBy != nil {
			createdBy = *a.CreatedBy
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Username, createdBy, a.CreatedAt.Format(time.RFC3339))
	}
	tw.Flush()
}
