package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/wirechat-relay/internal/app"
	"github.com/vovakirdan/wirechat-relay/internal/auth"
	"github.com/vovakirdan/wirechat-relay/internal/store/sqlite"
)

// withService opens the configured database and hands an account service
// to fn. Used by the seeding commands.
func withService(opts *rootOptions, fn func(ctx context.Context, st *sqlite.SQLiteStore, svc *auth.Service) error) error {
	cfg, _, err := opts.load()
	if err != nil {
		return err
	}

	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	return fn(context.Background(), st, auth.NewService(st, app.NewJWTConfig(cfg)))
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, s)
	}
	return id, nil
}

func newUserCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "user", Short: "Manage user accounts"}

	var nu auth.NewUser
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withService(opts, func(ctx context.Context, _ *sqlite.SQLiteStore, svc *auth.Service) error {
				user, err := svc.CreateUser(ctx, nu)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created user %d (%s)\n", user.ID, user.UUID)
				return nil
			})
		},
	}
	create.Flags().StringVar(&nu.Username, "username", "", "login name")
	create.Flags().StringVar(&nu.FirstName, "first-name", "", "first name")
	create.Flags().StringVar(&nu.LastName, "last-name", "", "last name")
	create.Flags().StringVar(&nu.Password, "password", "", "password")
	_ = create.MarkFlagRequired("username")
	_ = create.MarkFlagRequired("password")
	_ = create.MarkFlagRequired("first-name")

	cmd.AddCommand(create)
	return cmd
}

func newGroupCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{Use: "group", Short: "Manage groups"}

	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(opts, func(ctx context.Context, st *sqlite.SQLiteStore, _ *auth.Service) error {
				group, err := st.CreateGroup(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created group %d\n", group.ID)
				return nil
			})
		},
	}

	addMember := &cobra.Command{
		Use:   "add-member GROUP_ID USER_ID...",
		Short: "Add users to a group",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, err := parseID(args[0], "group")
			if err != nil {
				return err
			}
			return withService(opts, func(ctx context.Context, st *sqlite.SQLiteStore, _ *auth.Service) error {
				for _, arg := range args[1:] {
					userID, err := parseID(arg, "user")
					if err != nil {
						return err
					}
					if err := st.AddGroupMember(ctx, groupID, userID); err != nil {
						return fmt.Errorf("add user %d: %w", userID, err)
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "group %d: added %d member(s)\n", groupID, len(args)-1)
				return nil
			})
		},
	}

	cmd.AddCommand(create, addMember)
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "token USER_ID",
		Short: "Mint an access token for a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			userID, err := parseID(args[0], "user")
			if err != nil {
				return err
			}
			return withService(opts, func(ctx context.Context, _ *sqlite.SQLiteStore, svc *auth.Service) error {
				token, err := svc.IssueToken(ctx, userID)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), token)
				return nil
			})
		},
	}
}
