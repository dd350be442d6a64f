package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/inkdesk/internal/failure"
	"github.com/dtroode/inkdesk/internal/model"
)

func newLoginCmd(app func() *App) *cobra.Command {
	var (
		email    string
		password string
		remember bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to the platform",
		Long:  "Sign in with email and password. With --remember the tokens survive restarts; otherwise they last for the session.",
		RunE: func(cmd *cobra.Command, args []string) error {
			reader := bufio.NewReader(cmd.InOrStdin())
			if email == "" {
				v, err := prompt(cmd, reader, "Email: ")
				if err != nil {
					return err
				}
				email = v
			}
			if password == "" {
				v, err := prompt(cmd, reader, "Password: ")
				if err != nil {
					return err
				}
				password = v
			}
			if email == "" || password == "" {
				return errors.New("email and password cannot be empty")
			}

			a := app()
			if err := a.Session.Login(cmd.Context(), email, password, remember); err != nil {
				if errors.Is(err, model.ErrSessionSuperseded) {
					return err
				}
				st := a.Session.State()
				msg := failure.Normalize(err, st.ErrorMessage)
				return fmt.Errorf("%s: %s", st.ErrorMessage, msg.Description)
			}

			user := a.Session.User()
			fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s)\n", displayName(user), rolesLabel(user))
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "account email (prompted if omitted)")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted if omitted)")
	cmd.Flags().BoolVar(&remember, "remember", false, "keep the session across restarts")
	return cmd
}

func newLogoutCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget stored tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			app().Session.Logout(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
			return nil
		},
	}
}

func newWhoamiCmd(app func() *App) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user := app().Session.User()
			if user == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> roles=%s\n", displayName(user), user.Email, rolesLabel(user))
			return nil
		},
	}
}

func prompt(cmd *cobra.Command, reader *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.OutOrStdout(), label)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func displayName(u *model.User) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

func rolesLabel(u *model.User) string {
	roles := u.Roles.List()
	if len(roles) == 0 {
		return "no roles"
	}
	names := make([]string, len(roles))
	for i, r := range roles {
		names[i] = string(r)
	}
	return strings.Join(names, ",")
}
