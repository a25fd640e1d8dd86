package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"rentadm/storage"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the admin session",
	}

	cmd.AddCommand(authLoginCmd())
	cmd.AddCommand(authStatusCmd())
	cmd.AddCommand(authWhoamiCmd())
	cmd.AddCommand(authLogoutCmd())
	return cmd
}

func authLoginCmd() *cobra.Command {
	var email string
	var password string
	var authFile string
	authFileDefault := os.Getenv("RENTADM_AUTH_FILE")

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			if authFile != "" {
				fileEmail, filePassword, err := readAuthFile(authFile)
				if err != nil {
					return err
				}
				if email == "" {
					email = fileEmail
				}
				if password == "" {
					password = filePassword
				}
			}

			if email == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Email: ")
				reader := bufio.NewReader(cmd.InOrStdin())
				value, err := reader.ReadString('\n')
				if err != nil {
					return err
				}
				email = strings.TrimSpace(value)
			}
			if password == "" {
				fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
				bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = strings.TrimSpace(string(bytes))
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			user, err := store.Session.Login(cmd.Context(), email, password)
			if err != nil {
				return err
			}

			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), user)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s).\n", user.Email, user.Role)
			if !gate.Check("/dashboard").Allowed {
				fmt.Fprintln(cmd.ErrOrStderr(), "Warning: this account cannot open the admin console.")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password")
	cmd.Flags().StringVar(&authFile, "auth-file", authFileDefault, "Load credentials from file (default: $RENTADM_AUTH_FILE)")
	return cmd
}

func authStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			session, err := storage.LoadSession()
			if err != nil {
				return err
			}
			if session == nil || len(session.Cookies) == 0 {
				fmt.Fprintln(out, "Not logged in.")
				return nil
			}

			if outputJSON {
				expiry, _ := session.AccessTokenExpiry()
				return writeJSON(out, map[string]any{
					"email":    session.Email,
					"role":     session.Role,
					"backend":  session.BaseURL,
					"expires":  expiry,
					"expired":  session.AccessTokenExpired(time.Now()),
					"saved_at": session.SavedAt,
				})
			}

			fmt.Fprintf(out, "Logged in as %s (%s) on %s.\n", session.Email, session.Role, session.BaseURL)
			expiry, err := session.AccessTokenExpiry()
			switch {
			case err != nil:
				fmt.Fprintln(out, "Access token expiry unknown.")
			case session.AccessTokenExpired(time.Now()):
				fmt.Fprintf(out, "Access token expired at %s; the next call will refresh it.\n", expiry.Local().Format("2006-01-02 15:04"))
			default:
				fmt.Fprintf(out, "Access token expires: %s\n", expiry.Local().Format("2006-01-02 15:04"))
			}
			return nil
		},
	}

	return cmd
}

func authWhoamiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "whoami",
		Short:       "Fetch the signed-in profile",
		Annotations: routed("/profile"),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := store.Session.FetchProfile(cmd.Context())
			if err != nil {
				return err
			}
			return renderDetail(cmd.OutOrStdout(), user, [][2]string{
				{"ID", fmt.Sprint(user.ID)},
				{"Name", user.FullName},
				{"Email", user.Email},
				{"Role", string(user.Role)},
			})
		},
	}

	return cmd
}

func authLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Logout and clear the saved session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logoutErr := store.Session.Logout(cmd.Context())
			if err := storage.ClearSession(); err != nil {
				return err
			}
			if logoutErr != nil {
				logger.Warn("backend logout failed", "err", logoutErr)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
			return nil
		},
	}

	return cmd
}

func readAuthFile(path string) (string, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var email string
	var password string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "[email]", "[username]":
			if scanner.Scan() {
				email = strings.TrimSpace(scanner.Text())
			}
		case "[password]":
			if scanner.Scan() {
				password = strings.TrimSpace(scanner.Text())
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return "", "", err
	}
	return email, password, nil
}
