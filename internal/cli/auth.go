package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/raphaelgruber/globotrack/internal/auth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	authEmail    string
	authName     string
	authPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to your travel profile",
	Long: `Sign in with an email address. Your display name is taken from the part
of the email before '@'. Missing values are prompted for.

Examples:
  globotrack login --email priya@example.com
  globotrack login`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create a travel profile",
	Long: `Create a profile with your name and email and sign in to it.

Examples:
  globotrack signup --name "Priya Sharma" --email priya@example.com`,
	Args: cobra.NoArgs,
	RunE: runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the stored profile",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ctrl.SignOut(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&authEmail, "email", "e", "", "email address")
		c.Flags().StringVarP(&authPassword, "password", "p", "", "password (prompted if omitted)")
	}
	signupCmd.Flags().StringVarP(&authName, "name", "n", "", "full name")
}

func runLogin(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	creds := auth.Credentials{
		Email:    promptIfEmpty(in, out, authEmail, "Email: "),
		Password: promptPassword(cmd.InOrStdin(), in, out, authPassword),
	}
	p, err := ctrl.SignIn(cmd.Context(), creds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Signed in as %s.\n", p.Name)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	in := bufio.NewReader(cmd.InOrStdin())
	out := cmd.OutOrStdout()

	creds := auth.Credentials{
		Name:     promptIfEmpty(in, out, authName, "Full name: "),
		Email:    promptIfEmpty(in, out, authEmail, "Email: "),
		Password: promptPassword(cmd.InOrStdin(), in, out, authPassword),
	}
	p, err := ctrl.SignUp(cmd.Context(), creds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Welcome, %s! Your profile is ready.\n", p.Name)
	return nil
}

// promptIfEmpty returns value, or reads a line from in when value is blank.
func promptIfEmpty(in *bufio.Reader, out io.Writer, value, prompt string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	fmt.Fprint(out, prompt)
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}

// promptPassword reads without echo when the command's input is a terminal.
func promptPassword(raw io.Reader, in *bufio.Reader, out io.Writer, value string) string {
	if value != "" {
		return value
	}
	fmt.Fprint(out, "Password: ")
	if f, ok := raw.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		pw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(out)
		if err == nil {
			return string(pw)
		}
	}
	line, _ := in.ReadString('\n')
	return strings.TrimSpace(line)
}
