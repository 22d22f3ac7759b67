package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/spf13/cobra"
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your travel profile",
	Long: `Show the signed-in profile: name, email, bio and the number of saved routes.

Subcommands:
  bio   Replace your bio

Examples:
  globotrack profile
  globotrack profile bio "Slow travel, window seats, street food."`,
	Args: cobra.NoArgs,
	RunE: runProfile,
}

var profileBioCmd = &cobra.Command{
	Use:   "bio <text>",
	Short: "Replace your bio",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runProfileBio,
}

func init() {
	profileCmd.AddCommand(profileBioCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p, ok := ctrl.Current()
	if !ok {
		fmt.Fprintln(out, "Not signed in. Use 'globotrack login' or 'globotrack signup'.")
		return nil
	}

	fmt.Fprintln(out, defaultTheme.titleStyle().Render(p.Name))
	fmt.Fprintf(out, "Email:  %s\n", p.Email)
	fmt.Fprintf(out, "Bio:    %s\n", p.Bio)
	fmt.Fprintf(out, "Routes: %d saved\n", len(p.SavedRoutes))
	return nil
}

func runProfileBio(cmd *cobra.Command, args []string) error {
	bio := strings.Join(args, " ")
	if err := ctrl.UpdateBio(cmd.Context(), bio); err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return errors.New("sign in to edit your bio")
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Bio updated.")
	return nil
}
