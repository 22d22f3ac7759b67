package cli

import (
	"errors"
	"fmt"

	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/spf13/cobra"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "List or delete saved routes",
	Long: `List the routes saved in your profile.

Subcommands:
  list    List saved routes (default)
  delete  Delete a saved route by id

Examples:
  globotrack routes
  globotrack routes delete 0190a3c4e5f67b8c9d0e1f2a3b4c5d6e`,
	RunE: runListRoutes,
}

var routesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved routes",
	Args:  cobra.NoArgs,
	RunE:  runListRoutes,
}

var routesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved route",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeleteRoute,
}

func init() {
	routesCmd.AddCommand(routesListCmd)
	routesCmd.AddCommand(routesDeleteCmd)
}

func runListRoutes(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p, ok := ctrl.Current()
	if !ok {
		fmt.Fprintln(out, "Not signed in.")
		return nil
	}

	if len(p.SavedRoutes) == 0 {
		fmt.Fprintln(out, "No saved routes yet. Find some with 'globotrack search'.")
		return nil
	}

	fmt.Fprintf(out, "Saved routes (%d):\n\n", len(p.SavedRoutes))
	for _, r := range p.SavedRoutes {
		if verbose {
			fmt.Fprintln(out, renderRoute(r, 0, false, defaultTheme))
			continue
		}
		fmt.Fprintf(out, "- %s  %s  %s [%s]\n", r.Name, formatINR(r.TotalCost), r.TotalDuration, r.ID)
	}
	return nil
}

func runDeleteRoute(cmd *cobra.Command, args []string) error {
	id := args[0]
	before, ok := ctrl.Current()
	if !ok {
		return errors.New("not signed in")
	}

	if err := ctrl.DeleteRoute(cmd.Context(), id); err != nil {
		if errors.Is(err, session.ErrNotSignedIn) {
			return errors.New("not signed in")
		}
		return err
	}

	after, _ := ctrl.Current()
	if len(after.SavedRoutes) == len(before.SavedRoutes) {
		fmt.Fprintf(cmd.OutOrStdout(), "No saved route with id %s.\n", id)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted route %s.\n", id)
	return nil
}
