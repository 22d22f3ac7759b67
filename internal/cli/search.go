package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/raphaelgruber/globotrack/internal/service"
	"github.com/raphaelgruber/globotrack/internal/session"
	"github.com/spf13/cobra"
)

var searchSave []int

var searchCmd = &cobra.Command{
	Use:   "search <origin> <destination>",
	Short: "Find travel routes between two places",
	Long: `Ask the AI model for up to three diverse routes between two places.

Direct options are preferred; otherwise routes mix flights, trains and buses.
Each route lists its legs, costs in INR and where to book it.

Examples:
  globotrack search Delhi Tokyo
  globotrack search "New Delhi" "Kyoto" --save 1
  globotrack search Mumbai Goa --save 1,3`,
	Args: cobra.ExactArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntSliceVarP(&searchSave, "save", "s", nil, "save the numbered results to your profile")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	g, err := getGateway(ctx)
	if err != nil {
		return err
	}

	board := service.NewSearchBoard(g, logger)
	fmt.Fprintf(out, "Searching routes from %s to %s...\n\n", args[0], args[1])
	state, _ := board.Search(ctx, args[0], args[1])

	printSearchState(out, state, ctrl)

	for _, n := range searchSave {
		if n < 1 || n > len(state.Results) {
			fmt.Fprintf(out, "No result %d to save.\n", n)
			continue
		}
		route := state.Results[n-1]
		saved, err := ctrl.SaveRoute(ctx, route)
		switch {
		case errors.Is(err, session.ErrNotSignedIn):
			fmt.Fprintln(out, defaultTheme.errorStyle().Render(session.MsgSignInToSave))
			return nil
		case err != nil:
			return err
		case saved:
			fmt.Fprintf(out, "Saved %q to your profile.\n", route.Name)
		default:
			fmt.Fprintf(out, "%q is already saved.\n", route.Name)
		}
	}
	return nil
}

// savedChecker reports which route names the profile holds.
type savedChecker interface {
	IsRouteSaved(name string) bool
}

func printSearchState(out io.Writer, state service.SearchState, saved savedChecker) {
	if state.Message != "" {
		style := defaultTheme.hintStyle()
		if state.Message == service.MsgSearchFailed {
			style = defaultTheme.errorStyle()
		}
		fmt.Fprintln(out, style.Render(state.Message))
		return
	}

	fmt.Fprintf(out, "Found %d routes:\n\n", len(state.Results))
	for i, r := range state.Results {
		fmt.Fprintln(out, renderRoute(r, i+1, saved.IsRouteSaved(r.Name), defaultTheme))
	}
	if len(searchSave) == 0 {
		fmt.Fprintln(out, defaultTheme.hintStyle().Render("Save a route with --save <number>."))
	}
}
