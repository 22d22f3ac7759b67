package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/globotrack/internal/client"
	"github.com/raphaelgruber/globotrack/internal/metrics"
	"github.com/spf13/cobra"
)

var statsServer string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show globotrack-server statistics",
	Long: `Show the runtime statistics of a running globotrack-server: AI call timings,
token usage and profile store timings since the server started.

Examples:
  globotrack stats
  globotrack stats --server http://localhost:9090`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsServer, "server", "", "server URL (default $GLOBOTRACK_SERVER_URL or http://localhost:8585)")
}

func runStats(cmd *cobra.Command, args []string) error {
	c := client.New(statsServer)
	stats, err := c.GetServerStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("get server stats: %w", err)
	}
	printStats(cmd.OutOrStdout(), *stats)
	return nil
}

// printStats displays AI call and store statistics.
func printStats(out io.Writer, stats metrics.Snapshot) {
	fmt.Fprintf(out, "Statistics (in-memory, since start)\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "Uptime: %.1f seconds\n", stats.UptimeSeconds)

	if stats.RouteSearch != nil {
		fmt.Fprintf(out, "\nRoute Search:\n")
		printOpStats(out, stats.RouteSearch)
		printTokenStats(out, stats.RouteSearch)
	}

	if stats.Chat != nil {
		fmt.Fprintf(out, "\nChat:\n")
		printOpStats(out, stats.Chat)
		printTokenStats(out, stats.Chat)
	}

	if stats.StoreLoad != nil {
		fmt.Fprintf(out, "\nProfile Load:\n")
		printOpStats(out, stats.StoreLoad)
	}

	if stats.StoreSave != nil {
		fmt.Fprintf(out, "\nProfile Save:\n")
		printOpStats(out, stats.StoreSave)
	}

	if stats.StoreClear != nil {
		fmt.Fprintf(out, "\nProfile Clear:\n")
		printOpStats(out, stats.StoreClear)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(out io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(out, "  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Fprintf(out, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(out io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(out, "  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgInputTokens)
	}
	if op.MinInputTokens != nil && op.MaxInputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinInputTokens, *op.MaxInputTokens)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgOutputTokens)
	}
	if op.MinOutputTokens != nil && op.MaxOutputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinOutputTokens, *op.MaxOutputTokens)
	}
	fmt.Fprintln(out)
}
