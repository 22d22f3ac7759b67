package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/raphaelgruber/globotrack/internal/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportRouteName string

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export saved routes to Markdown files",
	Long: `Export the routes saved in your profile to Markdown files, one per route,
with the route summary in YAML frontmatter. Files are named after the route.

Examples:
  globotrack export ./trips
  globotrack export ./trips --route "Tokyo Express"`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportRouteName, "route", "", "export only the route with this name")
}

// routeFrontmatter is the YAML header of an exported route.
type routeFrontmatter struct {
	ID            string    `yaml:"id"`
	Name          string    `yaml:"name"`
	TotalCost     float64   `yaml:"total_cost_inr"`
	TotalDuration string    `yaml:"total_duration"`
	Transfers     int       `yaml:"transfers"`
	Modes         []string  `yaml:"modes"`
	SavedBy       string    `yaml:"saved_by,omitempty"`
	ExportedAt    time.Time `yaml:"exported_at"`
}

func runExport(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	p, ok := ctrl.Current()
	if !ok {
		return fmt.Errorf("not signed in")
	}

	routes := p.SavedRoutes
	if exportRouteName != "" {
		filtered := routes[:0]
		for _, r := range routes {
			if r.Name == exportRouteName {
				filtered = append(filtered, r)
			}
		}
		routes = filtered
	}

	if len(routes) == 0 {
		fmt.Fprintln(out, "No routes to export.")
		return nil
	}

	fmt.Fprintf(out, "Exporting %d routes...\n", len(routes))
	exported, err := exportRoutes(args[0], routes, p.Email, time.Now(), func(path string) {
		if verbose {
			fmt.Fprintf(out, "  Exported: %s\n", path)
		}
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\nExported %d routes to %s\n", exported, args[0])
	return nil
}

// exportRoutes writes one Markdown file per route into dir and returns how
// many were written. A route that fails to write is skipped with a warning.
func exportRoutes(dir string, routes []models.TravelRoute, owner string, now time.Time, onWrite func(string)) (int, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return 0, fmt.Errorf("create export directory: %w", err)
	}

	exported := 0
	used := make(map[string]bool)
	for _, r := range routes {
		slug := uniqueSlug(models.Slugify(r.Name), used)

		content, err := renderRouteMarkdown(r, owner, now)
		if err != nil {
			logger.Warn("failed to render route", "route", r.Name, "error", err)
			continue
		}

		path := filepath.Join(dir, slug+".md")
		if err := os.WriteFile(path, content, 0644); err != nil {
			logger.Warn("failed to write export", "path", path, "error", err)
			continue
		}
		exported++
		if onWrite != nil {
			onWrite(path)
		}
	}
	return exported, nil
}

// uniqueSlug returns base, or base-N with the smallest N >= 2 that has not
// been handed out yet, and marks the result as used.
func uniqueSlug(base string, used map[string]bool) string {
	if base == "" {
		base = "route"
	}
	slug := base
	for n := 2; used[slug]; n++ {
		slug = fmt.Sprintf("%s-%d", base, n)
	}
	used[slug] = true
	return slug
}

// renderRouteMarkdown builds the frontmatter and body of an exported route.
func renderRouteMarkdown(r models.TravelRoute, owner string, now time.Time) ([]byte, error) {
	fm := routeFrontmatter{
		ID:            r.ID,
		Name:          r.Name,
		TotalCost:     r.TotalCost,
		TotalDuration: r.TotalDuration,
		Transfers:     r.Transfers,
		SavedBy:       owner,
		ExportedAt:    now.UTC().Truncate(time.Second),
	}
	seen := make(map[models.TransportType]bool)
	for _, leg := range r.Legs {
		if !seen[leg.Type] {
			seen[leg.Type] = true
			fm.Modes = append(fm.Modes, string(leg.Type))
		}
	}

	header, err := yaml.Marshal(fm)
	if err != nil {
		return nil, fmt.Errorf("marshal frontmatter: %w", err)
	}

	var b bytes.Buffer
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	fmt.Fprintf(&b, "%s • %s • %s\n\n", formatINR(r.TotalCost), r.TotalDuration, pluralTransfers(r.Transfers))

	b.WriteString("## Legs\n\n")
	b.WriteString("| # | Mode | From | To | Carrier | Duration | Cost |\n")
	b.WriteString("|---|------|------|----|---------|----------|------|\n")
	for i, leg := range r.Legs {
		carrier := leg.Carrier
		if carrier == "" {
			carrier = "Standard"
		}
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s | %s |\n",
			i+1, transportLabel(leg.Type), leg.From, leg.To, carrier, leg.Duration, formatINR(leg.Cost))
	}

	if len(r.BookingOptions) > 0 {
		b.WriteString("\n## Book\n\n")
		for _, opt := range r.BookingOptions {
			fmt.Fprintf(&b, "- [%s](%s): %s\n", opt.Platform, opt.URL, formatINR(opt.Price))
		}
	}
	return b.Bytes(), nil
}
