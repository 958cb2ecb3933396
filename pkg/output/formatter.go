package output

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/ritzau/meetmap/pkg/graph"
	"github.com/ritzau/meetmap/pkg/model"
)

// PrintDocumentReport prints a nicely formatted document summary with colors
func PrintDocumentReport(path string, doc *model.Document, diags graph.Diagnostics) {
	// Color definitions
	bold := color.New(color.Bold)
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	cyan := color.New(color.FgCyan)

	stats := doc.Stats()
	issues := doc.Validate()

	// Header
	bold.Println("meetmap - Document Report")
	bold.Println("=========================")
	fmt.Printf("Document: %s\n", path)
	fmt.Printf("Title: %s\n", doc.Title())
	fmt.Printf("Nodes: %d\n", stats.Total)

	// Per-type breakdown, sorted for stable output
	types := make([]string, 0, len(stats.ByType))
	for nt := range stats.ByType {
		types = append(types, string(nt))
	}
	sort.Strings(types)
	for _, nt := range types {
		cyan.Printf("  %-12s %d\n", nt, stats.ByType[model.NodeType(nt)])
	}
	if stats.Outcomes > 0 {
		green.Printf("Outcomes: %d\n", stats.Outcomes)
	}
	fmt.Println()

	// Structural issues found during validation
	if len(issues) > 0 {
		red.Println("ISSUES:")
		for _, issue := range issues {
			severityColor := yellow
			if issue.Severity == model.SeverityError {
				severityColor = red
			}
			severityColor.Printf("  [%s] %s", issue.Severity, issue.Problem)
			if issue.NodeID != "" {
				fmt.Printf(" (%s)", issue.NodeID)
			}
			fmt.Printf(": %s\n", issue.Detail)
		}
		fmt.Println()
	}

	// Nodes the graph builder had to drop
	if diags.Excluded > 0 {
		yellow.Printf("Excluded from the map: %d node(s)\n", diags.Excluded)
		for _, id := range diags.Dangling {
			yellow.Printf("  %s (parent missing)\n", id)
		}
		for _, id := range diags.Cycles {
			yellow.Printf("  %s (circular parent chain)\n", id)
		}
		fmt.Println()
	}

	// Summary with color based on how clean the document is
	summaryColor := green
	if len(issues) > 0 || diags.Excluded > 0 {
		summaryColor = yellow
	}
	for _, issue := range issues {
		if issue.Severity == model.SeverityError {
			summaryColor = red
			break
		}
	}

	mapped := stats.Total - diags.Excluded
	summaryColor.Printf("Summary: %d/%d nodes on the map, %d issue(s)\n",
		mapped, stats.Total, len(issues))

	if len(issues) == 0 && diags.Empty() {
		green.Println("✓ Document is structurally clean")
	}
}

// PrintExportResult prints one line per written export file
func PrintExportResult(path string, size int64, elapsed time.Duration) {
	green := color.New(color.FgGreen)
	green.Printf("✓ Wrote %s (%s) in %s\n", path, humanSize(size), elapsed.Round(time.Millisecond))
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
