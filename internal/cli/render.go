package cli

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"text/tabwriter"

	"inventory-server-go/internal/client"
)

// renderItems writes the item table with the aggregate footer: total value
// and per-category counts.
func renderItems(w io.Writer, items []client.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "No items.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRICE\tCATEGORY")

	var total float64
	categories := make(map[string]int)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%s\n", item.ItemID, item.Name, item.Price, category)
		total += item.Price
		categories[category]++
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d item(s), total value %.2f\n", len(items), total)

	names := slices.Sorted(maps.Keys(categories))
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, categories[name]))
	}
	_, err := fmt.Fprintf(w, "By category: %s\n", strings.Join(parts, ", "))
	return err
}

// renderItem writes one item as a field table.
func renderItem(w io.Writer, item client.Item) error {
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", item.ItemID)
	fmt.Fprintf(tw, "Name\t%s\n", item.Name)
	fmt.Fprintf(tw, "Price\t%.2f\n", item.Price)
	if item.Category != "" {
		fmt.Fprintf(tw, "Category\t%s\n", item.Category)
	}
	return tw.Flush()
}

// renderItemEvent writes one live feed event as a single line.
func renderItemEvent(w io.Writer, ev client.ItemEvent) {
	line := fmt.Sprintf("%s  %-7s  %s  %s  %.2f",
		ev.OccurredAt.Local().Format("15:04:05"), ev.Action, ev.ItemID, ev.Name, ev.Price)
	if ev.Category != "" {
		line += "  " + ev.Category
	}
	fmt.Fprintln(w, line)
}
