package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/cardbox-tools/cardbox/models"
)

var nameColor = color.New(color.Bold)

// renderCards prints matched cards in the selected projection. Matching has
// already happened; projection only decides what is shown.
func renderCards(w io.Writer, cards []models.Card, projection models.Projection) {
	switch projection {
	case models.ProjectionEmails:
		renderTyped(w, cards, func(c models.Card) []models.TypedValue { return c.Emails })
	case models.ProjectionPhones:
		renderTyped(w, cards, func(c models.Card) []models.TypedValue { return c.Phones })
	default:
		renderFull(w, cards)
	}
}

func renderFull(w io.Writer, cards []models.Card) {
	for i, card := range cards {
		if i > 0 {
			fmt.Fprintln(w)
		}

		fmt.Fprintf(w, "Name: %s\n", nameColor.Sprint(card.Name))
		for _, tv := range card.Phones {
			fmt.Fprintf(w, "Phone%s: %s\n", typeSuffix(tv), tv.Value)
		}
		for _, tv := range card.Emails {
			fmt.Fprintf(w, "Email%s: %s\n", typeSuffix(tv), tv.Value)
		}
	}
}

// renderTyped prints one aligned line per value: value, owner name, type.
func renderTyped(w io.Writer, cards []models.Card, pick func(models.Card) []models.TypedValue) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, card := range cards {
		for _, tv := range pick(card) {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", tv.Value, card.Name, tv.Type)
		}
	}
	tw.Flush()
}

func typeSuffix(tv models.TypedValue) string {
	if tv.Type == "" {
		return ""
	}
	return " (" + tv.Type + ")"
}

// renderReport summarizes one sync run for the terminal.
func renderReport(w io.Writer, report models.SyncReport) {
	fmt.Fprintf(w, "sync complete: %d added, %d changed, %d deleted\n",
		report.Added, report.Changed, report.Deleted)

	if len(report.Conflicts) > 0 {
		warn := color.New(color.FgYellow)
		warn.Fprintf(w, "conflicts (deleted remotely but modified locally):\n")
		for _, id := range report.Conflicts {
			fmt.Fprintf(w, "  %s\n", id)
		}
	}

	if len(report.Failures) > 0 {
		fail := color.New(color.FgRed)
		fail.Fprintf(w, "failed records:\n")
		for _, f := range report.Failures {
			fmt.Fprintf(w, "  %s (%s): %s\n", f.ID, f.Op, f.Err)
		}
	}
}
