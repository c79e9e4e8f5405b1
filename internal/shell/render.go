package shell

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"orderdash/internal/list"
)

func renderList(w io.Writer, snap list.Snapshot) {
	switch snap.State {
	case list.StateLoading:
		fmt.Fprintln(w, "Loading orders...")
		return
	case list.StateFailure:
		fmt.Fprintln(w, "! "+snap.ErrMsg)
		return
	case list.StateIdle:
		return
	}

	if len(snap.Orders) == 0 {
		fmt.Fprintln(w, "No order data available")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCUSTOMER\tPRODUCT\tQTY\tUNIT PRICE\tTOTAL\tSTATUS\tCREATED")
	for _, o := range snap.Orders {
		fmt.Fprintf(tw, "#%d\t%s\t%s\t%d\t%.2f\t%.2f\t%s\t%s\n",
			o.ID, o.CustomerName, o.ProductName, o.Quantity,
			o.UnitPrice, o.TotalAmount, o.Status.Label(),
			o.CreatedAt.Local().Format(time.DateTime))
	}
	tw.Flush()

	if snap.TotalPages > 1 {
		fmt.Fprintln(w, paginationLine(snap.Page, snap.TotalPages))
	}
}

// paginationLine renders the sliding page window with prev/next markers,
// e.g. "< [3] 4 5 6 7 >  (page 3 of 12)". Markers at a boundary render as
// spaces so the line width stays put.
func paginationLine(current, total int) string {
	var b strings.Builder

	if current > 1 {
		b.WriteString("< ")
	} else {
		b.WriteString("  ")
	}
	for i, p := range list.PageWindow(current, total) {
		if i > 0 {
			b.WriteByte(' ')
		}
		if p == current {
			fmt.Fprintf(&b, "[%d]", p)
		} else {
			fmt.Fprintf(&b, "%d", p)
		}
	}
	if current < total {
		b.WriteString(" >")
	}
	fmt.Fprintf(&b, "  (page %d of %d)", current, total)
	return b.String()
}
