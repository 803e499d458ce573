// Package report renders digests and price history for the terminal and files
package report

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/bobmcallan/finapps/internal/common"
	"github.com/bobmcallan/finapps/internal/models"
)

// HeaderDateLayout is the anchor column heading, e.g. "Thu 01 Nov 18".
const HeaderDateLayout = "Mon 02 Jan 06"

const (
	arrowUp   = "↑"
	arrowDown = "↓"
	arrowFlat = "→"
	missing   = "-"
)

// FormatDigest writes the digest table for one or more symbols. Substitution
// notes precede the table. Nothing is written when results is empty.
func FormatDigest(w io.Writer, results ...*models.DigestResult) error {
	if len(results) == 0 {
		return errors.New("no digest results to format")
	}

	for _, r := range results {
		if r.Substituted {
			if _, err := fmt.Fprintf(w, "%s: %s is not a trading day, using %s\n",
				r.Symbol, common.FormatDate(r.RequestedDate), r.ResolvedDate.Format(HeaderDateLayout)); err != nil {
				return err
			}
		}
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	header := []string{"SYMBOL", "METRIC", results[0].RequestedDate.Format(HeaderDateLayout)}
	for _, p := range models.Periods {
		header = append(header, p.Label)
	}
	fmt.Fprintln(tw, strings.Join(header, "\t"))

	for _, r := range results {
		for _, md := range r.Metrics {
			row := []string{r.Symbol, string(md.Metric), formatValue(md.Metric, md.AnchorValue)}
			for _, p := range models.Periods {
				c, ok := r.Change(md.Metric, p.Label)
				if !ok {
					row = append(row, missing)
					continue
				}
				row = append(row, FormatCell(md.Metric, c))
			}
			fmt.Fprintln(tw, strings.Join(row, "\t"))
		}
	}

	return tw.Flush()
}

// FormatCell renders a period value with its change, e.g. "2,712 (↑ +1%)".
func FormatCell(m models.Metric, c models.PeriodChange) string {
	v := formatValue(m, c.PeriodValue)
	if !c.HasPercent {
		return v + " (n/a)"
	}
	return fmt.Sprintf("%s (%s %s)", v, Direction(c.Percent), common.FormatPercent(c.Percent))
}

// Direction picks the indicator from the displayed (rounded) percent, so a
// "0%" change is always flat.
func Direction(pct decimal.Decimal) string {
	switch r := pct.Round(0); {
	case r.IsPositive():
		return arrowUp
	case r.IsNegative():
		return arrowDown
	default:
		return arrowFlat
	}
}

func formatValue(m models.Metric, v decimal.Decimal) string {
	if m == models.MetricVolume {
		return common.FormatCompact(v)
	}
	return common.FormatPrice(v)
}
