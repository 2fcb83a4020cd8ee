package report

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"RetailPulse/internal/model"
)

// KPICards holds the display strings of the four KPI cards.
type KPICards struct {
	Revenue string `json:"revenue"`
	Profit  string `json:"profit"`
	Margin  string `json:"margin"`
	Volume  string `json:"volume"`
}

// Currency formats v as dollars with thousands separators and two decimals.
func Currency(v float64) string {
	if v < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -v)
	}
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// Percent formats a value already expressed in percent.
func Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Count formats v as a whole number with thousands separators.
func Count(v float64) string {
	return humanize.Comma(int64(math.Round(v)))
}

func FormatKPICards(s model.KPISummary) KPICards {
	return KPICards{
		Revenue: Currency(s.Revenue),
		Profit:  Currency(s.Profit),
		Margin:  Percent(s.Margin),
		Volume:  Count(s.Volume),
	}
}

// ViewLine is the per-view input of the status report.
type ViewLine struct {
	Name      string
	State     string
	Error     string
	UpdatedAt time.Time
}

// FormatStatus renders the filter scope, KPI cards (when available) and view
// states as plain text.
func FormatStatus(state model.FilterState, kpis *model.KPISummary, views []ViewLine, now time.Time) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("RetailPulse | %s\n\n", now.Format("2006-01-02 15:04")))

	b.WriteString(fmt.Sprintf("Range: %s .. %s", state.DateRange.Start.Format("2006-01-02"), state.DateRange.End.Format("2006-01-02")))
	if state.Preset != "" {
		b.WriteString(fmt.Sprintf(" (preset %s)", state.Preset))
	}
	b.WriteString(fmt.Sprintf("\nRegion: %s\n\n", state.Region))

	if kpis != nil {
		cards := FormatKPICards(*kpis)
		b.WriteString(fmt.Sprintf("Revenue: %s\n", cards.Revenue))
		b.WriteString(fmt.Sprintf("Profit:  %s\n", cards.Profit))
		b.WriteString(fmt.Sprintf("Margin:  %s\n", cards.Margin))
		b.WriteString(fmt.Sprintf("Volume:  %s\n\n", cards.Volume))
	}

	for _, v := range views {
		b.WriteString(fmt.Sprintf("%-9s %s", v.Name, v.State))
		if !v.UpdatedAt.IsZero() {
			b.WriteString(fmt.Sprintf(" (%s)", humanize.RelTime(v.UpdatedAt, now, "ago", "from now")))
		}
		if v.Error != "" {
			b.WriteString(fmt.Sprintf(": %s", v.Error))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
