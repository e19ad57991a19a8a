package formatter

import (
	"fmt"
	"strings"

	"github.com/i474232898/runbuddy/internal/pipeline"
	"github.com/i474232898/runbuddy/internal/trails"
	"github.com/i474232898/runbuddy/internal/weather"
)

// FormatAnswer renders one answer for the terminal.
func FormatAnswer(a pipeline.Answer) string {
	var b strings.Builder
	r := a.Result

	b.WriteString(Header("RunBuddy Recommendation"))
	b.WriteString("\n")
	field(&b, "When", StyleBlue.Render(a.When.Date+" "+a.When.Time))
	field(&b, "City", a.City)
	field(&b, "Weather", FormatSnapshot(a.Weather))
	if r.TrailName != nil {
		field(&b, "Trail", StyleGreen.Render(*r.TrailName))
	} else {
		field(&b, "Trail", StyleYellow.Render("none recommended"))
	}
	if r.Location != nil {
		field(&b, "Location", *r.Location)
	}
	field(&b, "Reason", r.Reason)
	if r.Cautions != nil && *r.Cautions != "" {
		field(&b, "Cautions", StyleYellow.Render(*r.Cautions))
	}
	return b.String()
}

// FormatSnapshot renders a weather snapshot on one line.
func FormatSnapshot(s weather.Snapshot) string {
	return fmt.Sprintf("%.1f°C, %.1f mm, %s",
		s.Temperature, s.Precipitation, ConditionStyle(s.Condition).Render(string(s.Condition)))
}

// FormatTrails renders the catalog as a compact list grouped in input order.
func FormatTrails(records []trails.Record) string {
	var b strings.Builder
	b.WriteString(Header(fmt.Sprintf("Trails (%d)", len(records))))
	b.WriteString("\n")
	for _, r := range records {
		b.WriteString(fmt.Sprintf("  %s %s\n", Bold(r.Name), Dim("· "+r.Location)))
		var details []string
		if r.LengthKm > 0 {
			details = append(details, fmt.Sprintf("%.1f km", r.LengthKm))
		}
		for _, s := range []string{r.Difficulty, r.TerrainType} {
			if s != "" {
				details = append(details, s)
			}
		}
		if r.Hazards != "" {
			details = append(details, StyleRed.Render(r.Hazards))
		}
		if len(details) > 0 {
			b.WriteString("    " + strings.Join(details, Dim(" | ")) + "\n")
		}
	}
	return b.String()
}

func field(b *strings.Builder, label, value string) {
	fmt.Fprintf(b, "%-10s%s\n", label+":", value)
}
