package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"construction-cost/core/confidence"
	"construction-cost/core/determinism"
	"construction-cost/core/types"
)

// CLIFormatter renders an estimate as a terminal report. Amounts are rounded
// to cents here and nowhere earlier.
type CLIFormatter struct {
	NoColor bool
}

// Format returns FormatCLI
func (f *CLIFormatter) Format() Format { return FormatCLI }

// Render writes the report
func (f *CLIFormatter) Render(out io.Writer, e *types.Estimate) error {
	w := NewWriter(out, f.NoColor)
	b := e.Breakdown
	if b == nil {
		b = &types.CostBreakdown{}
	}

	f.summary(w, e, b)

	w.Header("Cost Breakdown")
	f.materials(w, b)
	f.labor(w, b)
	f.equipment(w, b)
	f.subcontractors(w, b)
	f.totals(w, b)

	w.Header("Adjustments")
	w.Println("  Regional:   %s", determinism.FormatPercent(e.RegionalAdjustment))
	w.Println("  Seasonal:   %s (%s)", determinism.FormatPercent(e.SeasonalAdjustment), e.Season)
	w.Println("  Complexity: ×%s", e.ComplexityFactor.StringFixed(2))

	if len(e.Comparables) > 0 {
		w.Header("Comparable Projects")
		t := w.NewTable("Project", "Location", "Size (sq ft)", "Cost/sq ft", "Similarity").AlignRight(2, 3, 4)
		for _, c := range e.Comparables {
			t.AddRow(c.Title, c.Location,
				strconv.FormatFloat(c.Size, 'f', 0, 64),
				determinism.FormatMoney(c.CostPerSqft),
				fmt.Sprintf("%d%%", c.Similarity))
		}
		t.Render()
	}

	if len(e.Risks) > 0 {
		w.Header("Risks")
		for _, r := range e.Risks {
			w.Println("%s [%s] %s", w.color(riskColor(r.Impact), "●"), r.Category, r.Description)
			w.Println("%s", w.color(Dim, fmt.Sprintf("    probability %s, impact %s", r.Probability, r.Impact)))
			if r.Mitigation != "" {
				w.Println("    mitigation: %s", r.Mitigation)
			}
		}
	}

	list(w, "Recommendations", e.Recommendations)
	list(w, "Phases", e.Phases)
	list(w, "Assumptions", e.Assumptions)

	w.Println("")
	return w.Err()
}

func (f *CLIFormatter) summary(w *Writer, e *types.Estimate, b *types.CostBreakdown) {
	w.Header("Construction Cost Estimate")
	w.Println("%s", w.color(Bold, "╭─────────────────────────────────────────╮"))
	w.Println("%s%s%s", w.color(Bold, "│"), w.color(Green, fmt.Sprintf("  Total: %-32s", determinism.FormatMoney(b.Total))), w.color(Bold, "│"))
	w.Println("%s%s%s", w.color(Bold, "│"), w.color(Dim, fmt.Sprintf("  Valid until: %-26s", e.ValidUntil.Format("2006-01-02"))), w.color(Bold, "│"))
	w.Println("%s", w.color(Bold, "╰─────────────────────────────────────────╯"))
	w.Println("")

	confColor, confIcon := Green, "●"
	switch confidence.Level(e.Confidence) {
	case types.LevelMedium:
		confColor, confIcon = Yellow, "◐"
	case types.LevelLow:
		confColor, confIcon = Red, "○"
	}
	w.Println("%s", w.color(confColor, fmt.Sprintf("%s Confidence: %d%%", confIcon, e.Confidence)))
	w.Println("%s", w.color(Dim, fmt.Sprintf("  Estimate %s v%d (%s)", e.ID, e.Version, e.Status)))
	if e.InsightSource == types.InsightFromFallback {
		w.Warning("requirement insight unavailable; default phases and assumptions used")
	}
}

func (f *CLIFormatter) materials(w *Writer, b *types.CostBreakdown) {
	if len(b.Materials) == 0 {
		return
	}
	w.SubHeader("Materials")
	t := w.NewTable("Category", "Item", "Quantity", "Unit cost", "Total").AlignRight(2, 3, 4)
	for _, c := range b.Materials {
		for _, item := range c.Items {
			t.AddRow(c.Name, item.Name,
				item.Quantity.StringFixed(1)+" "+item.Unit,
				determinism.FormatMoney(item.UnitCost),
				determinism.FormatMoney(item.Total))
		}
		t.AddRow("", "subtotal", "", "", determinism.FormatMoney(c.Subtotal))
	}
	t.Render()
	w.Println("")
}

func (f *CLIFormatter) labor(w *Writer, b *types.CostBreakdown) {
	if len(b.Labor) == 0 {
		return
	}
	w.SubHeader("Labor")
	t := w.NewTable("Trade", "Workers", "Hours", "Rate", "Total").AlignRight(1, 2, 3, 4)
	for _, l := range b.Labor {
		t.AddRow(l.Trade, strconv.Itoa(l.Workers), l.Hours.StringFixed(1),
			determinism.FormatMoney(l.HourlyRate)+"/hr", determinism.FormatMoney(l.Total))
	}
	t.Render()
	w.Println("")
}

func (f *CLIFormatter) equipment(w *Writer, b *types.CostBreakdown) {
	if len(b.Equipment) == 0 {
		return
	}
	w.SubHeader("Equipment")
	t := w.NewTable("Equipment", "Type", "Duration", "Rate", "Total").AlignRight(2, 3, 4)
	for _, eq := range b.Equipment {
		t.AddRow(eq.Name, eq.Type, fmt.Sprintf("%d %s", eq.Duration, eq.Unit),
			determinism.FormatMoney(eq.Rate), determinism.FormatMoney(eq.Total))
	}
	t.Render()
	w.Println("")
}

func (f *CLIFormatter) subcontractors(w *Writer, b *types.CostBreakdown) {
	if len(b.Subcontractors) == 0 {
		return
	}
	w.SubHeader("Subcontractors")
	t := w.NewTable("Trade", "Scope", "Materials", "Amount").AlignRight(3)
	for _, s := range b.Subcontractors {
		included := "excluded"
		if s.MaterialsIncluded {
			included = "included"
		}
		t.AddRow(s.Trade, s.Scope, included, determinism.FormatMoney(s.Amount))
	}
	t.Render()
	w.Println("")
}

func (f *CLIFormatter) totals(w *Writer, b *types.CostBreakdown) {
	w.SubHeader("Totals")
	t := w.NewTable("Item", "Amount").AlignRight(1)
	rows := []struct {
		name   string
		amount decimal.Decimal
	}{
		{"Materials", b.MaterialsTotal()},
		{"Labor", b.LaborTotal()},
		{"Equipment", b.EquipmentTotal()},
		{"Subcontractors", b.SubcontractorTotal()},
		{"Permits", b.Permits},
		{"Insurance", b.Insurance},
		{"Bonding", b.Bonding},
		{"Overhead", b.Overhead},
		{"Subtotal", b.Subtotal},
		{"Contingency (10%)", b.Contingency},
		{"Profit (15%)", b.ProfitMargin},
		{"Total", b.Total},
	}
	for _, r := range rows {
		t.AddRow(r.name, determinism.FormatMoney(r.amount))
	}
	t.Render()
}

func list(w *Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	w.Header(title)
	for _, item := range items {
		w.Bullet(item)
	}
}

func riskColor(impact types.Level) string {
	switch impact {
	case types.LevelHigh:
		return Red
	case types.LevelMedium:
		return Yellow
	default:
		return Green
	}
}
