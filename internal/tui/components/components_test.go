package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/finbot/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, total := range []int{10, 99, 100, 181} {
		for n := 1; n <= 5; n++ {
			sum := 0
			for _, w := range LayoutRow(total, n) {
				sum += w
			}
			if sum != total {
				t.Fatalf("LayoutRow(%d, %d) sums to %d", total, n, sum)
			}
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow(10, 0) != nil")
	}
}

func TestCardRowMatchesTallestCard(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4", 22)

	joined := CardRow([]string{tall, short})
	if got, want := lipgloss.Height(joined), lipgloss.Height(tall); got != want {
		t.Fatalf("joined height = %d, want %d", got, want)
	}
	if got := lipgloss.Width(joined); got != 44 {
		t.Fatalf("joined width = %d, want 44", got)
	}
}

func TestMetricRowWidth(t *testing.T) {
	row := MetricRow([]Metric{
		{Label: "Income", Value: "R$5,000.00", Tone: ToneGood},
		{Label: "Expenses", Value: "R$3,200.00", Tone: ToneBad},
		{Label: "Net", Value: "R$1,800.00"},
	}, 90)
	if got := lipgloss.Width(row); got != 90 {
		t.Fatalf("row width = %d, want 90", got)
	}
	if !strings.Contains(row, "R$3,200.00") {
		t.Fatalf("row missing value:\n%s", row)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('g'); Tabs[got].Name != "Goals" {
		t.Fatalf("TabIdxByKey('g') = %d, want Goals", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestPercentBarShowsOverLimit(t *testing.T) {
	bar := PercentBar("Food", 120, UsageColor(120), 8, 10)
	if !strings.Contains(bar, "120.0%") {
		t.Fatalf("bar = %q, want raw percentage", bar)
	}
	if UsageColor(120) != theme.Active.Expense {
		t.Fatal("over-limit usage not colored as expense")
	}
}

func TestHorizontalBarsAlignsText(t *testing.T) {
	out := HorizontalBars([]Bar{
		{Label: "Food", Value: 300, Text: "R$300.00"},
		{Label: "Transport", Value: 50, Text: "R$50.00"},
	}, theme.Active.Expense, 40)
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2", len(lines))
	}
	if lipgloss.Width(lines[0]) != lipgloss.Width(lines[1]) {
		t.Fatalf("line widths differ: %d vs %d", lipgloss.Width(lines[0]), lipgloss.Width(lines[1]))
	}
}

func TestSparklineLength(t *testing.T) {
	out := Sparkline([]float64{0, 1, 5, 2}, theme.Active.Expense)
	if got := lipgloss.Width(out); got != 4 {
		t.Fatalf("sparkline width = %d, want 4", got)
	}
}
