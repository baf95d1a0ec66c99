package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/theirongolddev/finbot/internal/model"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-45210, "-45,210"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Fatalf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFormatSigned(t *testing.T) {
	exp := model.Transaction{Amount: 50, Type: model.TxExpense}
	inc := model.Transaction{Amount: 1200, Type: model.TxIncome}
	if got := FormatSigned("R$", exp); got != "-R$50.00" {
		t.Fatalf("FormatSigned(expense) = %q, want -R$50.00", got)
	}
	if got := FormatSigned("R$", inc); got != "+R$1,200.00" {
		t.Fatalf("FormatSigned(income) = %q, want +R$1,200.00", got)
	}
}

func TestFormatDelta(t *testing.T) {
	cur := decimal.RequireFromString("150.25")
	prev := decimal.RequireFromString("100")
	if got := FormatDelta("$", cur, prev); got != "+$50.25" {
		t.Fatalf("FormatDelta up = %q, want +$50.25", got)
	}
	if got := FormatDelta("$", prev, cur); got != "-$50.25" {
		t.Fatalf("FormatDelta down = %q, want -$50.25", got)
	}
}

func TestFormatDaysLeft(t *testing.T) {
	tests := map[int]string{-3: "due", 0: "due", 1: "1 day", 30: "30 days"}
	for in, want := range tests {
		if got := FormatDaysLeft(in); got != want {
			t.Fatalf("FormatDaysLeft(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestFormatDateUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*3600)
	ts := time.Date(2024, 6, 1, 1, 0, 0, 0, time.UTC)
	if got := FormatDate(ts, loc); got != "2024-05-31" {
		t.Fatalf("FormatDate = %q, want 2024-05-31", got)
	}
}

func TestRenderProgressBarClamps(t *testing.T) {
	if got := RenderProgressBar(150, 10); !strings.Contains(got, "100.0%") {
		t.Fatalf("RenderProgressBar(150) = %q, want clamped to 100%%", got)
	}
	if got := RenderProgressBar(50, 0); got != "" {
		t.Fatalf("RenderProgressBar width 0 = %q, want empty", got)
	}
}

func TestRenderTableIncludesCells(t *testing.T) {
	out := RenderTable(Table{
		Title:   "Bills",
		Headers: []string{"Name", "Amount"},
		Rows:    [][]string{{"Rent", "R$1,500.00"}, {"---"}, {"Total", "R$1,500.00"}},
	})
	for _, want := range []string{"Bills", "Rent", "R$1,500.00", "Total"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
	if RenderTable(Table{}) != "" {
		t.Fatal("empty table rendered output")
	}
}
