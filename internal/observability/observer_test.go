package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/theirongolddev/finbot/internal/model"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("reading counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "warn", "text")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("hidden")
	logger.Warn("shown")
	out := buf.String()
	if strings.Contains(out, "hidden") || !strings.Contains(out, "shown") {
		t.Fatalf("output = %q, want only the warning", out)
	}

	if _, err := NewLogger(&buf, "verbose", "text"); err == nil {
		t.Fatal("NewLogger(verbose) succeeded, want error")
	}
	if _, err := NewLogger(&buf, "info", "xml"); err == nil {
		t.Fatal("NewLogger(xml) succeeded, want error")
	}
}

func TestRecorderJSON(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "info", "json")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	r := NewRecorder(logger)

	cat := model.CategoryFood
	before := counterValue(t, AlertsTriggered.WithLabelValues(model.AlertTypeLimit))
	r.AlertTriggered(7, model.Trigger{AlertID: 3, Type: model.AlertTypeLimit, Category: &cat, Current: 120, Threshold: 100})
	if got := counterValue(t, AlertsTriggered.WithLabelValues(model.AlertTypeLimit)); got != before+1 {
		t.Fatalf("alerts_triggered_total = %v, want %v", got, before+1)
	}

	var rec map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if rec["msg"] != "alert triggered" || rec["category"] != "FOOD" {
		t.Fatalf("log record = %v", rec)
	}

	failsBefore := counterValue(t, Notifications.WithLabelValues("error"))
	r.DeliveryFailed(7, errors.New("chat not found"))
	if got := counterValue(t, Notifications.WithLabelValues("error")); got != failsBefore+1 {
		t.Fatalf("notifications_total{error} = %v, want %v", got, failsBefore+1)
	}
}
