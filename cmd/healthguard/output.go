package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/healthguard/healthguard/internal/domain/vitals"
)

var (
	criticalColor = color.New(color.FgRed, color.Bold)
	warningColor  = color.New(color.FgYellow)
	okColor       = color.New(color.FgGreen)
)

func severityColor(s vitals.Severity) *color.Color {
	if s == vitals.SeverityCritical {
		return criticalColor
	}
	return warningColor
}

// printIngestAlerts lists alerts raised after an ingest.
func printIngestAlerts(w io.Writer, alerts []vitals.Alert) {
	if len(alerts) == 0 {
		okColor.Fprintln(w, "All vitals normal.")
		return
	}
	warningColor.Fprintf(w, "%d anomalies detected!\n", len(alerts))
	for _, a := range alerts {
		severityColor(a.Severity).Fprintf(w, "  [%s] %s\n", a.PatientID, a.Message)
	}
}

// printMonitorAlerts lists alerts with their severity tier.
func printMonitorAlerts(w io.Writer, alerts []vitals.Alert) {
	if len(alerts) == 0 {
		okColor.Fprintln(w, "All vitals within normal range.")
		return
	}
	for _, a := range alerts {
		severityColor(a.Severity).Fprintf(w, "[%s] %s: %s\n", a.PatientID, strings.ToUpper(string(a.Severity)), a.Message)
	}
}

func printAlertTable(w io.Writer, alerts []vitals.Alert) {
	fmt.Fprintf(w, "%-20s %-10s %-9s %-13s %8s  %s\n", "CREATED", "PATIENT", "SEVERITY", "VITAL", "VALUE", "MESSAGE")
	for _, a := range alerts {
		line := fmt.Sprintf("%-20s %-10s %-9s %-13s %8.2f  %s",
			a.CreatedAt.Format("2006-01-02 15:04:05"), a.PatientID, a.Severity, a.Vital, a.Value, a.Message)
		severityColor(a.Severity).Fprintln(w, line)
	}
}
