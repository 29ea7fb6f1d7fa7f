package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/domain/vitals"
	"github.com/healthguard/healthguard/pkg/pagination"
)

func (a *app) ingestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ingest <file>",
		Short: "Ingest vitals from a CSV or JSON file, then check for anomalies",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			d, err := a.detector(b)
			if err != nil {
				return err
			}

			count, err := vitals.NewIngestor(b.records, a.logger).IngestFile(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Ingested %d records from %s\n", count, args[0])

			alerts, err := d.Detect(ctx, vitals.Filter{})
			if err != nil {
				return err
			}
			printIngestAlerts(a.stdout, alerts)
			return nil
		},
	}
}

func (a *app) reportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <patient>",
		Short: "Print a patient's summary statistics as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			table, err := a.rangeTable()
			if err != nil {
				return err
			}
			summary, err := vitals.NewAggregator(table, b.records).Summarize(ctx, args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(summary, "", "  ")
			if err != nil {
				return fmt.Errorf("encode summary: %w", err)
			}
			fmt.Fprintln(a.stdout, string(out))
			return nil
		},
	}
}

func (a *app) monitorCmd() *cobra.Command {
	var patients []string
	var since, until float64
	var eachPatient bool

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Check stored vitals for anomalies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			d, err := a.detector(b)
			if err != nil {
				return err
			}

			var f vitals.Filter
			if cmd.Flags().Changed("since") {
				f.Since = &since
			}
			if cmd.Flags().Changed("until") {
				f.Until = &until
			}

			var alerts []vitals.Alert
			switch {
			case eachPatient:
				alerts, err = d.DetectEachPatient(ctx, f)
			case len(patients) == 0:
				alerts, err = d.Detect(ctx, f)
			case len(patients) == 1:
				f.PatientID = patients[0]
				alerts, err = d.Detect(ctx, f)
			default:
				alerts, err = d.DetectCohort(ctx, patients, f)
			}
			if err != nil {
				return err
			}
			printMonitorAlerts(a.stdout, alerts)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&patients, "patient", nil, "restrict to a patient (repeat for a cohort)")
	cmd.Flags().Float64Var(&since, "since", 0, "only records at or after this Unix timestamp")
	cmd.Flags().Float64Var(&until, "until", 0, "only records at or before this Unix timestamp")
	cmd.Flags().BoolVar(&eachPatient, "each-patient", false, "check every stored patient as a cohort")
	cmd.MarkFlagsMutuallyExclusive("patient", "each-patient")
	return cmd
}

func (a *app) alertsCmd() *cobra.Command {
	var patientID, severity string
	var limit, offset int
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List persisted alerts, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			sev := vitals.Severity(severity)
			if sev != "" && sev != vitals.SeverityWarning && sev != vitals.SeverityCritical {
				return fmt.Errorf("--severity must be %q or %q", vitals.SeverityWarning, vitals.SeverityCritical)
			}

			ctx := cmd.Context()
			b, err := a.open(ctx)
			if err != nil {
				return err
			}
			defer b.Close()

			p := pagination.New(limit, offset)
			items, total, err := b.alerts.List(ctx, vitals.AlertFilter{PatientID: patientID, Severity: sev}, p.Limit, p.Offset)
			if err != nil {
				return fmt.Errorf("list alerts: %w", err)
			}

			if asJSON {
				if items == nil {
					items = []vitals.Alert{}
				}
				out, err := json.MarshalIndent(pagination.NewResponse(items, total, p), "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(a.stdout, string(out))
				return nil
			}
			printAlertTable(a.stdout, items)
			fmt.Fprintln(a.stdout, p.Summary(len(items), total))
			return nil
		},
	}
	cmd.Flags().StringVar(&patientID, "patient", "", "filter by patient")
	cmd.Flags().StringVar(&severity, "severity", "", "filter by severity (warning|critical)")
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func (a *app) rangesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ranges",
		Short: "Print the active normal-range table as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := a.rangeTable()
			if err != nil {
				return err
			}
			out, err := vitals.MarshalRangeTable(table)
			if err != nil {
				return err
			}
			fmt.Fprint(a.stdout, string(out))
			return nil
		},
	}
}
