package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/healthguard/healthguard/internal/domain/patient"
	"github.com/healthguard/healthguard/pkg/pagination"
)

func (a *app) patientCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Manage patient profiles",
	}
	cmd.AddCommand(a.patientAddCmd())
	cmd.AddCommand(a.patientShowCmd())
	cmd.AddCommand(a.patientListCmd())
	cmd.AddCommand(a.patientUpdateCmd())
	cmd.AddCommand(a.patientDeleteCmd())
	return cmd
}

// withPatients opens the store and runs fn against the patient service.
func (a *app) withPatients(cmd *cobra.Command, fn func(svc *patient.Service) error) error {
	b, err := a.open(cmd.Context())
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(patient.NewService(b.patients))
}

func (a *app) printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, string(out))
	return nil
}

// profileFlags binds the optional profile fields shared by add and update.
type profileFlags struct {
	name    string
	age     int
	history string
}

func (f *profileFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "name", "", "full name")
	cmd.Flags().IntVar(&f.age, "age", 0, "age in years")
	cmd.Flags().StringVar(&f.history, "history", "", "medical history notes")
}

// apply copies the flags the user set onto p.
func (f *profileFlags) apply(cmd *cobra.Command, p *patient.Patient) {
	if cmd.Flags().Changed("name") {
		p.Name = f.name
	}
	if cmd.Flags().Changed("age") {
		age := f.age
		p.Age = &age
	}
	if cmd.Flags().Changed("history") {
		h := f.history
		p.History = &h
	}
}

func (a *app) patientAddCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "add <patient-id>",
		Short: "Register a patient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPatients(cmd, func(svc *patient.Service) error {
				p := &patient.Patient{PatientID: args[0]}
				flags.apply(cmd, p)
				if err := svc.CreatePatient(cmd.Context(), p); err != nil {
					return err
				}
				a.logger.Info().Str("patient_id", p.PatientID).Msg("patient created")
				return a.printJSON(p)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) patientShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <patient-id>",
		Short: "Show a patient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPatients(cmd, func(svc *patient.Service) error {
				p, err := svc.GetPatient(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				return a.printJSON(p)
			})
		},
	}
}

func (a *app) patientListCmd() *cobra.Command {
	var limit, offset int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patient profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPatients(cmd, func(svc *patient.Service) error {
				p := pagination.New(limit, offset)
				items, total, err := svc.ListPatients(cmd.Context(), p.Limit, p.Offset)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%-12s %-30s %5s\n", "PATIENT", "NAME", "AGE")
				for _, pt := range items {
					age := "-"
					if pt.Age != nil {
						age = fmt.Sprint(*pt.Age)
					}
					fmt.Fprintf(a.stdout, "%-12s %-30s %5s\n", pt.PatientID, pt.Name, age)
				}
				fmt.Fprintln(a.stdout, p.Summary(len(items), total))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", pagination.DefaultLimit, "page size")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func (a *app) patientUpdateCmd() *cobra.Command {
	var flags profileFlags
	cmd := &cobra.Command{
		Use:   "update <patient-id>",
		Short: "Update fields of a patient profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPatients(cmd, func(svc *patient.Service) error {
				p, err := svc.GetPatient(cmd.Context(), args[0])
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				flags.apply(cmd, p)
				if err := svc.UpdatePatient(cmd.Context(), p); err != nil {
					return err
				}
				return a.printJSON(p)
			})
		},
	}
	flags.bind(cmd)
	return cmd
}

func (a *app) patientDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <patient-id>",
		Short: "Delete a patient profile (vital records are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withPatients(cmd, func(svc *patient.Service) error {
				if err := svc.DeletePatient(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				fmt.Fprintf(a.stdout, "Deleted patient %s\n", args[0])
				return nil
			})
		},
	}
}
