package main

import (
	"errors"
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	cfg "github.com/maastricht-university/speakerai/config"
	"github.com/maastricht-university/speakerai/meeting"
	"github.com/maastricht-university/speakerai/server"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var team []string
	cmd := &cobra.Command{
		Use:   "process <audio>",
		Short: "Transcribe a meeting recording and build speaker profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()

			m, err := p.Run(cmd.Context(), args[0], team)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderProfiles(m.Profiles))
			fmt.Fprintf(out, "Transcript: %s\nReport:     %s\n", m.TranscriptPath, m.ReportPath)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&team, "team", nil, "Restrict matching to these team members (comma separated)")
	return cmd
}

func renderProfiles(profiles []*meeting.SpeakerProfile) string {
	rows := make([][]string, 0, len(profiles))
	for _, p := range profiles {
		matched := "-"
		if p.Matched() {
			matched = fmt.Sprintf("%s (#%d)", *p.MatchedSpeakerName, *p.MatchedSpeakerID)
		}
		rows = append(rows, []string{
			p.SpeakerLabel,
			matched,
			strings.Join(p.InferredNames, ", "),
			strconv.Itoa(p.Stats.TurnCount),
			strconv.Itoa(p.Stats.WordCount),
			fmt.Sprintf("%.1fs", p.Stats.TotalDuration),
			fmt.Sprintf("%.2f", p.Psychometrics.Valence),
		})
	}
	return renderTable(
		[]string{"Label", "Matched", "Inferred", "Turns", "Words", "Speaking", "Valence"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func newSpeakersCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "speakers",
		Short: "Manage known speakers",
	}
	cmd.AddCommand(newSpeakersListCommand(ctx))
	cmd.AddCommand(newSpeakersShowCommand(ctx))
	cmd.AddCommand(newSpeakersRegisterCommand(ctx))
	cmd.AddCommand(newSpeakersUpdateCommand(ctx))
	return cmd
}

func newSpeakersListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored speakers",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()

			records, err := p.Speakers(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No speakers registered")
				return nil
			}
			rows := make([][]string, 0, len(records))
			for _, r := range records {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10),
					r.Name,
					r.Description,
					fmt.Sprintf("%.1f", r.FeatureVector["mean_pitch"]),
					r.UpdatedAt.Local().Format("2006-01-02 15:04"),
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Description", "Pitch", "Updated"},
				rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}

func newSpeakersShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show the stored profile of a speaker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := db.FindByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if rec == nil {
				return fmt.Errorf("no speaker named %q", args[0])
			}

			var rows [][]string
			for _, k := range meeting.FeatureKeys {
				rows = append(rows, []string{"feature", k, fmt.Sprintf("%.3f", rec.FeatureVector[k])})
			}
			for _, k := range meeting.PsychometricKeys {
				rows = append(rows, []string{"psychometric", k, fmt.Sprintf("%.3f", rec.Psychometrics[k])})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (#%d)\n", rec.Name, rec.ID)
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"Kind", "Key", "Value"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight},
			))
			return nil
		},
	}
}

func newSpeakersRegisterCommand(ctx *commandContext) *cobra.Command {
	var report, label, name, description string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Store a speaker from a meeting report",
		RunE: func(cmd *cobra.Command, args []string) error {
			if report == "" || label == "" || name == "" {
				return errors.New("--report, --label and --name are required")
			}
			p, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()

			id, err := p.RegisterFromReport(cmd.Context(), report, label, name, description)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered %s as speaker #%d\n", name, id)
			return nil
		},
	}
	cmd.Flags().StringVar(&report, "report", "", "Speaker report JSON written by process")
	cmd.Flags().StringVar(&label, "label", "", "Speaker label in the report, e.g. \"Speaker A\"")
	cmd.Flags().StringVar(&name, "name", "", "Name to store the speaker under")
	cmd.Flags().StringVar(&description, "description", "", "Optional description")
	return cmd
}

func newSpeakersUpdateCommand(ctx *commandContext) *cobra.Command {
	var report, label string
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Refresh a stored speaker from a meeting report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid speaker id %q", args[0])
			}
			if report == "" || label == "" {
				return errors.New("--report and --label are required")
			}
			p, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := p.ConfirmFromReport(cmd.Context(), report, label, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated speaker #%d from %s\n", id, label)
			return nil
		},
	}
	cmd.Flags().StringVar(&report, "report", "", "Speaker report JSON written by process")
	cmd.Flags().StringVar(&label, "label", "", "Speaker label in the report")
	return cmd
}

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			p, db, err := ctx.pipeline()
			if err != nil {
				return err
			}
			defer db.Close()
			conf := ctx.cfg

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := server.New(p, server.Config{
				Addr:      conf.Addr(),
				UploadDir: conf.Paths.Uploads,
				OutputDir: conf.Paths.Outputs,
			})
			return srv.ListenAndServe(runCtx)
		},
	}
}

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "config.yaml"
			if len(args) == 1 {
				target = args[0]
			}
			if err := cfg.WriteDefault(target); err != nil {
				return err
			}
			abs, _ := filepath.Abs(target)
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", abs)
			return nil
		},
	})
	return configCmd
}
