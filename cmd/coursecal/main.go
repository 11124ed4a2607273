package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"coursecal/internal/export"
	appLog "coursecal/internal/log"
	"coursecal/internal/schedule"
	"coursecal/internal/term"
)

var logLevel string

func main() {
	rootCmd := &cobra.Command{
		Use:   "coursecal",
		Short: "Academic term schedule synthesis",
		Long:  "Turns a declarative term description into a day-by-day calendar and renders it as an HTML schedule, an ICS feed, and a JSON event feed.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			appLog.SetLevel(appLog.ParseLevel(logLevel))
		},
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, error)")

	rootCmd.AddCommand(buildCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func buildCmd() *cobra.Command {
	var (
		calPath   string
		linksPath string
		outDir    string
		course    string
		sections  []string
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Synthesize the term calendar and write all export artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			decl, err := term.Load(calPath)
			if err != nil {
				return fmt.Errorf("failed to load term declaration: %w", err)
			}
			attachments, err := term.LoadAttachments(linksPath)
			if err != nil {
				return fmt.Errorf("failed to load attachments: %w", err)
			}

			cal, err := schedule.Build(decl, attachments)
			if err != nil {
				return fmt.Errorf("synthesis failed: %w", err)
			}

			if course == "" {
				course = decl.Meta.Name
			}
			if course == "" {
				course = "course"
			}

			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			if err := writeArtifact(outDir, "schedule.html", []byte(export.HTML(cal))); err != nil {
				return err
			}

			ics := export.ICS(cal, export.ICSOptions{
				Course:   course,
				Home:     decl.Meta.Home,
				Timezone: decl.Meta.Timezone,
				Sections: sections,
			})
			if err := writeArtifact(outDir, "cal.ics", []byte(ics)); err != nil {
				return err
			}

			feed, err := export.EncodeFeed(export.EventFeed(cal, nil))
			if err != nil {
				return err
			}
			if err := writeArtifact(outDir, "cal.json", feed); err != nil {
				return err
			}

			ohFeed, err := export.EncodeFeed(export.EventFeed(cal, export.OfficeHoursOnly))
			if err != nil {
				return err
			}
			if err := writeArtifact(outDir, "cal-oh.json", ohFeed); err != nil {
				return err
			}

			assignments, err := export.EncodeAssignments(export.EffectiveAssignments(cal, decl))
			if err != nil {
				return err
			}
			if err := writeArtifact(outDir, "assignments.json", assignments); err != nil {
				return err
			}

			appLog.Info("build completed", "out_dir", outDir, "weeks", len(cal.Weeks))
			return nil
		},
	}

	cmd.Flags().StringVar(&calPath, "cal", "cal.yaml", "Term declaration document")
	cmd.Flags().StringVar(&linksPath, "links", "links.yaml", "Per-date attachments document (optional)")
	cmd.Flags().StringVarP(&outDir, "out", "o", "markdown", "Output directory for export artifacts")
	cmd.Flags().StringVar(&course, "course", "", "Course name for the ICS calendar (defaults to meta.name)")
	cmd.Flags().StringSliceVar(&sections, "sections", nil, "ICS section allow-list (default: all sections)")

	return cmd
}

func writeArtifact(dir, name string, data []byte) error {
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	appLog.Info("artifact written", "path", path, "bytes", len(data))
	return nil
}
