package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/export"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pipeline"
)

var pipelineCmd = &cobra.Command{
	Use:   "pipeline",
	Short: "Run and inspect the fetch, filter, dedupe and send stages",
	Long:  "Each stage reads the previous stage's output from the session. Sessions expire after pipeline.ttl_minutes.",
}

// -- pipeline status --

var pipelineStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the state of every stage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), "pipeline")
		if err != nil {
			return err
		}
		defer env.Close()

		formatPipelineState(os.Stdout, env.Pipeline.State())
		return nil
	},
}

// -- pipeline fetch --

var pipelineFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch contacts from Apollo",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		return runStage(cmd, func(o *pipeline.Orchestrator) bool {
			return o.RunFetch(cmd.Context(), filters)
		})
	},
}

// -- pipeline filter --

var pipelineFilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep verified, non-generic, unique emails",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runStage(cmd, func(o *pipeline.Orchestrator) bool {
			return o.RunFilter(cmd.Context())
		})
	},
}

// -- pipeline dedupe --

var pipelineDedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Drop contacts that already exist as Instantly leads",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings := settingsFromFlags(cmd)
		return runStage(cmd, func(o *pipeline.Orchestrator) bool {
			return o.RunDedupe(cmd.Context(), settings)
		})
	},
}

// -- pipeline send --

var pipelineSendCmd = &cobra.Command{
	Use:   "send",
	Short: "Upload deduplicated contacts to an Instantly campaign",
	RunE: func(cmd *cobra.Command, _ []string) error {
		settings := settingsFromFlags(cmd)
		return runStage(cmd, func(o *pipeline.Orchestrator) bool {
			return o.RunSend(cmd.Context(), settings)
		})
	},
}

// -- pipeline run --

var pipelineRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run every stage in order, stopping at the first failure",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filters, err := filtersFromFlags(cmd)
		if err != nil {
			return err
		}
		settings := settingsFromFlags(cmd)
		return runStage(cmd, func(o *pipeline.Orchestrator) bool {
			return o.RunAll(cmd.Context(), filters, settings)
		})
	},
}

// -- pipeline reset --

var pipelineResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every stage and the saved session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), "pipeline")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Pipeline.ResetAll(cmd.Context()); err != nil {
			return eris.Wrap(err, "pipeline reset")
		}
		fmt.Fprintln(os.Stderr, "Pipeline reset.")
		return nil
	},
}

// -- pipeline export --

var pipelineExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a stage's contacts as csv, json, yaml or xlsx",
	RunE: func(cmd *cobra.Command, _ []string) error {
		stageName, _ := cmd.Flags().GetString("stage")
		formatName, _ := cmd.Flags().GetString("format")
		outPath, _ := cmd.Flags().GetString("output")

		stage, ok := model.ParseStage(stageName)
		if !ok || stage == model.StageSend {
			return eris.Errorf("unknown stage %q (fetch, filter, dedupe)", stageName)
		}
		if formatName == "" && outPath != "" {
			formatName = filepath.Ext(outPath)
		}
		format, err := export.ParseFormat(formatName)
		if err != nil {
			return err
		}

		env, err := initEnv(cmd.Context(), "pipeline")
		if err != nil {
			return err
		}
		defer env.Close()

		contacts := env.Pipeline.Contacts(stage)
		var out io.Writer = os.Stdout
		if outPath != "" {
			f, err := os.Create(outPath)
			if err != nil {
				return eris.Wrap(err, "pipeline export: create output")
			}
			defer f.Close() //nolint:errcheck
			out = f
		}
		if err := export.Write(out, format, contacts); err != nil {
			return err
		}
		if outPath != "" {
			fmt.Fprintf(os.Stderr, "Wrote %d contacts to %s\n", len(contacts), outPath)
		}
		return nil
	},
}

// runStage builds the environment, runs fn and prints the resulting state.
// A failed stage is reported as a command error.
func runStage(cmd *cobra.Command, fn func(o *pipeline.Orchestrator) bool) error {
	env, err := initEnv(cmd.Context(), "pipeline")
	if err != nil {
		return err
	}
	defer env.Close()

	ok := fn(env.Pipeline)
	state := env.Pipeline.State()
	formatPipelineState(os.Stdout, state)
	if !ok {
		return eris.New(firstStageError(state))
	}
	return nil
}

func firstStageError(st model.PipelineState) string {
	for _, s := range []model.StageState{st.FetchState, st.FilterState, st.DedupeState, st.SendState} {
		if s.Status == model.StatusError {
			return s.Error
		}
	}
	return "stage failed"
}

func addFilterFlags(cmd *cobra.Command) {
	cmd.Flags().String("filters", "", "YAML file of search filters; flags override its values")
	cmd.Flags().StringSlice("titles", nil, "person titles (e.g. CEO,Founder)")
	cmd.Flags().StringSlice("seniorities", nil, "person seniorities (e.g. owner,c_suite)")
	cmd.Flags().StringSlice("locations", nil, "organization locations")
	cmd.Flags().StringSlice("employees", nil, "employee ranges (e.g. 1,10 or 11,50)")
	cmd.Flags().StringSlice("industries", nil, "industry tag ids")
	cmd.Flags().String("keywords", "", "free-text keywords")
	cmd.Flags().Int("limit", 0, "maximum contacts to fetch (1-1000)")
}

func addSettingsFlags(cmd *cobra.Command) {
	cmd.Flags().String("campaign", "", "Instantly campaign id")
	cmd.Flags().Bool("test-mode", false, "route every lead to --test-email")
	cmd.Flags().String("test-email", "", "inbox that receives leads in test mode")
}

// filtersFromFlags loads --filters, then applies any flag that was set.
func filtersFromFlags(cmd *cobra.Command) (model.SearchFilters, error) {
	var f model.SearchFilters
	if path, _ := cmd.Flags().GetString("filters"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return f, eris.Wrap(err, "read filters file")
		}
		if err := yaml.Unmarshal(raw, &f); err != nil {
			return f, eris.Wrap(err, "parse filters file")
		}
	}

	flags := cmd.Flags()
	if flags.Changed("titles") {
		f.PersonTitles, _ = flags.GetStringSlice("titles")
	}
	if flags.Changed("seniorities") {
		f.PersonSeniorities, _ = flags.GetStringSlice("seniorities")
	}
	if flags.Changed("locations") {
		f.Locations, _ = flags.GetStringSlice("locations")
	}
	if flags.Changed("employees") {
		// Ranges contain commas, so use ';' between ranges.
		raw, _ := flags.GetStringSlice("employees")
		f.EmployeeRanges = splitRanges(raw)
	}
	if flags.Changed("industries") {
		f.Industries, _ = flags.GetStringSlice("industries")
	}
	if flags.Changed("keywords") {
		f.Keywords, _ = flags.GetString("keywords")
	}
	if flags.Changed("limit") {
		f.DailyLimit, _ = flags.GetInt("limit")
	}
	return f, nil
}

// splitRanges rejoins "1,10;11,50" after pflag split it on commas.
func splitRanges(parts []string) []string {
	var out []string
	for _, r := range strings.Split(strings.Join(parts, ","), ";") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func settingsFromFlags(cmd *cobra.Command) model.CampaignSettings {
	campaignID, _ := cmd.Flags().GetString("campaign")
	testMode, _ := cmd.Flags().GetBool("test-mode")
	testEmail, _ := cmd.Flags().GetString("test-email")
	return model.CampaignSettings{CampaignID: campaignID, TestMode: testMode, TestEmail: testEmail}
}

// formatPipelineState writes one row per stage to w.
func formatPipelineState(out io.Writer, st model.PipelineState) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "STAGE\tSTATUS\tDETAIL")
	_, _ = fmt.Fprintln(w, "-----\t------\t------")

	rows := []struct {
		name   model.StageName
		state  model.StageState
		detail string
	}{
		{model.StageFetch, st.FetchState, fetchDetail(st.FetchResult)},
		{model.StageFilter, st.FilterState, filterDetail(st.FilterResult)},
		{model.StageDedupe, st.DedupeState, dedupeDetail(st.DedupeResult)},
		{model.StageSend, st.SendState, sendDetail(st.SendResult)},
	}
	for _, r := range rows {
		detail := r.detail
		if r.state.Status == model.StatusError {
			detail = r.state.Error
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", r.name, r.state.Status, detail)
	}
	_ = w.Flush()
}

func fetchDetail(r *model.FetchResult) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d contacts fetched", r.TotalFetched)
}

func filterDetail(r *model.FilterResult) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d verified (no email %d, unverified %d, generic %d)",
		r.TotalVerified, r.FilteredOut.NoEmail, r.FilteredOut.Unverified, r.FilteredOut.Generic)
}

func dedupeDetail(r *model.DedupeResult) string {
	if r == nil {
		return ""
	}
	s := fmt.Sprintf("%d new, %d duplicates skipped", len(r.Contacts), r.SkippedDuplicates)
	if r.LookupFailures > 0 {
		s += fmt.Sprintf(", %d lookups failed", r.LookupFailures)
	}
	return s
}

func sendDetail(r *model.SendResult) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("%d sent, %d test sent, %d errors", r.Sent, r.TestSent, r.Errors)
}

func init() {
	addFilterFlags(pipelineFetchCmd)
	addFilterFlags(pipelineRunCmd)
	addSettingsFlags(pipelineDedupeCmd)
	addSettingsFlags(pipelineSendCmd)
	addSettingsFlags(pipelineRunCmd)

	pipelineExportCmd.Flags().String("stage", "dedupe", "stage whose contacts to export (fetch, filter, dedupe)")
	pipelineExportCmd.Flags().String("format", "", "csv, json, yaml or xlsx (default from --output extension, else csv)")
	pipelineExportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")

	pipelineCmd.AddCommand(pipelineStatusCmd)
	pipelineCmd.AddCommand(pipelineFetchCmd)
	pipelineCmd.AddCommand(pipelineFilterCmd)
	pipelineCmd.AddCommand(pipelineDedupeCmd)
	pipelineCmd.AddCommand(pipelineSendCmd)
	pipelineCmd.AddCommand(pipelineRunCmd)
	pipelineCmd.AddCommand(pipelineResetCmd)
	pipelineCmd.AddCommand(pipelineExportCmd)
	rootCmd.AddCommand(pipelineCmd)
}
