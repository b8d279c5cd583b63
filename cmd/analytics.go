package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/outreach-cli/internal/campaign"
	"github.com/sells-group/outreach-cli/internal/usage"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

// -- analytics --

var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Show campaign performance",
	Long:  "Without --campaign, shows every campaign plus totals. With --daily, shows a per-day breakdown for one campaign.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		id, _ := cmd.Flags().GetString("campaign")
		daily, _ := cmd.Flags().GetBool("daily")
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initEnv(ctx, "api")
		if err != nil {
			return err
		}
		defer env.Close()

		if daily {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			days, err := env.Campaigns.DailyAnalytics(ctx, id, start, end)
			if err != nil {
				return err
			}
			return printJSON(days)
		}

		if id != "" {
			a, err := env.Campaigns.Analytics(ctx, id)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(a)
			}
			formatAnalytics(os.Stdout, []campaign.Analytics{*a}, nil)
			return nil
		}

		all, err := env.Campaigns.Overview(ctx)
		if err != nil {
			return err
		}
		totals := campaign.Totals(all)
		if asJSON {
			return printJSON(map[string]any{"campaigns": all, "totals": totals})
		}
		formatAnalytics(os.Stdout, all, &totals)
		return nil
	},
}

func formatAnalytics(out io.Writer, rows []campaign.Analytics, totals *campaign.Analytics) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "CAMPAIGN\tLEADS\tSENT\tOPEN%\tCLICK%\tREPLY%\tBOUNCE%")
	_, _ = fmt.Fprintln(w, "--------\t-----\t----\t-----\t------\t------\t-------")
	line := func(name string, a campaign.Analytics) {
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\t%d\t%d\n",
			name, a.TotalLeads, a.Sent, a.OpenRate, a.ClickRate, a.ReplyRate, a.BounceRate)
	}
	for _, a := range rows {
		name := a.CampaignName
		if name == "" {
			name = a.CampaignID
		}
		line(name, a)
	}
	if totals != nil {
		line("TOTAL", *totals)
	}
	_ = w.Flush()
}

// -- health --

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show warmup health of every sending mailbox",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		asJSON, _ := cmd.Flags().GetBool("json")

		env, err := initEnv(ctx, "api")
		if err != nil {
			return err
		}
		defer env.Close()

		daily, _ := cmd.Flags().GetStringSlice("daily")
		if len(daily) > 0 {
			start, _ := cmd.Flags().GetString("start")
			end, _ := cmd.Flags().GetString("end")
			days, err := env.Health.Daily(ctx, daily, start, end)
			if err != nil {
				return err
			}
			return printJSON(days)
		}

		summary, err := env.Health.Summary(ctx)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(summary)
		}

		fmt.Fprintf(os.Stdout, "%d accounts: %d healthy, %d warning, %d critical (avg warmup %d%%)\n\n",
			summary.TotalAccounts, summary.HealthyAccounts, summary.WarningAccounts,
			summary.CriticalAccounts, summary.AverageWarmupProgress)
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "EMAIL\tHEALTH\tWARMUP\tSPAM%\tSTATUS")
		for _, a := range summary.Accounts {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%.0f%%\t%d\t%s\n",
				a.Email, a.HealthStatus, a.WarmupProgress, a.SpamScore, a.WarmupStatus)
		}
		return w.Flush()
	},
}

// -- leads --

var leadsCmd = &cobra.Command{
	Use:   "leads",
	Short: "List leads already in Instantly",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		campaignID, _ := cmd.Flags().GetString("campaign")
		limit, _ := cmd.Flags().GetInt("limit")
		after, _ := cmd.Flags().GetString("starting-after")
		if limit < 1 || limit > 100 {
			return eris.New("--limit must be between 1 and 100")
		}

		env, err := initEnv(ctx, "api")
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Instantly.ListLeads(ctx, instantly.ListLeadsRequest{
			CampaignID:    campaignID,
			Limit:         limit,
			StartingAfter: after,
		})
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "EMAIL\tNAME\tCOMPANY\tCAMPAIGN")
		for _, l := range list.Items {
			name := strings.TrimSpace(l.FirstName + " " + l.LastName)
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", l.Email, name, l.CompanyName, l.CampaignID)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if list.HasMore() {
			fmt.Fprintf(os.Stderr, "\nMore leads available: --starting-after %s\n", list.NextStartingAfter)
		}
		return nil
	},
}

// -- usage --

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show recorded Apollo and Instantly API usage",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()
		svcName, _ := cmd.Flags().GetString("service")
		periodName, _ := cmd.Flags().GetString("period")

		period, err := usage.ParsePeriod(periodName)
		if err != nil {
			return err
		}

		env, err := initEnv(ctx, "api")
		if err != nil {
			return err
		}
		defer env.Close()

		if svcName != "" {
			service, err := usage.ParseService(svcName)
			if err != nil {
				return err
			}
			stats, err := usage.Stats(ctx, env.Store, service, period, timeNow())
			if err != nil {
				return err
			}
			return printJSON(stats)
		}

		both, err := usage.Combined(ctx, env.Store, period, timeNow())
		if err != nil {
			return err
		}
		return printJSON(both)
	},
}

func init() {
	analyticsCmd.Flags().String("campaign", "", "campaign id (default: all campaigns)")
	analyticsCmd.Flags().Bool("daily", false, "per-day breakdown")
	analyticsCmd.Flags().String("start", "", "start date YYYY-MM-DD for --daily")
	analyticsCmd.Flags().String("end", "", "end date YYYY-MM-DD for --daily")
	analyticsCmd.Flags().Bool("json", false, "print JSON instead of a table")

	healthCmd.Flags().StringSlice("daily", nil, "per-day traffic for these mailboxes")
	healthCmd.Flags().String("start", "", "start date YYYY-MM-DD for --daily")
	healthCmd.Flags().String("end", "", "end date YYYY-MM-DD for --daily")
	healthCmd.Flags().Bool("json", false, "print JSON instead of a table")

	leadsCmd.Flags().String("campaign", "", "only leads in this campaign")
	leadsCmd.Flags().Int("limit", 50, "page size (1-100)")
	leadsCmd.Flags().String("starting-after", "", "cursor from a previous page")

	usageCmd.Flags().String("service", "", "apollo or instantly (default: both)")
	usageCmd.Flags().String("period", "day", "day, week or month")

	rootCmd.AddCommand(analyticsCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(leadsCmd)
	rootCmd.AddCommand(usageCmd)
}
