package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/outreach-cli/internal/campaign"
	"github.com/sells-group/outreach-cli/pkg/instantly"
)

var campaignsCmd = &cobra.Command{
	Use:   "campaigns",
	Short: "Manage Instantly campaigns",
}

// -- campaigns list --

var campaignsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List campaigns",
	RunE: func(cmd *cobra.Command, _ []string) error {
		env, err := initEnv(cmd.Context(), "api")
		if err != nil {
			return err
		}
		defer env.Close()

		list, err := env.Campaigns.List(cmd.Context())
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(list)
		}
		if len(list) == 0 {
			fmt.Fprintln(os.Stderr, "No campaigns found.")
			return nil
		}
		formatCampaignList(os.Stdout, list)
		return nil
	},
}

// -- campaigns show --

var campaignsShowCmd = &cobra.Command{
	Use:   "show <campaign-id>",
	Short: "Show a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "api")
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Campaigns.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(c)
	},
}

// -- campaigns create --

var campaignsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a campaign from a YAML or JSON definition",
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, _ := cmd.Flags().GetString("file")
		req, err := readCampaignRequest(path)
		if err != nil {
			return err
		}
		if name, _ := cmd.Flags().GetString("name"); name != "" {
			req.Name = name
		}

		env, err := initEnv(cmd.Context(), "api")
		if err != nil {
			return err
		}
		defer env.Close()

		c, err := env.Campaigns.Create(cmd.Context(), req)
		if err != nil {
			var verrs campaign.ValidationErrors
			if errors.As(err, &verrs) {
				for _, fe := range verrs {
					fmt.Fprintf(os.Stderr, "  %s: %s\n", fe.Field, fe.Message)
				}
			}
			return err
		}
		return printJSON(c)
	},
}

// -- campaigns pause / activate / delete --

var campaignsPauseCmd = &cobra.Command{
	Use:   "pause <campaign-id>",
	Short: "Pause a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return campaignAction(cmd, func(svc *campaign.Service) (*instantly.Campaign, error) {
			return svc.Pause(cmd.Context(), args[0])
		})
	},
}

var campaignsActivateCmd = &cobra.Command{
	Use:   "activate <campaign-id>",
	Short: "Activate a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return campaignAction(cmd, func(svc *campaign.Service) (*instantly.Campaign, error) {
			return svc.Activate(cmd.Context(), args[0])
		})
	},
}

var campaignsDeleteCmd = &cobra.Command{
	Use:   "delete <campaign-id>",
	Short: "Delete a campaign",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initEnv(cmd.Context(), "api")
		if err != nil {
			return err
		}
		defer env.Close()

		if err := env.Campaigns.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Deleted campaign %s.\n", args[0])
		return nil
	},
}

func campaignAction(cmd *cobra.Command, fn func(svc *campaign.Service) (*instantly.Campaign, error)) error {
	env, err := initEnv(cmd.Context(), "api")
	if err != nil {
		return err
	}
	defer env.Close()

	c, err := fn(env.Campaigns)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Campaign %s is now %s.\n", c.ID, c.Status)
	return nil
}

// readCampaignRequest parses a campaign definition. Files ending in .json
// are read as JSON, everything else as YAML.
func readCampaignRequest(path string) (instantly.CampaignRequest, error) {
	var req instantly.CampaignRequest
	if path == "" {
		return req, eris.New("--file is required")
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return req, eris.Wrap(err, "read campaign file")
	}
	if strings.EqualFold(filepath.Ext(path), ".json") {
		if err := json.Unmarshal(raw, &req); err != nil {
			return req, eris.Wrap(err, "parse campaign json")
		}
		return req, nil
	}

	// yaml.v3 honours yaml tags only, so round-trip through JSON to reuse
	// the API field names.
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return req, eris.Wrap(err, "parse campaign yaml")
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return req, eris.Wrap(err, "convert campaign yaml")
	}
	if err := json.Unmarshal(js, &req); err != nil {
		return req, eris.Wrap(err, "decode campaign yaml")
	}
	return req, nil
}

func formatCampaignList(out io.Writer, list []instantly.Campaign) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tSTATUS\tDAILY LIMIT")
	_, _ = fmt.Fprintln(w, "--\t----\t------\t-----------")
	for _, c := range list {
		limit := "-"
		if c.DailyLimit != nil {
			limit = fmt.Sprintf("%d", *c.DailyLimit)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, limit)
	}
	_ = w.Flush()
}

func init() {
	campaignsListCmd.Flags().Bool("json", false, "print JSON instead of a table")
	campaignsCreateCmd.Flags().StringP("file", "f", "", "campaign definition (.yaml, .yml or .json)")
	campaignsCreateCmd.Flags().String("name", "", "override the campaign name from --file")

	campaignsCmd.AddCommand(campaignsListCmd)
	campaignsCmd.AddCommand(campaignsShowCmd)
	campaignsCmd.AddCommand(campaignsCreateCmd)
	campaignsCmd.AddCommand(campaignsPauseCmd)
	campaignsCmd.AddCommand(campaignsActivateCmd)
	campaignsCmd.AddCommand(campaignsDeleteCmd)
	rootCmd.AddCommand(campaignsCmd)
}
