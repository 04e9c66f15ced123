package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// --- research ---

var researchCmd = &cobra.Command{
	Use:   "research",
	Short: "Research a social media post and store the report",
	Long: `Research a social media post and store the report.

Examples:
  postscope research --url https://www.linkedin.com/posts/acme_launch --note "how was this received?"
  postscope research --url https://x.com/acme/status/123 --note "is this claim true?"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		note, _ := cmd.Flags().GetString("note")

		if url == "" {
			return fmt.Errorf("--url is required")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Researching %s ...", url)
		resp, err := client.post(cmd.Context(), "/trigger", map[string]any{
			"url":  url,
			"note": note,
		})
		if err != nil {
			return err
		}

		var rep struct {
			Timestamp string `json:"timestamp"`
			Source    string `json:"source"`
			Query     string `json:"query"`
			Answer    string `json:"compound_answer"`
		}
		if err := decodeJSON(resp, &rep); err != nil {
			return err
		}

		printSuccess("Report stored (%s, %s)", rep.Source, rep.Timestamp)
		fmt.Printf("\n%s %s\n\n", colorize(colorBold, "Query:"), rep.Query)
		if rep.Answer == "" {
			printWarning("no answer was produced")
		} else {
			fmt.Println(rep.Answer)
		}
		return nil
	},
}

func init() {
	researchCmd.Flags().String("url", "", "URL of the post to research")
	researchCmd.Flags().String("note", "", "what to find out about the post")
}

// --- reports ---

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "List stored research reports, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/reports")
		if err != nil {
			return err
		}

		var reports []struct {
			Timestamp string `json:"timestamp"`
			PostURL   string `json:"post_url"`
			Source    string `json:"source"`
			Query     string `json:"query"`
		}
		if err := decodeJSON(resp, &reports); err != nil {
			return err
		}

		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return nil
		}
		if limit > 0 && len(reports) > limit {
			reports = reports[:limit]
		}

		for _, r := range reports {
			query := r.Query
			if len(query) > 80 {
				query = query[:80] + "..."
			}
			fmt.Printf("%s  %s  %s\n  %s\n",
				colorize(colorCyan, strings.ToUpper(r.Source)),
				r.Timestamp,
				r.PostURL,
				query,
			)
		}
		return nil
	},
}

func init() {
	reportsCmd.Flags().Int("limit", 20, "maximum number of reports to list")
}
