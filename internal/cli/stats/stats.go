package stats

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"devdash/internal/cli/remote"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

var StatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard statistics",
	Long:  "Print the headline numbers and the best performing videos",
	RunE: func(cmd *cobra.Command, args []string) error {
		top, _ := cmd.Flags().GetInt("top")

		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		stats, err := client.Dashboard(ctx)
		if err != nil {
			return remote.Explain(err)
		}
		overview, err := client.Analytics(ctx, top)
		if err != nil {
			return remote.Explain(err)
		}
		printStats(cmd.OutOrStdout(), stats, overview)
		return nil
	},
}

var ActivityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show recent parent activity",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		items, err := client.RecentActivity(ctx, limit)
		if err != nil {
			return remote.Explain(err)
		}
		printActivity(cmd.OutOrStdout(), items)
		return nil
	},
}

func printStats(w io.Writer, s *models.DashboardStats, o *models.AnalyticsOverview) {
	fmt.Fprintln(w, "Dashboard:")
	fmt.Fprintf(w, "  Parents:          %d\n", s.TotalUsers)
	fmt.Fprintf(w, "  Active today:     %d\n", s.ActiveUsersToday)
	fmt.Fprintf(w, "  Videos:           %d\n", s.TotalVideos)
	fmt.Fprintf(w, "  Total views:      %d\n", s.TotalViews)
	fmt.Fprintf(w, "  Engagements:      %d\n", s.TotalEngagements)
	fmt.Fprintf(w, "  Approval rate:    %.1f%%\n", s.AverageVideoRating)

	if o == nil || len(o.TopVideos) == 0 {
		return
	}
	fmt.Fprintf(w, "\nTop videos (average engagement %.1f%%):\n\n", o.AverageEngagementRate)
	for i, v := range o.TopVideos {
		fmt.Fprintf(w, "%d. %s\n", i+1, v.VideoName)
		fmt.Fprintf(w, "   Category: %s\n", v.Category)
		fmt.Fprintf(w, "   Views: %d  Approvals: %d  Concerns: %d  Engagement: %.1f%%\n",
			v.TotalViews, v.Approvals, v.Disapprovals, v.EngagementRate)
		fmt.Fprintf(w, "   ID: %s\n\n", v.VideoID)
	}
}

func printActivity(w io.Writer, items []models.ActivityItem) {
	if len(items) == 0 {
		fmt.Fprintln(w, "No recent activity")
		return
	}
	for _, it := range items {
		fmt.Fprintf(w, "%-14s %-20s %s (%s)\n", it.Type, it.UserName, it.Description, utils.TimeAgo(it.Timestamp))
	}
}

func init() {
	StatsCmd.Flags().Int("top", 5, "Number of top videos to show")
	ActivityCmd.Flags().Int("limit", 8, "Number of items")
}
