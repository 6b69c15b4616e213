package videos

import (
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"devdash/internal/cli/remote"
	"devdash/pkg/models"
)

var VideosCmd = &cobra.Command{
	Use:   "videos",
	Short: "Video engagement commands",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List videos with engagement numbers",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		sortBy, _ := cmd.Flags().GetString("sort")

		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		videos, err := client.Videos(ctx, query, sortBy)
		if err != nil {
			return remote.Explain(err)
		}
		printVideos(cmd.OutOrStdout(), videos)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <video_id>",
	Short: "Show one video and its viewers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		video, err := client.Video(ctx, args[0])
		if err != nil {
			return remote.Explain(err)
		}
		printVideo(cmd.OutOrStdout(), video)
		return nil
	},
}

func printVideos(w io.Writer, videos []models.VideoWithEngagements) {
	fmt.Fprintf(w, "\nFound %d videos:\n\n", len(videos))
	for i, v := range videos {
		name := v.VideoName
		if name == "" {
			name = v.VideoID
		}
		fmt.Fprintf(w, "%d. %s\n", i+1, name)
		fmt.Fprintf(w, "   Views: %d  Approvals: %d  Concerns: %d\n", v.TotalViews, v.TotalApprovals, v.TotalDisapprovals)
		fmt.Fprintf(w, "   Unique viewers: %d  Engagement: %.1f%%\n", v.UniqueViewers, v.EngagementRate)
		fmt.Fprintf(w, "   ID: %s\n\n", v.VideoID)
	}
}

func printVideo(w io.Writer, v *models.VideoDetail) {
	fmt.Fprintf(w, "%s\n\n", v.VideoName)
	fmt.Fprintf(w, "  ID:         %s\n", v.VideoID)
	fmt.Fprintf(w, "  Category:   %s\n", v.Category)
	fmt.Fprintf(w, "  Age group:  %s\n", v.AgeCategory)
	fmt.Fprintf(w, "  Views:      %d (%d unique viewers, %.1f per parent)\n", v.TotalViews, v.UniqueViewers, v.AverageViewsPerUser)
	fmt.Fprintf(w, "  Approvals:  %d\n", v.TotalApprovals)
	fmt.Fprintf(w, "  Concerns:   %d\n", v.TotalDisapprovals)
	fmt.Fprintf(w, "  Engagement: %.1f%%\n", v.EngagementRate)

	if len(v.Engagements) == 0 {
		return
	}
	engs := append([]models.VideoEngagement(nil), v.Engagements...)
	sort.SliceStable(engs, func(i, j int) bool { return engs[i].LastViewed.After(engs[j].LastViewed) })
	fmt.Fprintln(w, "\nViewers:")
	for _, e := range engs {
		fmt.Fprintf(w, "  %-24s %3d views  %-10s %s\n",
			v.ViewerNames[e.UserID], e.ViewCount, e.Vote, e.LastViewed.Local().Format("2006-01-02 15:04"))
	}
}

func init() {
	listCmd.Flags().StringP("query", "q", "", "Search by title or id")
	listCmd.Flags().String("sort", "views", "Sort by views, approvals or engagement")
	VideosCmd.AddCommand(listCmd)
	VideosCmd.AddCommand(showCmd)
}
