package users

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"devdash/internal/cli/remote"
	"devdash/pkg/models"
	"devdash/pkg/utils"
)

var UsersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"parents"},
	Short:   "Parent commands",
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List parents with their engagement",
	RunE: func(cmd *cobra.Command, args []string) error {
		query, _ := cmd.Flags().GetString("query")
		sortBy, _ := cmd.Flags().GetString("sort")

		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		users, err := client.Users(ctx, query, sortBy)
		if err != nil {
			return remote.Explain(err)
		}
		printUsers(cmd.OutOrStdout(), users)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <user_id>",
	Short: "Show one parent's analytics",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		a, err := client.UserAnalytics(ctx, args[0])
		if err != nil {
			return remote.Explain(err)
		}
		printAnalytics(cmd.OutOrStdout(), a)
		return nil
	},
}

func printUsers(w io.Writer, users []models.UserWithStats) {
	fmt.Fprintf(w, "\nFound %d parents:\n\n", len(users))
	for i, u := range users {
		fmt.Fprintf(w, "%d. %s\n", i+1, u.Name)
		fmt.Fprintf(w, "   Phone: %s\n", u.PhoneNumber)
		fmt.Fprintf(w, "   Videos watched: %d  Approval rate: %.0f%%\n", u.TotalEngagements, u.ApprovalRate)
		if u.LastVideoWatched != "" {
			fmt.Fprintf(w, "   Last video: %s\n", u.LastVideoWatched)
		}
		if u.LastActive != nil {
			fmt.Fprintf(w, "   Last active: %s\n", utils.TimeAgo(*u.LastActive))
		}
		fmt.Fprintf(w, "   ID: %s\n\n", u.ID)
	}
}

func printAnalytics(w io.Writer, a *models.UserAnalytics) {
	fmt.Fprintf(w, "%s\n\n", a.User.Name)
	fmt.Fprintf(w, "  Phone:       %s\n", a.User.PhoneNumber)
	if a.Profile != nil && a.Profile.ChildName != nil {
		fmt.Fprintf(w, "  Child:       %s\n", *a.Profile.ChildName)
	}
	fmt.Fprintf(w, "  Age group:   %s\n", a.DevelopmentProgress.AgeGroup)
	fmt.Fprintf(w, "  Total views: %d\n", a.TotalWatchTime)
	if len(a.FavoriteCategories) > 0 {
		fmt.Fprintf(w, "  Favourites:  %s\n", strings.Join(a.FavoriteCategories, ", "))
	}
	if len(a.DevelopmentProgress.Concerns) > 0 {
		fmt.Fprintln(w, "\nConcerns:")
		for _, c := range a.DevelopmentProgress.Concerns {
			fmt.Fprintf(w, "  ! %s\n", c)
		}
	}
	if len(a.VideoEngagements) > 0 {
		fmt.Fprintln(w, "\nWatched:")
		for _, e := range a.VideoEngagements {
			fmt.Fprintf(w, "  %-28s %3d views  %s\n", e.VideoID, e.ViewCount, e.Vote)
		}
	}
}

func init() {
	listCmd.Flags().StringP("query", "q", "", "Search by name, phone or email")
	listCmd.Flags().String("sort", "name", "Sort by name, activity or engagements")
	UsersCmd.AddCommand(listCmd)
	UsersCmd.AddCommand(showCmd)
}
