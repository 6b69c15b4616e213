package messages

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"devdash/internal/cli/remote"
	"devdash/pkg/models"
)

var MessagesCmd = &cobra.Command{
	Use:     "messages",
	Aliases: []string{"chat"},
	Short:   "Chat with parents",
}

var listCmd = &cobra.Command{
	Use:   "list <user_id>",
	Short: "Show the latest messages of a thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		msgs, err := client.Messages(ctx, args[0])
		if err != nil {
			return remote.Explain(err)
		}
		printThread(cmd.OutOrStdout(), msgs)
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <user_id> <message...>",
	Short: "Reply to a parent as the doctor",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")

		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		msg, err := client.SendMessage(ctx, args[0], text)
		if err != nil {
			return remote.Explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Sent at %s\n", msg.Timestamp.Local().Format("15:04:05"))
		return nil
	},
}

var readCmd = &cobra.Command{
	Use:   "read <user_id>",
	Short: "Mark a parent's messages as read",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := remote.SessionClient()
		if err != nil {
			return err
		}
		ctx, cancel := remote.Context()
		defer cancel()

		n, err := client.MarkRead(ctx, args[0])
		if err != nil {
			return remote.Explain(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ %d messages marked read\n", n)
		return nil
	},
}

// printThread prints a newest-first batch oldest first
func printThread(w io.Writer, msgs []models.ChatMessage) {
	if len(msgs) == 0 {
		fmt.Fprintln(w, "No messages yet")
		return
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		m := msgs[i]
		who := "Parent"
		if m.SenderType == models.SenderDoctor {
			who = "Doctor"
		}
		marker := " "
		if !m.Read && m.SenderType == models.SenderUser {
			marker = "*"
		}
		fmt.Fprintf(w, "%s[%s] %s: %s\n", marker, m.Timestamp.Local().Format("Jan 2 15:04"), who, m.Message)
	}
}

func init() {
	MessagesCmd.AddCommand(listCmd)
	MessagesCmd.AddCommand(sendCmd)
	MessagesCmd.AddCommand(readCmd)
}
