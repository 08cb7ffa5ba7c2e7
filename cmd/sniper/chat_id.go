package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jobsniper/internal/notify"
	"jobsniper/internal/secrets"
)

func newChatIDCmd() *cobra.Command {
	var endpoint string
	cmd := &cobra.Command{
		Use:   "chat-id",
		Short: "List the Telegram chats the bot has seen, to find TELEGRAM_CHAT_ID",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			token, err := secrets.Get(secrets.TelegramToken)
			if err != nil {
				return err
			}
			bot, err := notify.NewBot(token, endpoint)
			if err != nil {
				return err
			}
			chats, err := notify.ListChats(bot)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(chats) == 0 {
				fmt.Fprintln(out, "No updates found.")
				fmt.Fprintln(out, "1. Add the bot to the channel as an admin.")
				fmt.Fprintln(out, "2. Send a new message to the channel.")
				fmt.Fprintln(out, "3. Run this command again.")
				return nil
			}
			for _, c := range chats {
				fmt.Fprintf(out, "%-10s %-24s %d\n", c.Kind, c.Name, c.ID)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&endpoint, "endpoint", notify.DefaultEndpoint, "Bot API endpoint format")
	_ = cmd.Flags().MarkHidden("endpoint")
	return cmd
}
