package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/54b3r/shopsense-go/internal/engine"
	"github.com/54b3r/shopsense-go/internal/logging"
	"github.com/54b3r/shopsense-go/internal/provider"
)

// NewAskCmd constructs the `shopsense ask` command, which sends one message
// through the full chat pipeline and prints the reply.
func NewAskCmd() *cobra.Command {
	var userID string
	var sessionID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Send one chat message from the terminal",
		Long: `Send a single message through the chat pipeline and print the reply.

Useful for smoke-testing the retrieval stack and prompt without running the
HTTP server. Pass --user to scope the answer to a synced customer's orders
and cart; omit it for an anonymous session.

Examples:
  shopsense ask "shop có laptop gaming dưới 20 triệu không?"
  shopsense ask --user 7 "đơn hàng của tôi đang ở đâu?"
  shopsense ask --json "có mã giảm giá nào đang chạy không?"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			providerCfg, err := provider.ConfigFromEnv()
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			chatModel, err := provider.New(ctx, providerCfg)
			if err != nil {
				return fmt.Errorf("ask: failed to initialise model provider: %w", err)
			}

			docStore, _, closeStore, err := buildStore(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer closeStore()

			storefront, err := buildCommerceClient()
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			eng, err := engine.New(&engine.Config{
				Store:     docStore,
				Generator: provider.NewGenerator(chatModel, 0),
				LiveCart:  storefront,
			})
			if err != nil {
				return fmt.Errorf("ask: failed to initialise engine: %w", err)
			}

			if sessionID == "" {
				sessionID = uuid.NewString()
			}

			resp, err := eng.Chat(ctx, engine.Request{
				UserID:    userID,
				SessionID: sessionID,
				Message:   args[0],
			})
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			fmt.Println(resp.Reply)
			for _, a := range resp.Actions {
				if a.ProductName != "" {
					fmt.Printf("[action] %s: %s\n", a.Type, a.ProductName)
				} else if a.DiscountCode != "" {
					fmt.Printf("[action] %s: %s\n", a.Type, a.DiscountCode)
				} else {
					fmt.Printf("[action] %s\n", a.Type)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&userID, "user", "u", "", "Storefront user ID to scope orders and cart context")
	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "Session ID for conversation continuity")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full response (actions, cards) as JSON")

	return cmd
}
