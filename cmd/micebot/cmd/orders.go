package cmd

import (
	"micebot/internal/model"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Inspect delivered products",
}

var ordersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		query := model.DefaultOrderQuery()
		query.Skip, _ = cmd.Flags().GetInt("skip")
		query.Limit, _ = cmd.Flags().GetInt("limit")
		query.Moderator, _ = cmd.Flags().GetString("moderator")
		query.Owner, _ = cmd.Flags().GetString("owner")
		query.Desc, _ = cmd.Flags().GetBool("desc")

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		resp, err := newClient(cfg, logger).ListOrders(cmd.Context(), query)
		if err != nil {
			return err
		}

		renderOrders(cmd.OutOrStdout(), resp, cfg.Bot.DateTimeFormat)
		return nil
	},
}

var ordersLatestCmd = &cobra.Command{
	Use:   "latest",
	Short: "List the latest orders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		resp, err := newClient(cfg, logger).ListLatestOrders(cmd.Context())
		if err != nil {
			return err
		}

		renderOrders(cmd.OutOrStdout(), resp, cfg.Bot.DateTimeFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
	ordersCmd.AddCommand(ordersListCmd, ordersLatestCmd)

	defaults := model.DefaultOrderQuery()
	ordersListCmd.Flags().Int("skip", defaults.Skip, "Number of orders to skip")
	ordersListCmd.Flags().IntP("limit", "l", defaults.Limit, "Maximum number of orders")
	ordersListCmd.Flags().String("moderator", "", "Only orders delivered by this moderator")
	ordersListCmd.Flags().String("owner", "", "Only orders delivered to this owner")
	ordersListCmd.Flags().Bool("desc", defaults.Desc, "Newest first")
}
