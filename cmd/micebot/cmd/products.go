package cmd

import (
	"fmt"
	"strings"

	"micebot/internal/model"

	"github.com/spf13/cobra"
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "Manage products",
}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		taken, _ := cmd.Flags().GetBool("taken")
		asc, _ := cmd.Flags().GetBool("asc")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		resp, err := newClient(cfg, logger).ListProducts(cmd.Context(), model.ProductQuery{
			Taken: taken,
			Desc:  !asc,
			Limit: limit,
		})
		if err != nil {
			return err
		}

		renderProducts(cmd.OutOrStdout(), resp, cfg.Bot.DateTimeFormat)
		return nil
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add <code> [summary...]",
	Short: "Register a new product",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		product, err := newClient(cfg, logger).AddProduct(cmd.Context(), model.ProductCreation{
			Code:    args[0],
			Summary: summaryArg(args[1:], cfg.Bot.DefaultProductSummary),
		})
		if err != nil {
			return err
		}

		renderProduct(cmd.OutOrStdout(), product, cfg.Bot.DateTimeFormat)
		return nil
	},
}

var productsEditCmd = &cobra.Command{
	Use:   "edit <uuid> <code> [summary...]",
	Short: "Update a product code and summary",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		product, err := newClient(cfg, logger).EditProduct(cmd.Context(), model.ProductEdit{
			UUID:    args[0],
			Code:    args[1],
			Summary: summaryArg(args[2:], cfg.Bot.DefaultProductSummary),
		})
		if err != nil {
			return err
		}

		renderProduct(cmd.OutOrStdout(), product, cfg.Bot.DateTimeFormat)
		return nil
	},
}

var productsRemoveCmd = &cobra.Command{
	Use:     "remove <uuid>",
	Aliases: []string{"rm"},
	Short:   "Remove a product that was not taken yet",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := setup()
		if err != nil {
			return err
		}

		resp, err := newClient(cfg, logger).DeleteProduct(cmd.Context(), model.ProductDelete{UUID: args[0]})
		if err != nil {
			return err
		}

		if !resp.Deleted {
			return fmt.Errorf("product %s was not removed", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "product %s removed\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
	productsCmd.AddCommand(productsListCmd, productsAddCmd, productsEditCmd, productsRemoveCmd)

	productsListCmd.Flags().Bool("taken", false, "List taken products instead of available ones")
	productsListCmd.Flags().Bool("asc", false, "Oldest first")
	productsListCmd.Flags().IntP("limit", "l", 0, "Maximum number of products, 0 lets the server decide")
}

func summaryArg(args []string, fallback string) string {
	if len(args) == 0 {
		return fallback
	}
	return strings.Join(args, " ")
}
