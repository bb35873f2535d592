package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopie/shopie-cli/internal/domain/checkout"
)

var checkoutMethod string

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the current cart",
	Long: `Place an order for the current cart.

Runs the full sequence: create the order, create and process the payment,
then clear the cart. A failure mid-sequence aborts without rollback; the
backend owns reconciliation of any pending order or payment left behind.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		method, err := checkout.ParseMethod(checkoutMethod)
		if err != nil {
			return err
		}

		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		receipt, err := a.check.Checkout(cmd.Context(), method)
		if err != nil {
			return fmt.Errorf("checkout failed: %s", err)
		}

		if done, err := printStructured(receipt); done || err != nil {
			return err
		}
		fmt.Printf("Order #%d confirmed\n", receipt.OrderID)
		fmt.Printf("  Paid %.2f via %s (payment #%d)\n", receipt.Amount, receipt.Method, receipt.PaymentID)
		return nil
	},
}

func init() {
	checkoutCmd.Flags().StringVarP(&checkoutMethod, "method", "m", string(checkout.MethodStripe),
		fmt.Sprintf("payment method %v", checkout.Methods()))
	rootCmd.AddCommand(checkoutCmd)
}
