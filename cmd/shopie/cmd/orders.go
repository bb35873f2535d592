package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var ordersCmd = &cobra.Command{
	Use:   "orders [order-id]",
	Short: "Show order history, or one order in detail",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := buildApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.requireSession(); err != nil {
			return err
		}

		if len(args) == 1 {
			orderID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid order id %q", args[0])
			}
			ord, err := a.orders.Get(cmd.Context(), orderID)
			if err != nil {
				return err
			}

			if done, err := printStructured(ord); done || err != nil {
				return err
			}
			fmt.Printf("Order #%d  %s  total %.2f\n", ord.ID, ord.Status, ord.Total)
			w := newTable()
			fmt.Fprintln(w, "PRODUCT\tUNIT PRICE\tQTY")
			for _, line := range ord.Items {
				name := ""
				if line.Product != nil {
					name = line.Product.Name
				}
				fmt.Fprintf(w, "%s\t%.2f\t%d\n", name, line.Price, line.Quantity)
			}
			return w.Flush()
		}

		orders, err := a.orders.List(cmd.Context())
		if err != nil {
			return err
		}

		if done, err := printStructured(orders); done || err != nil {
			return err
		}

		if len(orders) == 0 {
			fmt.Println("No orders yet")
			return nil
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tDATE\tSTATUS\tTOTAL")
		for _, ord := range orders {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.2f\n", ord.ID, ord.Date, ord.Status, ord.Total)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(ordersCmd)
}
