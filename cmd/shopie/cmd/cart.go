package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/shopie/shopie-cli/internal/domain/cart"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Inspect and change the shopping cart",
}

var cartShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return renderCart(a)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		productID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		quantity := 1
		if len(args) == 2 {
			if quantity, err = strconv.Atoi(args[1]); err != nil || quantity < 1 {
				return fmt.Errorf("invalid quantity %q", args[1])
			}
		}

		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cart.Add(cmd.Context(), productID, quantity); err != nil {
			return err
		}
		return renderCart(a)
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update <item-id> <quantity>",
	Short: "Change the quantity of a cart line",
	Long: `Change the quantity of a cart line.

A quantity of zero or less removes the line instead of sending a
non-positive quantity to the backend.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}
		quantity, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		// The synchronizer forwards quantities as-is; converting a
		// reduction to zero into a removal is this caller's job.
		if quantity <= 0 {
			err = a.cart.Remove(cmd.Context(), itemID)
		} else {
			err = a.cart.Update(cmd.Context(), itemID, quantity)
		}
		if err != nil {
			return err
		}
		return renderCart(a)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <item-id>",
	Short: "Remove a line from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		itemID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid item id %q", args[0])
		}

		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cart.Remove(cmd.Context(), itemID); err != nil {
			return err
		}
		return renderCart(a)
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := withCart(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.cart.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Cart cleared")
		return nil
	},
}

// withCart builds the app, checks the session, and loads the cart mirror.
func withCart(cmd *cobra.Command) (*app, error) {
	a, err := buildApp()
	if err != nil {
		return nil, err
	}
	if err := a.requireSession(); err != nil {
		a.Close()
		return nil, err
	}
	if err := a.cart.Load(cmd.Context()); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func renderCart(a *app) error {
	items := a.cart.Items()

	if done, err := printStructured(items); done || err != nil {
		return err
	}

	if len(items) == 0 {
		fmt.Println("Cart is empty")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ITEM\tPRODUCT\tUNIT PRICE\tQTY\tLINE TOTAL")
	for _, item := range items {
		name := ""
		var price float64
		if item.Product != nil {
			name = item.Product.Name
			price = item.Product.Price
		}
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\t%.2f\n",
			item.ID, name, price, item.Quantity, price*float64(item.Quantity))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("Total: %.2f (%d items)\n", cart.Total(items), cart.Count(items))
	return nil
}

func init() {
	cartCmd.AddCommand(cartShowCmd)
	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartUpdateCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)
	rootCmd.AddCommand(cartCmd)
}
