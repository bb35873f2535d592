package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shopie/shopie-cli/internal/domain/catalog"
)

var productsCmd = &cobra.Command{
	Use:   "products [query]",
	Short: "List products, or search by name",
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

		var products []catalog.Product
		if len(args) == 1 {
			products, err = a.catalog.Search(cmd.Context(), args[0])
		} else {
			products, err = a.catalog.List(cmd.Context())
		}
		if err != nil {
			return err
		}

		if done, err := printStructured(products); done || err != nil {
			return err
		}

		if len(products) == 0 {
			fmt.Println("No products found")
			return nil
		}

		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(productsCmd)
}
