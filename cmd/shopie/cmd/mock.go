package cmd

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/shopie/shopie-cli/internal/config"
	"github.com/shopie/shopie-cli/internal/mockapi"
)

var mockAddr string

var mockCmd = &cobra.Command{
	Use:   "mock",
	Short: "Run the built-in mock backend",
	Long: `Run the built-in mock backend on a local port.

The mock implements the same REST surface as the real backend, seeded with
a small product catalog. State is in-memory only. Point the client at it
with SHOPIE_API_BASE_URL=http://localhost:8081/api.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		server := mockapi.NewServer(logger)
		logger.Info("mock backend listening", "addr", mockAddr, "detail", server.String())
		fmt.Printf("Mock backend on %s (base URL http://localhost%s/api)\n", mockAddr, mockAddr)

		// The real backend serves under /api; mirror that here.
		return http.ListenAndServe(mockAddr, http.StripPrefix("/api", server))
	},
}

func init() {
	mockCmd.Flags().StringVar(&mockAddr, "addr", ":8081", "listen address")
	rootCmd.AddCommand(mockCmd)
}
