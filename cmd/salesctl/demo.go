package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/smartsales/salesctl/internal/testserver"
)

func newDemoCommand() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a local in-memory Smart Sales backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			server := testserver.New()
			seedDemoData(server)

			httpServer := &http.Server{Addr: addr, Handler: server.Handler()}
			go func() {
				fmt.Printf("Demo backend listening on %s (user: demo / demo1234)\n", addr)
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					fmt.Fprintf(os.Stderr, "error: %v\n", err)
				}
			}()

			stop := make(chan os.Signal, 1)
			signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
			<-stop

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpServer.Shutdown(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "Listen address")
	return cmd
}

func seedDemoData(server *testserver.Server) {
	server.SeedUser("demo", "demo1234", "demo@example.com", "Demo", "User")

	alice := server.SeedCustomer("Alice Johnson", "alice@example.com", "555-0101", "12 Main St")
	bob := server.SeedCustomer("Bob Smith", "bob@example.com", "555-0102", "34 Oak Ave")

	coffee := server.SeedProduct("Coffee Beans", "Beverages", "14.50", "8.00", 40, 10)
	server.SeedProduct("Green Tea", "Beverages", "9.90", "4.50", 6, 10)
	server.SeedProduct("Chocolate Bar", "Snacks", "3.20", "1.10", 0, 5)

	server.SeedSale(alice, "29.00", time.Now().Add(-48*time.Hour))
	server.SeedSale(bob, "9.90", time.Now().Add(-24*time.Hour))
	server.SeedForecast(coffee, time.Now().AddDate(0, 1, 0).Format("2006-01-02"), 55)
}
