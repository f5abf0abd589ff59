package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/smartsales/salesctl/customers"
	"github.com/smartsales/salesctl/internal/utils"
	"github.com/smartsales/salesctl/inventory"
	"github.com/smartsales/salesctl/products"
	"github.com/smartsales/salesctl/sales"
)

func newCustomersCommand(opts *globalOptions) *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "customers",
		Short: "List customer records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			list, err := c.Customers.List(ctx)
			if err != nil {
				return err
			}
			list = customers.Search(list, search)

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE")
			for _, customer := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", customer.ID, customer.Name, customer.Email, customer.Phone)
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Filter by name, email, or phone")
	cmd.AddCommand(newCustomerCreateCommand(opts))
	cmd.AddCommand(newCustomerDeleteCommand(opts))
	return cmd
}

func newCustomerCreateCommand(opts *globalOptions) *cobra.Command {
	params := customers.CreateParams{}

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer record",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}
			customer, err := c.Customers.Create(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Created customer %d (%s)\n", customer.ID, customer.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&params.Name, "name", "", "Customer name")
	cmd.Flags().StringVar(&params.Email, "email", "", "Customer email")
	cmd.Flags().StringVar(&params.Phone, "phone", "", "Customer phone")
	cmd.Flags().StringVar(&params.Address, "address", "", "Customer address")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func newCustomerDeleteCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a customer record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return errors.New("id must be a number")
			}
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}
			if err := c.Customers.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("Deleted customer %d\n", id)
			return nil
		},
	}
}

func newProductsCommand(opts *globalOptions) *cobra.Command {
	var (
		lowStock bool
		category string
		search   string
	)

	cmd := &cobra.Command{
		Use:   "products",
		Short: "List the product catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			var list []products.Product
			if lowStock {
				list, err = c.Products.LowStock(ctx)
			} else {
				list, err = c.Products.List(ctx)
			}
			if err != nil {
				return err
			}
			list = products.Filter(list, search, category, "")

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tCATEGORY\tPRICE\tSTOCK\tSTATUS")
			for _, product := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
					product.ID, product.Name, product.Category, product.Price,
					product.InventoryStock, products.StatusOf(product))
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&lowStock, "low-stock", false, "Only products at or below their reorder level")
	cmd.Flags().StringVar(&category, "category", "", "Filter by category")
	cmd.Flags().StringVar(&search, "search", "", "Filter by name or description")
	return cmd
}

func newSalesCommand(opts *globalOptions) *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "sales",
		Short: "List the sales history",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			list, err := c.Sales.List(ctx)
			if err != nil {
				return err
			}

			if summary {
				s := sales.Summarize(list)
				fmt.Printf("Sales: %d\nRevenue: %.2f\nAverage: %.2f\n", s.Count, s.Revenue, s.AverageValue)
				if s.LastSale != nil {
					fmt.Printf("Last sale: %s\n", s.LastSale.Format("2006-01-02"))
				}
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCUSTOMER\tTOTAL\tDATE\tSTATUS")
			for _, sale := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
					sale.ID, sale.CustomerName, sale.Total, sale.Date.Format("2006-01-02"), sale.Status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "Show aggregate figures instead of rows")
	cmd.AddCommand(newSaleCreateCommand(opts))
	return cmd
}

func newSaleCreateCommand(opts *globalOptions) *cobra.Command {
	var (
		customer int64
		employee int64
		total    string
		payment  string
		notes    string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a sale",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			params := sales.CreateParams{
				Customer:      customer,
				Total:         total,
				PaymentMethod: payment,
				Notes:         notes,
			}
			if cmd.Flags().Changed("employee") {
				params.Employee = utils.Ptr(employee)
			}
			sale, err := c.Sales.Create(ctx, params)
			if err != nil {
				return err
			}
			fmt.Printf("Recorded sale %d for %s (%s)\n", sale.ID, sale.CustomerName, sale.Total)
			return nil
		},
	}

	cmd.Flags().Int64Var(&customer, "customer", 0, "Customer id")
	cmd.Flags().Int64Var(&employee, "employee", 0, "Employee id")
	cmd.Flags().StringVar(&total, "total", "", "Sale total")
	cmd.Flags().StringVar(&payment, "payment-method", "", "Payment method")
	cmd.Flags().StringVar(&notes, "notes", "", "Free-form notes")
	_ = cmd.MarkFlagRequired("customer")
	_ = cmd.MarkFlagRequired("total")
	return cmd
}

func newInventoryCommand(opts *globalOptions) *cobra.Command {
	var low bool

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "List stock counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			list, err := c.Inventory.List(ctx)
			if err != nil {
				return err
			}
			if low {
				list = inventory.BelowReorder(list)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRODUCT\tIN STOCK\tREORDER AT")
			for _, record := range list {
				fmt.Fprintf(w, "%d\t%s\t%d\t%d\n",
					record.ID, record.ProductName, record.QuantityInStock, record.ReorderLevel)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&low, "low", false, "Only records at or below their reorder level")
	return cmd
}

func newForecastsCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "forecasts",
		Short: "List demand forecasts",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}
			if err := requireAuth(c); err != nil {
				return err
			}

			list, err := c.Forecasts.List(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPRODUCT\tDATE\tPREDICTED\tMODEL")
			for _, forecast := range list {
				fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
					forecast.ID, forecast.ProductName, forecast.ForecastDate,
					forecast.PredictedQuantity, forecast.ModelUsed)
			}
			return w.Flush()
		},
	}
}

func newDashboardCommand(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show business statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			c, err := opts.newClient(ctx)
			if err != nil {
				return err
			}

			stats, err := c.Dashboard.Get(ctx)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintf(w, "Customers\t%d\n", stats.TotalCustomers)
			fmt.Fprintf(w, "Products\t%d\n", stats.TotalProducts)
			fmt.Fprintf(w, "Sales\t%d\n", stats.TotalSales)
			fmt.Fprintf(w, "Revenue\t%.2f\n", stats.TotalRevenue)
			fmt.Fprintf(w, "Inventory value\t%.2f\n", stats.TotalInventoryValue)
			fmt.Fprintf(w, "Low stock items\t%d\n", stats.LowStockCount)
			fmt.Fprintf(w, "Sales (30d)\t%d\n", stats.RecentSales30Days)
			fmt.Fprintf(w, "Revenue (30d)\t%.2f\n", stats.RecentRevenue30Days)
			return w.Flush()
		},
	}
}
