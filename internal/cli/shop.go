package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"brickpress/pkg/client"
	"brickpress/pkg/domain"
	"brickpress/pkg/printshop"
)

// NewProductsCommand creates the products command.
func NewProductsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "products",
		Short:         "List print products",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			products, err := api.Products(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(products, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tSIZE\tPRICE")
				for _, p := range products {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.ID, p.Name, p.Dimensions, printshop.FormatPrice(p.PriceCents))
				}
				_ = tw.Flush()
			})
		},
	}
}

type orderOptions struct {
	product    string
	generation string
	shipping   domain.Shipping
}

// NewOrderCommand creates the order command.
func NewOrderCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &orderOptions{}
	cmd := &cobra.Command{
		Use:   "order",
		Short: "Place a print order (payment is simulated)",
		Long: `Place a print order for one of your posters.

No payment is taken: orders are accepted as placed and never shipped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			if _, err := printshop.NormalizeShipping(opts.shipping); err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "invalid shipping", err))
			}
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			order, err := api.PlaceOrder(cmd.Context(), client.OrderRequest{
				ProductID:    opts.product,
				GenerationID: opts.generation,
				Shipping:     opts.shipping,
			})
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(order, func(w io.Writer) {
				fmt.Fprintf(w, "Order %s placed: %s, total %s\n", order.ID, order.ProductID, printshop.FormatPrice(order.TotalCents))
			})
		},
	}
	cmd.Flags().StringVar(&opts.product, "product", "", "product id (see `brickpress products`)")
	cmd.Flags().StringVar(&opts.generation, "generation", "", "generation id to print (see `brickpress gallery`)")
	cmd.Flags().StringVar(&opts.shipping.Name, "ship-name", "", "recipient name")
	cmd.Flags().StringVar(&opts.shipping.Address, "ship-address", "", "street address")
	cmd.Flags().StringVar(&opts.shipping.City, "ship-city", "", "city")
	cmd.Flags().StringVar(&opts.shipping.Zip, "ship-zip", "", "postal code")
	_ = cmd.MarkFlagRequired("product")
	return cmd
}

// NewOrdersCommand creates the orders command.
func NewOrdersCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "orders",
		Short:         "List your print orders",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			api, _, err := rootOpts.client()
			if err != nil {
				return f.Fail(WrapExitError(ExitCommandError, "load session", err))
			}
			orders, err := api.Orders(cmd.Context())
			if err != nil {
				return f.Fail(err)
			}
			return f.Success(orders, func(w io.Writer) {
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tPRODUCT\tTOTAL\tSTATUS\tPLACED")
				for _, o := range orders {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", o.ID, o.ProductID, printshop.FormatPrice(o.TotalCents), o.Status, o.CreatedAt.Local().Format("2006-01-02"))
				}
				_ = tw.Flush()
			})
		},
	}
}
