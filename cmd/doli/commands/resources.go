package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

type listFunc func(client doli.Client, ctx context.Context, params doli.Params) (*doli.Response, error)

type resourceCommand struct {
	use     string
	aliases []string
	short   string
	long    string
	noun    string
	columns []string
	list    listFunc
}

// newInvoicesCommand creates the invoices command.
func newInvoicesCommand(a *app) *cobra.Command {
	return newResourceCommand(a, resourceCommand{
		use:     "invoices",
		aliases: []string{"invoice", "inv"},
		short:   "List invoices",
		long:    "List customer invoices. Extra query parameters are passed through with --param.",
		noun:    "invoices",
		columns: invoiceColumns,
		list:    doli.Client.Invoices,
	})
}

// newThirdPartiesCommand creates the thirdparties command.
func newThirdPartiesCommand(a *app) *cobra.Command {
	return newResourceCommand(a, resourceCommand{
		use:     "thirdparties",
		aliases: []string{"thirdparty", "tp"},
		short:   "List third parties",
		long:    "List customers, suppliers and prospects. Extra query parameters are passed through with --param.",
		noun:    "third parties",
		columns: thirdPartyColumns,
		list:    doli.Client.ThirdParties,
	})
}

func newResourceCommand(a *app, rc resourceCommand) *cobra.Command {
	var (
		limit  int
		params []string
	)

	cmd := &cobra.Command{
		Use:     rc.use,
		Aliases: rc.aliases,
		Short:   rc.short,
		Long:    rc.long,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := checkOutputFormat(a.output())
			if err != nil {
				return err
			}

			query, err := parseParams(params)
			if err != nil {
				return err
			}

			if limit > 0 {
				query["limit"] = limit
			}

			client, err := a.newClient(cmd)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			resp, err := rc.list(client, commandContext(cmd), query)
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", rc.noun, err)
			}

			return renderResponse(cmd.OutOrStdout(), a.output(), resp, rc.columns, rc.noun)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "maximum number of records to return")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")

	return cmd
}
