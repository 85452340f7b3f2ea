package commands

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/fivetwenty-io/dolibarr-client/pkg/doli"
)

// newCallCommand creates the call command.
func newCallCommand(a *app) *cobra.Command {
	var (
		method string
		params []string
		body   string
	)

	cmd := &cobra.Command{
		Use:   "call ENDPOINT",
		Short: "Call any API endpoint",
		Long: `Send a request to an endpoint below /api/index.php and print the response.

Examples:
  doli call products --param limit=10
  doli call -X POST thirdparties --body '{"name":"Initech","client":"1"}'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := checkOutputFormat(a.output())
			if err != nil {
				return err
			}

			query, err := parseParams(params)
			if err != nil {
				return err
			}

			payload, err := parseBody(body)
			if err != nil {
				return err
			}

			req := &doli.Request{Method: method, Endpoint: args[0], Params: query}
			if payload != nil {
				req.Body = payload
			}

			client, err := a.newClient(cmd)
			if err != nil {
				return fmt.Errorf("failed to create client: %w", err)
			}

			resp, err := client.Call(commandContext(cmd), req)
			if err != nil {
				return err
			}

			return renderResponse(cmd.OutOrStdout(), a.output(), resp, nil, "records")
		},
	}

	cmd.Flags().StringVarP(&method, "method", "X", http.MethodGet, "HTTP method")
	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringVar(&body, "body", "", "JSON object sent as the request body")

	return cmd
}
