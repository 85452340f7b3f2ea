// Package doli provides types, interfaces, and helpers for working with the
// Dolibarr ERP REST API.
//
// # Overview
//
// The doli package defines the configuration, request and response types and
// the Client interface. A concrete implementation is provided by the
// doliclient package, which wires configuration, transport and credential
// resolution. Most consumers should import doliclient to construct a client.
//
// Getting a client
//
//	import (
//	  "context"
//	  "log"
//
//	  "github.com/fivetwenty-io/dolibarr-client/pkg/doli"
//	  "github.com/fivetwenty-io/dolibarr-client/pkg/doliclient"
//	)
//
//	func example() {
//	  ctx := context.Background()
//	  cli, err := doliclient.New(ctx, &doli.Config{BaseURL: "https://erp.example.com", APIKey: "..."})
//	  if err != nil { log.Fatal(err) }
//
//	  invoices, err := cli.Invoices(ctx, doli.Params{"limit": 5})
//	  if err != nil { log.Fatal(err) }
//
//	  records, _ := invoices.Records()
//	  _ = records
//	}
//
// # Errors
//
// Failures are reported through four kinds: ErrConfiguration,
// ErrAuthentication, ErrTransport and ErrLoginTokenMissing. Use errors.Is to
// branch on them; TransportError carries the HTTP status of a failed call.
package doli
