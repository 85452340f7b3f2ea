// Package doliclient constructs clients implementing the doli.Client interface.
//
// It layers configuration, HTTP transport and credential resolution on top of
// the types defined in the doli package.
//
// Quick start
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
//
//	  // With a key you already have:
//	  cli, err := doliclient.NewWithAPIKey(ctx, "https://erp.example.com", "0123abcd")
//	  if err != nil { log.Fatal(err) }
//
//	  // Or log in on the terminal and cache the key in ./.env for later runs:
//	  cli, err = doliclient.New(ctx,
//	    &doli.Config{BaseURL: "https://erp.example.com", EnvFile: ".env"},
//	    doliclient.WithPrompt(nil),
//	    doliclient.WithPersist(true),
//	  )
//	  if err != nil { log.Fatal(err) }
//
//	  resp, err := cli.ThirdParties(ctx, doli.Params{"limit": 10})
//	  if err != nil { log.Fatal(err) }
//	  _ = resp
//	}
//
// # Credential stores
//
// Config.CredentialStore selects where keys are cached: "dotenv" keeps API_KEY
// in Config.EnvFile, "nats" keeps it in a JetStream key-value bucket so that
// several hosts share one login. The store is only opened when no key is
// passed explicitly or configured.
package doliclient
