// Command entailctl is the CLI harness for the entailment solver: it
// loads a YAML fixture environment and solves its batch of wanted
// constraints.
//
// Grounded on cmd/funxy/main.go, which is itself a thin main()
// delegating to the reusable pkg/cli package.
package main

import "github.com/funvibe/entailer/pkg/entailcli"

func main() {
	entailcli.Main()
}
