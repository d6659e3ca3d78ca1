// Command versio indexes a scripture corpus and answers lexical, semantic
// and fused queries against it.
package main

import (
	"os"

	"github.com/Aman-CERP/versio/cmd/versio/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
