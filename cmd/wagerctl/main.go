/*
wagerctl - Command-line front end to the wager engine

COMMANDS:
  parse "<text>"            Read bets from text, print the config as JSON.
                            Exits 2 when no bet is found (ask again).
  describe -f config.json   Print the canonical description of a config
  settle -f match.yaml      Settle a match file (YAML or JSON)
  settle --scenario ID      Settle an embedded demo match

FLAGS:
  -o, --output json|text    Output format (default text for describe and
                            settle, json for parse)

SEE ALSO:
  - matchfile/matchfile.go: Match file format
*/
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "wagerctl:", err)
		var exit *exitError
		if errors.As(err, &exit) {
			os.Exit(exit.code)
		}
		os.Exit(1)
	}
}

// exitError carries a specific process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }
