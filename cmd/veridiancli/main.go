package main

import (
	"fmt"
	"os"

	"github.com/veridian-blockchain/veridian/cmd/veridiancli/veridiancli"
)

func main() {
	if err := veridiancli.Run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
