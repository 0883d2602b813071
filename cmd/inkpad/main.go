package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Root().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "inkpad: %v\n", err)
		os.Exit(1)
	}
}
