package main

import (
	"fmt"
	"os"

	"github.com/flutter-demon/fdemon/cmd/fdemon/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
