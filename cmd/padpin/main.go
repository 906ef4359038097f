// Package main runs the padpin controller-to-cursor tool.
package main

import (
	"fmt"
	"os"

	"github.com/frudas24/padpin/internal/app"
)

// main is the entrypoint for padpin.
func main() {
	if err := newRootCmd(app.DefaultPlatform()).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "padpin:", err)
		os.Exit(1)
	}
}
