// Package main is the entry point for the autoconf CLI.
package main

import "autoconf.dev/pkg/autoconf/cmd"

func main() {
	cmd.Execute()
}
