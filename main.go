// Package main is the entry point for the codeapply CLI.
package main

import "codeapply.dev/pkg/codeapply/cmd"

func main() {
	cmd.Execute()
}
