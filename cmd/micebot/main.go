// Package main is the entry point for the micebot server and CLI.
package main

import "micebot/cmd/micebot/cmd"

func main() {
	cmd.Execute()
}
