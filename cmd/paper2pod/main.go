// cmd/paper2pod/main.go
package main

import (
	cmd "github.com/mwiater/paper2pod/internal/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the paper2pod CLI by delegating to the cobra root command.
func main() {
	cmd.SetVersionInfo(version, commit, date)
	cmd.Execute()
}
