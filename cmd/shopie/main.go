package main

import "github.com/shopie/shopie-cli/cmd/shopie/cmd"

func main() {
	cmd.Execute()
}
