package main

import "github.com/pbscan/pbscan-cli/cmd"

func main() {
	cmd.Execute()
}
