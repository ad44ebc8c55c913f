package main

import "github.com/spasm/spasm/cmd/spasm/cmd"

func main() {
	cmd.Execute()
}
