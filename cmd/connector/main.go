package main

import "github.com/emove/connector/cmd/connector/cmd"

func main() {
	cmd.Execute()
}
