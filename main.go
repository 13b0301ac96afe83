package main

import "github.com/mpapenbr/tyre-strategy/cmd"

func main() {
	cmd.Execute()
}
