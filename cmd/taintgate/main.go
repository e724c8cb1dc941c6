package main

import "github.com/ppiankov/taintgate/internal/cli"

func main() {
	cli.Execute()
}
