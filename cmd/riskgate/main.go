package main

import "github.com/ppiankov/riskgate/internal/cli"

func main() {
	cli.Execute()
}
