package main

import "github.com/talon-assistant/talent-catalog/internal/cli"

func main() {
	cli.Execute()
}
