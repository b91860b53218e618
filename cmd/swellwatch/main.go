package main

import "github.com/ngmaloney/swellwatch/internal/cli"

func main() {
	cli.Execute()
}
