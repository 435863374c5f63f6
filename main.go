package main

import "shiftwatch/internal/cli"

func main() {
	cli.Execute()
}
