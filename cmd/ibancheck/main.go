package main

import "ibancheck/internal/cli"

func main() {
	cli.Execute()
}
