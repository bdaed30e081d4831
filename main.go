package main

import "kiklet/internal/cli"

func main() {
	cli.Execute()
}
