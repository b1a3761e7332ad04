package main

import "sdkmigrate/internal/cli"

func main() {
	cli.Execute()
}
