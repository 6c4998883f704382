package main

import "github.com/drill-dev/drill/internal/cli"

func main() {
	cli.Execute()
}
