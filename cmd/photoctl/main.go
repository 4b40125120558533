package main

import "github.com/andreyxaxa/Photo-Ingest/internal/cli"

func main() {
	cli.Execute()
}
