package main

import "github.com/aqasim81/schema-version-engine/internal/cli"

func main() {
	cli.Execute()
}
