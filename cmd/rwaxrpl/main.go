package main

import "github.com/LeJamon/rwaxrpl/internal/cli"

func main() {
	cli.Execute()
}
