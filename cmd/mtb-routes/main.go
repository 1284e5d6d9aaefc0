package main

import "github.com/pfrederiksen/mtb-routes/internal/cli"

func main() {
	cli.Execute()
}
