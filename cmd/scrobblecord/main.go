package main

import "github.com/tessro/scrobblecord/internal/cli"

func main() {
	cli.Execute()
}
