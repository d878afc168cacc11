package main

import "github.com/nullterm/gbz80asm/cmd/gbasm/cmd"

func main() {
	cmd.Execute()
}
