package main

import "github.com/nullterm/gbz80asm/cmd/gbinspect/cmd"

func main() {
	cmd.Execute()
}
