package main

import "github.com/mvelez/dexarb/cmd"

func main() {
	cmd.Execute()
}
