package main

import "github.com/pictext/pictext/cmd/pictext/cmd"

func main() {
	cmd.Execute()
}
