package main

import "github.com/notargets/gofusion/cmd"

func main() {
	cmd.Execute()
}
