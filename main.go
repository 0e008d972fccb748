package main

import "github.com/iksnae/chatpane/cmd"

func main() {
	cmd.Execute()
}
