package main

import "github.com/KaramelBytes/specimen-cli/cmd"

func main() {
	cmd.Execute()
}
