package main

import "github.com/agrisoko/sokobot/core/cmd"

func main() {
	cmd.Execute()
}
