package main

import "github.com/diogo/recallchat/internal/commands"

func main() {
	commands.Execute()
}
