package main

import "LMS-backend/cmd/libraryctl/commands"

func main() {
	commands.Execute()
}
