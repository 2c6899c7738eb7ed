package main

import "relief-portal-go/cmd/relief-portal/commands"

func main() {
	commands.Execute()
}
