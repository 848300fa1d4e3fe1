package main

import "steam-publisher/cmd"

func main() {
	cmd.Execute()
}
