package main

import "repackget/cmd"

func main() {
	cmd.Execute()
}
