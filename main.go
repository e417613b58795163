package main

import "linkvault/cmd"

func main() {
	cmd.Execute()
}
