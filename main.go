package main

import "rentadm/cmd"

func main() {
	cmd.Execute()
}
