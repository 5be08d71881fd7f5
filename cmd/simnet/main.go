package main

import "simnet/cmd/simnet/cmd"

func main() {
	cmd.Execute()
}
