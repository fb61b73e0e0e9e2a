package main

import "github.com/hannatrush/PetSoft/cmd"

func main() {
	cmd.Run()
}
