package main

import "github.com/hed1ad/factoryguard/cmd"

func main() {
	cmd.Execute()
}
