package main

import "github.com/longkey1/gptmd/cmd"

func main() {
	cmd.Execute()
}
