package main

import "github.com/AzielCF/az-giveaway/cmd"

func main() {
	cmd.Execute()
}
