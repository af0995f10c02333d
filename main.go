package main

import "github.com/KaramelBytes/dataclinic-cli/cmd"

func main() {
	cmd.Execute()
}
