package main

import "github.com/recruitedge/recruitedge/cmd"

func main() {
	cmd.Execute()
}
