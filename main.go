package main

import "github.com/jasonychoong/retire-server/cmd"

func main() {
	cmd.Execute()
}
