package main

import "github.com/mj1618/desktop-runner/cmd"

func main() {
	cmd.Execute()
}
