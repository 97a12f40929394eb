package main

import "github.com/volodymyr-hlavnyi/auto-idle-switcher/cmd"

func main() {
	cmd.Execute()
}
