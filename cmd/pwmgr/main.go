package main

import "pwmgr/cmd/pwmgr/cmd"

func main() {
	cmd.Execute()
}
