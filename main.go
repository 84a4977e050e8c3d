package main

import "volleyball-live-system/cmd"

func main() {
	cmd.Execute()
}
