package main

import "realty-sync/cmd"

func main() {
	cmd.Execute()
}
