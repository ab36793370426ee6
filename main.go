package main

import "github.com/frahmantamala/event-management/cmd"

func main() {
	cmd.Execute()
}
