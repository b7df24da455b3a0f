package main

import "github.com/frahmantamala/epic-events-crm/cmd"

func main() {
	cmd.Execute()
}
