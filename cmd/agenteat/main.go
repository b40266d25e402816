package main

import "github.com/habiliai/agenteat/cmd/agenteat/cmd"

func main() {
	cmd.Execute()
}
