package main

import "github.com/palaver-chat/palaver/cmd/server/cmd"

func main() {
	cmd.Execute()
}
