package main

import "github.com/ask-andrew/360brief-sub007/cmd"

func main() {
	cmd.Execute()
}
