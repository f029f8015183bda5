package main

import "github.com/vietddude/fitlink/internal/cli"

func main() {
	cli.Execute()
}
