package main

import "github.com/nutriscan/labelocr/cmd/labelocr/cmd"

func main() {
	cmd.Execute()
}
