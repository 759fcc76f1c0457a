package main

import "github.com/cliniva/cliniva_backend/cmd"

func main() {
	cmd.Execute()
}
