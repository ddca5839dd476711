package main

import "github.com/hirevia/ms-go-payments/cmd"

func main() {
	cmd.Execute()
}
