package main

import "github.com/chiranjeevipattigidi/hipBLASLt/cmd"

func main() {
	cmd.Execute()
}
