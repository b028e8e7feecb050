package main

import "github.com/khanhnv2901/insec/cmd"

var execCmd = cmd.Execute

func main() {
	execCmd()
}
