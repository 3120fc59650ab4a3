package main

import "github.com/kozaktomas/clinic-admin/cmd"

func main() {
	cmd.Execute()
}
