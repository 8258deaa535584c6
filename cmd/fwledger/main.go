/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/ssargent/fwledger/cmd/fwledger/cmd"

func main() {
	cmd.Execute()
}
