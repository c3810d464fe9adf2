// Package main is the entry point for the ipcraft CLI.
package main

func main() {
	Execute()
}
