// Package main provides the entry point for the whiteout CLI.
package main

func main() {
	Execute()
}
