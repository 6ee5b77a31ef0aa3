// Package main is the entry point for the datapulse binary.
package main

import "os"

func main() {
	os.Exit(Execute())
}
