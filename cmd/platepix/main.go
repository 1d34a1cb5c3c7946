// Package main provides the CLI entrypoint for platepix.
package main

func main() {
	Execute()
}
