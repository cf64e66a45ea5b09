// Package main is the entry point for the cricstats CLI tool, which ingests
// ball-by-ball cricket delivery logs and computes per-player statistics.
package main

import "github.com/pable/go-cricket-metrics/cmd"

func main() {
	cmd.Execute()
}
