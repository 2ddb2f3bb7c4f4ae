package main

import "github.com/oss-metrics/repolang/cmd"

func main() {
	cmd.Execute()
}
