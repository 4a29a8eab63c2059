// Atrium - A market-weather driven gallery scene engine
//
// Atrium builds a procedural island gallery scene and derives its weather,
// water and special effects from live market statistics.
//
// Copyright (c) 2026 John Mylchreest
// Licensed under the MIT License
package main

import (
	"github.com/jmylchreest/atrium/internal/cli"
)

func main() {
	cli.Execute()
}
