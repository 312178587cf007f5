// ztbench simulates access attempts against zero-trust architecture
// variants and reports decisions with synthesized security metrics.
package main

import "github.com/ppiankov/ztbench/internal/cli"

func main() {
	cli.Execute()
}
