// Package main provides the entry point for interp.
// interp is an RV32I instruction set emulator.
//
// For the full CLI, use: go run ./cmd/interp
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("interp - RV32I instruction set emulator")
	fmt.Println("")
	fmt.Println("Usage: interp run [options] <ELF file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --trace           print one pc: instr line per executed step")
	fmt.Println("  -v, --verbose     verbose summary output")
	fmt.Println("  --mem-size        flat memory capacity in bytes")
	fmt.Println("  --pipeline        execute through the structural 5-stage pipeline")
	fmt.Println("  --entry-override  override the ELF entry point")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/interp' for the full CLI.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/interp' instead.")
	}
}
