// Package main provides the entry point for interp, an RV32I instruction
// set emulator.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rv32emu/emu"
	"rv32emu/loader"
	"rv32emu/timing/pipeline"
)

const defaultMemSize = 1 << 24 // 16 MiB

func main() {
	var (
		trace   bool
		verbose bool
		memSize uint32
	)

	rootCmd := &cobra.Command{
		Use:   "interp",
		Short: "interp is an RV32I instruction set emulator",
	}
	rootCmd.PersistentFlags().BoolVar(&trace, "trace", false, "print one pc: instr line per executed step")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose summary output")
	rootCmd.PersistentFlags().Uint32Var(&memSize, "mem-size", defaultMemSize, "flat memory capacity in bytes")

	var (
		pipelineMode  bool
		entryOverride uint32
	)

	runCmd := &cobra.Command{
		Use:   "run <ELF file>",
		Short: "usage: interp <ELF file>",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImage(args[0], runOptions{
				trace:         trace,
				verbose:       verbose,
				memSize:       memSize,
				pipeline:      pipelineMode,
				entryOverride: entryOverride,
				hasEntry:      cmd.Flags().Changed("entry-override"),
			})
		},
	}
	runCmd.Flags().BoolVar(&pipelineMode, "pipeline", false, "execute through the structural 5-stage pipeline instead of the interpreter")
	runCmd.Flags().Uint32Var(&entryOverride, "entry-override", 0, "override the ELF entry point")

	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type runOptions struct {
	trace         bool
	verbose       bool
	memSize       uint32
	pipeline      bool
	entryOverride uint32
	hasEntry      bool
}

func runImage(path string, opts runOptions) error {
	prog, err := loader.Load(path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	entry := prog.EntryPoint()
	if opts.hasEntry {
		entry = opts.entryOverride
	}

	if opts.verbose {
		fmt.Printf("Loaded: %s\n", path)
		fmt.Printf("Entry point: 0x%08X\n", entry)
	}

	var traceWriter *os.File
	if opts.trace {
		traceWriter = os.Stdout
	}

	if opts.pipeline {
		return runPipeline(prog, entry, opts, traceWriter)
	}
	return runInterpreter(prog, entry, opts, traceWriter)
}

func runInterpreter(prog *loader.Program, entry uint32, opts runOptions, traceWriter *os.File) error {
	interpOpts := []emu.Option{}
	if traceWriter != nil {
		interpOpts = append(interpOpts, emu.WithTrace(traceWriter))
	}

	interp := emu.NewInterpreter(opts.memSize, interpOpts...)
	if err := interp.LoadImage(prog); err != nil {
		return fmt.Errorf("loading image: %w", err)
	}
	interp.SetPC(entry)

	if err := interp.Run(); err != nil {
		return fmt.Errorf("execution fault: %w", err)
	}

	if opts.verbose {
		fmt.Printf("Instructions executed: %d\n", interp.InstructionCount())
	}
	return nil
}

func runPipeline(prog *loader.Program, entry uint32, opts runOptions, traceWriter *os.File) error {
	mem := emu.NewMemory(opts.memSize)
	regFile := emu.NewRegFile()

	var loadErr error
	prog.ForEachSegment(func(base uint32, bytes []byte) {
		if loadErr != nil {
			return
		}
		if err := mem.WriteSlice(base, bytes); err != nil {
			loadErr = fmt.Errorf("loading segment at 0x%08X: %w", base, err)
		}
	})
	if loadErr != nil {
		return loadErr
	}

	pipeOpts := []pipeline.Option{}
	if traceWriter != nil {
		pipeOpts = append(pipeOpts, pipeline.WithTrace(traceWriter))
	}

	pipe := pipeline.NewPipeline(regFile, mem, pipeOpts...)
	pipe.SetPC(entry)

	for pipe.PC() != emu.LinkSentinel {
		if err := pipe.Tick(); err != nil {
			return fmt.Errorf("execution fault: %w", err)
		}
	}

	if opts.verbose {
		fmt.Printf("Instructions executed: %d\n", pipe.InstructionCount())
	}
	return nil
}
