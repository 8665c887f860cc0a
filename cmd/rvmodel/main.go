// Package main provides the rvmodel command line interface.
// rvmodel executes RISC-V programs against the golden-reference
// instruction model and prints per-instruction trace or RVFI records.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rvmodel/emu"
	"github.com/sarchlab/rvmodel/insts"
	"github.com/sarchlab/rvmodel/loader"
)

var (
	flagXLen    uint8
	flagRVC     bool
	flagHex     bool
	flagRVFI    bool
	flagMax     uint64
	flagEntry   uint64
	flagVerbose bool
)

func main() {
	cmd := &cobra.Command{
		Use:   "rvmodel <program>",
		Short: "Behavioral RISC-V instruction-set reference model",
		Long: "rvmodel decodes and executes a RISC-V program with bit-exact\n" +
			"reference semantics and emits a verification trace for each\n" +
			"instruction. Programs are ELF binaries or, with --hex, text\n" +
			"files of machine-code words.",
		Args: cobra.ExactArgs(1),
		RunE: run,

		SilenceUsage: true,
	}

	cmd.Flags().Uint8Var(&flagXLen, "xlen", 32, "register width (32 or 64)")
	cmd.Flags().BoolVar(&flagRVC, "rvc", true, "enable the C (compressed) extension")
	cmd.Flags().BoolVar(&flagHex, "hex", false, "treat the program as a hex word listing")
	cmd.Flags().BoolVar(&flagRVFI, "rvfi", false, "print RVFI records instead of trace lines")
	cmd.Flags().Uint64Var(&flagMax, "max", 0, "maximum instructions to execute (0 = no limit)")
	cmd.Flags().Uint64Var(&flagEntry, "entry", 0, "load address and entry point for --hex programs")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose diagnostics")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	variant := insts.Variant{XLen: flagXLen, Compressed: flagRVC}
	if flagXLen != 32 && flagXLen != 64 {
		return fmt.Errorf("unsupported xlen %d", flagXLen)
	}

	mem := emu.NewSparseMemory()
	entry, err := loadProgram(args[0], mem, &variant, logger)
	if err != nil {
		return err
	}

	emulator := emu.NewEmulator(
		emu.WithVariant(variant),
		emu.WithMemory(mem),
		emu.WithMaxInstructions(flagMax),
	)
	emulator.SetPC(entry)

	steps, err := emulator.RunTraced(func(result emu.StepResult) {
		if flagRVFI {
			printRVFI(result)
		} else {
			fmt.Println(result.Record)
		}
	})

	logger.Info("execution stopped",
		"instructions", steps, "pc", fmt.Sprintf("0x%X", pcOf(emulator)))
	if err != nil {
		return err
	}
	return nil
}

func loadProgram(path string, mem *emu.SparseMemory, variant *insts.Variant,
	logger *slog.Logger) (uint64, error) {
	if flagHex {
		image, err := loader.LoadHex(path)
		if err != nil {
			return 0, err
		}
		mem.Write(flagEntry, image)
		logger.Debug("loaded hex image", "bytes", len(image), "base", flagEntry)
		return flagEntry, nil
	}

	prog, err := loader.Load(path)
	if err != nil {
		return 0, err
	}
	if prog.XLen != variant.XLen {
		logger.Warn("binary XLEN overrides --xlen",
			"binary", prog.XLen, "flag", variant.XLen)
		variant.XLen = prog.XLen
	}
	for _, seg := range prog.Segments {
		mem.Write(seg.VirtAddr, seg.Data)
		// Zero-fill BSS (memsize > filesize); sparse memory reads
		// unwritten bytes as zero already, so nothing to do.
	}
	logger.Debug("loaded ELF",
		"entry", fmt.Sprintf("0x%X", prog.EntryPoint), "segments", len(prog.Segments))
	return prog.EntryPoint, nil
}

func printRVFI(result emu.StepResult) {
	r := result.RVFI
	fmt.Printf("order=%d insn=%08x pc=%08x->%08x rs1=x%d:%x rs2=x%d:%x rd=x%d:%x\n",
		r.Order, r.Insn, r.PCRdata, r.PCWdata,
		r.Rs1Addr, r.Rs1Rdata, r.Rs2Addr, r.Rs2Rdata, r.RdAddr, r.RdWdata)
}

func pcOf(e *emu.Emulator) uint64 {
	return e.State().PC.Unsigned()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}
