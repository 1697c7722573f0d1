// Command dmgcore runs a Game Boy ROM against the core interpreter and
// forwards serial test-tap output to stdout. It has no display and no
// audio: this core is a CPU/bus/timer/PPU-register interpreter, not a
// player.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli"

	"github.com/adrianwong/dmgcore"
)

func main() {
	app := cli.NewApp()
	app.Name = "dmgcore"
	app.Usage = "dmgcore [options] <ROM file>"
	app.Description = "Runs a Game Boy ROM against the DMG core interpreter"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "frames",
			Usage: "Number of frames to run before exiting",
			Value: 60,
		},
		cli.BoolFlag{
			Name:  "trace",
			Usage: "Print a gameboy-doctor-style trace line before every instruction",
		},
		cli.BoolFlag{
			Name:  "debug",
			Usage: "Enable debug-level logging",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		slog.Error("dmgcore exited with an error", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if c.Bool("debug") {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})))
	}

	if c.NArg() == 0 {
		cli.ShowAppHelp(c)
		return errors.New("no ROM path provided")
	}
	romPath := c.Args().Get(0)

	emu, err := dmgcore.NewWithFile(romPath)
	if err != nil {
		return err
	}

	frames := c.Int("frames")
	trace := c.Bool("trace")

	for i := 0; i < frames; i++ {
		if trace {
			runFrameTraced(emu)
		} else {
			emu.RunFrame()
		}
	}

	slog.Info("run complete", "frames", emu.FrameCount(), "instructions", emu.InstructionCount())
	return nil
}

// runFrameTraced steps one instruction at a time, printing its trace line
// first, until the budget RunFrame would otherwise spend is met.
func runFrameTraced(emu *dmgcore.Emulator) {
	const mCyclesPerFrame = 70224 / 4
	total := 0
	for total < mCyclesPerFrame {
		fmt.Print(emu.CPU().TraceLine())
		total += emu.Step()
	}
}
