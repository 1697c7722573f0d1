package dmgcore

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/adrianwong/dmgcore/cpu"
	"github.com/adrianwong/dmgcore/memory"
	"github.com/adrianwong/dmgcore/serial"
)

// mCyclesPerFrame is 70224 T-cycles (the DMG's 154-line, 456-T-cycle-per-line
// frame) expressed in M-cycles.
const mCyclesPerFrame = 70224 / 4

// Emulator is the root entry point for running the core: it owns the bus
// and exposes a frame-stepping API plus joypad input.
type Emulator struct {
	bus *Bus

	instructionCount uint64
	frameCount       uint64
}

func newEmulator(mem *memory.MMU) *Emulator {
	return &Emulator{bus: NewBus(mem)}
}

// New creates an emulator with no ROM loaded; useful for tests that poke
// memory directly rather than running a cartridge image.
func New() *Emulator {
	return newEmulator(memory.New())
}

// NewWithFile creates an emulator and loads the ROM at path into it. Serial
// output (the SB test tap) is forwarded to stdout, matching how acceptance
// test ROMs report PASS/FAIL over the link port.
func NewWithFile(path string) (*Emulator, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("dmgcore: %w", err)
	}

	slog.Debug("loaded ROM", "path", path, "size", len(data))

	mem := memory.New()
	if err := mem.LoadROM(data); err != nil {
		return nil, err
	}
	mem.SetSerialSink(serial.NewSink(os.Stdout))

	return newEmulator(mem), nil
}

// SetSerialOutput redirects the serial test tap to an arbitrary writer,
// mainly so tests can capture it instead of stdout.
func (e *Emulator) SetSerialOutput(w io.Writer) {
	e.bus.MMU.SetSerialSink(serial.NewSink(w))
}

// RunFrame advances the emulator by one frame's worth of M-cycles (17556,
// derived from the DMG's 70224 T-cycle frame).
func (e *Emulator) RunFrame() {
	total := 0
	for total < mCyclesPerFrame {
		total += e.bus.TickInstruction()
		e.instructionCount++
	}
	e.frameCount++

	if e.frameCount%60 == 0 {
		slog.Debug("frame completed", "frame", e.frameCount, "pc", fmt.Sprintf("0x%04X", e.bus.CPU.PC()))
	}
}

// Step advances the emulator by exactly one CPU instruction (or interrupt
// dispatch, or idle HALT tick) and returns the number of M-cycles consumed.
func (e *Emulator) Step() int {
	cycles := e.bus.TickInstruction()
	e.instructionCount++
	return cycles
}

func (e *Emulator) HandleKeyPress(key memory.JoypadKey) {
	e.bus.MMU.HandleKeyPress(key)
}

func (e *Emulator) HandleKeyRelease(key memory.JoypadKey) {
	e.bus.MMU.HandleKeyRelease(key)
}

func (e *Emulator) CPU() *cpu.CPU { return e.bus.CPU }

func (e *Emulator) MMU() *memory.MMU { return e.bus.MMU }

func (e *Emulator) InstructionCount() uint64 { return e.instructionCount }

func (e *Emulator) FrameCount() uint64 { return e.frameCount }
