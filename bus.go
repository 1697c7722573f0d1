// Package dmgcore wires together the CPU, memory bus and PPU register file
// into a runnable DMG core, and exposes the small surface a host (a
// debugger, a test harness, the CLI) needs to drive it.
package dmgcore

import (
	"github.com/adrianwong/dmgcore/addr"
	"github.com/adrianwong/dmgcore/cpu"
	"github.com/adrianwong/dmgcore/memory"
)

// Bus centralizes component communication: the CPU only ever sees the
// memory package's MMU, but the root package holds the pieces needed to
// drive the whole system one instruction at a time.
type Bus struct {
	CPU *cpu.CPU
	MMU *memory.MMU
}

// NewBus wires a new CPU to mem.
func NewBus(mem *memory.MMU) *Bus {
	return &Bus{
		CPU: cpu.New(mem),
		MMU: mem,
	}
}

func (b *Bus) Read(address uint16) byte {
	return b.MMU.Read(address)
}

func (b *Bus) Write(address uint16, value byte) {
	b.MMU.Write(address, value)
}

func (b *Bus) RequestInterrupt(interrupt addr.Interrupt) {
	b.MMU.RequestInterrupt(interrupt)
}

// TickInstruction runs exactly one CPU instruction (or interrupt dispatch,
// or idle HALT cycle) and ticks the timer and PPU register file by the same
// number of M-cycles. It returns the M-cycle count, for callers that want
// to budget work against a frame or a fixed instruction count.
func (b *Bus) TickInstruction() int {
	mCycles := b.CPU.Step()
	b.MMU.Tick(mCycles)
	return mCycles
}
