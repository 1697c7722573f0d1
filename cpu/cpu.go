// Package cpu implements the Sharp LR35902 interpreter: registers, flag
// semantics, opcode decode/execute and interrupt dispatch. It has no notion
// of wall-clock time; Step reports the number of M-cycles the instruction it
// just ran took, leaving aggregation to whatever owns the bus.
package cpu

// Bus is the memory-mapped interface the CPU talks to. The concrete
// implementation is the memory package's MMU, but the CPU only depends on
// this interface so it can be tested against a bare byte array.
type Bus interface {
	Read(address uint16) byte
	Write(address uint16, value byte)
}

// CPU is a Sharp LR35902 core: eight 8-bit registers (paired as AF/BC/DE/HL),
// a 16-bit stack pointer and program counter, the interrupt master enable
// flip-flop, and HALT state.
type CPU struct {
	bus Bus

	a, f byte
	b, c byte
	d, e byte
	h, l byte

	sp, pc uint16

	ime       bool
	eiPending bool
	halted    bool
	haltBug   bool

	currentOpcode uint16
	mCycles       int
}

// New returns a CPU wired to bus and set to the documented DMG power-on
// register state (as if the boot ROM had already run).
func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset restores the documented post-boot-ROM register state.
func (c *CPU) Reset() {
	c.a, c.f = 0x01, 0xB0
	c.b, c.c = 0x00, 0x13
	c.d, c.e = 0x00, 0xD8
	c.h, c.l = 0x01, 0x4D
	c.sp = 0xFFFE
	c.pc = 0x0100
	c.ime = false
	c.eiPending = false
	c.halted = false
	c.haltBug = false
}

// IME reports whether the interrupt master enable flip-flop is set.
func (c *CPU) IME() bool { return c.ime }

// Halted reports whether the CPU is currently suspended by HALT.
func (c *CPU) Halted() bool { return c.halted }

// PC returns the current program counter, mainly for trace output and tests.
func (c *CPU) PC() uint16 { return c.pc }

// readByte reads a byte from the bus, counting the access as one M-cycle.
func (c *CPU) readByte(address uint16) byte {
	c.mCycles++
	return c.bus.Read(address)
}

// writeByte writes a byte to the bus, counting the access as one M-cycle.
func (c *CPU) writeByte(address uint16, value byte) {
	c.mCycles++
	c.bus.Write(address, value)
}

// internalDelay accounts for an M-cycle spent on internal CPU work (ALU on a
// register pair, a conditional branch's PC load, the SP adjustment in
// ADD SP,e) that doesn't correspond to a bus access.
func (c *CPU) internalDelay() {
	c.mCycles++
}

// fetch reads the byte at PC and advances PC, counting one M-cycle.
func (c *CPU) fetch() byte {
	value := c.readByte(c.pc)
	c.pc++
	return value
}

// fetchWord reads a little-endian 16-bit immediate following the opcode.
func (c *CPU) fetchWord() uint16 {
	lo := c.fetch()
	hi := c.fetch()
	return uint16(hi)<<8 | uint16(lo)
}

func (c *CPU) pushWord(value uint16) {
	c.sp--
	c.writeByte(c.sp, byte(value>>8))
	c.sp--
	c.writeByte(c.sp, byte(value))
}

func (c *CPU) popWord() uint16 {
	lo := c.readByte(c.sp)
	c.sp++
	hi := c.readByte(c.sp)
	c.sp++
	return uint16(hi)<<8 | uint16(lo)
}

// Step executes a single step of the CPU: if halted and no interrupt is
// pending it idles for one M-cycle, otherwise it either dispatches a pending
// interrupt or fetches and executes one instruction. It returns the number
// of M-cycles consumed, for the owning bus to feed to the timer and PPU.
func (c *CPU) Step() int {
	c.mCycles = 0
	applyEIDelay := c.eiPending

	if c.halted {
		if c.serviceHalt() {
			c.applyPendingEI(applyEIDelay)
			return c.mCycles
		}
	}

	if c.dispatchInterrupt() {
		c.applyPendingEI(applyEIDelay)
		return c.mCycles
	}

	opcodePC := c.pc
	c.currentOpcode = uint16(c.fetch())
	if c.haltBug {
		// The byte just fetched is re-executed: PC is rewound by one so the
		// next fetch reads it again.
		c.pc--
		c.haltBug = false
	}
	if isIllegalOpcode(uint8(c.currentOpcode)) {
		panic(IllegalOpcodeError{Opcode: uint8(c.currentOpcode), PC: opcodePC})
	}
	if c.currentOpcode == 0xCB {
		c.currentOpcode = 0xCB00 | uint16(c.fetch())
		c.executeCB(uint8(c.currentOpcode))
	} else {
		c.execute(uint8(c.currentOpcode))
	}

	c.applyPendingEI(applyEIDelay)
	return c.mCycles
}

// applyPendingEI completes EI's one-instruction delay: IME turns on only if
// the enable was pending before this step and nothing during it (a DI, an
// interrupt dispatch) cancelled it.
func (c *CPU) applyPendingEI(wasPending bool) {
	if wasPending && c.eiPending {
		c.ime = true
		c.eiPending = false
	}
}
