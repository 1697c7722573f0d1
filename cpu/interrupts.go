package cpu

import "github.com/adrianwong/dmgcore/addr"

// interruptVectors gives the jump target for each IF/IE bit, in priority
// order (bit 0 highest).
var interruptVectors = [5]uint16{0x40, 0x48, 0x50, 0x58, 0x60}

// pendingInterrupts returns the IF & IE & 0x1F mask of interrupts that are
// both requested and enabled.
func (c *CPU) pendingInterrupts() byte {
	ifReg := c.bus.Read(addr.IF)
	ie := c.bus.Read(addr.IE)
	return ifReg & ie & 0x1F
}

// serviceHalt handles one Step call while the CPU is halted. It reports
// whether it fully accounted for this step (true), in which case Step
// returns immediately, or whether the CPU just woke up without servicing an
// interrupt and should fall through to a normal fetch/execute (false).
func (c *CPU) serviceHalt() bool {
	pending := c.pendingInterrupts()
	if pending == 0 {
		c.mCycles = 1 // idle
		return true
	}

	c.halted = false
	if c.ime {
		c.dispatchInterrupt()
		return true
	}

	// IME is off: the CPU wakes up but the interrupt is left pending and
	// not cleared. The halt bug duplicates the next opcode fetch.
	c.haltBug = true
	return false
}

// dispatchInterrupt services the highest-priority pending interrupt if IME
// is set, pushing PC and jumping to its vector. It reports whether an
// interrupt was serviced (mCycles will be 5 in that case).
func (c *CPU) dispatchInterrupt() bool {
	if !c.ime {
		return false
	}
	pending := c.pendingInterrupts()
	if pending == 0 {
		return false
	}

	for bitIndex := uint8(0); bitIndex < 5; bitIndex++ {
		if pending&(1<<bitIndex) == 0 {
			continue
		}

		c.ime = false
		c.eiPending = false
		ifReg := c.bus.Read(addr.IF)
		c.bus.Write(addr.IF, ifReg&^(1<<bitIndex))

		c.sp--
		c.bus.Write(c.sp, byte(c.pc>>8))
		c.sp--
		c.bus.Write(c.sp, byte(c.pc))

		c.pc = interruptVectors[bitIndex]
		c.mCycles = 5
		return true
	}
	return false
}
