package cpu

import "fmt"

// TraceLine renders the current register state in the gameboy-doctor
// acceptance-log format, including the four bytes at and after PC so a
// trace can be diffed against a reference log without re-running the CPU.
func (c *CPU) TraceLine() string {
	pcMem := [4]byte{
		c.bus.Read(c.pc),
		c.bus.Read(c.pc + 1),
		c.bus.Read(c.pc + 2),
		c.bus.Read(c.pc + 3),
	}

	return fmt.Sprintf(
		"A: %02X F: %02X B: %02X C: %02X D: %02X E: %02X H: %02X L: %02X SP: %04X PC: 00:%04X (%02X %02X %02X %02X)\n",
		c.a, c.f, c.b, c.c, c.d, c.e, c.h, c.l, c.sp, c.pc,
		pcMem[0], pcMem[1], pcMem[2], pcMem[3],
	)
}
