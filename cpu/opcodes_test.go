package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adrianwong/dmgcore/memory"
)

func newTestCPU(program ...byte) *CPU {
	m := memory.New()
	m.LoadROM(program)
	c := New(m)
	c.pc = 0
	return c
}

func TestAddSetsHalfCarryAndCarry(t *testing.T) {
	c := newTestCPU(0x80) // ADD A,B
	c.a = 0x0F
	c.b = 0x01

	c.Step()

	assert.Equal(t, byte(0x10), c.a)
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(carryFlag))
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(subFlag))
}

func TestAddOverflowSetsCarryAndZero(t *testing.T) {
	c := newTestCPU(0x80) // ADD A,B
	c.a = 0xFF
	c.b = 0x01

	c.Step()

	assert.Equal(t, byte(0x00), c.a)
	assert.True(t, c.isSetFlag(zeroFlag))
	assert.True(t, c.isSetFlag(carryFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
}

func TestSubSetsSubtractFlag(t *testing.T) {
	c := newTestCPU(0x90) // SUB B
	c.a = 0x10
	c.b = 0x01

	c.Step()

	assert.Equal(t, byte(0x0F), c.a)
	assert.True(t, c.isSetFlag(subFlag))
	assert.False(t, c.isSetFlag(carryFlag))
}

func TestCPDoesNotModifyA(t *testing.T) {
	c := newTestCPU(0xB8) // CP B
	c.a = 0x05
	c.b = 0x05

	c.Step()

	assert.Equal(t, byte(0x05), c.a)
	assert.True(t, c.isSetFlag(zeroFlag))
}

func TestIncDecHalfCarryOnRegister(t *testing.T) {
	c := newTestCPU(0x04) // INC B
	c.b = 0x0F

	c.Step()

	assert.Equal(t, byte(0x10), c.b)
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(subFlag))
}

func TestIncHLIndirectTakesThreeMCycles(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x34}) // INC (HL)
	m.Write(0xC000, 0x41)
	c := New(m)
	c.pc = 0
	c.setHL(0xC000)

	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.Equal(t, byte(0x42), m.Read(0xC000))
}

func TestXorAWithItselfClearsAAndSetsZero(t *testing.T) {
	c := newTestCPU(0xAF) // XOR A
	c.a = 0x7B

	c.Step()

	assert.Equal(t, byte(0x00), c.a)
	assert.True(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(carryFlag))
}

func TestDAAAfterBCDAddition(t *testing.T) {
	c := newTestCPU(0x27) // DAA
	c.a = 0x0A             // invalid BCD digit after e.g. 0x05+0x05
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)

	c.Step()

	assert.Equal(t, byte(0x10), c.a)
	assert.False(t, c.isSetFlag(zeroFlag))
}

func TestDAAAfterImmediateAdd(t *testing.T) {
	c := newTestCPU(0xC6, 0x15, 0x27) // ADD A,0x15; DAA
	c.a = 0x27
	c.f = 0

	c.Step()
	c.Step()

	assert.Equal(t, byte(0x42), c.a)
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(halfCarryFlag))
}

func TestAddHLSetsHalfCarryFrom12BitOverflow(t *testing.T) {
	c := newTestCPU(0x09) // ADD HL,BC
	c.setHL(0x0FFF)
	c.setBC(0x0001)
	c.setFlag(zeroFlag)

	cycles := c.Step()

	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x1000), c.getHL())
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.False(t, c.isSetFlag(carryFlag))
	assert.True(t, c.isSetFlag(zeroFlag), "ADD HL,rr leaves Z untouched")
}

func TestLoadU16SPStoresFullLowByte(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x08, 0x00, 0xC0}) // LD (0xC000),SP
	c := New(m)
	c.pc = 0
	c.sp = 0xFFF8

	cycles := c.Step()

	assert.Equal(t, 5, cycles)
	assert.Equal(t, byte(0xF8), m.Read(0xC000))
	assert.Equal(t, byte(0xFF), m.Read(0xC001))
}

func TestLoadHLSPPlusOffsetFlags(t *testing.T) {
	c := newTestCPU(0xF8, 0x01) // LD HL,SP+1
	c.sp = 0x00FF

	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x0100), c.getHL())
	assert.True(t, c.isSetFlag(halfCarryFlag))
	assert.True(t, c.isSetFlag(carryFlag))
	assert.False(t, c.isSetFlag(zeroFlag))
	assert.False(t, c.isSetFlag(subFlag))
}

func TestRLCASetsCarryFromBit7(t *testing.T) {
	c := newTestCPU(0x07) // RLCA
	c.a = 0x85

	c.Step()

	assert.Equal(t, byte(0x0B), c.a)
	assert.True(t, c.isSetFlag(carryFlag))
	assert.False(t, c.isSetFlag(zeroFlag), "RLCA always clears Z regardless of result")
}

func TestJRTakenAddsOneMCycle(t *testing.T) {
	c := newTestCPU(0x18, 0x05) // JR +5
	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x07), c.pc)
}

func TestJRNegativeOffset(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x00, 0x00, 0x18, 0xFC}) // at 2: JR -4 -> pc=0
	c := New(m)
	c.pc = 2

	c.Step()

	assert.Equal(t, uint16(0x00), c.pc)
}

func TestJRConditionalTakenCostsThreeMCycles(t *testing.T) {
	c := newTestCPU(0x20, 0x02, 0x00, 0x00, 0x00) // JR NZ,+2
	c.resetFlag(zeroFlag)

	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0x04), c.pc)
}

func TestJRConditionalNotTakenCostsTwoMCycles(t *testing.T) {
	c := newTestCPU(0x20, 0x05) // JR NZ,+5
	c.setFlag(zeroFlag)

	cycles := c.Step()

	assert.Equal(t, 2, cycles)
	assert.Equal(t, uint16(0x02), c.pc)
}

func TestPushPopViaOpcodes(t *testing.T) {
	c := newTestCPU(0xC5, 0xD1) // PUSH BC; POP DE
	c.setBC(0xCAFE)
	c.sp = 0xD000

	cycles := c.Step()
	assert.Equal(t, 4, cycles)

	cycles = c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, uint16(0xCAFE), c.getDE())
}

func TestPushPopAFMasksLowNibble(t *testing.T) {
	c := newTestCPU(0xF5, 0xF1) // PUSH AF; POP AF
	c.setAF(0x1234)
	c.sp = 0xD000

	cycles := c.Step()
	assert.Equal(t, 4, cycles)

	cycles = c.Step()
	assert.Equal(t, 3, cycles)
	assert.Equal(t, byte(0x12), c.a)
	assert.Equal(t, byte(0x30), c.f, "F's low nibble must read back as zero regardless of what was pushed")
	assert.Equal(t, uint16(0xD000), c.sp)
}

func TestRSTVectorsToFixedAddressAndPushesPC(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0xFF}) // RST 0x38
	c := New(m)
	c.pc = 0
	c.sp = 0xD000

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0038), c.pc)
	assert.Equal(t, uint16(0xD000-2), c.sp)
	assert.Equal(t, uint16(0x0001), c.popWord(), "pushed return address is the post-opcode PC")
}

func TestCallAndRet(t *testing.T) {
	m := memory.New()
	// at 0x0000: CALL 0x0010 ; at 0x0010: RET
	rom := make([]byte, 0x11)
	rom[0], rom[1], rom[2] = 0xCD, 0x10, 0x00
	rom[0x10] = 0xC9
	m.LoadROM(rom)
	c := New(m)
	c.pc = 0
	c.sp = 0xD000

	cycles := c.Step()
	assert.Equal(t, 6, cycles)
	assert.Equal(t, uint16(0x0010), c.pc)

	cycles = c.Step()
	assert.Equal(t, 4, cycles)
	assert.Equal(t, uint16(0x0003), c.pc)
}

func TestCBBitTest(t *testing.T) {
	c := newTestCPU(0xCB, 0x40) // BIT 0,B
	c.b = 0x00

	cycles := c.Step()

	assert.Equal(t, 2, cycles)
	assert.True(t, c.isSetFlag(zeroFlag))
	assert.True(t, c.isSetFlag(halfCarryFlag))
}

func TestCBBitTestOnHLIndirectCostsThreeMCycles(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0xCB, 0x46}) // BIT 0,(HL)
	m.Write(0xC000, 0x01)
	c := New(m)
	c.pc = 0
	c.setHL(0xC000)

	cycles := c.Step()

	assert.Equal(t, 3, cycles)
	assert.False(t, c.isSetFlag(zeroFlag))
}

func TestCBSetAndResOnHLIndirectCostsFourMCycles(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0xCB, 0xC6}) // SET 0,(HL)
	m.Write(0xC000, 0x00)
	c := New(m)
	c.pc = 0
	c.setHL(0xC000)

	cycles := c.Step()

	assert.Equal(t, 4, cycles)
	assert.Equal(t, byte(0x01), m.Read(0xC000))
}

func TestSwapClearsCarry(t *testing.T) {
	c := newTestCPU(0xCB, 0x37) // SWAP A
	c.a = 0xAB
	c.setFlag(carryFlag)

	c.Step()

	assert.Equal(t, byte(0xBA), c.a)
	assert.False(t, c.isSetFlag(carryFlag))
}

func TestHaltSuspendsStepping(t *testing.T) {
	c := newTestCPU(0x76, 0x00) // HALT; NOP
	c.Step()
	assert.True(t, c.halted)

	cycles := c.Step()
	assert.Equal(t, 1, cycles)
	assert.Equal(t, uint16(0x01), c.pc, "PC should not advance while halted")
}
