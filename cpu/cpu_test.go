package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adrianwong/dmgcore/memory"
)

func TestPowerOnState(t *testing.T) {
	c := New(memory.New())

	assert.Equal(t, uint16(0x0100), c.pc)
	assert.Equal(t, uint16(0xFFFE), c.sp)
	assert.Equal(t, byte(0x01), c.a)
	assert.Equal(t, byte(0xB0), c.f)
	assert.Equal(t, byte(0x13), c.c)
	assert.Equal(t, byte(0xD8), c.e)
	assert.Equal(t, byte(0x01), c.h)
	assert.Equal(t, byte(0x4D), c.l)
	assert.False(t, c.ime)
}

func TestRegisterPairs(t *testing.T) {
	c := New(memory.New())

	c.setBC(0x1234)
	assert.Equal(t, byte(0x12), c.b)
	assert.Equal(t, byte(0x34), c.c)
	assert.Equal(t, uint16(0x1234), c.getBC())

	c.setAF(0xABCD)
	assert.Equal(t, byte(0xAB), c.a)
	assert.Equal(t, byte(0xC0), c.f, "low nibble of F is always masked off")
}

func TestFetchAdvancesPC(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x00, 0x11, 0x22})
	c := New(m)
	c.pc = 0

	assert.Equal(t, byte(0x00), c.fetch())
	assert.Equal(t, uint16(1), c.pc)
	assert.Equal(t, uint16(0x2211), c.fetchWord())
	assert.Equal(t, uint16(3), c.pc)
}

func TestPushPopRoundTrip(t *testing.T) {
	c := New(memory.New())
	c.sp = 0xD000

	c.pushWord(0xBEEF)
	assert.Equal(t, uint16(0xD000-2), c.sp)
	assert.Equal(t, uint16(0xBEEF), c.popWord())
	assert.Equal(t, uint16(0xD000), c.sp)
}

func TestStepNOPTakesOneMCycle(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x00})
	c := New(m)
	c.pc = 0

	assert.Equal(t, 1, c.Step())
	assert.Equal(t, uint16(1), c.pc)
}

func TestStepLD16ImmediateTakesThreeMCycles(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x01, 0x34, 0x12}) // LD BC,0x1234
	c := New(m)
	c.pc = 0

	assert.Equal(t, 3, c.Step())
	assert.Equal(t, uint16(0x1234), c.getBC())
}

func TestIllegalOpcodePanics(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0xD3})
	c := New(m)
	c.pc = 0

	assert.Panics(t, func() { c.Step() })
}

func TestTraceLineFormat(t *testing.T) {
	m := memory.New()
	m.LoadROM([]byte{0x00, 0xC3, 0x50, 0x01})
	c := New(m)
	c.pc = 0

	line := c.TraceLine()
	assert.Contains(t, line, "PC: 00:0000")
	assert.Contains(t, line, "(00 C3 50 01)")
	assert.True(t, strings.HasSuffix(line, "\n"))
}
