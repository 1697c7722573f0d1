// Package memory implements the DMG memory bus: address decode, the I/O
// register file, ROM loading, and the timer/joypad/serial devices it hosts.
package memory

import (
	"fmt"
	"log/slog"

	"github.com/adrianwong/dmgcore/addr"
	"github.com/adrianwong/dmgcore/ppu"
	"github.com/adrianwong/dmgcore/serial"
)

// romSize is the flat, bank-less ROM this scope models (MBC logic is out of
// scope; LoadROM rejects a larger image).
const romSize = 0x8000

// MMU is the Game Boy memory bus. It owns ROM/SRAM/WRAM/HRAM storage,
// delegates VRAM, OAM and PPU-register addresses to ppu.Registers, and hosts the timer,
// joypad and serial test-tap devices.
type MMU struct {
	rom  [romSize]byte
	wram [0x2000]byte
	sram [0x2000]byte
	hram [0x7F]byte

	ifReg byte // lower 5 bits meaningful, upper 3 always read as 1
	ie    byte

	// unmodeledIO backs addresses with no specified side effects (audio,
	// wave RAM, etc.): plain read/write storage, open-bus-like.
	unmodeledIO [0x100]byte

	joypad *joypad
	timer  *Timer
	ppu    *ppu.Registers
	serial *serial.Sink
}

// New returns an MMU in its power-on state with no ROM loaded.
func New() *MMU {
	m := &MMU{
		joypad: newJoypad(),
		timer:  NewTimer(),
		ppu:    ppu.New(),
	}
	m.timer.RequestInterrupt = func() { m.RequestInterrupt(addr.TimerInterrupt) }
	m.ppu.RequestInterrupt = m.RequestInterrupt
	return m
}

// SetSerialSink installs the test-tap sink that 0xFF01 writes are forwarded
// to; the CLI wires this to stdout.
func (m *MMU) SetSerialSink(sink *serial.Sink) {
	m.serial = sink
}

// PPU exposes the PPU register file so the owning Bus can tick it.
func (m *MMU) PPU() *ppu.Registers {
	return m.ppu
}

// Timer exposes the timer so the owning Bus can tick it.
func (m *MMU) TimerUnit() *Timer {
	return m.timer
}

// LoadROM copies up to 32 KiB of data into the ROM region at offset 0. A
// ROM larger than 32 KiB is rejected: this core models a flat, bank-less
// cartridge and has nowhere to put the remainder.
func (m *MMU) LoadROM(data []byte) error {
	if len(data) > romSize {
		return fmt.Errorf("memory: ROM too large for this core (%d bytes, max %d)", len(data), romSize)
	}
	copy(m.rom[:], data)
	return nil
}

// RequestInterrupt sets the IF bit for the given interrupt.
func (m *MMU) RequestInterrupt(interrupt addr.Interrupt) {
	m.ifReg |= byte(interrupt) & 0x1F
}

// Tick advances the timer and PPU register mode machine by the given number
// of M-cycles. Called once per CPU instruction by the Bus.
func (m *MMU) Tick(mCycles int) {
	m.timer.Tick(mCycles)
	m.ppu.Tick(mCycles)
}

// alwaysFF is the set of addresses that read as 0xFF and silently discard
// writes: unimplemented CGB/APU-adjacent registers on DMG hardware.
func alwaysFF(a uint16) bool {
	switch {
	case a == 0xFF03:
		return true
	case a >= 0xFF08 && a <= 0xFF0E:
		return true
	case a == 0xFF15:
		return true
	case a == 0xFF1F:
		return true
	case a >= 0xFF27 && a <= 0xFF2F:
		return true
	case a >= 0xFF4C && a <= 0xFF4E:
		return true
	case a >= 0xFF56 && a <= 0xFF67:
		return true
	case a >= 0xFF6C && a <= 0xFF6F:
		return true
	default:
		return false
	}
}

// Read returns the byte at address, routing through the region/register
// decode described by the memory map. Reads are total: every address
// returns a value, never an error.
func (m *MMU) Read(address uint16) byte {
	switch {
	case address <= 0x7FFF:
		return m.rom[address]
	case address >= 0x8000 && address <= 0x9FFF:
		return m.ppu.ReadVRAM(address - 0x8000)
	case address >= 0xA000 && address <= 0xBFFF:
		return m.sram[address-0xA000]
	case address >= 0xC000 && address <= 0xDFFF:
		return m.wram[address-0xC000]
	case address >= 0xE000 && address <= 0xFDFF:
		return m.wram[address-0xE000]
	case address >= 0xFE00 && address <= 0xFE9F:
		return m.ppu.ReadOAM(address - 0xFE00)
	case address >= 0xFEA0 && address <= 0xFEFF:
		return 0x00
	case address == addr.IE:
		return m.ie
	case address >= 0xFF80 && address <= 0xFFFE:
		return m.hram[address-0xFF80]
	default:
		return m.readIO(address)
	}
}

func (m *MMU) readIO(address uint16) byte {
	if alwaysFF(address) {
		return 0xFF
	}

	switch address {
	case addr.P1:
		return m.joypad.read()
	case addr.SB, addr.SC:
		return 0xFF
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		return m.timer.Read(address)
	case addr.IF:
		return m.ifReg | 0xE0
	case addr.LCDC, addr.STAT, addr.SCY, addr.SCX, addr.LY, addr.LYC,
		addr.BGP, addr.OBP0, addr.OBP1, addr.WY, addr.WX, addr.DMA:
		return m.ppu.Read(address)
	default:
		// Audio/wave RAM and any other unmodeled IO: open-bus-like, no side
		// effects, reads whatever was last written (or 0 if never written).
		return m.unmodeledIO[address-0xFF00]
	}
}

// Write stores value at address, dropping writes to read-only regions and
// addresses in the always-0xFF set. Writes never fail.
func (m *MMU) Write(address uint16, value byte) {
	switch {
	case address <= 0x7FFF:
		// ROM is read-only; no MBC logic in this scope.
		slog.Debug("write to ROM dropped", "addr", fmt.Sprintf("0x%04X", address))
	case address >= 0x8000 && address <= 0x9FFF:
		m.ppu.WriteVRAM(address-0x8000, value)
	case address >= 0xA000 && address <= 0xBFFF:
		m.sram[address-0xA000] = value
	case address >= 0xC000 && address <= 0xDFFF:
		m.wram[address-0xC000] = value
	case address >= 0xE000 && address <= 0xFDFF:
		m.wram[address-0xE000] = value
	case address >= 0xFE00 && address <= 0xFE9F:
		m.ppu.WriteOAM(address-0xFE00, value)
	case address >= 0xFEA0 && address <= 0xFEFF:
		// Prohibited area: writes ignored.
	case address == addr.IE:
		m.ie = value & 0x1F
	case address >= 0xFF80 && address <= 0xFFFE:
		m.hram[address-0xFF80] = value
	default:
		m.writeIO(address, value)
	}
}

func (m *MMU) writeIO(address uint16, value byte) {
	if alwaysFF(address) {
		return
	}

	switch address {
	case addr.P1:
		m.joypad.writeSelect(value)
	case addr.SB:
		if m.serial != nil {
			m.serial.Write(value)
		}
	case addr.SC:
		// No transfer state machine is modeled; writes are accepted but inert.
	case addr.DIV, addr.TIMA, addr.TMA, addr.TAC:
		m.timer.Write(address, value)
	case addr.IF:
		m.ifReg = value & 0x1F
	case addr.DMA:
		m.doDMATransfer(value)
	case addr.LCDC, addr.STAT, addr.SCY, addr.SCX, addr.LYC,
		addr.BGP, addr.OBP0, addr.OBP1, addr.WY, addr.WX:
		m.ppu.Write(address, value)
	default:
		m.unmodeledIO[address-0xFF00] = value
	}
}

// doDMATransfer copies 160 bytes from value<<8 into OAM, as a real OAM DMA
// would; unlike real hardware this core performs the copy instantly rather
// than over 160 M-cycles, since CPU/PPU timing interleaving during DMA is
// out of this core's scope.
func (m *MMU) doDMATransfer(value byte) {
	source := uint16(value) << 8
	for i := uint16(0); i < 0xA0; i++ {
		m.ppu.DMAWriteOAM(i, m.Read(source+i))
	}
}

// HandleKeyPress marks key as pressed and raises the joypad interrupt when
// the press pulls a currently selected P1 input line from high to low,
// matching real hardware's edge-triggered IRQ.
func (m *MMU) HandleKeyPress(key JoypadKey) {
	if m.joypad.press(key) {
		m.RequestInterrupt(addr.JoypadInterrupt)
	}
}

// HandleKeyRelease marks key as released.
func (m *MMU) HandleKeyRelease(key JoypadKey) {
	m.joypad.release(key)
}
