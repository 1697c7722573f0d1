// Package ppu implements the bus-visible register file and VRAM/OAM storage
// of the DMG picture processing unit. Scanline composition and host display
// output are out of scope here; only the register semantics the CPU can
// observe through the bus are modeled: LCDC/STAT/SCY/SCX/LY/LYC/BGP/OBP0/
// OBP1/WY/WX, backed VRAM/OAM storage, and the mode-gated access rules that
// make those reads/writes observably correct to a driving CPU.
package ppu

import (
	"github.com/adrianwong/dmgcore/addr"
	"github.com/adrianwong/dmgcore/bit"
)

// Mode is the PPU's current stage, mirrored in STAT bits 1-0.
type Mode uint8

const (
	// ModeHBlank (0): horizontal blank, CPU can access VRAM and OAM.
	ModeHBlank Mode = 0
	// ModeVBlank (1): vertical blank, CPU can access VRAM and OAM.
	ModeVBlank Mode = 1
	// ModeOAMScan (2): PPU reads OAM, CPU access to OAM is blocked.
	ModeOAMScan Mode = 2
	// ModeVRAMScan (3): PPU reads VRAM, CPU access to VRAM and OAM is blocked.
	ModeVRAMScan Mode = 3
)

// T-cycle budgets for one scanline's mode sequence (OAM scan, VRAM scan,
// HBlank) and the 10 extra VBlank lines; matches the standard DMG timing.
const (
	oamScanCycles  = 80
	vramScanCycles = 172
	hblankCycles   = 204
	scanlineCycles = oamScanCycles + vramScanCycles + hblankCycles
	visibleLines   = 144
	totalLines     = 154
)

const (
	statLYCIrq    uint8 = 6
	statOAMIrq    uint8 = 5
	statVBlankIrq uint8 = 4
	statHBlankIrq uint8 = 3
	statCoincide  uint8 = 2
)

// Registers is the PPU's bus-visible register file plus its backing VRAM
// and OAM storage.
type Registers struct {
	vram [0x2000]byte
	oam  [0xA0]byte

	lcdc, stat, scy, scx byte
	ly, lyc              byte
	bgp, obp0, obp1      byte
	wy, wx               byte

	mode         Mode
	cycleCounter int

	// RequestInterrupt raises the named interrupt's IF bit; wired by the MMU.
	RequestInterrupt func(addr.Interrupt)
}

// New returns a register file in its post-power-on state: LCD off, mode 0
// (HBlank), so VRAM and OAM are fully accessible until the ROM enables the
// display via LCDC bit 7.
func New() *Registers {
	return &Registers{stat: 0x80}
}

func (r *Registers) requestInterrupt(i addr.Interrupt) {
	if r.RequestInterrupt != nil {
		r.RequestInterrupt(i)
	}
}

// Tick advances the scanline/mode state machine by mCycles M-cycles. It
// never touches pixel data: only LY, STAT's mode bits and coincidence flag,
// and the associated STAT/VBlank interrupts.
func (r *Registers) Tick(mCycles int) {
	if !bit.IsSet(7, r.lcdc) {
		return
	}

	r.cycleCounter += mCycles * 4

	for {
		switch r.mode {
		case ModeOAMScan:
			if r.cycleCounter < oamScanCycles {
				return
			}
			r.cycleCounter -= oamScanCycles
			r.setMode(ModeVRAMScan)
		case ModeVRAMScan:
			if r.cycleCounter < vramScanCycles {
				return
			}
			r.cycleCounter -= vramScanCycles
			r.setMode(ModeHBlank)
			if bit.IsSet(statHBlankIrq, r.stat) {
				r.requestInterrupt(addr.LCDSTATInterrupt)
			}
		case ModeHBlank:
			if r.cycleCounter < hblankCycles {
				return
			}
			r.cycleCounter -= hblankCycles
			r.setLY(r.ly + 1)
			if int(r.ly) == visibleLines {
				r.setMode(ModeVBlank)
				r.requestInterrupt(addr.VBlankInterrupt)
				if bit.IsSet(statVBlankIrq, r.stat) {
					r.requestInterrupt(addr.LCDSTATInterrupt)
				}
			} else {
				r.setMode(ModeOAMScan)
				if bit.IsSet(statOAMIrq, r.stat) {
					r.requestInterrupt(addr.LCDSTATInterrupt)
				}
			}
		case ModeVBlank:
			if r.cycleCounter < scanlineCycles {
				return
			}
			r.cycleCounter -= scanlineCycles
			if int(r.ly)+1 >= totalLines {
				r.setLY(0)
				r.setMode(ModeOAMScan)
				if bit.IsSet(statOAMIrq, r.stat) {
					r.requestInterrupt(addr.LCDSTATInterrupt)
				}
			} else {
				r.setLY(r.ly + 1)
			}
		}
	}
}

func (r *Registers) setMode(mode Mode) {
	r.mode = mode
	r.stat = (r.stat &^ 0x03) | byte(mode)
}

func (r *Registers) setLY(line byte) {
	r.ly = line
	coincidence := r.ly == r.lyc
	if coincidence {
		r.stat = bit.Set(statCoincide, r.stat)
	} else {
		r.stat = bit.Reset(statCoincide, r.stat)
	}
	if coincidence && bit.IsSet(statLYCIrq, r.stat) {
		r.requestInterrupt(addr.LCDSTATInterrupt)
	}
}

// ReadVRAM returns 0xFF while the PPU is in mode 3, mirroring hardware's
// refusal to let the CPU see VRAM while the PPU is reading it.
func (r *Registers) ReadVRAM(address uint16) byte {
	if r.mode == ModeVRAMScan {
		return 0xFF
	}
	return r.vram[address]
}

// WriteVRAM silently drops writes while the PPU is in mode 3.
func (r *Registers) WriteVRAM(address uint16, value byte) {
	if r.mode == ModeVRAMScan {
		return
	}
	r.vram[address] = value
}

// ReadOAM returns 0xFF while the PPU is scanning OAM or VRAM (modes 2-3).
func (r *Registers) ReadOAM(address uint16) byte {
	if r.mode == ModeOAMScan || r.mode == ModeVRAMScan {
		return 0xFF
	}
	return r.oam[address]
}

// WriteOAM silently drops writes while the PPU is in mode 2 or 3.
func (r *Registers) WriteOAM(address uint16, value byte) {
	if r.mode == ModeOAMScan || r.mode == ModeVRAMScan {
		return
	}
	r.oam[address] = value
}

// DMAWriteOAM stores an OAM byte regardless of the current mode. OAM DMA has
// priority over the PPU's scan on real hardware, so the bus-level DMA copy
// must not be subject to the CPU-side access gating.
func (r *Registers) DMAWriteOAM(address uint16, value byte) {
	r.oam[address] = value
}

// Read returns the value of one of the LCDC..WX registers (0xFF40-0xFF4B).
// A read of 0xFF46 (DMA) returns 0xFF; the DMA copy itself, triggered by a
// write, is handled at the bus level.
func (r *Registers) Read(address uint16) byte {
	switch address {
	case addr.LCDC:
		return r.lcdc
	case addr.STAT:
		return r.stat | 0x80
	case addr.SCY:
		return r.scy
	case addr.SCX:
		return r.scx
	case addr.LY:
		return r.ly
	case addr.LYC:
		return r.lyc
	case addr.BGP:
		return r.bgp
	case addr.OBP0:
		return r.obp0
	case addr.OBP1:
		return r.obp1
	case addr.WY:
		return r.wy
	case addr.WX:
		return r.wx
	case addr.DMA:
		return 0xFF
	default:
		return 0xFF
	}
}

func (r *Registers) Write(address uint16, value byte) {
	switch address {
	case addr.LCDC:
		r.lcdc = value
	case addr.STAT:
		// Bits 0-2 (mode, coincidence) are read-only; bit 7 always reads 1.
		r.stat = (r.stat & 0x07) | (value & 0xF8) | 0x80
	case addr.SCY:
		r.scy = value
	case addr.SCX:
		r.scx = value
	case addr.LY:
		// Read-only.
	case addr.LYC:
		r.lyc = value
		r.setLY(r.ly)
	case addr.BGP:
		r.bgp = value
	case addr.OBP0:
		r.obp0 = value
	case addr.OBP1:
		r.obp1 = value
	case addr.WY:
		r.wy = value
	case addr.WX:
		r.wx = value
	}
}
