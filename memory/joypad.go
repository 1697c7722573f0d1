package memory

import "github.com/adrianwong/dmgcore/bit"

// JoypadKey identifies one of the eight Game Boy input lines.
type JoypadKey uint8

const (
	JoypadRight JoypadKey = iota
	JoypadLeft
	JoypadUp
	JoypadDown
	JoypadA
	JoypadB
	JoypadSelect
	JoypadStart
)

// joypad tracks the P1 (0xFF00) register: a selector nibble written by the
// CPU plus the two independent input nibbles (pressed = 0) it muxes onto the
// low nibble on read.
type joypad struct {
	selectDpad    bool // bit4, active low on the real register
	selectButtons bool // bit5, active low on the real register
	dpad          uint8
	buttons       uint8
}

func newJoypad() *joypad {
	return &joypad{dpad: 0x0F, buttons: 0x0F}
}

// writeSelect stores the selection bits written to P1 (bits 4-5 only).
func (j *joypad) writeSelect(value uint8) {
	j.selectDpad = !bit.IsSet(4, value)
	j.selectButtons = !bit.IsSet(5, value)
}

// read returns the full P1 byte: bits 6-7 always 1, bits 4-5 the stored
// selection (inverted back), bits 0-3 the muxed, active-low button state.
func (j *joypad) read() uint8 {
	result := uint8(0xC0)
	if !j.selectDpad {
		result |= 1 << 4
	}
	if !j.selectButtons {
		result |= 1 << 5
	}

	switch {
	case j.selectDpad && j.selectButtons:
		result |= j.dpad & j.buttons & 0x0F
	case j.selectDpad:
		result |= j.dpad & 0x0F
	case j.selectButtons:
		result |= j.buttons & 0x0F
	default:
		result |= 0x0F
	}

	return result
}

// press clears the bit for key and reports whether that pulled a P1 input
// line low in the value P1 currently reads (used to raise the joypad
// interrupt). A key whose group is not selected reports false.
func (j *joypad) press(key JoypadKey) bool {
	before := j.read()
	j.setKey(key, false)
	return before != j.read()
}

func (j *joypad) release(key JoypadKey) {
	j.setKey(key, true)
}

func (j *joypad) setKey(key JoypadKey, released bool) {
	var group *uint8
	var bitIndex uint8

	switch key {
	case JoypadRight:
		group, bitIndex = &j.dpad, 0
	case JoypadLeft:
		group, bitIndex = &j.dpad, 1
	case JoypadUp:
		group, bitIndex = &j.dpad, 2
	case JoypadDown:
		group, bitIndex = &j.dpad, 3
	case JoypadA:
		group, bitIndex = &j.buttons, 0
	case JoypadB:
		group, bitIndex = &j.buttons, 1
	case JoypadSelect:
		group, bitIndex = &j.buttons, 2
	case JoypadStart:
		group, bitIndex = &j.buttons, 3
	default:
		return
	}

	if released {
		*group = bit.Set(bitIndex, *group)
	} else {
		*group = bit.Reset(bitIndex, *group)
	}
}
