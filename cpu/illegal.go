package cpu

import "fmt"

// IllegalOpcodeError reports execution reaching one of the eleven unprefixed
// byte values the Sharp LR35902 never decodes to an instruction. The CPU
// panics with this type rather than returning an error: on real hardware
// this locks up the chip, and callers that want to treat it as recoverable
// can recover() around Step.
type IllegalOpcodeError struct {
	Opcode uint8
	PC     uint16
}

func (e IllegalOpcodeError) Error() string {
	return fmt.Sprintf("cpu: illegal opcode 0x%02X at PC=0x%04X", e.Opcode, e.PC)
}

var illegalOpcodes = map[uint8]bool{
	0xD3: true, 0xDB: true, 0xDD: true, 0xE3: true,
	0xE4: true, 0xEB: true, 0xEC: true, 0xED: true,
	0xF4: true, 0xFC: true, 0xFD: true,
}

func isIllegalOpcode(opcode uint8) bool {
	return illegalOpcodes[opcode]
}
