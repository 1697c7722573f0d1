package cpu

// executeCB decodes and runs one CB-prefixed opcode. The CB prefix byte and
// this second byte have both already been fetched (2 M-cycles accounted for
// by Step/fetch before this runs); register operands cost nothing more,
// (HL) operands cost one read and, for everything but BIT, one write.
func (c *CPU) executeCB(opcode uint8) {
	x, y, z, _, _ := decodeFields(opcode)

	switch x {
	case 0:
		c.setR8(z, c.rotateShift(y, c.getR8(z)))
	case 1:
		c.bitTest(y, c.getR8(z))
	case 2:
		c.setR8(z, c.getR8(z)&^(1<<y))
	case 3:
		c.setR8(z, c.getR8(z)|(1<<y))
	}
}

// rotateShift applies one of the eight CB rotate/shift operations (RLC RRC
// RL RR SLA SRA SWAP SRL) to value and returns the result.
func (c *CPU) rotateShift(op uint8, value byte) byte {
	var result byte
	var carryOut bool

	switch op {
	case 0: // RLC
		carryOut = value>>7 == 1
		result = value<<1 | value>>7
	case 1: // RRC
		carryOut = value&1 == 1
		result = value>>1 | value<<7
	case 2: // RL
		carryOut = value>>7 == 1
		result = value<<1 | c.flagToBit(carryFlag)
	case 3: // RR
		carryOut = value&1 == 1
		result = value>>1 | c.flagToBit(carryFlag)<<7
	case 4: // SLA
		carryOut = value>>7 == 1
		result = value << 1
	case 5: // SRA
		carryOut = value&1 == 1
		result = value&0x80 | value>>1
	case 6: // SWAP
		result = value<<4 | value>>4
	case 7: // SRL
		carryOut = value&1 == 1
		result = value >> 1
	}

	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	if op == 6 {
		c.resetFlag(carryFlag)
	} else {
		c.setFlagToCondition(carryFlag, carryOut)
	}
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) bitTest(bitIndex uint8, value byte) {
	c.setFlagToCondition(zeroFlag, value&(1<<bitIndex) == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}
