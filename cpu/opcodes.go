package cpu

// execute decodes and runs one unprefixed opcode, already fetched into
// c.currentOpcode. The decomposition follows the classic x/y/z/p/q opcode
// grid: x selects the broad instruction group, z (and p/q, its split) pick
// operands within it.
func (c *CPU) execute(opcode uint8) {
	x, y, z, p, q := decodeFields(opcode)

	switch x {
	case 0:
		c.executeBlockZero(y, z, p, q)
	case 1:
		c.executeLoadGroup(y, z)
	case 2:
		c.aluOp(y, c.getR8(z))
	case 3:
		c.executeBlockThree(y, z, p, q)
	}
}

func (c *CPU) executeBlockZero(y, z, p, q uint8) {
	switch z {
	case 0:
		switch {
		case y == 0: // NOP
		case y == 1: // LD (nn),SP
			address := c.fetchWord()
			c.writeByte(address, byte(c.sp))
			c.writeByte(address+1, byte(c.sp>>8))
		case y == 2: // STOP
			c.fetch() // discard the stray operand byte
		case y == 3: // JR d
			c.jumpRelative()
		default: // JR cc,d
			c.jumpRelativeConditional(y - 4)
		}
	case 1:
		if q == 0 {
			c.setR16(p, c.fetchWord())
		} else {
			c.addHL(c.getR16(p))
		}
	case 2:
		address := c.r16MemAddress(p)
		if q == 0 {
			c.writeByte(address, c.a)
		} else {
			c.a = c.readByte(address)
		}
	case 3:
		c.internalDelay()
		if q == 0 {
			c.setR16(p, c.getR16(p)+1)
		} else {
			c.setR16(p, c.getR16(p)-1)
		}
	case 4:
		c.setR8(y, c.inc8(c.getR8(y)))
	case 5:
		c.setR8(y, c.dec8(c.getR8(y)))
	case 6:
		c.setR8(y, c.fetch())
	case 7:
		c.executeAccumulatorOp(y)
	}
}

func (c *CPU) executeAccumulatorOp(y uint8) {
	switch y {
	case 0:
		c.rlca()
	case 1:
		c.rrca()
	case 2:
		c.rla()
	case 3:
		c.rra()
	case 4:
		c.daa()
	case 5:
		c.cpl()
	case 6:
		c.scf()
	case 7:
		c.ccf()
	}
}

func (c *CPU) executeLoadGroup(y, z uint8) {
	if z == 6 && y == 6 {
		c.halted = true
		return
	}
	c.setR8(y, c.getR8(z))
}

func (c *CPU) executeBlockThree(y, z, p, q uint8) {
	switch z {
	case 0:
		switch {
		case y <= 3:
			c.retConditional(y)
		case y == 4:
			address := uint16(0xFF00) + uint16(c.fetch())
			c.writeByte(address, c.a)
		case y == 5:
			c.addSPImmediate()
		case y == 6:
			address := uint16(0xFF00) + uint16(c.fetch())
			c.a = c.readByte(address)
		default:
			c.loadHLSPImmediate()
		}
	case 1:
		if q == 0 {
			c.setR16Stack(p, c.popWord())
			return
		}
		switch p {
		case 0:
			c.internalDelay()
			c.pc = c.popWord()
		case 1:
			c.internalDelay()
			c.pc = c.popWord()
			c.ime = true
		case 2:
			c.pc = c.getHL()
		default:
			c.internalDelay()
			c.sp = c.getHL()
		}
	case 2:
		switch {
		case y <= 3:
			c.jumpConditional(y)
		case y == 4:
			c.writeByte(uint16(0xFF00)+uint16(c.c), c.a)
		case y == 5:
			c.writeByte(c.fetchWord(), c.a)
		case y == 6:
			c.a = c.readByte(uint16(0xFF00) + uint16(c.c))
		default:
			c.a = c.readByte(c.fetchWord())
		}
	case 3:
		switch y {
		case 0:
			c.internalDelay()
			c.pc = c.fetchWord()
		case 6:
			c.ime = false
			c.eiPending = false
		case 7:
			c.eiPending = true
		}
		// y==1 (CB prefix) is intercepted in Step before execute is called.
	case 4:
		if y <= 3 {
			c.callConditional(y)
		}
	case 5:
		if q == 0 {
			c.internalDelay()
			c.pushWord(c.getR16Stack(p))
		} else if p == 0 {
			address := c.fetchWord()
			c.internalDelay()
			c.pushWord(c.pc)
			c.pc = address
		}
	case 6:
		c.aluOp(y, c.fetch())
	case 7:
		c.internalDelay()
		c.pushWord(c.pc)
		c.pc = uint16(y) * 8
	}
}

func (c *CPU) jumpRelative() {
	offset := int8(c.fetch())
	c.internalDelay()
	c.pc = uint16(int32(c.pc) + int32(offset))
}

func (c *CPU) jumpRelativeConditional(condIndex uint8) {
	offset := int8(c.fetch())
	if c.checkCond(condIndex) {
		c.internalDelay()
		c.pc = uint16(int32(c.pc) + int32(offset))
	}
}

func (c *CPU) jumpConditional(condIndex uint8) {
	address := c.fetchWord()
	if c.checkCond(condIndex) {
		c.internalDelay()
		c.pc = address
	}
}

func (c *CPU) callConditional(condIndex uint8) {
	address := c.fetchWord()
	if c.checkCond(condIndex) {
		c.internalDelay()
		c.pushWord(c.pc)
		c.pc = address
	}
}

func (c *CPU) retConditional(condIndex uint8) {
	c.internalDelay()
	if c.checkCond(condIndex) {
		c.pc = c.popWord()
		c.internalDelay()
	}
}

func (c *CPU) addSPImmediate() {
	offset := int8(c.fetch())
	c.sp = c.addSPOffset(offset)
	c.internalDelay()
	c.internalDelay()
}

func (c *CPU) loadHLSPImmediate() {
	offset := int8(c.fetch())
	c.setHL(c.addSPOffset(offset))
	c.internalDelay()
}

// addSPOffset computes SP+e and sets H/C/Z/N the way real hardware does:
// the flags come from adding the unsigned byte form of e to the low byte of
// SP, even though the actual 16-bit result sign-extends e.
func (c *CPU) addSPOffset(offset int8) uint16 {
	spLow := byte(c.sp)
	e := byte(offset)
	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (spLow&0x0F)+(e&0x0F) > 0x0F)
	c.setFlagToCondition(carryFlag, uint16(spLow)+uint16(e) > 0xFF)
	return uint16(int32(c.sp) + int32(offset))
}

func (c *CPU) addHL(value uint16) {
	hl := c.getHL()
	result := uint32(hl) + uint32(value)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (hl&0x0FFF)+(value&0x0FFF) > 0x0FFF)
	c.setFlagToCondition(carryFlag, result > 0xFFFF)
	c.setHL(uint16(result))
	c.internalDelay()
}

// aluOp applies one of the eight accumulator ALU operations (the same table
// used by block-2 register ops and block-3 immediate ops) to A.
func (c *CPU) aluOp(op, operand byte) {
	switch op {
	case 0:
		c.a = c.add8(operand, false)
	case 1:
		c.a = c.add8(operand, c.isSetFlag(carryFlag))
	case 2:
		c.a = c.sub8(operand, false)
	case 3:
		c.a = c.sub8(operand, c.isSetFlag(carryFlag))
	case 4:
		c.a = c.and8(operand)
	case 5:
		c.a = c.xor8(operand)
	case 6:
		c.a = c.or8(operand)
	case 7:
		c.sub8(operand, false) // CP: flags only, discard the result
	}
}

func (c *CPU) add8(value byte, carryIn bool) byte {
	var carry byte
	if carryIn {
		carry = 1
	}
	result := uint16(c.a) + uint16(value) + uint16(carry)
	c.setFlagToCondition(halfCarryFlag, (c.a&0x0F)+(value&0x0F)+carry > 0x0F)
	c.setFlagToCondition(carryFlag, result > 0xFF)
	c.resetFlag(subFlag)
	c.setFlagToCondition(zeroFlag, byte(result) == 0)
	return byte(result)
}

func (c *CPU) sub8(value byte, carryIn bool) byte {
	var carry byte
	if carryIn {
		carry = 1
	}
	result := int16(c.a) - int16(value) - int16(carry)
	c.setFlagToCondition(halfCarryFlag, int16(c.a&0x0F)-int16(value&0x0F)-int16(carry) < 0)
	c.setFlagToCondition(carryFlag, result < 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(zeroFlag, byte(result) == 0)
	return byte(result)
}

func (c *CPU) and8(value byte) byte {
	result := c.a & value
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) or8(value byte) byte {
	result := c.a | value
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) xor8(value byte) byte {
	result := c.a ^ value
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) inc8(value byte) byte {
	result := value + 1
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0x0F)
	c.resetFlag(subFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) dec8(value byte) byte {
	result := value - 1
	c.setFlagToCondition(halfCarryFlag, value&0x0F == 0x00)
	c.setFlag(subFlag)
	c.setFlagToCondition(zeroFlag, result == 0)
	return result
}

func (c *CPU) rlca() {
	carry := c.a>>7 == 1
	c.a = c.a<<1 | c.a>>7
	c.clearAllFlags()
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) rrca() {
	carry := c.a&1 == 1
	c.a = c.a>>1 | c.a<<7
	c.clearAllFlags()
	c.setFlagToCondition(carryFlag, carry)
}

func (c *CPU) rla() {
	carryIn := c.flagToBit(carryFlag)
	carryOut := c.a>>7 == 1
	c.a = c.a<<1 | carryIn
	c.clearAllFlags()
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) rra() {
	carryIn := c.flagToBit(carryFlag)
	carryOut := c.a&1 == 1
	c.a = c.a>>1 | carryIn<<7
	c.clearAllFlags()
	c.setFlagToCondition(carryFlag, carryOut)
}

func (c *CPU) clearAllFlags() {
	c.f = 0
}

// daa adjusts A into packed BCD after an 8-bit add/sub, following the
// standard correction table keyed off N, H and C.
func (c *CPU) daa() {
	adjust := byte(0)
	carry := c.isSetFlag(carryFlag)

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			adjust += 0x06
		}
		if carry {
			adjust += 0x60
		}
		c.a -= adjust
	} else {
		if c.isSetFlag(halfCarryFlag) || c.a&0x0F > 0x09 {
			adjust += 0x06
		}
		if carry || c.a > 0x99 {
			adjust += 0x60
			carry = true
		}
		c.a += adjust
	}

	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(zeroFlag, c.a == 0)
}

func (c *CPU) cpl() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}
