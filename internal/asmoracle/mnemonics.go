package asmoracle

// mnemonicEncoder assembles one already-parsed instruction line and returns
// its bytes, or explains why the operand list doesn't fit that mnemonic.
type mnemonicEncoder func(text string, operands []operand) ([]byte, error)

// mnemonics holds one encoder per supported instruction, covering the
// mnemonic set SPEC_FULL.md §6.2 names: register, memory ("[reg]",
// "[reg+disp]", "[rip+disp]"), and immediate operand forms, with REX.W
// emitted exactly when a 64-bit register name is used.
var mnemonics = map[string]mnemonicEncoder{
	"ret":  fixed(0xC3),
	"nop":  fixed(0x90),
	"int3": fixed(0xCC),

	"push": encodePushPop(0x50),
	"pop":  encodePushPop(0x58),

	"inc": encodeUnaryRM(0xFF, 0),
	"dec": encodeUnaryRM(0xFF, 1),
	"not": encodeUnaryRM(0xF7, 2),
	"neg": encodeUnaryRM(0xF7, 3),

	"jmp":  encodeIndirectControl(4),
	"call": encodeIndirectControl(2),

	"lea":  encodeLea,
	"xchg": encodeXchg,
	"mov":  encodeMov,

	"add": encodeALU(aluOp{mr: 0x01, rm: 0x03, ext: 0}),
	"or":  encodeALU(aluOp{mr: 0x09, rm: 0x0B, ext: 1}),
	"and": encodeALU(aluOp{mr: 0x21, rm: 0x23, ext: 4}),
	"sub": encodeALU(aluOp{mr: 0x29, rm: 0x2B, ext: 5}),
	"xor": encodeALU(aluOp{mr: 0x31, rm: 0x33, ext: 6}),
	"cmp": encodeALU(aluOp{mr: 0x39, rm: 0x3B, ext: 7}),

	"test": encodeTest,
}

// fixed returns an encoder for a no-operand, single-opcode-byte
// instruction (ret, nop, int3).
func fixed(opcode byte) mnemonicEncoder {
	return func(text string, operands []operand) ([]byte, error) {
		if len(operands) != 0 {
			return nil, assemblyErrorf(text, "expects no operands")
		}
		return []byte{opcode}, nil
	}
}

// encodePushPop handles "push reg" / "pop reg": opcode base + low 3 bits of
// the register encoding, with REX.B when the register is extended. Neither
// instruction needs REX.W — their operand size in 64-bit mode defaults to
// 64 bits already.
func encodePushPop(base byte) mnemonicEncoder {
	return func(text string, operands []operand) ([]byte, error) {
		if len(operands) != 1 || operands[0].kind != operandRegister {
			return nil, assemblyErrorf(text, "expects one register operand")
		}
		reg := operands[0].reg
		out := []byte{}
		if reg.extended() {
			out = append(out, rexPrefix{b: true}.byte())
		}
		out = append(out, base+reg.low3())
		return out, nil
	}
}

// encodeUnaryRM handles the "/digit r/m" family (inc, dec, not, neg) over a
// register or memory operand.
func encodeUnaryRM(opcode, ext byte) mnemonicEncoder {
	return func(text string, operands []operand) ([]byte, error) {
		if len(operands) != 1 {
			return nil, assemblyErrorf(text, "expects one operand")
		}
		return encodeSingleRM(opcode, ext, operands[0])
	}
}

// encodeIndirectControl handles "jmp"/"call" against a register or memory
// target: opcode 0xFF /digit, register-direct or memory addressing. This
// encoder only ever emits the indirect (r/m64) forms — relative rel32
// targets aren't reachable from the pattern grammar, which has no label
// syntax (spec.md §6).
func encodeIndirectControl(ext byte) mnemonicEncoder {
	return func(text string, operands []operand) ([]byte, error) {
		if len(operands) != 1 {
			return nil, assemblyErrorf(text, "expects one operand")
		}
		return encodeSingleRM(0xFF, ext, operands[0])
	}
}

// encodeSingleRM emits "REX? opcode ModRM(/ext, r/m)[SIB][disp]" for a
// single register-or-memory operand.
func encodeSingleRM(opcode, ext byte, op operand) ([]byte, error) {
	switch op.kind {
	case operandRegister:
		var rex rexPrefix
		rex.w = op.reg.width == 64
		rex.b = op.reg.extended()
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, opcode, modrm(3, ext, op.reg.low3()))
		return out, nil
	case operandMemory:
		memBytes, x, b := encodeMemoryOperand(ext, op)
		// No REX.W: jmp/call near-indirect and inc/dec/neg/not over a bare
		// memory operand (no size specifier in this grammar) all default to
		// 64-bit addressing without needing the W bit — matches spec.md S1's
		// expected "FF 25 ..." replacement, which carries no REX prefix.
		rex := rexPrefix{x: x, b: b}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, opcode)
		out = append(out, memBytes...)
		return out, nil
	default:
		return nil, assemblyErrorf("", "operand must be a register or memory reference")
	}
}

// encodeLea handles "lea reg, [mem]": opcode 0x8D /r, RM form. The
// destination register's width decides REX.W.
func encodeLea(text string, operands []operand) ([]byte, error) {
	if len(operands) != 2 || operands[0].kind != operandRegister || operands[1].kind != operandMemory {
		return nil, assemblyErrorf(text, "expects a register destination and a memory source")
	}
	dst := operands[0].reg
	memBytes, x, b := encodeMemoryOperand(dst.low3(), operands[1])
	rex := rexPrefix{w: dst.width == 64, r: dst.extended(), x: x, b: b}
	out := []byte{}
	if rex.emit() {
		out = append(out, rex.byte())
	}
	out = append(out, 0x8D)
	out = append(out, memBytes...)
	return out, nil
}

// encodeXchg handles "xchg reg, reg" and "xchg reg, [mem]": opcode 0x87 /r.
func encodeXchg(text string, operands []operand) ([]byte, error) {
	if len(operands) != 2 || operands[0].kind != operandRegister {
		return nil, assemblyErrorf(text, "expects a register first operand")
	}
	dst := operands[0].reg
	switch operands[1].kind {
	case operandRegister:
		src := operands[1].reg
		rex := rexPrefix{w: dst.width == 64, r: src.extended(), b: dst.extended()}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x87, modrm(3, src.low3(), dst.low3()))
		return out, nil
	case operandMemory:
		memBytes, x, b := encodeMemoryOperand(dst.low3(), operands[1])
		rex := rexPrefix{w: dst.width == 64, x: x, b: b}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x87)
		out = append(out, memBytes...)
		return out, nil
	default:
		return nil, assemblyErrorf(text, "second operand must be a register or memory reference")
	}
}

// encodeMov handles "mov reg, reg", "mov reg, [mem]", "mov [mem], reg", and
// "mov reg, imm". The immediate form picks between the r/m64, imm32 form
// (0xC7 /0) and the r64, imm64 form (0xB8+r) by the literal's required
// width — the only place in this encoder where a single mnemonic offers
// two structurally distinct encodings for the same operand kinds, which is
// exactly what lets the encoding discoverer observe two widths for a
// "mov $reg:r,$num:n" pattern (spec.md §4.C).
func encodeMov(text string, operands []operand) ([]byte, error) {
	if len(operands) != 2 {
		return nil, assemblyErrorf(text, "expects two operands")
	}
	dst, src := operands[0], operands[1]

	switch {
	case dst.kind == operandRegister && src.kind == operandRegister:
		rex := rexPrefix{w: dst.reg.width == 64, r: src.reg.extended(), b: dst.reg.extended()}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x89, modrm(3, src.reg.low3(), dst.reg.low3()))
		return out, nil

	case dst.kind == operandRegister && src.kind == operandMemory:
		memBytes, x, b := encodeMemoryOperand(dst.reg.low3(), src)
		rex := rexPrefix{w: dst.reg.width == 64, r: dst.reg.extended(), x: x, b: b}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x8B)
		out = append(out, memBytes...)
		return out, nil

	case dst.kind == operandMemory && src.kind == operandRegister:
		memBytes, x, b := encodeMemoryOperand(src.reg.low3(), dst)
		rex := rexPrefix{w: src.reg.width == 64, r: src.reg.extended(), x: x, b: b}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x89)
		out = append(out, memBytes...)
		return out, nil

	case dst.kind == operandRegister && src.kind == operandImmediate:
		if src.immWidth == 8 {
			rex := rexPrefix{w: true, b: dst.reg.extended()}
			out := []byte{rex.byte(), 0xB8 + dst.reg.low3()}
			return append(out, le64(src.imm)...), nil
		}
		rex := rexPrefix{w: dst.reg.width == 64, b: dst.reg.extended()}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0xC7, modrm(3, 0, dst.reg.low3()))
		return append(out, le32(src.imm)...), nil

	default:
		return nil, assemblyErrorf(text, "unsupported mov operand combination")
	}
}

// aluOp holds the two-direction opcode pair and /digit extension for one
// arithmetic/logic mnemonic (add, or, and, sub, xor, cmp): mr is "r/m, reg"
// (destination in r/m), rm is "reg, r/m" (destination in reg).
type aluOp struct {
	mr, rm, ext byte
}

// encodeALU handles the shared reg/reg, reg/mem, mem/reg, and reg/imm
// shapes of the one- and two-byte-opcode ALU instructions.
func encodeALU(op aluOp) mnemonicEncoder {
	return func(text string, operands []operand) ([]byte, error) {
		if len(operands) != 2 {
			return nil, assemblyErrorf(text, "expects two operands")
		}
		dst, src := operands[0], operands[1]

		switch {
		case dst.kind == operandRegister && src.kind == operandRegister:
			rex := rexPrefix{w: dst.reg.width == 64, r: src.reg.extended(), b: dst.reg.extended()}
			out := []byte{}
			if rex.emit() {
				out = append(out, rex.byte())
			}
			out = append(out, op.mr, modrm(3, src.reg.low3(), dst.reg.low3()))
			return out, nil

		case dst.kind == operandRegister && src.kind == operandMemory:
			memBytes, x, b := encodeMemoryOperand(dst.reg.low3(), src)
			rex := rexPrefix{w: dst.reg.width == 64, r: dst.reg.extended(), x: x, b: b}
			out := []byte{}
			if rex.emit() {
				out = append(out, rex.byte())
			}
			out = append(out, op.rm)
			out = append(out, memBytes...)
			return out, nil

		case dst.kind == operandMemory && src.kind == operandRegister:
			memBytes, x, b := encodeMemoryOperand(src.reg.low3(), dst)
			rex := rexPrefix{w: src.reg.width == 64, r: src.reg.extended(), x: x, b: b}
			out := []byte{}
			if rex.emit() {
				out = append(out, rex.byte())
			}
			out = append(out, op.mr)
			out = append(out, memBytes...)
			return out, nil

		case dst.kind == operandRegister && src.kind == operandImmediate:
			rex := rexPrefix{w: dst.reg.width == 64, b: dst.reg.extended()}
			out := []byte{}
			if rex.emit() {
				out = append(out, rex.byte())
			}
			if fitsSigned8(src.imm) {
				out = append(out, 0x83, modrm(3, op.ext, dst.reg.low3()), byte(int8(src.imm)))
				return out, nil
			}
			if src.immWidth > 4 {
				return nil, assemblyErrorf(text, "immediate too wide for a 32-bit arithmetic form")
			}
			out = append(out, 0x81, modrm(3, op.ext, dst.reg.low3()))
			out = append(out, le32(src.imm)...)
			return out, nil

		default:
			return nil, assemblyErrorf(text, "unsupported operand combination")
		}
	}
}

// encodeTest handles "test reg, reg" (0x85 /r) and "test reg, imm" (0xF7
// /0, imm32). Unlike the ALU family, test has no imm8 short form.
func encodeTest(text string, operands []operand) ([]byte, error) {
	if len(operands) != 2 || operands[0].kind != operandRegister {
		return nil, assemblyErrorf(text, "expects a register first operand")
	}
	dst := operands[0]
	switch operands[1].kind {
	case operandRegister:
		src := operands[1].reg
		rex := rexPrefix{w: dst.reg.width == 64, r: src.extended(), b: dst.reg.extended()}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0x85, modrm(3, src.low3(), dst.reg.low3()))
		return out, nil
	case operandImmediate:
		if operands[1].immWidth > 4 {
			return nil, assemblyErrorf(text, "immediate too wide for test's imm32 form")
		}
		rex := rexPrefix{w: dst.reg.width == 64, b: dst.reg.extended()}
		out := []byte{}
		if rex.emit() {
			out = append(out, rex.byte())
		}
		out = append(out, 0xF7, modrm(3, 0, dst.reg.low3()))
		out = append(out, le32(operands[1].imm)...)
		return out, nil
	default:
		return nil, assemblyErrorf(text, "second operand must be a register or immediate")
	}
}
