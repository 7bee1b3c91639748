package asmoracle

import (
	"encoding/binary"
	"strings"
)

// rexPrefix accumulates the four REX bits (W, R, X, B) an instruction
// needs; emit reports whether a REX byte must be written at all — a bare
// 0x40 REX with no bits set still changes the meaning of SPL/BPL/SIL/DIL,
// but none of those 8-bit forms are reachable here, so emit only fires when
// W is set or an extended register (R8-R15) participates (spec.md §4.B;
// teacher's v0/kasm/codegen_encode.go buildREX/needsREX).
type rexPrefix struct {
	w, r, x, b bool
}

func (p rexPrefix) emit() bool { return p.w || p.r || p.x || p.b }

func (p rexPrefix) byte() byte {
	b := byte(0x40)
	if p.w {
		b |= 0x08
	}
	if p.r {
		b |= 0x04
	}
	if p.x {
		b |= 0x02
	}
	if p.b {
		b |= 0x01
	}
	return b
}

// modrm builds a ModR/M byte from its three fields.
func modrm(mod, reg, rm byte) byte {
	return (mod&0x03)<<6 | (reg&0x07)<<3 | (rm & 0x07)
}

// sibNoIndex builds a SIB byte. Only the "no index, given base" form is produced
// by this encoder (index=100 means "none").
func sibNoIndex(base byte) byte {
	return 0<<6 | 0x04<<3 | (base & 0x07)
}

func le32(v int64) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(v))
	return b
}

func le64(v int64) []byte {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, uint64(v))
	return b
}

// encodeMemoryOperand emits the ModR/M (+ SIB + displacement) bytes that
// address mem with register field reg, and reports which REX.X/REX.B bits
// it needs. mem must have kind == operandMemory.
func encodeMemoryOperand(reg byte, mem operand) (bytes []byte, x, b bool) {
	if mem.rip {
		// mod=00, rm=101 is the RIP-relative special case in 64-bit mode:
		// always a 4-byte displacement, regardless of its magnitude.
		out := []byte{modrm(0, reg, 0x05)}
		out = append(out, le32(mem.disp)...)
		return out, false, false
	}

	base := mem.reg
	needsSIB := base.low3() == 0x04 // RSP/R12 in the r/m field always need a SIB byte

	if !mem.hasDisp {
		if base.low3() == 0x05 {
			// RBP/R13 with no displacement has no mod=00 encoding (that rm
			// value is reserved for RIP-relative); force a zero disp8.
			out := []byte{modrm(1, reg, base.low3())}
			if needsSIB {
				out = append(out, sibNoIndex(base.low3()))
			}
			out = append(out, 0x00)
			return out, false, base.extended()
		}
		out := []byte{modrm(0, reg, base.low3())}
		if needsSIB {
			out = append(out, sibNoIndex(base.low3()))
		}
		return out, false, base.extended()
	}

	if fitsSigned8(mem.disp) {
		out := []byte{modrm(1, reg, base.low3())}
		if needsSIB {
			out = append(out, sibNoIndex(base.low3()))
		}
		out = append(out, byte(int8(mem.disp)))
		return out, false, base.extended()
	}

	out := []byte{modrm(2, reg, base.low3())}
	if needsSIB {
		out = append(out, sibNoIndex(base.low3()))
	}
	out = append(out, le32(mem.disp)...)
	return out, false, base.extended()
}

// assembleLine assembles one instruction line: a mnemonic followed by zero
// or more comma-separated operands. It is the single entry point the
// oracle serializes calls to (spec.md §4.B).
func assembleLine(text string) ([]byte, error) {
	line := strings.TrimSpace(text)
	if line == "" {
		return nil, assemblyErrorf(text, "empty instruction")
	}

	mnemonicEnd := strings.IndexAny(line, " \t")
	var mnemonic, rest string
	if mnemonicEnd < 0 {
		mnemonic = line
	} else {
		mnemonic = line[:mnemonicEnd]
		rest = line[mnemonicEnd+1:]
	}
	mnemonic = strings.ToLower(strings.TrimSpace(mnemonic))

	var operands []operand
	for _, tok := range splitOperands(rest) {
		op, err := parseOperand(tok)
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
	}

	enc, ok := mnemonics[mnemonic]
	if !ok {
		return nil, assemblyErrorf(text, "unknown mnemonic %q", mnemonic)
	}
	return enc(text, operands)
}
