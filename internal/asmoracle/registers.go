package asmoracle

// register is one general-purpose x86-64 register this encoder recognizes
// as an operand, independent of pattern.Register — the oracle is a
// standalone collaborator and must not depend on the pattern package's
// closed 8-register set (spec.md §1 treats the assembler as opaque).
// Modeled on the teacher's architecture/x86_64/registers.go Register{Name,
// Type, Encoding} value type, extended to the full R8-R15 range since a
// general-purpose single-line assembler has no reason to narrow it.
type register struct {
	name     string
	width    int // 32 or 64
	encoding uint8
}

var registersByName = map[string]register{
	"rax": {"rax", 64, 0}, "rcx": {"rcx", 64, 1}, "rdx": {"rdx", 64, 2}, "rbx": {"rbx", 64, 3},
	"rsp": {"rsp", 64, 4}, "rbp": {"rbp", 64, 5}, "rsi": {"rsi", 64, 6}, "rdi": {"rdi", 64, 7},
	"r8": {"r8", 64, 8}, "r9": {"r9", 64, 9}, "r10": {"r10", 64, 10}, "r11": {"r11", 64, 11},
	"r12": {"r12", 64, 12}, "r13": {"r13", 64, 13}, "r14": {"r14", 64, 14}, "r15": {"r15", 64, 15},

	"eax": {"eax", 32, 0}, "ecx": {"ecx", 32, 1}, "edx": {"edx", 32, 2}, "ebx": {"ebx", 32, 3},
	"esp": {"esp", 32, 4}, "ebp": {"ebp", 32, 5}, "esi": {"esi", 32, 6}, "edi": {"edi", 32, 7},
	"r8d": {"r8d", 32, 8}, "r9d": {"r9d", 32, 9}, "r10d": {"r10d", 32, 10}, "r11d": {"r11d", 32, 11},
	"r12d": {"r12d", 32, 12}, "r13d": {"r13d", 32, 13}, "r14d": {"r14d", 32, 14}, "r15d": {"r15d", 32, 15},
}

// extended reports whether r needs a REX extension bit (R8-R15 forms).
func (r register) extended() bool { return r.encoding >= 8 }

// low3 returns the 3-bit field stored directly in ModR/M or an opcode's
// register-offset bits; the high bit lives in a REX extension bit instead.
func (r register) low3() byte { return byte(r.encoding & 0x07) }
