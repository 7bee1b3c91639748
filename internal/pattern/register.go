package pattern

// Register represents one of the general-purpose x86-64 registers the
// pattern grammar's $reg: variables are allowed to bind to. The set is
// closed (spec.md §3): the eight legacy GPRs, each in its 32-bit and
// 64-bit forms. R8–R15 and the 8-/16-bit forms are out of scope.
//
// Modeled on the teacher's architecture/x86_64/registers.go
// Register{Name, Type, Encoding} value type, narrowed to this closed set.
type Register struct {
	name     string
	width    int // 32 or 64
	encoding uint8
}

// Name returns the assembler mnemonic for the register, e.g. "rax".
func (r Register) Name() string { return r.name }

// Width returns the operand width in bits: 32 or 64.
func (r Register) Width() int { return r.width }

// Encoding returns the register's 3-bit ModR/M/SIB encoding number.
func (r Register) Encoding() uint8 { return r.encoding }

var (
	RAX = Register{name: "rax", width: 64, encoding: 0}
	RCX = Register{name: "rcx", width: 64, encoding: 1}
	RDX = Register{name: "rdx", width: 64, encoding: 2}
	RBX = Register{name: "rbx", width: 64, encoding: 3}
	RSP = Register{name: "rsp", width: 64, encoding: 4}
	RBP = Register{name: "rbp", width: 64, encoding: 5}
	RSI = Register{name: "rsi", width: 64, encoding: 6}
	RDI = Register{name: "rdi", width: 64, encoding: 7}

	EAX = Register{name: "eax", width: 32, encoding: 0}
	ECX = Register{name: "ecx", width: 32, encoding: 1}
	EDX = Register{name: "edx", width: 32, encoding: 2}
	EBX = Register{name: "ebx", width: 32, encoding: 3}
	ESP = Register{name: "esp", width: 32, encoding: 4}
	EBP = Register{name: "ebp", width: 32, encoding: 5}
	ESI = Register{name: "esi", width: 32, encoding: 6}
	EDI = Register{name: "edi", width: 32, encoding: 7}
)

// allRegisters enumerates every register an encoding probe may substitute
// for a $reg: variable. Order matters only for determinism of iteration
// during encoding discovery.
var allRegisters = []Register{
	RAX, EAX, RBX, EBX, RCX, ECX, RDX, EDX,
	RBP, EBP, RSP, ESP, RSI, ESI, RDI, EDI,
}

// AllRegisters returns the closed set of registers eligible for $reg:
// variable instantiation.
func AllRegisters() []Register {
	out := make([]Register, len(allRegisters))
	copy(out, allRegisters)
	return out
}

// RegistersByName maps lowercase register mnemonics to their Register value.
var RegistersByName = func() map[string]Register {
	m := make(map[string]Register, len(allRegisters))
	for _, r := range allRegisters {
		m[r.name] = r
	}
	return m
}()
