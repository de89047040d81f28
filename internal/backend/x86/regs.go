package x86

// Reg enumerates the registers the backend emits.
type Reg uint8

const (
	// RegNone marks an absent register operand.
	RegNone Reg = iota
	RAX
	RBX
	RCX
	RDX
	RSI
	RDI
	RBP
	RSP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
	// RIP is only valid as a memory base for label-relative addressing.
	RIP
	XMM0
	XMM1
	XMM2
	XMM3
	XMM4
	XMM5
	XMM6
	XMM7
)

var regNames = [...]string{
	RegNone: "?",
	RAX:     "rax", RBX: "rbx", RCX: "rcx", RDX: "rdx",
	RSI: "rsi", RDI: "rdi", RBP: "rbp", RSP: "rsp",
	R8: "r8", R9: "r9", R10: "r10", R11: "r11",
	R12: "r12", R13: "r13", R14: "r14", R15: "r15",
	RIP:  "rip",
	XMM0: "xmm0", XMM1: "xmm1", XMM2: "xmm2", XMM3: "xmm3",
	XMM4: "xmm4", XMM5: "xmm5", XMM6: "xmm6", XMM7: "xmm7",
}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}
	return "?"
}

// byteName returns the low 8-bit alias used by set<cc>.
func (r Reg) byteName() string {
	switch r {
	case RAX:
		return "al"
	case RBX:
		return "bl"
	case RCX:
		return "cl"
	case RDX:
		return "dl"
	}
	return r.String() + "b"
}

// IsXMM reports whether r is a scalar floating-point register.
func (r Reg) IsXMM() bool { return r >= XMM0 && r <= XMM7 }

// argRegs is the System V integer/pointer argument register order.
var argRegs = [...]Reg{RDI, RSI, RDX, RCX, R8, R9}
