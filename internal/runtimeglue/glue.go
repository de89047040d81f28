package runtimeglue

import "strings"

// EntryText returns the process entry wrapper. It aligns the stack,
// calls main and exits with main's return value in rdi.
func EntryText() string {
	return `
.globl _start
_start:
    xor rbp, rbp
    and rsp, -16
    call main
    mov rdi, rax
    call rt_exit
`
}

// StubText returns the hand-written runtime sequences shipped with the
// backend: small leaf helpers worth inlining into every binary. The
// heavyweight symbols in Symbols() stay external and are resolved at
// link time.
func StubText() string {
	var b strings.Builder
	b.WriteString("\n# runtime stubs\n")

	// rt_str_is_empty(s) -> 1 when the length word is zero
	b.WriteString("rt_str_is_empty:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    test rax, rax\n")
	b.WriteString("    sete al\n")
	b.WriteString("    movzx rax, al\n")
	b.WriteString("    ret\n\n")

	// rt_str_len(s) -> length word of the string header
	b.WriteString("rt_str_len:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    ret\n\n")

	// rt_option_is_some(opt) -> tag word != 0
	b.WriteString("rt_option_is_some:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    test rax, rax\n")
	b.WriteString("    setne al\n")
	b.WriteString("    movzx rax, al\n")
	b.WriteString("    ret\n\n")

	// rt_option_is_none(opt) -> tag word == 0
	b.WriteString("rt_option_is_none:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    test rax, rax\n")
	b.WriteString("    sete al\n")
	b.WriteString("    movzx rax, al\n")
	b.WriteString("    ret\n\n")

	// rt_option_unwrap(opt) -> payload word; aborts on none. The
	// payload sits one word below the tag, matching the stack layout
	// the constructors produce.
	b.WriteString("rt_option_unwrap:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    test rax, rax\n")
	b.WriteString("    je .unwrap_none\n")
	b.WriteString("    mov rax, qword ptr [rdi - 8]\n")
	b.WriteString("    ret\n")
	b.WriteString(".unwrap_none:\n")
	b.WriteString("    mov rdi, 101\n")
	b.WriteString("    call rt_exit\n\n")

	// rt_vec_len(v) -> length word of the collection header
	b.WriteString("rt_vec_len:\n")
	b.WriteString("    mov rax, qword ptr [rdi]\n")
	b.WriteString("    ret\n")

	return b.String()
}
