// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"strings"
	"testing"
)

// TestOpcodeDisasm tests the print function for all opcodes in both the
// oneline and full modes to ensure it provides the expected disassembly.
func TestOpcodeDisabledSet(t *testing.T) {
	t.Parallel()

	// Every opcode in the disabled set must be wired to the disabled
	// handler so it fails even in unexecuted branches.
	disabled := []byte{
		OP_CAT, OP_SUBSTR, OP_LEFT, OP_RIGHT, OP_INVERT, OP_AND,
		OP_OR, OP_XOR, OP_2MUL, OP_2DIV, OP_MUL, OP_DIV, OP_MOD,
		OP_LSHIFT, OP_RSHIFT, OP_CODESEPARATOR,
	}
	for _, op := range disabled {
		if !isOpcodeDisabled(op) {
			t.Errorf("opcode %s (0x%02x) not marked disabled",
				opcodeArray[op].name, op)
		}
	}

	// And nothing else may be.
	isDisabled := make(map[byte]bool)
	for _, op := range disabled {
		isDisabled[op] = true
	}
	for i := 0; i < 256; i++ {
		op := byte(i)
		if isOpcodeDisabled(op) && !isDisabled[op] {
			t.Errorf("opcode %s (0x%02x) unexpectedly disabled",
				opcodeArray[op].name, op)
		}
	}
}

// TestOpcodeByName ensures the OpcodeByName map has an entry for every named
// opcode along with the special aliases.
func TestOpcodeByName(t *testing.T) {
	t.Parallel()

	for _, op := range opcodeArray {
		if strings.HasPrefix(op.name, "OP_UNKNOWN") {
			continue
		}
		if _, ok := OpcodeByName[op.name]; !ok {
			t.Errorf("missing entry for opcode %s", op.name)
		}
	}

	aliases := map[string]byte{
		"OP_FALSE": OP_FALSE,
		"OP_TRUE":  OP_TRUE,
		"OP_NOP2":  OP_CHECKLOCKTIMEVERIFY,
	}
	for name, want := range aliases {
		if got, ok := OpcodeByName[name]; !ok || got != want {
			t.Errorf("alias %s: got 0x%02x, want 0x%02x", name,
				got, want)
		}
	}
}

// TestOpcodeNames ensures every entry in the opcode array reports the value
// it is stored under.
func TestOpcodeNames(t *testing.T) {
	t.Parallel()

	for i := 0; i < 256; i++ {
		if int(opcodeArray[i].value) != i {
			t.Errorf("opcode table entry %d has value %d", i,
				opcodeArray[i].value)
		}
	}
}

// TestConditionalBranchSkipping ensures the conditional opcodes correctly
// skip unexecuted branches while still requiring balance.
func TestConditionalBranchSkipping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script func(*ScriptBuilder)
		valid  bool
	}{
		{
			"taken if branch",
			func(b *ScriptBuilder) {
				b.AddOp(OP_TRUE).AddOp(OP_IF).AddOp(OP_TRUE)
				b.AddOp(OP_ELSE).AddOp(OP_FALSE).AddOp(OP_ENDIF)
			},
			true,
		},
		{
			"taken else branch",
			func(b *ScriptBuilder) {
				b.AddOp(OP_FALSE).AddOp(OP_IF).AddOp(OP_FALSE)
				b.AddOp(OP_ELSE).AddOp(OP_TRUE).AddOp(OP_ENDIF)
			},
			true,
		},
		{
			"notif",
			func(b *ScriptBuilder) {
				b.AddOp(OP_FALSE).AddOp(OP_NOTIF).AddOp(OP_TRUE)
				b.AddOp(OP_ENDIF)
			},
			true,
		},
		{
			"nested skipped branch",
			func(b *ScriptBuilder) {
				b.AddOp(OP_FALSE).AddOp(OP_IF)
				b.AddOp(OP_IF).AddOp(OP_ENDIF)
				b.AddOp(OP_ENDIF).AddOp(OP_TRUE)
			},
			true,
		},
		{
			"reserved opcode in skipped branch",
			func(b *ScriptBuilder) {
				b.AddOp(OP_FALSE).AddOp(OP_IF).AddOp(OP_RESERVED)
				b.AddOp(OP_ENDIF).AddOp(OP_TRUE)
			},
			true,
		},
		{
			"reserved opcode in taken branch",
			func(b *ScriptBuilder) {
				b.AddOp(OP_TRUE).AddOp(OP_IF).AddOp(OP_RESERVED)
				b.AddOp(OP_ENDIF).AddOp(OP_TRUE)
			},
			false,
		},
		{
			"else without if",
			func(b *ScriptBuilder) {
				b.AddOp(OP_TRUE).AddOp(OP_ELSE)
			},
			false,
		},
		{
			"endif without if",
			func(b *ScriptBuilder) {
				b.AddOp(OP_TRUE).AddOp(OP_ENDIF)
			},
			false,
		},
	}

	for _, test := range tests {
		script := mustParseScript(t, test.script)
		err := tstExecuteScript(t, script)
		if test.valid && err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		}
		if !test.valid && err == nil {
			t.Errorf("%s: expected failure", test.name)
		}
	}
}

// TestArithmeticOpcodes spot checks a handful of the numeric opcodes through
// full script execution.
func TestArithmeticOpcodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		script func(*ScriptBuilder)
		valid  bool
	}{
		{
			"add",
			func(b *ScriptBuilder) {
				b.AddInt64(2).AddInt64(3).AddOp(OP_ADD)
				b.AddInt64(5).AddOp(OP_EQUAL)
			},
			true,
		},
		{
			"sub",
			func(b *ScriptBuilder) {
				b.AddInt64(7).AddInt64(3).AddOp(OP_SUB)
				b.AddInt64(4).AddOp(OP_EQUAL)
			},
			true,
		},
		{
			"min max",
			func(b *ScriptBuilder) {
				b.AddInt64(7).AddInt64(3).AddOp(OP_MIN)
				b.AddInt64(3).AddOp(OP_EQUALVERIFY)
				b.AddInt64(7).AddInt64(3).AddOp(OP_MAX)
				b.AddInt64(7).AddOp(OP_EQUAL)
			},
			true,
		},
		{
			"within",
			func(b *ScriptBuilder) {
				b.AddInt64(5).AddInt64(1).AddInt64(10)
				b.AddOp(OP_WITHIN)
			},
			true,
		},
		{
			"numequalverify failure",
			func(b *ScriptBuilder) {
				b.AddInt64(1).AddInt64(2)
				b.AddOp(OP_NUMEQUALVERIFY).AddOp(OP_TRUE)
			},
			false,
		},
		{
			"overflowed numeric input",
			func(b *ScriptBuilder) {
				// 2^31 is out of range for numeric inputs.
				b.AddData([]byte{0x00, 0x00, 0x00, 0x80, 0x00})
				b.AddInt64(1).AddOp(OP_ADD)
			},
			false,
		},
	}

	for _, test := range tests {
		script := mustParseScript(t, test.script)
		err := tstExecuteScript(t, script)
		if test.valid && err != nil {
			t.Errorf("%s: unexpected error: %v", test.name, err)
		}
		if !test.valid && err == nil {
			t.Errorf("%s: expected failure", test.name)
		}
	}
}
