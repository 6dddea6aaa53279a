// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"fmt"
	"testing"
)

// tokenizerTest houses a test script along with the expected sequence of
// opcodes and data the tokenizer is expected to produce for it.
type tokenizerTest struct {
	name     string
	script   []byte
	expected []expectedResult
	finalIdx int32
	err      error
}

// expectedResult houses the expected values for an iteration of a tokenizer
// instance.
type expectedResult struct {
	op   byte
	data []byte
}

// TestScriptTokenizer ensures a wide variety of behavior provided by the
// script tokenizer performs as expected.
func TestScriptTokenizer(t *testing.T) {
	t.Parallel()

	longData := bytes.Repeat([]byte{0xab}, 77)
	tests := []tokenizerTest{
		{
			name:     "empty script",
			script:   nil,
			expected: nil,
			finalIdx: 0,
			err:      nil,
		},
		{
			name:   "simple opcodes",
			script: []byte{OP_DUP, OP_HASH160, OP_EQUAL},
			expected: []expectedResult{
				{OP_DUP, nil}, {OP_HASH160, nil},
				{OP_EQUAL, nil},
			},
			finalIdx: 3,
			err:      nil,
		},
		{
			name:   "small data push",
			script: append([]byte{OP_DATA_3}, 1, 2, 3),
			expected: []expectedResult{
				{OP_DATA_3, []byte{1, 2, 3}},
			},
			finalIdx: 4,
			err:      nil,
		},
		{
			name:   "pushdata1",
			script: append([]byte{OP_PUSHDATA1, 77}, longData...),
			expected: []expectedResult{
				{OP_PUSHDATA1, longData},
			},
			finalIdx: 79,
			err:      nil,
		},
		{
			name:   "pushdata2",
			script: append([]byte{OP_PUSHDATA2, 77, 0}, longData...),
			expected: []expectedResult{
				{OP_PUSHDATA2, longData},
			},
			finalIdx: 80,
			err:      nil,
		},
		{
			name:   "pushdata4",
			script: append([]byte{OP_PUSHDATA4, 77, 0, 0, 0}, longData...),
			expected: []expectedResult{
				{OP_PUSHDATA4, longData},
			},
			finalIdx: 82,
			err:      nil,
		},
		{
			name:     "truncated data push",
			script:   []byte{OP_DATA_5, 1, 2},
			expected: nil,
			finalIdx: 0,
			err:      scriptError(ErrMalformedPush, ""),
		},
		{
			name:     "truncated pushdata1 length",
			script:   []byte{OP_PUSHDATA1},
			expected: nil,
			finalIdx: 0,
			err:      scriptError(ErrMalformedPush, ""),
		},
		{
			name:     "truncated pushdata1 data",
			script:   []byte{OP_PUSHDATA1, 5, 1, 2},
			expected: nil,
			finalIdx: 0,
			err:      scriptError(ErrMalformedPush, ""),
		},
		{
			name:   "opcode after push",
			script: append([]byte{OP_DATA_2, 1, 2}, OP_CHECKSIG),
			expected: []expectedResult{
				{OP_DATA_2, []byte{1, 2}},
				{OP_CHECKSIG, nil},
			},
			finalIdx: 4,
			err:      nil,
		},
	}

	for _, test := range tests {
		tokenizer := MakeScriptTokenizer(test.script)
		var results []expectedResult
		for tokenizer.Next() {
			results = append(results, expectedResult{
				op:   tokenizer.Opcode(),
				data: tokenizer.Data(),
			})
		}

		if e := tstCheckScriptError(tokenizer.Err(), test.err); e != nil {
			t.Errorf("%s: %v", test.name, e)
			continue
		}

		if len(results) != len(test.expected) {
			t.Errorf("%s: expected %d results, got %d", test.name,
				len(test.expected), len(results))
			continue
		}
		for i, expected := range test.expected {
			if results[i].op != expected.op {
				t.Errorf("%s: result %d opcode mismatch: %#x "+
					"!= %#x", test.name, i, results[i].op,
					expected.op)
			}
			if !bytes.Equal(results[i].data, expected.data) {
				t.Errorf("%s: result %d data mismatch", test.name,
					i)
			}
		}

		if test.err == nil && tokenizer.ByteIndex() != test.finalIdx {
			t.Errorf("%s: final byte index mismatch: %d != %d",
				test.name, tokenizer.ByteIndex(), test.finalIdx)
		}
		if test.err == nil && !tokenizer.Done() {
			t.Errorf("%s: tokenizer not done after successful parse",
				test.name)
		}
	}
}

// TestScriptTokenizerUnsupportedVersionData ensures that the tokenizer data
// accessors do not share backing storage with unintended regions of the
// script.
func TestScriptTokenizerData(t *testing.T) {
	t.Parallel()

	script := append([]byte{OP_DATA_2, 0xaa, 0xbb}, OP_DATA_1, 0xcc)
	tokenizer := MakeScriptTokenizer(script)
	if !tokenizer.Next() {
		t.Fatalf("unexpected tokenizer failure: %v", tokenizer.Err())
	}
	if got := fmt.Sprintf("%x", tokenizer.Data()); got != "aabb" {
		t.Fatalf("unexpected first push data: %s", got)
	}
	if !tokenizer.Next() {
		t.Fatalf("unexpected tokenizer failure: %v", tokenizer.Err())
	}
	if got := fmt.Sprintf("%x", tokenizer.Data()); got != "cc" {
		t.Fatalf("unexpected second push data: %s", got)
	}
}
