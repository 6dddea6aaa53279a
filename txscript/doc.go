// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txscript implements the Zcash transparent transaction script
language.

A complete opcode evaluator is provided along with the signature hash
construction for all three transparent sighash eras (Sprout legacy,
ZIP 143 for Overwinter, and ZIP 243 for Sapling), ECDSA signature
verification over secp256k1, and per-transaction caches which allow the
expensive parts of signature hashing and verification to be shared across
all inputs of a transaction, including concurrently.

This package is one of the core packages as it is used for consensus.
Since scripts are untrusted input, every malformed script maps to a
specific Error; no input may cause a panic.

# Errors

Errors returned by this package are of type txscript.Error and fully
support the errors.As interface.  The ErrorCode field may be inspected to
programmatically distinguish structural script errors, stack discipline
errors, signature encoding rejections, and policy failures.
*/
package txscript
