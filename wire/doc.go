// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package wire implements the Zcash transparent transaction model.

It provides the transaction types shared by the script validation code
along with byte-exact serialization for transaction versions 1 through 4
(Sprout, Overwinter, and Sapling).  Only fully transparent transactions
are modeled; transactions carrying shielded components are rejected at
deserialization time.
*/
package wire
