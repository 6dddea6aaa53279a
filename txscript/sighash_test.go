// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"github.com/zecsuite/zscript/wire"
)

// newSigHashTx returns a two input, two output transaction of the requested
// version suitable for exercising the signature hash algorithms.
func newSigHashTx(version int32) *wire.MsgTx {
	tx := wire.NewMsgTx(version)
	switch version {
	case wire.OverwinterTxVersion:
		tx.VersionGroupID = wire.OverwinterVersionGroupID
		tx.ExpiryHeight = 400000
	case wire.SaplingTxVersion:
		tx.VersionGroupID = wire.SaplingVersionGroupID
		tx.ExpiryHeight = 500000
	}

	prevHash1 := chainhash.Hash{0x01}
	prevHash2 := chainhash.Hash{0x02}
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash1, 0), nil))
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash2, 3), nil))
	tx.AddTxOut(wire.NewTxOut(10000, []byte{OP_DUP, OP_HASH160}))
	tx.AddTxOut(wire.NewTxOut(20000, []byte{OP_TRUE}))
	tx.LockTime = 100
	return tx
}

// TestCalcSignatureHashLegacy exercises the pre-Overwinter signature hash
// algorithm, including the special cased out of range SIGHASH_SINGLE.
func TestCalcSignatureHashLegacy(t *testing.T) {
	t.Parallel()

	tx := newSigHashTx(wire.TxVersion)
	script := []byte{OP_DUP, OP_HASH160}

	// The algorithm is deterministic.
	hash1, err := CalcSignatureHash(script, SigHashAll, tx, 0)
	require.NoError(t, err)
	hash2, err := CalcSignatureHash(script, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Equal(t, hash1, hash2)

	// Distinct hash types produce distinct digests.
	for _, hashType := range []SigHashType{
		SigHashNone, SigHashSingle, SigHashAll | SigHashAnyOneCanPay,
	} {
		hash, err := CalcSignatureHash(script, hashType, tx, 0)
		require.NoError(t, err)
		require.NotEqual(t, hash1, hash)
	}

	// An out of range input index is an error.
	_, err = CalcSignatureHash(script, SigHashAll, tx, 2)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrInvalidIndex))

	// SIGHASH_SINGLE with an input index referencing a non-existent output
	// yields the historical "hash of one" value rather than an error.
	hashOfOne := make([]byte, chainhash.HashSize)
	hashOfOne[0] = 0x01
	singleOut := newSigHashTx(wire.TxVersion)
	singleOut.TxOut = singleOut.TxOut[:1]
	hash, err := CalcSignatureHash(script, SigHashSingle, singleOut, 1)
	require.NoError(t, err)
	require.Equal(t, hashOfOne, hash)

	// An in range index under SIGHASH_SINGLE produces a real digest.
	hashSingle, err := CalcSignatureHash(script, SigHashSingle, tx, 1)
	require.NoError(t, err)
	require.NotEqual(t, hashOfOne, hashSingle)

	// OP_CODESEPARATOR bytes are stripped from the script committed to by
	// the legacy algorithm.
	scriptWithSep := []byte{OP_DUP, OP_CODESEPARATOR, OP_HASH160}
	hashSep, err := CalcSignatureHash(scriptWithSep, SigHashAll, tx, 0)
	require.NoError(t, err)
	require.Equal(t, hash1, hashSep)
}

// TestCalcVersionedSignatureHash exercises the Overwinter and Sapling
// signature hash algorithms.
func TestCalcVersionedSignatureHash(t *testing.T) {
	t.Parallel()

	script := []byte{OP_DUP, OP_HASH160}
	const amt = int64(25000)

	for _, version := range []int32{
		wire.OverwinterTxVersion, wire.SaplingTxVersion,
	} {
		tx := newSigHashTx(version)

		// The algorithm is deterministic and the ad-hoc computation
		// matches the one using precomputed component digests.
		hash1, err := CalcVersionedSignatureHash(script, nil,
			SigHashAll, tx, 0, amt, ConsensusBranchSapling)
		require.NoError(t, err)
		hash2, err := CalcVersionedSignatureHash(script,
			NewTxSigHashes(tx), SigHashAll, tx, 0, amt,
			ConsensusBranchSapling)
		require.NoError(t, err)
		require.Equal(t, hash1, hash2)

		// The digest commits to the consensus branch through the
		// personalization string.
		hash3, err := CalcVersionedSignatureHash(script, nil,
			SigHashAll, tx, 0, amt, ConsensusBranchBlossom)
		require.NoError(t, err)
		require.NotEqual(t, hash1, hash3)

		// The digest commits to the value of the spent output.
		hash4, err := CalcVersionedSignatureHash(script, nil,
			SigHashAll, tx, 0, amt+1, ConsensusBranchSapling)
		require.NoError(t, err)
		require.NotEqual(t, hash1, hash4)

		// The two eras personalize their component hashes differently
		// so they must never collide between versions.
		otherVersion := wire.OverwinterTxVersion
		if version == wire.OverwinterTxVersion {
			otherVersion = wire.SaplingTxVersion
		}
		otherTx := newSigHashTx(int32(otherVersion))
		hash5, err := CalcVersionedSignatureHash(script, nil,
			SigHashAll, otherTx, 0, amt, ConsensusBranchSapling)
		require.NoError(t, err)
		require.NotEqual(t, hash1, hash5)

		// Unlike the legacy algorithm, SIGHASH_SINGLE with an input
		// index referencing a non-existent output is an error.
		tx.TxOut = tx.TxOut[:1]
		_, err = CalcVersionedSignatureHash(script, nil,
			SigHashSingle, tx, 1, amt, ConsensusBranchSapling)
		require.Error(t, err)
		require.True(t, IsErrorCode(err, ErrInvalidSigHashSingleIndex))

		// An out of range input index is an error.
		_, err = CalcVersionedSignatureHash(script, nil, SigHashAll,
			tx, 5, amt, ConsensusBranchSapling)
		require.Error(t, err)
		require.True(t, IsErrorCode(err, ErrInvalidIndex))
	}
}

// TestVersionedSigHashAnyOneCanPay ensures the anyone-can-pay and none hash
// type modifiers blank the relevant component commitments.
func TestVersionedSigHashAnyOneCanPay(t *testing.T) {
	t.Parallel()

	script := []byte{OP_TRUE}
	const amt = int64(1000)

	tx := newSigHashTx(wire.SaplingTxVersion)
	base, err := CalcVersionedSignatureHash(script, nil,
		SigHashAll|SigHashAnyOneCanPay, tx, 0, amt,
		ConsensusBranchSapling)
	require.NoError(t, err)

	// With anyone-can-pay the digest must not commit to the other inputs.
	modified := newSigHashTx(wire.SaplingTxVersion)
	modified.TxIn[1].PreviousOutPoint.Index = 7
	modified.TxIn[1].Sequence = 42
	hash, err := CalcVersionedSignatureHash(script, nil,
		SigHashAll|SigHashAnyOneCanPay, modified, 0, amt,
		ConsensusBranchSapling)
	require.NoError(t, err)
	require.Equal(t, base, hash)

	// With SIGHASH_NONE the digest must not commit to the outputs.
	base, err = CalcVersionedSignatureHash(script, nil, SigHashNone, tx,
		0, amt, ConsensusBranchSapling)
	require.NoError(t, err)

	modified = newSigHashTx(wire.SaplingTxVersion)
	modified.TxOut[0].Value = 999999
	hash, err = CalcVersionedSignatureHash(script, nil, SigHashNone,
		modified, 0, amt, ConsensusBranchSapling)
	require.NoError(t, err)
	require.Equal(t, base, hash)
}

// TestSigHashPersonalization ensures the signature hash personalization
// string is the 12-byte prefix followed by the little endian branch ID.
func TestSigHashPersonalization(t *testing.T) {
	t.Parallel()

	person := sigHashPersonalization(ConsensusBranchSapling)
	require.Len(t, person, 16)
	require.True(t, bytes.HasPrefix(person, []byte("ZcashSigHash")))
	require.Equal(t, []byte{0xbb, 0x09, 0xb8, 0x76}, person[12:])
}

// TestUnsupportedTxVersionSigHash ensures requesting a versioned signature
// hash for a legacy transaction version fails.
func TestUnsupportedTxVersionSigHash(t *testing.T) {
	t.Parallel()

	tx := newSigHashTx(wire.TxVersion)
	_, err := CalcVersionedSignatureHash([]byte{OP_TRUE}, nil, SigHashAll,
		tx, 0, 1000, ConsensusBranchSapling)
	require.Error(t, err)
	require.True(t, IsErrorCode(err, ErrUnsupportedTxVersion))
}
