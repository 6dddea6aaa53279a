// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/minio/blake2b-simd"

	"github.com/zecsuite/zscript/wire"
)

// SigHashType represents hash type bits at the end of a signature.
type SigHashType uint32

// Hash type bits from the end of a signature.
const (
	SigHashOld          SigHashType = 0x0
	SigHashAll          SigHashType = 0x1
	SigHashNone         SigHashType = 0x2
	SigHashSingle       SigHashType = 0x3
	SigHashAnyOneCanPay SigHashType = 0x80

	// sigHashMask defines which bits of the hash type have meaning regarding
	// the signature.
	sigHashMask = 0x1f
)

// Consensus branch identifiers.  Every network upgrade carries a distinct
// branch ID which personalizes the versioned signature hash, so a signature
// valid on one branch can never validate on another.
const (
	ConsensusBranchSprout     uint32 = 0x00000000
	ConsensusBranchOverwinter uint32 = 0x5ba81b19
	ConsensusBranchSapling    uint32 = 0x76b809bb
	ConsensusBranchBlossom    uint32 = 0x2bb40e60
	ConsensusBranchHeartwood  uint32 = 0xf5b9230b
	ConsensusBranchCanopy     uint32 = 0xe9ff75a6
	ConsensusBranchNU5        uint32 = 0xc2d6d0b4
)

// BLAKE2b-256 personalization prefixes defined by ZIP 143 and ZIP 243.  Each
// is exactly 16 bytes, with the signature hash prefix completed by the
// little-endian consensus branch ID.
var (
	sigHashPersonalizationPrefix       = []byte("ZcashSigHash")
	prevoutsHashPersonalization        = []byte("ZcashPrevoutHash")
	sequenceHashPersonalization        = []byte("ZcashSequencHash")
	outputsHashPersonalization         = []byte("ZcashOutputsHash")
	joinSplitsHashPersonalization      = []byte("ZcashJSplitsHash")
	shieldedSpendsHashPersonalization  = []byte("ZcashSSpendsHash")
	shieldedOutputsHashPersonalization = []byte("ZcashSOutputHash")
)

// blake2b256 returns the BLAKE2b-256 digest of data under the given 16-byte
// personalization.
func blake2b256(data, personalization []byte) chainhash.Hash {
	hasher, err := blake2b.New(&blake2b.Config{
		Size:   chainhash.HashSize,
		Person: personalization,
	})
	if err != nil {
		// The configuration is a compile-time constant shape, so this
		// can only happen if the personalization length is wrong.
		panic(fmt.Sprintf("invalid blake2b config: %v", err))
	}
	hasher.Write(data)

	var hash chainhash.Hash
	copy(hash[:], hasher.Sum(nil))
	return hash
}

// sigHashPersonalization returns the signature hash personalization for the
// given consensus branch.
func sigHashPersonalization(branchID uint32) []byte {
	personalization := make([]byte, 0, 16)
	personalization = append(personalization, sigHashPersonalizationPrefix...)
	var branchBytes [4]byte
	binary.LittleEndian.PutUint32(branchBytes[:], branchID)
	return append(personalization, branchBytes[:]...)
}

// calcHashPrevOuts calculates a single hash of all the previous outputs
// (txids and indexes) referenced within the passed transaction.  This
// calculated hash can be re-used when validating all inputs spending
// transaction outputs, with a signature hash type of SigHashAll.  This allows
// validation to re-use previous hashing computation, reducing the complexity
// of validating SigHashAll inputs from O(N^2) to O(N).
func calcHashPrevOuts(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		// First write out the 32-byte transaction ID one of whose
		// outputs are being referenced by this input.
		b.Write(in.PreviousOutPoint.Hash[:])

		// Next, we'll encode the index of the referenced output as a
		// little endian integer.
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.PreviousOutPoint.Index)
		b.Write(buf[:])
	}

	return blake2b256(b.Bytes(), prevoutsHashPersonalization)
}

// calcHashSequence computes an aggregated hash of each of the sequence numbers
// within the inputs of the passed transaction.  This single hash can be
// re-used when validating all inputs spending transaction outputs, which
// include signatures using the SigHashAll sighash type.  This allows
// validation to re-use previous hashing computation, reducing the complexity
// of validating SigHashAll inputs from O(N^2) to O(N).
func calcHashSequence(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, in := range tx.TxIn {
		var buf [4]byte
		binary.LittleEndian.PutUint32(buf[:], in.Sequence)
		b.Write(buf[:])
	}

	return blake2b256(b.Bytes(), sequenceHashPersonalization)
}

// calcHashOutputs computes a hash digest of all outputs created by the
// transaction encoded using the wire format.  This single hash can be re-used
// when validating all inputs spending witness programs, which include
// signatures using the SigHashAll sighash type.  This allows computation to be
// cached, reducing the total hashing complexity from O(N^2) to O(N).
func calcHashOutputs(tx *wire.MsgTx) chainhash.Hash {
	var b bytes.Buffer
	for _, out := range tx.TxOut {
		wire.WriteTxOut(&b, out)
	}

	return blake2b256(b.Bytes(), outputsHashPersonalization)
}

// CalcSignatureHash computes the signature hash for the specified input of the
// target transaction observing the desired signature hash type, for
// transactions preceding the versioned sighash algorithms (versions 1 and 2).
//
// The passed script must already have had all instances of OP_CODESEPARATOR
// removed if it came from a larger script containing them, and signatures are
// assumed to have already been removed by the caller.
func CalcSignatureHash(script []byte, hashType SigHashType, tx *wire.MsgTx, idx int) ([]byte, error) {
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("idx %d but %d txins", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	// The SigHashSingle signature type signs only the corresponding input
	// and output (the output with the same index number as the input).
	//
	// Since transactions can have more inputs than outputs, this means it
	// is improper to use SigHashSingle on input indices that don't have a
	// corresponding output.
	//
	// A bug in the original Satoshi client implementation means specifying
	// an index that is out of range results in a signature hash of 1 (as a
	// uint256 little endian).  The original intent appeared to be to
	// indicate failure, but unfortunately, it was never checked and thus is
	// treated as the actual signature hash.  This buggy behavior is now
	// part of the consensus and a hard fork would be required to fix it.
	//
	// Due to this, care must be taken by software that creates transactions
	// which make use of SigHashSingle because it can lead to an extremely
	// dangerous situation where the invalid inputs will end up signing a
	// hash of 1.  This would result in anyone being able to steal all coins
	// from those invalid inputs.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		var hash chainhash.Hash
		hash[0] = 0x01
		return hash[:], nil
	}

	// Remove all instances of OP_CODESEPARATOR from the script.
	script = removeOpcodeRaw(script, OP_CODESEPARATOR)

	// Make a shallow copy of the transaction, zeroing out the script for
	// all inputs that are not currently being processed.
	txCopy := shallowCopyTx(tx)
	for i := range txCopy.TxIn {
		if i == idx {
			txCopy.TxIn[idx].SignatureScript = script
		} else {
			txCopy.TxIn[i].SignatureScript = nil
		}
	}

	switch hashType & sigHashMask {
	case SigHashNone:
		txCopy.TxOut = txCopy.TxOut[0:0] // Empty slice.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	case SigHashSingle:
		// Resize output array to up to and including requested index.
		txCopy.TxOut = txCopy.TxOut[:idx+1]

		// All but current output get zeroed out.
		for i := 0; i < idx; i++ {
			txCopy.TxOut[i].Value = -1
			txCopy.TxOut[i].PkScript = nil
		}

		// Sequence on all other inputs is 0, too.
		for i := range txCopy.TxIn {
			if i != idx {
				txCopy.TxIn[i].Sequence = 0
			}
		}

	default:
		// Consensus treats undefined hashtypes like normal SigHashAll
		// for purposes of hash generation.
		fallthrough
	case SigHashOld:
		fallthrough
	case SigHashAll:
		// Nothing special here.
	}
	if hashType&SigHashAnyOneCanPay != 0 {
		txCopy.TxIn = txCopy.TxIn[idx : idx+1]
	}

	// The final hash is the double sha256 of both the serialized modified
	// transaction and the hash type (encoded as a 4-byte little-endian
	// value) appended.
	wbuf := bytes.NewBuffer(make([]byte, 0, txCopy.SerializeSize()+4))
	txCopy.Serialize(wbuf)
	binary.Write(wbuf, binary.LittleEndian, uint32(hashType))
	return chainhash.DoubleHashB(wbuf.Bytes()), nil
}

// shallowCopyTx creates a shallow copy of the transaction for use when
// calculating the signature hash.  It is used over the Copy method on the
// transaction itself since that is a deep copy and therefore does more work
// and allocates much more space than needed.
func shallowCopyTx(tx *wire.MsgTx) wire.MsgTx {
	// As an additional memory optimization, use contiguous backing arrays
	// for the copied inputs and outputs and point the final slice of
	// pointers into the contiguous arrays.  This avoids a lot of small
	// allocations.
	txCopy := wire.MsgTx{
		Version:        tx.Version,
		VersionGroupID: tx.VersionGroupID,
		TxIn:           make([]*wire.TxIn, len(tx.TxIn)),
		TxOut:          make([]*wire.TxOut, len(tx.TxOut)),
		LockTime:       tx.LockTime,
		ExpiryHeight:   tx.ExpiryHeight,
		ValueBalance:   tx.ValueBalance,
	}
	txIns := make([]wire.TxIn, len(tx.TxIn))
	for i, oldTxIn := range tx.TxIn {
		txIns[i] = *oldTxIn
		txCopy.TxIn[i] = &txIns[i]
	}
	txOuts := make([]wire.TxOut, len(tx.TxOut))
	for i, oldTxOut := range tx.TxOut {
		txOuts[i] = *oldTxOut
		txCopy.TxOut[i] = &txOuts[i]
	}
	return txCopy
}

// calcVersionedSignatureHash computes the signature hash for the specified
// input of the target transaction for transaction versions carrying a version
// group ID, per ZIP 143 (Overwinter) and ZIP 243 (Sapling and later).
//
// The hash is a single BLAKE2b-256 whose personalization commits to the
// consensus branch the transaction is to be validated under, computed over a
// fixed-layout digest of the transaction built from the precomputed component
// hashes in sigHashes, the per-input data, and the amount of the output being
// spent.
func calcVersionedSignatureHash(scriptCode []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amt int64,
	branchID uint32) ([]byte, error) {

	// As a sanity check, ensure the passed input index for the transaction
	// is valid.
	if idx < 0 || idx >= len(tx.TxIn) {
		str := fmt.Sprintf("idx %d but %d txins", idx, len(tx.TxIn))
		return nil, scriptError(ErrInvalidIndex, str)
	}

	sapling := false
	switch {
	case tx.Version == wire.OverwinterTxVersion:
	case tx.Version >= wire.SaplingTxVersion:
		sapling = true
	default:
		str := fmt.Sprintf("transaction version %d has no versioned "+
			"sighash", tx.Version)
		return nil, scriptError(ErrUnsupportedTxVersion, str)
	}

	// Unlike the legacy algorithm, an out of range SigHashSingle is a hard
	// error here rather than silently committing to a digest of one.
	if hashType&sigHashMask == SigHashSingle && idx >= len(tx.TxOut) {
		str := fmt.Sprintf("sighash single idx %d but %d txouts", idx,
			len(tx.TxOut))
		return nil, scriptError(ErrInvalidSigHashSingleIndex, str)
	}

	// We'll utilize this buffer throughout to incrementally calculate
	// the signature hash for this transaction.
	var sigHash bytes.Buffer

	// First write out, then encode the transaction's version number with
	// the overwinter flag set.
	var bVersion [4]byte
	binary.LittleEndian.PutUint32(bVersion[:],
		uint32(tx.Version)|wire.OverwinterFlagMask)
	sigHash.Write(bVersion[:])

	var bGroupID [4]byte
	binary.LittleEndian.PutUint32(bGroupID[:], tx.VersionGroupID)
	sigHash.Write(bGroupID[:])

	var zeroHash chainhash.Hash

	// Next write out the possibly pre-calculated hashes for the sequence
	// numbers of all inputs, and the hashes of the previous outs for all
	// outputs.
	if hashType&SigHashAnyOneCanPay == 0 {
		sigHash.Write(sigHashes.HashPrevOuts[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	if hashType&SigHashAnyOneCanPay == 0 &&
		hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		sigHash.Write(sigHashes.HashSequence[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	// The outputs digest depends on the hash type: all outputs, only the
	// matching output, or nothing at all.
	if hashType&sigHashMask != SigHashSingle &&
		hashType&sigHashMask != SigHashNone {

		sigHash.Write(sigHashes.HashOutputs[:])
	} else if hashType&sigHashMask == SigHashSingle && idx < len(tx.TxOut) {
		var b bytes.Buffer
		wire.WriteTxOut(&b, tx.TxOut[idx])
		h := blake2b256(b.Bytes(), outputsHashPersonalization)
		sigHash.Write(h[:])
	} else {
		sigHash.Write(zeroHash[:])
	}

	// Every shielded bundle digest follows.  A transaction carrying no
	// such bundle commits to an all-zero digest.
	sigHash.Write(sigHashes.HashJoinSplits[:])
	if sapling {
		sigHash.Write(sigHashes.HashShieldedSpends[:])
		sigHash.Write(sigHashes.HashShieldedOutputs[:])
	}

	var bLockTime [4]byte
	binary.LittleEndian.PutUint32(bLockTime[:], tx.LockTime)
	sigHash.Write(bLockTime[:])

	var bExpiry [4]byte
	binary.LittleEndian.PutUint32(bExpiry[:], tx.ExpiryHeight)
	sigHash.Write(bExpiry[:])

	if sapling {
		var bValueBalance [8]byte
		binary.LittleEndian.PutUint64(bValueBalance[:],
			uint64(tx.ValueBalance))
		sigHash.Write(bValueBalance[:])
	}

	var bHashType [4]byte
	binary.LittleEndian.PutUint32(bHashType[:], uint32(hashType))
	sigHash.Write(bHashType[:])

	// Next, write the outpoint being spent.
	sigHash.Write(tx.TxIn[idx].PreviousOutPoint.Hash[:])
	var bIndex [4]byte
	binary.LittleEndian.PutUint32(bIndex[:], tx.TxIn[idx].PreviousOutPoint.Index)
	sigHash.Write(bIndex[:])

	// Write the script code being signed with its length prefix, then the
	// amount of the output spent by this input and finally the input's
	// sequence number.
	wire.WriteVarBytes(&sigHash, scriptCode)

	var bAmount [8]byte
	binary.LittleEndian.PutUint64(bAmount[:], uint64(amt))
	sigHash.Write(bAmount[:])

	var bSequence [4]byte
	binary.LittleEndian.PutUint32(bSequence[:], tx.TxIn[idx].Sequence)
	sigHash.Write(bSequence[:])

	hash := blake2b256(sigHash.Bytes(), sigHashPersonalization(branchID))
	return hash[:], nil
}

// CalcVersionedSignatureHash computes the signature hash for the specified
// input of the target transaction under the versioned sighash algorithm
// selected by the transaction version (ZIP 143 for Overwinter, ZIP 243 for
// Sapling), using the passed precomputed transaction component digests.
//
// Passing nil for sigHashes computes the component digests on the fly.
func CalcVersionedSignatureHash(scriptCode []byte, sigHashes *TxSigHashes,
	hashType SigHashType, tx *wire.MsgTx, idx int, amt int64,
	branchID uint32) ([]byte, error) {

	if sigHashes == nil {
		sigHashes = NewTxSigHashes(tx)
	}
	return calcVersionedSignatureHash(scriptCode, sigHashes, hashType, tx,
		idx, amt, branchID)
}
