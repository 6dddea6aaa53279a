// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/zecsuite/zscript/wire"
)

// genBenchTx returns a moderately sized transaction for the sighash
// benchmarks.
func genBenchTx(b *testing.B) *wire.MsgTx {
	b.Helper()

	tx := wire.NewMsgTx(wire.SaplingTxVersion)
	tx.VersionGroupID = wire.SaplingVersionGroupID
	for i := 0; i < 10; i++ {
		prevHash := chainhash.Hash{byte(i)}
		tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prevHash,
			uint32(i)), nil))
		tx.AddTxOut(wire.NewTxOut(int64(i)*1000,
			[]byte{OP_DUP, OP_HASH160}))
	}
	return tx
}

// BenchmarkCalcVersionedSigHash benchmarks the versioned sighash computation
// when the component digests are recomputed for every call.
func BenchmarkCalcVersionedSigHash(b *testing.B) {
	tx := genBenchTx(b)
	script := []byte{OP_DUP, OP_HASH160}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := CalcVersionedSignatureHash(script, nil, SigHashAll,
			tx, 0, 1000, ConsensusBranchNU5)
		if err != nil {
			b.Fatalf("failed to calc signature hash: %v", err)
		}
	}
}

// BenchmarkCalcVersionedSigHashCached benchmarks the versioned sighash
// computation when the component digests are computed once up front.
func BenchmarkCalcVersionedSigHashCached(b *testing.B) {
	tx := genBenchTx(b)
	script := []byte{OP_DUP, OP_HASH160}
	sigHashes := NewTxSigHashes(tx)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := CalcVersionedSignatureHash(script, sigHashes,
			SigHashAll, tx, 0, 1000, ConsensusBranchNU5)
		if err != nil {
			b.Fatalf("failed to calc signature hash: %v", err)
		}
	}
}

// genBenchSig returns a message hash, a valid signature of it, and the
// associated public key.
func genBenchSig(b *testing.B) ([]byte, *Signature, *btcec.PublicKey) {
	b.Helper()

	privKey, err := btcec.NewPrivateKey()
	if err != nil {
		b.Fatalf("failed to generate key: %v", err)
	}
	var hash [32]byte
	if _, err := rand.Read(hash[:]); err != nil {
		b.Fatalf("failed to read random hash: %v", err)
	}
	sig, err := ParseDERSignature(ecdsa.Sign(privKey, hash[:]).Serialize())
	if err != nil {
		b.Fatalf("failed to parse signature: %v", err)
	}
	return hash[:], sig, privKey.PubKey()
}

// BenchmarkSigVerify benchmarks the endomorphism accelerated verification
// path.
func BenchmarkSigVerify(b *testing.B) {
	hash, sig, pubKey := genBenchSig(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !sig.Verify(hash, pubKey) {
			b.Fatal("signature failed to verify")
		}
	}
}

// BenchmarkSigVerifyNaive benchmarks the naive double-and-add verification
// path for comparison against the accelerated one.
func BenchmarkSigVerifyNaive(b *testing.B) {
	hash, sig, pubKey := genBenchSig(b)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if !sig.verifyNaive(hash, pubKey) {
			b.Fatal("signature failed to verify")
		}
	}
}
