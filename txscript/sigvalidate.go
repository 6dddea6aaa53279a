// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// signatureVerifier is an abstract interface that allows the op code execution
// to abstract over the verification logic of the sighash era in use.
type signatureVerifier interface {
	// Verify returns true if the signature verifier context deems the
	// signature to be valid for the given message.
	Verify() bool
}

// baseSigVerifier is used to verify signatures for transactions predating the
// versioned sighash algorithms (versions 1 and 2).
type baseSigVerifier struct {
	vm *Engine

	pubKey *btcec.PublicKey

	sig *Signature

	sigBytes []byte

	subScript []byte

	hashType SigHashType
}

// parseBaseSigAndPubkey attempts to parse a signature and public key according
// to the strictness rules active in the passed engine.
func parseBaseSigAndPubkey(pkBytes, rawSig []byte,
	vm *Engine) (*btcec.PublicKey, *Signature, SigHashType, error) {

	// Trim off hashtype from the signature string and check if the
	// signature and pubkey conform to the strict encoding requirements
	// depending on the flags.
	//
	// NOTE: When the strict encoding flags are set, any errors in the
	// signature or public encoding here result in an immediate script error
	// (and thus no result bool is pushed to the data stack).  This differs
	// from the logic below where any errors in parsing the signature is
	// treated as the signature failure resulting in false being pushed to
	// the data stack.  This is required because the more general script
	// validation consensus rules do not have the new strict encoding
	// requirements enabled by the flags.
	hashType := SigHashType(rawSig[len(rawSig)-1])
	sigBytes := rawSig[:len(rawSig)-1]
	if err := vm.checkHashTypeEncoding(hashType); err != nil {
		return nil, nil, 0, err
	}
	if err := vm.checkSignatureEncoding(sigBytes); err != nil {
		return nil, nil, 0, err
	}
	if err := vm.checkPubKeyEncoding(pkBytes); err != nil {
		return nil, nil, 0, err
	}

	// Parse the signature.  Any parse failure from this point on is a
	// plain verification failure rather than a script error, so the error
	// types from the parse functions are deliberately not propagated.
	var signature *Signature
	var err error
	if vm.hasFlag(ScriptVerifyStrictEncoding) ||
		vm.hasFlag(ScriptVerifyDERSignatures) {

		signature, err = ParseDERSignature(sigBytes)
	} else {
		signature, err = ParseSignature(sigBytes)
	}
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parse signature: %v", err)
	}

	pubKey, err := btcec.ParsePubKey(pkBytes)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("parse pubkey: %v", err)
	}

	return pubKey, signature, hashType, nil
}

// newBaseSigVerifier returns a new instance of the base signature verifier.
// An error is returned if the signature, sighash type, or public key are
// malformed in a manner the active flags escalate to a script error.
func newBaseSigVerifier(pkBytes, rawSig []byte,
	vm *Engine) (*baseSigVerifier, error) {

	pubKey, sig, hashType, err := parseBaseSigAndPubkey(pkBytes, rawSig, vm)
	if err != nil {
		return nil, err
	}

	// The script code committed to by the signature hash is the full
	// executing script.  Unlike the bitcoin lineage there is no
	// FindAndDelete of the signature, which the reference interpreter
	// dropped along with OP_CODESEPARATOR.
	subScript := vm.subScript()

	return &baseSigVerifier{
		vm:        vm,
		pubKey:    pubKey,
		sig:       sig,
		sigBytes:  rawSig[:len(rawSig)-1],
		subScript: subScript,
		hashType:  hashType,
	}, nil
}

// verifySig attempts to verify the signature given the computed sighash.  A
// cache-aware verification is used when the engine carries a signature cache.
func (b *baseSigVerifier) verifySig(hash []byte) bool {
	var valid bool
	if b.vm.sigCache != nil {
		var sigHash chainhash.Hash
		copy(sigHash[:], hash)

		valid = b.vm.sigCache.Exists(sigHash, b.sig, b.pubKey)
		if !valid && b.sig.Verify(hash, b.pubKey) {
			b.vm.sigCache.Add(sigHash, b.sig, b.pubKey)
			valid = true
		}
	} else {
		valid = b.sig.Verify(hash, b.pubKey)
	}

	return valid
}

// Verify returns true if the signature verifier context deems the signature to
// be valid for the given message.
//
// NOTE: This is part of the signatureVerifier interface.
func (b *baseSigVerifier) Verify() bool {
	hash, err := CalcSignatureHash(b.subScript, b.hashType, &b.vm.tx,
		b.vm.txIdx)
	if err != nil {
		return false
	}

	return b.verifySig(hash)
}

// versionedSigVerifier is used to verify signatures for transactions carrying
// a version group ID (Overwinter and Sapling), whose sighash commits to the
// precomputed transaction component digests, the value of the output being
// spent, and the consensus branch.
type versionedSigVerifier struct {
	baseSigVerifier
}

// newVersionedSigVerifier returns a new instance of the versioned signature
// verifier.
func newVersionedSigVerifier(pkBytes, rawSig []byte,
	vm *Engine) (*versionedSigVerifier, error) {

	base, err := newBaseSigVerifier(pkBytes, rawSig, vm)
	if err != nil {
		return nil, err
	}

	return &versionedSigVerifier{baseSigVerifier: *base}, nil
}

// Verify returns true if the signature verifier context deems the signature to
// be valid for the given message.
//
// NOTE: This is part of the signatureVerifier interface.
func (sw *versionedSigVerifier) Verify() bool {
	vm := sw.vm
	hash, err := calcVersionedSignatureHash(sw.subScript, vm.txSigHashes(),
		sw.hashType, &vm.tx, vm.txIdx, vm.inputAmount, vm.branchID)
	if err != nil {
		return false
	}

	return sw.verifySig(hash)
}

// newSignatureVerifier returns the signature verifier for the sighash era
// selected by the version of the transaction being validated.
func newSignatureVerifier(pkBytes, rawSig []byte,
	vm *Engine) (signatureVerifier, error) {

	if vm.tx.IsOverwintered() {
		return newVersionedSigVerifier(pkBytes, rawSig, vm)
	}
	return newBaseSigVerifier(pkBytes, rawSig, vm)
}
