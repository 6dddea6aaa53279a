// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/ecdsa"

	"github.com/zecsuite/zscript/wire"
)

// RawTxInSignature returns the serialized ECDSA signature for the input idx of
// the given transaction, with hashType appended to it, using the legacy
// sighash algorithm for transactions predating the versioned algorithms.
func RawTxInSignature(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, key *btcec.PrivateKey) ([]byte, error) {

	hash, err := CalcSignatureHash(subScript, hashType, tx, idx)
	if err != nil {
		return nil, err
	}
	signature := ecdsa.Sign(key, hash)

	return append(signature.Serialize(), byte(hashType)), nil
}

// RawTxInVersionedSignature returns the serialized ECDSA signature for the
// input idx of the given transaction, with hashType appended to it, using the
// versioned sighash algorithm selected by the transaction version.  The amount
// is the value of the output being spent and branchID identifies the consensus
// branch the signature is to be valid under.
func RawTxInVersionedSignature(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, amt int64, branchID uint32,
	key *btcec.PrivateKey) ([]byte, error) {

	hash, err := CalcVersionedSignatureHash(subScript, nil, hashType, tx,
		idx, amt, branchID)
	if err != nil {
		return nil, err
	}
	signature := ecdsa.Sign(key, hash)

	return append(signature.Serialize(), byte(hashType)), nil
}

// SignatureScript creates an input signature script for tx to spend coins sent
// from a previous output to the owner of privKey.  tx must include all
// transaction inputs and outputs, however txin scripts are allowed to be filled
// or empty.  The returned script is calculated to be used as the idx'th txin
// sigscript for tx.  subScript is the PkScript of the previous output being
// used as the idx'th input.  privKey is serialized in either a compressed or
// uncompressed format based on compress.
//
// The sighash algorithm is selected by the transaction version.  The amt and
// branchID arguments are only committed to by the versioned algorithms and are
// ignored when signing version 1 and 2 transactions.
func SignatureScript(tx *wire.MsgTx, idx int, subScript []byte,
	hashType SigHashType, amt int64, branchID uint32,
	privKey *btcec.PrivateKey, compress bool) ([]byte, error) {

	var sig []byte
	var err error
	if tx.IsOverwintered() {
		sig, err = RawTxInVersionedSignature(tx, idx, subScript,
			hashType, amt, branchID, privKey)
	} else {
		sig, err = RawTxInSignature(tx, idx, subScript, hashType,
			privKey)
	}
	if err != nil {
		return nil, err
	}

	pk := privKey.PubKey()
	var pkData []byte
	if compress {
		pkData = pk.SerializeCompressed()
	} else {
		pkData = pk.SerializeUncompressed()
	}

	return NewScriptBuilder().AddData(sig).AddData(pkData).Script()
}
