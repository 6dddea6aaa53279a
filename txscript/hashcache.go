// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"sync"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"github.com/zecsuite/zscript/wire"
)

// TxSigHashes houses the partial set of sighashes introduced by the versioned
// sighash algorithms.  Each digest aggregates one component of the transaction
// (previous outpoints, sequence numbers, outputs, and the shielded bundles)
// under its own BLAKE2b personalization.  This partial set can be re-used when
// producing the final sighash for each of the transaction's inputs, reducing
// the total hashing complexity from O(N^2) to O(N).
type TxSigHashes struct {
	HashPrevOuts chainhash.Hash
	HashSequence chainhash.Hash
	HashOutputs  chainhash.Hash

	// The shielded bundle digests are all zero for a transaction carrying
	// no such bundle, which is the only shape this package deserializes.
	HashJoinSplits      chainhash.Hash
	HashShieldedSpends  chainhash.Hash
	HashShieldedOutputs chainhash.Hash
}

// NewTxSigHashes computes, and returns the cached sighashes of the given
// transaction.
func NewTxSigHashes(tx *wire.MsgTx) *TxSigHashes {
	return &TxSigHashes{
		HashPrevOuts: calcHashPrevOuts(tx),
		HashSequence: calcHashSequence(tx),
		HashOutputs:  calcHashOutputs(tx),
	}
}

// HashCache houses a set of partial sighashes keyed by txid.  The set of
// partial sighashes are those introduced within the versioned sighash
// algorithms by the new more efficient sighash digest calculation algorithm.
// Using this threadsafe shared cache, multiple goroutines can safely re-use
// the pre-computed partial sighashes speeding up validation time amongst all
// inputs of a transaction.
type HashCache struct {
	sigHashes map[chainhash.Hash]*TxSigHashes

	sync.RWMutex
}

// NewHashCache returns a new instance of the HashCache given a maximum number
// of entries which may exist within it at anytime.
func NewHashCache(maxSize uint) *HashCache {
	return &HashCache{
		sigHashes: make(map[chainhash.Hash]*TxSigHashes, maxSize),
	}
}

// AddSigHashes computes, then adds the partial sighashes for the passed
// transaction.
func (h *HashCache) AddSigHashes(tx *wire.MsgTx) {
	h.Lock()
	defer h.Unlock()

	h.sigHashes[tx.TxHash()] = NewTxSigHashes(tx)
}

// ContainsHashes returns true if the partial sighashes for the passed
// transaction currently exist within the HashCache, and false otherwise.
func (h *HashCache) ContainsHashes(txid *chainhash.Hash) bool {
	h.RLock()
	defer h.RUnlock()

	_, found := h.sigHashes[*txid]

	return found
}

// GetSigHashes possibly returns the previously cached partial sighashes for
// the passed transaction.  This function also returns an additional boolean
// value indicating if the sighashes for the passed transaction were found to
// be present within the HashCache.
func (h *HashCache) GetSigHashes(txid *chainhash.Hash) (*TxSigHashes, bool) {
	h.RLock()
	defer h.RUnlock()

	item, found := h.sigHashes[*txid]

	return item, found
}

// PurgeSigHashes removes all partial sighashes from the HashCache belonging to
// the passed transaction.
func (h *HashCache) PurgeSigHashes(txid *chainhash.Hash) {
	h.Lock()
	defer h.Unlock()

	delete(h.sigHashes, *txid)
}
