// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"errors"
	"fmt"
	"math"
	"runtime"

	"github.com/zecsuite/zscript/wire"
)

// PrevOutputFetcher is an interface used to supply the validation functions
// with the previous output information for the inputs being spent.
type PrevOutputFetcher interface {
	// FetchPrevOutput attempts to fetch the previous output referenced by
	// the passed outpoint.  A nil value will be returned if the passed
	// outpoint doesn't exist.
	FetchPrevOutput(wire.OutPoint) *wire.TxOut
}

// CannedPrevOutputFetcher is an implementation of PrevOutputFetcher that only
// is able to return information for a single previous output.
type CannedPrevOutputFetcher struct {
	pkScript []byte
	amt      int64
}

// NewCannedPrevOutputFetcher returns an instance of a CannedPrevOutputFetcher
// that can only return the TxOut defined by the passed script and amount.
func NewCannedPrevOutputFetcher(script []byte, amt int64) *CannedPrevOutputFetcher {
	return &CannedPrevOutputFetcher{
		pkScript: script,
		amt:      amt,
	}
}

// FetchPrevOutput returns the canned output.
//
// NOTE: This is a part of the PrevOutputFetcher interface.
func (c *CannedPrevOutputFetcher) FetchPrevOutput(wire.OutPoint) *wire.TxOut {
	return &wire.TxOut{
		Value:    c.amt,
		PkScript: c.pkScript,
	}
}

// A compile-time assertion to ensure that CannedPrevOutputFetcher matches the
// PrevOutputFetcher interface.
var _ PrevOutputFetcher = (*CannedPrevOutputFetcher)(nil)

// MultiPrevOutFetcher is a custom implementation of the PrevOutputFetcher
// backed by a key-value map of prevouts to outputs.
type MultiPrevOutFetcher struct {
	prevOuts map[wire.OutPoint]*wire.TxOut
}

// NewMultiPrevOutFetcher returns an instance of a PrevOutputFetcher that's
// backed by an optional map which is used as an input source.
func NewMultiPrevOutFetcher(prevOuts map[wire.OutPoint]*wire.TxOut) *MultiPrevOutFetcher {
	if prevOuts == nil {
		prevOuts = make(map[wire.OutPoint]*wire.TxOut)
	}

	return &MultiPrevOutFetcher{
		prevOuts: prevOuts,
	}
}

// FetchPrevOutput attempts to fetch the previous output referenced by the
// passed outpoint.
//
// NOTE: This is a part of the PrevOutputFetcher interface.
func (m *MultiPrevOutFetcher) FetchPrevOutput(op wire.OutPoint) *wire.TxOut {
	return m.prevOuts[op]
}

// AddPrevOut adds a new prev out, tx out pair to the backing map.
func (m *MultiPrevOutFetcher) AddPrevOut(op wire.OutPoint, txOut *wire.TxOut) {
	m.prevOuts[op] = txOut
}

// Merge merges two instances of a MultiPrevOutFetcher into a single source.
func (m *MultiPrevOutFetcher) Merge(other *MultiPrevOutFetcher) {
	for k, v := range other.prevOuts {
		m.prevOuts[k] = v
	}
}

// A compile-time assertion to ensure that MultiPrevOutFetcher matches the
// PrevOutputFetcher interface.
var _ PrevOutputFetcher = (*MultiPrevOutFetcher)(nil)

// VerifyTransparentInput validates the input of the passed transaction at the
// given index against the public key script and value of the output it spends,
// under the given flags and consensus branch.  It returns nil when the input
// script pair executes successfully and a txscript.Error describing the first
// failure otherwise.
//
// The sigCache and hashCache arguments are both optional and may be nil.
func VerifyTransparentInput(pkScript []byte, tx *wire.MsgTx, idx int,
	flags ScriptFlags, branchID uint32, amt int64, sigCache *SigCache,
	hashCache *HashCache) error {

	vm, err := NewEngine(pkScript, tx, idx, flags, sigCache, hashCache,
		amt, branchID)
	if err != nil {
		return err
	}
	return vm.Execute()
}

// txValidateItem holds a transaction along with which input to validate.
type txValidateItem struct {
	txInIndex int
	txIn      *wire.TxIn
	tx        *wire.MsgTx
}

// txValidator provides a type which asynchronously validates transaction
// inputs.  It provides several channels for communication and a processing
// function that is intended to be in run multiple goroutines.
type txValidator struct {
	validateChan chan *txValidateItem
	quitChan     chan struct{}
	resultChan   chan error
	prevOuts     PrevOutputFetcher
	flags        ScriptFlags
	branchID     uint32
	sigCache     *SigCache
	hashCache    *HashCache
}

// wrapValidateError attaches the per-input context in str to the passed
// error while preserving its script error code so callers can still inspect
// the failure programmatically.
func wrapValidateError(err error, str string) error {
	var serr Error
	if errors.As(err, &serr) {
		return scriptError(serr.ErrorCode, str)
	}
	return fmt.Errorf("%s", str)
}

// sendResult sends the result of a script pair validation on the internal
// result channel while respecting the quit channel.  This allows orderly
// shutdown when the validation process is aborted early due to a validation
// error in one of the other goroutines.
func (v *txValidator) sendResult(result error) {
	select {
	case v.resultChan <- result:
	case <-v.quitChan:
	}
}

// validateHandler consumes items to validate from the internal validate
// channel and returns the result of the validation on the internal result
// channel.  It must be run as a goroutine.
func (v *txValidator) validateHandler() {
out:
	for {
		select {
		case txVI := <-v.validateChan:
			// Ensure the referenced input utxo is available.
			txIn := txVI.txIn
			utxo := v.prevOuts.FetchPrevOutput(txIn.PreviousOutPoint)
			if utxo == nil {
				str := fmt.Sprintf("unable to find unspent "+
					"output %v referenced from "+
					"transaction %s:%d",
					txIn.PreviousOutPoint, txVI.tx.TxHash(),
					txVI.txInIndex)
				err := scriptError(ErrInvalidIndex, str)
				v.sendResult(err)
				break out
			}

			// Create a new script engine for the script pair.
			sigScript := txIn.SignatureScript
			pkScript := utxo.PkScript
			vm, err := NewEngine(pkScript, txVI.tx,
				txVI.txInIndex, v.flags, v.sigCache,
				v.hashCache, utxo.Value, v.branchID)
			if err != nil {
				str := fmt.Sprintf("failed to parse input "+
					"%s:%d which references output %v - "+
					"%v (input script bytes %x, prev "+
					"output script bytes %x)",
					txVI.tx.TxHash(), txVI.txInIndex,
					txIn.PreviousOutPoint, err, sigScript,
					pkScript)
				v.sendResult(wrapValidateError(err, str))
				break out
			}

			// Execute the script pair.
			if err := vm.Execute(); err != nil {
				str := fmt.Sprintf("failed to validate input "+
					"%s:%d which references output %v - "+
					"%v (input script bytes %x, prev "+
					"output script bytes %x)",
					txVI.tx.TxHash(), txVI.txInIndex,
					txIn.PreviousOutPoint, err, sigScript,
					pkScript)
				v.sendResult(wrapValidateError(err, str))
				break out
			}

			// Validation succeeded.
			v.sendResult(nil)

		case <-v.quitChan:
			break out
		}
	}
}

// Validate validates the scripts for all of the passed transaction inputs
// using multiple goroutines.
func (v *txValidator) Validate(items []*txValidateItem) error {
	if len(items) == 0 {
		return nil
	}

	// Limit the number of goroutines to do script validation based on the
	// number of processor cores.  This helps ensure the system stays
	// reasonably responsive under heavy load.
	maxGoRoutines := runtime.NumCPU() * 3
	if maxGoRoutines <= 0 {
		maxGoRoutines = 1
	}
	if maxGoRoutines > len(items) {
		maxGoRoutines = len(items)
	}

	// Start up validation handlers that are used to asynchronously
	// validate each transaction input.
	for i := 0; i < maxGoRoutines; i++ {
		go v.validateHandler()
	}

	// Validate each of the inputs.  The quit channel is closed when any
	// errors occur so all processing goroutines exit regardless of which
	// input had the validation error.
	numInputs := len(items)
	currentItem := 0
	processedItems := 0
	for processedItems < numInputs {
		// Only send items while there are still items that need to
		// be processed.  The select statement will never select a nil
		// channel.
		var validateChan chan *txValidateItem
		var item *txValidateItem
		if currentItem < numInputs {
			validateChan = v.validateChan
			item = items[currentItem]
		}

		select {
		case validateChan <- item:
			currentItem++

		case err := <-v.resultChan:
			processedItems++
			if err != nil {
				close(v.quitChan)
				return err
			}
		}
	}

	close(v.quitChan)
	return nil
}

// newTxValidator returns a new instance of txValidator to be used for
// validating transaction scripts asynchronously.
func newTxValidator(prevOuts PrevOutputFetcher, flags ScriptFlags,
	branchID uint32, sigCache *SigCache, hashCache *HashCache) *txValidator {

	return &txValidator{
		validateChan: make(chan *txValidateItem),
		quitChan:     make(chan struct{}),
		resultChan:   make(chan error),
		prevOuts:     prevOuts,
		flags:        flags,
		branchID:     branchID,
		sigCache:     sigCache,
		hashCache:    hashCache,
	}
}

// ValidateTransactionScripts validates the scripts for every transparent
// input of the passed transaction using multiple goroutines.  Previous
// outputs are resolved through the passed fetcher.
//
// When a hash cache is provided, the versioned sighash component digests of
// the transaction are computed once up front and shared by all inputs.
func ValidateTransactionScripts(tx *wire.MsgTx, prevOuts PrevOutputFetcher,
	flags ScriptFlags, branchID uint32, sigCache *SigCache,
	hashCache *HashCache) error {

	// Skip coinbase-style transactions carrying no previous outpoint to
	// validate against.
	txIns := tx.TxIn
	txValItems := make([]*txValidateItem, 0, len(txIns))
	for txInIdx, txIn := range txIns {
		if txIn.PreviousOutPoint.Index == math.MaxUint32 {
			continue
		}

		txVI := &txValidateItem{
			txInIndex: txInIdx,
			txIn:      txIn,
			tx:        tx,
		}
		txValItems = append(txValItems, txVI)
	}

	// If the hash cache is present, but the particular transaction hasn't
	// had its sighash midstates computed yet, then do so now so it can be
	// re-used amongst all worker validation goroutines.
	if hashCache != nil && tx.IsOverwintered() {
		txHash := tx.TxHash()
		if !hashCache.ContainsHashes(&txHash) {
			hashCache.AddSigHashes(tx)
		}
	}

	// Validate all of the inputs.
	validator := newTxValidator(prevOuts, flags, branchID, sigCache,
		hashCache)
	return validator.Validate(txValItems)
}
