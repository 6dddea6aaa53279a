// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

const (
	// TxVersion is the original transaction version.
	TxVersion = 1

	// SproutTxVersion is the maximum pre-Overwinter transaction version.
	// Version 2 transactions introduced Sprout joinsplits.
	SproutTxVersion = 2

	// OverwinterTxVersion is the transaction version introduced by the
	// Overwinter network upgrade (ZIP 202).
	OverwinterTxVersion = 3

	// SaplingTxVersion is the transaction version introduced by the
	// Sapling network upgrade (ZIP 225 predecessor, protocol §7.1).
	SaplingTxVersion = 4

	// OverwinterVersionGroupID is the version group ID that must accompany
	// version 3 transactions.
	OverwinterVersionGroupID = 0x03c48270

	// SaplingVersionGroupID is the version group ID that must accompany
	// version 4 transactions.
	SaplingVersionGroupID = 0x892f2085

	// OverwinterFlagMask is the high bit of the serialized version field.
	// When set, the field is followed by a version group ID.
	OverwinterFlagMask = 0x80000000

	// MaxTxInSequenceNum is the maximum sequence number a transaction
	// input can be.
	MaxTxInSequenceNum uint32 = 0xffffffff

	// MaxPrevOutIndex is the maximum index the index field of a previous
	// outpoint can be.
	MaxPrevOutIndex uint32 = 0xffffffff

	// ZatoshiPerZec is the number of zatoshis in one ZEC.
	ZatoshiPerZec = 1e8

	// MaxZatoshi is the maximum transaction amount allowed in zatoshis.
	MaxZatoshi = 21e6 * ZatoshiPerZec

	// maxTxPayload is a sanity limit on the decoded size of a transaction
	// so that malformed size prefixes cannot force huge allocations.
	maxTxPayload = 1024 * 1024 * 2

	// minTxInPayload is the minimum serialized size of a transaction
	// input: previous outpoint (36) + varint script length (1) +
	// sequence (4).
	minTxInPayload = 9 + chainhash.HashSize

	// minTxOutPayload is the minimum serialized size of a transaction
	// output: value (8) + varint script length (1).
	minTxOutPayload = 9
)

// OutPoint defines a Zcash data type that is used to track previous
// transaction outputs.
type OutPoint struct {
	Hash  chainhash.Hash
	Index uint32
}

// NewOutPoint returns a new Zcash transaction outpoint point with the
// provided hash and index.
func NewOutPoint(hash *chainhash.Hash, index uint32) *OutPoint {
	return &OutPoint{
		Hash:  *hash,
		Index: index,
	}
}

// String returns the OutPoint in the human-readable form "hash:index".
func (o OutPoint) String() string {
	// Allocate enough for hash string, colon, and 10 digits.  Although
	// at the time of writing, the number of digits can be no greater than
	// the length of the decimal representation of maxTxOutPerMessage, the
	// maximum message payload may increase in the future and this
	// optimization may go unnoticed, so allocate space for 10 decimal
	// digits, which will fit any uint32.
	buf := make([]byte, 2*chainhash.HashSize+1, 2*chainhash.HashSize+1+10)
	copy(buf, o.Hash.String())
	buf[2*chainhash.HashSize] = ':'
	buf = strconv.AppendUint(buf, uint64(o.Index), 10)
	return string(buf)
}

// TxIn defines a Zcash transaction input.
type TxIn struct {
	PreviousOutPoint OutPoint
	SignatureScript  []byte
	Sequence         uint32
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction input.
func (t *TxIn) SerializeSize() int {
	// Outpoint Hash 32 bytes + Outpoint Index 4 bytes + Sequence 4 bytes +
	// serialized varint size for the length of SignatureScript +
	// SignatureScript bytes.
	return 40 + VarIntSerializeSize(uint64(len(t.SignatureScript))) +
		len(t.SignatureScript)
}

// NewTxIn returns a new Zcash transaction input with the provided previous
// outpoint point and signature script with a default sequence of
// MaxTxInSequenceNum.
func NewTxIn(prevOut *OutPoint, signatureScript []byte) *TxIn {
	return &TxIn{
		PreviousOutPoint: *prevOut,
		SignatureScript:  signatureScript,
		Sequence:         MaxTxInSequenceNum,
	}
}

// TxOut defines a Zcash transaction output.
type TxOut struct {
	Value    int64
	PkScript []byte
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction output.
func (t *TxOut) SerializeSize() int {
	// Value 8 bytes + serialized varint size for the length of PkScript +
	// PkScript bytes.
	return 8 + VarIntSerializeSize(uint64(len(t.PkScript))) + len(t.PkScript)
}

// NewTxOut returns a new Zcash transaction output with the provided
// transaction value and public key script.
func NewTxOut(value int64, pkScript []byte) *TxOut {
	return &TxOut{
		Value:    value,
		PkScript: pkScript,
	}
}

// MsgTx implements the Message interface and represents a Zcash transparent
// transaction.  Shielded components (Sprout joinsplits, Sapling spends and
// outputs) are not modeled; transactions carrying them fail to deserialize.
//
// Use the AddTxIn and AddTxOut functions to build up the list of transaction
// inputs and outputs.
type MsgTx struct {
	Version        int32
	VersionGroupID uint32
	TxIn           []*TxIn
	TxOut          []*TxOut
	LockTime       uint32
	ExpiryHeight   uint32
	ValueBalance   int64
}

// AddTxIn adds a transaction input to the message.
func (msg *MsgTx) AddTxIn(ti *TxIn) {
	msg.TxIn = append(msg.TxIn, ti)
}

// AddTxOut adds a transaction output to the message.
func (msg *MsgTx) AddTxOut(to *TxOut) {
	msg.TxOut = append(msg.TxOut, to)
}

// IsOverwintered returns whether the transaction uses the Overwinter or
// later serialization format, which carries a version group ID and an
// expiry height.
func (msg *MsgTx) IsOverwintered() bool {
	return msg.Version >= OverwinterTxVersion
}

// TxHash generates the transaction hash (txid) for the transaction.
func (msg *MsgTx) TxHash() chainhash.Hash {
	// Encode the transaction and calculate double sha256 on the result.
	// Ignore the error returns since the only way the encode could fail
	// is being out of memory or due to nil pointers, both of which would
	// cause a run-time panic.
	buf := bytes.NewBuffer(make([]byte, 0, msg.SerializeSize()))
	_ = msg.Serialize(buf)
	return chainhash.DoubleHashH(buf.Bytes())
}

// Copy creates a deep copy of a transaction so that the original does not get
// modified when the copy is manipulated.
func (msg *MsgTx) Copy() *MsgTx {
	// Create new tx and start by copying primitive values.
	newTx := MsgTx{
		Version:        msg.Version,
		VersionGroupID: msg.VersionGroupID,
		TxIn:           make([]*TxIn, 0, len(msg.TxIn)),
		TxOut:          make([]*TxOut, 0, len(msg.TxOut)),
		LockTime:       msg.LockTime,
		ExpiryHeight:   msg.ExpiryHeight,
		ValueBalance:   msg.ValueBalance,
	}

	// Deep copy the old TxIn data.
	for _, oldTxIn := range msg.TxIn {
		// Deep copy the old previous outpoint.
		oldOutPoint := oldTxIn.PreviousOutPoint
		newOutPoint := OutPoint{}
		newOutPoint.Hash.SetBytes(oldOutPoint.Hash[:])
		newOutPoint.Index = oldOutPoint.Index

		// Deep copy the old signature script.
		var newScript []byte
		oldScript := oldTxIn.SignatureScript
		oldScriptLen := len(oldScript)
		if oldScriptLen > 0 {
			newScript = make([]byte, oldScriptLen)
			copy(newScript, oldScript[:oldScriptLen])
		}

		// Create new txIn with the deep copied data.
		newTxIn := TxIn{
			PreviousOutPoint: newOutPoint,
			SignatureScript:  newScript,
			Sequence:         oldTxIn.Sequence,
		}

		// Finally, append this fully copied txin.
		newTx.TxIn = append(newTx.TxIn, &newTxIn)
	}

	// Deep copy the old TxOut data.
	for _, oldTxOut := range msg.TxOut {
		// Deep copy the old PkScript.
		var newScript []byte
		oldScript := oldTxOut.PkScript
		oldScriptLen := len(oldScript)
		if oldScriptLen > 0 {
			newScript = make([]byte, oldScriptLen)
			copy(newScript, oldScript[:oldScriptLen])
		}

		// Create new txOut with the deep copied data and append it to
		// new Tx.
		newTxOut := TxOut{
			Value:    oldTxOut.Value,
			PkScript: newScript,
		}
		newTx.TxOut = append(newTx.TxOut, &newTxOut)
	}

	return &newTx
}

// Deserialize decodes a transaction from r into the receiver using the
// Zcash transaction serialization format for versions 1 through 4.
//
// Transactions that carry shielded components are rejected: this package
// only models transparent transactions.
func (msg *MsgTx) Deserialize(r io.Reader) error {
	var rawVersion uint32
	if err := readElement(r, &rawVersion); err != nil {
		return err
	}
	overwintered := rawVersion&OverwinterFlagMask != 0
	msg.Version = int32(rawVersion &^ OverwinterFlagMask)

	if overwintered {
		if err := readElement(r, &msg.VersionGroupID); err != nil {
			return err
		}
		switch {
		case msg.Version == OverwinterTxVersion &&
			msg.VersionGroupID == OverwinterVersionGroupID:
		case msg.Version == SaplingTxVersion &&
			msg.VersionGroupID == SaplingVersionGroupID:
		default:
			str := fmt.Sprintf("unsupported version %d / version "+
				"group %08x combination", msg.Version,
				msg.VersionGroupID)
			return messageError("MsgTx.Deserialize", str)
		}
	} else if msg.Version < TxVersion || msg.Version > SproutTxVersion {
		str := fmt.Sprintf("unsupported transaction version %d",
			msg.Version)
		return messageError("MsgTx.Deserialize", str)
	}

	count, err := ReadVarInt(r)
	if err != nil {
		return err
	}

	// Prevent more input transactions than could possibly fit into a
	// transaction.  It would be possible to cause memory exhaustion and
	// panics without a sane upper bound on this count.
	if count > uint64(maxTxPayload/minTxInPayload) {
		str := fmt.Sprintf("too many input transactions [count %d]",
			count)
		return messageError("MsgTx.Deserialize", str)
	}

	msg.TxIn = make([]*TxIn, count)
	for i := uint64(0); i < count; i++ {
		ti := TxIn{}
		if err := readTxIn(r, &ti); err != nil {
			return err
		}
		msg.TxIn[i] = &ti
	}

	count, err = ReadVarInt(r)
	if err != nil {
		return err
	}
	if count > uint64(maxTxPayload/minTxOutPayload) {
		str := fmt.Sprintf("too many output transactions [count %d]",
			count)
		return messageError("MsgTx.Deserialize", str)
	}

	msg.TxOut = make([]*TxOut, count)
	for i := uint64(0); i < count; i++ {
		to := TxOut{}
		if err := readTxOut(r, &to); err != nil {
			return err
		}
		msg.TxOut[i] = &to
	}

	if err := readElement(r, &msg.LockTime); err != nil {
		return err
	}

	if overwintered {
		if err := readElement(r, &msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.Version >= SaplingTxVersion {
		if err := readElement(r, &msg.ValueBalance); err != nil {
			return err
		}

		spendCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		outputCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if spendCount != 0 || outputCount != 0 {
			return messageError("MsgTx.Deserialize",
				"sapling shielded components are not supported")
		}
	}

	if msg.Version >= SproutTxVersion {
		jsCount, err := ReadVarInt(r)
		if err != nil {
			return err
		}
		if jsCount != 0 {
			return messageError("MsgTx.Deserialize",
				"sprout joinsplits are not supported")
		}
	}

	return nil
}

// Serialize encodes the transaction to w using the Zcash transaction
// serialization format for versions 1 through 4.  Shielded component
// counts are always written as zero.
func (msg *MsgTx) Serialize(w io.Writer) error {
	rawVersion := uint32(msg.Version)
	if msg.IsOverwintered() {
		rawVersion |= OverwinterFlagMask
	}
	if err := writeElement(w, rawVersion); err != nil {
		return err
	}

	if msg.IsOverwintered() {
		if err := writeElement(w, msg.VersionGroupID); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxIn))); err != nil {
		return err
	}
	for _, ti := range msg.TxIn {
		if err := writeTxIn(w, ti); err != nil {
			return err
		}
	}

	if err := WriteVarInt(w, uint64(len(msg.TxOut))); err != nil {
		return err
	}
	for _, to := range msg.TxOut {
		if err := WriteTxOut(w, to); err != nil {
			return err
		}
	}

	if err := writeElement(w, msg.LockTime); err != nil {
		return err
	}

	if msg.IsOverwintered() {
		if err := writeElement(w, msg.ExpiryHeight); err != nil {
			return err
		}
	}

	if msg.Version >= SaplingTxVersion {
		if err := writeElement(w, msg.ValueBalance); err != nil {
			return err
		}
		// nShieldedSpend and nShieldedOutput.
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}

	if msg.Version >= SproutTxVersion {
		// nJoinSplit.
		if err := WriteVarInt(w, 0); err != nil {
			return err
		}
	}

	return nil
}

// SerializeSize returns the number of bytes it would take to serialize the
// the transaction.
func (msg *MsgTx) SerializeSize() int {
	// Version 4 bytes + LockTime 4 bytes + serialized varint size for the
	// number of transaction inputs and outputs.
	n := 8 + VarIntSerializeSize(uint64(len(msg.TxIn))) +
		VarIntSerializeSize(uint64(len(msg.TxOut)))

	if msg.IsOverwintered() {
		// Version group ID 4 bytes + expiry height 4 bytes.
		n += 8
	}
	if msg.Version >= SaplingTxVersion {
		// Value balance 8 bytes + two zero shielded counts.
		n += 10
	}
	if msg.Version >= SproutTxVersion {
		// Zero joinsplit count.
		n++
	}

	for _, txIn := range msg.TxIn {
		n += txIn.SerializeSize()
	}

	for _, txOut := range msg.TxOut {
		n += txOut.SerializeSize()
	}

	return n
}

// NewMsgTx returns a new Zcash transaction with the provided version and
// the version group ID that version requires.  The return instance has a
// default lock time of zero and no transaction inputs or outputs.
func NewMsgTx(version int32) *MsgTx {
	msg := &MsgTx{
		Version: version,
		TxIn:    make([]*TxIn, 0, 8),
		TxOut:   make([]*TxOut, 0, 8),
	}
	switch version {
	case OverwinterTxVersion:
		msg.VersionGroupID = OverwinterVersionGroupID
	case SaplingTxVersion:
		msg.VersionGroupID = SaplingVersionGroupID
	}
	return msg
}

// readOutPoint reads the next sequence of bytes from r as an OutPoint.
func readOutPoint(r io.Reader, op *OutPoint) error {
	if _, err := io.ReadFull(r, op.Hash[:]); err != nil {
		return err
	}
	return readElement(r, &op.Index)
}

// writeOutPoint encodes op to the Zcash protocol encoding for an OutPoint
// to w.
func writeOutPoint(w io.Writer, op *OutPoint) error {
	if _, err := w.Write(op.Hash[:]); err != nil {
		return err
	}
	return writeElement(w, op.Index)
}

// readTxIn reads the next sequence of bytes from r as a transaction input.
func readTxIn(r io.Reader, ti *TxIn) error {
	if err := readOutPoint(r, &ti.PreviousOutPoint); err != nil {
		return err
	}

	var err error
	ti.SignatureScript, err = ReadVarBytes(r, maxTxPayload,
		"transaction input signature script")
	if err != nil {
		return err
	}

	return readElement(r, &ti.Sequence)
}

// writeTxIn encodes ti to the Zcash protocol encoding for a transaction
// input to w.
func writeTxIn(w io.Writer, ti *TxIn) error {
	if err := writeOutPoint(w, &ti.PreviousOutPoint); err != nil {
		return err
	}

	if err := WriteVarBytes(w, ti.SignatureScript); err != nil {
		return err
	}

	return writeElement(w, ti.Sequence)
}

// readTxOut reads the next sequence of bytes from r as a transaction output.
func readTxOut(r io.Reader, to *TxOut) error {
	if err := readElement(r, &to.Value); err != nil {
		return err
	}

	var err error
	to.PkScript, err = ReadVarBytes(r, maxTxPayload,
		"transaction output public key script")
	return err
}

// WriteTxOut encodes to to the Zcash protocol encoding for a transaction
// output to w.  It is exported so the txscript signature hash code can
// reuse the exact consensus encoding of an output.
func WriteTxOut(w io.Writer, to *TxOut) error {
	if err := writeElement(w, to.Value); err != nil {
		return err
	}

	return WriteVarBytes(w, to.PkScript)
}
