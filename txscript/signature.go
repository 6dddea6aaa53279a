// Copyright (c) 2024-2026 The zecsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package txscript

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Signature is a type representing an ECDSA signature over secp256k1.
type Signature struct {
	r secp256k1.ModNScalar
	s secp256k1.ModNScalar
}

// NewSignature instantiates a new signature given some r and s values.
func NewSignature(r, s *secp256k1.ModNScalar) *Signature {
	var sig Signature
	sig.r.Set(r)
	sig.s.Set(s)
	return &sig
}

// Serialize returns the ECDSA signature in the Distinguished Encoding Rules
// (DER) format per section 10 of [ISO/IEC 8825-1] and such that the S
// component of the signature is less than or equal to the half order of the
// group.
//
// Note that the serialized bytes returned do not include the appended hash
// type used in transaction signatures.
func (sig *Signature) Serialize() []byte {
	// The format of a DER encoded signature is as follows:
	//
	// 0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
	//   - 0x30 is the ASN.1 identifier for a sequence.
	//   - Total length is 1 byte and specifies length of all remaining data.
	//   - 0x02 is the ASN.1 identifier that specifies an integer follows.
	//   - Length of R is 1 byte and specifies how many bytes R occupies.
	//   - R is the arbitrary length big-endian encoded number which
	//     represents the R value of the signature.  DER encoding dictates
	//     that the value must be encoded using the minimum possible number
	//     of bytes.  This implies the first byte can only be null if the
	//     highest bit of the next byte is set in order to prevent it from
	//     being interpreted as a negative number.
	//   - 0x02 is once again the ASN.1 integer identifier.
	//   - Length of S is 1 byte and specifies how many bytes S occupies.
	//   - S is the arbitrary length big-endian encoded number which
	//     represents the S value of the signature.  The encoding rules are
	//     identical as those for R.

	// Ensure the S component of the signature is less than or equal to the
	// half order of the group because both S and its negation are valid
	// signatures modulo the order, so this forces a consistent choice to
	// reduce signature malleability.
	sigS := new(secp256k1.ModNScalar).Set(&sig.s)
	if sigS.IsOverHalfOrder() {
		sigS.Negate()
	}

	// Serialize the R and S components of the signature into their fixed
	// 32-byte big-endian encoding.
	var rBuf, sBuf [32]byte
	sig.r.PutBytes(&rBuf)
	sigS.PutBytes(&sBuf)

	// Ensure the encoded bytes for the R and S components are canonical per
	// DER by trimming all leading zero bytes so long as they don't flip the
	// sign bit.
	canonR, canonS := canonicalizeInt(rBuf[:]), canonicalizeInt(sBuf[:])

	// Total length of returned signature is 1 byte for each magic and
	// length (6 total), plus lengths of R and S.
	totalLen := 6 + len(canonR) + len(canonS)
	b := make([]byte, 0, totalLen)
	b = append(b, asn1SequenceID)
	b = append(b, byte(totalLen-2))
	b = append(b, asn1IntegerID)
	b = append(b, byte(len(canonR)))
	b = append(b, canonR...)
	b = append(b, asn1IntegerID)
	b = append(b, byte(len(canonS)))
	b = append(b, canonS...)
	return b
}

// canonicalizeInt returns the bytes for the passed big-endian encoded integer
// adjusted as necessary to ensure it is in the canonical DER form.  This
// entails removing all leading zero bytes so it is only encoded using the
// minimum possible number of bytes while ensuring the encoding still can't be
// interpreted as a negative number by prepending a zero byte when the most
// significant bit of the first byte would otherwise be set.
func canonicalizeInt(val []byte) []byte {
	b := val
	for len(b) > 1 && b[0] == 0x00 && b[1]&0x80 == 0 {
		b = b[1:]
	}
	if len(b) == 0 {
		b = []byte{0x00}
	}
	if b[0]&0x80 != 0 {
		paddedBytes := make([]byte, len(b)+1)
		copy(paddedBytes[1:], b)
		b = paddedBytes
	}
	return b
}

// IsEqual compares this Signature instance to the one passed, returning true
// if both Signatures are equivalent.  A signature is equivalent to another, if
// they both have the same scalar value for R and S.
func (sig *Signature) IsEqual(otherSig *Signature) bool {
	var b1, b2 [32]byte

	sig.r.PutBytes(&b1)
	otherSig.r.PutBytes(&b2)
	if b1 != b2 {
		return false
	}

	sig.s.PutBytes(&b1)
	otherSig.s.PutBytes(&b2)
	return b1 == b2
}

// jacobianG is the secp256k1 base point in Jacobian projective coordinates.
var jacobianG = func() *secp256k1.JacobianPoint {
	var g secp256k1.JacobianPoint
	params := secp256k1.Params()
	g.X.SetByteSlice(params.Gx.Bytes())
	g.Y.SetByteSlice(params.Gy.Bytes())
	g.Z.SetInt(1)
	return &g
}()

// orderAsFieldVal is the group order of the secp256k1 curve represented as a
// field value.  It is used during signature verification when interpreting the
// affine x coordinate of the computed point as a value modulo the order.
var orderAsFieldVal = func() *secp256k1.FieldVal {
	var f secp256k1.FieldVal
	f.SetByteSlice(secp256k1.Params().N.Bytes())
	return &f
}()

// naiveScalarMult computes k*point using a plain most-significant-bit-first
// double-and-add loop over the Jacobian group operations.  It exists purely as
// an independent reference for the accelerated multiplication used during
// verification and is far too slow for production use.
func naiveScalarMult(k *secp256k1.ModNScalar, point, result *secp256k1.JacobianPoint) {
	var kBytes [32]byte
	k.PutBytes(&kBytes)

	// Start from the point at infinity.
	result.X.SetInt(0)
	result.Y.SetInt(0)
	result.Z.SetInt(0)

	q := *point
	for _, kByte := range kBytes {
		for bit := 0; bit < 8; bit++ {
			secp256k1.DoubleNonConst(result, result)
			if kByte&0x80 != 0 {
				secp256k1.AddNonConst(result, &q, result)
			}
			kByte <<= 1
		}
	}

	kBytes = [32]byte{}
}

// verify returns whether or not the signature is valid for the provided hash
// and secp256k1 public key.  The accelerated flag selects between the
// endomorphism-accelerated scalar multiplication provided by the secp256k1
// package and the naive double-and-add reference implementation.  Both paths
// must produce identical results for every input.
func (sig *Signature) verify(hash []byte, pubKey *btcec.PublicKey, accelerated bool) bool {
	// The set of rules followed here is the ECDSA verification algorithm
	// from SEC 1, with the two allowed x-coordinate candidates checked via
	// a comparison in the projective space to avoid a costly field
	// inversion.

	// Fail if r and s are not in [1, N-1].  The upper bound is enforced by
	// the parse functions which reject overflowed values by zeroing the
	// scalar, so only the lower bound needs an explicit check.
	if sig.r.IsZero() || sig.s.IsZero() {
		return false
	}

	// e = H(m) interpreted as a big-endian integer reduced modulo N.
	var e secp256k1.ModNScalar
	e.SetByteSlice(hash)

	// w = s^-1 mod N
	w := new(secp256k1.ModNScalar).InverseValNonConst(&sig.s)

	// u1 = e * w mod N
	// u2 = r * w mod N
	u1 := new(secp256k1.ModNScalar).Mul2(&e, w)
	u2 := new(secp256k1.ModNScalar).Mul2(&sig.r, w)

	// X = u1G + u2Q
	var X, Q, u1G, u2Q secp256k1.JacobianPoint
	pubKey.AsJacobian(&Q)
	if accelerated {
		secp256k1.ScalarBaseMultNonConst(u1, &u1G)
		secp256k1.ScalarMultNonConst(u2, &Q, &u2Q)
	} else {
		naiveScalarMult(u1, jacobianG, &u1G)
		naiveScalarMult(u2, &Q, &u2Q)
	}
	secp256k1.AddNonConst(&u1G, &u2Q, &X)

	// Fail if X is the point at infinity.
	if (X.X.IsZero() && X.Y.IsZero()) || X.Z.IsZero() {
		return false
	}

	// The affine x coordinate of X is X.x / X.z^2.  Rather than performing
	// the expensive field inversion to obtain it, scale the candidate r
	// into the same projective space and compare there:
	//
	//   r == X.x / X.z^2  <=>  r * X.z^2 == X.x
	z := new(secp256k1.FieldVal).SquareVal(&X.Z)
	sigRModP := modNScalarToField(&sig.r)
	result := new(secp256k1.FieldVal).Mul2(&sigRModP, z).Normalize()
	if result.Equals(X.X.Normalize()) {
		return true
	}

	// The affine x coordinate can exceed the group order while r cannot, so
	// also check the second candidate r + N when it still fits into a field
	// element.
	if sigRModP.IsGtOrEqPrimeMinusOrder() {
		return false
	}
	sigRModP.Add(orderAsFieldVal)
	result = new(secp256k1.FieldVal).Mul2(&sigRModP, z).Normalize()
	return result.Equals(&X.X)
}

// modNScalarToField converts a scalar modulo the group order to a field value.
func modNScalarToField(v *secp256k1.ModNScalar) secp256k1.FieldVal {
	var buf [32]byte
	v.PutBytes(&buf)
	var fv secp256k1.FieldVal
	fv.SetBytes(&buf)
	return fv
}

// Verify returns whether or not the signature is valid for the provided hash
// and secp256k1 public key.
func (sig *Signature) Verify(hash []byte, pubKey *btcec.PublicKey) bool {
	return sig.verify(hash, pubKey, true)
}

// verifyNaive is identical to Verify except that the scalar multiplications
// are performed with the reference double-and-add implementation instead of
// the endomorphism-accelerated one.  It exists so tests can assert equivalence
// of the two paths; production callers use Verify.
func (sig *Signature) verifyNaive(hash []byte, pubKey *btcec.PublicKey) bool {
	return sig.verify(hash, pubKey, false)
}

// Offsets and identifiers of a DER encoded signature of the form:
//
//	0x30 <total length> 0x02 <length of R> <R> 0x02 <length of S> <S>
const (
	asn1SequenceID = 0x30
	asn1IntegerID  = 0x02

	// minSigLen is the minimum length of a DER encoded signature and is when
	// both R and S are 1 byte each.
	//
	// 0x30 + <1-byte> + 0x02 + 0x01 + <byte> + 0x2 + 0x01 + <byte>
	minSigLen = 8

	// maxSigLen is the maximum length of a DER encoded signature and is
	// when both R and S are 33 bytes each.  It is 33 bytes because a
	// 256-bit integer requires 32 bytes and an additional leading null byte
	// might be required if the high bit is set in the value.
	//
	// 0x30 + <1-byte> + 0x02 + 0x21 + <33 bytes> + 0x2 + 0x21 + <33 bytes>
	maxSigLen = 72

	// sequenceOffset is the byte offset within the signature of the
	// expected ASN.1 sequence identifier.
	sequenceOffset = 0

	// dataLenOffset is the byte offset within the signature of the expected
	// total length of all remaining data in the signature.
	dataLenOffset = 1

	// rTypeOffset is the byte offset within the signature of the ASN.1
	// identifier for R and is expected to indicate an ASN.1 integer.
	rTypeOffset = 2

	// rLenOffset is the byte offset within the signature of the length of
	// R.
	rLenOffset = 3

	// rOffset is the byte offset within the signature of R.
	rOffset = 4
)

// checkSignatureDEREncoding returns an error describing the first defect of
// the passed serialized signature against the strict DER requirements, and
// optionally that its S value is at most half the group order.  Every distinct
// structural defect maps to its own error code.
func checkSignatureDEREncoding(sig []byte, requireLowS bool) error {
	// The signature must adhere to the minimum and maximum allowed length.
	sigLen := len(sig)
	if sigLen < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d",
			sigLen, minSigLen)
		return scriptError(ErrSigTooShort, str)
	}
	if sigLen > maxSigLen {
		str := fmt.Sprintf("malformed signature: too long: %d > %d",
			sigLen, maxSigLen)
		return scriptError(ErrSigTooLong, str)
	}

	// The signature must start with the ASN.1 sequence identifier.
	if sig[sequenceOffset] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong type: %#x",
			sig[sequenceOffset])
		return scriptError(ErrSigInvalidSeqID, str)
	}

	// The signature must indicate the correct amount of data for all elements
	// related to R and S.
	if int(sig[dataLenOffset]) != sigLen-2 {
		str := fmt.Sprintf("malformed signature: bad length: %d != %d",
			sig[dataLenOffset], sigLen-2)
		return scriptError(ErrSigInvalidDataLen, str)
	}

	// Calculate the offsets of the elements related to S and ensure S is inside
	// the signature.
	//
	// rLen specifies the length of the big-endian encoded number which
	// represents the R value of the signature.
	//
	// sTypeOffset is the offset of the ASN.1 identifier for S and, like its R
	// counterpart, is expected to indicate an ASN.1 integer.
	//
	// sLenOffset and sOffset are the byte offsets within the signature of the
	// length of S and S itself, respectively.
	rLen := int(sig[rLenOffset])
	sTypeOffset := rOffset + rLen
	sLenOffset := sTypeOffset + 1
	if sTypeOffset >= sigLen {
		str := "malformed signature: S type indicator missing"
		return scriptError(ErrSigMissingSTypeID, str)
	}
	if sLenOffset >= sigLen {
		str := "malformed signature: S length missing"
		return scriptError(ErrSigMissingSLen, str)
	}

	// The lengths of R and S must match the overall length of the signature.
	//
	// sLen specifies the length of the big-endian encoded number which
	// represents the S value of the signature.
	sOffset := sLenOffset + 1
	sLen := int(sig[sLenOffset])
	if sOffset+sLen != sigLen {
		str := "malformed signature: invalid S length"
		return scriptError(ErrSigInvalidSLen, str)
	}

	// R elements must be ASN.1 integers.
	if sig[rTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: R integer marker: %#x != %#x",
			sig[rTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidRIntID, str)
	}

	// Zero-length integers are not allowed for R.
	if rLen == 0 {
		str := "malformed signature: R length is zero"
		return scriptError(ErrSigZeroRLen, str)
	}

	// R must not be negative.
	if sig[rOffset]&0x80 != 0 {
		str := "malformed signature: R is negative"
		return scriptError(ErrSigNegativeR, str)
	}

	// Null bytes at the start of R are not allowed, unless R would otherwise be
	// interpreted as a negative number.
	if rLen > 1 && sig[rOffset] == 0x00 && sig[rOffset+1]&0x80 == 0 {
		str := "malformed signature: R value has too much padding"
		return scriptError(ErrSigTooMuchRPadding, str)
	}

	// S elements must be ASN.1 integers.
	if sig[sTypeOffset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: S integer marker: %#x != %#x",
			sig[sTypeOffset], asn1IntegerID)
		return scriptError(ErrSigInvalidSIntID, str)
	}

	// Zero-length integers are not allowed for S.
	if sLen == 0 {
		str := "malformed signature: S length is zero"
		return scriptError(ErrSigZeroSLen, str)
	}

	// S must not be negative.
	if sig[sOffset]&0x80 != 0 {
		str := "malformed signature: S is negative"
		return scriptError(ErrSigNegativeS, str)
	}

	// Null bytes at the start of S are not allowed, unless S would otherwise be
	// interpreted as a negative number.
	if sLen > 1 && sig[sOffset] == 0x00 && sig[sOffset+1]&0x80 == 0 {
		str := "malformed signature: S value has too much padding"
		return scriptError(ErrSigTooMuchSPadding, str)
	}

	// Verify the S value is <= half the order of the curve.  This check is done
	// because when it is higher, the complement modulo the order can be used
	// instead which is a shorter encoding by 1 byte.  Further, without
	// enforcing this, it is possible to replace a signature in a valid
	// transaction with the complement while still being a valid signature that
	// verifies.  This would result in changing the transaction hash and thus is
	// a source of malleability.
	if requireLowS {
		// Strip the zero pad byte permitted above so the scalar loads
		// from at most 32 bytes rather than being truncated.
		sBytes := sig[sOffset : sOffset+sLen]
		for len(sBytes) > 0 && sBytes[0] == 0x00 {
			sBytes = sBytes[1:]
		}
		var s secp256k1.ModNScalar
		if overflow := s.SetByteSlice(sBytes); !overflow {
			if s.IsOverHalfOrder() {
				str := "signature is not canonical due to unnecessarily " +
					"high S value"
				return scriptError(ErrSigHighS, str)
			}
		}
	}

	return nil
}

// setScalarRejectOverflow loads the passed big-endian unsigned integer into
// the scalar.  A value that is not a canonical representative modulo the group
// order is replaced by zero, which can never verify, rather than being
// silently reduced.
func setScalarRejectOverflow(scalar *secp256k1.ModNScalar, val []byte) {
	if overflow := scalar.SetByteSlice(val); overflow {
		scalar.SetInt(0)
	}
}

// ParseDERSignature parses a signature in the Distinguished Encoding Rules
// (DER) format per section 10 of [ISO/IEC 8825-1] and enforces the following
// additional restrictions specific to secp256k1:
//
//   - The R and S values must be in the valid range for secp256k1 scalars:
//     values that exceed the group order are accepted structurally but can
//     never successfully verify
//   - Negative R and S values are rejected
//   - Excessive padding of R and S values is rejected
func ParseDERSignature(sigBytes []byte) (*Signature, error) {
	if err := checkSignatureDEREncoding(sigBytes, false); err != nil {
		return nil, err
	}

	rLen := int(sigBytes[rLenOffset])
	sLen := int(sigBytes[rOffset+rLen+1])
	rBytes := sigBytes[rOffset : rOffset+rLen]
	sBytes := sigBytes[rOffset+rLen+2 : rOffset+rLen+2+sLen]

	// Strip the zero pad byte DER requires when the most significant bit of
	// the value is set so the scalars load from at most 32 bytes.  Loading
	// from a longer slice would truncate the value instead.
	for len(rBytes) > 0 && rBytes[0] == 0x00 {
		rBytes = rBytes[1:]
	}
	for len(sBytes) > 0 && sBytes[0] == 0x00 {
		sBytes = sBytes[1:]
	}

	var sig Signature
	setScalarRejectOverflow(&sig.r, rBytes)
	setScalarRejectOverflow(&sig.s, sBytes)
	return &sig, nil
}

// parseBERInt parses a single lax BER encoded ASN.1 integer starting at the
// passed offset and returns the decoded scalar along with the offset of the
// first byte after the integer.  Leading zero padding is permitted, as are
// long form lengths.  Values too large for a scalar are replaced by zero which
// can never verify.
func parseBERInt(buf []byte, offset int, scalar *secp256k1.ModNScalar) (int, error) {
	if offset+2 > len(buf) {
		return 0, scriptError(ErrSigTooShort,
			"malformed signature: truncated integer")
	}
	if buf[offset] != asn1IntegerID {
		str := fmt.Sprintf("malformed signature: integer marker: %#x != %#x",
			buf[offset], asn1IntegerID)
		return 0, scriptError(ErrSigInvalidRIntID, str)
	}
	offset++

	// Decode the length, which may use the long form.
	valLen := int(buf[offset])
	offset++
	if valLen&0x80 != 0 {
		numLenBytes := valLen & 0x7f
		if numLenBytes > 4 || offset+numLenBytes > len(buf) {
			return 0, scriptError(ErrSigInvalidDataLen,
				"malformed signature: invalid long form length")
		}
		valLen = 0
		for i := 0; i < numLenBytes; i++ {
			valLen = valLen<<8 | int(buf[offset])
			offset++
		}
	}
	if valLen < 0 || offset+valLen > len(buf) {
		return 0, scriptError(ErrSigInvalidDataLen,
			"malformed signature: integer length beyond signature")
	}

	val := buf[offset : offset+valLen]
	offset += valLen

	// Strip any leading zero padding.
	for len(val) > 0 && val[0] == 0x00 {
		val = val[1:]
	}
	if len(val) > 32 {
		// Too large to be a valid scalar.  Treated as zero so the
		// signature parses but can never verify, matching the behavior
		// of the lax parser in the reference implementation.
		scalar.SetInt(0)
		return offset, nil
	}
	setScalarRejectOverflow(scalar, val)
	return offset, nil
}

// ParseSignature parses a signature in the more permissive Basic Encoding
// Rules (BER) format used before strict DER encoding was enforced.  It
// tolerates long form lengths, redundant integer padding, and trailing
// garbage.  Out of range R and S values parse successfully but yield a
// signature that can never verify.
func ParseSignature(sigBytes []byte) (*Signature, error) {
	if len(sigBytes) < minSigLen {
		str := fmt.Sprintf("malformed signature: too short: %d < %d",
			len(sigBytes), minSigLen)
		return nil, scriptError(ErrSigTooShort, str)
	}
	if sigBytes[sequenceOffset] != asn1SequenceID {
		str := fmt.Sprintf("malformed signature: format has wrong type: %#x",
			sigBytes[sequenceOffset])
		return nil, scriptError(ErrSigInvalidSeqID, str)
	}

	// Skip over the sequence length which may use the long form.  The
	// value itself is intentionally not validated against the remaining
	// data since lax parsing tolerates inconsistent outer lengths.
	offset := dataLenOffset
	seqLen := int(sigBytes[offset])
	offset++
	if seqLen&0x80 != 0 {
		numLenBytes := seqLen & 0x7f
		if offset+numLenBytes > len(sigBytes) {
			return nil, scriptError(ErrSigInvalidDataLen,
				"malformed signature: invalid sequence length")
		}
		offset += numLenBytes
	}

	var sig Signature
	var err error
	offset, err = parseBERInt(sigBytes, offset, &sig.r)
	if err != nil {
		return nil, err
	}
	if _, err = parseBERInt(sigBytes, offset, &sig.s); err != nil {
		return nil, err
	}
	return &sig, nil
}
