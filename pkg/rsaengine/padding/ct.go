package padding

import "crypto/subtle"

// scanPKCS1v15 validates em as a PKCS #1 v1.5 block of type bt and locates
// the zero separator. It touches every byte of em once and derives the
// result only through constant-time selection, so its running time depends
// on len(em) alone. valid is 1 for a well-formed block and 0 otherwise; msgOff
// is meaningful only when valid is 1.
func scanPKCS1v15(em []byte, bt BlockType) (valid, msgOff int) {
	if len(em) < MinPadSize {
		return 0, 0
	}

	firstZero := subtle.ConstantTimeByteEq(em[0], 0)
	typeOK := subtle.ConstantTimeByteEq(em[1], byte(bt))

	// Type 1 requires every padding byte to be 0xFF; type 2 only requires
	// them to be non-zero, which the separator search already implies.
	checkFF := subtle.ConstantTimeEq(int32(bt), int32(BlockType1))

	lookingForIndex := 1
	index := 0
	badPS := 0
	for i := 2; i < len(em); i++ {
		isZero := subtle.ConstantTimeByteEq(em[i], 0)
		isFF := subtle.ConstantTimeByteEq(em[i], 0xFF)
		index = subtle.ConstantTimeSelect(lookingForIndex&isZero, i, index)
		lookingForIndex = subtle.ConstantTimeSelect(isZero, 0, lookingForIndex)
		badPS |= lookingForIndex & checkFF & (isFF ^ 1)
	}

	// PS spans em[2:index] and must be at least eight bytes long.
	longEnough := subtle.ConstantTimeLessOrEq(2+8, index)

	valid = firstZero & typeOK & (lookingForIndex ^ 1) & longEnough & (badPS ^ 1)
	return valid, index + 1
}

// scanOAEP validates an unmasked OAEP data block. lHash is the expected label
// hash and db is the unmasked DB. Every byte of db is examined regardless of
// where the first mismatch lies.
func scanOAEP(firstByte byte, lHash, db []byte) (valid, msgOff int) {
	hLen := len(lHash)
	if len(db) < hLen+1 {
		return 0, 0
	}

	firstZero := subtle.ConstantTimeByteEq(firstByte, 0)
	lHashOK := subtle.ConstantTimeCompare(lHash, db[:hLen])

	// The remainder is zero or more 0x00 bytes, a single 0x01, then the
	// message.
	rest := db[hLen:]
	lookingForIndex := 1
	index := 0
	invalid := 0
	for i := 0; i < len(rest); i++ {
		isZero := subtle.ConstantTimeByteEq(rest[i], 0)
		isOne := subtle.ConstantTimeByteEq(rest[i], 1)
		index = subtle.ConstantTimeSelect(lookingForIndex&isOne, i, index)
		lookingForIndex = subtle.ConstantTimeSelect(isOne, 0, lookingForIndex)
		invalid = subtle.ConstantTimeSelect(lookingForIndex&(isZero^1), 1, invalid)
	}

	valid = firstZero & lHashOK & (invalid ^ 1) & (lookingForIndex ^ 1)
	return valid, hLen + index + 1
}
