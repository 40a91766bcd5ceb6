package u128

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	binary "github.com/gagliardetto/binary"
	"github.com/holiman/uint256"
)

var (
	ErrNegative = errors.New("value cannot be negative")
	ErrOverflow = errors.New("value overflows Uint128")
)

type Uint128 binary.Uint128

// Scan implements fmt.Scanner for decimal input.
func (u *Uint128) Scan(s fmt.ScanState, ch rune) error {
	i := new(big.Int)
	if err := i.Scan(s, ch); err != nil {
		return err
	} else if i.Sign() < 0 {
		return ErrNegative
	} else if i.BitLen() > 128 {
		return ErrOverflow
	}
	u.Lo = i.Uint64()
	u.Hi = i.Rsh(i, 64).Uint64()
	return nil
}

// Parse reads a decimal integer that fits in 128 bits. Underscore separators are allowed.
func Parse(num string) (*uint256.Int, error) {
	num = strings.ReplaceAll(strings.TrimSpace(num), "_", "")
	if num == "" {
		return nil, fmt.Errorf("empty value")
	}
	u := binary.NewUint128LittleEndian()
	if _, err := fmt.Sscan(num, (*Uint128)(u)); err != nil {
		return nil, fmt.Errorf("parse %q: %w", num, err)
	}
	return FromBinary(*u), nil
}

// MustParse is Parse for constants.
func MustParse(num string) *uint256.Int {
	v, err := Parse(num)
	if err != nil {
		panic(err)
	}
	return v
}

// FromBinary converts an on-chain u128.
func FromBinary(u binary.Uint128) *uint256.Int {
	return &uint256.Int{u.Lo, u.Hi, 0, 0}
}

// ToBinary converts v to a little endian binary.Uint128.
func ToBinary(v *uint256.Int) (binary.Uint128, error) {
	if v.BitLen() > 128 {
		return binary.Uint128{}, ErrOverflow
	}
	u := binary.NewUint128LittleEndian()
	u.Lo = v[0]
	u.Hi = v[1]
	return *u, nil
}

// ToUint64 narrows a parsed value to 64 bits.
func ToUint64(v *uint256.Int) (uint64, error) {
	if !v.IsUint64() {
		return 0, fmt.Errorf("%s does not fit in 64 bits", v.Dec())
	}
	return v.Uint64(), nil
}
