package rpc

import (
	"fmt"
	"math/big"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// SuiDecimals is the number of MIST digits in one SUI.
const SuiDecimals = 9

const digestSize = 32

// MistToSui converts a MIST amount into SUI.
func MistToSui(mist uint64) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(mist), -SuiDecimals)
}

// FormatSui renders mist as a SUI amount without trailing zeros, e.g. 1500000000 as "1.5".
func FormatSui(mist uint64) string {
	return MistToSui(mist).String()
}

// ParseSui converts a decimal SUI amount such as "0.25" into MIST.
func ParseSui(amount string) (uint64, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", amount, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("invalid amount %q: negative", amount)
	}

	mist := d.Shift(SuiDecimals)
	if !mist.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: more than %d decimals", amount, SuiDecimals)
	}
	n := mist.BigInt()
	if !n.IsUint64() {
		return 0, fmt.Errorf("invalid amount %q: out of range", amount)
	}
	return n.Uint64(), nil
}

// Digest is a base58 transaction or object digest.
type Digest string

// ParseDigest validates that s is base58 of exactly 32 bytes.
func ParseDigest(s string) (Digest, error) {
	raw, err := base58.Decode(s)
	if err != nil {
		return "", fmt.Errorf("%w: digest %q: %w", ErrDecode, s, err)
	}
	if len(raw) != digestSize {
		return "", fmt.Errorf("%w: digest %q has %d bytes, want %d", ErrDecode, s, len(raw), digestSize)
	}
	return Digest(s), nil
}

// Bytes returns the decoded digest, or nil if d is not valid base58.
func (d Digest) Bytes() []byte {
	raw, err := base58.Decode(string(d))
	if err != nil {
		return nil
	}
	return raw
}

func (d Digest) String() string { return string(d) }
