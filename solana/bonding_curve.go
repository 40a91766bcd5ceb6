package solana

import (
	"bytes"
	"errors"
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

const (
	BondingCurveSeed        = "bonding_curve"
	BondingCurveAccountName = "BondingCurve"

	// discriminator, creator, three u64 counters, token, reserve ratio, bump
	BondingCurveSize = 8 + 32 + 8 + 8 + 8 + 32 + 2 + 1

	// offset of the creator field, used to list a creator's curves
	BondingCurveCreatorOffset = 8
)

var ErrDiscriminatorMismatch = errors.New("account discriminator mismatch")

// BondingCurve is the launchpad program's per-mint curve account.
type BondingCurve struct {
	Address solana.PublicKey

	Creator        solana.PublicKey
	TotalSupply    uint64 // token base units minted by the curve
	ReserveBalance uint64 // lamports held
	ReserveToken   uint64 // token base units in the curve's accounting
	Token          solana.PublicKey
	ReserveRatio   uint16 // basis points
	Bump           uint8
}

type bondingCurveLayout struct {
	Discriminator  [8]byte
	Creator        solana.PublicKey
	TotalSupply    uint64
	ReserveBalance uint64
	ReserveToken   uint64
	Token          solana.PublicKey
	ReserveRatio   uint16
	Bump           uint8
}

// BondingCurveLayout decodes and encodes BondingCurve account data.
type BondingCurveLayout struct {
}

func (l *BondingCurveLayout) Decode(data []byte) (*BondingCurve, error) {
	if len(data) < BondingCurveSize {
		return nil, fmt.Errorf("bonding curve data is %d bytes, want %d", len(data), BondingCurveSize)
	}
	raw := &bondingCurveLayout{}
	if err := binary.NewBinDecoder(data).Decode(raw); err != nil {
		return nil, err
	}
	if !bytes.Equal(raw.Discriminator[:], discriminator(BondingCurveAccountName)) {
		return nil, ErrDiscriminatorMismatch
	}
	return &BondingCurve{
		Creator:        raw.Creator,
		TotalSupply:    raw.TotalSupply,
		ReserveBalance: raw.ReserveBalance,
		ReserveToken:   raw.ReserveToken,
		Token:          raw.Token,
		ReserveRatio:   raw.ReserveRatio,
		Bump:           raw.Bump,
	}, nil
}

func (l *BondingCurveLayout) Encode(curve *BondingCurve) ([]byte, error) {
	raw := bondingCurveLayout{
		Creator:        curve.Creator,
		TotalSupply:    curve.TotalSupply,
		ReserveBalance: curve.ReserveBalance,
		ReserveToken:   curve.ReserveToken,
		Token:          curve.Token,
		ReserveRatio:   curve.ReserveRatio,
		Bump:           curve.Bump,
	}
	copy(raw.Discriminator[:], discriminator(BondingCurveAccountName))

	buf := new(bytes.Buffer)
	if err := binary.NewBinEncoder(buf).Encode(raw); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeriveBondingCurvePDA returns the curve account of mint under programID.
func DeriveBondingCurvePDA(programID, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return solana.FindProgramAddress(
		[][]byte{
			[]byte(BondingCurveSeed),
			mint.Bytes(),
		},
		programID,
	)
}
