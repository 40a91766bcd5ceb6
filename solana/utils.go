package solana

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// CurrentSlot returns the latest slot at commitment.
func CurrentSlot(ctx context.Context, rpcClient AccountReader, commitment rpc.CommitmentType) (uint64, error) {
	slot, err := rpcClient.GetSlot(ctx, commitment)
	if err != nil {
		return 0, fmt.Errorf("failed to get slot: %w", err)
	}
	return slot, nil
}

func discriminator(name string) []byte {
	hash := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], hash[:8])
	return out[:]
}

func GenProgramAccountFilter(key string, filter Filter, commitment rpc.CommitmentType) *rpc.GetProgramAccountsOpts {

	opt := &rpc.GetProgramAccountsOpts{
		Commitment: commitment,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{
				Memcmp: &rpc.RPCFilterMemcmp{
					Offset: 0,
					Bytes:  discriminator(key),
				},
			},
		},
	}
	if filter.Owner.Equals(solana.PublicKey{}) {
		return opt
	}

	opt.Filters = append(opt.Filters, rpc.RPCFilter{
		Memcmp: &rpc.RPCFilterMemcmp{
			Offset: filter.Offset,
			Bytes:  filter.Owner[:],
		},
	})
	return opt
}

func GetAccountInfo(ctx context.Context, rpcClient AccountReader, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetAccountInfoResult, error) {
	return rpcClient.GetAccountInfoWithOpts(ctx, account, &rpc.GetAccountInfoOpts{Commitment: commitment, Encoding: solana.EncodingBase64})
}

func GetMultipleAccountInfo(ctx context.Context, rpcClient AccountReader, accounts []solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetMultipleAccountsResult, error) {
	return rpcClient.GetMultipleAccountsWithOpts(ctx, accounts, &rpc.GetMultipleAccountsOpts{Commitment: commitment, Encoding: solana.EncodingBase64})
}

// GetBondingCurve reads and decodes the curve account at address.
func GetBondingCurve(ctx context.Context, rpcClient AccountReader, address solana.PublicKey, commitment rpc.CommitmentType) (*BondingCurve, uint64, error) {
	out, err := GetAccountInfo(ctx, rpcClient, address, commitment)
	if err != nil {
		return nil, 0, err
	}
	curve, err := new(BondingCurveLayout).Decode(out.Value.Data.GetBinary())
	if err != nil {
		return nil, 0, fmt.Errorf("decode bonding curve %s: %w", address, err)
	}
	curve.Address = address
	return curve, out.Context.Slot, nil
}

// GetBondingCurves lists the program's curve accounts, optionally for one creator.
func GetBondingCurves(ctx context.Context, rpcClient AccountReader, programID, creator solana.PublicKey, commitment rpc.CommitmentType) ([]*BondingCurve, error) {
	opt := GenProgramAccountFilter(BondingCurveAccountName, Filter{Owner: creator, Offset: BondingCurveCreatorOffset}, commitment)
	outs, err := rpcClient.GetProgramAccountsWithOpts(ctx, programID, opt)
	if err != nil {
		return nil, err
	}
	list := make([]*BondingCurve, 0, len(outs))
	for _, out := range outs {
		if out == nil || out.Account == nil {
			continue
		}
		curve, err := new(BondingCurveLayout).Decode(out.Account.Data.GetBinary())
		if err != nil {
			return nil, fmt.Errorf("decode bonding curve %s: %w", out.Pubkey, err)
		}
		curve.Address = out.Pubkey
		list = append(list, curve)
	}
	return list, nil
}

func GetMultipleToken(ctx context.Context, rpcClient AccountReader, commitment rpc.CommitmentType, tokens ...solana.PublicKey) ([]*Token, error) {
	outs, err := GetMultipleAccountInfo(ctx, rpcClient, tokens, commitment)
	if err != nil {
		return nil, err
	}
	list := make([]*Token, len(outs.Value))
	for i, out := range outs.Value {
		if out == nil {
			continue
		}

		token, err := new(TokenLayout).Decode(out.Data.GetBinary())
		if err != nil {
			return nil, err
		}
		token.Owner = out.Owner

		list[i] = token
	}
	return list, nil
}
