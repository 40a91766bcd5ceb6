package solana

import (
	"fmt"

	binary "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
)

// Token represents a Solana token with mint information and owner
type Token struct {
	token.Mint
	// Owner program of the mint account
	Owner solana.PublicKey
}

// TokenLayout provides methods for decoding token data
type TokenLayout struct {
}

func (l *TokenLayout) Decode(data []byte) (*Token, error) {
	if len(data) < token.MINT_SIZE {
		return nil, fmt.Errorf("mint data is %d bytes, want %d", len(data), token.MINT_SIZE)
	}
	mint := token.Mint{}
	if err := binary.NewBinDecoder(data).Decode(&mint); err != nil {
		return nil, fmt.Errorf("unable to decode mint: %w", err)
	}
	return &Token{Mint: mint}, nil
}
