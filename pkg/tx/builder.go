// Package tx assembles, signs and submits transactions whose bytes are built by a remote node.
//
// A Builder resolves the fee coin, asks the node to construct the transaction, decodes the
// returned bytes and signs them with the local identity. A Submitter sends the result for
// execution. Nothing here encodes transactions locally; the bytes are opaque.
package tx

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
	"github.com/snehendu098/ghost/pkg/sign"
)

// DefaultGasBudget is used when BuilderConfig.GasBudget is zero.
const DefaultGasBudget uint64 = 1000

var (
	// ErrNoFeeResource is returned when no fee coin is configured and none could be found.
	ErrNoFeeResource = fmt.Errorf("no fee resource available")
	// ErrConstruction is returned when the node's construction reply carries no transaction bytes.
	ErrConstruction = fmt.Errorf("transaction construction failed")
	// ErrDecode is returned when the constructed transaction bytes are not valid base64.
	ErrDecode = fmt.Errorf("failed to decode transaction bytes")
	// ErrInvalidConfig is returned by NewBuilder for unusable configurations.
	ErrInvalidConfig = fmt.Errorf("invalid builder config")
)

// Caller is the part of the node client the builder needs.
type Caller interface {
	Call(ctx context.Context, method string, params []any, result any) error
	GetCoins(ctx context.Context, owner, coinType string) ([]rpc.Coin, error)
}

// Identity signs on behalf of an address.
type Identity interface {
	Address() string
	PublicKey() []byte
	Sign(message []byte) (sign.Signature, error)
}

// BuilderConfig controls fee payment. A set GasPayment is used as is and skips the coin lookup.
type BuilderConfig struct {
	GasPayment string `yaml:"gas_payment" validate:"omitempty,startswith=0x"`
	GasBudget  uint64 `yaml:"gas_budget" validate:"gt=0"`
}

// SignedTransaction is the output of one pipeline call.
type SignedTransaction struct {
	TxBytes   []byte
	Signature sign.Signature
	PublicKey []byte
	Scheme    sign.Scheme
}

// Sender is the address derived from the signing public key.
func (s *SignedTransaction) Sender() string {
	return sign.AddressFromPublicKey(s.PublicKey)
}

// MoveCallRequest names a Move function and its arguments.
type MoveCallRequest struct {
	Package       string
	Module        string
	Function      string
	TypeArguments []string
	Arguments     []any
}

// Builder turns high-level intents into signed transactions. It is safe for concurrent use
// when its Caller and Identity are.
type Builder struct {
	caller   Caller
	identity Identity
	cfg      BuilderConfig
}

var validate = validator.New()

// NewBuilder returns a builder signing with identity.
func NewBuilder(caller Caller, identity Identity, cfg BuilderConfig) (*Builder, error) {
	if caller == nil || identity == nil {
		return nil, fmt.Errorf("%w: caller and identity are required", ErrInvalidConfig)
	}
	if cfg.GasBudget == 0 {
		cfg.GasBudget = DefaultGasBudget
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return &Builder{caller: caller, identity: identity, cfg: cfg}, nil
}

// Config returns the effective configuration.
func (b *Builder) Config() BuilderConfig { return b.cfg }

// TransferSui moves amount MIST to recipient.
func (b *Builder) TransferSui(ctx context.Context, recipient string, amount uint64) (*SignedTransaction, error) {
	return b.build(ctx, "unsafe_transferObject", func(sender, gas, budget string) []any {
		return []any{sender, gas, strconv.FormatUint(amount, 10), recipient, budget}
	})
}

// MoveCall invokes a Move function.
func (b *Builder) MoveCall(ctx context.Context, req MoveCallRequest) (*SignedTransaction, error) {
	typeArgs := req.TypeArguments
	if typeArgs == nil {
		typeArgs = []string{}
	}
	args := req.Arguments
	if args == nil {
		args = []any{}
	}

	return b.build(ctx, "unsafe_moveCall", func(sender, gas, budget string) []any {
		return []any{sender, req.Package, req.Module, req.Function, typeArgs, args, gas, budget}
	})
}

// MergeCoins merges toMerge into primary.
func (b *Builder) MergeCoins(ctx context.Context, primary, toMerge string) (*SignedTransaction, error) {
	return b.build(ctx, "unsafe_mergeCoins", func(sender, gas, budget string) []any {
		return []any{sender, primary, toMerge, gas, budget}
	})
}

// SplitCoin splits coin into new coins of the given amounts.
func (b *Builder) SplitCoin(ctx context.Context, coin string, amounts []uint64) (*SignedTransaction, error) {
	strs := make([]string, len(amounts))
	for i, a := range amounts {
		strs[i] = strconv.FormatUint(a, 10)
	}

	return b.build(ctx, "unsafe_splitCoin", func(sender, gas, budget string) []any {
		return []any{sender, coin, strs, gas, budget}
	})
}

func (b *Builder) build(ctx context.Context, method string, params func(sender, gas, budget string) []any) (*SignedTransaction, error) {
	sender := b.identity.Address()
	lg := log.FromContext(ctx).WithName("tx-builder").WithKV("method", method).WithKV("sender", sender)

	gas, err := b.resolveGasPayment(ctx, sender)
	if err != nil {
		lg.Debug("no fee resource", "error", err)
		return nil, err
	}

	var reply json.RawMessage
	budget := strconv.FormatUint(b.cfg.GasBudget, 10)
	if err := b.caller.Call(ctx, method, params(sender, gas, budget), &reply); err != nil {
		return nil, err
	}

	encoded, err := txBytesField(reply)
	if err != nil {
		return nil, err
	}
	txBytes, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}

	sig, err := b.identity.Sign(txBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to sign transaction: %w", err)
	}

	lg.Debug("transaction signed", "gas", gas, "size", len(txBytes))
	return &SignedTransaction{
		TxBytes:   txBytes,
		Signature: sig,
		PublicKey: b.identity.PublicKey(),
		Scheme:    sign.SchemeEd25519,
	}, nil
}

// resolveGasPayment returns the configured fee coin or the first SUI coin of sender.
func (b *Builder) resolveGasPayment(ctx context.Context, sender string) (string, error) {
	if b.cfg.GasPayment != "" {
		return b.cfg.GasPayment, nil
	}

	coins, err := b.caller.GetCoins(ctx, sender, rpc.SuiCoinType)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNoFeeResource, err)
	}
	if len(coins) == 0 {
		return "", fmt.Errorf("%w: %s owns no coins", ErrNoFeeResource, sender)
	}
	return coins[0].CoinObjectID, nil
}

func txBytesField(reply json.RawMessage) (string, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(reply, &fields); err != nil {
		return "", fmt.Errorf("%w: reply is not an object", ErrConstruction)
	}
	raw, ok := fields["txBytes"]
	if !ok {
		return "", fmt.Errorf("%w: reply has no txBytes", ErrConstruction)
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil || encoded == "" {
		return "", fmt.Errorf("%w: txBytes is not a non-empty string", ErrConstruction)
	}
	return encoded, nil
}
