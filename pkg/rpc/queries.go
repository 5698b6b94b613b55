package rpc

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/sign"
)

// GetObject returns the object with the given id.
func (c *Client) GetObject(ctx context.Context, objectID string) (*Object, error) {
	var obj Object
	if err := c.Call(ctx, "sui_getObject", []any{objectID}, &obj); err != nil {
		return nil, err
	}
	return &obj, nil
}

// GetObjectsOwnedByAddress returns every object owned by address.
func (c *Client) GetObjectsOwnedByAddress(ctx context.Context, address string) ([]Object, error) {
	var objs []Object
	if err := c.Call(ctx, "sui_getObjectsOwnedByAddress", []any{address}, &objs); err != nil {
		return nil, err
	}
	return objs, nil
}

// GetCoins lists the coins of coinType owned by address, SuiCoinType when coinType is empty.
// Both a bare array and a paged {"data": [...]} result are accepted.
func (c *Client) GetCoins(ctx context.Context, address, coinType string) ([]Coin, error) {
	if coinType == "" {
		coinType = SuiCoinType
	}

	var raw json.RawMessage
	if err := c.Call(ctx, "sui_getCoins", []any{address, coinType}, &raw); err != nil {
		return nil, err
	}

	var coins []Coin
	if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
		var page struct {
			Data []Coin `json:"data"`
		}
		if err := json.Unmarshal(trimmed, &page); err != nil {
			return nil, fmt.Errorf("%w: sui_getCoins result: %w", ErrDecode, err)
		}
		return page.Data, nil
	}
	if err := json.Unmarshal(raw, &coins); err != nil {
		return nil, fmt.Errorf("%w: sui_getCoins result: %w", ErrDecode, err)
	}
	return coins, nil
}

// GetBalance returns the total balance of coinType held by address.
func (c *Client) GetBalance(ctx context.Context, address, coinType string) (uint64, error) {
	if coinType == "" {
		coinType = SuiCoinType
	}

	var res struct {
		TotalBalance *Uint64 `json:"totalBalance"`
	}
	if err := c.Call(ctx, "sui_getBalance", []any{address, coinType}, &res); err != nil {
		return 0, err
	}
	if res.TotalBalance == nil {
		return 0, fmt.Errorf("%w: sui_getBalance result has no totalBalance", ErrDecode)
	}
	return uint64(*res.TotalBalance), nil
}

// GetTransaction returns an executed transaction by digest.
func (c *Client) GetTransaction(ctx context.Context, digest string) (*TransactionResponse, error) {
	var resp TransactionResponse
	if err := c.Call(ctx, "sui_getTransaction", []any{digest}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ExecuteTransaction submits signed transaction bytes. All three inputs are sent in standard
// base64 next to the Ed25519 scheme tag. A transaction that executes but fails on chain is
// returned without error; check Effects.Status.
func (c *Client) ExecuteTransaction(ctx context.Context, txBytes, signature, publicKey []byte) (*TransactionResponse, error) {
	params := []any{
		base64.StdEncoding.EncodeToString(txBytes),
		sign.SchemeEd25519.String(),
		base64.StdEncoding.EncodeToString(signature),
		base64.StdEncoding.EncodeToString(publicKey),
	}

	var resp TransactionResponse
	if err := c.Call(ctx, "sui_executeTransactionBlock", params, &resp); err != nil {
		return nil, err
	}

	log.FromContext(ctx).WithName("rpc").Info("transaction executed",
		"digest", resp.Digest, "status", resp.Effects.Status.Status)
	return &resp, nil
}

// RequestFaucet asks the faucet at faucetURL to fund recipient.
func (c *Client) RequestFaucet(ctx context.Context, faucetURL, recipient string) (_ *FaucetResponse, err error) {
	started := time.Now()
	defer func() { c.metrics.Observe("faucet", err, started) }()

	body, err := json.Marshal(map[string]any{
		"FixedAmountRequest": map[string]string{"recipient": recipient},
	})
	if err != nil {
		return nil, err
	}

	raw, status, err := c.post(ctx, faucetURL, body)
	if err != nil {
		return nil, err
	}

	var resp FaucetResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		if status/100 != 2 {
			return nil, fmt.Errorf("%w: faucet returned status %d", ErrTransport, status)
		}
		return nil, fmt.Errorf("%w: faucet response: %w", ErrDecode, err)
	}
	if resp.Error != nil && *resp.Error != "" {
		return nil, fmt.Errorf("%w: faucet: %s", ErrProtocol, *resp.Error)
	}
	if status/100 != 2 {
		return nil, fmt.Errorf("%w: faucet returned status %d", ErrTransport, status)
	}
	return &resp, nil
}
