// Package rpc is the HTTP JSON-RPC 2.0 transport to a ledger full node.
//
// # Calls
//
// A Client sends one request per call and shares a pooled HTTP client between callers:
//
//	c := rpc.NewClient("https://fullnode.devnet.sui.io:443", rpc.WithTimeout(10*time.Second))
//	var coins []rpc.Coin
//	err := c.Call(ctx, "sui_getCoins", []any{addr, "0x2::sui::SUI"}, &coins)
//
// Every request carries a fresh id; there is no batching, no retry and no ordering between
// concurrent calls.
//
// # Errors
//
// Failures fall into three classes, matched with errors.Is:
//
//   - ErrTransport: the request did not complete (dial, timeout, unreadable non-2xx reply)
//   - ErrProtocol: the envelope carries an error object, or neither or both of result and error.
//     Server errors are returned as *Error, which also matches ErrProtocol.
//   - ErrDecode: the envelope or its result could not be decoded
//
// # Typed queries
//
// GetObject, GetObjectsOwnedByAddress, GetCoins, GetBalance, GetTransaction and
// ExecuteTransaction are thin wrappers over Call. ExecuteTransaction reports an on-chain failure
// through TransactionResponse.Effects.Status, not through its error.
package rpc
