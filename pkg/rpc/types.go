package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// SuiCoinType is the native coin, used when no coin type is given.
const SuiCoinType = "0x2::sui::SUI"

// Uint64 is an unsigned amount that nodes encode either as a JSON number or a decimal string.
// It always encodes as a number.
type Uint64 uint64

func (u *Uint64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	v, err := strconv.ParseUint(string(data), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid unsigned amount %s: %w", data, err)
	}
	*u = Uint64(v)
	return nil
}

// Coin is a fungible coin object owned by an address.
type Coin struct {
	CoinType         string  `json:"coinType"`
	CoinObjectID     string  `json:"coinObjectId"`
	Version          Uint64  `json:"version"`
	Digest           string  `json:"digest"`
	Balance          Uint64  `json:"balance"`
	LockedUntilEpoch *Uint64 `json:"lockedUntilEpoch,omitempty"`
}

// Owner describes who controls an object. Exactly one field is set.
type Owner struct {
	AddressOwner string       `json:"AddressOwner,omitempty"`
	ObjectOwner  string       `json:"ObjectOwner,omitempty"`
	Shared       *SharedOwner `json:"Shared,omitempty"`
	Immutable    bool         `json:"-"`
}

type SharedOwner struct {
	InitialSharedVersion Uint64 `json:"initial_shared_version"`
}

// UnmarshalJSON accepts the bare "Immutable" string next to the object forms.
func (o *Owner) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "Immutable" {
			return fmt.Errorf("unknown owner %q", s)
		}
		*o = Owner{Immutable: true}
		return nil
	}

	type plain Owner
	var p struct {
		plain
		Immutable *json.RawMessage `json:"Immutable"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*o = Owner(p.plain)
	o.Immutable = p.Immutable != nil
	return nil
}

func (o Owner) MarshalJSON() ([]byte, error) {
	if o.Immutable {
		return []byte(`"Immutable"`), nil
	}
	type plain Owner
	return json.Marshal(plain(o))
}

func (o Owner) String() string {
	switch {
	case o.AddressOwner != "":
		return o.AddressOwner
	case o.ObjectOwner != "":
		return "object " + o.ObjectOwner
	case o.Shared != nil:
		return fmt.Sprintf("shared (v%d)", o.Shared.InitialSharedVersion)
	case o.Immutable:
		return "immutable"
	default:
		return "unknown"
	}
}

// Object is an on-chain object.
type Object struct {
	ObjectID            string     `json:"objectId"`
	Version             Uint64     `json:"version"`
	Digest              string     `json:"digest"`
	Type                string     `json:"type"`
	Owner               Owner      `json:"owner"`
	PreviousTransaction string     `json:"previousTransaction"`
	StorageRebate       *Uint64    `json:"storageRebate,omitempty"`
	Data                ObjectData `json:"data"`
}

type ObjectData struct {
	DataType          string          `json:"dataType"`
	Fields            json.RawMessage `json:"fields,omitempty"`
	HasPublicTransfer bool            `json:"hasPublicTransfer"`
}

type ObjectRef struct {
	ObjectID string `json:"objectId"`
	Version  Uint64 `json:"version"`
	Digest   string `json:"digest"`
}

type OwnedObjectRef struct {
	Owner     Owner     `json:"owner"`
	Reference ObjectRef `json:"reference"`
}

// ExecutionStatus is "success" or "failure"; Error explains a failure.
type ExecutionStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s ExecutionStatus) Success() bool {
	return s.Status == "success"
}

type GasCostSummary struct {
	ComputationCost Uint64 `json:"computationCost"`
	StorageCost     Uint64 `json:"storageCost"`
	StorageRebate   Uint64 `json:"storageRebate"`
}

// Total is the net fee charged: computation plus storage minus rebate, floored at zero.
func (g GasCostSummary) Total() uint64 {
	spent := uint64(g.ComputationCost) + uint64(g.StorageCost)
	if rebate := uint64(g.StorageRebate); rebate < spent {
		return spent - rebate
	}
	return 0
}

type TransactionEffects struct {
	Status            ExecutionStatus  `json:"status"`
	GasUsed           GasCostSummary   `json:"gasUsed"`
	SharedObjects     []ObjectRef      `json:"sharedObjects,omitempty"`
	TransactionDigest string           `json:"transactionDigest"`
	Mutated           []OwnedObjectRef `json:"mutated,omitempty"`
	Created           []OwnedObjectRef `json:"created,omitempty"`
	Deleted           []ObjectRef      `json:"deleted,omitempty"`
}

// TransactionResponse is the node's view of an executed transaction.
type TransactionResponse struct {
	Digest         string             `json:"digest"`
	RawTransaction string             `json:"rawTransaction,omitempty"`
	Effects        TransactionEffects `json:"effects"`
	Events         []Event            `json:"events,omitempty"`
}

type EventID struct {
	TxDigest string `json:"txDigest"`
	EventSeq Uint64 `json:"eventSeq"`
}

// Event is a Move event emitted by a transaction.
type Event struct {
	ID                EventID         `json:"id"`
	PackageID         string          `json:"packageId"`
	TransactionModule string          `json:"transactionModule"`
	Sender            string          `json:"sender"`
	Type              string          `json:"type"`
	ParsedJSON        json.RawMessage `json:"parsedJson,omitempty"`
}

// FaucetResponse lists the coins a faucet sent.
type FaucetResponse struct {
	TransferredGasObjects []FaucetCoin `json:"transferredGasObjects"`
	Error                 *string      `json:"error"`
}

type FaucetCoin struct {
	Amount           Uint64 `json:"amount"`
	ID               string `json:"id"`
	TransferTxDigest string `json:"transferTxDigest"`
}
