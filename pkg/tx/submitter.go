package tx

import (
	"context"
	"fmt"

	"github.com/snehendu098/ghost/pkg/log"
	"github.com/snehendu098/ghost/pkg/rpc"
	"github.com/snehendu098/ghost/pkg/sign"
)

// Executor sends signed transaction bytes for execution.
type Executor interface {
	ExecuteTransaction(ctx context.Context, txBytes, signature, publicKey []byte) (*rpc.TransactionResponse, error)
}

// Journal keeps a record of executed transactions.
type Journal interface {
	Record(ctx context.Context, sender string, resp *rpc.TransactionResponse) error
}

// Submitter executes signed transactions and optionally journals the results.
type Submitter struct {
	exec    Executor
	journal Journal
}

type SubmitterOption func(*Submitter)

// WithJournal records every execution response in j.
func WithJournal(j Journal) SubmitterOption {
	return func(s *Submitter) {
		s.journal = j
	}
}

func NewSubmitter(exec Executor, opts ...SubmitterOption) *Submitter {
	s := &Submitter{exec: exec}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates stx and executes it. Malformed signatures or keys fail with
// sign.ErrMalformedInput before anything is sent. A failed on-chain status is not an error.
// Journal failures are logged and do not fail the submission.
func (s *Submitter) Submit(ctx context.Context, stx *SignedTransaction) (*rpc.TransactionResponse, error) {
	if stx == nil {
		return nil, fmt.Errorf("%w: nil transaction", sign.ErrMalformedInput)
	}
	if len(stx.Signature) != sign.SignatureSize {
		return nil, fmt.Errorf("%w: signature has %d bytes", sign.ErrMalformedInput, len(stx.Signature))
	}
	if len(stx.PublicKey) != sign.PublicKeySize {
		return nil, fmt.Errorf("%w: public key has %d bytes", sign.ErrMalformedInput, len(stx.PublicKey))
	}

	resp, err := s.exec.ExecuteTransaction(ctx, stx.TxBytes, stx.Signature, stx.PublicKey)
	if err != nil {
		return nil, err
	}

	if s.journal != nil {
		if err := s.journal.Record(ctx, stx.Sender(), resp); err != nil {
			log.FromContext(ctx).WithName("tx-submitter").Warn("failed to journal execution",
				"digest", resp.Digest, "error", err)
		}
	}
	return resp, nil
}
