package tx_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snehendu098/ghost/pkg/rpc"
	"github.com/snehendu098/ghost/pkg/sign"
	"github.com/snehendu098/ghost/pkg/tx"
)

type fakeExecutor struct {
	calls int
	resp  *rpc.TransactionResponse
	err   error
}

func (f *fakeExecutor) ExecuteTransaction(context.Context, []byte, []byte, []byte) (*rpc.TransactionResponse, error) {
	f.calls++
	return f.resp, f.err
}

type fakeJournal struct {
	senders []string
	digests []string
	err     error
}

func (f *fakeJournal) Record(_ context.Context, sender string, resp *rpc.TransactionResponse) error {
	f.senders = append(f.senders, sender)
	f.digests = append(f.digests, resp.Digest)
	return f.err
}

func validTx() *tx.SignedTransaction {
	return &tx.SignedTransaction{
		TxBytes:   []byte{1, 2, 3},
		Signature: make(sign.Signature, 64),
		PublicKey: make([]byte, 32),
		Scheme:    sign.SchemeEd25519,
	}
}

func TestSubmit_ValidatesBeforeSending(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{resp: &rpc.TransactionResponse{Digest: "d"}}
	s := tx.NewSubmitter(exec)

	shortSig := validTx()
	shortSig.Signature = shortSig.Signature[:63]
	_, err := s.Submit(context.Background(), shortSig)
	assert.ErrorIs(t, err, sign.ErrMalformedInput)

	longKey := validTx()
	longKey.PublicKey = make([]byte, 33)
	_, err = s.Submit(context.Background(), longKey)
	assert.ErrorIs(t, err, sign.ErrMalformedInput)

	_, err = s.Submit(context.Background(), nil)
	assert.ErrorIs(t, err, sign.ErrMalformedInput)

	assert.Zero(t, exec.calls)
}

func TestSubmit_JournalsResult(t *testing.T) {
	t.Parallel()

	exec := &fakeExecutor{resp: &rpc.TransactionResponse{Digest: "digest-1"}}
	journal := &fakeJournal{}
	s := tx.NewSubmitter(exec, tx.WithJournal(journal))

	stx := validTx()
	resp, err := s.Submit(context.Background(), stx)
	require.NoError(t, err)
	assert.Equal(t, "digest-1", resp.Digest)
	assert.Equal(t, []string{"digest-1"}, journal.digests)
	assert.Equal(t, []string{sign.AddressFromPublicKey(stx.PublicKey)}, journal.senders)

	journal.err = assert.AnError
	_, err = s.Submit(context.Background(), stx)
	assert.NoError(t, err, "journal failures do not fail the submission")
}

func TestSubmit_ExecutionErrorSkipsJournal(t *testing.T) {
	t.Parallel()

	journal := &fakeJournal{}
	s := tx.NewSubmitter(&fakeExecutor{err: rpc.ErrTransport}, tx.WithJournal(journal))

	_, err := s.Submit(context.Background(), validTx())
	assert.ErrorIs(t, err, rpc.ErrTransport)
	assert.Empty(t, journal.digests)
}

// TestPipeline_OverHTTP drives builder and submitter against a fake node.
func TestPipeline_OverHTTP(t *testing.T) {
	t.Parallel()

	w := newWallet(t)
	var (
		mu       sync.Mutex
		executed []any
	)

	srv := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var req struct {
			Method string `json:"method"`
			Params []any  `json:"params"`
		}
		require.NoError(t, json.Unmarshal(body, &req))

		var res string
		switch req.Method {
		case "sui_getCoins":
			res = `[{"coinType":"0x2::sui::SUI","coinObjectId":"0xgas","version":1,"digest":"d","balance":"5000"}]`
		case "unsafe_transferObject":
			assert.Equal(t, []any{w.Address(), "0xgas", "42", "0xbob", "1000"}, req.Params)
			res = txReply()
		case "sui_executeTransactionBlock":
			mu.Lock()
			executed = req.Params
			mu.Unlock()
			res = `{"digest":"D1","effects":{"status":{"status":"success"},"gasUsed":{"computationCost":1,"storageCost":1,"storageRebate":0},"transactionDigest":"D1"}}`
		default:
			t.Errorf("unexpected method %s", req.Method)
		}
		_, _ = rw.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":` + res + `}`))
	}))
	t.Cleanup(srv.Close)

	client := rpc.NewClient(srv.URL)
	b, err := tx.NewBuilder(client, w, tx.BuilderConfig{})
	require.NoError(t, err)

	stx, err := b.TransferSui(context.Background(), "0xbob", 42)
	require.NoError(t, err)

	resp, err := tx.NewSubmitter(client).Submit(context.Background(), stx)
	require.NoError(t, err)
	assert.True(t, resp.Effects.Status.Success())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, executed, 4)
	assert.Equal(t, base64.StdEncoding.EncodeToString(payload), executed[0])
	assert.Equal(t, "Ed25519", executed[1])
	assert.Equal(t, stx.Signature.Base64(), executed[2])
	assert.Equal(t, base64.StdEncoding.EncodeToString(w.PublicKey()), executed[3])
}
