package sign

import "fmt"

var _ Signer = (*MockSigner)(nil)

// MockSigner produces predictable, non-cryptographic signatures for tests.
type MockSigner struct {
	publicKey *MockPublicKey
	err       error
}

// NewMockSigner creates a MockSigner whose address is id.
func NewMockSigner(id string) *MockSigner {
	return &MockSigner{publicKey: NewMockPublicKey(id)}
}

// WithError makes every Sign call fail with err.
func (m *MockSigner) WithError(err error) *MockSigner {
	m.err = err
	return m
}

// Sign appends "-signed-by-<id>" to data.
func (m *MockSigner) Sign(data []byte) (Signature, error) {
	if m.err != nil {
		return nil, m.err
	}
	suffix := fmt.Sprintf("-signed-by-%s", m.publicKey.id)
	return Signature(append(append([]byte(nil), data...), suffix...)), nil
}

func (m *MockSigner) PublicKey() PublicKey { return m.publicKey }

func (m *MockSigner) Scheme() Scheme { return SchemeEd25519 }

var _ PublicKey = (*MockPublicKey)(nil)

// MockPublicKey uses its id as both key bytes and address.
type MockPublicKey struct {
	id string
}

func NewMockPublicKey(id string) *MockPublicKey {
	return &MockPublicKey{id: id}
}

func (m *MockPublicKey) Address() Address { return Ed25519Address(m.id) }

func (m *MockPublicKey) Bytes() []byte { return []byte(m.id) }

// Verify accepts exactly the signatures MockSigner would produce.
func (m *MockPublicKey) Verify(data []byte, sig Signature) (bool, error) {
	want := string(data) + fmt.Sprintf("-signed-by-%s", m.id)
	return string(sig) == want, nil
}
