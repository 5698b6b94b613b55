// Package sign defines the signing interfaces used by wallets and the transaction pipeline,
// and implements them for Ed25519, the only scheme the ledger accepts from this toolkit.
//
// Private material stays inside a Signer. Callers get signatures, public keys and addresses:
//
//	signer, err := sign.NewEd25519Signer(seed)
//	if err != nil {
//	    return err
//	}
//	sig, err := signer.Sign(txBytes)
//	fmt.Println(signer.PublicKey().Address(), sig.Base64())
//
// Verify is the standalone check used on received material. It reports malformed lengths as
// ErrMalformedInput and otherwise answers only valid or invalid.
package sign
