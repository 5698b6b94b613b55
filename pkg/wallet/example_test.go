package wallet_test

import (
	"fmt"
	"log"

	"github.com/snehendu098/ghost/pkg/wallet"
)

func ExampleFromBase64PrivateKey() {
	w, err := wallet.FromBase64PrivateKey("nWGxne/9WmC6hEr0kuwsxERJxWl7MmkZcDusAxyuf2A=")
	if err != nil {
		log.Fatal(err)
	}

	sig, err := w.Sign([]byte("hello"))
	if err != nil {
		log.Fatal(err)
	}
	ok, _ := w.Verify([]byte("hello"), sig)

	fmt.Println(len(w.Address()), len(sig), ok)
	// Output:
	// 66 64 true
}
