package api

import "testing"

func TestSignRequestHeaders(t *testing.T) {
	auth := NewAuth("key", "secret")
	headers := auth.SignRequest("https://example.com/api/accounts/balance", "")

	if headers["ACCESS-KEY"] != "key" {
		t.Fatalf("ACCESS-KEY got=%s", headers["ACCESS-KEY"])
	}
	if headers["ACCESS-NONCE"] == "" {
		t.Fatalf("nonce must not be empty")
	}
	// 签名为 hex(hmac_sha256)，长度固定 64
	if len(headers["ACCESS-SIGNATURE"]) != 64 {
		t.Fatalf("signature length got=%d", len(headers["ACCESS-SIGNATURE"]))
	}
}

func TestNonceStrictlyIncreasing(t *testing.T) {
	auth := NewAuth("key", "secret")
	prev := int64(0)
	for i := 0; i < 100; i++ {
		n := auth.nextNonce()
		if n <= prev {
			t.Fatalf("nonce not increasing: prev=%d next=%d", prev, n)
		}
		prev = n
	}
}

func TestSignRequestBodyChangesSignature(t *testing.T) {
	auth := NewAuth("key", "secret")
	h1 := auth.SignRequest("https://example.com/p", `{"amount":1}`)
	h2 := auth.SignRequest("https://example.com/p", `{"amount":1}`)
	// 不同 nonce 下同一 body 的签名也必须不同（nonce 参与签名）
	if h1["ACCESS-SIGNATURE"] == h2["ACCESS-SIGNATURE"] {
		t.Fatalf("signatures with different nonces must differ")
	}
}
