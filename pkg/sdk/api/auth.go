package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// Auth signs private-API requests with the exchange's HMAC-SHA256 scheme:
// signature = hex(hmac_sha256(secret, nonce + url + body)), sent alongside
// the API key and nonce as request headers.
type Auth struct {
	key    string
	secret string

	nonceMu   sync.Mutex
	lastNonce int64
}

// NewAuth creates an Auth for the given credentials.
func NewAuth(key, secret string) *Auth {
	return &Auth{key: key, secret: secret}
}

// nextNonce returns a strictly increasing nonce. The exchange rejects
// reused or decreasing nonces, so concurrent requests share one counter.
func (a *Auth) nextNonce() int64 {
	a.nonceMu.Lock()
	defer a.nonceMu.Unlock()
	n := time.Now().UnixMilli()
	if n <= a.lastNonce {
		n = a.lastNonce + 1
	}
	a.lastNonce = n
	return n
}

// SignRequest builds the auth headers for one request.
// url must be the absolute URL including query string; body is the raw
// request body ("" for GET/DELETE).
func (a *Auth) SignRequest(url, body string) map[string]string {
	nonce := strconv.FormatInt(a.nextNonce(), 10)
	message := nonce + url + body

	mac := hmac.New(sha256.New, []byte(a.secret))
	mac.Write([]byte(message))
	signature := hex.EncodeToString(mac.Sum(nil))

	return map[string]string{
		"ACCESS-KEY":       a.key,
		"ACCESS-NONCE":     nonce,
		"ACCESS-SIGNATURE": signature,
	}
}
