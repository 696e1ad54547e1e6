// Package token issues and redeems the signed login tokens carried by
// magic links. A token encodes only the user id; the destination path
// travels next to it in the URL.
package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var ErrInvalidToken = errors.New("invalid login token")

// encoding is unpadded base32: the alphabet survives URL query
// parameters and case-folding email clients. Redeem uppercases before
// decoding since links get retyped by hand.
var encoding = base32.StdEncoding.WithPadding(base32.NoPadding)

type Codec struct {
	secret []byte
}

func NewCodec(secret string) *Codec {
	return &Codec{secret: []byte(secret)}
}

// Issue signs the user id and wraps it in the URL-safe encoding.
// Tokens carry no expiry; issuing new ones is throttled by the rate
// limiter instead.
func (c *Codec) Issue(userID uint) string {
	payload := strconv.FormatUint(uint64(userID), 10)
	signed := payload + ":" + c.sign(payload)
	return encoding.EncodeToString([]byte(signed))
}

// Redeem reverses Issue. Any malformed encoding, bad signature or
// non-numeric payload fails with ErrInvalidToken.
func (c *Codec) Redeem(token string) (uint, error) {
	raw, err := encoding.DecodeString(strings.ToUpper(token))
	if err != nil {
		return 0, ErrInvalidToken
	}
	payload, sig, ok := strings.Cut(string(raw), ":")
	if !ok {
		return 0, ErrInvalidToken
	}
	if !hmac.Equal([]byte(sig), []byte(c.sign(payload))) {
		return 0, ErrInvalidToken
	}
	id, err := strconv.ParseUint(payload, 10, 32)
	if err != nil {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

// LoginLink builds <base><path>?token=<t>, preserving query params
// already present in path.
func LoginLink(base, path, token string) string {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%stoken=%s", strings.TrimSuffix(base, "/"), path, sep, url.QueryEscape(token))
}
