// Copyright 2017 Pilosa Corp.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions
// are met:
//
// 1. Redistributions of source code must retain the above copyright
// notice, this list of conditions and the following disclaimer.
//
// 2. Redistributions in binary form must reproduce the above copyright
// notice, this list of conditions and the following disclaimer in the
// documentation and/or other materials provided with the distribution.
//
// 3. Neither the name of the copyright holder nor the names of its
// contributors may be used to endorse or promote products derived
// from this software without specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND
// CONTRIBUTORS "AS IS" AND ANY EXPRESS OR IMPLIED WARRANTIES,
// INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
// MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDER OR
// CONTRIBUTORS BE LIABLE FOR ANY DIRECT, INDIRECT, INCIDENTAL,
// SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES (INCLUDING,
// BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS
// INTERRUPTION) HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY,
// WHETHER IN CONTRACT, STRICT LIABILITY, OR TORT (INCLUDING
// NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH
// DAMAGE.

package homomorphic

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	paillier "github.com/roasbeef/go-go-gadget-paillier"
)

// EncryptedNumber is a ciphertext together with the exponent of the number
// it encrypts. EncryptedNumbers are immutable.
type EncryptedNumber struct {
	ctx      *Context
	cipher   *big.Int
	exponent int
}

// Encrypt encodes and encrypts x.
func (c *Context) Encrypt(x float64) (*EncryptedNumber, error) {
	en, err := c.EncodeFloat64(x)
	if err != nil {
		return nil, err
	}
	return c.EncryptEncoded(en)
}

// EncryptInt64 encodes and encrypts v.
func (c *Context) EncryptInt64(v int64) (*EncryptedNumber, error) {
	en, err := c.EncodeInt64(v)
	if err != nil {
		return nil, err
	}
	return c.EncryptEncoded(en)
}

// EncryptEncoded encrypts an already encoded number.
func (c *Context) EncryptEncoded(en *EncodedNumber) (*EncryptedNumber, error) {
	ct, err := paillier.Encrypt(c.pub.key, en.Encoding.Bytes())
	if err != nil {
		return nil, errors.Wrap(err, "encrypting")
	}
	return &EncryptedNumber{
		ctx:      c,
		cipher:   new(big.Int).SetBytes(ct),
		exponent: en.Exponent,
	}, nil
}

// ParseEncryptedNumber reads a token written by EncryptedNumber.String. The
// result belongs to c; nothing in the token identifies the key, so parsing
// a token of another key succeeds and produces garbage on decryption.
func (c *Context) ParseEncryptedNumber(token string) (*EncryptedNumber, error) {
	i := strings.LastIndexByte(token, ':')
	if i <= 0 {
		return nil, errors.Wrapf(ErrMalformedCiphertext, "token '%s' has no exponent", token)
	}
	cipher, ok := new(big.Int).SetString(token[:i], 16)
	if !ok || cipher.Sign() <= 0 || cipher.Cmp(c.pub.key.NSquared) >= 0 {
		return nil, errors.Wrapf(ErrMalformedCiphertext, "token '%s' has invalid ciphertext", token)
	}
	exp, err := strconv.Atoi(token[i+1:])
	if err != nil {
		return nil, errors.Wrapf(ErrMalformedCiphertext, "token '%s' has invalid exponent", token)
	}
	return &EncryptedNumber{ctx: c, cipher: cipher, exponent: exp}, nil
}

// Context returns the Context en was encrypted under.
func (en *EncryptedNumber) Context() *Context { return en.ctx }

// Exponent returns the exponent of the encrypted number.
func (en *EncryptedNumber) Exponent() int { return en.exponent }

// String returns the ciphertext in hex followed by ':' and the exponent in
// decimal. The token contains no delimiter character of any built-in
// dialect.
func (en *EncryptedNumber) String() string {
	return en.cipher.Text(16) + ":" + strconv.Itoa(en.exponent)
}

// Add returns an encryption of the sum of en and o. Both must have been
// encrypted under equal Contexts.
func (en *EncryptedNumber) Add(o *EncryptedNumber) (*EncryptedNumber, error) {
	if en.ctx.pub.id != o.ctx.pub.id {
		return nil, errors.Wrapf(ErrKeyMismatch, "adding numbers of keys %s and %s", en.ctx.pub.ID(), o.ctx.pub.ID())
	}
	if en.ctx.signed != o.ctx.signed {
		return nil, errors.Wrapf(ErrContextMismatch, "adding %s and %s numbers", en.ctx, o.ctx)
	}
	a, b := en, o
	if a.exponent > b.exponent {
		a = a.decreaseExponentTo(b.exponent)
	} else if b.exponent > a.exponent {
		b = b.decreaseExponentTo(a.exponent)
	}
	pub := en.ctx.pub.key
	sum := paillier.AddCipher(pub, a.cipher.Bytes(), b.cipher.Bytes())
	return &EncryptedNumber{
		ctx:      en.ctx,
		cipher:   new(big.Int).SetBytes(sum),
		exponent: a.exponent,
	}, nil
}

// AddFloat64 returns an encryption of en + x.
func (en *EncryptedNumber) AddFloat64(x float64) (*EncryptedNumber, error) {
	o, err := en.ctx.Encrypt(x)
	if err != nil {
		return nil, err
	}
	return en.Add(o)
}

// MulInt64 returns an encryption of en * k for k >= 0.
func (en *EncryptedNumber) MulInt64(k int64) (*EncryptedNumber, error) {
	if k < 0 {
		return nil, errors.Errorf("negative factor %d", k)
	}
	return en.mul(big.NewInt(k)), nil
}

// decreaseExponentTo rescales the mantissa so the number is expressed with
// exponent exp, which must not exceed en's.
func (en *EncryptedNumber) decreaseExponentTo(exp int) *EncryptedNumber {
	scaled := en.mul(pow(en.exponent - exp))
	scaled.exponent = exp
	return scaled
}

func (en *EncryptedNumber) mul(k *big.Int) *EncryptedNumber {
	c := paillier.Mul(en.ctx.pub.key, en.cipher.Bytes(), k.Bytes())
	return &EncryptedNumber{
		ctx:      en.ctx,
		cipher:   new(big.Int).SetBytes(c),
		exponent: en.exponent,
	}
}
