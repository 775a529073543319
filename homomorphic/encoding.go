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
	"math"
	"math/big"

	"github.com/pkg/errors"
)

// Base is the base of the exponent of an EncodedNumber.
const Base = 16

const (
	log2Base          = 4
	floatMantissaBits = 53
)

var bigBase = big.NewInt(Base)

// EncodedNumber is a number represented as Encoding * Base^Exponent, where
// Encoding is an integer mod N. In a signed Context negative mantissas wrap
// around below N.
type EncodedNumber struct {
	Encoding *big.Int
	Exponent int
}

// Context ties a public key to the way numbers are encoded for it. Numbers
// can only be combined with numbers of an equal Context.
type Context struct {
	pub    *PublicKey
	signed bool
}

// PublicKey returns the key numbers of this Context are encrypted with.
func (c *Context) PublicKey() *PublicKey { return c.pub }

// Signed reports whether the Context encodes negative numbers.
func (c *Context) Signed() bool { return c.signed }

// Equal reports whether c and o encode and encrypt numbers the same way.
func (c *Context) Equal(o *Context) bool {
	return c.pub.id == o.pub.id && c.signed == o.signed
}

// String returns "signed" or "unsigned".
func (c *Context) String() string {
	if c.signed {
		return "signed"
	}
	return "unsigned"
}

// maxInt is the largest mantissa magnitude which is encodable. Keeping it at
// N/3 leaves a gap between positive and wrapped negative encodings, so
// overflow of a sum is detected instead of silently changing sign.
func (c *Context) maxInt() *big.Int {
	return new(big.Int).Div(c.pub.key.N, big.NewInt(3))
}

// EncodeFloat64 encodes x exactly, picking the largest exponent which loses
// no precision.
func (c *Context) EncodeFloat64(x float64) (*EncodedNumber, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return nil, errors.Wrapf(ErrOverflow, "encoding %v", x)
	}
	_, binExp := math.Frexp(x)
	exp := floorDiv(binExp-floatMantissaBits, log2Base)
	r := new(big.Rat).SetFloat64(x)
	if exp < 0 {
		r.Mul(r, new(big.Rat).SetInt(pow(-exp)))
	} else {
		r.Quo(r, new(big.Rat).SetInt(pow(exp)))
	}
	return c.encode(round(r), exp)
}

// EncodeInt64 encodes v with exponent 0.
func (c *Context) EncodeInt64(v int64) (*EncodedNumber, error) {
	return c.encode(big.NewInt(v), 0)
}

func (c *Context) encode(mantissa *big.Int, exp int) (*EncodedNumber, error) {
	if !c.signed && mantissa.Sign() < 0 {
		return nil, errors.Wrapf(ErrOverflow, "negative mantissa %v in unsigned context", mantissa)
	}
	if mantissa.CmpAbs(c.maxInt()) > 0 {
		return nil, errors.Wrapf(ErrOverflow, "mantissa of %d bits", mantissa.BitLen())
	}
	return &EncodedNumber{
		Encoding: new(big.Int).Mod(mantissa, c.pub.key.N),
		Exponent: exp,
	}, nil
}

// Mantissa returns the signed integer en encodes.
func (c *Context) Mantissa(en *EncodedNumber) (*big.Int, error) {
	n := c.pub.key.N
	if en.Encoding.Sign() < 0 || en.Encoding.Cmp(n) >= 0 {
		return nil, errors.Wrap(ErrOverflow, "encoding not in [0, N)")
	}
	bound := c.maxInt()
	if en.Encoding.Cmp(bound) <= 0 {
		return new(big.Int).Set(en.Encoding), nil
	}
	if c.signed && en.Encoding.Cmp(new(big.Int).Sub(n, bound)) >= 0 {
		return new(big.Int).Sub(en.Encoding, n), nil
	}
	return nil, errors.Wrap(ErrOverflow, "decoding")
}

// Decode returns the float64 closest to the number en encodes.
func (c *Context) Decode(en *EncodedNumber) (float64, error) {
	m, err := c.Mantissa(en)
	if err != nil {
		return 0, err
	}
	r := new(big.Rat).SetInt(m)
	if en.Exponent >= 0 {
		r.Mul(r, new(big.Rat).SetInt(pow(en.Exponent)))
	} else {
		r.Quo(r, new(big.Rat).SetInt(pow(-en.Exponent)))
	}
	f, _ := r.Float64()
	return f, nil
}

// pow returns Base^e for e >= 0.
func pow(e int) *big.Int {
	return new(big.Int).Exp(bigBase, big.NewInt(int64(e)), nil)
}

// floorDiv divides rounding towards negative infinity.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// round returns the integer nearest to r, halves away from zero.
func round(r *big.Rat) *big.Int {
	if r.IsInt() {
		return new(big.Int).Set(r.Num())
	}
	num := new(big.Int).Mul(r.Num(), big.NewInt(2))
	num.Add(num, new(big.Int).Mul(r.Denom(), big.NewInt(int64(r.Sign()))))
	den := new(big.Int).Mul(r.Denom(), big.NewInt(2))
	return num.Quo(num, den)
}
