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

// Package homomorphic implements the Paillier cryptosystem on top of
// github.com/roasbeef/go-go-gadget-paillier, together with an encoding of
// floating point numbers which survives encryption. Ciphertexts produced
// under the same public key can be added without the private key.
package homomorphic

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"io"
	"math/big"

	"github.com/pkg/errors"
	paillier "github.com/roasbeef/go-go-gadget-paillier"
	"github.com/zeebo/xxh3"
)

var one = big.NewInt(1)

// MinKeyBits is the smallest modulus GenerateKeyPair accepts.
const MinKeyBits = 128

// PublicKey is a Paillier public key. It may be shared freely and is safe
// for concurrent use.
type PublicKey struct {
	key *paillier.PublicKey
	id  uint64
}

func newPublicKey(n *big.Int) *PublicKey {
	nn := new(big.Int).Mul(n, n)
	return &PublicKey{
		key: &paillier.PublicKey{
			N:        n,
			G:        new(big.Int).Add(n, one),
			NSquared: nn,
		},
		id: xxh3.Hash(n.Bytes()),
	}
}

// N returns the modulus.
func (pk *PublicKey) N() *big.Int { return new(big.Int).Set(pk.key.N) }

// ID identifies the key. Two public keys with the same modulus have the same
// ID.
func (pk *PublicKey) ID() string { return fmt.Sprintf("%016x", pk.id) }

// Bits is the bit length of the modulus.
func (pk *PublicKey) Bits() int { return pk.key.N.BitLen() }

// SignedContext returns a Context which encodes negative as well as
// positive numbers.
func (pk *PublicKey) SignedContext() *Context { return &Context{pub: pk, signed: true} }

// UnsignedContext returns a Context which only encodes numbers >= 0.
func (pk *PublicKey) UnsignedContext() *Context { return &Context{pub: pk} }

// PrivateKey is the secret half of a KeyPair. Only Decrypt needs it.
type PrivateKey struct {
	pub    *PublicKey
	p, q   *big.Int
	lambda *big.Int
	mu     *big.Int
}

func newPrivateKey(p, q *big.Int) (*PrivateKey, error) {
	n := new(big.Int).Mul(p, q)
	pm1 := new(big.Int).Sub(p, one)
	qm1 := new(big.Int).Sub(q, one)
	gcd := new(big.Int).GCD(nil, nil, pm1, qm1)
	lambda := new(big.Int).Mul(pm1, qm1)
	lambda.Div(lambda, gcd)
	// With g = n+1, L(g^lambda mod n^2) = lambda mod n, so mu is its inverse.
	mu := new(big.Int).ModInverse(new(big.Int).Mod(lambda, n), n)
	if mu == nil {
		return nil, errors.New("lambda not invertible mod n")
	}
	return &PrivateKey{
		pub:    newPublicKey(n),
		p:      p,
		q:      q,
		lambda: lambda,
		mu:     mu,
	}, nil
}

// PublicKey returns the public half of the key.
func (sk *PrivateKey) PublicKey() *PublicKey { return sk.pub }

// decryptRaw returns the plaintext residue of c.
func (sk *PrivateKey) decryptRaw(c *big.Int) *big.Int {
	n, nn := sk.pub.key.N, sk.pub.key.NSquared
	x := new(big.Int).Exp(c, sk.lambda, nn)
	x.Sub(x, one)
	x.Div(x, n)
	x.Mul(x, sk.mu)
	return x.Mod(x, n)
}

// Decrypt returns the number en holds. It fails with ErrKeyMismatch if en
// was not encrypted under this key.
func (sk *PrivateKey) Decrypt(en *EncryptedNumber) (float64, error) {
	enc, err := sk.DecryptEncoded(en)
	if err != nil {
		return 0, err
	}
	return en.ctx.Decode(enc)
}

// DecryptEncoded returns the encoding en holds without decoding it.
func (sk *PrivateKey) DecryptEncoded(en *EncryptedNumber) (*EncodedNumber, error) {
	if en.ctx.pub.id != sk.pub.id {
		return nil, errors.Wrapf(ErrKeyMismatch, "decrypting number of key %s with key %s", en.ctx.pub.ID(), sk.pub.ID())
	}
	return &EncodedNumber{Encoding: sk.decryptRaw(en.cipher), Exponent: en.exponent}, nil
}

// KeyPair holds both halves of a Paillier key.
type KeyPair struct {
	Public  *PublicKey
	Private *PrivateKey
}

// GenerateKeyPair creates a new key pair with a modulus of bits bits, using
// random as its source of entropy. If random is nil crypto/rand is used.
func GenerateKeyPair(random io.Reader, bits int) (*KeyPair, error) {
	if bits < MinKeyBits {
		return nil, errors.Errorf("key size %d is below minimum of %d bits", bits, MinKeyBits)
	}
	if random == nil {
		random = rand.Reader
	}
	for {
		p, err := rand.Prime(random, bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "generating p")
		}
		q, err := rand.Prime(random, bits-bits/2)
		if err != nil {
			return nil, errors.Wrap(err, "generating q")
		}
		if p.Cmp(q) == 0 {
			continue
		}
		n := new(big.Int).Mul(p, q)
		if n.BitLen() != bits {
			continue
		}
		sk, err := newPrivateKey(p, q)
		if err != nil {
			continue
		}
		return &KeyPair{Public: sk.pub, Private: sk}, nil
	}
}

type keyPairJSON struct {
	N *big.Int `json:"n"`
	P *big.Int `json:"p,omitempty"`
	Q *big.Int `json:"q,omitempty"`
}

// MarshalJSON writes the modulus and, if the private key is present, its
// primes.
func (kp *KeyPair) MarshalJSON() ([]byte, error) {
	if kp.Public == nil {
		return nil, errors.New("key pair without public key")
	}
	j := keyPairJSON{N: kp.Public.key.N}
	if kp.Private != nil {
		j.P, j.Q = kp.Private.p, kp.Private.q
	}
	return json.Marshal(j)
}

// UnmarshalJSON reads a key pair written by MarshalJSON. A document without
// primes yields a KeyPair with only the public key.
func (kp *KeyPair) UnmarshalJSON(data []byte) error {
	j := keyPairJSON{}
	if err := json.Unmarshal(data, &j); err != nil {
		return errors.Wrap(err, "decoding key pair")
	}
	if j.N == nil || j.N.Sign() <= 0 {
		return errors.New("key pair without modulus")
	}
	if j.P == nil || j.Q == nil {
		kp.Public, kp.Private = newPublicKey(j.N), nil
		return nil
	}
	if new(big.Int).Mul(j.P, j.Q).Cmp(j.N) != 0 {
		return errors.New("primes do not match modulus")
	}
	sk, err := newPrivateKey(j.P, j.Q)
	if err != nil {
		return errors.Wrap(err, "rebuilding private key")
	}
	kp.Public, kp.Private = sk.pub, sk
	return nil
}
