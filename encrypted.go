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

package prep

import (
	"strconv"
	"strings"

	"github.com/pilosa/prep/homomorphic"
	"github.com/pkg/errors"
)

// EncryptedDataset is a Dataset with one column replaced by Paillier
// ciphertexts. It remembers the key pair and the Context the column was
// encrypted under, so sums can be computed over the ciphertexts and
// decrypted afterwards.
type EncryptedDataset struct {
	ds  *Dataset
	kp  *homomorphic.KeyPair
	ctx *homomorphic.Context
}

// EncryptHomomorphically replaces the column at idx of every record by its
// encryption under the signed context of kp's public key. The column must
// hold numbers, optionally padded with whitespace; any other value makes
// evaluation fail with
// ErrMalformedNumericColumn. All other columns are left untouched.
func (d *Dataset) EncryptHomomorphically(kp *homomorphic.KeyPair, idx int) *EncryptedDataset {
	ctx := kp.Public.SignedContext()
	stats := d.stats
	ds := d.mapColumns(func(columns []string) ([]string, error) {
		val, err := column(columns, idx)
		if err != nil {
			return nil, err
		}
		x, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, errors.Wrapf(ErrMalformedNumericColumn, "column %d value '%s'", idx, val)
		}
		en, err := ctx.Encrypt(x)
		if err != nil {
			return nil, errors.Wrapf(err, "encrypting column %d", idx)
		}
		columns[idx] = en.String()
		stats.Count("encrypt.values", 1, 1)
		return columns, nil
	})
	return &EncryptedDataset{ds: ds, kp: kp, ctx: ctx}
}

// AsEncrypted treats d as holding ciphertexts produced by
// EncryptHomomorphically with kp, e.g. after they were saved and loaded
// again. Nothing is checked until the encrypted column is used.
func (d *Dataset) AsEncrypted(kp *homomorphic.KeyPair) *EncryptedDataset {
	return &EncryptedDataset{ds: d, kp: kp, ctx: kp.Public.SignedContext()}
}

// KeyPair returns the key pair the column was encrypted with.
func (e *EncryptedDataset) KeyPair() *homomorphic.KeyPair { return e.kp }

// Context returns the Context the column was encrypted under.
func (e *EncryptedDataset) Context() *homomorphic.Context { return e.ctx }

// PublicKey returns the public key of the key pair.
func (e *EncryptedDataset) PublicKey() *homomorphic.PublicKey { return e.kp.Public }

// Dataset returns the records with the ciphertexts as a plain Dataset.
func (e *EncryptedDataset) Dataset() *Dataset { return e.ds }

// Dialect returns the Dialect of the records.
func (e *EncryptedDataset) Dialect() Dialect { return e.ds.dialect }

// Collect evaluates the encryption and returns every record.
func (e *EncryptedDataset) Collect() ([]string, error) { return e.ds.Collect() }

// Count evaluates the encryption and returns the number of records.
func (e *EncryptedDataset) Count() (int64, error) { return e.ds.Count() }

// Sum adds up the ciphertexts in the column at idx without decrypting them.
// It returns an encryption of zero for an empty dataset.
func (e *EncryptedDataset) Sum(idx int) (*homomorphic.EncryptedNumber, error) {
	dialect, ctx := e.ds.dialect, e.ctx
	tokens := e.ds.records.Map(func(record string) (string, bool, error) {
		val, err := column(dialect.Parse(record), idx)
		return val, true, err
	})
	tok, ok, err := tokens.Reduce(func(a, b string) (string, error) {
		x, err := ctx.ParseEncryptedNumber(a)
		if err != nil {
			return "", err
		}
		y, err := ctx.ParseEncryptedNumber(b)
		if err != nil {
			return "", err
		}
		sum, err := x.Add(y)
		if err != nil {
			return "", err
		}
		return sum.String(), nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "summing column %d", idx)
	}
	if !ok {
		return ctx.EncryptInt64(0)
	}
	return ctx.ParseEncryptedNumber(tok)
}

// DecryptedSum returns the plaintext of Sum. It needs the private key.
func (e *EncryptedDataset) DecryptedSum(idx int) (float64, error) {
	if e.kp.Private == nil {
		return 0, errors.New("no private key")
	}
	sum, err := e.Sum(idx)
	if err != nil {
		return 0, err
	}
	return e.kp.Private.Decrypt(sum)
}

// Average returns the mean of the column at idx. The sum is computed over
// the ciphertexts; only the result is decrypted.
func (e *EncryptedDataset) Average(idx int) (float64, error) {
	n, err := e.Count()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("average of empty dataset")
	}
	sum, err := e.DecryptedSum(idx)
	if err != nil {
		return 0, err
	}
	return sum / float64(n), nil
}

// Decrypt returns a Dataset with the ciphertexts in the column at idx
// replaced by the decimal values they encrypt.
func (e *EncryptedDataset) Decrypt(idx int) *Dataset {
	ctx, sk := e.ctx, e.kp.Private
	return e.ds.mapColumns(func(columns []string) ([]string, error) {
		if sk == nil {
			return nil, errors.New("no private key")
		}
		val, err := column(columns, idx)
		if err != nil {
			return nil, err
		}
		en, err := ctx.ParseEncryptedNumber(val)
		if err != nil {
			return nil, err
		}
		x, err := sk.Decrypt(en)
		if err != nil {
			return nil, err
		}
		columns[idx] = strconv.FormatFloat(x, 'f', -1, 64)
		return columns, nil
	})
}
