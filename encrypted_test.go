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

package prep_test

import (
	"testing"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/homomorphic"
	"github.com/pilosa/prep/mock"
	"github.com/pilosa/prep/test"
	"github.com/pkg/errors"
)

func TestEncryptHomomorphically(t *testing.T) {
	kp, err := homomorphic.GenerateKeyPair(nil, 512)
	test.ErrNil(t, err, "GenerateKeyPair")

	stats := &mock.RecordingStatter{}
	recs := []string{"alice,850,x", "bob,-12.5,y", "carol,0,z", "dave,3.25,"}
	d := newDataset(recs, prep.OptDatasetStatter(stats))
	ed := d.EncryptHomomorphically(kp, 1)
	test.MustBe(t, kp, ed.KeyPair())
	test.MustBe(t, true, ed.Context().Signed())
	test.MustBe(t, prep.CSV, ed.Dialect())

	got, err := ed.Collect()
	test.ErrNil(t, err, "Collect")
	test.MustBe(t, int64(4), stats.Counts()["encrypt.values"])
	for i, r := range got {
		cols := prep.CSV.Parse(r)
		orig := prep.CSV.Parse(recs[i])
		test.MustBe(t, len(orig), len(cols), "column count")
		test.MustBe(t, orig[0], cols[0], "column 0 untouched")
		test.MustBe(t, orig[2], cols[2], "column 2 untouched")
		if cols[1] == orig[1] {
			t.Fatalf("column 1 of record %d not encrypted", i)
		}
		en, err := ed.Context().ParseEncryptedNumber(cols[1])
		test.ErrNil(t, err, "ParseEncryptedNumber")
		_, err = kp.Private.Decrypt(en)
		test.ErrNil(t, err, "Decrypt")
	}

	dec, err := ed.Decrypt(1).Collect()
	test.ErrNil(t, err, "Decrypt")
	test.MustBe(t, recs, dec)

	sum, err := ed.DecryptedSum(1)
	test.ErrNil(t, err, "DecryptedSum")
	test.MustBe(t, 850-12.5+0+3.25, sum)

	avg, err := ed.Average(1)
	test.ErrNil(t, err, "Average")
	test.MustBe(t, (850-12.5+0+3.25)/4, avg)
}

func TestEncryptMalformed(t *testing.T) {
	kp, err := homomorphic.GenerateKeyPair(nil, 256)
	test.ErrNil(t, err, "GenerateKeyPair")
	d := newDataset([]string{"a,1", "b,one"})
	_, err = newDataset([]string{"a,1", "b, "}).EncryptHomomorphically(kp, 1).Collect()
	if errors.Cause(err) != prep.ErrMalformedNumericColumn {
		t.Fatalf("expected ErrMalformedNumericColumn for blank value, got %v", err)
	}
	_, err = d.EncryptHomomorphically(kp, 1).Collect()
	if errors.Cause(err) != prep.ErrMalformedNumericColumn {
		t.Fatalf("expected ErrMalformedNumericColumn, got %v", err)
	}
	_, err = d.EncryptHomomorphically(kp, 2).Collect()
	if errors.Cause(err) != prep.ErrColumnIndexOutOfRange {
		t.Fatalf("expected ErrColumnIndexOutOfRange, got %v", err)
	}
}

func TestEncryptPaddedNumbers(t *testing.T) {
	kp, err := homomorphic.GenerateKeyPair(nil, 256)
	test.ErrNil(t, err, "GenerateKeyPair")
	ed := newDataset([]string{"a, 850", "b,12 ", "c,\t-2.5 "}).EncryptHomomorphically(kp, 1)

	dec, err := ed.Decrypt(1).Collect()
	test.ErrNil(t, err, "Decrypt")
	test.MustBe(t, []string{"a,850", "b,12", "c,-2.5"}, dec)

	sum, err := ed.DecryptedSum(1)
	test.ErrNil(t, err, "DecryptedSum")
	test.MustBe(t, 859.5, sum)
}

func TestEncryptedSumEmpty(t *testing.T) {
	kp, err := homomorphic.GenerateKeyPair(nil, 256)
	test.ErrNil(t, err, "GenerateKeyPair")
	ed := newDataset(nil).EncryptHomomorphically(kp, 0)
	sum, err := ed.DecryptedSum(0)
	test.ErrNil(t, err, "DecryptedSum")
	test.MustBe(t, 0.0, sum)
	if _, err := ed.Average(0); err == nil {
		t.Fatal("expected error for average of nothing")
	}
}

func TestAsEncrypted(t *testing.T) {
	kp, err := homomorphic.GenerateKeyPair(nil, 256)
	test.ErrNil(t, err, "GenerateKeyPair")
	recs := []string{"a,1.5", "b,2", "c,-4"}
	saved, err := newDataset(recs).EncryptHomomorphically(kp, 1).Collect()
	test.ErrNil(t, err, "Collect")

	ed := newDataset(saved).AsEncrypted(kp)
	sum, err := ed.DecryptedSum(1)
	test.ErrNil(t, err, "DecryptedSum")
	test.MustBe(t, -0.5, sum)
	dec, err := ed.Decrypt(1).Collect()
	test.ErrNil(t, err, "Decrypt")
	test.MustBe(t, recs, dec)
}
