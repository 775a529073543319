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

package kafka

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/Shopify/sarama"
	"github.com/pilosa/prep/test"
)

func TestRecord(t *testing.T) {
	tests := []struct {
		in  string
		exp string
	}{
		{in: "a,b", exp: "a,b"},
		{in: "a,b\n", exp: "a,b"},
		{in: "a,b\r\n", exp: "a,b"},
		{in: "", exp: ""},
	}
	for _, tst := range tests {
		test.MustBe(t, tst.exp, Record([]byte(tst.in)), tst.in)
	}
}

func TestBatcher(t *testing.T) {
	b := newBatcher()
	b.add("t2", 0, "z")
	b.add("t1", 1, "c")
	b.add("t1", 0, "a")
	b.add("t1", 0, "b")
	test.MustBe(t, [][]string{{"a", "b"}, {"c"}, {"z"}}, b.parts())
	test.MustBe(t, [][]string{}, newBatcher().parts())
}

func TestNextUnopened(t *testing.T) {
	if _, err := NewSource().Next(); err == nil {
		t.Fatal("expected error from unopened source")
	}
	test.ErrNil(t, NewSource().Close(), "Close")
}

// TestLoad needs a Kafka broker. It runs when PREP_KAFKA_HOSTS is set.
func TestLoad(t *testing.T) {
	hosts := os.Getenv("PREP_KAFKA_HOSTS")
	if hosts == "" {
		t.Skip("PREP_KAFKA_HOSTS not set")
	}
	topic := fmt.Sprintf("prep-test-%d", time.Now().UnixNano())

	conf := sarama.NewConfig()
	conf.Producer.Return.Successes = true
	producer, err := sarama.NewSyncProducer(strings.Split(hosts, ","), conf)
	test.ErrNil(t, err, "NewSyncProducer")
	exp := []string{"a,1", "b,2", "c,3"}
	for _, rec := range exp {
		_, _, err := producer.SendMessage(&sarama.ProducerMessage{
			Topic: topic,
			Value: sarama.StringEncoder(rec + "\n"),
		})
		test.ErrNil(t, err, "SendMessage")
	}
	test.ErrNil(t, producer.Close(), "closing producer")

	src := NewSource()
	src.Hosts = strings.Split(hosts, ",")
	src.Topics = []string{topic}
	src.Group = topic
	src.MaxMsgs = len(exp)
	test.ErrNil(t, src.Open(), "Open")
	defer src.Close()

	c, err := src.Load()
	test.ErrNil(t, err, "Load")
	got, err := c.Collect()
	test.ErrNil(t, err, "Collect")
	sort.Strings(got)
	test.MustBe(t, exp, got)
}
