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

// Package kafka loads the messages of Kafka topics into partitions, one
// record per message.
package kafka

import (
	"io"
	"io/ioutil"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/Shopify/sarama"
	cluster "github.com/bsm/sarama-cluster"
	"github.com/pilosa/prep"
	"github.com/pilosa/prep/local"
	"github.com/pkg/errors"
)

// Source reads records from a set of Kafka topics as a member of a consumer
// group. A Source stops producing records once MaxMsgs messages were read or
// no message arrived for Timeout.
type Source struct {
	Hosts   []string
	Topics  []string
	Group   string
	MaxMsgs int
	Timeout time.Duration
	Log     prep.Logger

	numMsgs  int
	consumer *cluster.Consumer
}

// NewSource gets a new Source
func NewSource() *Source {
	return &Source{
		Hosts:   []string{"localhost:9092"},
		Topics:  []string{"test"},
		Group:   "prep",
		Timeout: 10 * time.Second,
		Log:     prep.NopLogger{},
	}
}

// Open joins the consumer group.
func (s *Source) Open() error {
	sarama.Logger = log.New(ioutil.Discard, "", 0)
	config := cluster.NewConfig()
	config.Config.Version = sarama.V0_10_0_0
	config.Consumer.Return.Errors = true
	config.Consumer.Offsets.Initial = sarama.OffsetOldest
	config.Group.Return.Notifications = true

	var err error
	s.consumer, err = cluster.NewConsumer(s.Hosts, s.Group, s.Topics, config)
	if err != nil {
		return errors.Wrap(err, "getting new consumer")
	}
	if s.Log == nil {
		s.Log = prep.NopLogger{}
	}

	go func() {
		for err := range s.consumer.Errors() {
			s.Log.Printf("kafka consumer error: %v", err)
		}
	}()
	go func() {
		for ntf := range s.consumer.Notifications() {
			s.Log.Debugf("rebalanced: %+v", ntf)
		}
	}()
	return nil
}

// Close leaves the consumer group.
func (s *Source) Close() error {
	if s.consumer == nil {
		return nil
	}
	err := s.consumer.Close()
	return errors.Wrap(err, "closing kafka consumer")
}

// Next returns the next message. It returns io.EOF when the Source is
// exhausted.
func (s *Source) Next() (*sarama.ConsumerMessage, error) {
	if s.consumer == nil {
		return nil, errors.New("source is not open")
	}
	if s.MaxMsgs > 0 {
		if s.numMsgs >= s.MaxMsgs {
			return nil, io.EOF
		}
	}
	var idle <-chan time.Time
	if s.Timeout > 0 {
		timer := time.NewTimer(s.Timeout)
		defer timer.Stop()
		idle = timer.C
	}
	select {
	case msg, ok := <-s.consumer.Messages():
		if !ok {
			return nil, errors.New("messages channel closed")
		}
		s.numMsgs++
		s.consumer.MarkOffset(msg, "")
		return msg, nil
	case <-idle:
		return nil, io.EOF
	}
}

// Load reads messages until the Source is exhausted and returns them as a
// Collection with one partition per Kafka partition. Within a partition
// records keep their offset order.
func (s *Source) Load(opts ...local.Option) (*local.Collection, error) {
	b := newBatcher()
	for {
		msg, err := s.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, err
		}
		b.add(msg.Topic, msg.Partition, Record(msg.Value))
	}
	s.Log.Printf("read %d messages from %v", s.numMsgs, s.Topics)
	return local.NewCollection(b.parts(), opts...), nil
}

// Record turns a message value into a record by dropping its trailing line
// break.
func Record(value []byte) string {
	return strings.TrimRight(string(value), "\r\n")
}

type topicPartition struct {
	topic     string
	partition int32
}

// batcher groups records by the Kafka partition they were read from.
type batcher struct {
	recs map[topicPartition][]string
}

func newBatcher() *batcher {
	return &batcher{recs: make(map[topicPartition][]string)}
}

func (b *batcher) add(topic string, partition int32, rec string) {
	tp := topicPartition{topic: topic, partition: partition}
	b.recs[tp] = append(b.recs[tp], rec)
}

// parts returns the batches ordered by topic and partition.
func (b *batcher) parts() [][]string {
	tps := make([]topicPartition, 0, len(b.recs))
	for tp := range b.recs {
		tps = append(tps, tp)
	}
	sort.Slice(tps, func(i, j int) bool {
		if tps[i].topic != tps[j].topic {
			return tps[i].topic < tps[j].topic
		}
		return tps[i].partition < tps[j].partition
	})
	ret := make([][]string, len(tps))
	for i, tp := range tps {
		ret[i] = b.recs[tp]
	}
	return ret
}
