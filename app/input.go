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

// Package app holds the commands of the prep tool. Each command is a Main
// struct whose exported fields are its flags and whose Run method does the
// work, so they can be used without the command line as well.
package app

import (
	"context"
	"io"
	"runtime"
	"time"

	"github.com/pilosa/prep"
	"github.com/pilosa/prep/file"
	"github.com/pilosa/prep/kafka"
	"github.com/pilosa/prep/local"
	"github.com/pilosa/prep/s3"
	"github.com/pilosa/prep/sql"
	"github.com/pkg/errors"
)

// Input says where records are read from. Exactly one of Path, S3Bucket,
// KafkaTopics and SQLQuery must be set.
type Input struct {
	Path         string        `help:"File or directory of delimited records."`
	S3Bucket     string        `help:"S3 bucket to read records from."`
	S3Prefix     string        `help:"Only read the S3 objects under this prefix."`
	S3Region     string        `help:"AWS region of the input bucket."`
	S3Endpoint   string        `help:"Endpoint of an S3 compatible service to read from."`
	KafkaHosts   []string      `help:"Comma separated list of Kafka hosts and ports."`
	KafkaTopics  []string      `help:"Comma separated list of Kafka topics to read records from."`
	KafkaGroup   string        `help:"Kafka consumer group."`
	KafkaMaxMsgs int           `help:"Stop after this many Kafka messages. 0 means no limit."`
	KafkaTimeout time.Duration `help:"Stop reading Kafka once no message arrived for this long."`
	SQLDriver    string        `help:"Database driver: sqlite, pgx, sqlserver or mysql."`
	SQLDSN       string        `help:"Data source name of the database."`
	SQLQuery     string        `help:"Query whose rows are the records."`
	Dialect      string        `help:"Record dialect: csv, tsv, pipe or semicolon."`
	Partitions   int           `help:"Number of partitions to split the input into."`
	Concurrency  int           `help:"Number of partitions processed at once."`
}

// NewInput returns an Input with defaults set.
func NewInput() *Input {
	return &Input{
		S3Region:     "us-east-1",
		KafkaHosts:   []string{"localhost:9092"},
		KafkaGroup:   "prep",
		KafkaTimeout: 10 * time.Second,
		SQLDriver:    "sqlite",
		Dialect:      "csv",
		Partitions:   runtime.NumCPU(),
		Concurrency:  runtime.NumCPU(),
	}
}

func (in *Input) validate() error {
	n := 0
	for _, set := range []bool{in.Path != "", in.S3Bucket != "", len(in.KafkaTopics) > 0, in.SQLQuery != ""} {
		if set {
			n++
		}
	}
	if n != 1 {
		return errors.New("exactly one of path, s3-bucket, kafka-topics and sql-query must be set")
	}
	if in.Partitions < 1 {
		return errors.New("partitions must be positive")
	}
	return nil
}

// Name identifies the input, e.g. to cache facet tables under.
func (in *Input) Name() string {
	switch {
	case in.Path != "":
		return in.Path
	case in.S3Bucket != "":
		return "s3://" + in.S3Bucket + "/" + in.S3Prefix
	case len(in.KafkaTopics) > 0:
		return "kafka:" + in.KafkaTopics[0]
	default:
		return in.SQLDriver + ":" + in.SQLQuery
	}
}

// Load reads the input into a Dataset. A nil dialect means the one named by
// in.Dialect. opts are applied after the ones carrying t's logger and
// statter.
func (in *Input) Load(t *Telemetry, dialect prep.Dialect, opts ...prep.DatasetOption) (*prep.Dataset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	if dialect == nil {
		var err error
		if dialect, err = prep.DialectByName(in.Dialect); err != nil {
			return nil, err
		}
	}
	records, err := in.load(t.Log(), dialect)
	if err != nil {
		return nil, errors.Wrapf(err, "loading %s", in.Name())
	}
	t.Log().Printf("loaded %s into %d partitions", in.Name(), records.Partitions())
	return prep.NewDataset(records, dialect, append(t.options(), opts...)...), nil
}

func (in *Input) load(log prep.Logger, dialect prep.Dialect) (*local.Collection, error) {
	opts := []local.Option{local.OptConcurrency(in.Concurrency)}
	switch {
	case in.Path != "":
		return file.Load(in.Path, in.Partitions, opts...)
	case in.S3Bucket != "":
		c, err := s3.NewClient(
			s3.OptBucket(in.S3Bucket),
			s3.OptPrefix(in.S3Prefix),
			s3.OptRegion(in.S3Region),
			s3.OptEndpoint(in.S3Endpoint),
			s3.OptConcurrency(in.Concurrency),
		)
		if err != nil {
			return nil, err
		}
		return c.Load(opts...)
	case len(in.KafkaTopics) > 0:
		src := kafka.NewSource()
		src.Hosts = in.KafkaHosts
		src.Topics = in.KafkaTopics
		src.Group = in.KafkaGroup
		src.MaxMsgs = in.KafkaMaxMsgs
		src.Timeout = in.KafkaTimeout
		src.Log = log
		if err := src.Open(); err != nil {
			return nil, errors.Wrap(err, "opening kafka source")
		}
		defer src.Close()
		return src.Load(opts...)
	default:
		db, err := sql.Open(in.SQLDriver, in.SQLDSN)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return sql.Load(context.Background(), db, in.SQLQuery, dialect, in.Partitions, opts...)
	}
}

// Output says where the records of a Dataset are written to: a directory
// of part files, "-" for stdout, or an S3 bucket.
type Output struct {
	Out           string `help:"Directory to write part files to. - writes the records to stdout."`
	OutS3Bucket   string `help:"S3 bucket to write part objects to."`
	OutS3Prefix   string `help:"Prefix of the part objects."`
	OutS3Region   string `help:"AWS region of the output bucket."`
	OutS3Endpoint string `help:"Endpoint of an S3 compatible service to write to."`
}

// NewOutput returns an Output with defaults set.
func NewOutput() *Output {
	return &Output{OutS3Region: "us-east-1"}
}

func (o *Output) set() bool {
	return o.Out != "" || o.OutS3Bucket != ""
}

// Save evaluates ds and writes its records.
func (o *Output) Save(ds *prep.Dataset, stdout io.Writer) error {
	switch {
	case o.OutS3Bucket != "":
		c, err := s3.NewClient(
			s3.OptBucket(o.OutS3Bucket),
			s3.OptPrefix(o.OutS3Prefix),
			s3.OptRegion(o.OutS3Region),
			s3.OptEndpoint(o.OutS3Endpoint),
		)
		if err != nil {
			return err
		}
		return c.Save(ds)
	case o.Out == "-":
		recs, err := ds.Collect()
		if err != nil {
			return errors.Wrap(err, "evaluating dataset")
		}
		return errors.Wrap(file.WriteLines(stdout, recs), "writing records")
	case o.Out != "":
		return file.Save(o.Out, ds)
	default:
		return errors.New("no output: set out or out-s3-bucket")
	}
}
