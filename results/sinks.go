//
// sinks.go
//
// Copyright (c) 2025-2026 Markku Rossi
//
// All rights reserved.
//

package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-resty/resty/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/redis/go-redis/v9"
)

// Redis keys.
const (
	RedisListKey     = "mulbench:results"
	RedisLatestKey   = "mulbench:latest:"
	redisPingTimeout = 5 * time.Second
)

// RedisSink pushes records to a Redis list and keeps the latest
// record of each domain.
type RedisSink struct {
	client *redis.Client
}

// NewRedisSink connects to the Redis server at url, for example
// redis://localhost:6379/0.
func NewRedisSink(url string) (*RedisSink, error) {
	options, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "redis")
	}
	client := redis.NewClient(options)

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "redis ping")
	}
	return &RedisSink{
		client: client,
	}, nil
}

// Publish implements Sink.Publish.
func (sink *RedisSink) Publish(ctx context.Context, r *Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return err
	}
	pipe := sink.client.Pipeline()
	pipe.LPush(ctx, RedisListKey, data)
	pipe.Set(ctx, RedisLatestKey+r.Domain, data, 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, "redis publish")
	}
	return nil
}

// Close implements Sink.Close.
func (sink *RedisSink) Close() error {
	return sink.client.Close()
}

// HTTPSink posts records as JSON to a collector URL.
type HTTPSink struct {
	client *resty.Client
	url    string
}

// NewHTTPSink creates a sink posting to url.
func NewHTTPSink(url string) *HTTPSink {
	client := resty.New().
		SetTimeout(30*time.Second).
		SetHeader("Content-Type", "application/json")

	return &HTTPSink{
		client: client,
		url:    url,
	}
}

// Publish implements Sink.Publish.
func (sink *HTTPSink) Publish(ctx context.Context, r *Record) error {
	resp, err := sink.client.R().
		SetContext(ctx).
		SetBody(r).
		Post(sink.url)
	if err != nil {
		return errors.Wrapf(err, "post %s", sink.url)
	}
	if resp.IsError() {
		return errors.Newf("post %s: %s", sink.url, resp.Status())
	}
	return nil
}

// Close implements Sink.Close.
func (sink *HTTPSink) Close() error {
	return nil
}

const insertSQL = "INSERT INTO mulbench_results " +
	"(id, created, role, domain, depth, lanes, bits, x, y, result, " +
	"verified, gates, elapsed_ns, sent, received) " +
	"VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"

// SQLSink inserts records into the mulbench_results table of a MySQL
// database.
type SQLSink struct {
	db *sql.DB
}

// NewSQLSink opens the MySQL database dsn, for example
// user:password@tcp(localhost:3306)/bench.
func NewSQLSink(dsn string) (*SQLSink, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "mysql")
	}
	db.SetMaxIdleConns(0)
	return NewSQLSinkDB(db), nil
}

// NewSQLSinkDB creates a sink for an open database.
func NewSQLSinkDB(db *sql.DB) *SQLSink {
	return &SQLSink{
		db: db,
	}
}

func insertArgs(r *Record) []interface{} {
	return []interface{}{
		r.ID, r.Created.UTC(), r.Role, r.Domain, r.Depth, r.Lanes, r.Bits,
		r.X, r.Y, strings.Join(r.Results, ","), r.Verified, r.Gates,
		r.Elapsed.Nanoseconds(), r.Sent, r.Received,
	}
}

// Publish implements Sink.Publish.
func (sink *SQLSink) Publish(ctx context.Context, r *Record) error {
	_, err := sink.db.ExecContext(ctx, insertSQL, insertArgs(r)...)
	if err != nil {
		return errors.Wrap(err, "mysql insert")
	}
	return nil
}

// Close implements Sink.Close.
func (sink *SQLSink) Close() error {
	return sink.db.Close()
}

// WriterSink writes records as JSON lines.
type WriterSink struct {
	enc *json.Encoder
	w   io.Writer
}

// NewWriterSink creates a sink writing to w. If w is an io.Closer,
// it is closed when the sink is closed.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{
		enc: json.NewEncoder(w),
		w:   w,
	}
}

// Publish implements Sink.Publish.
func (sink *WriterSink) Publish(ctx context.Context, r *Record) error {
	return sink.enc.Encode(r)
}

// Close implements Sink.Close.
func (sink *WriterSink) Close() error {
	if closer, ok := sink.w.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
