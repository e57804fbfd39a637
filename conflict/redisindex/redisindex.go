// Package redisindex stores the filename index of the conflict resolver in Redis.
//
// Two hashes are kept: names (original filename -> key) and keys (key -> original
// filename). Both share a hash tag so the scripts touching them work in cluster mode.
package redisindex

import (
	"context"
	"errors"

	"github.com/code19m/errx"
	"github.com/redis/go-redis/v9"
	"github.com/rise-and-shine/filemanager/conflict"
)

// Config configures the index.
type Config struct {
	// KeyPrefix namespaces the Redis keys of the index.
	KeyPrefix string `yaml:"key_prefix" default:"filemanager:name_index"`
}

const codeIndexError = "NAME_INDEX_ERROR"

// recordScript notes that ARGV[2] (key) holds ARGV[1] (name). The name is mapped to the key
// unless it already maps to a key that sorts before it. If the key previously held another
// name that still points to it, that mapping is removed.
var recordScript = redis.NewScript(`
local old = redis.call('HGET', KEYS[2], ARGV[2])
if old and old ~= ARGV[1] and redis.call('HGET', KEYS[1], old) == ARGV[2] then
	redis.call('HDEL', KEYS[1], old)
end
redis.call('HSET', KEYS[2], ARGV[2], ARGV[1])
local cur = redis.call('HGET', KEYS[1], ARGV[1])
if not cur or ARGV[2] < cur then
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
end
return 1
`)

// forgetKeyScript removes key ARGV[1] and the name mapping that points to it.
var forgetKeyScript = redis.NewScript(`
local name = redis.call('HGET', KEYS[2], ARGV[1])
redis.call('HDEL', KEYS[2], ARGV[1])
if name and redis.call('HGET', KEYS[1], name) == ARGV[1] then
	redis.call('HDEL', KEYS[1], name)
end
return 1
`)

// forgetNameScript removes name ARGV[1] only while it maps to ARGV[2].
var forgetNameScript = redis.NewScript(`
if redis.call('HGET', KEYS[1], ARGV[1]) == ARGV[2] then
	redis.call('HDEL', KEYS[1], ARGV[1])
end
return 1
`)

// Index implements conflict.Index.
type Index struct {
	rdb      redis.Cmdable
	namesKey string
	keysKey  string
}

var _ conflict.Index = (*Index)(nil)

// New creates an index on rdb.
func New(rdb redis.Cmdable, cfg Config) *Index {
	tag := "{" + cfg.KeyPrefix + "}"
	return &Index{
		rdb:      rdb,
		namesKey: tag + ":names",
		keysKey:  tag + ":keys",
	}
}

func (i *Index) Lookup(ctx context.Context, name string) (string, bool, error) {
	key, err := i.rdb.HGet(ctx, i.namesKey, name).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, wrap(err, "lookup")
	}
	return key, true, nil
}

func (i *Index) Record(ctx context.Context, name, key string) error {
	err := recordScript.Run(ctx, i.rdb, []string{i.namesKey, i.keysKey}, name, key).Err()
	return wrap(err, "record")
}

func (i *Index) ForgetKey(ctx context.Context, key string) error {
	err := forgetKeyScript.Run(ctx, i.rdb, []string{i.namesKey, i.keysKey}, key).Err()
	return wrap(err, "forget_key")
}

func (i *Index) ForgetName(ctx context.Context, name, key string) error {
	err := forgetNameScript.Run(ctx, i.rdb, []string{i.namesKey}, name, key).Err()
	return wrap(err, "forget_name")
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errx.Wrap(
		err,
		errx.WithCode(codeIndexError),
		errx.WithType(errx.T_Internal),
		errx.WithDetails(errx.D{"operation": op}),
	)
}
