package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	mgerrors "github.com/matzehuels/modelgraph/pkg/errors"
)

// DefaultRedisPrefix is prepended to every key when RedisOptions.Prefix is empty.
const DefaultRedisPrefix = "modelgraph:"

// RedisOptions configures NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore is a [Store] backed by Redis.
//
// Key layout, relative to the prefix:
//
//	nodes              list of node keys in insertion order
//	node:<key>         hash {active}
//	edges              list of edge IDs in insertion order
//	edge:<id>          hash {id, from, to, file, connections}
//	out:<key>          list of outgoing edge IDs
//	file:<name>        list of edge IDs loaded from the file
//
// Node writes run as a Lua script and edge writes in MULTI/EXEC
// transactions. Errors from Redis are
// reported with code INVALID_STATE.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore connects to Redis and verifies the connection with PING.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, mgerrors.New(mgerrors.ErrCodeInvalidConfig, "redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	ping := func() error { return transient(rdb.Ping(ctx).Err()) }
	if err := retry(ctx, connectAttempts, connectDelay, ping); err != nil {
		_ = rdb.Close()
		return nil, mgerrors.Wrap(mgerrors.ErrCodeNetwork, err, "redis connection to %s failed", opts.Addr)
	}
	return NewRedisStoreFromClient(rdb, opts.Prefix), nil
}

// NewRedisStoreFromClient wraps an existing client. The store takes
// ownership of rdb and closes it in Close.
func NewRedisStoreFromClient(rdb redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(parts ...string) string {
	k := s.prefix
	for i, p := range parts {
		if i > 0 {
			k += ":"
		}
		k += p
	}
	return k
}

func stateErr(err error, op string) error {
	return mgerrors.Wrap(mgerrors.ErrCodeInvalidState, err, "redis %s", op)
}

// Node returns the node with the given key.
func (s *RedisStore) Node(ctx context.Context, key string) (Node, error) {
	active, err := s.rdb.HGet(ctx, s.key("node", key), "active").Result()
	if errors.Is(err, redis.Nil) {
		return Node{}, ErrNotFound
	}
	if err != nil {
		return Node{}, stateErr(err, "get node")
	}
	return Node{Key: key, Active: active == "1"}, nil
}

// putNodeScript sets the active field and, when HSET created it, appends the
// key to the node order. KEYS: node hash, node list. ARGV: active, key.
var putNodeScript = redis.NewScript(`
local added = redis.call('HSET', KEYS[1], 'active', ARGV[1])
if added > 0 then
  redis.call('RPUSH', KEYS[2], ARGV[2])
end
return added
`)

// PutNode inserts n or updates its Active flag. The hash write and the
// order append run as one script, so a node is never stored without its
// place in the node order.
func (s *RedisStore) PutNode(ctx context.Context, n Node) error {
	if n.Key == "" {
		return ErrInvalidKey
	}
	keys := []string{s.key("node", n.Key), s.key("nodes")}
	if err := putNodeScript.Run(ctx, s.rdb, keys, boolField(n.Active), n.Key).Err(); err != nil {
		return stateErr(err, "put node")
	}
	return nil
}

// AddEdge stores e and appends it to the edge, outgoing and file indexes.
func (s *RedisStore) AddEdge(ctx context.Context, e Edge) error {
	if e.ID == "" {
		return ErrInvalidKey
	}
	exists, err := s.rdb.Exists(ctx, s.key("edge", e.ID)).Result()
	if err != nil {
		return stateErr(err, "add edge")
	}
	if exists > 0 {
		return ErrDuplicateEdge
	}
	// EXISTS counts a repeated key once per occurrence, so a self-loop
	// also reports 2 when its node is present.
	endpoints, err := s.rdb.Exists(ctx, s.key("node", e.From), s.key("node", e.To)).Result()
	if err != nil {
		return stateErr(err, "add edge")
	}
	if endpoints < 2 {
		return ErrUnknownEndpoint
	}

	conns, err := json.Marshal(e.Connections)
	if err != nil {
		return mgerrors.Wrap(mgerrors.ErrCodeInternal, err, "encode connections")
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key("edge", e.ID), map[string]any{
			"id":          e.ID,
			"from":        e.From,
			"to":          e.To,
			"file":        e.FileName,
			"connections": string(conns),
		})
		pipe.RPush(ctx, s.key("edges"), e.ID)
		pipe.RPush(ctx, s.key("out", e.From), e.ID)
		if e.FileName != "" {
			pipe.RPush(ctx, s.key("file", e.FileName), e.ID)
		}
		return nil
	})
	if err != nil {
		return stateErr(err, "add edge")
	}
	return nil
}

// RemoveEdge deletes the edge and its index entries.
func (s *RedisStore) RemoveEdge(ctx context.Context, id string) error {
	e, err := s.Edge(ctx, id)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key("edge", id))
		pipe.LRem(ctx, s.key("edges"), 0, id)
		pipe.LRem(ctx, s.key("out", e.From), 0, id)
		if e.FileName != "" {
			pipe.LRem(ctx, s.key("file", e.FileName), 0, id)
		}
		return nil
	})
	if err != nil {
		return stateErr(err, "remove edge")
	}
	return nil
}

// Edge returns the edge with the given ID.
func (s *RedisStore) Edge(ctx context.Context, id string) (Edge, error) {
	fields, err := s.rdb.HGetAll(ctx, s.key("edge", id)).Result()
	if err != nil {
		return Edge{}, stateErr(err, "get edge")
	}
	if len(fields) == 0 {
		return Edge{}, ErrNotFound
	}
	return decodeEdge(fields)
}

// EdgesBetween returns the edges from -> to in insertion order.
func (s *RedisStore) EdgesBetween(ctx context.Context, from, to string) ([]Edge, error) {
	out, err := s.outgoing(ctx, from)
	if err != nil {
		return nil, err
	}
	var result []Edge
	for _, e := range out {
		if e.To == to {
			result = append(result, e)
		}
	}
	return result, nil
}

// Neighbors returns the distinct successors of key.
func (s *RedisStore) Neighbors(ctx context.Context, key string) ([]Node, error) {
	out, err := s.outgoing(ctx, key)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var keys []string
	for _, e := range out {
		if !seen[e.To] {
			seen[e.To] = true
			keys = append(keys, e.To)
		}
	}
	return s.nodes(ctx, keys)
}

// EdgesByFile returns the edges tagged with fileName.
func (s *RedisStore) EdgesByFile(ctx context.Context, fileName string) ([]Edge, error) {
	return s.edgeList(ctx, s.key("file", fileName))
}

// Nodes returns all nodes in insertion order.
func (s *RedisStore) Nodes(ctx context.Context) ([]Node, error) {
	keys, err := s.rdb.LRange(ctx, s.key("nodes"), 0, -1).Result()
	if err != nil {
		return nil, stateErr(err, "list nodes")
	}
	return s.nodes(ctx, keys)
}

// Edges returns all edges in insertion order.
func (s *RedisStore) Edges(ctx context.Context) ([]Edge, error) {
	return s.edgeList(ctx, s.key("edges"))
}

// Clear deletes every key under the store prefix.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
				return stateErr(err, "clear")
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return stateErr(err, "clear")
	}
	if len(batch) > 0 {
		if err := s.rdb.Del(ctx, batch...).Err(); err != nil {
			return stateErr(err, "clear")
		}
	}
	return nil
}

// Close closes the Redis client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

func (s *RedisStore) outgoing(ctx context.Context, key string) ([]Edge, error) {
	return s.edgeList(ctx, s.key("out", key))
}

// edgeList loads the edges whose IDs are stored in the list at listKey.
func (s *RedisStore) edgeList(ctx context.Context, listKey string) ([]Edge, error) {
	ids, err := s.rdb.LRange(ctx, listKey, 0, -1).Result()
	if err != nil {
		return nil, stateErr(err, "list edges")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, s.key("edge", id))
		}
		return nil
	})
	if err != nil {
		return nil, stateErr(err, "list edges")
	}
	result := make([]Edge, 0, len(ids))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		e, err := decodeEdge(fields)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, nil
}

func (s *RedisStore) nodes(ctx context.Context, keys []string) ([]Node, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	cmds := make([]*redis.StringCmd, len(keys))
	_, err := s.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, k := range keys {
			cmds[i] = pipe.HGet(ctx, s.key("node", k), "active")
		}
		return nil
	})
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, stateErr(err, "list nodes")
	}
	result := make([]Node, 0, len(keys))
	for i, cmd := range cmds {
		active, err := cmd.Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return nil, stateErr(err, "list nodes")
		}
		result = append(result, Node{Key: keys[i], Active: active == "1"})
	}
	return result, nil
}

func decodeEdge(fields map[string]string) (Edge, error) {
	e := Edge{
		ID:       fields["id"],
		From:     fields["from"],
		To:       fields["to"],
		FileName: fields["file"],
	}
	if raw := fields["connections"]; raw != "" && raw != "null" {
		if err := json.Unmarshal([]byte(raw), &e.Connections); err != nil {
			return Edge{}, mgerrors.Wrap(mgerrors.ErrCodeInvalidState, err, "decode edge %s", e.ID)
		}
	}
	return e, nil
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

// String identifies the store in log output.
func (s *RedisStore) String() string {
	return fmt.Sprintf("redis(%s)", s.prefix)
}
