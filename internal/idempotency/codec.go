package idempotency

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
)

// Cacheable is a result the coordinator can replay. IdempotencyKind returns a
// stable discriminator stored alongside the encoded body; it must not depend
// on the receiver's value and must change whenever the body shape changes
// incompatibly.
type Cacheable interface {
	IdempotencyKind() string
}

// envelope is the stored payload: a type tag plus the JSON body.
type envelope struct {
	Kind string          `json:"kind"`
	Body json.RawMessage `json:"body"`
}

type decodeFunc func(body json.RawMessage) (Cacheable, error)

// Codec encodes results into tagged envelopes and decodes them back without
// the caller naming a type. Kinds are registered up front with Register.
type Codec struct {
	mu       sync.RWMutex
	decoders map[string]decodeFunc
}

// NewCodec returns an empty codec.
func NewCodec() *Codec {
	return &Codec{decoders: make(map[string]decodeFunc)}
}

// Register adds T's kind to the codec. T must be a value type: decoded
// results are always values, so a pointer T could never be replayed as T.
// Registering a pointer type or the same kind twice panics.
func Register[T Cacheable](c *Codec) {
	if isPointer[T]() {
		panic(fmt.Sprintf("idempotency: register value type, not %v", reflect.TypeFor[T]()))
	}
	var zero T
	kind := zero.IdempotencyKind()
	if kind == "" {
		panic("idempotency: empty kind")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.decoders[kind]; exists {
		panic(fmt.Sprintf("idempotency: kind %q registered twice", kind))
	}
	c.decoders[kind] = func(body json.RawMessage) (Cacheable, error) {
		var v T
		if err := json.Unmarshal(body, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// Encode serializes v. Unregistered kinds are rejected so nothing is cached
// that could not be replayed.
func (c *Codec) Encode(v Cacheable) ([]byte, error) {
	if v == nil {
		return nil, fmt.Errorf("encode: nil result")
	}
	kind := v.IdempotencyKind()
	if !c.known(kind) {
		return nil, fmt.Errorf("encode: kind %q is not registered", kind)
	}
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", kind, err)
	}
	return json.Marshal(envelope{Kind: kind, Body: body})
}

// Decode restores a value previously produced by Encode.
func (c *Codec) Decode(data []byte) (Cacheable, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}

	c.mu.RLock()
	decode, ok := c.decoders[env.Kind]
	c.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("decode: unknown kind %q", env.Kind)
	}

	v, err := decode(env.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", env.Kind, err)
	}
	return v, nil
}

func (c *Codec) known(kind string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.decoders[kind]
	return ok
}

func isPointer[T any]() bool {
	return reflect.TypeFor[T]().Kind() == reflect.Pointer
}
