package butylene

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// sourceKey caches by Token name rather than by reflect.Type alone, so
// that plugin-backed tokens (see token.go) which share a reflect.Type but
// carry distinct retirement lifetimes still get distinct cache entries.
type sourceKey struct {
	name string
	rt   reflect.Type
}

// SignatureSource resolves a Token to a cached SignatureMatcher, building
// one on first use. The default mode is an unbounded map guarded by a
// read-write mutex with the double-checked-lock discipline: a fast
// read-locked lookup, and only on miss a write-locked build-then-insert
// that re-checks the map before building, so concurrent misses for the
// same type never build twice. WithBoundedCache swaps the backing store
// for a bounded LRU, useful for long-lived processes that map many
// ad-hoc/plugin types where an unbounded map would leak memory.
type SignatureSource struct {
	mu    sync.RWMutex
	cache map[sourceKey]*SignatureMatcher
	lru   *lru.Cache[sourceKey, *SignatureMatcher]

	hinter   *TypeHinter
	resolver TypeResolver
	custom   map[reflect.Type][]Signature
}

// SourceOption configures a SignatureSource.
type SourceOption func(*SignatureSource)

// WithBoundedCache swaps the source's unbounded map for an LRU cache
// holding at most size entries.
func WithBoundedCache(size int) SourceOption {
	return func(s *SignatureSource) {
		c, err := lru.New[sourceKey, *SignatureMatcher](size)
		if err == nil {
			s.lru = c
			s.cache = nil
		}
	}
}

// WithSourceCustomSignature registers sig as a custom signature for its
// own ReturnType, taking resolution priority over any built
// container/record signature the source would otherwise synthesize.
// [WithCustomSignature] is the Processor-level option most callers want;
// this is its SignatureSource-level building block.
func WithSourceCustomSignature(sig Signature) SourceOption {
	return func(s *SignatureSource) {
		rt, err := sig.ReturnType().RawType()
		if err != nil {
			return
		}
		s.custom[rt] = append(s.custom[rt], sig)
	}
}

// NewSignatureSource returns a SignatureSource using hinter to classify
// uncached types and resolver to pick concrete types for abstract fields.
func NewSignatureSource(hinter *TypeHinter, resolver TypeResolver, opts ...SourceOption) *SignatureSource {
	s := &SignatureSource{
		cache:    make(map[sourceKey]*SignatureMatcher),
		hinter:   hinter,
		resolver: resolver,
		custom:   make(map[reflect.Type][]Signature),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// MatcherFor returns the cached or newly-built SignatureMatcher for t.
func (s *SignatureSource) MatcherFor(ctx context.Context, t Token) (*SignatureMatcher, error) {
	rt, err := t.RawType()
	if err != nil {
		return nil, err
	}
	key := sourceKey{name: t.Name(), rt: rt}

	if m, ok := s.lookup(key); ok {
		return m, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.lookupLocked(key); ok {
		return m, nil
	}

	emitCacheMiss(ctx, t.Name())

	candidates, err := s.buildCandidates(t, rt)
	if err != nil {
		return nil, err
	}
	matcher := NewSignatureMatcher(t, candidates, s.hinter)
	s.storeLocked(key, matcher)
	emitSignatureResolved(ctx, t.Name())
	return matcher, nil
}

func (s *SignatureSource) lookup(key sourceKey) (*SignatureMatcher, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lookupLocked(key)
}

func (s *SignatureSource) lookupLocked(key sourceKey) (*SignatureMatcher, bool) {
	if s.lru != nil {
		return s.lru.Get(key)
	}
	m, ok := s.cache[key]
	return m, ok
}

func (s *SignatureSource) storeLocked(key sourceKey, m *SignatureMatcher) {
	if s.lru != nil {
		s.lru.Add(key, m)
		return
	}
	s.cache[key] = m
}

// buildCandidates implements the resolution order: custom signatures
// registered for exactly rt first, else dispatch on classification.
// Custom signatures registered for an interface that rt implements are
// not consulted.
func (s *SignatureSource) buildCandidates(t Token, rt reflect.Type) ([]Signature, error) {
	if custom, ok := s.custom[rt]; ok && len(custom) > 0 {
		return custom, nil
	}

	kind := s.hinter.classifyType(rt)
	switch kind {
	case KindScalar:
		return nil, nil
	case KindList:
		sig, err := buildListSignature(t, rt)
		if err != nil {
			return nil, err
		}
		return []Signature{sig}, nil
	case KindNode:
		if rt.Kind() == reflect.Map {
			sig, err := buildMapSignature(t, rt)
			if err != nil {
				return nil, err
			}
			return []Signature{sig}, nil
		}
		if rt.Kind() == reflect.Ptr {
			inner, err := buildRecordSignatures(t, rt.Elem(), s.resolver)
			if err != nil {
				return nil, err
			}
			sigs := make([]Signature, len(inner))
			for i, sig := range inner {
				sigs[i] = newPointerRecordSignature(t, sig)
			}
			return sigs, nil
		}
		return buildRecordSignatures(t, rt, s.resolver)
	default:
		return nil, fmt.Errorf("%w: %s: unrecognized classification", ErrSignatureShape, t.Name())
	}
}

func buildListSignature(t Token, rt reflect.Type) (Signature, error) {
	elem := rt.Elem()
	if rt.Kind() == reflect.Array {
		return &arraySignature{returnType: t, rt: rt, elemType: TokenFromType(elem)}, nil
	}
	return &collectionSignature{returnType: t, rt: rt, elemType: TokenFromType(elem)}, nil
}

func buildMapSignature(t Token, rt reflect.Type) (Signature, error) {
	return &mapEntrySignature{
		returnType: t,
		rt:         rt,
		keyType:    TokenFromType(rt.Key()),
		valType:    TokenFromType(rt.Elem()),
	}, nil
}
