package schedule

import (
	"context"
	"sync"
)

type contextKey string

const sharedDataKey contextKey = "schedule:shared-data"

// SharedData carries values between tasks of the same chain run. Each run
// gets a fresh instance, so tasks never observe values from a previous run.
type SharedData struct {
	data sync.Map
}

// NewSharedData creates an empty SharedData.
func NewSharedData() *SharedData {
	return &SharedData{}
}

// Set stores a value under key.
func (s *SharedData) Set(key string, value any) {
	s.data.Store(key, value)
}

// Get returns the value stored under key and whether it was present.
func (s *SharedData) Get(key string) (any, bool) {
	return s.data.Load(key)
}

// Delete removes the value stored under key.
func (s *SharedData) Delete(key string) {
	s.data.Delete(key)
}

// Range calls fn for each key/value pair until fn returns false.
func (s *SharedData) Range(fn func(key string, value any) bool) {
	s.data.Range(func(k, v any) bool {
		return fn(k.(string), v)
	})
}

// GetSharedData extracts the chain's SharedData from ctx. It returns nil when
// the task runs outside a chain.
func GetSharedData(ctx context.Context) *SharedData {
	sd, _ := ctx.Value(sharedDataKey).(*SharedData)
	return sd
}
