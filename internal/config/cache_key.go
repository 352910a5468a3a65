package config

import (
	"fmt"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// SessionStateKey returns the cache key for a test session's full state JSON.
func (r *CacheKeyStruct) SessionStateKey(sessionID string) string {
	return fmt.Sprintf("session:%s:state", sessionID)
}

// SessionTimersKey returns the cache key for a session's remaining-seconds map.
func (r *CacheKeyStruct) SessionTimersKey(sessionID string) string {
	return fmt.Sprintf("session:%s:timers", sessionID)
}

var CacheKey = NewCacheKeyStruct()
