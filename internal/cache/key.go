package cache

import (
	"encoding/json"
	"strings"
)

const userScopeTag = "user"

// Key identifies a cached query: an entity tag followed by its parameters.
// Two keys are equal when all segments are equal; prefix matching is done
// segment by segment so ("user","1") never selects ("user","10").
type Key []string

func NewKey(entity string, params ...string) Key {
	return append(Key{entity}, params...)
}

// UserScope is the prefix shared by every entry belonging to one user.
func UserScope(userID string) Key {
	return Key{userScopeTag, userID}
}

func UserKey(userID, entity string, params ...string) Key {
	return append(append(UserScope(userID), entity), params...)
}

func (k Key) String() string {
	encoded, err := json.Marshal([]string(k))
	if err != nil {
		return strings.Join(k, "/")
	}
	return string(encoded)
}

func (k Key) Equal(other Key) bool {
	if len(k) != len(other) {
		return false
	}
	for i := range k {
		if k[i] != other[i] {
			return false
		}
	}
	return true
}

// HasPrefix reports whether prefix selects k. An empty prefix selects every key.
func (k Key) HasPrefix(prefix Key) bool {
	if len(prefix) > len(k) {
		return false
	}
	return k[:len(prefix)].Equal(prefix)
}

func (k Key) clone() Key {
	return append(Key(nil), k...)
}
