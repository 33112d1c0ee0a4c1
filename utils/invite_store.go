package utils

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Invite binds a one-time registration code to the manager who issued it.
type Invite struct {
	ManagerID uint   `json:"manager_id"`
	TeamName  string `json:"team_name,omitempty"`
}

// in-memory fallback store
type inviteEntry struct {
	invite    Invite
	expiresAt time.Time
}

var (
	inviteStore   = map[string]inviteEntry{}
	inviteStoreMu sync.Mutex
)

func inviteKey(code string) string {
	return "invite:code:" + code
}

// CreateInvite generates a new invite code for a manager with the given TTL.
// Prefer Redis; fallback to memory.
func CreateInvite(inv Invite, ttl time.Duration) (string, error) {
	code := uuid.NewString()
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		b, err := json.Marshal(inv)
		if err != nil {
			return "", err
		}
		if err := rc.Set(ctx, inviteKey(code), b, ttl).Err(); err == nil {
			return code, nil
		}
	}
	inviteStoreMu.Lock()
	inviteStore[code] = inviteEntry{invite: inv, expiresAt: time.Now().Add(ttl)}
	inviteStoreMu.Unlock()
	return code, nil
}

// ConsumeInvite validates a code and consumes it atomically if valid.
// Prefer Redis GETDEL; fallback to memory.
func ConsumeInvite(code string) (Invite, bool) {
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		key := inviteKey(code)
		if val, err := rc.GetDel(ctx, key).Result(); err == nil {
			var inv Invite
			if jsonErr := json.Unmarshal([]byte(val), &inv); jsonErr == nil {
				return inv, true
			}
			return Invite{}, false
		}
		// Fallback to atomic Lua: GET then DEL
		script := `local v=redis.call('GET', KEYS[1]); if v then redis.call('DEL', KEYS[1]); end; return v`
		if res, err := rc.Eval(ctx, script, []string{key}).Result(); err == nil {
			if res == nil {
				return Invite{}, false
			}
			if s, ok := res.(string); ok {
				var inv Invite
				if jsonErr := json.Unmarshal([]byte(s), &inv); jsonErr == nil {
					return inv, true
				}
			}
			return Invite{}, false
		}
		// On Redis error (e.g., network), fall through to memory fallback
	}
	inviteStoreMu.Lock()
	defer inviteStoreMu.Unlock()
	entry, ok := inviteStore[code]
	if !ok {
		return Invite{}, false
	}
	delete(inviteStore, code)
	if time.Now().After(entry.expiresAt) {
		return Invite{}, false
	}
	return entry.invite, true
}
