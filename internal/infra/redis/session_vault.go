package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"lmsc-client/internal/app"
	"lmsc-client/internal/domain"
)

const (
	tokenKey    = "session:token"
	identityKey = "session:identity"
)

// SessionVault persists the session in Redis under two keys, written in one
// pipeline and deleted in one DEL so they move together. Useful for shared
// lab machines where several terminals should see the same login.
type SessionVault struct {
	client *redis.Client
	prefix string
}

func NewSessionVault(client *redis.Client, prefix string) *SessionVault {
	return &SessionVault{client: client, prefix: prefix}
}

func (v *SessionVault) Read(ctx context.Context) (app.SavedSession, bool, error) {
	values, err := v.client.MGet(ctx, v.key(tokenKey), v.key(identityKey)).Result()
	if err != nil {
		return app.SavedSession{}, false, err
	}

	token, tokenOK := values[0].(string)
	rawIdentity, identityOK := values[1].(string)
	if !tokenOK || !identityOK || token == "" {
		// One key without the other means a torn or missing session;
		// treat both cases as "nothing stored".
		return app.SavedSession{}, false, nil
	}

	var identity domain.Identity
	if err := json.Unmarshal([]byte(rawIdentity), &identity); err != nil {
		return app.SavedSession{}, false, fmt.Errorf("corrupt session identity: %w", err)
	}
	return app.SavedSession{Token: token, Identity: identity}, true, nil
}

func (v *SessionVault) Write(ctx context.Context, s app.SavedSession) error {
	rawIdentity, err := json.Marshal(s.Identity)
	if err != nil {
		return err
	}

	pipe := v.client.TxPipeline()
	pipe.Set(ctx, v.key(tokenKey), s.Token, 0)
	pipe.Set(ctx, v.key(identityKey), rawIdentity, 0)
	_, err = pipe.Exec(ctx)
	return err
}

func (v *SessionVault) Clear(ctx context.Context) error {
	return v.client.Del(ctx, v.key(tokenKey), v.key(identityKey)).Err()
}

func (v *SessionVault) key(suffix string) string {
	if v.prefix == "" {
		return suffix
	}
	return v.prefix + ":" + suffix
}
