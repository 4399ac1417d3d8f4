package pubsub_test

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/radieske/squares-wager-platform/internal/ledger-worker/pubsub"
)

type fakePub struct {
	channel string
	msg     any
	err     error
}

func (f *fakePub) Publish(_ context.Context, channel string, message any) *redis.IntCmd {
	f.channel, f.msg = channel, message
	return redis.NewIntResult(1, f.err)
}

func TestPublish(t *testing.T) {
	f := &fakePub{}
	b := pubsub.NewRedisBroadcaster(f)
	if err := b.Publish(context.Background(), "game_ledger_broadcast", []byte(`{}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if f.channel != "game_ledger_broadcast" || string(f.msg.([]byte)) != `{}` {
		t.Errorf("published %s %v", f.channel, f.msg)
	}

	f.err = errors.New("redis down")
	if err := b.Publish(context.Background(), "c", nil); err == nil {
		t.Errorf("expected error to propagate")
	}
}
