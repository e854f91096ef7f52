package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/moviesearch/internal/db"
	"github.com/kailas-cloud/moviesearch/internal/db/resp"
)

// Execute sends name with args verbatim and returns the reply as a resp.Reply.
// No command-specific decoding is applied.
func (s *Store) Execute(ctx context.Context, name string, args ...string) (resp.Reply, error) {
	if name == "" {
		return resp.Reply{}, fmt.Errorf("command name is required")
	}

	cmd := s.b().Arbitrary(name).Args(args...).Build()
	msg, err := s.do(ctx, cmd).ToMessage()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return resp.Nil(), nil
		}
		return resp.Reply{}, &db.Error{Op: name, Err: err}
	}

	reply, err := resp.FromMessage(msg)
	if err != nil {
		return resp.Reply{}, &db.Error{Op: name, Err: fmt.Errorf("decode reply: %w", err)}
	}
	return reply, nil
}
