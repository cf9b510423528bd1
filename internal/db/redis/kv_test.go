package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/matchfeed/internal/db"
)

func TestGet(t *testing.T) {
	tests := []struct {
		name     string
		want     string
		wantErr  error
		wantDBEr bool
	}{
		{name: "hit", want: "v"},
		{name: "miss", wantErr: db.ErrKeyNotFound},
		{name: "transport error", wantDBEr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			call := c.EXPECT().Do(gomock.Any(), mock.Match("GET", "page:u1"))
			switch {
			case tt.wantErr != nil:
				call.Return(mock.Result(mock.RedisNil()))
			case tt.wantDBEr:
				call.Return(mock.ErrorResult(context.DeadlineExceeded))
			default:
				call.Return(mock.Result(mock.RedisString(tt.want)))
			}

			data, err := NewStoreForTest(c).Get(context.Background(), "page:u1")
			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			case tt.wantDBEr:
				if !isDBError(err) {
					t.Fatalf("expected db.Error, got %v", err)
				}
			default:
				if err != nil || string(data) != tt.want {
					t.Fatalf("got %q, %v", data, err)
				}
			}
		})
	}
}

func TestSetWithTTL_Milliseconds(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "score:a:b", "87", "PX", "1500")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "score:a:b", []byte("87"), 1500*time.Millisecond); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetNX(t *testing.T) {
	tests := []struct {
		name string
		held bool
		want bool
	}{
		{"acquired", false, true},
		{"already held", true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			reply := mock.Result(mock.RedisString("OK"))
			if tt.held {
				reply = mock.Result(mock.RedisNil())
			}
			c.EXPECT().
				Do(gomock.Any(), mock.Match("SET", "seen:u1:u2", "1", "NX", "PX", "30000")).
				Return(reply)

			ok, err := NewStoreForTest(c).SetNX(context.Background(), "seen:u1:u2", []byte("1"), 30*time.Second)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ok != tt.want {
				t.Errorf("got %v, want %v", ok, tt.want)
			}
		})
	}
}

func TestExpire(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PEXPIRE", "pool:u1", "300000")).
			Return(mock.Result(mock.RedisInt64(1))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("PEXPIRE", "pool:u1", "1")).
			Return(mock.Result(mock.RedisInt64(0))),
	)

	s := NewStoreForTest(c)
	if err := s.Expire(context.Background(), "pool:u1", 5*time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// zero TTL is clamped rather than rejected by the server
	if err := s.Expire(context.Background(), "pool:u1", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestDel(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("DEL", "a", "b")).
		Return(mock.Result(mock.RedisInt64(2)))

	s := NewStoreForTest(c)
	if err := s.Del(context.Background(), "a", "b"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// no keys sends nothing
	if err := s.Del(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestExists(t *testing.T) {
	tests := []struct {
		name  string
		reply int64
		want  bool
	}{
		{"present", 1, true},
		{"absent", 0, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)

			c.EXPECT().
				Do(gomock.Any(), mock.Match("EXISTS", "k")).
				Return(mock.Result(mock.RedisInt64(tc.reply)))

			got, err := NewStoreForTest(c).Exists(context.Background(), "k")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRename(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("RENAME", "staging", "live")).
			Return(mock.Result(mock.RedisString("OK"))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("RENAME", "staging", "live")).
			Return(mock.Result(mock.RedisError("ERR no such key"))),
	)

	s := NewStoreForTest(c)
	if err := s.Rename(context.Background(), "staging", "live"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Rename(context.Background(), "staging", "live"); !errors.Is(err, db.ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestScan_MultiRoundDeduplicates(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	gomock.InOrder(
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "0", "MATCH", "u:*", "COUNT", "250")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisString("7"),
				mock.RedisArray(mock.RedisString("u:1"), mock.RedisString("u:2")),
			))),
		c.EXPECT().
			Do(gomock.Any(), mock.Match("SCAN", "7", "MATCH", "u:*", "COUNT", "250")).
			Return(mock.Result(mock.RedisArray(
				mock.RedisString("0"),
				mock.RedisArray(mock.RedisString("u:2"), mock.RedisString("u:3")),
			))),
	)

	keys, err := NewStoreForTest(c).Scan(context.Background(), "u:*")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"u:1", "u:2", "u:3"}; !slices.Equal(keys, want) {
		t.Fatalf("got %v, want %v", keys, want)
	}
}
