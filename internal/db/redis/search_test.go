package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/matchfeed/internal/db"
	"github.com/kailas-cloud/matchfeed/internal/domain/filter"
)

func TestSearchList_Sorted(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match(
			"FT.SEARCH", "users", "@city:{paris}",
			"RETURN", "1", "$",
			"SORTBY", "created_at", "DESC",
			"LIMIT", "0", "10", "DIALECT", "2",
		)).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(2),
			mock.RedisString("u:1"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"id":"1"}`)),
			mock.RedisString("u:2"),
			mock.RedisArray(mock.RedisString("$"), mock.RedisString(`{"id":"2"}`)),
		)))

	s := NewStoreForTest(c)
	expr, _ := filter.Where().Tag("city", "paris").Build()
	result, err := s.SearchList(context.Background(), &db.ListQuery{
		Index:    "users",
		Filters:  expr,
		Limit:    10,
		Fields:   []string{"$"},
		SortBy:   "created_at",
		SortDesc: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 2 || len(result.Entries) != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
	if result.Entries[1].Fields["$"] != `{"id":"2"}` {
		t.Errorf("unexpected fields: %v", result.Entries[1].Fields)
	}
}

func TestSearchList_DefaultQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "users", "*", "LIMIT", "5", "5", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchList(context.Background(), &db.ListQuery{Index: "users", Offset: 5, Limit: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Total != 0 || len(result.Entries) != 0 {
		t.Errorf("expected empty result, got %+v", result)
	}
}

func TestSearchList_NoIndex(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisError("users: no such index")))

	s := NewStoreForTest(c)
	_, err := s.SearchList(context.Background(), &db.ListQuery{Index: "users", Limit: 1})
	if !errors.Is(err, db.ErrIndexNotFound) {
		t.Errorf("expected ErrIndexNotFound, got %v", err)
	}
}

func TestSearchList_Validation(t *testing.T) {
	s := &Store{}
	if _, err := s.SearchList(context.Background(), &db.ListQuery{}); err == nil {
		t.Fatal("expected error for empty index")
	}
}

func TestSearchCount_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("FT.SEARCH", "users", "*", "LIMIT", "0", "0", "DIALECT", "2")).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(42))))

	s := NewStoreForTest(c)
	count, err := s.SearchCount(context.Background(), "users", filter.Expression{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 42 {
		t.Errorf("expected 42, got %d", count)
	}
}

func TestBuildFilter(t *testing.T) {
	tests := []struct {
		name string
		b    *filter.Builder
		want string
	}{
		{"empty", filter.Where(), "*"},
		{"tag", filter.Where().Tag("city", "paris"), "@city:{paris}"},
		{"any_of", filter.Where().Tag("gender", "female", "nonbinary"), "@gender:{female | nonbinary}"},
		{"range", filter.Where().AtLeast("created_at", 100), "@created_at:[100 +inf]"},
		{"combined", filter.Where().Tag("city", "paris").AtLeast("created_at", 100).NotTag("id", "u-1"), `@city:{paris} @created_at:[100 +inf] -@id:{u\-1}`},
		{"only_negation", filter.Where().NotTag("id", "u-1"), `* -@id:{u\-1}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr, err := tc.b.Build()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := buildFilter(expr); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestBuildNumericFilter(t *testing.T) {
	tests := []struct {
		name string
		r    filter.Range
		want string
	}{
		{"exclusive both", filter.Range{Lower: &filter.Bound{Value: 5, Exclusive: true}, Upper: &filter.Bound{Value: 10, Exclusive: true}}, `@age:[(5 (10]`},
		{"upper only", filter.Range{Upper: &filter.Bound{Value: 40}}, `@age:[-inf 40]`},
		{"millis", filter.Range{Lower: &filter.Bound{Value: 1760400000000}}, `@age:[1760400000000 +inf]`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := buildNumericFilter("age", tc.r); got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestTagEscaper(t *testing.T) {
	if got := tagEscaper.Replace("new york"); got != `new\ york` {
		t.Errorf("unexpected escape: %q", got)
	}
}
