package domain

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/kailas-cloud/matchfeed/internal/domain/dna"
)

func TestUser_Validate(t *testing.T) {
	tests := []struct {
		name    string
		user    User
		wantErr bool
	}{
		{"ok", User{ID: "u-1", Location: Location{Country: "USA"}}, false},
		{"empty_id", User{Location: Location{Country: "USA"}}, true},
		{"bad_id", User{ID: "u 1", Location: Location{Country: "USA"}}, true},
		{"colon_id", User{ID: "u:1", Location: Location{Country: "USA"}}, true},
		{"no_country", User{ID: "u1"}, true},
		{"too_many_interests", User{ID: "u1", Location: Location{Country: "USA"}, Interests: make([]string, MaxInterests+1)}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.user.Validate()
			if (err != nil) != tc.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tc.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestUser_Vector(t *testing.T) {
	stored := dna.Vector{Logic: 120, Emotion: 40, Energy: 40, Creativity: 40, Discipline: -3}
	u := User{DNA: &stored}
	got := u.Vector()
	if got.Logic != 100 || got.Discipline != 0 {
		t.Errorf("stored vector not clamped: %+v", got)
	}

	computed := User{Answers: []dna.Category{{Name: "c", Answers: []dna.Answer{{Trait: "creative"}}}}}
	if computed.Vector().Creativity != 95 {
		t.Errorf("expected computed vector, got %+v", computed.Vector())
	}

	if (&User{}).Vector() != dna.Default() {
		t.Error("no data should yield default")
	}
}

func TestUser_PreferredGender(t *testing.T) {
	tests := []struct {
		lookingFor string
		want       string
		ok         bool
	}{
		{"", "", false},
		{"everyone", "", false},
		{"Everyone", "", false},
		{"female", "female", true},
		{" male ", "male", true},
	}
	for _, tc := range tests {
		u := User{LookingFor: tc.lookingFor}
		got, ok := u.PreferredGender()
		if got != tc.want || ok != tc.ok {
			t.Errorf("%q: got (%q, %v)", tc.lookingFor, got, ok)
		}
	}
}

func TestUser_NormalizedInterests(t *testing.T) {
	u := User{Interests: []string{"Hiking", " hiking", "", "Jazz", "art"}}
	got := u.NormalizedInterests()
	want := []string{"art", "hiking", "jazz"}
	if !slices.Equal(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestSwipe_Validate(t *testing.T) {
	tests := []struct {
		name  string
		swipe Swipe
		want  error
	}{
		{"ok", Swipe{OwnerID: "a", TargetID: "b", Action: ActionLike}, nil},
		{"self", Swipe{OwnerID: "a", TargetID: "a", Action: ActionLike}, ErrSelfInteraction},
		{"missing_target", Swipe{OwnerID: "a", Action: ActionLike}, ErrInvalidInput},
		{"bad_action", Swipe{OwnerID: "a", TargetID: "b", Action: "poke"}, ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.swipe.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Errorf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestAction_Forward(t *testing.T) {
	for _, a := range []Action{ActionLike, ActionDislike, ActionSuperLike, ActionBlock} {
		owner, target := a.Forward()
		if owner == "" || target == "" || owner == target {
			t.Errorf("%s: bad relations %q/%q", a, owner, target)
		}
	}
	if !ActionSuperLike.Positive() || ActionDislike.Positive() || ActionBlock.Positive() {
		t.Error("unexpected Positive() result")
	}
}

func TestSampleFor(t *testing.T) {
	tests := []struct {
		name       string
		lookingFor string
		wantGender string
	}{
		{"preference", "female", "female"},
		{"everyone", "Everyone", ""},
		{"unset", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			owner := &User{ID: "o", LookingFor: tt.lookingFor, Location: Location{Country: "DE", City: "Berlin"}}
			q := SampleFor(owner, 300)
			if q.Country != "DE" || q.Limit != 300 || q.City != "" {
				t.Errorf("unexpected query: %+v", q)
			}
			if q.Gender != tt.wantGender {
				t.Errorf("gender = %q, want %q", q.Gender, tt.wantGender)
			}
			if len(q.ExcludeIDs) != 1 || q.ExcludeIDs[0] != "o" {
				t.Errorf("owner not excluded: %v", q.ExcludeIDs)
			}
		})
	}
}

func TestSampleQuery_Exclude(t *testing.T) {
	q := SampleFor(&User{ID: "o", Location: Location{Country: "DE"}}, 10)
	q.Exclude("a", "o", "", "b", "a")
	if want := []string{"o", "a", "b"}; !slices.Equal(q.ExcludeIDs, want) {
		t.Errorf("ExcludeIDs = %v, want %v", q.ExcludeIDs, want)
	}

	many := make([]string, MaxExcludeIDs+50)
	for i := range many {
		many[i] = fmt.Sprintf("u%04d", i)
	}
	q.Exclude(many...)
	if len(q.ExcludeIDs) != MaxExcludeIDs {
		t.Errorf("len = %d, want cap %d", len(q.ExcludeIDs), MaxExcludeIDs)
	}
}
