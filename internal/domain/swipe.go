package domain

import (
	"fmt"
	"time"
)

// Action is a swipe verb.
type Action string

const (
	// ActionLike is a right swipe.
	ActionLike Action = "like"
	// ActionDislike is a left swipe.
	ActionDislike Action = "dislike"
	// ActionSuperLike is a highlighted like.
	ActionSuperLike Action = "superlike"
	// ActionBlock hides both users from each other.
	ActionBlock Action = "block"
)

// Relation names one per-user relationship set.
type Relation string

// Relationship sets kept per user. Each forward set has a reverse counterpart on the target.
const (
	RelLiked        Relation = "liked"
	RelLikedBy      Relation = "liked_by"
	RelDisliked     Relation = "disliked"
	RelDislikedBy   Relation = "disliked_by"
	RelSuperLiked   Relation = "superliked"
	RelSuperLikedBy Relation = "superliked_by"
	RelMatched      Relation = "matched"
	RelBlocked      Relation = "blocked"
	RelBlockedBy    Relation = "blocked_by"
)

// Relations lists every relationship set.
var Relations = []Relation{
	RelLiked, RelLikedBy, RelDisliked, RelDislikedBy,
	RelSuperLiked, RelSuperLikedBy, RelMatched, RelBlocked, RelBlockedBy,
}

// ParseAction validates a swipe verb.
func ParseAction(s string) (Action, error) {
	switch a := Action(s); a {
	case ActionLike, ActionDislike, ActionSuperLike, ActionBlock:
		return a, nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", ErrInvalidInput, s)
	}
}

// Forward returns the owner-side and target-side relations written for the action.
func (a Action) Forward() (owner, target Relation) {
	switch a {
	case ActionLike:
		return RelLiked, RelLikedBy
	case ActionDislike:
		return RelDisliked, RelDislikedBy
	case ActionSuperLike:
		return RelSuperLiked, RelSuperLikedBy
	case ActionBlock:
		return RelBlocked, RelBlockedBy
	default:
		return "", ""
	}
}

// Positive reports whether the action can produce a match.
func (a Action) Positive() bool {
	return a == ActionLike || a == ActionSuperLike
}

// Swipe is one interaction from Owner to Target.
type Swipe struct {
	OwnerID  string    `json:"owner_id"`
	TargetID string    `json:"target_id"`
	Action   Action    `json:"action"`
	At       time.Time `json:"at"`
}

// Validate checks a swipe before it is enqueued.
func (s *Swipe) Validate() error {
	if s.OwnerID == "" || s.TargetID == "" {
		return fmt.Errorf("%w: owner and target are required", ErrInvalidInput)
	}
	if s.OwnerID == s.TargetID {
		return ErrSelfInteraction
	}
	if _, err := ParseAction(string(s.Action)); err != nil {
		return err
	}
	return nil
}
