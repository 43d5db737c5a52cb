// Package reaction implements the toggle-and-recount rules shared by post and
// comment reactions.
package reaction

import (
	"errors"
	"fmt"

	"github.com/samber/lo"
)

type Type string

const (
	Like    Type = "like"
	Dislike Type = "dislike"
	Love    Type = "love"
)

var ErrUnknownType = errors.New("unknown reaction type")

// Types lists the recognized reaction types.
var Types = []Type{Like, Dislike, Love}

func ParseType(value string) (Type, error) {
	t := Type(value)
	if !lo.Contains(Types, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, value)
	}
	return t, nil
}

type Reaction struct {
	UserID string `json:"user" db:"user_id"`
	Type   Type   `json:"type" db:"type"`
}

// Counts is the per-type tally of a reaction list. The db tags match the
// denormalized columns on posts and comments.
type Counts struct {
	Likes    int `json:"likes" db:"likes"`
	Dislikes int `json:"dislikes" db:"dislikes"`
	Loves    int `json:"loves" db:"loves"`
}

type Change int

const (
	Added Change = iota + 1
	Changed
	Removed
)

func (c Change) String() string {
	switch c {
	case Added:
		return "added"
	case Changed:
		return "changed"
	case Removed:
		return "removed"
	default:
		return "unknown"
	}
}

// Result describes the list after a reaction was applied.
type Result struct {
	Reactions []Reaction `json:"reactions"`
	Counts    Counts     `json:"reactionCounts"`
	Change    Change     `json:"-"`
	// Previous is the type the user had before a Changed or Removed result.
	Previous Type `json:"-"`
}

// Apply toggles userID's reaction of type t on reactions. The input slice is
// not modified.
func Apply(reactions []Reaction, userID string, t Type) Result {
	next := make([]Reaction, len(reactions))
	copy(next, reactions)

	_, idx, found := lo.FindIndexOf(next, func(r Reaction) bool {
		return r.UserID == userID
	})

	result := Result{}
	switch {
	case !found:
		next = append(next, Reaction{UserID: userID, Type: t})
		result.Change = Added
	case next[idx].Type == t:
		result.Previous = next[idx].Type
		next = append(next[:idx], next[idx+1:]...)
		result.Change = Removed
	default:
		result.Previous = next[idx].Type
		next[idx].Type = t
		result.Change = Changed
	}

	result.Reactions = next
	result.Counts = Tally(next)
	return result
}

func Tally(reactions []Reaction) Counts {
	return Counts{
		Likes:    countOf(reactions, Like),
		Dislikes: countOf(reactions, Dislike),
		Loves:    countOf(reactions, Love),
	}
}

func countOf(reactions []Reaction, t Type) int {
	return lo.CountBy(reactions, func(r Reaction) bool {
		return r.Type == t
	})
}
