package model

import (
	"fmt"
	"strings"
	"time"
)

// FragmentType enumerates the kinds of moments a user can capture.
type FragmentType string

const (
	FragmentText     FragmentType = "TEXT"
	FragmentImage    FragmentType = "IMAGE"
	FragmentLink     FragmentType = "LINK"
	FragmentLocation FragmentType = "LOCATION"
)

// ParseFragmentType coerces a case-insensitive spelling to the canonical enum.
func ParseFragmentType(s string) (FragmentType, error) {
	switch FragmentType(strings.ToUpper(strings.TrimSpace(s))) {
	case FragmentText:
		return FragmentText, nil
	case FragmentImage:
		return FragmentImage, nil
	case FragmentLink:
		return FragmentLink, nil
	case FragmentLocation:
		return FragmentLocation, nil
	}
	return "", fmt.Errorf("%w: unknown fragment type %q", ErrValidation, s)
}

// User mirrors the account owned by the auth service. Rows exist locally so
// fragments and memories have something to cascade from.
type User struct {
	UserID       string    `json:"userId"`
	Email        string    `json:"email"`
	DisplayName  *string   `json:"displayName,omitempty"`
	CreationTime time.Time `json:"creationTime"`
}

// Fragment is a single captured moment. Immutable after creation.
type Fragment struct {
	FragmentID   string       `json:"fragmentId"`
	UserID       string       `json:"userId"`
	Type         FragmentType `json:"type"`
	Content      string       `json:"content"`
	MediaURL     *string      `json:"mediaUrl,omitempty"`
	CreationTime time.Time    `json:"createdAt"`
	Insight      *Insight     `json:"insight,omitempty"`
}

// Insight is the one-sentence reflection attached to a fragment. A fragment
// may have none; that is an expected state, not an error.
type Insight struct {
	InsightID    string    `json:"insightId"`
	FragmentID   string    `json:"fragmentId"`
	Content      string    `json:"content"`
	CreationTime time.Time `json:"creationTime"`
}

// DailyMemory is the generated narrative for one user's calendar day.
// Date is always the normalized day-start instant in the reference timezone;
// (UserID, Date) is unique.
type DailyMemory struct {
	MemoryID     string    `json:"memoryId"`
	UserID       string    `json:"userId"`
	Date         time.Time `json:"date"`
	Summary      string    `json:"summary"`
	CreationTime time.Time `json:"creationTime"`
	UpdateTime   time.Time `json:"updateTime"`
}

// ListFragmentsRequest captures the timeline filters. Skip/Take implement
// offset pagination; Day, when set, restricts to [Day, Day+24h).
type ListFragmentsRequest struct {
	UserID string
	Skip   int
	Take   int
	Day    *time.Time
}

// EchoPage is one page of daily memories plus the keyset cursor for the next.
type EchoPage struct {
	Items      []*DailyMemory `json:"items"`
	NextCursor *string        `json:"nextCursor,omitempty"`
}
