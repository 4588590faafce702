package store

import (
	"errors"
	"time"

	"github.com/lixenwraith/forager/trial"
)

// ErrNotFound is returned when a trial ID is unknown
var ErrNotFound = errors.New("trial not found")

// DB is the result store used by the host and the results server
type DB interface {
	Close() error
	Migrate() error
	SaveResult(res trial.Result) error
	ListTrials(limit int) ([]Trial, error)
	GetTrial(id string) (*Trial, error)
	ListClicks(trialID string) ([]Click, error)
}

// Trial is one stored trial summary
type Trial struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	StartedAt            time.Time `json:"started_at"`
	ElapsedMs            float64   `json:"elapsed_ms"`
	Aborted              bool      `json:"aborted"`
	TimedOut             bool      `json:"timed_out"`
	Seed                 *uint64   `json:"seed,omitempty"`
	Score                int       `json:"score"`
	Targets              int       `json:"targets"`
	Distractors          int       `json:"distractors"`
	CollectedTargets     int       `json:"collected_targets"`
	CollectedDistractors int       `json:"collected_distractors"`
	RemainingTargets     int       `json:"remaining_targets"`
	RemainingDistractors int       `json:"remaining_distractors"`
	ClickCount           int       `json:"click_count"`
	CreatedAt            time.Time `json:"created_at"`
}

// Click is one stored input event of a trial
type Click struct {
	ID           int64   `json:"id"`
	TrialID      string  `json:"trial_id"`
	Seq          int     `json:"seq"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Button       string  `json:"button"`
	Kind         string  `json:"kind"`
	ReactionMs   float64 `json:"reaction_ms"`
	AtMs         float64 `json:"at_ms"`
	Hit          bool    `json:"hit"`
	Removed      bool    `json:"removed"`
	Scored       bool    `json:"scored"`
	InstanceSeq  int     `json:"instance_seq"`
	InstanceKind string  `json:"instance_kind"`
	Role         string  `json:"role"`
	Value        int     `json:"value"`
	Distance     float64 `json:"distance"`
}

func millis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
