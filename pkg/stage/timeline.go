package stage

import (
	"fmt"
	"time"
)

// Phase is the number of messages of the current record visible beyond the
// first one.
type Phase int

const (
	// PhasePrompt shows only the first-party message.
	PhasePrompt Phase = iota
	// PhaseReply adds the second-party message.
	PhaseReply
	// PhaseSystem adds the system message. Final phase.
	PhaseSystem
)

// FinalPhase is the phase a settled selection rests in.
const FinalPhase = PhaseSystem

func (p Phase) String() string {
	switch p {
	case PhasePrompt:
		return "prompt"
	case PhaseReply:
		return "reply"
	case PhaseSystem:
		return "system"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Default reveal offsets, measured from the selection change.
const (
	DefaultReplyDelay  = 500 * time.Millisecond
	DefaultSystemDelay = 1200 * time.Millisecond
)

// Timeline configures when each phase becomes visible after a selection.
// Offsets are absolute from the GoTo call, not chained.
type Timeline struct {
	Reply  time.Duration
	System time.Duration

	// ReducedMotion skips the staged reveal: a selection lands directly on
	// FinalPhase and nothing is scheduled.
	ReducedMotion bool
}

// DefaultTimeline returns the standard 500ms / 1200ms reveal.
func DefaultTimeline() Timeline {
	return Timeline{
		Reply:  DefaultReplyDelay,
		System: DefaultSystemDelay,
	}
}

// Validate reports offsets that cannot describe a forward-moving reveal.
func (t Timeline) Validate() error {
	if t.Reply < 0 || t.System < 0 {
		return fmt.Errorf("reveal delays must be non-negative (reply=%v, system=%v)", t.Reply, t.System)
	}
	if t.System < t.Reply {
		return fmt.Errorf("system delay %v is earlier than reply delay %v", t.System, t.Reply)
	}
	return nil
}

// Advance is one pending phase transition. Gen is the walkthrough generation
// it was scheduled under; After is the delay from the scheduling GoTo.
type Advance struct {
	Gen   uint64
	Phase Phase
	After time.Duration
}

// schedule returns the advances for generation gen.
func (t Timeline) schedule(gen uint64) []Advance {
	if t.ReducedMotion {
		return nil
	}
	return []Advance{
		{Gen: gen, Phase: PhaseReply, After: t.Reply},
		{Gen: gen, Phase: PhaseSystem, After: t.System},
	}
}
