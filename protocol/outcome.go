package protocol

import "github.com/xiaot623/gogo/unitlink/envelope"

// Outcome is the reason a run ended.
type Outcome string

const (
	OutcomeSuccess           Outcome = "Success"
	OutcomeAbort             Outcome = "Abort"
	OutcomeError             Outcome = "Error"
	OutcomeTimeoutInactivity Outcome = "TimeoutInactivity"
	OutcomeTimeUp            Outcome = "TimeUp"

	// OutcomeUnknown stands in for outcome names introduced by a newer
	// sender. It is never produced by a constructor.
	OutcomeUnknown Outcome = "Unknown"
)

// Outcomes lists the known outcomes in wire order.
var Outcomes = []Outcome{
	OutcomeSuccess,
	OutcomeAbort,
	OutcomeError,
	OutcomeTimeoutInactivity,
	OutcomeTimeUp,
}

// ParseOutcome never fails; unrecognized names map to OutcomeUnknown.
func ParseOutcome(name string) Outcome {
	return envelope.DecodeEnum(name, OutcomeUnknown, Outcomes...)
}

// Known reports whether o is one of the outcomes this build understands.
func (o Outcome) Known() bool { return o != OutcomeUnknown && ParseOutcome(string(o)) == o }

func (o Outcome) String() string { return string(o) }
