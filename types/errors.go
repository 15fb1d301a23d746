package types

import "errors"

// Governance failures. Every rejected operation wraps exactly one of these so
// that callers can tell the reason apart with errors.Is.
var (
	ErrNotOperational           = errors.New("contract is not operational")
	ErrUnauthorized             = errors.New("caller is not the administrator")
	ErrCallerNotAuthorized      = errors.New("caller is not authorized to access the registry")
	ErrCallerNotFundedAirline   = errors.New("caller is not a registered and funded airline")
	ErrCallerNotAirline         = errors.New("caller is not a registered airline")
	ErrAirlineAlreadyRegistered = errors.New("airline is already registered")
	ErrDuplicateFlight          = errors.New("flight is already registered")
	ErrDuplicateVote            = errors.New("airline has already voted for the candidate")
	ErrInsufficientStake        = errors.New("stake is below the required minimum")
	ErrVotingNotRequired        = errors.New("airline admission does not require voting")
)

var errorKinds = []struct {
	err  error
	kind string
}{
	{ErrNotOperational, "NotOperational"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrCallerNotAuthorized, "CallerNotAuthorized"},
	{ErrCallerNotFundedAirline, "CallerNotFundedAirline"},
	{ErrCallerNotAirline, "CallerNotAirline"},
	{ErrAirlineAlreadyRegistered, "AirlineAlreadyRegistered"},
	{ErrDuplicateFlight, "DuplicateFlight"},
	{ErrDuplicateVote, "DuplicateVote"},
	{ErrInsufficientStake, "InsufficientStake"},
	{ErrVotingNotRequired, "VotingNotRequired"},
}

/*
ErrorKind returns the name of the governance failure wrapped by err. Empty
string is returned when err is nil or it is not a governance failure.
*/
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return ""
}
