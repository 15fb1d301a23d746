package types

import "fmt"

// FlightStatus is the status code of a flight, the numeric values are the
// codes used by the insurance contracts.
type FlightStatus uint8

const (
	FlightStatusUnknown       FlightStatus = 0
	FlightStatusOnTime        FlightStatus = 10
	FlightStatusLateAirline   FlightStatus = 20
	FlightStatusLateWeather   FlightStatus = 30
	FlightStatusLateTechnical FlightStatus = 40
	FlightStatusLateOther     FlightStatus = 50
)

var flightStatusNames = map[FlightStatus]string{
	FlightStatusUnknown:       "unknown",
	FlightStatusOnTime:        "on-time",
	FlightStatusLateAirline:   "late-airline",
	FlightStatusLateWeather:   "late-weather",
	FlightStatusLateTechnical: "late-technical",
	FlightStatusLateOther:     "late-other",
}

func (s FlightStatus) String() string {
	if n, ok := flightStatusNames[s]; ok {
		return n
	}
	return fmt.Sprintf("FlightStatus(%d)", uint8(s))
}

func (s FlightStatus) Valid() bool {
	_, ok := flightStatusNames[s]
	return ok
}

func (s FlightStatus) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid flight status %d", uint8(s))
	}
	return []byte(s.String()), nil
}

func (s *FlightStatus) UnmarshalText(text []byte) error {
	for k, v := range flightStatusNames {
		if v == string(text) {
			*s = k
			return nil
		}
	}
	return fmt.Errorf("unknown flight status %q", text)
}
