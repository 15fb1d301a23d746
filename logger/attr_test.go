package logger

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/flightsurety/flightsurety/types"
)

func TestAttributes(t *testing.T) {
	airline := types.BytesToAddress([]byte{0xab})
	testCases := []struct {
		name string
		attr slog.Attr
		key  string
		str  string
	}{
		{name: "node id", attr: NodeID(airline), key: NodeIDKey, str: airline.Hex()},
		{name: "airline", attr: Airline(airline), key: AirlineKey, str: airline.Hex()},
		{name: "round", attr: Round(7), key: RoundKey, str: "7"},
		{name: "module", attr: Module("node"), key: ModuleKey, str: "node"},
		{name: "tx type", attr: TxType("registerFlight"), key: TxTypeKey, str: "registerFlight"},
		{name: "unit id", attr: UnitID([]byte{5, 0xa1}), key: UnitIDKey, str: "05A1"},
		{name: "error kind", attr: ErrorKind(fmt.Errorf("validation failed: %w", types.ErrDuplicateVote)), key: KindKey, str: "DuplicateVote"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.key, tc.attr.Key)
			require.Equal(t, tc.str, tc.attr.Value.String())
		})
	}

	t.Run("error kind of other errors", func(t *testing.T) {
		require.Equal(t, slog.Attr{}, ErrorKind(fmt.Errorf("other")))
		require.Equal(t, slog.Attr{}, ErrorKind(nil))
	})
}

func Test_formatTimeAttr(t *testing.T) {
	now := time.Now()
	require.Nil(t, formatTimeAttr(""))

	t.Run("none drops the time", func(t *testing.T) {
		f := formatTimeAttr("none")
		require.Equal(t, slog.Attr{}, f(nil, slog.Time(slog.TimeKey, now)))
		require.True(t, f(nil, slog.Time("departure", now)).Equal(slog.Time("departure", now)))
	})

	t.Run("layout", func(t *testing.T) {
		f := formatTimeAttr(time.Kitchen)
		require.Equal(t, now.Format(time.Kitchen), f(nil, slog.Time(slog.TimeKey, now)).Value.String())
		// zero time and other keys are not changed
		require.Equal(t, slog.Time(slog.TimeKey, time.Time{}), f(nil, slog.Time(slog.TimeKey, time.Time{})))
		require.True(t, f(nil, slog.Time("departure", now)).Equal(slog.Time("departure", now)))
	})
}

func Test_composeAttrFmt(t *testing.T) {
	add := func(n int64) attrFormatter {
		return func(groups []string, a slog.Attr) slog.Attr { return slog.Int64(a.Key, a.Value.Int64()+n) }
	}
	testCases := []struct {
		fmts []attrFormatter
		want int64
	}{
		{fmts: []attrFormatter{add(1)}, want: 1},
		{fmts: []attrFormatter{nil, add(2), nil}, want: 2},
		{fmts: []attrFormatter{add(1), nil, add(2)}, want: 3},
		{fmts: []attrFormatter{add(1), add(2), add(4), add(8), add(16)}, want: 31},
		{fmts: []attrFormatter{add(8), add(8)}, want: 16},
	}
	for _, tc := range testCases {
		f := composeAttrFmt(tc.fmts...)
		require.NotNil(t, f)
		require.Equal(t, tc.want, f(nil, slog.Int64("n", 0)).Value.Int64())
	}

	require.Nil(t, composeAttrFmt())
	require.Nil(t, composeAttrFmt(nil, nil))
}

func Test_dataName(t *testing.T) {
	type flight struct {
		code string
	}
	var clv customLogValuer = 4

	testCases := []struct {
		value slog.Value
		name  string
	}{
		{value: slog.BoolValue(true), name: "Bool"},
		{value: slog.Int64Value(64), name: "Int64"},
		{value: slog.Uint64Value(90), name: "Uint64"},
		{value: slog.StringValue("FS100"), name: "String"},
		{value: slog.DurationValue(time.Second), name: "Duration"},
		{value: slog.AnyValue(555), name: "Int64"},
		{value: slog.AnyValue(flight{"FS100"}), name: "logger_flight"},
		{value: slog.AnyValue(&flight{"FS100"}), name: "logger_flight"},
		{value: slog.AnyValue(customLogValuer(2)), name: "logger_customLogValuer"},
		{value: slog.AnyValue(&clv), name: "logger_customLogValuer"},
		{value: slog.GroupValue(slog.Any("key", "value")), name: "Group"},
	}
	for _, tc := range testCases {
		require.Equal(t, tc.name, dataName(tc.value), "value %#v", tc.value.Any())
	}
}

func Test_formatDataAttrAsJSON(t *testing.T) {
	type flight struct {
		Code      string
		Timestamp uint64
	}
	a := formatDataAttrAsJSON(nil, slog.Any(DataKey, &flight{Code: "FS100", Timestamp: 1700000000}))
	require.Equal(t, DataKey, a.Key)
	require.Equal(t, `{"Code":"FS100","Timestamp":1700000000}`, a.Value.String())

	// only the data attribute is converted
	a = formatDataAttrAsJSON(nil, slog.Any("other", &flight{Code: "FS100"}))
	require.Equal(t, slog.KindAny, a.Value.Kind())
}

func Test_formatAttrConsole(t *testing.T) {
	source := &slog.Source{
		Function: "github.com/flightsurety/flightsurety/node.(*Node).Run",
		File:     "/src/node/node.go",
		Line:     42,
	}
	a := formatAttrConsole(nil, slog.Any(slog.SourceKey, source))
	require.Equal(t, slog.SourceKey, a.Key)
	require.Equal(t, "node.go:42", a.Value.String())

	a = formatAttrConsole(nil, slog.String("foo", "bar"))
	require.True(t, a.Equal(slog.String("foo", "bar")))
}

func Test_formatAttrECS(t *testing.T) {
	group := func(t *testing.T, a slog.Attr, path ...string) slog.Value {
		t.Helper()
		require.Equal(t, path[0], a.Key)
		v := a.Value
		for _, key := range path[1:] {
			require.Equal(t, slog.KindGroup, v.Kind())
			found := false
			for _, ga := range v.Group() {
				if ga.Key == key {
					v, found = ga.Value, true
					break
				}
			}
			require.True(t, found, "key %q not found", key)
		}
		return v
	}

	require.Equal(t, "message", formatAttrECS(nil, slog.String(slog.MessageKey, "flight registered")).Key)

	source := &slog.Source{Function: "github.com/flightsurety/flightsurety/rpc.NodeEndpoints", File: "rest_node.go", Line: 10}
	a := formatAttrECS(nil, slog.Any(slog.SourceKey, source))
	require.Equal(t, "NodeEndpoints", group(t, a, "log", "origin", "function").String())
	require.Equal(t, "rest_node.go", group(t, a, "log", "origin", "file", "name").String())
	require.EqualValues(t, 10, group(t, a, "log", "origin", "file", "line").Int64())

	require.Equal(t, "0xab", group(t, formatAttrECS(nil, slog.String(NodeIDKey, "0xab")), "service", "node", "name").String())
	require.Equal(t, "boom", group(t, formatAttrECS(nil, slog.String(ErrorKey, "boom")), "error", "message").String())
	require.Equal(t, "FS100", group(t, formatAttrECS(nil, slog.String(DataKey, "FS100")), DataKey, "String").String())
	require.Equal(t, "t1", group(t, formatAttrECS(nil, slog.String(traceID, "t1")), "trace", "id").String())
	require.Equal(t, "s1", group(t, formatAttrECS(nil, slog.String(spanID, "s1")), "span", "id").String())
}

type customLogValuer int

func (clv customLogValuer) LogValue() slog.Value {
	return slog.IntValue(int(clv))
}
