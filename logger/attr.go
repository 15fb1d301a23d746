package logger

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"slices"
	"strings"

	"github.com/flightsurety/flightsurety/types"
)

/*
Log attribute key values. Generally shouldn't be used directly, use
appropriate "attribute constructor function" instead.

Only define names here if they are common for multiple modules, module
specific names should be defined in the module.
*/
const (
	NodeIDKey  = "node_id"
	ModuleKey  = "module"
	ErrorKey   = "err"
	KindKey    = "kind"
	RoundKey   = "round"
	UnitIDKey  = "unit_id"
	TxTypeKey  = "tx_type"
	DataKey    = "data"
	AirlineKey = "airline"

	traceID = "TraceId" // OTEL data model
	spanID  = "SpanId"  // OTEL data model
)

/*
NodeID adds the application identity the node executes orders for.

This function should be used with logger.With() method to create sub-logger
for the node (rather than adding NodeID call to individual logging calls).
*/
func NodeID(id types.Address) slog.Attr {
	return slog.String(NodeIDKey, id.Hex())
}

/*
Error adds error to the log

	if err:= f(); err != nil {
		log.Error("calling f", logger.Error(err))
	}
*/
func Error(err error) slog.Attr {
	return slog.Any(ErrorKey, err)
}

/*
ErrorKind adds the name of the governance failure kind of the error, nothing
is added when the error is not a governance failure.
*/
func ErrorKind(err error) slog.Attr {
	if kind := types.ErrorKind(err); kind != "" {
		return slog.String(KindKey, kind)
	}
	return slog.Attr{}
}

// Round adds round number.
func Round(round uint64) slog.Attr {
	return slog.Uint64(RoundKey, round)
}

// Module adds the name of the component producing the log record.
func Module(name string) slog.Attr {
	return slog.String(ModuleKey, name)
}

// Airline adds the address of the airline the record is about.
func Airline(addr types.Address) slog.Attr {
	return slog.String(AirlineKey, addr.Hex())
}

// TxType adds the type of the transaction order.
func TxType(typ string) slog.Attr {
	return slog.String(TxTypeKey, typ)
}

/*
Data adds additional data field to the message.

slog.GroupValue shouldn't be used as the data - in the ECS formatter all
groups will end up under the same key possibly causing problems with index!

Use of anonymous types is discouraged too.
*/
func Data(d any) slog.Attr {
	return slog.Any(DataKey, d)
}

/*
UnitID is used to log ID of the primary unit (airline, flight, vote record,...)
associated to the logging call.
*/
func UnitID(id []byte) slog.Attr {
	return slog.String(UnitIDKey, fmt.Sprintf("%X", id))
}

// attrFormatter is the signature of slog.HandlerOptions.ReplaceAttr.
type attrFormatter = func(groups []string, a slog.Attr) slog.Attr

// composeAttrFmt chains the non-nil formatters, nil is returned when there are none.
func composeAttrFmt(f ...attrFormatter) attrFormatter {
	f = slices.DeleteFunc(f, func(f attrFormatter) bool { return f == nil })
	switch len(f) {
	case 0:
		return nil
	case 1:
		return f[0]
	}
	return func(groups []string, a slog.Attr) slog.Attr {
		for _, fn := range f {
			a = fn(groups, a)
		}
		return a
	}
}

func formatTimeAttr(format string) attrFormatter {
	switch format {
	case "":
		// whatever handler does by default...
		return nil
	case "none":
		return func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		}
	default:
		return func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				if t := a.Value.Time(); !t.IsZero() {
					a.Value = slog.StringValue(t.Format(format))
				}
			}
			return a
		}
	}
}

func formatDataAttrAsJSON(groups []string, a slog.Attr) slog.Attr {
	if a.Key == DataKey {
		switch a.Value.Kind() {
		case slog.KindAny:
			if b, err := json.Marshal(a.Value.Any()); err == nil {
				a.Value = slog.StringValue(string(b))
			}
		}
	}
	return a
}

/*
formatAttrConsole strips source and namespacing noise so that the log output
is easier to follow in the terminal.
*/
func formatAttrConsole(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			trimSource(src)
			return slog.String(a.Key, fmt.Sprintf("%s:%d", filepath.Base(src.File), src.Line))
		}
	}
	return a
}

/*
formatAttrECS is a "poor man's ECS handler" ie it formats some well known
attributes according to the Elastic Common Schema.
*/
func formatAttrECS(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.MessageKey:
		return slog.String("message", a.Value.String())
	case slog.SourceKey:
		if src, ok := a.Value.Any().(*slog.Source); ok {
			trimSource(src)
			return slog.Group(
				"log",
				slog.Group(
					"origin",
					slog.String("function", src.Function),
					slog.Group("file", slog.String("name", src.File), slog.Int("line", src.Line)),
				),
			)
		}
	case NodeIDKey:
		return slog.Group("service", slog.Group("node", slog.Any("name", a.Value)))
	case ErrorKey:
		return slog.Group("error", slog.Any("message", a.Value.Any()))
	case DataKey:
		// to keep Elastic happy we nest the actual value under it's type name, kind of namespacing it.
		// as ie `data:"string value"` and `data: 42` would cause type conflict in Elastic index.
		// different struct types might also have a field with the same name but different type!
		return slog.Group(DataKey, slog.Any(dataName(a.Value), a.Value))
	case traceID:
		return slog.Group("trace", slog.String("id", a.Value.String()))
	case spanID:
		return slog.Group("span", slog.String("id", a.Value.String()))
	}
	return a
}

/*
dataName returns name of the data type of "v", suitable to act as a "namespace" for
the value in ECS format. There is basically no restrictions for key names in JSON
but this func attempts to do some sanitizing in order to make querying the resulting
JSON a bit easier.
*/
func dataName(v slog.Value) string {
	switch v.Kind() {
	case slog.KindAny, slog.KindLogValuer:
		a := v.Any()
		// for anonymous type reflect.TypeOf(a).String() returns type def, ie
		// struct { Str string; Int int }
		// which is valid but not nice JSON key. For now we do not worry about
		// that (just do not use anon types for data)!
		rt := reflect.TypeOf(a)
		// strip leading "*" of pointer types and replace "." with "_"
		return strings.ReplaceAll(strings.TrimLeft(rt.String(), "*"), ".", "_")
	default:
		return v.Kind().String()
	}
}

/*
trimSource shortens the "function" name field in "src" by trimming the
package name from it.
*/
func trimSource(src *slog.Source) {
	// function name by default includes "full path package name" ie
	// github.com/flightsurety/flightsurety/cli/flightsurety/cmd.newBaseCmd.func1
	// so first get last part of the path (filename)...
	_, src.Function = filepath.Split(src.Function)
	// ...and then get rid of package name in front of func name
	if s := strings.SplitAfterN(src.Function, ".", 2); len(s) == 2 {
		src.Function = s[1]
	}
}
