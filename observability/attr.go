package observability

import (
	"encoding/hex"

	"go.opentelemetry.io/otel/attribute"

	"github.com/flightsurety/flightsurety/types"
)

const TxTypeKey attribute.Key = "tx.type"
const TxHashKey attribute.Key = "tx.hash"
const UnitIDKey attribute.Key = "unit_id"
const ErrKindKey attribute.Key = "kind"

func Round(round uint64) attribute.KeyValue {
	return attribute.Int64("round", int64(round)) /* #nosec G115 its unlikely that value of round exceeds int64 max value */
}

func UnitID(id []byte) attribute.KeyValue {
	return UnitIDKey.String(hex.EncodeToString(id))
}

func TxHash(value []byte) attribute.KeyValue {
	return TxHashKey.String(hex.EncodeToString(value))
}

func TxType(typ string) attribute.KeyValue {
	return TxTypeKey.String(typ)
}

/*
ErrStatus returns attribute named "status" with value "ok" if the param
err is nil and "err" when it is not.
*/
func ErrStatus(err error) attribute.KeyValue {
	status := "ok"
	if err != nil {
		status = "err"
	}
	return attribute.String("status", status)
}

/*
ErrKind returns attribute named "kind" with the name of the governance
failure wrapped by err, "none" when err is nil and "other" for errors
which are not governance failures.
*/
func ErrKind(err error) attribute.KeyValue {
	if err == nil {
		return ErrKindKey.String("none")
	}
	if kind := types.ErrorKind(err); kind != "" {
		return ErrKindKey.String(kind)
	}
	return ErrKindKey.String("other")
}
