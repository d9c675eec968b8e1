package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/warden-dev/policy-sdk-go/domain/entities"
)

// appendAttr flattens attr into dst. Group members get dotted keys.
func appendAttr(dst []entities.LogAttr, prefix string, attr slog.Attr) []entities.LogAttr {
	attr.Value = attr.Value.Resolve()
	if attr.Value.Kind() == slog.KindGroup {
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = prefix + attr.Key + "."
		}
		for _, member := range attr.Value.Group() {
			dst = appendAttr(dst, groupPrefix, member)
		}
		return dst
	}
	if attr.Equal(slog.Attr{}) {
		return dst
	}
	wire := toLogAttr(attr)
	wire.Key = prefix + wire.Key
	return append(dst, wire)
}

// toLogAttr converts a resolved, non-group slog.Attr to its wire form.
func toLogAttr(attr slog.Attr) entities.LogAttr {
	wire := entities.LogAttr{
		Key: attr.Key,
	}
	attr.Value = attr.Value.Resolve()

	switch attr.Value.Kind() {
	case slog.KindString:
		wire.Type = "string"
		wire.Value = attr.Value.String()
	case slog.KindInt64:
		wire.Type = "int64"
		wire.Value = strconv.FormatInt(attr.Value.Int64(), 10)
	case slog.KindUint64:
		wire.Type = "uint64"
		wire.Value = strconv.FormatUint(attr.Value.Uint64(), 10)
	case slog.KindBool:
		wire.Type = "bool"
		wire.Value = strconv.FormatBool(attr.Value.Bool())
	case slog.KindFloat64:
		wire.Type = "float64"
		wire.Value = strconv.FormatFloat(attr.Value.Float64(), 'g', -1, 64)
	case slog.KindTime:
		wire.Type = "time"
		wire.Value = attr.Value.Time().Format(time.RFC3339Nano)
	case slog.KindDuration:
		wire.Type = "duration"
		wire.Value = attr.Value.Duration().String()
	case slog.KindAny:
		if v := attr.Value.Any(); v != nil {
			if err, isErr := v.(error); isErr {
				wire.Type = "error"
				wire.Value = err.Error()
			} else if data, marshalErr := json.Marshal(v); marshalErr == nil {
				wire.Type = "json"
				wire.Value = string(data)
			} else {
				wire.Type = "any"
				wire.Value = fmt.Sprintf("%v", v)
			}
		} else {
			wire.Type = "any"
			wire.Value = "<nil>"
		}
	default:
		wire.Type = "any"
		wire.Value = attr.Value.String()
	}
	return wire
}

// fromLogAttr rebuilds a slog.Attr from its wire form. Unknown types and
// values that fail to parse are kept as strings.
func fromLogAttr(wire entities.LogAttr) slog.Attr {
	switch wire.Type {
	case "int64":
		if n, err := strconv.ParseInt(wire.Value, 10, 64); err == nil {
			return slog.Int64(wire.Key, n)
		}
	case "uint64":
		if n, err := strconv.ParseUint(wire.Value, 10, 64); err == nil {
			return slog.Uint64(wire.Key, n)
		}
	case "bool":
		if b, err := strconv.ParseBool(wire.Value); err == nil {
			return slog.Bool(wire.Key, b)
		}
	case "float64":
		if f, err := strconv.ParseFloat(wire.Value, 64); err == nil {
			return slog.Float64(wire.Key, f)
		}
	case "time":
		if ts, err := time.Parse(time.RFC3339Nano, wire.Value); err == nil {
			return slog.Time(wire.Key, ts)
		}
	case "duration":
		if d, err := time.ParseDuration(wire.Value); err == nil {
			return slog.Duration(wire.Key, d)
		}
	case "json":
		return slog.Any(wire.Key, json.RawMessage(wire.Value))
	}
	return slog.String(wire.Key, wire.Value)
}

// Replay re-emits a record received from a guest through logger.
// extra attributes (such as the policy name) are added first.
func Replay(ctx context.Context, logger *slog.Logger, rec entities.LogRecord, extra ...slog.Attr) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(rec.Level)); err != nil {
		level = slog.LevelInfo
	}
	if !logger.Enabled(ctx, level) {
		return
	}

	when := rec.Time
	if when.IsZero() {
		when = time.Now()
	}
	record := slog.NewRecord(when, level, rec.Message, 0)
	record.AddAttrs(extra...)
	for _, attr := range rec.Attrs {
		record.AddAttrs(fromLogAttr(attr))
	}
	_ = logger.Handler().Handle(ctx, record)
}
