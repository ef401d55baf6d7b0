package router

import (
	"log/slog"

	"github.com/encodeous/quadrant/exchange"
	"github.com/encodeous/quadrant/topic"
)

// Decoder adapts an exchange decoding function into a DecodeFunc, logging
// decode errors at debug level. Payloads of another kind than their topic are
// dropped.
func Decoder(decode func([]byte) (*exchange.Exchange, error), log *slog.Logger) DecodeFunc {
	return func(payload []byte, t topic.Topic) (*exchange.Exchange, bool) {
		e, err := decode(payload)
		if err != nil {
			log.Debug("failed to decode payload", "topic", t.String(), "err", err)
			return nil, false
		}
		if k := t.Kind(); k != exchange.KindUnknown && k != e.Kind() {
			log.Debug("payload kind does not match topic", "topic", t.String(), "kind", e.Kind())
			return nil, false
		}
		return e, true
	}
}

// DecoderFor picks the decoder of a message kind.
func DecoderFor(kind exchange.Kind, log *slog.Logger) DecodeFunc {
	if kind == exchange.KindInfo {
		return Decoder(exchange.DecodeInformation, log)
	}
	return Decoder(exchange.DecodeExchange, log)
}
