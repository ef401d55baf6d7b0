package exchange

import "time"

const (
	// EtsiEpochMillis is 2004-01-01T00:00:00Z in unix milliseconds.
	EtsiEpochMillis = uint64(1072915200000)
	// LeapSecondsMillis is the number of leap seconds inserted since the ETSI epoch.
	LeapSecondsMillis = uint64(5000)
)

// Now is the clock used for expiry and appropriation.
var Now = time.Now

func NowMillis() uint64 {
	return uint64(Now().UnixMilli())
}

// ItsTimestamp converts unix milliseconds into a TimestampIts. Instants
// before the ETSI epoch clamp to 0.
func ItsTimestamp(unixMillis uint64) uint64 {
	if unixMillis+LeapSecondsMillis < EtsiEpochMillis {
		return 0
	}
	return unixMillis + LeapSecondsMillis - EtsiEpochMillis
}

func UnixTimestamp(its uint64) uint64 {
	return its + EtsiEpochMillis - LeapSecondsMillis
}

// GenerationDeltaTime is the TimestampIts modulo 65536 used by CAMs and CPMs.
func GenerationDeltaTime(unixMillis uint64) uint16 {
	return uint16(ItsTimestamp(unixMillis) % 65536)
}

// MinuteOfYear is the MinuteOfTheYear of a unix timestamp, in UTC.
func MinuteOfYear(unixMillis uint64) uint32 {
	t := time.UnixMilli(int64(unixMillis)).UTC()
	start := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	return uint32(t.Sub(start) / time.Minute)
}
