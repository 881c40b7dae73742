package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a time.Duration that travels on the wire as a
// "days.HH:MM:SS[.fffffff]" string, e.g. "1.00:00:00" for one day or
// "04:30:00" for four and a half hours.
//
// As a text value (environment variables) it also accepts Go duration
// syntax such as "24h".
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

// String formats d as days.HH:MM:SS with a 7-digit fraction when needed.
func (d Duration) String() string {
	v := time.Duration(d)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	days := v / (24 * time.Hour)
	v -= days * 24 * time.Hour
	h := v / time.Hour
	v -= h * time.Hour
	m := v / time.Minute
	v -= m * time.Minute
	s := v / time.Second
	v -= s * time.Second

	var b strings.Builder
	b.WriteString(sign)
	if days > 0 {
		fmt.Fprintf(&b, "%d.", days)
	}
	fmt.Fprintf(&b, "%02d:%02d:%02d", h, m, s)
	if v > 0 {
		// 100ns ticks
		fmt.Fprintf(&b, ".%07d", v/100)
	}
	return b.String()
}

// ParseDuration parses the days.HH:MM:SS[.fffffff] form.
func ParseDuration(s string) (Duration, error) {
	orig := s
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	var days int64
	clock := s
	if dot := strings.IndexByte(s, '.'); dot >= 0 && dot < strings.IndexByte(s, ':') {
		n, err := strconv.ParseInt(s[:dot], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: days: %w", orig, err)
		}
		days = n
		clock = s[dot+1:]
	}

	var frac string
	if dot := strings.IndexByte(clock, '.'); dot >= 0 {
		frac = clock[dot+1:]
		clock = clock[:dot]
	}
	parts := strings.Split(clock, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid duration %q: want days.HH:MM:SS", orig)
	}
	var hms [3]int64
	for i, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid duration %q", orig)
		}
		hms[i] = n
	}
	if hms[1] > 59 || hms[2] > 59 {
		return 0, fmt.Errorf("invalid duration %q: minutes and seconds must be below 60", orig)
	}

	v := time.Duration(days)*24*time.Hour +
		time.Duration(hms[0])*time.Hour +
		time.Duration(hms[1])*time.Minute +
		time.Duration(hms[2])*time.Second
	if frac != "" {
		if len(frac) > 7 {
			return 0, fmt.Errorf("invalid duration %q: fraction has more than 7 digits", orig)
		}
		ticks, err := strconv.ParseInt(frac+strings.Repeat("0", 7-len(frac)), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: fraction: %w", orig, err)
		}
		v += time.Duration(ticks) * 100
	}
	if neg {
		v = -v
	}
	return Duration(v), nil
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("duration must be a string: %w", err)
	}
	v, err := ParseDuration(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}

// UnmarshalText accepts both the wire form and Go duration syntax.
func (d *Duration) UnmarshalText(b []byte) error {
	s := string(b)
	if strings.Contains(s, ":") {
		v, err := ParseDuration(s)
		if err != nil {
			return err
		}
		*d = v
		return nil
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// TimestampLayout is the wire layout of timestamps: UTC with microseconds.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Timestamp is the wire form of a time.Time.
type Timestamp time.Time

// MarshalJSON renders the time in UTC with microsecond precision.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(TimestampLayout))
}

// UnmarshalJSON accepts any RFC 3339 timestamp and normalises it to UTC,
// truncated to microseconds.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	v, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	*t = Timestamp(v.UTC().Truncate(time.Microsecond))
	return nil
}
