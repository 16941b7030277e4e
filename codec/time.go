package codec

import (
	"fmt"
	"time"

	"github.com/signadot/confmap/ir"
)

// Keys used by the time codecs.
const (
	KeyYear       = "year"
	KeyMonth      = "month"
	KeyDayOfMonth = "day-of-month"

	KeyHours   = "hours"
	KeyMinutes = "minutes"
	KeySeconds = "seconds"
	KeyNano    = "nano"
)

// Date encodes the calendar date of a time.Time, read in loc, as
// {year, month, day-of-month}. Decoding yields midnight in loc.
func Date(loc *time.Location) Codec {
	return Of(
		func(t time.Time) (*ir.Node, error) {
			res := ir.NewObject()
			putDate(res, t.In(loc))
			return res, nil
		},
		func(n *ir.Node) (time.Time, error) {
			y, m, d, err := getDate(n)
			if err != nil {
				return time.Time{}, err
			}
			return makeTime(loc, y, m, d, 0, 0, 0, 0)
		},
	)
}

// Clock encodes the time of day of a time.Time, read in loc, as
// {hours, minutes, seconds, nano}. Decoding yields that time on
// January 1st of year 0 in loc.
func Clock(loc *time.Location) Codec {
	return Of(
		func(t time.Time) (*ir.Node, error) {
			res := ir.NewObject()
			putClock(res, t.In(loc))
			return res, nil
		},
		func(n *ir.Node) (time.Time, error) {
			hh, mm, ss, ns, err := getClock(n)
			if err != nil {
				return time.Time{}, err
			}
			return makeTime(loc, 0, 1, 1, hh, mm, ss, ns)
		},
	)
}

// DateTime encodes a time.Time, read in loc, as one object holding the
// keys of both Date and Clock.
func DateTime(loc *time.Location) Codec {
	return Of(
		func(t time.Time) (*ir.Node, error) {
			res := ir.NewObject()
			t = t.In(loc)
			putDate(res, t)
			putClock(res, t)
			return res, nil
		},
		func(n *ir.Node) (time.Time, error) {
			y, m, d, err := getDate(n)
			if err != nil {
				return time.Time{}, err
			}
			hh, mm, ss, ns, err := getClock(n)
			if err != nil {
				return time.Time{}, err
			}
			return makeTime(loc, y, m, d, hh, mm, ss, ns)
		},
	)
}

func putDate(res *ir.Node, t time.Time) {
	res.Set(KeyYear, ir.FromInt(int64(t.Year())))
	res.Set(KeyMonth, ir.FromInt(int64(t.Month())))
	res.Set(KeyDayOfMonth, ir.FromInt(int64(t.Day())))
}

func putClock(res *ir.Node, t time.Time) {
	res.Set(KeyHours, ir.FromInt(int64(t.Hour())))
	res.Set(KeyMinutes, ir.FromInt(int64(t.Minute())))
	res.Set(KeySeconds, ir.FromInt(int64(t.Second())))
	res.Set(KeyNano, ir.FromInt(int64(t.Nanosecond())))
}

func getDate(n *ir.Node) (y, m, d int, err error) {
	if y, err = wholeField(n, KeyYear); err != nil {
		return
	}
	if m, err = wholeField(n, KeyMonth); err != nil {
		return
	}
	if d, err = wholeField(n, KeyDayOfMonth); err != nil {
		return
	}
	if d > 31 {
		err = fmt.Errorf("%w: %s cannot be greater than 31", ErrInvalid, KeyDayOfMonth)
		return
	}
	if m > 12 {
		err = fmt.Errorf("%w: %s cannot be greater than 12", ErrInvalid, KeyMonth)
	}
	return
}

func getClock(n *ir.Node) (hh, mm, ss, ns int, err error) {
	if hh, err = wholeField(n, KeyHours); err != nil {
		return
	}
	if mm, err = wholeField(n, KeyMinutes); err != nil {
		return
	}
	if ss, err = wholeField(n, KeySeconds); err != nil {
		return
	}
	ns, err = wholeField(n, KeyNano)
	return
}

// wholeField reads a non-negative whole number stored under key.
func wholeField(n *ir.Node, key string) (int, error) {
	if n == nil || n.Type != ir.ObjectType {
		return 0, fmt.Errorf("%w: expected an Object, got %s", ErrInvalid, describe(n))
	}
	v := ir.Get(n, key)
	if v == nil || v.Type == ir.NullType {
		return 0, fmt.Errorf("%w: %s is not specified", ErrInvalid, key)
	}
	if !v.IsInt() {
		return 0, fmt.Errorf("%w: %s can only be a whole number", ErrInvalid, key)
	}
	i := *v.Int64
	if i < 0 {
		return 0, fmt.Errorf("%w: %s must be zero or greater", ErrInvalid, key)
	}
	if i > 1<<31-1 {
		return 0, fmt.Errorf("%w: %s is out of range", ErrInvalid, key)
	}
	return int(i), nil
}

// makeTime builds the time and rejects components that time.Date would
// normalise (February 30th, hour 24, ...).
func makeTime(loc *time.Location, y, m, d, hh, mm, ss, ns int) (time.Time, error) {
	t := time.Date(y, time.Month(m), d, hh, mm, ss, ns, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, fmt.Errorf("%w: %04d-%02d-%02d is not a valid date", ErrInvalid, y, m, d)
	}
	if t.Hour() != hh || t.Minute() != mm || t.Second() != ss || t.Nanosecond() != ns {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d:%02d.%09d is not a valid time of day", ErrInvalid, hh, mm, ss, ns)
	}
	return t, nil
}
