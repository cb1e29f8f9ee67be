package datamodel

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"

	"github.com/diwise/wikibase-datamodel/pkg/wikibase/errors"
)

// Precisions of a TimeValue, from billions of years down to seconds
const (
	PrecisionGigaYears    uint8 = 0
	PrecisionHundredMega  uint8 = 1
	PrecisionTenMega      uint8 = 2
	PrecisionMegaYears    uint8 = 3
	PrecisionHundredKilo  uint8 = 4
	PrecisionTenKilo      uint8 = 5
	PrecisionKiloYears    uint8 = 6
	PrecisionHundredYears uint8 = 7
	PrecisionDecade       uint8 = 8
	PrecisionYear         uint8 = 9
	PrecisionMonth        uint8 = 10
	PrecisionDay          uint8 = 11
	PrecisionHour         uint8 = 12
	PrecisionMinute       uint8 = 13
	PrecisionSecond       uint8 = 14
)

const (
	CalendarGregorian string = "http://www.wikidata.org/entity/Q1985727"
	CalendarJulian    string = "http://www.wikidata.org/entity/Q1985786"
)

var timeStringPattern = regexp.MustCompile(`^([+-])(\d+)-(\d{2})-(\d{2})T(\d{2}):(\d{2}):(\d{2})Z$`)

// TimeValue is a point in time with a precision, tolerances and a preferred calendar model.
// The date is always given in the proleptic Gregorian calendar.
type TimeValue struct {
	year   int64
	month  uint8
	day    uint8
	hour   uint8
	minute uint8
	second uint8

	precision       uint8
	beforeTolerance int
	afterTolerance  int
	timezoneOffset  int
	calendarModel   string

	negativeZero bool
}

type jsonTimeValue struct {
	Type  string        `json:"type"`
	Value jsonInnerTime `json:"value"`
}

type jsonInnerTime struct {
	Time          string `json:"time"`
	Timezone      int    `json:"timezone"`
	Before        int    `json:"before"`
	After         int    `json:"after"`
	Precision     int    `json:"precision"`
	CalendarModel string `json:"calendarmodel"`
}

type TimeDecoratorFunc func(t *TimeValue)

// Tolerance sets how many units of the precision the time may lie before and after the given point
func Tolerance(before, after int) TimeDecoratorFunc {
	return func(t *TimeValue) {
		t.beforeTolerance = before
		t.afterTolerance = after
	}
}

// TimezoneOffset sets the offset from UTC in minutes
func TimezoneOffset(minutes int) TimeDecoratorFunc {
	return func(t *TimeValue) {
		t.timezoneOffset = minutes
	}
}

// Clock sets the time of day
func Clock(hour, minute, second uint8) TimeDecoratorFunc {
	return func(t *TimeValue) {
		t.hour = hour
		t.minute = minute
		t.second = second
	}
}

// NegativeYearZero writes year 0 as "-0000" rather than "+0000". It has no effect on other years.
func NegativeYearZero() TimeDecoratorFunc {
	return func(t *TimeValue) {
		t.negativeZero = true
	}
}

func NewTimeValue(year int64, month, day uint8, precision uint8, calendarModel string, decorators ...TimeDecoratorFunc) (*TimeValue, error) {
	t := &TimeValue{
		year:          year,
		month:         month,
		day:           day,
		precision:     precision,
		calendarModel: calendarModel,
	}

	for _, decorator := range decorators {
		decorator(t)
	}

	if err := t.validate(); err != nil {
		return nil, err
	}

	t.negativeZero = t.negativeZero && t.year == 0

	return t, nil
}

func (t *TimeValue) validate() error {
	if t.calendarModel == "" {
		return errors.NewNullNotAllowedError("calendar model")
	}

	if t.precision > PrecisionSecond {
		return errors.NewInvalidArgumentError(fmt.Sprintf("time precision %d is out of range", t.precision))
	}

	if t.month > 12 || t.day > 31 || t.hour > 23 || t.minute > 59 || t.second > 60 {
		return errors.NewInvalidArgumentError(fmt.Sprintf("time %s has fields out of range", t.timeString()))
	}

	if t.beforeTolerance < 0 || t.afterTolerance < 0 {
		return errors.NewInvalidArgumentError("time tolerances must not be negative")
	}

	return nil
}

func (t *TimeValue) Year() int64               { return t.year }
func (t *TimeValue) Month() uint8              { return t.month }
func (t *TimeValue) Day() uint8                { return t.day }
func (t *TimeValue) Hour() uint8               { return t.hour }
func (t *TimeValue) Minute() uint8             { return t.minute }
func (t *TimeValue) Second() uint8             { return t.second }
func (t *TimeValue) Precision() uint8          { return t.precision }
func (t *TimeValue) BeforeTolerance() int      { return t.beforeTolerance }
func (t *TimeValue) AfterTolerance() int       { return t.afterTolerance }
func (t *TimeValue) TimezoneOffset() int       { return t.timezoneOffset }

// PreferredCalendarModel returns the IRI of the calendar the time should be displayed in
func (t *TimeValue) PreferredCalendarModel() string {
	return t.calendarModel
}

func (t *TimeValue) IsNegativeYearZero() bool { return t.negativeZero }

func (t *TimeValue) timeString() string {
	s := fmt.Sprintf("%+05d-%02d-%02dT%02d:%02d:%02dZ", t.year, t.month, t.day, t.hour, t.minute, t.second)
	if t.negativeZero {
		s = "-" + s[1:]
	}
	return s
}

func (t *TimeValue) accept(d valueDispatcher) { d.visitTime(t) }

func (t *TimeValue) writeContent(w *contentWriter) {
	w.begin("TimeValue")
	w.integer("year", t.year)
	w.unsigned("month", uint64(t.month))
	w.unsigned("day", uint64(t.day))
	w.unsigned("hour", uint64(t.hour))
	w.unsigned("minute", uint64(t.minute))
	w.unsigned("second", uint64(t.second))
	w.unsigned("precision", uint64(t.precision))
	w.integer("before", int64(t.beforeTolerance))
	w.integer("after", int64(t.afterTolerance))
	w.integer("timezone", int64(t.timezoneOffset))
	w.str("calendarModel", t.calendarModel)
	if t.negativeZero {
		w.unsigned("negativeZero", 1)
	}
	w.end()
}

func (t *TimeValue) Equals(other any) bool { return Equal(t, other) }
func (t *TimeValue) Hash() uint64          { return Hash(t) }
func (t *TimeValue) String() string        { return ToString(t) }

func (t *TimeValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(jsonTimeValue{
		Type: JSONValueTypeTime,
		Value: jsonInnerTime{
			Time:          t.timeString(),
			Timezone:      t.timezoneOffset,
			Before:        t.beforeTolerance,
			After:         t.afterTolerance,
			Precision:     int(t.precision),
			CalendarModel: t.calendarModel,
		},
	})
}

func timeValueFromInner(inner jsonInnerTime) (*TimeValue, error) {
	m := timeStringPattern.FindStringSubmatch(inner.Time)
	if m == nil {
		return nil, errors.NewFormatError("value.time", fmt.Errorf("\"%s\" is not a valid time string", inner.Time))
	}

	year, err := strconv.ParseInt(m[1]+m[2], 10, 64)
	if err != nil {
		return nil, errors.NewFormatError("value.time", err)
	}

	field := func(s string) uint8 {
		n, _ := strconv.ParseUint(s, 10, 8)
		return uint8(n)
	}

	if inner.Precision < 0 || inner.Precision > int(PrecisionSecond) {
		return nil, errors.NewFormatError("value.precision", fmt.Errorf("precision %d is out of range", inner.Precision))
	}

	decorators := []TimeDecoratorFunc{
		Clock(field(m[5]), field(m[6]), field(m[7])),
		Tolerance(inner.Before, inner.After),
		TimezoneOffset(inner.Timezone),
	}
	if m[1] == "-" {
		decorators = append(decorators, NegativeYearZero())
	}

	t, err := NewTimeValue(year, field(m[3]), field(m[4]), uint8(inner.Precision), inner.CalendarModel, decorators...)
	if err != nil {
		return nil, errors.NewFormatError("value", err)
	}

	return t, nil
}
