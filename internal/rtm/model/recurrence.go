package model

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Compact layouts accepted for UNTIL. The API emits the first; the others
// show up on rules created by older clients.
var untilLayouts = []string{"20060102T150405Z", "20060102T150405", "20060102"}

var (
	reRuleFreq         = regexp.MustCompile(`(?i)FREQ=([a-z]+)`)
	reRuleInterval     = regexp.MustCompile(`(?i)INTERVAL=(\d+)`)
	reRuleWeeklyByDay  = regexp.MustCompile(`(?i)BYDAY=([a-z]+(?:,[a-z]+)*)`)
	reRuleMonthlyByDay = regexp.MustCompile(`(?i)BYDAY=([-+]?\d+[a-z]+)`)
	reRuleByMonthDay   = regexp.MustCompile(`(?i)BYMONTHDAY=(\d+)`)
	reRuleUntil        = regexp.MustCompile(`(?i)UNTIL=(\w+)`)
	reRuleCount        = regexp.MustCompile(`(?i)COUNT=(\d+)`)
)

// ParseRule decodes an RFC 5545 flavoured repeat rule such as
// "FREQ=WEEKLY;INTERVAL=2;BYDAY=MO,WE,FR". Each part is matched on its own, so
// unknown parts are ignored and order does not matter.
//
// The weekly BYDAY pattern takes a day-code list and the monthly one takes a
// single ordinal token like "2MO". Both write ByDay; the monthly pattern runs
// second and wins if a rule somehow satisfies both.
func ParseRule(rule string) (*Recurrence, error) {
	r := &Recurrence{Rule: rule}

	if m := reRuleFreq.FindStringSubmatch(rule); m != nil {
		r.Freq = Freq(strings.ToUpper(m[1]))
	}
	if m := reRuleInterval.FindStringSubmatch(rule); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, malformed("rrule", "INTERVAL", err)
		}
		r.Interval = &n
	}
	if m := reRuleWeeklyByDay.FindStringSubmatch(rule); m != nil {
		r.ByDay = strings.Split(strings.ToUpper(m[1]), ",")
	}
	if m := reRuleMonthlyByDay.FindStringSubmatch(rule); m != nil {
		r.ByDay = []string{strings.ToUpper(m[1])}
	}
	if m := reRuleByMonthDay.FindStringSubmatch(rule); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, malformed("rrule", "BYMONTHDAY", err)
		}
		r.ByMonthDay = &n
	}
	if m := reRuleUntil.FindStringSubmatch(rule); m != nil {
		until, err := parseUntil(strings.ToUpper(m[1]))
		if err != nil {
			return nil, malformed("rrule", "UNTIL", err)
		}
		r.Until = &until
	}
	if m := reRuleCount.FindStringSubmatch(rule); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, malformed("rrule", "COUNT", err)
		}
		r.Count = &n
	}
	return r, nil
}

func parseUntil(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range untilLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// parseRecurrence reads the rrule element of a task series:
// {"every": "1", "$t": "FREQ=..."}. Absent or empty yields nil.
func parseRecurrence(v any) (*Recurrence, error) {
	if isEmpty(v) {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return ParseRule(s)
	}
	o, ok := asObject(v)
	if !ok {
		return nil, malformed("rrule", "rrule", ErrNotObject)
	}
	rule := o.text(textKey)
	if rule == "" && len(o) == 0 {
		return nil, nil
	}
	r, err := ParseRule(rule)
	if err != nil {
		return nil, err
	}
	r.Every = o.flag("every")
	return r, nil
}
