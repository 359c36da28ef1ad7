package schema

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // timezones resolve without a system zoneinfo

	"github.com/roach88/typica/internal/filter"
	"github.com/roach88/typica/internal/ir"
)

// DefaultTimezone applies when a payload names none.
const DefaultTimezone = "Asia/Jakarta"

// Location loads the payload's timezone.
func (p *Payload) Location() (*time.Location, error) {
	name := p.Timezone
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, &PayloadError{Issues: []Issue{{
			Path:    "timezone",
			Message: fmt.Sprintf("unknown timezone %q", name),
			Code:    ErrCodeTimezone,
		}}}
	}
	return loc, nil
}

// resolveTimeframe converts string bounds to epoch milliseconds when a
// formatDate is given. Integer bounds and unformatted strings pass through.
func resolveTimeframe(tf filter.Timeframe, loc *time.Location) (filter.Timeframe, error) {
	if tf.FormatDate == "" {
		return tf, nil
	}

	layout, err := GoLayout(tf.FormatDate)
	if err != nil {
		return tf, &PayloadError{Issues: []Issue{{Path: "timeframe.formatDate", Message: err.Error(), Code: ErrCodeDateFormat}}}
	}

	convert := func(name string, v ir.Value) (ir.Value, error) {
		s, ok := v.(ir.String)
		if !ok {
			return v, nil
		}
		t, err := time.ParseInLocation(layout, string(s), loc)
		if err != nil {
			return nil, &PayloadError{Issues: []Issue{{
				Path:    "timeframe." + name,
				Message: fmt.Sprintf("%q does not match %q", string(s), tf.FormatDate),
				Code:    ErrCodeDateFormat,
			}}}
		}
		return ir.Int(t.UnixMilli()), nil
	}

	if tf.From, err = convert("from", tf.From); err != nil {
		return tf, err
	}
	if tf.To, err = convert("to", tf.To); err != nil {
		return tf, err
	}
	return tf, nil
}

var strftimeLayouts = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'I': "03",
	'M': "04",
	'S': "05",
	'f': "000000",
	'p': "PM",
	'b': "Jan",
	'B': "January",
	'a': "Mon",
	'A': "Monday",
	'z': "-0700",
	'Z': "MST",
	'j': "002",
}

// GoLayout converts a strftime format (%Y-%m-%d) to a Go time layout.
// A format without '%' is taken to be a Go layout already.
func GoLayout(format string) (string, error) {
	if !strings.Contains(format, "%") {
		return format, nil
	}

	var b strings.Builder
	for i := 0; i < len(format); i++ {
		c := format[i]
		if c != '%' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% at end of %q", format)
		}
		i++
		if format[i] == '%' {
			b.WriteByte('%')
			continue
		}
		layout, ok := strftimeLayouts[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in %q", format[i], format)
		}
		b.WriteString(layout)
	}
	return b.String(), nil
}
