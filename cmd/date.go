package cmd

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/ademuri/listening-stats/internal/analysis"
)

type ParsedDate struct {
	Date  time.Time
	Year  bool
	Month bool
	Day   bool

	// Relative dates ("30d", "12w", "6m", "10y") count back from clock().
	Relative bool
}

var relativeDate = regexp.MustCompile(`^(\d+)([dwmy])$`)

// periodFromArgs turns zero, one or two date arguments into a period. With no
// arguments fallback is used as the single argument.
func periodFromArgs(args []string, fallback string) (analysis.Period, error) {
	if len(args) == 0 {
		args = []string{fallback}
	}
	start, end, err := parseDateRangeFromArgs(args)
	if err != nil {
		return analysis.Period{}, err
	}
	if !start.Before(end) {
		return analysis.Period{}, fmt.Errorf("start %s is not before end %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if len(args) == 1 {
		return analysis.Period{Start: start, End: end, Label: args[0]}, nil
	}
	return analysis.RangePeriod(start, end), nil
}

func parseDateRangeFromArgs(args []string) (start time.Time, end time.Time, err error) {
	switch len(args) {
	case 1:
		start, end, err = getImplicitDateRange(args[0])

	case 2:
		start, end, err = getExplicitDateRange(args[0], args[1])

	default:
		err = fmt.Errorf("Expected one or two date arguments")
	}
	return
}

func getImplicitDateRange(ds string) (start time.Time, end time.Time, err error) {
	date, err := parseSingleDatestring(ds)
	if err != nil {
		return
	}

	start = date.Date
	switch {
	case date.Year:
		end = start.AddDate(1, 0, 0)

	case date.Month:
		end = start.AddDate(0, 1, 0)

	case date.Day:
		end = start.AddDate(0, 0, 1)

	case date.Relative:
		end = clock().Truncate(time.Second)

	default:
		err = fmt.Errorf("Invalid format: %q", ds)
	}

	return
}

func getExplicitDateRange(startString, endString string) (start time.Time, end time.Time, err error) {
	startParsed, err := parseSingleDatestring(startString)
	if err != nil {
		return
	}
	start = startParsed.Date

	endParsed, err := parseSingleDatestring(endString)
	if err != nil {
		return
	}
	end = endParsed.Date

	return
}

func parseSingleDatestring(ds string) (date ParsedDate, err error) {
	if m := relativeDate.FindStringSubmatch(ds); m != nil {
		n, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			err = fmt.Errorf("Parsing relative datestring: %w", convErr)
			return
		}
		// Listen dates are whole seconds.
		now := clock().Truncate(time.Second)
		switch m[2] {
		case "d":
			date.Date = now.AddDate(0, 0, -n)
		case "w":
			date.Date = now.AddDate(0, 0, -7*n)
		case "m":
			date.Date = now.AddDate(0, -n, 0)
		case "y":
			date.Date = now.AddDate(-n, 0, 0)
		}
		date.Relative = true
		return
	}

	matched, err := regexp.Match(`^\d{4}$`, []byte(ds))
	if err != nil {
		err = fmt.Errorf("Parsing datestring as year: %w", err)
		return
	}
	if matched {
		date.Date, err = time.ParseInLocation("2006", ds, time.Local)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as year: %w", err)
			return
		}
		date.Year = true
		return
	}

	matched, err = regexp.Match(`^\d{4}-\d{2}$`, []byte(ds))
	if err != nil {
		err = fmt.Errorf("Parsing datestring as month: %w", err)
		return
	}
	if matched {
		date.Date, err = time.ParseInLocation("2006-01", ds, time.Local)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as month: %w", err)
			return
		}
		date.Month = true
		return
	}

	matched, err = regexp.Match(`^\d{4}-\d{2}-\d{2}$`, []byte(ds))
	if err != nil {
		err = fmt.Errorf("Parsing datestring as day: %w", err)
		return
	}
	if matched {
		date.Date, err = time.ParseInLocation("2006-01-02", ds, time.Local)
		if err != nil {
			err = fmt.Errorf("Parsing datestring as day: %w", err)
			return
		}
		date.Day = true
		return
	}

	err = fmt.Errorf("Invalid format: %q", ds)
	return
}

func thisYear() string {
	return strconv.Itoa(clock().Year())
}
