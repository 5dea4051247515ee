package models

import "fmt"

// Window is a trailing time period used to pick which windowed metrics are displayed.
type Window string

const (
	WindowOneDay    Window = "one_day"
	WindowSevenDay  Window = "seven_day"
	WindowThirtyDay Window = "thirty_day"
)

// Windows lists the supported windows in display order.
var Windows = []Window{WindowOneDay, WindowSevenDay, WindowThirtyDay}

// Label returns the short label shown in window pickers.
func (w Window) Label() string {
	switch w {
	case WindowOneDay:
		return "24h"
	case WindowSevenDay:
		return "7d"
	default:
		return "30d"
	}
}

// ParseWindow accepts a window tag or its short label ("24h", "7d", "30d").
func ParseWindow(s string) (Window, error) {
	switch s {
	case string(WindowOneDay), "24h", "1d":
		return WindowOneDay, nil
	case string(WindowSevenDay), "7d":
		return WindowSevenDay, nil
	case string(WindowThirtyDay), "30d":
		return WindowThirtyDay, nil
	}
	return "", fmt.Errorf("unknown time window %q (want one_day, seven_day or thirty_day)", s)
}

// Next cycles one_day -> seven_day -> thirty_day -> one_day.
func (w Window) Next() Window {
	switch w {
	case WindowOneDay:
		return WindowSevenDay
	case WindowSevenDay:
		return WindowThirtyDay
	default:
		return WindowOneDay
	}
}
