package main

import "github.com/campusevents/calendar/cmd/calendarctl/cmd"

func main() {
	cmd.Execute()
}
