package entities

import "strconv"

// Selection is the user-chosen filter state: a machine model and an hour
// ceiling. An empty Machine means no machine is selected.
type Selection struct {
	Machine        MachineModel
	HourCeiling    Hour
	HasHourCeiling bool
}

// InitialSelection selects the first machine and the first hour of the catalog.
// Empty lists leave the corresponding value unselected.
func InitialSelection(catalog *Catalog) Selection {
	var sel Selection
	if machine, ok := catalog.FirstMachine(); ok {
		sel.Machine = machine
	}
	if hour, ok := catalog.FirstHour(); ok {
		sel = sel.WithHourCeiling(hour)
	}
	return sel
}

// WithMachine returns a copy of the selection with the machine replaced
func (s Selection) WithMachine(machine MachineModel) Selection {
	s.Machine = machine
	return s
}

// WithHourCeiling returns a copy of the selection with the hour ceiling replaced
func (s Selection) WithHourCeiling(hour Hour) Selection {
	s.HourCeiling = hour
	s.HasHourCeiling = true
	return s
}

// WithoutHourCeiling returns a copy of the selection with no hour ceiling
func (s Selection) WithoutHourCeiling() Selection {
	s.HourCeiling = 0
	s.HasHourCeiling = false
	return s
}

// IsComplete reports whether both a machine and an hour ceiling are selected
func (s Selection) IsComplete() bool {
	return s.Machine != "" && s.HasHourCeiling
}

// Admits reports whether the item passes both filters
func (s Selection) Admits(item *Item) bool {
	return s.IsComplete() && item.Model == s.Machine && item.Hour <= s.HourCeiling
}

// Key returns a stable string form of the selection, used for memoization
func (s Selection) Key() string {
	hour := "-"
	if s.HasHourCeiling {
		hour = strconv.Itoa(int(s.HourCeiling))
	}
	return strconv.Quote(string(s.Machine)) + "@" + hour
}
