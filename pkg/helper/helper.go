package helper

import (
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// codes that do not follow the first-three-letters-of-the-surname rule
var driverCodes = map[string]string{
	"Nyck de Vries":   "DEV",
	"Zhou Guanyu":     "ZHO",
	"Mick Schumacher": "MSC",
}

// SecondsToMinutes formats a lap time as m:ss.mmm
func SecondsToMinutes(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	ms := int64(math.Round(seconds * 1000))
	minutes := ms / 60000
	ms -= minutes * 60000
	return fmt.Sprintf("%d:%02d.%03d", minutes, ms/1000, ms%1000)
}

// SecondsToRaceTime formats a race time as h:mm:ss.mmm
func SecondsToRaceTime(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	ms := int64(math.Round(seconds * 1000))
	hours := ms / 3600000
	ms -= hours * 3600000
	minutes := ms / 60000
	ms -= minutes * 60000
	return fmt.Sprintf("%d:%02d:%02d.%03d", hours, minutes, ms/1000, ms%1000)
}

func SecondsToDiff(seconds float64) string {
	if seconds <= 0 {
		return "-"
	}
	return fmt.Sprintf("+%.3fs", seconds)
}

func LapsDown(laps int) string {
	if laps == 1 {
		return "+1 Lap"
	}
	return fmt.Sprintf("+%d Laps", laps)
}

// DriverCode returns the three-letter abbreviation used on timing screens.
func DriverCode(name string) string {
	if code, ok := driverCodes[name]; ok {
		return code
	}
	words := strings.Fields(name)
	if len(words) == 0 {
		return ""
	}
	surname := []rune{}
	for _, r := range words[len(words)-1] {
		if unicode.IsLetter(r) {
			surname = append(surname, r)
		}
	}
	if len(surname) > 3 {
		surname = surname[:3]
	}
	return strings.ToUpper(string(surname))
}

// CleanTeamName strips sponsor-ish suffixes so names from different sources
// can be compared.
func CleanTeamName(name string) string {
	name = strings.TrimSpace(name)
	for _, suffix := range []string{" F1 Team", " Racing", " Team"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.TrimSpace(name)
}

// ToID hashes a name into a stable number.
func ToID(name string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(name))
	return h.Sum64()
}
