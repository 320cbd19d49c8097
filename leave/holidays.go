package leave

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// =============================================================================
// HOLIDAY LIST - Static company calendar
// =============================================================================

// DefaultHolidays returns the built-in 2025 company holiday calendar.
// Deployments override it with LoadHolidayFile.
func DefaultHolidays() []Date {
	return []Date{
		NewDate(2025, time.January, 1),   // New Year's Day
		NewDate(2025, time.January, 14),  // Makar Sankranti / Pongal
		NewDate(2025, time.January, 26),  // Republic Day
		NewDate(2025, time.March, 14),    // Holi
		NewDate(2025, time.March, 31),    // Id-ul-Fitr
		NewDate(2025, time.April, 18),    // Good Friday
		NewDate(2025, time.May, 12),      // Buddha Purnima
		NewDate(2025, time.June, 7),      // Bakrid / Eid al-Adha
		NewDate(2025, time.July, 6),      // Muharram
		NewDate(2025, time.August, 15),   // Independence Day
		NewDate(2025, time.August, 16),   // Janmashtami
		NewDate(2025, time.October, 2),   // Gandhi Jayanti / Vijaya Dashami
		NewDate(2025, time.October, 20),  // Diwali
		NewDate(2025, time.November, 5),  // Guru Nanak Jayanti
		NewDate(2025, time.December, 25), // Christmas
	}
}

// LoadHolidayFile reads a JSON array of ISO dates ("2025-01-01", ...)
// and returns them as the holiday set. Loaded once at startup.
func LoadHolidayFile(path string) ([]Date, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read holiday file: %w", err)
	}
	var dates []Date
	if err := json.Unmarshal(data, &dates); err != nil {
		return nil, fmt.Errorf("failed to parse holiday file %s: %w", path, err)
	}
	return dates, nil
}
