package tables

// TimeRangeUnitTable is WMO Code Table 4.4 (Indicator of unit of time
// range), restricted to the codes that name a fixed-length duration. Codes
// 3-7 (month, year, decade, normal, century) have no fixed number of
// seconds and are intentionally absent.
var TimeRangeUnitTable = NewDurationTable(map[int]int64{
	0:  60,        // minute
	1:  3600,      // hour
	2:  86400,     // day
	10: 3 * 3600,  // 3 hours
	11: 6 * 3600,  // 6 hours
	12: 12 * 3600, // 12 hours
	13: 1,         // second
})

// ForecastSeconds converts a product definition template's (time range
// unit, forecast time value) pair into a duration in seconds from the
// reference time. ok is false for calendar-based units with no fixed
// length, in which case callers should fall back to treating the field as
// unknown rather than guessing a duration.
func ForecastSeconds(unit uint8, value uint32) (seconds int64, ok bool) {
	perUnit, ok := TimeRangeUnitTable.Seconds(int(unit))
	if !ok {
		return 0, false
	}
	return perUnit * int64(value), true
}
