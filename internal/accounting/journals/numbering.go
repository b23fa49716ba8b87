package journals

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultEntryPrefix is used when no prefix is configured.
const DefaultEntryPrefix = "JV"

// FormatEntryNumber renders <PREFIX>/<FiscalYearName>/<sequence> with a
// sequence padded to four digits.
func FormatEntryNumber(prefix, fiscalYearName string, sequence int64) string {
	if prefix == "" {
		prefix = DefaultEntryPrefix
	}
	return fmt.Sprintf("%s/%s/%04d", prefix, fiscalYearName, sequence)
}

// ParseEntrySequence returns the trailing numeric suffix of an entry number.
func ParseEntrySequence(number string) (int64, error) {
	idx := strings.LastIndex(number, "/")
	if idx < 0 || idx == len(number)-1 {
		return 0, fmt.Errorf("accounting: malformed entry number %q", number)
	}
	seq, err := strconv.ParseInt(number[idx+1:], 10, 64)
	if err != nil || seq <= 0 {
		return 0, fmt.Errorf("accounting: malformed entry number %q", number)
	}
	return seq, nil
}
