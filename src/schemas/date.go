package schemas

import (
	"fmt"
	"time"

	"assetmanager/src/utils"
)

// Date represents a date in YYYY-MM-DD format
type Date struct {
	time.Time
}

func NewDate(t time.Time) Date {
	return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func (d Date) ToTime() time.Time {
	return d.Time
}

func (d *Date) UnmarshalJSON(data []byte) error {
	str := string(data)
	if len(str) >= 2 && str[0] == '"' && str[len(str)-1] == '"' {
		str = str[1 : len(str)-1]
	}

	parsed, err := time.Parse(utils.ShortDashDateLayout, str)
	if err != nil {
		return fmt.Errorf("invalid date format, expected YYYY-MM-DD: %v", err)
	}

	d.Time = parsed
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf(`"%s"`, d.Format(utils.ShortDashDateLayout))), nil
}
