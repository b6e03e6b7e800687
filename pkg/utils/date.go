package utils

import "time"

// ParseDate lê datas YYYY-MM-DD em UTC. Vazio devolve a data zero, que significa "não informado".
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil
	}

	return time.Parse(time.DateOnly, dateStr)
}
