package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// CSVToGroupedMap reads a three column CSV of group,key,value rows (header
// skipped) into one map per group. Rows with an empty value are ignored.
func CSVToGroupedMap(filePath string) (map[string]map[string]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open the file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read the file: %w", err)
	}

	data := make(map[string]map[string]string)
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		group := strings.TrimSpace(row[0])
		key := strings.TrimSpace(row[1])
		value := strings.TrimSpace(row[2])
		if value == "" {
			continue
		}
		if data[group] == nil {
			data[group] = make(map[string]string)
		}
		data[group][key] = value
	}

	return data, nil
}
