package api

import (
	"encoding/json"

	"gorm.io/datatypes"

	"teztech/internal/database"
)

func encodeStrings(values []string) (datatypes.JSON, error) {
	if values == nil {
		values = []string{}
	}
	raw, err := json.Marshal(values)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func encodeEntries(entries []database.ProfileEntry) (datatypes.JSON, error) {
	if entries == nil {
		entries = []database.ProfileEntry{}
	}
	raw, err := json.Marshal(entries)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

func decodeStrings(raw datatypes.JSON) []string {
	if len(raw) == 0 {
		return nil
	}
	var values []string
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil
	}
	return values
}

func decodeEntries(raw datatypes.JSON) []database.ProfileEntry {
	if len(raw) == 0 {
		return nil
	}
	var entries []database.ProfileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil
	}
	return entries
}
