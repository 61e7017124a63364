package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/maastricht-university/speakerai/meeting"
)

const speakerColumns = "id, name, description, feature_vector, stats, psychometrics, created_at, updated_at"

func scanSpeaker(scanner interface{ Scan(dest ...any) error }) (*meeting.SpeakerRecord, error) {
	var (
		id          int64
		name        string
		description sql.NullString
		features    string
		stats       string
		psych       string
		createdRaw  string
		updatedRaw  string
	)
	if err := scanner.Scan(&id, &name, &description, &features, &stats, &psych, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}

	rec := &meeting.SpeakerRecord{
		ID:          id,
		Name:        name,
		Description: description.String,
		CreatedAt:   parseTime(createdRaw),
		UpdatedAt:   parseTime(updatedRaw),
	}
	for _, f := range []struct {
		raw string
		dst *map[string]float64
	}{
		{features, &rec.FeatureVector},
		{stats, &rec.Stats},
		{psych, &rec.Psychometrics},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return nil, fmt.Errorf("decode speaker %d: %w", id, err)
		}
	}
	return rec, nil
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
