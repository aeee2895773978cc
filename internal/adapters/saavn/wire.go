package saavn

import (
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// searchResponse is the envelope of GET /search/songs.
type searchResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Total   int        `json:"total"`
		Results []songWire `json:"results"`
	} `json:"data"`
}

// detailResponse is the envelope of GET /songs/{id}. data is an array on
// current API versions and an object on older ones.
type detailResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
}

func (r detailResponse) songs() ([]songWire, error) {
	raw := []byte(strings.TrimSpace(string(r.Data)))
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	if raw[0] == '[' {
		var out []songWire
		err := json.Unmarshal(raw, &out)
		return out, err
	}
	var one songWire
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []songWire{one}, nil
}

type songWire struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Year     flexValue `json:"year"`
	Duration flexValue `json:"duration"`
	Language string    `json:"language"`
	Album    struct {
		Name string `json:"name"`
	} `json:"album"`
	Artists struct {
		Primary []artistWire `json:"primary"`
	} `json:"artists"`
	Image       []linkWire `json:"image"`
	DownloadURL []linkWire `json:"downloadUrl"`
}

type artistWire struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// linkWire is an image or download variant.
type linkWire struct {
	Quality string `json:"quality"`
	URL     string `json:"url"`
}

// flexValue accepts a JSON string, number or null.
type flexValue string

func (v *flexValue) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*v = flexValue(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*v = flexValue(n.String())
		return nil
	}
	*v = ""
	return nil
}

func (v flexValue) Int() int {
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(string(v)); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(string(v), 64); err == nil {
		return int(f)
	}
	return 0
}
