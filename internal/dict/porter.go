package dict

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Words-file format version written by Export and accepted by Import.
const porterVersion = 1

// ErrInvalidFormat is returned for data that is not a words file.
var ErrInvalidFormat = errors.New("dict: invalid words file")

// ErrUnsupportedVersion is returned for words files from a newer format.
var ErrUnsupportedVersion = errors.New("dict: unsupported words file version")

// Import merges a words file into the store and returns how many entries
// were applied. An entry already present with an equal or higher frequency
// is left alone; malformed array elements are skipped.
func Import(s Store, data []byte) (int, error) {
	if !gjson.ValidBytes(data) {
		return 0, ErrInvalidFormat
	}
	if v := gjson.GetBytes(data, "version"); v.Exists() && v.Int() > porterVersion {
		return 0, ErrUnsupportedVersion
	}
	words := gjson.GetBytes(data, "words")
	if !words.IsArray() {
		return 0, ErrInvalidFormat
	}

	existing, err := s.All("")
	if err != nil {
		return 0, fmt.Errorf("snapshot store: %w", err)
	}
	have := make(map[memKey]int, len(existing))
	for _, e := range existing {
		have[memKey{e.Word, e.Locale}] = e.Frequency
	}

	applied := 0
	var insertErr error
	words.ForEach(func(_, item gjson.Result) bool {
		word := item.Get("word").String()
		if word == "" {
			return true
		}
		e := Entry{
			Word:      word,
			Locale:    NormLocale(item.Get("locale").String()),
			Frequency: FrequencyDefault,
			UpdatedAt: item.Get("updated_at").Int(),
		}
		if f := item.Get("frequency"); f.Exists() {
			e.Frequency = ClampFrequency(int(f.Int()))
		}
		if e.UpdatedAt == 0 {
			e.UpdatedAt = time.Now().Unix()
		}
		if prev, ok := have[memKey{e.Word, e.Locale}]; ok && prev >= e.Frequency {
			return true
		}
		if err := s.Insert(e); err != nil {
			insertErr = err
			return false
		}
		applied++
		return true
	})
	if insertErr != nil {
		return applied, fmt.Errorf("import entry: %w", insertErr)
	}
	return applied, nil
}

// Export serializes the store's entries for the given locale (empty for
// all) as a words file.
func Export(s Store, locale string) ([]byte, error) {
	entries, err := s.All(locale)
	if err != nil {
		return nil, fmt.Errorf("snapshot store: %w", err)
	}

	out := []byte(`{}`)
	if out, err = sjson.SetBytes(out, "version", porterVersion); err != nil {
		return nil, fmt.Errorf("write version: %w", err)
	}
	if out, err = sjson.SetRawBytes(out, "words", []byte(`[]`)); err != nil {
		return nil, fmt.Errorf("write words: %w", err)
	}
	for _, e := range entries {
		item := map[string]any{
			"word":       e.Word,
			"frequency":  e.Frequency,
			"updated_at": e.UpdatedAt,
		}
		if e.Locale != "" {
			item["locale"] = e.Locale
		}
		if out, err = sjson.SetBytes(out, "words.-1", item); err != nil {
			return nil, fmt.Errorf("append word: %w", err)
		}
	}
	return out, nil
}
