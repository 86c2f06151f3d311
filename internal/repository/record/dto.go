package record

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	domrec "github.com/kailas-cloud/innoreg/internal/domain/record"
)

// Hash field names for one stored record.
const (
	fieldTitle     = "title"
	fieldContent   = "content"
	fieldAuthors   = "authors"
	fieldUnits     = "units"
	fieldLevel     = "level"
	fieldYear      = "year"
	fieldEmbedding = "embedding"
)

// toFields flattens a record into Redis hash fields. Authors and units
// are JSON arrays; the embedding is little-endian float32 bytes in
// base64 (hash values must be valid strings).
func toFields(rec domrec.Record) (map[string]string, error) {
	authors, err := json.Marshal(rec.Authors())
	if err != nil {
		return nil, fmt.Errorf("marshal authors: %w", err)
	}
	units, err := json.Marshal(rec.Units())
	if err != nil {
		return nil, fmt.Errorf("marshal units: %w", err)
	}

	fields := map[string]string{
		fieldTitle:   rec.Title(),
		fieldContent: rec.Content(),
		fieldAuthors: string(authors),
		fieldUnits:   string(units),
		fieldLevel:   rec.Level(),
		fieldYear:    strconv.Itoa(rec.Year()),
	}
	if rec.HasEmbedding() {
		fields[fieldEmbedding] = base64.StdEncoding.EncodeToString(vectorToBytes(rec.Embedding()))
	}
	return fields, nil
}

// fromFields hydrates a record from Redis hash fields.
func fromFields(id string, fields map[string]string) (domrec.Record, error) {
	var authors, units []string
	if raw := fields[fieldAuthors]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &authors); err != nil {
			return domrec.Record{}, fmt.Errorf("unmarshal authors for %s: %w", id, err)
		}
	}
	if raw := fields[fieldUnits]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &units); err != nil {
			return domrec.Record{}, fmt.Errorf("unmarshal units for %s: %w", id, err)
		}
	}

	var year int
	if raw := fields[fieldYear]; raw != "" {
		y, err := strconv.Atoi(raw)
		if err != nil {
			return domrec.Record{}, fmt.Errorf("parse year for %s: %w", id, err)
		}
		year = y
	}

	var embedding []float32
	if raw := fields[fieldEmbedding]; raw != "" {
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return domrec.Record{}, fmt.Errorf("decode embedding for %s: %w", id, err)
		}
		embedding, err = bytesToVector(data)
		if err != nil {
			return domrec.Record{}, fmt.Errorf("parse embedding for %s: %w", id, err)
		}
	}

	return domrec.Reconstruct(
		id, fields[fieldTitle], fields[fieldContent],
		authors, units, fields[fieldLevel], year, embedding,
	), nil
}

func vectorToBytes(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func bytesToVector(data []byte) ([]float32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding data: len=%d (not multiple of 4)", len(data))
	}
	vec := make([]float32, len(data)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return vec, nil
}
