package archive

import (
	"encoding/json"

	"github.com/TouchController/E1epack/pkg/errors"
)

// MetadataFile is the archive entry holding Metadata
const MetadataFile = "e1epack.json"

// Metadata describes a built pack
type Metadata struct {
	ID      string `json:"id"`
	Version string `json:"version"`
	// Closure is absent in archives built without closure tracking
	Closure []string `json:"closure,omitempty"`
	BuildID string   `json:"build_id,omitempty"`
	Files   []string `json:"files"`
}

// Encode renders m as indented JSON
func (m *Metadata) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot encode archive metadata")
	}
	return append(data, '\n'), nil
}

// DecodeMetadata parses an e1epack.json document
func DecodeMetadata(data []byte) (*Metadata, error) {
	var m Metadata
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.Wrap(err, errors.ErrArchiveRead, "malformed "+MetadataFile)
	}
	return &m, nil
}
