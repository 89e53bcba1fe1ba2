package signature

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	gzip "github.com/klauspost/compress/gzip"

	"github.com/sketchdb/sketchdb/sketch"
)

// Serialized form: a JSON array of records, one per named collection, each
// carrying one or more sketches. Decoding flattens to one Signature per
// sketch; encoding writes one single-sketch record per Signature.
type sketchRecord struct {
	Ksize      uint32   `json:"ksize"`
	Moltype    string   `json:"molecule"`
	Scaled     uint64   `json:"scaled,omitempty"`
	Num        uint32   `json:"num,omitempty"`
	Mins       []uint64 `json:"mins"`
	Abundances []uint32 `json:"abundances,omitempty"`
}

type signatureRecord struct {
	Name       string         `json:"name"`
	Filename   string         `json:"filename"`
	Signatures []sketchRecord `json:"signatures"`
}

func Decode(r io.Reader) ([]*Signature, error) {
	var records []signatureRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, err
	}

	sigs := make([]*Signature, 0, len(records))
	for _, record := range records {
		for _, sk := range record.Signatures {
			moltype := sketch.Moltype(sk.Moltype)
			if moltype == "" {
				moltype = sketch.DNA
			}
			mh, err := sketch.FromHashes(sk.Ksize, moltype, sk.Scaled, sk.Num, sk.Mins, sk.Abundances)
			if err != nil {
				return nil, err
			}
			sigs = append(sigs, New(record.Name, record.Filename, mh))
		}
	}
	return sigs, nil
}

func Encode(sigs []*Signature, w io.Writer) error {
	records := make([]signatureRecord, 0, len(sigs))
	for _, sig := range sigs {
		mh := sig.Sketch()
		records = append(records, signatureRecord{
			Name:     sig.Name(),
			Filename: sig.Filename(),
			Signatures: []sketchRecord{{
				Ksize:      mh.Ksize(),
				Moltype:    string(mh.Moltype()),
				Scaled:     mh.Scaled(),
				Num:        mh.Num(),
				Mins:       mh.Hashes(),
				Abundances: mh.Abundances(),
			}},
		})
	}
	return json.NewEncoder(w).Encode(records)
}

// DecodeMaybeGzip decodes a signature stream, unwrapping gzip first when the
// name carries a .gz suffix.
func DecodeMaybeGzip(name string, r io.Reader) ([]*Signature, error) {
	if strings.HasSuffix(name, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return Decode(gz)
	}
	return Decode(r)
}

func LoadFile(path string) ([]*Signature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeMaybeGzip(path, f)
}

func SaveFile(sigs []*Signature, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if strings.HasSuffix(path, ".gz") {
		gz := gzip.NewWriter(f)
		if err := Encode(sigs, gz); err != nil {
			gz.Close()
			return err
		}
		return gz.Close()
	}
	return Encode(sigs, f)
}
