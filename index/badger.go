package index

import (
	"bytes"
	"errors"

	badger "github.com/dgraph-io/badger/v2"
	log "github.com/sirupsen/logrus"

	"github.com/sketchdb/sketchdb/signature"
)

var badgerSigPrefix []byte = []byte("sig/")

var invalidStoredValueErr error = errors.New("Stored value is not a single signature")

// BadgerIndex keeps signatures in a Badger store, keyed by fingerprint, so
// inserting the same sketch twice stores it once. Select returns a lazy view
// over the same store; every enumeration re-reads the store.
type BadgerIndex struct {
	path      string
	db        *badger.DB
	selection Selection
}

func OpenBadgerIndex(path string) (*BadgerIndex, error) {
	db, err := badger.Open(badger.LSMOnlyOptions(path).WithLogger(log.New()))
	if err != nil {
		return nil, err
	}
	return &BadgerIndex{
		path: path,
		db:   db,
	}, nil
}

func (this *BadgerIndex) Location() string {
	return this.path
}

func (this *BadgerIndex) Len() int {
	sigs, err := this.load()
	if err != nil {
		return 0
	}
	return len(sigs)
}

func (this *BadgerIndex) Signatures() SignatureIterator {
	sigs, err := this.load()
	if err != nil {
		return newSliceIterator(nil)
	}
	return newSliceIterator(sigs)
}

func (this *BadgerIndex) Insert(sig *signature.Signature) error {
	value, err := encodeSignatureValue(sig)
	if err != nil {
		return err
	}
	return this.db.Update(func(txn *badger.Txn) error {
		return txn.Set(badgerSigKey(sig.Fingerprint()), value)
	})
}

// InsertMany writes a batch of signatures in one write batch.
func (this *BadgerIndex) InsertMany(sigs []*signature.Signature) error {
	batch := this.db.NewWriteBatch()
	defer batch.Cancel()

	for _, sig := range sigs {
		value, err := encodeSignatureValue(sig)
		if err != nil {
			return err
		}
		if err := batch.Set(badgerSigKey(sig.Fingerprint()), value); err != nil {
			return err
		}
	}
	return batch.Flush()
}

// Save exports the stored signatures to a signature file.
func (this *BadgerIndex) Save(path string) error {
	sigs, err := this.load()
	if err != nil {
		return err
	}
	return signature.SaveFile(sigs, path)
}

func (this *BadgerIndex) Select(sel Selection) (Index, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	merged, err := this.selection.Merge(sel)
	if err != nil {
		return nil, err
	}
	return &BadgerIndex{
		path:      this.path,
		db:        this.db,
		selection: merged,
	}, nil
}

func (this *BadgerIndex) Close() error {
	return this.db.Close()
}

// load scans the signature keyspace in key order, which is fingerprint order.
// Values that no longer decode are skipped.
func (this *BadgerIndex) load() ([]*signature.Signature, error) {
	sigs := make([]*signature.Signature, 0)
	err := this.db.View(func(txn *badger.Txn) error {
		iterator := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iterator.Close()

		for iterator.Seek(badgerSigPrefix); iterator.ValidForPrefix(badgerSigPrefix); iterator.Next() {
			err := iterator.Item().Value(func(value []byte) error {
				sig, err := decodeSignatureValue(value)
				if err != nil {
					return nil
				}
				if this.selection.Empty() || this.selection.Matches(sig) {
					sigs = append(sigs, sig)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sigs, nil
}

func badgerSigKey(fingerprint string) []byte {
	key := make([]byte, 0, len(badgerSigPrefix)+len(fingerprint))
	key = append(key, badgerSigPrefix...)
	key = append(key, fingerprint...)
	return key
}

func encodeSignatureValue(sig *signature.Signature) ([]byte, error) {
	var buf bytes.Buffer
	if err := signature.Encode([]*signature.Signature{sig}, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeSignatureValue(value []byte) (*signature.Signature, error) {
	sigs, err := signature.Decode(bytes.NewReader(value))
	if err != nil {
		return nil, err
	}
	if len(sigs) != 1 {
		return nil, invalidStoredValueErr
	}
	return sigs[0], nil
}
