package app

import (
	"encoding/json"

	bosherr "github.com/cloudfoundry/bosh-utils/errors"
	boshsys "github.com/cloudfoundry/bosh-utils/system"

	"github.com/diskmason/diskmason/layout"
)

// LayoutDocument is the persisted pairing of a disk layout and its
// encryption configuration: the file an operator edits by hand and
// --apply consumes. Encryption targets reference partitions and
// volumes by their opaque ids.
type LayoutDocument struct {
	DiskConfig layout.ConfigDocument      `json:"disk_config"`
	Encryption *layout.EncryptionDocument `json:"disk_encryption,omitempty"`
}

func SaveLayoutToPath(fs boshsys.FileSystem, path string, doc LayoutDocument) error {
	jsonDoc, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return bosherr.WrapError(err, "Marshalling layout document")
	}

	err = fs.WriteFile(path, jsonDoc)
	if err != nil {
		return bosherr.WrapError(err, "Writing file")
	}

	return nil
}

func LoadLayoutFromPath(fs boshsys.FileSystem, path string) (LayoutDocument, error) {
	var doc LayoutDocument

	bytes, err := fs.ReadFile(path)
	if err != nil {
		return doc, bosherr.WrapError(err, "Reading file")
	}

	err = json.Unmarshal(bytes, &doc)
	if err != nil {
		return doc, bosherr.WrapError(err, "Loading file")
	}

	return doc, nil
}
