package models

import (
	"encoding/base64"
	"fmt"
)

// BlobState describes whether an asset's binary payload is present.
type BlobState string

const (
	// BlobAttached means Data holds the payload.
	BlobAttached BlobState = "attached"
	// BlobStripped means the payload was intentionally removed (lean record).
	BlobStripped BlobState = "stripped"
	// BlobMissing means the asset is referenced but its payload was not found
	// in the asset store.
	BlobMissing BlobState = "missing"
)

// Asset is a single binary asset (uploaded product shot, generated image or
// video, reference image, brand logo). It is owned by exactly one project or
// brand profile; there is no sharing across owners.
//
// Data and State are never serialized with the asset: the payload lives in the
// asset store keyed by ID, and base64 text is derived on demand for outbound
// API calls only.
type Asset struct {
	ID       string    `json:"id"`
	MimeType string    `json:"mime_type"`
	Name     string    `json:"name"`
	Data     []byte    `json:"-"`
	State    BlobState `json:"-"`
}

// HasData reports whether the asset carries a binary payload.
func (a *Asset) HasData() bool {
	return a != nil && len(a.Data) > 0
}

// Base64 derives the base64 encoding of the payload. It returns an error when
// the payload is absent; callers that need base64 after a store round trip
// must re-derive it from the reattached binary.
func (a *Asset) Base64() (string, error) {
	if !a.HasData() {
		return "", fmt.Errorf("asset %s has no binary payload", a.ID)
	}
	return base64.StdEncoding.EncodeToString(a.Data), nil
}

// DataURL derives a data: URL suitable for inline rendering.
func (a *Asset) DataURL() (string, error) {
	b64, err := a.Base64()
	if err != nil {
		return "", err
	}
	return "data:" + a.MimeType + ";base64," + b64, nil
}

// Clone returns a deep copy of the asset, including the payload.
func (a *Asset) Clone() *Asset {
	if a == nil {
		return nil
	}
	clone := *a
	if a.Data != nil {
		clone.Data = make([]byte, len(a.Data))
		copy(clone.Data, a.Data)
	}
	return &clone
}
