package rwa

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AssetID is the composite key CURRENCY.issuer.
type AssetID struct {
	Currency string `json:"currency"`
	Issuer   string `json:"issuer"`
}

// GenerateAssetID joins currency and issuer.
func GenerateAssetID(currency, issuer string) string {
	return currency + "." + issuer
}

// ParseAssetID splits an id into its two parts. ok is false unless there are
// exactly two non-empty dot-separated parts.
func ParseAssetID(id string) (AssetID, bool) {
	parts := strings.Split(id, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return AssetID{}, false
	}
	return AssetID{Currency: parts[0], Issuer: parts[1]}, true
}

func (id AssetID) String() string {
	return GenerateAssetID(id.Currency, id.Issuer)
}

// MarshalJSON renders the id in its string form.
func (id AssetID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.String())
}

// UnmarshalJSON accepts the string form produced by MarshalJSON.
func (id *AssetID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, ok := ParseAssetID(s)
	if !ok {
		return fmt.Errorf("malformed asset id %q", s)
	}
	*id = parsed
	return nil
}
