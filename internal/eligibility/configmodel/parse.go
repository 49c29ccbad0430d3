package configmodel

import (
	"encoding/json"
	"fmt"

	sigsyaml "sigs.k8s.io/yaml"
)

// wireDocument mirrors the top-level wire shape: a single "CampaignConfig"
// key wrapping the campaign body. Field names inside are PascalCase
// aliases, handled by CampaignConfig's own JSON tags; unknown top-level
// and nested fields are ignored for forward compatibility.
type wireDocument struct {
	CampaignConfig CampaignConfig `json:"CampaignConfig"`
}

// Parse decodes one campaign configuration document and validates it,
// returning *ConfigInvalid (wrapped) for any structural or semantic
// defect. Callers that load many documents (configstore's MySQL and OCI
// sources) call Parse once per document and skip any that fail — a
// single malformed document must not block the rest of the store's
// contents from loading.
func Parse(raw []byte) (CampaignConfig, error) {
	var doc wireDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return CampaignConfig{}, fmt.Errorf("decode campaign config document: %w", err)
	}
	if err := MustValidate(&doc.CampaignConfig); err != nil {
		return CampaignConfig{}, err
	}
	return doc.CampaignConfig, nil
}

// ParseYAML accepts a campaign configuration document authored as YAML
// (the format campaign authors check into a GitOps repo for the
// CampaignConfig custom resource's spec.document field) and parses it the
// same way Parse does, after converting it to JSON.
func ParseYAML(raw []byte) (CampaignConfig, error) {
	asJSON, err := sigsyaml.YAMLToJSON(raw)
	if err != nil {
		return CampaignConfig{}, fmt.Errorf("convert campaign config YAML to JSON: %w", err)
	}
	return Parse(asJSON)
}
