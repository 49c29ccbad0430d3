/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0
*/

package v1alpha1

import (
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
)

// CampaignConfigSpec carries one campaign configuration document, in the
// same PascalCase-aliased JSON shape as the "CampaignConfig" wire document
// (ID, Version, Iterations, ...). It is held as an opaque embedded
// document rather than a fully-typed Go struct so that config authors can
// iterate on campaign fields without a CRD schema migration for every new
// rule attribute; internal/controller is the only place that actually
// parses it, via configmodel.Parse.
type CampaignConfigSpec struct {
	// document is the campaign configuration body, structurally the same
	// as the "CampaignConfig" key of the wire JSON document.
	// +kubebuilder:pruning:PreserveUnknownFields
	// +required
	Document runtime.RawExtension `json:"document"`
}

// CampaignConfigStatus reports the result of reconciling a
// CampaignConfigSpec's document into internal/eligibility/configstore.
type CampaignConfigStatus struct {
	// ready indicates the document parsed and validated successfully and
	// is live in the configuration store.
	// +optional
	Ready bool `json:"ready,omitempty"`

	// observedGeneration is the generation last processed by the controller.
	// +optional
	ObservedGeneration int64 `json:"observedGeneration,omitempty"`

	// campaignID is the ID field read from the parsed document.
	// +optional
	CampaignID string `json:"campaignId,omitempty"`

	// version is the Version field read from the parsed document.
	// +optional
	Version int `json:"version,omitempty"`

	// validationErrors holds the ConfigInvalid errors found while parsing
	// the document, if any.
	// +optional
	ValidationErrors []string `json:"validationErrors,omitempty"`

	// conditions represent current reconciliation state.
	// +listType=map
	// +listMapKey=type
	// +optional
	Conditions []metav1.Condition `json:"conditions,omitempty"`
}

// +kubebuilder:object:root=true
// +kubebuilder:subresource:status
// +kubebuilder:resource:scope=Cluster,shortName=ccfg
// +kubebuilder:printcolumn:name="CampaignID",type="string",JSONPath=".status.campaignId"
// +kubebuilder:printcolumn:name="Ready",type="boolean",JSONPath=".status.ready"
// +kubebuilder:printcolumn:name="Age",type="date",JSONPath=".metadata.creationTimestamp"

// CampaignConfig is the schema for GitOps-managed eligibility campaign
// configuration documents.
type CampaignConfig struct {
	metav1.TypeMeta   `json:",inline"`
	metav1.ObjectMeta `json:"metadata,omitempty"`

	// +required
	Spec CampaignConfigSpec `json:"spec"`

	// +optional
	Status CampaignConfigStatus `json:"status,omitempty"`
}

// +kubebuilder:object:root=true

// CampaignConfigList contains a list of CampaignConfig.
type CampaignConfigList struct {
	metav1.TypeMeta `json:",inline"`
	metav1.ListMeta `json:"metadata,omitempty"`
	Items           []CampaignConfig `json:"items"`
}

func init() {
	SchemeBuilder.Register(&CampaignConfig{}, &CampaignConfigList{})
}
