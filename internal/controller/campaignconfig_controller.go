/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package controller reconciles CampaignConfig custom resources: it
// parses and validates each resource's embedded document through
// configmodel.Parse and, on success, pushes the result into
// internal/eligibility/configstore, the GitOps-style configuration
// loading path.
package controller

import (
	"context"
	"encoding/json"

	"k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	ctrl "sigs.k8s.io/controller-runtime"
	"sigs.k8s.io/controller-runtime/pkg/client"
	logf "sigs.k8s.io/controller-runtime/pkg/log"

	eligibilityv1alpha1 "github.com/nhsdigital/eligibility-signposting-api/api/v1alpha1"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configstore"
	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/metrics"
)

// CampaignConfigReconciler reconciles a CampaignConfig object.
type CampaignConfigReconciler struct {
	client.Client
	Scheme *runtime.Scheme
	Store  *configstore.Store
}

// +kubebuilder:rbac:groups=eligibility.nhs.uk,resources=campaignconfigs,verbs=get;list;watch;create;update;patch;delete
// +kubebuilder:rbac:groups=eligibility.nhs.uk,resources=campaignconfigs/status,verbs=get;update;patch
// +kubebuilder:rbac:groups=eligibility.nhs.uk,resources=campaignconfigs/finalizers,verbs=update

// Reconcile parses a CampaignConfig's embedded document, validates it,
// and projects the outcome into .status — pushing the parsed campaign
// into the configuration store on success. When the resource is deleted
// it removes the stored campaign whose ID equals the resource name; a
// campaign loaded from it under a different ID is not removed.
func (r *CampaignConfigReconciler) Reconcile(ctx context.Context, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)

	resource := &eligibilityv1alpha1.CampaignConfig{}
	if err := r.Get(ctx, req.NamespacedName, resource); err != nil {
		if errors.IsNotFound(err) {
			log.Info("CampaignConfig deleted", "name", req.Name)
			if r.Store != nil {
				r.Store.Remove(req.Name)
			}
			return ctrl.Result{}, nil
		}
		return ctrl.Result{}, err
	}

	wrapped, err := wrapDocument(resource.Spec.Document.Raw)
	if err != nil {
		resource.Status.Ready = false
		resource.Status.ValidationErrors = []string{err.Error()}
		r.setCondition(resource, false, "DocumentMarshalFailed", err.Error())
		metrics.RecordConfigRefresh("crd", "error")
		return r.updateStatus(ctx, resource, req)
	}

	campaign, parseErr := configmodel.Parse(wrapped)
	resource.Status.ObservedGeneration = resource.Generation
	if parseErr != nil {
		resource.Status.Ready = false
		resource.Status.ValidationErrors = []string{parseErr.Error()}
		r.setCondition(resource, false, "InvalidSpec", parseErr.Error())
		metrics.RecordConfigRefresh("crd", "error")
		return r.updateStatus(ctx, resource, req)
	}

	resource.Status.Ready = true
	resource.Status.CampaignID = campaign.ID
	resource.Status.Version = campaign.Version
	resource.Status.ValidationErrors = nil
	r.setCondition(resource, true, "Validated", "document parsed and loaded into the configuration store")

	if r.Store != nil {
		r.Store.Put(campaign)
	}
	metrics.RecordConfigRefresh("crd", "ok")

	return r.updateStatus(ctx, resource, req)
}

// wrapDocument lifts a CampaignConfigSpec's raw embedded document into
// the top-level {"CampaignConfig": ...} wire shape configmodel.Parse
// expects.
func wrapDocument(raw []byte) ([]byte, error) {
	var body json.RawMessage = raw
	if len(body) == 0 {
		body = json.RawMessage("{}")
	}
	return json.Marshal(map[string]json.RawMessage{"CampaignConfig": body})
}

func (r *CampaignConfigReconciler) setCondition(resource *eligibilityv1alpha1.CampaignConfig, ready bool, reason, message string) {
	condition := metav1.Condition{
		Type:               "Ready",
		ObservedGeneration: resource.Generation,
		Reason:             reason,
		Message:            message,
	}
	if ready {
		condition.Status = metav1.ConditionTrue
	} else {
		condition.Status = metav1.ConditionFalse
	}
	meta.SetStatusCondition(&resource.Status.Conditions, condition)
}

func (r *CampaignConfigReconciler) updateStatus(ctx context.Context, resource *eligibilityv1alpha1.CampaignConfig, req ctrl.Request) (ctrl.Result, error) {
	log := logf.FromContext(ctx)
	if err := r.Status().Update(ctx, resource); err != nil {
		log.Error(err, "failed to update CampaignConfig status", "name", req.Name)
		return ctrl.Result{}, err
	}
	return ctrl.Result{}, nil
}

// SetupWithManager sets up the controller with the Manager.
func (r *CampaignConfigReconciler) SetupWithManager(mgr ctrl.Manager) error {
	return ctrl.NewControllerManagedBy(mgr).
		For(&eligibilityv1alpha1.CampaignConfig{}).
		Named("campaignconfig").
		Complete(r)
}
