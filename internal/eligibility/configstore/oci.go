package configstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content/memory"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"

	"github.com/nhsdigital/eligibility-signposting-api/internal/eligibility/configmodel"
)

// MediaTypeCampaignConfig is the artifact media type a CampaignConfig
// document bundle is pushed/pulled under.
const MediaTypeCampaignConfig = "application/vnd.eligibility.campaign-config.v1+json"

const artifactType = "application/vnd.eligibility.campaign-config.v1"

// OCIRef identifies one campaign config bundle in a registry.
type OCIRef struct {
	Registry string
	Path     string
	Tag      string
}

func (r OCIRef) String() string {
	if r.Tag == "" {
		return fmt.Sprintf("%s/%s", r.Registry, r.Path)
	}
	return fmt.Sprintf("%s/%s:%s", r.Registry, r.Path, r.Tag)
}

// OCISource pulls one or more campaign config bundles from an OCI
// registry, adapted from internal/skills.RegistryClient's Pull/Push
// pattern: push/fetch content through an in-memory store, then oras.Copy
// to/from the remote repository.
type OCISource struct {
	Refs      []OCIRef
	PlainHTTP bool
	Username  string
	Password  string
}

// NewOCISource returns a source that loads the given bundle references
// on every Refresh.
func NewOCISource(refs ...OCIRef) *OCISource {
	return &OCISource{Refs: refs}
}

// Name identifies this source for Store.Refresh's outcome map and the
// eligibility_config_refresh_total metric's "source" label.
func (o *OCISource) Name() string { return "oci" }

// Load pulls every configured ref and parses its content layer as a
// campaign config document. A ref that fails to pull or parse is
// skipped, matching MySQLSource's "one bad document doesn't block the
// rest" behavior.
func (o *OCISource) Load(ctx context.Context) ([]configmodel.CampaignConfig, error) {
	var configs []configmodel.CampaignConfig
	for _, ref := range o.Refs {
		document, err := o.pull(ctx, ref)
		if err != nil {
			continue
		}
		cfg, err := configmodel.Parse(document)
		if err != nil {
			continue
		}
		configs = append(configs, cfg)
	}
	return configs, nil
}

// Push packages a campaign config document and pushes it to ref,
// mirroring RegistryClient.Push's pack-then-copy sequence.
func (o *OCISource) Push(ctx context.Context, ref OCIRef, document []byte) error {
	store := memory.New()

	contentDesc, err := oras.PushBytes(ctx, store, MediaTypeCampaignConfig, document)
	if err != nil {
		return fmt.Errorf("push campaign config content to memory: %w", err)
	}

	manifestDesc, err := oras.PackManifest(ctx, store, oras.PackManifestVersion1_1, artifactType, oras.PackManifestOptions{
		Layers: []ocispec.Descriptor{contentDesc},
	})
	if err != nil {
		return fmt.Errorf("pack campaign config manifest: %w", err)
	}

	tag := ref.Tag
	if tag == "" {
		tag = "latest"
	}
	if err := store.Tag(ctx, manifestDesc, tag); err != nil {
		return fmt.Errorf("tag campaign config manifest: %w", err)
	}

	repo, err := o.repository(ref)
	if err != nil {
		return err
	}
	if _, err := oras.Copy(ctx, store, tag, repo, tag, oras.DefaultCopyOptions); err != nil {
		return fmt.Errorf("push campaign config to registry: %w", err)
	}
	return nil
}

// pull fetches ref's content layer, mirroring RegistryClient.Pull.
func (o *OCISource) pull(ctx context.Context, ref OCIRef) ([]byte, error) {
	repo, err := o.repository(ref)
	if err != nil {
		return nil, err
	}

	store := memory.New()
	tag := ref.Tag
	if tag == "" {
		tag = "latest"
	}

	manifestDesc, err := oras.Copy(ctx, repo, tag, store, tag, oras.DefaultCopyOptions)
	if err != nil {
		return nil, fmt.Errorf("pull campaign config from registry: %w", err)
	}

	manifestReader, err := store.Fetch(ctx, manifestDesc)
	if err != nil {
		return nil, fmt.Errorf("fetch campaign config manifest: %w", err)
	}
	manifestBytes, err := io.ReadAll(manifestReader)
	manifestReader.Close()
	if err != nil {
		return nil, fmt.Errorf("read campaign config manifest: %w", err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(manifestBytes, &manifest); err != nil {
		return nil, fmt.Errorf("parse campaign config manifest: %w", err)
	}

	for _, layer := range manifest.Layers {
		if layer.MediaType != MediaTypeCampaignConfig {
			continue
		}
		reader, err := store.Fetch(ctx, layer)
		if err != nil {
			return nil, fmt.Errorf("fetch campaign config content layer: %w", err)
		}
		defer reader.Close()
		var buf bytes.Buffer
		if _, err := io.Copy(&buf, reader); err != nil {
			return nil, fmt.Errorf("read campaign config content layer: %w", err)
		}
		return buf.Bytes(), nil
	}

	return nil, fmt.Errorf("no campaign config content layer found for %s", ref)
}

func (o *OCISource) repository(ref OCIRef) (*remote.Repository, error) {
	repo, err := remote.NewRepository(fmt.Sprintf("%s/%s", ref.Registry, ref.Path))
	if err != nil {
		return nil, fmt.Errorf("connect registry %s: %w", ref.Registry, err)
	}
	repo.PlainHTTP = o.PlainHTTP
	if o.Username != "" {
		repo.Client = &auth.Client{
			Client: retry.DefaultClient,
			Credential: auth.StaticCredential(ref.Registry, auth.Credential{
				Username: o.Username,
				Password: o.Password,
			}),
		}
	}
	return repo, nil
}
