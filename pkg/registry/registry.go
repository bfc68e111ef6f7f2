// Package registry pulls training programs published as OCI artifacts.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	"oras.land/oras-go/v2"
	"oras.land/oras-go/v2/content"
	"oras.land/oras-go/v2/registry/remote"
	"oras.land/oras-go/v2/registry/remote/auth"
	"oras.land/oras-go/v2/registry/remote/retry"
)

const (
	defaultTag = "latest"
	mib        = 1024 * 1024
)

var (
	ErrNoLayers        = errors.New("no valid layers found in manifest")
	ErrMissingCreds    = errors.New("either token or username and password must be provided when authentication is enabled")
	ErrInvalidManifest = errors.New("failed to parse manifest")
)

type Config struct {
	Authenticate bool   `env:"AUTHENTICATE" envDefault:"false"`
	Token        string `env:"TOKEN"        envDefault:""`
	Username     string `env:"USERNAME"     envDefault:""`
	Password     string `env:"PASSWORD"     envDefault:""`
	PlainHTTP    bool   `env:"PLAIN_HTTP"   envDefault:"false"`
}

func (c Config) Validate() error {
	if !c.Authenticate {
		return nil
	}
	if c.Token == "" && (c.Username == "" || c.Password == "") {
		return ErrMissingCreds
	}

	return nil
}

type Client struct {
	cfg    Config
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Client{cfg: cfg, logger: logger}, nil
}

// Pull fetches the largest layer of the image at reference, e.g.
// localhost:5000/trainers/mnist:v1. The tag defaults to latest.
func (c *Client) Pull(ctx context.Context, reference string) ([]byte, error) {
	repo, err := remote.NewRepository(reference)
	if err != nil {
		return nil, fmt.Errorf("failed to create repository for %s: %w", reference, err)
	}
	repo.PlainHTTP = c.cfg.PlainHTTP
	c.setupAuthentication(repo)

	tag := repo.Reference.Reference
	if tag == "" {
		tag = defaultTag
	}

	data, err := Fetch(ctx, repo, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to pull %s: %w", reference, err)
	}
	c.logger.Info("pulled training program",
		slog.String("reference", reference),
		slog.String("size", fmt.Sprintf("%.2f MB", float64(len(data))/mib)),
	)

	return data, nil
}

func (c *Client) setupAuthentication(repo *remote.Repository) {
	if !c.cfg.Authenticate {
		return
	}

	cred := auth.Credential{
		Username:    c.cfg.Username,
		Password:    c.cfg.Password,
		AccessToken: c.cfg.Token,
	}
	if c.cfg.Username != "" && c.cfg.Password != "" {
		cred.AccessToken = ""
	}

	repo.Client = &auth.Client{
		Client:     retry.DefaultClient,
		Cache:      auth.NewCache(),
		Credential: auth.StaticCredential(repo.Reference.Registry, cred),
	}
}

// Fetch resolves tag in target and returns the content of the manifest's
// largest layer, verified against its digest.
func Fetch(ctx context.Context, target oras.ReadOnlyTarget, tag string) ([]byte, error) {
	manifest, err := fetchManifest(ctx, target, tag)
	if err != nil {
		return nil, err
	}

	layer, err := findLargestLayer(manifest)
	if err != nil {
		return nil, err
	}

	reader, err := target.Fetch(ctx, layer)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch layer %s: %w", layer.Digest, err)
	}
	defer reader.Close()

	return content.ReadAll(reader, layer)
}

func fetchManifest(ctx context.Context, target oras.ReadOnlyTarget, tag string) (*ocispec.Manifest, error) {
	desc, err := target.Resolve(ctx, tag)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest for %s: %w", tag, err)
	}

	reader, err := target.Fetch(ctx, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch manifest for %s: %w", tag, err)
	}
	defer reader.Close()

	data, err := content.ReadAll(reader, desc)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest for %s: %w", tag, err)
	}

	var manifest ocispec.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Join(ErrInvalidManifest, err)
	}

	return &manifest, nil
}

func findLargestLayer(manifest *ocispec.Manifest) (ocispec.Descriptor, error) {
	var largest ocispec.Descriptor
	for _, layer := range manifest.Layers {
		if layer.Size > largest.Size {
			largest = layer
		}
	}

	if largest.Size == 0 {
		return ocispec.Descriptor{}, ErrNoLayers
	}

	return largest, nil
}
