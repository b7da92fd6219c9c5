package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/samber/oops"
	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/post-comb/app/domains"
)

// Load reads and validates the policy file at path. Malformed domains are
// reported as domains.ErrFormat.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, oops.With("policy_file", path).Wrapf(err, "failed to read policy file")
	}

	policy, err := Parse(data)
	if err != nil {
		return nil, oops.With("policy_file", path).Wrap(err)
	}

	slog.Info("Policy loaded",
		"file", path,
		"allow", policy.Allow.Len(),
		"block", policy.Block.Len(),
		"channels", policy.ChannelCount())

	return policy, nil
}

// Parse builds a Policy from YAML
func Parse(data []byte) (*Policy, error) {
	var file PolicyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validate(&file); err != nil {
		return nil, err
	}

	allow, err := domains.Build(file.URL.Allow)
	if err != nil {
		return nil, oops.With("list", "url.allow").Wrap(err)
	}

	block, err := domains.Build(file.URL.Block)
	if err != nil {
		return nil, oops.With("list", "url.block").Wrap(err)
	}

	channels := make(map[string]struct{}, len(file.Youtube.Channels))
	for _, id := range file.Youtube.Channels {
		channels[strings.TrimSpace(id)] = struct{}{}
	}

	return &Policy{Allow: allow, Block: block, channels: channels}, nil
}

func validate(file *PolicyFile) error {
	for i, id := range file.Youtube.Channels {
		if strings.TrimSpace(id) == "" {
			return oops.With("list", "youtube.channels", "index", i).Errorf("empty channel ID")
		}
	}
	return nil
}
