package config

import "github.com/lysyi3m/post-comb/app/domains"

// PolicyFile is the YAML layout of the classification policy
type PolicyFile struct {
	URL     URLLists      `yaml:"url"`
	Youtube YoutubePolicy `yaml:"youtube"`
}

// URLLists holds the allow and block domain lists
type URLLists struct {
	Allow []string `yaml:"allow"`
	Block []string `yaml:"block"`
}

// YoutubePolicy lists the channel IDs of trusted video channels
type YoutubePolicy struct {
	Channels []string `yaml:"channels"`
}

// Policy is the validated, immutable form of a PolicyFile
type Policy struct {
	Allow    *domains.Matcher
	Block    *domains.Matcher
	channels map[string]struct{}
}

// TrustsChannel reports whether the channel ID is on the trusted list
func (p *Policy) TrustsChannel(channelID string) bool {
	if p == nil {
		return false
	}
	_, ok := p.channels[channelID]
	return ok
}

func (p *Policy) ChannelCount() int {
	if p == nil {
		return 0
	}
	return len(p.channels)
}
