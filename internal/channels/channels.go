// Package channels manages the user's channel list (channels.yaml) and
// tool settings (settings.yaml).
package channels

import (
	"cmp"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Channel priorities, highest first.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

var (
	ErrChannelExists  = errors.New("channel already configured")
	ErrUnknownChannel = errors.New("channel not configured")
)

// Channel is one configured YouTube channel.
type Channel struct {
	Handle        string `yaml:"-"`
	DisplayName   string `yaml:"display_name"`
	URL           string `yaml:"url"`
	Category      string `yaml:"category"`
	Priority      string `yaml:"priority"`
	Enabled       bool   `yaml:"enabled"`
	LastProcessed string `yaml:"last_processed"` // RFC 3339, empty if never
}

// UnmarshalYAML treats a missing enabled key as true.
func (c *Channel) UnmarshalYAML(n *yaml.Node) error {
	type plain Channel
	p := plain{Enabled: true, Priority: PriorityMedium, Category: "general"}
	if err := n.Decode(&p); err != nil {
		return err
	}
	*c = Channel(p)
	return nil
}

// LastProcessedAt parses LastProcessed; ok is false when unset or malformed.
func (c Channel) LastProcessedAt() (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, c.LastProcessed)
	return t, err == nil
}

// Defaults are the run defaults stored next to the channel list.
type Defaults struct {
	DaysLookback     int    `yaml:"days_lookback"`
	VideosPerChannel int    `yaml:"videos_per_channel"`
	OutputDirectory  string `yaml:"output_directory"`
}

type channelsFile struct {
	Defaults Defaults            `yaml:"default_settings"`
	Channels map[string]*Channel `yaml:"channels"`
}

func newChannel(handle, name, category, priority string, enabled bool) *Channel {
	return &Channel{
		DisplayName: name,
		URL:         "https://www.youtube.com/@" + handle,
		Category:    category,
		Priority:    priority,
		Enabled:     enabled,
	}
}

func defaultChannels() channelsFile {
	return channelsFile{
		Defaults: Defaults{DaysLookback: 7, VideosPerChannel: 1, OutputDirectory: "podcast_summaries"},
		Channels: map[string]*Channel{
			"lexfridman":   newChannel("lexfridman", "Lex Fridman Podcast", "tech", PriorityHigh, true),
			"joerogan":     newChannel("joerogan", "The Joe Rogan Experience", "general", PriorityMedium, true),
			"naval":        newChannel("naval", "Naval", "business", PriorityHigh, true),
			"allinchamath": newChannel("allinchamath", "All-In with Chamath, Jason, Sacks & Friedberg", "business", PriorityHigh, true),
			"davidperell":  newChannel("davidperell", "David Perell", "education", PriorityMedium, true),
		},
	}
}

func priorityRank(p string) int {
	switch strings.ToLower(p) {
	case PriorityHigh:
		return 0
	case PriorityMedium, "":
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// compareChannels orders by priority, then handle.
func compareChannels(a, b Channel) int {
	return cmp.Or(cmp.Compare(priorityRank(a.Priority), priorityRank(b.Priority)), cmp.Compare(a.Handle, b.Handle))
}

func validPriority(p string) error {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return nil
	}
	return fmt.Errorf("invalid priority %q (valid: high, medium, low)", p)
}
