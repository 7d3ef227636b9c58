package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the slotlogic MQTT hierarchy.
//
// All topics use the flat scheme: slotlogic/{category}/{preset}/{...}
const (
	// TopicPrefix is the base for all slotlogic topics.
	TopicPrefix = "slotlogic"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = "slotlogic/system"
)

// Topics provides builders for slotlogic MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	applied := topics.Applied("interior-door", "Width")
//	// Returns: "slotlogic/applied/interior-door/Width"
type Topics struct{}

// Applied returns the topic for applied slot values.
// Published retained after every validated write so late subscribers see the
// current surface.
//
// Example: slotlogic/applied/interior-door/Width
func (Topics) Applied(presetSlug, slotLabel string) string {
	return fmt.Sprintf("%s/applied/%s/%s", TopicPrefix, presetSlug, slotLabel)
}

// BatchApplied returns the topic for batch apply results.
//
// Example: slotlogic/batch/interior-door
func (Topics) BatchApplied(presetSlug string) string {
	return fmt.Sprintf("%s/batch/%s", TopicPrefix, presetSlug)
}

// PresetLoaded returns the topic for preset load announcements.
//
// Example: slotlogic/preset/interior-door/loaded
func (Topics) PresetLoaded(presetSlug string) string {
	return fmt.Sprintf("%s/preset/%s/loaded", TopicPrefix, presetSlug)
}

// SystemStatus returns the system status topic, also used as the LWT topic.
//
// Example: slotlogic/system/status
func (Topics) SystemStatus() string {
	return fmt.Sprintf("%s/status", TopicPrefixSystem)
}

// CommandApply returns the topic external controllers publish batch apply
// requests to. Payloads are JSON batch requests; results are announced on the
// matching BatchApplied topic.
//
// Example: slotlogic/command/interior-door/apply
func (Topics) CommandApply(presetSlug string) string {
	return fmt.Sprintf("%s/command/%s/apply", TopicPrefix, presetSlug)
}

// AllCommandApplies returns a pattern matching apply commands for every preset.
//
// Pattern: slotlogic/command/+/apply
func (Topics) AllCommandApplies() string {
	return fmt.Sprintf("%s/command/+/apply", TopicPrefix)
}

// ParseCommandApply extracts the preset slug from an apply command topic.
// It returns false for topics that do not match the command scheme.
func ParseCommandApply(topic string) (string, bool) {
	parts := strings.Split(topic, "/")
	if len(parts) != 4 || parts[0] != TopicPrefix || parts[1] != "command" || parts[3] != "apply" {
		return "", false
	}
	if parts[2] == "" {
		return "", false
	}
	return parts[2], true
}

// AllApplied returns a pattern matching applied values for every preset.
//
// Pattern: slotlogic/applied/+/+
func (Topics) AllApplied() string {
	return fmt.Sprintf("%s/applied/+/+", TopicPrefix)
}

// AllAppliedForPreset returns a pattern matching applied values for one preset.
//
// Pattern: slotlogic/applied/interior-door/+
func (Topics) AllAppliedForPreset(presetSlug string) string {
	return fmt.Sprintf("%s/applied/%s/+", TopicPrefix, presetSlug)
}

// AllBatches returns a pattern matching all batch apply results.
//
// Pattern: slotlogic/batch/+
func (Topics) AllBatches() string {
	return fmt.Sprintf("%s/batch/+", TopicPrefix)
}

// AllTopics returns a pattern matching all slotlogic topics.
// Use with caution - this receives ALL traffic.
//
// Pattern: slotlogic/#
func (Topics) AllTopics() string {
	return "slotlogic/#"
}
