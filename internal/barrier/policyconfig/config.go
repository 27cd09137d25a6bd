// Package policyconfig loads the barrier layout from YAML and builds the
// three policy chains from it.
package policyconfig

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"msgbarrier/pkg/domain"
)

// Policy type names accepted in the file.
const (
	TypeDenyOrigins         = "deny_origins"
	TypeDenyInstructions    = "deny_instructions"
	TypeDenyOverweight      = "deny_overweight"
	TypeDenyReserveToRelay  = "deny_reserve_transfer_to_relay"
	TypeSwitch              = "switch"
	TypeGlobalThrottle      = "global_throttle"
	TypeTakeWeightCredit    = "take_weight_credit"
	TypePaid                = "paid"
	TypeUnpaid              = "unpaid"
	TypeExplicitUnpaid      = "explicit_unpaid"
	TypeKnownQueryResponses = "known_query_responses"
	TypeSubscriptions       = "subscriptions"
	TopicUnique             = "unique"
	TopicTrailing           = "trailing"
	originsFromStore        = "store"
	originsEverything       = "*"
)

// File is the policy file layout. Each list is evaluated in order.
type File struct {
	// Isolation rolls back policy mutations of failed admission trials.
	Isolation bool         `yaml:"isolation"`
	Deny      []PolicySpec `yaml:"deny"`
	Suspend   []PolicySpec `yaml:"suspend"`
	Admit     []PolicySpec `yaml:"admit"`
}

// PolicySpec configures one policy. Only the fields its type reads are
// consulted.
type PolicySpec struct {
	Type      string         `yaml:"type"`
	Origins   OriginsSpec    `yaml:"origins"`
	Opcodes   []string       `yaml:"opcodes"`
	Recursive bool           `yaml:"recursive"`
	MaxWeight *domain.Weight `yaml:"max_weight"`
	PerSecond int            `yaml:"per_second"`
	PerHour   int            `yaml:"per_hour"`
	Topic     string         `yaml:"topic"`
}

// OriginsSpec is either the word "store" (the managed list), "*" (every
// origin), or a list of locations.
type OriginsSpec struct {
	FromStore  bool
	Everything bool
	Locations  []domain.Location
}

func (o *OriginsSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		switch node.Value {
		case originsFromStore:
			o.FromStore = true
			return nil
		case originsEverything:
			o.Everything = true
			return nil
		default:
			return fmt.Errorf("line %d: origins must be %q, %q or a list", node.Line, originsFromStore, originsEverything)
		}
	}
	var raw []string
	if err := node.Decode(&raw); err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	for _, s := range raw {
		loc, err := domain.ParseLocation(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("line %d: %w", node.Line, err)
		}
		o.Locations = append(o.Locations, loc)
	}
	return nil
}

func (o OriginsSpec) empty() bool {
	return !o.FromStore && !o.Everything && len(o.Locations) == 0
}

// Default is the layout used when no policy file is configured: deny
// reserve transfers to the relay chain and store deny-listed origins,
// honour the suspension switch, then admit paid execution from the
// managed allow list.
func Default() *File {
	return &File{
		Deny: []PolicySpec{
			{Type: TypeDenyReserveToRelay},
			{Type: TypeDenyOrigins, Origins: OriginsSpec{FromStore: true}},
		},
		Suspend: []PolicySpec{
			{Type: TypeSwitch},
		},
		Admit: []PolicySpec{
			{Type: TypeTakeWeightCredit},
			{Type: TypePaid, Origins: OriginsSpec{FromStore: true}, Topic: TopicTrailing},
			{Type: TypeKnownQueryResponses},
			{Type: TypeSubscriptions, Origins: OriginsSpec{FromStore: true}},
		},
	}
}

// Parse decodes a policy file.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse policy file: %w", err)
	}
	if len(f.Admit) == 0 {
		return nil, fmt.Errorf("policy file has no admit policies")
	}
	return &f, nil
}

// Load reads the policy file at path and returns it with the SHA-256 of
// its bytes. An empty path yields Default and the hash of empty input.
func Load(path string) (*File, string, error) {
	if path == "" {
		h := sha256.Sum256(nil)
		return Default(), "sha256:" + hex.EncodeToString(h[:]), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read policy file: %w", err)
	}
	f, err := Parse(data)
	if err != nil {
		return nil, "", err
	}
	h := sha256.Sum256(data)
	return f, "sha256:" + hex.EncodeToString(h[:]), nil
}
