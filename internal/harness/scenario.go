// Package harness provides a conformance testing framework for the
// submission lifecycle workflow.
//
// A scenario is a YAML timeline of submissions, inbox messages, clock
// advances, and polling cycles, followed by assertions on the resulting
// record store and platform state. Scenarios run against the real store,
// engine, and classifier; only the platform client and clock are fakes,
// so a scenario exercises the same decision paths production takes.
//
// The recorded platform trace is also comparable against golden files,
// which pins the exact sequence of outbound calls for a timeline.
package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance scenario.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// RemoteConfig is the raw remote tunables document served to the
	// workflow's config reload. Empty means the built-in defaults.
	RemoteConfig string `yaml:"remote_config,omitempty"`

	// Steps is the timeline, executed in order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final store and platform state.
	Assertions []Assertion `yaml:"assertions"`
}

// Step is one timeline entry. Exactly one field must be set.
type Step struct {
	// Advance moves the clock forward, e.g. "11m".
	Advance string `yaml:"advance,omitempty"`

	// Submit adds a submission to the platform's new listing, created
	// at the current clock time unless AgedBy backdates it.
	Submit *SubmitStep `yaml:"submit,omitempty"`

	// Message adds an unread inbox message, created at the current
	// clock time.
	Message *MessageStep `yaml:"message,omitempty"`

	// Cycle runs one polling cycle.
	Cycle bool `yaml:"cycle,omitempty"`
}

// SubmitStep scripts one new submission.
type SubmitStep struct {
	ID            string `yaml:"id"`
	User          string `yaml:"user"`
	Title         string `yaml:"title"`
	Distinguished bool   `yaml:"distinguished,omitempty"`
	Approved      bool   `yaml:"approved,omitempty"`
	Reports       int    `yaml:"reports,omitempty"`

	// AgedBy backdates the creation time, e.g. "45m" for a submission
	// that is already stale when first seen.
	AgedBy string `yaml:"aged_by,omitempty"`
}

// MessageStep scripts one inbound private message.
type MessageStep struct {
	ID   string `yaml:"id"`
	User string `yaml:"user"`
	Body string `yaml:"body"`

	// Subject defaults to a reply to the prompt subject when empty.
	Subject string `yaml:"subject,omitempty"`
}

// Assertion validates final state.
type Assertion struct {
	// Type specifies the assertion:
	//   - "record_present": a record for PostID exists, with flag checks
	//   - "record_absent": no record for PostID exists
	//   - "approved": the submission was approved on the platform
	//   - "removed": the submission was removed on the platform
	//   - "sticky_contains": the posted sticky body contains Text
	//   - "message_sent": Count messages of MessageKind went to User
	//   - "read_count": the inbox message was marked read Count times
	Type string `yaml:"type"`

	PostID    string `yaml:"post_id,omitempty"`
	MessageID string `yaml:"message_id,omitempty"`
	User      string `yaml:"user,omitempty"`
	Text      string `yaml:"text,omitempty"`
	Count     int    `yaml:"count,omitempty"`

	// MessageKind is "prompt", "retry", or "timeout".
	MessageKind string `yaml:"message_kind,omitempty"`

	// Flag checks for record_present; nil means unchecked.
	Prompted *bool `yaml:"prompted,omitempty"`
	Removed  *bool `yaml:"removed,omitempty"`
	Replied  *bool `yaml:"replied,omitempty"`
}

// Assertion type constants.
const (
	AssertRecordPresent  = "record_present"
	AssertRecordAbsent   = "record_absent"
	AssertApproved       = "approved"
	AssertRemoved        = "removed"
	AssertStickyContains = "sticky_contains"
	AssertMessageSent    = "message_sent"
	AssertReadCount      = "read_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

// validate checks required fields and step shape.
func (s *Scenario) validate() error {
	if s.Name == "" {
		return fmt.Errorf("scenario: name is required")
	}
	for i, step := range s.Steps {
		set := 0
		if step.Advance != "" {
			set++
		}
		if step.Submit != nil {
			set++
		}
		if step.Message != nil {
			set++
		}
		if step.Cycle {
			set++
		}
		if set != 1 {
			return fmt.Errorf("scenario %s: step %d must set exactly one of advance/submit/message/cycle", s.Name, i)
		}
	}
	for i, a := range s.Assertions {
		switch a.Type {
		case AssertRecordPresent, AssertRecordAbsent, AssertApproved,
			AssertRemoved, AssertStickyContains, AssertMessageSent, AssertReadCount:
		default:
			return fmt.Errorf("scenario %s: assertion %d has unknown type %q", s.Name, i, a.Type)
		}
	}
	return nil
}
