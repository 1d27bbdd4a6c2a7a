package toolchain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ToolType classifies what a tool does to the repository state.
type ToolType int

const (
	ToolTypeCreator ToolType = iota
	ToolTypeAnalyzer
	ToolTypeModifier
	ToolTypeRetriever
	ToolTypeValidator
	ToolTypeExecutor
	ToolTypeReporter
)

var toolTypeNames = [...]string{
	ToolTypeCreator:   "CREATOR",
	ToolTypeAnalyzer:  "ANALYZER",
	ToolTypeModifier:  "MODIFIER",
	ToolTypeRetriever: "RETRIEVER",
	ToolTypeValidator: "VALIDATOR",
	ToolTypeExecutor:  "EXECUTOR",
	ToolTypeReporter:  "REPORTER",
}

// Valid reports whether t is one of the declared tool types.
func (t ToolType) Valid() bool {
	return t >= ToolTypeCreator && t <= ToolTypeReporter
}

func (t ToolType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("ToolType(%d)", int(t))
	}
	return toolTypeNames[t]
}

// ParseToolType accepts the upper or lower case name of a tool type.
func ParseToolType(raw string) (ToolType, error) {
	name := strings.ToUpper(strings.TrimSpace(raw))
	for i, candidate := range toolTypeNames {
		if candidate == name {
			return ToolType(i), nil
		}
	}
	return 0, fmt.Errorf("unknown tool type %q", raw)
}

// MarshalJSON encodes the tool type as its integer value.
func (t ToolType) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid tool type %d", int(t))
	}
	return strconv.AppendInt(nil, int64(t), 10), nil
}

// UnmarshalJSON accepts either the integer value or the type name.
func (t *ToolType) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var name string
		if err := json.Unmarshal(data, &name); err != nil {
			return err
		}
		parsed, err := ParseToolType(name)
		if err != nil {
			return err
		}
		*t = parsed
		return nil
	}

	var value int
	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("decode tool type: %w", err)
	}
	candidate := ToolType(value)
	if !candidate.Valid() {
		return fmt.Errorf("invalid tool type %d", value)
	}
	*t = candidate
	return nil
}

// MarshalYAML writes the type name so workflow and catalog files stay readable.
func (t ToolType) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}

// UnmarshalYAML accepts the type name.
func (t *ToolType) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	parsed, err := ParseToolType(name)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ExecutionStatus is derived from the metadata of a result.
type ExecutionStatus string

const (
	ExecutionStatusProcessing ExecutionStatus = "Processing"
	ExecutionStatusComplete   ExecutionStatus = "Complete"
	ExecutionStatusFailed     ExecutionStatus = "Failed"
)

// UserContext identifies who triggered a tool.
type UserContext struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sessionId"`
}

// ContentSummary describes list-shaped payloads.
type ContentSummary struct {
	Fields      []string `json:"fields"`
	RecordCount int      `json:"recordCount"`
}

// SuggestedToolReference points at a follow-up tool. A reference without a
// ToolNameHint is inert and never executed.
type SuggestedToolReference struct {
	ToolType     ToolType       `json:"toolType"`
	ToolNameHint string         `json:"toolNameHint,omitempty"`
	Reason       string         `json:"reason,omitempty"`
	Parameters   map[string]any `json:"parameters,omitempty"`
	OutputLabel  string         `json:"outputLabel,omitempty"`
}

// HasHint reports whether the suggestion names a tool.
func (s SuggestedToolReference) HasHint() bool {
	return strings.TrimSpace(s.ToolNameHint) != ""
}

// ToolMetadata describes a result and the follow-up it asks for.
type ToolMetadata struct {
	DataType               string                   `json:"dataType"`
	DataSize               int                      `json:"dataSize"`
	Intent                 string                   `json:"intent"`
	Description            string                   `json:"description"`
	Accessibility          string                   `json:"accessibility"`
	RequiresPostProcessing bool                     `json:"requiresPostProcessing"`
	SuggestedTools         []SuggestedToolReference `json:"suggestedTools"`
	ContentSummary         *ContentSummary          `json:"contentSummary,omitempty"`
	Confidence             float64                  `json:"confidence"`
}

// ToolResult is the uniform envelope returned by every tool endpoint.
type ToolResult struct {
	ToolResultID          string          `json:"toolResultId"`
	ToolName              string          `json:"toolName"`
	Timestamp             time.Time       `json:"timestamp"`
	ConversationID        string          `json:"conversationId,omitempty"`
	ConversationMessageID string          `json:"conversationMessageId,omitempty"`
	UserContext           *UserContext    `json:"userContext,omitempty"`
	Metadata              ToolMetadata    `json:"metadata"`
	Payload               json.RawMessage `json:"payload"`
	StepIndex             int             `json:"stepIndex"`
	ParentToolResultID    string          `json:"parentToolResultId,omitempty"`
}

// Status reports Processing while the result still asks for follow-up.
func (r *ToolResult) Status() ExecutionStatus {
	if r.Metadata.RequiresPostProcessing {
		return ExecutionStatusProcessing
	}
	return ExecutionStatusComplete
}

// PayloadObject decodes the payload when it is a JSON object.
func (r *ToolResult) PayloadObject() (map[string]any, bool) {
	trimmed := bytes.TrimSpace(r.Payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var out map[string]any
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return nil, false
	}
	return out, true
}

// DecodePayload unmarshals the payload into v.
func (r *ToolResult) DecodePayload(v any) error {
	if len(r.Payload) == 0 {
		return fmt.Errorf("tool result %s has no payload", r.ToolResultID)
	}
	return json.Unmarshal(r.Payload, v)
}

// LLMContextSummary renders a compact description suitable for an LLM prompt.
func (r *ToolResult) LLMContextSummary() string {
	fields := []string{}
	records := 0
	if r.Metadata.ContentSummary != nil {
		fields = append(fields, r.Metadata.ContentSummary.Fields...)
		records = r.Metadata.ContentSummary.RecordCount
	}
	types := make([]string, 0, len(r.Metadata.SuggestedTools))
	for _, suggestion := range r.Metadata.SuggestedTools {
		types = append(types, suggestion.ToolType.String())
	}
	summary := struct {
		ToolName       string   `json:"toolName"`
		DataType       string   `json:"dataType"`
		Intent         string   `json:"intent"`
		Description    string   `json:"description"`
		Fields         []string `json:"fields"`
		Records        int      `json:"records"`
		SuggestedTools []string `json:"suggestedTools"`
	}{
		ToolName:       r.ToolName,
		DataType:       r.Metadata.DataType,
		Intent:         r.Metadata.Intent,
		Description:    r.Metadata.Description,
		Fields:         fields,
		Records:        records,
		SuggestedTools: types,
	}
	out, err := json.Marshal(summary)
	if err != nil {
		return ""
	}
	return string(out)
}

// BuildParams carries everything needed to assemble a ToolResult.
type BuildParams struct {
	ToolName               string
	Payload                any
	Intent                 string
	Description            string
	DataType               string
	RequiresPostProcessing bool
	SuggestedTools         []SuggestedToolReference
	ContentSummary         *ContentSummary
	Correlation            Correlation
	ParentToolResultID     string
	StepIndex              int
}

// BuildResult assembles a ToolResult with a fresh id and timestamp.
func BuildResult(p BuildParams) (*ToolResult, error) {
	payload := []byte("{}")
	if p.Payload != nil {
		raw, err := json.Marshal(p.Payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", p.ToolName, err)
		}
		payload = raw
	}

	dataSize := len(payload)
	if string(payload) == "{}" || string(payload) == "null" {
		dataSize = 0
	}

	dataType := p.DataType
	if dataType == "" {
		dataType = "application/json"
	}

	suggestions := p.SuggestedTools
	if suggestions == nil {
		suggestions = []SuggestedToolReference{}
	}

	return &ToolResult{
		ToolResultID:          uuid.NewString(),
		ToolName:              p.ToolName,
		Timestamp:             time.Now().UTC().Round(0),
		ConversationID:        p.Correlation.ConversationID,
		ConversationMessageID: p.Correlation.MessageID,
		UserContext: &UserContext{
			UserID:    p.Correlation.UserID,
			SessionID: p.Correlation.SessionID,
		},
		Metadata: ToolMetadata{
			DataType:               dataType,
			DataSize:               dataSize,
			Intent:                 p.Intent,
			Description:            p.Description,
			Accessibility:          "public",
			RequiresPostProcessing: p.RequiresPostProcessing,
			SuggestedTools:         suggestions,
			ContentSummary:         p.ContentSummary,
			Confidence:             1.0,
		},
		Payload:            payload,
		StepIndex:          p.StepIndex,
		ParentToolResultID: p.ParentToolResultID,
	}, nil
}
