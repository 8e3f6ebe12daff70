package agent

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ToolCallArgs holds decoded JSON arguments for a tool call.
type ToolCallArgs map[string]json.RawMessage

// ParseToolCallArgs decodes a raw JSON arguments object. Empty input yields no arguments.
func ParseToolCallArgs(raw string) (ToolCallArgs, error) {
	if strings.TrimSpace(raw) == "" {
		return ToolCallArgs{}, nil
	}
	var args ToolCallArgs
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("parse tool arguments: %w", err)
	}
	if args == nil {
		args = ToolCallArgs{}
	}
	return args, nil
}

// Encode renders the arguments as a JSON object string.
func (args ToolCallArgs) Encode() (string, error) {
	if args == nil {
		args = ToolCallArgs{}
	}
	payload, err := json.Marshal(args)
	if err != nil {
		return "", fmt.Errorf("marshal tool args: %w", err)
	}
	return string(payload), nil
}

// RequiredString returns a required string argument.
func (args ToolCallArgs) RequiredString(key string) (string, error) {
	value, ok, err := args.OptionalString(key)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return "", fmt.Errorf("%s is required", key)
	}
	return value, nil
}

// OptionalString returns an optional string argument with a presence flag.
func (args ToolCallArgs) OptionalString(key string) (string, bool, error) {
	raw, ok := args[key]
	if !ok || isNull(raw) {
		return "", false, nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", false, fmt.Errorf("%s must be a string", key)
	}
	return strings.TrimSpace(value), true, nil
}

// RequiredNumber returns a required numeric argument. Numeric strings are accepted.
func (args ToolCallArgs) RequiredNumber(key string) (float64, error) {
	raw, ok := args[key]
	if !ok || isNull(raw) {
		return 0, fmt.Errorf("%s is required", key)
	}
	var value float64
	if err := json.Unmarshal(raw, &value); err == nil {
		return value, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		parsed, parseErr := strconv.ParseFloat(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "$")), 64)
		if parseErr == nil {
			return parsed, nil
		}
	}
	return 0, fmt.Errorf("%s must be a number", key)
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
