// Terrastac - SpatioTemporal Asset Catalog API over PgSTAC
// Copyright 2026 M. Lavoie (mlavoie-cs)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mlavoie-cs/terrastac

package cql2

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ValidateJSON checks that a CQL2 JSON filter is structurally sound: the
// root is an operator object, every operator carries an args array, and
// every argument is an operator, a property reference, a temporal or
// spatial literal, an array, or a scalar. Operator semantics are not
// checked; PgSTAC rejects what it cannot compile.
func ValidateJSON(raw json.RawMessage) error {
	var node map[string]json.RawMessage
	if err := json.Unmarshal(raw, &node); err != nil {
		return errors.New("filter must be a JSON object")
	}
	return validateOp(node)
}

func validateOp(node map[string]json.RawMessage) error {
	opRaw, ok := node["op"]
	if !ok {
		return errors.New(`operator object missing "op"`)
	}
	var op string
	if err := json.Unmarshal(opRaw, &op); err != nil || op == "" {
		return errors.New(`"op" must be a non-empty string`)
	}
	argsRaw, ok := node["args"]
	if !ok {
		return fmt.Errorf("operator %q missing args", op)
	}
	var args []json.RawMessage
	if err := json.Unmarshal(argsRaw, &args); err != nil {
		return fmt.Errorf("operator %q args must be an array", op)
	}
	if len(args) == 0 {
		return fmt.Errorf("operator %q has no arguments", op)
	}
	for _, arg := range args {
		if err := validateArg(arg); err != nil {
			return err
		}
	}
	return nil
}

func validateArg(raw json.RawMessage) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if _, ok := obj["op"]; ok {
			return validateOp(obj)
		}
		for _, key := range []string{"property", "timestamp", "date", "interval", "bbox", "type"} {
			if _, ok := obj[key]; ok {
				return nil
			}
		}
		return errors.New("argument object is not an operator, property or literal")
	}

	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		for _, item := range list {
			if err := validateArg(item); err != nil {
				return err
			}
		}
		return nil
	}

	// scalar
	var scalar interface{}
	if err := json.Unmarshal(raw, &scalar); err != nil {
		return errors.New("argument is not valid JSON")
	}
	return nil
}
