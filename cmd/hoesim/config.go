package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/cwbudde/algo-rcwa/sweep"
)

// sweepConfig is the JSON form of a parameter table setup:
//
//	{
//	  "variable": "theta",
//	  "range": {"start": 0, "end": 10, "steps": 5},
//	  "values": {"n0": 1.5, "add_ar_layer": "yes", "nz_steps_per_cycle": false}
//	}
type sweepConfig struct {
	Variable string                     `json:"variable"`
	Range    *rangeConfig               `json:"range,omitempty"`
	Values   map[string]json.RawMessage `json:"values,omitempty"`
}

type rangeConfig struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Steps int     `json:"steps"`
}

func readConfig(path string) (*sweepConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return decodeConfig(f)
}

func decodeConfig(r io.Reader) (*sweepConfig, error) {
	var cfg sweepConfig
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return &cfg, nil
}

// apply writes the configured values, variable and range into t. Values
// are applied in key order.
func (c *sweepConfig) apply(t *sweep.ParameterTable) error {
	keys := make([]string, 0, len(c.Values))
	for k := range c.Values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if err := setValue(t, k, c.Values[k]); err != nil {
			return err
		}
	}

	if c.Variable != "" {
		if err := t.SetVariable(c.Variable); err != nil {
			return err
		}
	}
	if c.Range != nil {
		r := sweep.Range{Start: c.Range.Start, End: c.Range.End, Steps: c.Range.Steps}
		if err := t.SetRange(t.Variable(), r); err != nil {
			return err
		}
	}
	return nil
}

func setValue(t *sweep.ParameterTable, key string, raw json.RawMessage) error {
	var num float64
	if err := json.Unmarshal(raw, &num); err == nil {
		return t.SetValue(key, num)
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		v := 0.0
		if b {
			v = 1
		}
		return t.SetValue(key, v)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return t.SetText(key, strings.TrimSpace(s))
	}
	return fmt.Errorf("config: value of %q: %w", key, errors.New("want number, bool or string"))
}
