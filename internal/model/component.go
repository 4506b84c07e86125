// Package model defines the types shared by the hardware resolution pipeline.
package model

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ComponentType is the hardware category an input resolves to.
type ComponentType string

const (
	ComponentCPU       ComponentType = "CPU"
	ComponentRAM       ComponentType = "RAM"
	ComponentGPU       ComponentType = "GPU"
	ComponentMainboard ComponentType = "MAINBOARD"
	ComponentDisk      ComponentType = "DISK"
	ComponentGeneral   ComponentType = "GENERAL"
)

// ComponentTypes lists the concrete categories in registration order.
// GENERAL is excluded.
var ComponentTypes = []ComponentType{
	ComponentCPU,
	ComponentRAM,
	ComponentGPU,
	ComponentMainboard,
	ComponentDisk,
}

// ParseComponentType parses a component type name in any case.
func ParseComponentType(s string) (ComponentType, error) {
	ct := ComponentType(strings.ToUpper(strings.TrimSpace(s)))
	if !ct.Valid() {
		return "", eris.Errorf("model: unknown component type %q", s)
	}
	return ct, nil
}

// Valid reports whether c is one of the known component types.
func (c ComponentType) Valid() bool {
	switch c {
	case ComponentCPU, ComponentRAM, ComponentGPU, ComponentMainboard, ComponentDisk, ComponentGeneral:
		return true
	}
	return false
}

// Stacks reports whether several records of this type can coexist in a
// session. A machine has many DIMMs and drives but one CPU.
func (c ComponentType) Stacks() bool {
	return c == ComponentRAM || c == ComponentDisk
}

// Prefix returns the spec key namespace for the type, e.g. "ram".
func (c ComponentType) Prefix() string {
	switch c {
	case ComponentMainboard:
		return "mainboard"
	case ComponentGeneral:
		return "general"
	}
	return strings.ToLower(string(c))
}
