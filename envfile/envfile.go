// Package envfile reads and writes the Environment/Profile tree in the
// YAML format the scripting collaborator reads and writes. It is a thin
// file-based wrapper over ve's own byte-level codec (ve.MarshalEnvironment
// / ve.UnmarshalEnvironment and their Profile counterparts), which is also
// what the MP coordinator's ENV/PROFILE wire pushes carry.
package envfile

import (
	"fmt"
	"os"

	"github.com/gazed/ve"
)

// WriteEnvironment serializes env to path in the scripting collaborator's
// YAML format.
func WriteEnvironment(path string, env *ve.Environment) error {
	out, err := ve.MarshalEnvironment(env)
	if err != nil {
		return fmt.Errorf("envfile: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// ReadEnvironment parses path into a new Environment, preserving window
// ids exactly as stored so that slave assignment stays stable.
func ReadEnvironment(path string) (*ve.Environment, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("envfile: read: %w", err)
	}
	env, err := ve.UnmarshalEnvironment(raw)
	if err != nil {
		return nil, fmt.Errorf("envfile: %w", err)
	}
	return env, nil
}

// WriteProfile serializes prof to path.
func WriteProfile(path string, prof *ve.UserProfile) error {
	out, err := ve.MarshalProfile(prof)
	if err != nil {
		return fmt.Errorf("envfile: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

// ReadProfile parses path into a new UserProfile.
func ReadProfile(path string) (*ve.UserProfile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("envfile: read: %w", err)
	}
	prof, err := ve.UnmarshalProfile(raw)
	if err != nil {
		return nil, fmt.Errorf("envfile: %w", err)
	}
	return prof, nil
}
