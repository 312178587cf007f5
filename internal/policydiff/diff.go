// Package policydiff compares two authorization policy files.
package policydiff

import (
	"fmt"
	"strconv"

	"github.com/ppiankov/ztbench/internal/policy"
)

// Change represents a scalar field change.
type Change struct {
	Field   string `json:"field"`
	Old     string `json:"old"`
	New     string `json:"new"`
	Comment string `json:"comment,omitempty"`
}

// DiffResult holds the comparison of two policy configs.
type DiffResult struct {
	OldPath    string   `json:"old_path"`
	NewPath    string   `json:"new_path"`
	OldHash    string   `json:"old_hash,omitempty"`
	NewHash    string   `json:"new_hash,omitempty"`
	Changes    []Change `json:"changes"`
	HasChanges bool     `json:"has_changes"`
}

// Diff compares two policy configs and returns the differences.
func Diff(old, new *policy.Config) *DiffResult {
	r := &DiffResult{}

	diffCeiling(r, "ceilings.rbac", old.Ceilings.RBAC, new.Ceilings.RBAC)
	diffCeiling(r, "ceilings.abac", old.Ceilings.ABAC, new.Ceilings.ABAC)
	diffCeiling(r, "ceilings.mac", old.Ceilings.MAC, new.Ceilings.MAC)
	diffCeiling(r, "ceilings.dac", old.Ceilings.DAC, new.Ceilings.DAC)

	diffString(r, "rbac_role", old.RBACRole, new.RBACRole)
	diffString(r, "dac_owner", old.DACOwner, new.DACOwner)
	diffString(r, "abac_location_prefix", old.ABACLocationPrefix, new.ABACLocationPrefix)

	r.HasChanges = len(r.Changes) > 0
	return r
}

// DiffFiles loads both files and compares them. An empty path means the
// built-in defaults.
func DiffFiles(oldPath, newPath string) (*DiffResult, error) {
	oldCfg, oldHash, err := policy.LoadConfigWithHash(oldPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", oldPath, err)
	}
	newCfg, newHash, err := policy.LoadConfigWithHash(newPath)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", newPath, err)
	}

	r := Diff(oldCfg, newCfg)
	r.OldPath, r.NewPath = label(oldPath), label(newPath)
	r.OldHash, r.NewHash = oldHash, newHash
	return r, nil
}

func label(path string) string {
	if path == "" {
		return "(defaults)"
	}
	return path
}

// diffCeiling records a ceiling change. A lower ceiling grants fewer
// attempts, so lower is stricter.
func diffCeiling(r *DiffResult, field string, old, new float64) {
	if old == new {
		return
	}
	comment := "looser"
	if new < old {
		comment = "stricter"
	}
	r.Changes = append(r.Changes, Change{
		Field:   field,
		Old:     strconv.FormatFloat(old, 'g', -1, 64),
		New:     strconv.FormatFloat(new, 'g', -1, 64),
		Comment: comment,
	})
}

func diffString(r *DiffResult, field, old, new string) {
	if old != new {
		r.Changes = append(r.Changes, Change{Field: field, Old: old, New: new})
	}
}
