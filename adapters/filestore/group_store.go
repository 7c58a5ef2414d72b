package filestore

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"tdcov/domain/core"
	"tdcov/domain/delay"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

//go:embed groups.schema.json
var groupsSchemaJSON string

var groupsSchema = jsonschema.MustCompileString("groups.schema.json", groupsSchemaJSON)

// GroupStore reads parameter group files written by the model-selection stage
type GroupStore struct {
	layout Layout
}

// NewGroupStore creates a group store
func NewGroupStore(layout Layout) *GroupStore {
	return &GroupStore{layout: layout}
}

func (s *GroupStore) LoadAccepted(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error) {
	return ReadGroups(s.layout.AcceptedGroupsPath(lens, dataset))
}

func (s *GroupStore) LoadAll(ctx context.Context, lens, dataset string) ([]delay.ParameterGroup, error) {
	return ReadGroups(s.layout.AllGroupsPath(lens, dataset))
}

// ReadGroups reads a JSON array of {"name", "labels"} objects. Unknown fields
// are ignored. A missing file is reported as core.ErrNotFound.
func ReadGroups(path string) ([]delay.ParameterGroup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, core.NewNotFoundError("group file", path)
		}
		return nil, fmt.Errorf("failed to read group file %s: %w", path, err)
	}
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("group file %s is not valid JSON", path)
	}

	var doc interface{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode group file %s: %w", path, err)
	}
	if err := groupsSchema.Validate(doc); err != nil {
		return nil, fmt.Errorf("group file %s does not match schema: %w", path, err)
	}

	result := gjson.ParseBytes(raw)
	groups := make([]delay.ParameterGroup, 0, len(result.Array()))
	result.ForEach(func(_, g gjson.Result) bool {
		group := delay.ParameterGroup{Name: g.Get("name").String()}
		g.Get("labels").ForEach(func(_, l gjson.Result) bool {
			group.Labels = append(group.Labels, delay.PairLabel(l.String()))
			return true
		})
		groups = append(groups, group)
		return true
	})
	return groups, nil
}
