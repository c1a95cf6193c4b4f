// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package schema

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
)

// Registry is an immutable, indexed set of schemas. It is safe for
// concurrent use by any number of readers.
type Registry struct {
	schemas []*Schema
	byName  map[string]int
	byType  map[uint16]int
}

// ByName returns the schema with the given name.
func (r *Registry) ByName(name string) (*Schema, error) {
	if r != nil {
		if id, ok := r.byName[name]; ok {
			return r.schemas[id], nil
		}
	}
	return nil, fmt.Errorf("name %q: %w", name, ErrNotFound)
}

// ByTypeCode returns the schema with the given type code.
func (r *Registry) ByTypeCode(code uint16) (*Schema, error) {
	if r != nil {
		if id, ok := r.byType[code]; ok {
			return r.schemas[id], nil
		}
	}
	return nil, fmt.Errorf("type code %s: %w", TypeCode(code), ErrNotFound)
}

// Parent returns the schema s extends, or nil.
func (r *Registry) Parent(s *Schema) *Schema {
	if s.parent < 0 {
		return nil
	}
	return r.schemas[s.parent]
}

// Target returns the schema a reference field points at. Fields whose
// reference did not resolve when the registry was built fail with
// ErrNotFound.
func (r *Registry) Target(field Field) (*Schema, error) {
	if !field.Type.Kind.IsReference() {
		return nil, fmt.Errorf("field %q has integer type %s", field.Name, field.Type)
	}
	if id, ok := field.resolved(); ok {
		return r.schemas[id], nil
	}
	return r.ByName(field.Type.Ref)
}

// Len returns the number of schemas.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.schemas)
}

// Schemas returns every schema ordered by type code.
func (r *Registry) Schemas() []*Schema {
	if r == nil {
		return nil
	}
	return slices.Clone(r.schemas)
}

// Names returns every schema name in lexical order.
func (r *Registry) Names() []string {
	names := make([]string, 0, r.Len())
	for _, schema := range r.Schemas() {
		names = append(names, schema.Name)
	}
	sort.Strings(names)
	return names
}

// Definitions returns the definition form of every schema, ordered by
// type code. Field types are written in canonical spelling.
func (r *Registry) Definitions() []Definition {
	definitions := make([]Definition, 0, r.Len())
	for _, schema := range r.Schemas() {
		definitions = append(definitions, schema.Definition())
	}
	return definitions
}

// Definition returns the definition form of the schema.
func (s *Schema) Definition() Definition {
	fields := make([]FieldDefinition, len(s.Fields))
	for index, field := range s.Fields {
		fields[index] = FieldDefinition{Name: field.Name, Type: field.Type.String()}
	}
	return Definition{
		Name:    s.Name,
		Type:    TypeCode(s.TypeCode),
		Extends: s.Extends,
		Fields:  fields,
	}
}

// NewRegistry builds a registry from in-memory definitions. Unlike
// [Load], any invalid definition fails the whole call; the returned
// error joins every problem found.
func NewRegistry(definitions ...Definition) (*Registry, error) {
	builder := NewBuilder(nil)
	var errs []error
	for index := range definitions {
		definition := definitions[index]
		if err := builder.Add(&definition, ""); err != nil {
			errs = append(errs, err)
		}
	}
	registry, failures := builder.Build()
	for _, failure := range failures {
		errs = append(errs, failure)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return registry, nil
}

// Builder accumulates definitions and produces a [Registry]. Add may be
// called from many goroutines; Build must be called once, after every
// Add has returned.
type Builder struct {
	logger *slog.Logger

	mu      sync.Mutex
	entries []builderEntry
}

type builderEntry struct {
	definition *Definition
	path       string
	sequence   int
}

// NewBuilder returns an empty Builder. A nil logger discards output.
func NewBuilder(logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Builder{logger: logger}
}

// Add validates definition and queues it. path identifies the source
// for logs and collision resolution.
func (b *Builder) Add(definition *Definition, path string) error {
	if err := definition.Validate(); err != nil {
		if path != "" {
			return fmt.Errorf("%s: %w", path, err)
		}
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, builderEntry{
		definition: definition,
		path:       path,
		sequence:   len(b.entries),
	})
	return nil
}

// BuildFailure describes a definition excluded while building a
// registry because its inheritance chain could not be resolved.
type BuildFailure struct {
	Name string
	Path string
	Err  error
}

func (f BuildFailure) Error() string {
	if f.Path != "" {
		return fmt.Sprintf("%s: schema %q: %v", f.Path, f.Name, f.Err)
	}
	return fmt.Sprintf("schema %q: %v", f.Name, f.Err)
}

func (f BuildFailure) Unwrap() error { return f.Err }

// Build indexes the queued definitions.
//
// Entries are applied in path order (then insertion order), so when two
// definitions share a name or a type code the one from the later path
// wins and the earlier one is dropped from both indexes. Concurrent
// loading therefore still produces a deterministic registry.
//
// Schemas whose extends chain names an unknown schema or loops back on
// itself are excluded and reported. Reference fields are resolved to
// arena ids where possible; an unresolved reference is logged and
// surfaces as ErrNotFound when a codec reaches it.
func (b *Builder) Build() (*Registry, []BuildFailure) {
	b.mu.Lock()
	entries := slices.Clone(b.entries)
	b.mu.Unlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].path != entries[j].path {
			return entries[i].path < entries[j].path
		}
		return entries[i].sequence < entries[j].sequence
	})

	byName := make(map[string]*builderEntry)
	byType := make(map[TypeCode]*builderEntry)
	for index := range entries {
		entry := &entries[index]
		name, code := entry.definition.Name, entry.definition.Type
		collisions := []*builderEntry{byName[name]}
		if other := byType[code]; other != collisions[0] {
			collisions = append(collisions, other)
		}
		for _, previous := range collisions {
			if previous == nil {
				continue
			}
			b.logger.Warn("schema collision",
				"name", name,
				"type_code", code.String(),
				"previous_name", previous.definition.Name,
				"previous_path", previous.path,
				"path", entry.path,
			)
			if byName[previous.definition.Name] == previous {
				delete(byName, previous.definition.Name)
			}
			if byType[previous.definition.Type] == previous {
				delete(byType, previous.definition.Type)
			}
		}
		byName[name] = entry
		byType[code] = entry
	}

	// Surviving entries, ordered by type code for stable arena ids.
	survivors := make([]*builderEntry, 0, len(byType))
	for _, entry := range byType {
		survivors = append(survivors, entry)
	}
	sort.Slice(survivors, func(i, j int) bool {
		return survivors[i].definition.Type < survivors[j].definition.Type
	})

	var failures []BuildFailure
	excluded := b.checkInheritance(survivors, byName, &failures)

	registry := &Registry{
		byName: make(map[string]int),
		byType: make(map[uint16]int),
	}
	for _, entry := range survivors {
		if excluded[entry.definition.Name] {
			continue
		}
		definition := entry.definition
		schema := &Schema{
			Name:     definition.Name,
			TypeCode: uint16(definition.Type),
			Extends:  definition.Extends,
			Path:     entry.path,
			id:       len(registry.schemas),
			parent:   -1,
		}
		for _, fieldDefinition := range definition.Fields {
			// Validate already proved every type parses.
			tag, _ := ParseTypeTag(fieldDefinition.Type)
			schema.Fields = append(schema.Fields, Field{Name: strings.TrimSpace(fieldDefinition.Name), Type: tag})
		}
		registry.byName[schema.Name] = schema.id
		registry.byType[schema.TypeCode] = schema.id
		registry.schemas = append(registry.schemas, schema)
	}

	for _, schema := range registry.schemas {
		if schema.Extends != "" {
			schema.parent = registry.byName[schema.Extends]
		}
		for index := range schema.Fields {
			field := &schema.Fields[index]
			if !field.Type.Kind.IsReference() {
				continue
			}
			if id, ok := registry.byName[field.Type.Ref]; ok {
				field.target = id + 1
				continue
			}
			b.logger.Warn("schema reference unresolved",
				"schema", schema.Name,
				"field", field.Name,
				"reference", field.Type.Ref,
				"path", schema.Path,
			)
		}
	}

	for _, schema := range registry.schemas {
		registry.flatten(schema)
	}

	return registry, failures
}

// checkInheritance returns the names of schemas whose extends chain is
// broken, appending one failure per excluded schema.
func (b *Builder) checkInheritance(entries []*builderEntry, byName map[string]*builderEntry, failures *[]BuildFailure) map[string]bool {
	const (
		unvisited = iota
		visiting
		good
		bad
	)
	state := make(map[string]int, len(entries))
	excluded := make(map[string]bool)

	var visit func(entry *builderEntry) (bool, error)
	visit = func(entry *builderEntry) (bool, error) {
		name := entry.definition.Name
		switch state[name] {
		case good:
			return true, nil
		case bad:
			return false, fmt.Errorf("ancestor %q is excluded", name)
		case visiting:
			return false, fmt.Errorf("extends cycle through %q", name)
		}
		if entry.definition.Extends == "" {
			state[name] = good
			return true, nil
		}

		state[name] = visiting
		parent, ok := byName[entry.definition.Extends]
		var err error
		if !ok {
			err = fmt.Errorf("extends unknown schema %q: %w", entry.definition.Extends, ErrNotFound)
		} else if ok, err = visit(parent); ok {
			state[name] = good
			return true, nil
		}
		state[name] = bad
		return false, err
	}

	for _, entry := range entries {
		if ok, err := visit(entry); !ok {
			name := entry.definition.Name
			if excluded[name] {
				continue
			}
			excluded[name] = true
			failure := BuildFailure{
				Name: name,
				Path: entry.path,
				Err:  fmt.Errorf("%w: %w", ErrMalformedDefinition, err),
			}
			*failures = append(*failures, failure)
			b.logger.Warn("schema skipped", "name", name, "path", entry.path, "error", err)
		}
	}
	return excluded
}

// flatten computes the effective field list of s and its ancestors.
// Inheritance was checked to be acyclic before flatten runs.
func (r *Registry) flatten(s *Schema) []Field {
	if s.effective != nil {
		return s.effective
	}
	var fields []Field
	if s.parent >= 0 {
		fields = append(fields, r.flatten(r.schemas[s.parent])...)
	}
	fields = append(fields, s.Fields...)
	if fields == nil {
		fields = []Field{}
	}
	s.effective = fields
	return fields
}
