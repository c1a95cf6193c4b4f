// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package binon

import (
	"context"
	"errors"
	"fmt"

	"github.com/bureau-foundation/binon/lib/schema"
)

// DefaultMaxDepth bounds reference nesting when Options.MaxDepth is
// zero.
const DefaultMaxDepth = 64

// Options configures a [Codec].
type Options struct {
	// Registry holds the schemas. Required.
	Registry *schema.Registry

	// Factories maps schema names to object constructors. Required,
	// but may be empty.
	Factories map[string]Factory

	// DefaultObject names the factory used for schemas with no entry
	// in Factories. Empty means *Record.
	DefaultObject string

	// MaxDepth is the deepest reference nesting accepted on encode and
	// decode. The top-level record is depth zero.
	MaxDepth int
}

// Codec encodes and decodes objects against one registry.
type Codec struct {
	registry      *schema.Registry
	factories     map[string]Factory
	defaultObject Factory
	maxDepth      int
}

// New validates options and returns a Codec.
func New(options Options) (*Codec, error) {
	if err := options.validate(); err != nil {
		return nil, err
	}
	if options.MaxDepth == 0 {
		options.MaxDepth = DefaultMaxDepth
	}

	factories := make(map[string]Factory, len(options.Factories))
	for name, factory := range options.Factories {
		factories[name] = factory
	}
	codec := &Codec{
		registry:      options.Registry,
		factories:     factories,
		defaultObject: NewRecordFactory,
		maxDepth:      options.MaxDepth,
	}
	if options.DefaultObject != "" {
		codec.defaultObject = factories[options.DefaultObject]
	}
	return codec, nil
}

func (o Options) validate() error {
	var errs []error
	if o.Registry == nil {
		errs = append(errs, errors.New("registry is required"))
	}
	if err := o.validateFactories(); err != nil {
		errs = append(errs, err)
	}
	if o.MaxDepth < 0 {
		errs = append(errs, fmt.Errorf("max depth %d is negative", o.MaxDepth))
	}
	return errors.Join(errs...)
}

// validateFactories checks the parts of Options that do not need a
// registry, so [Load] can fail before walking the tree.
func (o Options) validateFactories() error {
	if o.Factories == nil {
		return errors.New("factory map is required")
	}
	for name, factory := range o.Factories {
		if factory == nil {
			return fmt.Errorf("factory for %q is nil", name)
		}
	}
	if o.DefaultObject != "" {
		if _, ok := o.Factories[o.DefaultObject]; !ok {
			return fmt.Errorf("default object %q has no factory", o.DefaultObject)
		}
	}
	return nil
}

// Registry returns the codec's schema registry.
func (c *Codec) Registry() *schema.Registry { return c.registry }

// Load walks root with [schema.Load] and returns a Codec over the
// resulting registry. Options.Registry is ignored. Entries skipped
// during the walk are listed in the report; the error is non-nil only
// for invalid options or a cancelled context.
func Load(ctx context.Context, root string, options Options, loadOptions schema.LoadOptions) (*Codec, *schema.LoadReport, error) {
	if err := options.validateFactories(); err != nil {
		return nil, nil, err
	}
	registry, report, err := schema.Load(ctx, root, loadOptions)
	if err != nil {
		return nil, report, err
	}
	options.Registry = registry
	codec, err := New(options)
	return codec, report, err
}

// LoadAsync runs [Load] on a new goroutine and calls complete exactly
// once with its results.
func LoadAsync(ctx context.Context, root string, options Options, loadOptions schema.LoadOptions, complete func(*Codec, *schema.LoadReport, error)) {
	go func() {
		complete(Load(ctx, root, options, loadOptions))
	}()
}

// NewObject returns an empty object for the named schema with its map
// name and type code set.
func (c *Codec) NewObject(name string) (Object, error) {
	s, err := c.registry.ByName(name)
	if err != nil {
		return nil, err
	}
	return c.newObject(s)
}

func (c *Codec) newObject(s *schema.Schema) (Object, error) {
	factory, ok := c.factories[s.Name]
	if !ok {
		factory = c.defaultObject
	}
	object := factory()
	if isNilObject(object) {
		return nil, fmt.Errorf("%w: factory for %q returned nil", ErrInvalidObject, s.Name)
	}
	object.SetMapName(s.Name)
	object.SetTypeCode(s.TypeCode)
	return object, nil
}

// resolve finds the schema named by an override, ignoring any array
// marker, or by the object's map name when override is empty.
func (c *Codec) resolve(override, mapName string) (*schema.Schema, error) {
	name := mapName
	if override != "" {
		name, _ = schema.SplitArrayMarker(override)
	}
	if name == "" {
		return nil, fmt.Errorf("%w: no schema named by object or override", schema.ErrNotFound)
	}
	return c.registry.ByName(name)
}

func isNilObject(object Object) bool {
	if object == nil {
		return true
	}
	record, ok := object.(*Record)
	return ok && record == nil
}

// asObject returns value as a nested record.
func asObject(value any) (Object, error) {
	object, ok := value.(Object)
	if !ok {
		if value == nil {
			return nil, fmt.Errorf("%w: nil nested record", ErrInvalidObject)
		}
		return nil, fmt.Errorf("%w: nested record is %T", ErrInvalidObject, value)
	}
	if isNilObject(object) {
		return nil, fmt.Errorf("%w: nil nested record", ErrInvalidObject)
	}
	return object, nil
}

// asObjects returns value as the elements of a reference array.
func asObjects(value any) ([]Object, error) {
	switch elements := value.(type) {
	case []Object:
		return elements, nil
	case []*Record:
		objects := make([]Object, len(elements))
		for index, element := range elements {
			objects[index] = element
		}
		return objects, nil
	case []any:
		objects := make([]Object, len(elements))
		for index, element := range elements {
			object, err := asObject(element)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", index, err)
			}
			objects[index] = object
		}
		return objects, nil
	case nil:
		return nil, fmt.Errorf("%w: nil array", ErrInvalidObject)
	default:
		return nil, fmt.Errorf("%w: array is %T", ErrInvalidObject, value)
	}
}
