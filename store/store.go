// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.18
//

// Package store keeps parsed RINEX datasets in a single-file container.
// Each dataset lives in a group (a top-level bucket) named after its kind,
// so a NAV and an OBS dataset can share one file.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/mkhts/gorinex"
	bolt "go.etcd.io/bbolt"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
	"gopkg.in/yaml.v3"
)

// ErrGroupNotFound is returned by Get for a group the container does not hold.
var ErrGroupNotFound = errors.New("group not found")

// Sub-bucket and key names inside a group
var (
	bucketHeader = []byte("header")
	bucketVars   = []byte("vars")
	keyMeta      = []byte("meta")
	keyTime      = []byte("time")
)

// Container is an open container file.
type Container struct {
	db *bolt.DB
}

// Open opens the container at path for appending, creating it when absent.
func Open(path string) (*Container, error) {
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open container %s: %w", path, err)
	}
	return &Container{db: db}, nil
}

func (c *Container) Close() error {
	return c.db.Close()
}

// Groups returns the names of the stored groups in sorted order.
func (c *Container) Groups() ([]string, error) {
	var names []string
	err := c.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, _ *bolt.Bucket) error {
			names = append(names, string(name))
			return nil
		})
	})
	sort.Strings(names)
	return names, err
}

// Dataset description stored as YAML next to the arrays
type meta struct {
	Kind     string              `yaml:"kind"`
	Version  float64             `yaml:"version"`
	System   string              `yaml:"system,omitempty"`
	Filename string              `yaml:"filename,omitempty"`
	Position []float64           `yaml:"position,omitempty"`
	Fields   []string            `yaml:"fields"`
	SV       []string            `yaml:"sv"`
	Dims     map[string][]string `yaml:"dims"`
}

// Put stores ds as group, replacing only that group.
func (c *Container) Put(group string, ds *gorinex.Dataset) error {
	if group == "" {
		return errors.New("empty group name")
	}
	m := meta{
		Kind:     ds.Kind.String(),
		Version:  ds.Version,
		Filename: ds.Attrs.Filename,
		Fields:   ds.Fields,
		Dims:     map[string][]string{},
	}
	if ds.System != 0 {
		m.System = string(byte(ds.System))
	}
	if p := ds.Attrs.Position; p != nil {
		m.Position = []float64{p.X, p.Y, p.Z}
	}
	for _, sv := range ds.SV {
		m.SV = append(m.SV, sv.String())
	}
	for name, v := range ds.Vars {
		m.Dims[name] = v.Dims
	}
	mb, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("encode meta: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(group)) != nil {
			if err := tx.DeleteBucket([]byte(group)); err != nil {
				return err
			}
		}
		g, err := tx.CreateBucket([]byte(group))
		if err != nil {
			return err
		}
		if err := g.Put(keyMeta, mb); err != nil {
			return err
		}
		if err := g.Put(keyTime, encodeTimes(ds.Time)); err != nil {
			return err
		}
		hb, err := g.CreateBucket(bucketHeader)
		if err != nil {
			return err
		}
		for k, v := range ds.Attrs.Header {
			if err := hb.Put([]byte(k), []byte(v)); err != nil {
				return err
			}
		}
		vb, err := g.CreateBucket(bucketVars)
		if err != nil {
			return err
		}
		for name, v := range ds.Vars {
			if err := vb.Put([]byte(name), encodeFloats(v.Values())); err != nil {
				return err
			}
		}
		return nil
	})
}

// Get reads group back into a dataset.
func (c *Container) Get(group string) (*gorinex.Dataset, error) {
	var ds *gorinex.Dataset
	err := c.db.View(func(tx *bolt.Tx) error {
		g := tx.Bucket([]byte(group))
		if g == nil {
			return fmt.Errorf("%w: %s", ErrGroupNotFound, group)
		}
		var m meta
		if err := yaml.Unmarshal(g.Get(keyMeta), &m); err != nil {
			return fmt.Errorf("decode meta of %s: %w", group, err)
		}
		var err error
		if ds, err = m.dataset(); err != nil {
			return err
		}
		if ds.Time, err = decodeTimes(g.Get(keyTime)); err != nil {
			return err
		}
		if hb := g.Bucket(bucketHeader); hb != nil {
			ds.Attrs.Header = map[string]string{}
			if err := hb.ForEach(func(k, v []byte) error {
				ds.Attrs.Header[string(k)] = string(v)
				return nil
			}); err != nil {
				return err
			}
		}
		vb := g.Bucket(bucketVars)
		if vb == nil {
			return fmt.Errorf("group %s has no variables", group)
		}
		for name, dims := range m.Dims {
			data, err := decodeFloats(vb.Get([]byte(name)))
			if err != nil {
				return fmt.Errorf("variable %s: %w", name, err)
			}
			v := &gorinex.Variable{Dims: dims}
			if len(data) > 0 {
				rows := len(ds.Time)
				if rows == 0 || len(data)%rows != 0 {
					return fmt.Errorf("variable %s: %d values for %d epochs", name, len(data), rows)
				}
				v.Data = mat.NewDense(rows, len(data)/rows, data)
			}
			ds.Vars[name] = v
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ds, nil
}

func (m *meta) dataset() (*gorinex.Dataset, error) {
	ds := &gorinex.Dataset{
		Version: m.Version,
		Fields:  m.Fields,
		Vars:    map[string]*gorinex.Variable{},
		Attrs: gorinex.Attributes{
			Version:  m.Version,
			Filename: m.Filename,
		},
	}
	switch m.Kind {
	case gorinex.Navigation.String():
		ds.Kind = gorinex.Navigation
	case gorinex.Observation.String():
		ds.Kind = gorinex.Observation
	default:
		return nil, fmt.Errorf("unknown dataset kind %q", m.Kind)
	}
	if len(m.System) == 1 {
		ds.System = gorinex.SatelliteSystem(m.System[0])
	}
	if len(m.Position) == 3 {
		ds.Attrs.Position = &r3.Vec{X: m.Position[0], Y: m.Position[1], Z: m.Position[2]}
	}
	for _, s := range m.SV {
		sv, err := gorinex.ParseSatellite(s)
		if err != nil {
			return nil, err
		}
		ds.SV = append(ds.SV, sv)
	}
	return ds, nil
}

// Write stores ds in the container at path under the group named by its kind ("NAV" or "OBS").
func Write(path string, ds *gorinex.Dataset) error {
	c, err := Open(path)
	if err != nil {
		return err
	}
	if err := c.Put(ds.Kind.String(), ds); err != nil {
		c.Close()
		return fmt.Errorf("write %s group: %w", ds.Kind, err)
	}
	return c.Close()
}

// ------------------------------------
// Array encoding (little endian)
// ------------------------------------

func encodeFloats(v []float64) []byte {
	b := make([]byte, 8*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(f))
	}
	return b
}

func decodeFloats(b []byte) ([]float64, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("array of %d bytes is not a float64 array", len(b))
	}
	v := make([]float64, len(b)/8)
	for i := range v {
		v[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[8*i:]))
	}
	return v, nil
}

func encodeTimes(ts []time.Time) []byte {
	b := make([]byte, 8*len(ts))
	for i, t := range ts {
		binary.LittleEndian.PutUint64(b[8*i:], uint64(t.UnixNano()))
	}
	return b
}

func decodeTimes(b []byte) ([]time.Time, error) {
	if len(b)%8 != 0 {
		return nil, fmt.Errorf("time axis of %d bytes is not an int64 array", len(b))
	}
	ts := make([]time.Time, len(b)/8)
	for i := range ts {
		ts[i] = time.Unix(0, int64(binary.LittleEndian.Uint64(b[8*i:]))).UTC()
	}
	return ts, nil
}
