// SPDX-License-Identifier: GPL-2.0-or-later
package bsp

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"q3map/math/vec"
)

// Entity is a set of key value pairs. Keys keep the order they were
// first set in.
type Entity struct {
	keys       []string
	properties map[string]string
}

func NewEntity() *Entity {
	return &Entity{properties: make(map[string]string)}
}

func parseEntity(p []byte) *Entity {
	e := NewEntity()
	// parse the entity line by line
	lines := bytes.Split(p, []byte("\n"))
	for _, l := range lines {
		// look for something of the form
		// "key" "value"
		q := bytes.IndexByte(l, '"')
		if q == -1 {
			continue
		}
		r := l[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		key := string(r[:q])
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		r = r[q+1:]
		q = bytes.IndexByte(r, '"')
		if q == -1 {
			continue
		}
		value := string(r[:q])
		e.Set(key, value)
	}
	return e
}

func (e *Entity) Property(name string) (string, bool) {
	v, ok := e.properties[name]
	return v, ok
}

func (e *Entity) Name() (string, bool) {
	v, ok := e.properties["classname"]
	return v, ok
}

// Set replaces the value of an existing key in place or appends a new one.
func (e *Entity) Set(key, value string) {
	if _, ok := e.properties[key]; !ok {
		e.keys = append(e.keys, key)
	}
	e.properties[key] = value
}

func (e *Entity) Delete(key string) {
	if _, ok := e.properties[key]; !ok {
		return
	}
	delete(e.properties, key)
	for i, k := range e.keys {
		if k == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			return
		}
	}
}

// PropertyNames returns the keys in order.
func (e *Entity) PropertyNames() []string {
	n := make([]string, len(e.keys))
	copy(n, e.keys)
	return n
}

// Vector parses a value of the form "x y z".
func (e *Entity) Vector(name string) (vec.Vec3, bool) {
	var v vec.Vec3
	s, ok := e.properties[name]
	if !ok {
		return v, false
	}
	f := strings.Fields(s)
	if len(f) != 3 {
		return v, false
	}
	for i := range f {
		x, err := strconv.ParseFloat(f[i], 64)
		if err != nil {
			return vec.Vec3{}, false
		}
		v[i] = x
	}
	return v, true
}

func ParseEntities(data []byte) []*Entity {
	/*
		The data looks like:
		{
		  "name" "value"
		  "name2" "value2"
		}
		{
		  "name3" "value"
		}
	*/
	// First split the entities
	es := []*Entity{}
	var ess [][]byte
	var ob, q int
	start := -1
	for i, b := range data {
		switch b {
		case '{':
			if q != 0 {
				break
			}
			if start == -1 {
				start = i
			} else {
				ob++
			}
		case '}':
			if q != 0 {
				break
			}
			if start == -1 {
				// Bad input
				return nil
			}
			if ob == 0 {
				ess = append(ess, data[start:i+1])
				start = -1
			} else {
				ob--
			}
		case '"':
			if q == 0 {
				q++
			} else {
				q--
			}
		}
	}
	for _, e := range ess {
		es = append(es, parseEntity(e))
	}
	return es
}

// MarshalEntities writes the entity lump text, NUL terminated.
func MarshalEntities(es []*Entity) []byte {
	var buf bytes.Buffer
	for _, e := range es {
		buf.WriteString("{\n")
		for _, k := range e.keys {
			fmt.Fprintf(&buf, "\"%s\" \"%s\"\n", k, e.properties[k])
		}
		buf.WriteString("}\n")
	}
	buf.WriteByte(0)
	return buf.Bytes()
}
